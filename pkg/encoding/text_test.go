package encoding

import "testing"

func TestToUTF8(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"ascii", []byte("0 Brick 2 x 4"), "0 Brick 2 x 4"},
		{"utf8", []byte("0 Author: Jürgen"), "0 Author: Jürgen"},
		{"bom", []byte("\xEF\xBB\xBF0 !LDRAW_ORG Part"), "0 !LDRAW_ORG Part"},
		{"windows-1252", []byte("0 Author: J\xFCrgen \x96 \xA9"), "0 Author: Jürgen – ©"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToUTF8String(tt.in); got != tt.want {
				t.Errorf("ToUTF8(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
