package preview

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/brickyard/internal/compose"
	"github.com/Faultbox/brickyard/internal/render"
	"github.com/Faultbox/brickyard/pkg/ldraw"
)

var files = ldraw.MapSource{
	"plate": `0 !LDRAW_ORG Part
4 16 -20 0 -20 20 0 -20 20 0 20 -20 0 20
4 16 -20 -8 -20 20 -8 -20 20 -8 20 -20 -8 20
4 16 -20 0 -20 20 0 -20 20 -8 -20 -20 -8 -20
2 24 -20 -8 -20 20 -8 -20
2 24 20 -8 -20 20 -8 20
`,
	"pair": `1 4 0 0 0 1 0 0 0 1 0 0 0 1 plate.dat
1 1 0 -8 0 1 0 0 0 1 0 0 0 1 plate.dat
`,
}

func items(t *testing.T) []render.Item {
	t.Helper()
	res, err := compose.NewSession(files, nil, compose.DefaultOptions()).Generate("pair")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return render.Flatten(res.Root, nil)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		opts func(o *Options)
	}{
		{"default", func(o *Options) {}},
		{"no supersample", func(o *Options) { o.Supersample = 1 }},
		{"no edges", func(o *Options) { o.Edges = false }},
		{"front view", func(o *Options) { o.Yaw, o.Pitch = 0, 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Size = 64
			tt.opts(&opts)
			img := Render(items(t), opts)

			if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
				t.Fatalf("bounds = %v", b)
			}
			if img.NRGBAAt(0, 0).A != 0 {
				t.Error("corner should stay transparent")
			}
			if img.NRGBAAt(32, 32).A == 0 {
				t.Error("centre should be covered by the model")
			}
		})
	}
}

func TestRenderEmpty(t *testing.T) {
	opts := DefaultOptions()
	opts.Size = 16
	opts.Supersample = 1
	opts.Background = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	img := Render(nil, opts)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if img.NRGBAAt(x, y) != opts.Background {
				t.Fatalf("pixel %d,%d = %v", x, y, img.NRGBAAt(x, y))
			}
		}
	}
}

func TestShadeKeepsAlpha(t *testing.T) {
	c := color.NRGBA{R: 200, G: 100, B: 50, A: 128}
	got := shade(c, [3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0})
	if got.A != 128 {
		t.Errorf("alpha = %d", got.A)
	}
	if got.R > c.R || got.R < uint8(float64(c.R)*ambient) {
		t.Errorf("red = %d out of range", got.R)
	}
}

func TestEncode(t *testing.T) {
	opts := DefaultOptions()
	opts.Size = 32
	img := Render(items(t), opts)

	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := buf.Bytes()
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		t.Errorf("not a WebP stream: % x", data[:min(len(data), 12)])
	}

	path := filepath.Join(t.TempDir(), "out", "pair.webp")
	if err := WriteFile(path, img); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("expected a non-empty file: %v", err)
	}
}
