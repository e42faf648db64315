// Package encoding normalizes the text of LDraw files to UTF-8.
package encoding

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ToUTF8 returns data as UTF-8 without a byte order mark. Text that is not
// valid UTF-8 is decoded as Windows-1252, the encoding of older library
// files. Returns the input unchanged if decoding fails.
func ToUTF8(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data
	}
	result, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return data
	}
	return result
}

// ToUTF8String converts data with ToUTF8.
func ToUTF8String(data []byte) string {
	return string(ToUTF8(data))
}
