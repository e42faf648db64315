package preview

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
)

// Encode writes img as lossless WebP.
func Encode(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("WebP encode: %w", err)
	}
	return nil
}

// WriteFile encodes img to path, creating parent directories.
func WriteFile(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
