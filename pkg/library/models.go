package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/brickyard/pkg/encoding"
	"github.com/Faultbox/brickyard/pkg/ldraw"
)

var modelExtensions = map[string]bool{
	".ldr": true,
	".mpd": true,
	".dat": true,
}

// LoadModelFile reads one model file into set and returns its primary model.
func LoadModelFile(set *ldraw.ModelSet, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading model: %w", err)
	}
	return set.AddFile(path, encoding.ToUTF8String(data)), nil
}

// ScanModels walks root for model files (.ldr, .mpd, .dat) and adds each to
// set. It returns the primary model names in walk order.
func ScanModels(set *ldraw.ModelSet, root string) ([]string, error) {
	var primaries []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !modelExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		name, err := LoadModelFile(set, path)
		if err != nil {
			return err
		}
		primaries = append(primaries, name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning models: %w", err)
	}
	return primaries, nil
}
