package library

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/Faultbox/brickyard/pkg/ldraw"
)

// Archive is a parts library read straight from a zip distribution such as
// complete.zip. Entries may sit at the zip root or under one top-level
// directory (the official archive uses "ldraw/").
type Archive struct {
	zr       *zip.ReadCloser
	files    map[string]*zip.File
	ldconfig *zip.File
}

// OpenArchive opens a zip library and indexes its p and parts trees.
func OpenArchive(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	a := &Archive{zr: zr, files: make(map[string]*zip.File)}
	for _, root := range searchRoots {
		for _, f := range zr.File {
			if f.FileInfo().IsDir() {
				continue
			}
			rel, ok := libraryPath(f.Name, root)
			if !ok {
				continue
			}
			key := ldraw.NormalizeName(rel)
			if _, dup := a.files[key]; !dup {
				a.files[key] = f
			}
		}
	}
	for _, f := range zr.File {
		if rel, ok := libraryPath(f.Name, ""); ok && strings.ToLower(rel) == colorConfigName {
			a.ldconfig = f
			break
		}
	}

	if len(a.files) == 0 {
		zr.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotLibrary, path)
	}
	return a, nil
}

// libraryPath strips an optional single top-level directory and then root
// from a zip entry name. An empty root matches files directly at the library
// root.
func libraryPath(name, root string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	candidates := []string{name}
	if i := strings.IndexByte(name, '/'); i >= 0 {
		candidates = append(candidates, name[i+1:])
	}
	for _, c := range candidates {
		if root == "" {
			if c != "" && !strings.Contains(c, "/") {
				return c, true
			}
			continue
		}
		prefix := root + "/"
		if len(c) > len(prefix) && strings.EqualFold(c[:len(prefix)], prefix) {
			return c[len(prefix):], true
		}
	}
	return "", false
}

// Close closes the archive.
func (a *Archive) Close() error {
	if a.zr != nil {
		return a.zr.Close()
	}
	return nil
}

// List returns all indexed names, sorted.
func (a *Archive) List() []string {
	keys := make(map[string]string, len(a.files))
	for k := range a.files {
		keys[k] = ""
	}
	return sortedKeys(keys)
}

// Contains checks if a name is indexed.
func (a *Archive) Contains(name string) bool {
	_, ok := a.files[ldraw.NormalizeName(name)]
	return ok
}

// Len returns the number of indexed names.
func (a *Archive) Len() int {
	return len(a.files)
}

// Read implements ldraw.Source. Safe for concurrent use.
func (a *Archive) Read(name string) ([]byte, error) {
	f, ok := a.files[ldraw.NormalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ldraw.ErrNameNotFound, name)
	}
	return readZipFile(f)
}

// ColorConfig returns the raw LDConfig.ldr from the archive root.
func (a *Archive) ColorConfig() ([]byte, error) {
	if a.ldconfig == nil {
		return nil, fmt.Errorf("%w: %s", ldraw.ErrNameNotFound, colorConfigName)
	}
	return readZipFile(a.ldconfig)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return data, nil
}
