// Package library provides access to an installed LDraw parts library, either
// unpacked on disk or as the official complete.zip distribution.
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Faultbox/brickyard/pkg/ldraw"
)

// Library errors.
var (
	ErrNotLibrary = errors.New("not an LDraw library: no parts or p directory")
)

// searchRoots are the library sub-directories holding referencable files, in
// lookup order. The first file indexed under a name wins.
var searchRoots = []string{"p", "parts"}

// colorConfigName is the colour table shipped at the library root.
const colorConfigName = "ldconfig.ldr"

// Library is an indexed parts library.
type Library interface {
	ldraw.Source

	// List returns all indexed names, sorted.
	List() []string
	// Contains reports whether name is indexed.
	Contains(name string) bool
	// Len returns the number of indexed names.
	Len() int
	// ColorConfig returns the raw LDConfig.ldr shipped with the library.
	ColorConfig() ([]byte, error)
	Close() error
}

// Open opens path as a Dir when it is a directory and as an Archive otherwise.
func Open(path string) (Library, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening library: %w", err)
	}
	if info.IsDir() {
		return OpenDir(path)
	}
	return OpenArchive(path)
}

// Dir is a parts library unpacked on disk.
type Dir struct {
	base  string
	files map[string]string // normalized name -> absolute path
}

// OpenDir indexes the p and parts trees under base.
func OpenDir(base string) (*Dir, error) {
	d := &Dir{base: base, files: make(map[string]string)}

	found := false
	for _, root := range searchRoots {
		rootPath := filepath.Join(base, root)
		if info, err := os.Stat(rootPath); err != nil || !info.IsDir() {
			continue
		}
		found = true
		err := filepath.WalkDir(rootPath, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(rootPath, path)
			if err != nil {
				return err
			}
			key := ldraw.NormalizeName(filepath.ToSlash(rel))
			if _, ok := d.files[key]; !ok {
				d.files[key] = path
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("indexing %s: %w", rootPath, err)
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotLibrary, base)
	}
	return d, nil
}

// Close is a no-op; Dir holds no open files.
func (d *Dir) Close() error {
	return nil
}

// List returns all indexed names, sorted.
func (d *Dir) List() []string {
	return sortedKeys(d.files)
}

// Contains checks if a name is indexed.
func (d *Dir) Contains(name string) bool {
	_, ok := d.files[ldraw.NormalizeName(name)]
	return ok
}

// Len returns the number of indexed names.
func (d *Dir) Len() int {
	return len(d.files)
}

// Path returns the file backing name.
func (d *Dir) Path(name string) (string, bool) {
	p, ok := d.files[ldraw.NormalizeName(name)]
	return p, ok
}

// Read implements ldraw.Source.
func (d *Dir) Read(name string) ([]byte, error) {
	p, ok := d.files[ldraw.NormalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ldraw.ErrNameNotFound, name)
	}
	return os.ReadFile(p)
}

// ColorConfig returns the raw LDConfig.ldr from the library root.
func (d *Dir) ColorConfig() ([]byte, error) {
	entries, err := os.ReadDir(d.base)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !e.IsDir() && strings.ToLower(e.Name()) == colorConfigName {
			return os.ReadFile(filepath.Join(d.base, e.Name()))
		}
	}
	return nil, fmt.Errorf("%w: %s", ldraw.ErrNameNotFound, colorConfigName)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
