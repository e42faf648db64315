package ldraw

import (
	"bufio"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

// ErrNameNotFound is returned by a Source that has no text for a name.
var ErrNameNotFound = errors.New("name not found")

// Source supplies raw LDraw text for a normalized model or part name.
type Source interface {
	Read(name string) ([]byte, error)
}

// knownExtensions are stripped from names so references and index keys agree.
var knownExtensions = map[string]bool{
	".dat": true,
	".ldr": true,
	".mpd": true,
	".l3b": true,
}

// NormalizeName lower-cases name, converts backslashes to forward slashes and
// strips a known LDraw file extension.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "\\", "/")
	if ext := path.Ext(name); knownExtensions[ext] {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// MapSource serves text from memory, keyed by normalized name.
type MapSource map[string]string

// Read implements Source.
func (s MapSource) Read(name string) ([]byte, error) {
	text, ok := s[NormalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNameNotFound, name)
	}
	return []byte(text), nil
}

// Chain tries each source in order and returns the first hit.
type Chain []Source

// Read implements Source. Errors other than ErrNameNotFound stop the search.
func (c Chain) Read(name string) ([]byte, error) {
	for _, src := range c {
		if src == nil {
			continue
		}
		data, err := src.Read(name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNameNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNameNotFound, name)
}

// SplitFile splits a multi-model file on its "0 FILE <name>" lines.
//
// The first FILE line names the primary model. Later FILE lines start
// embedded models; a name that appeared before keeps its first body and the
// repeated block is dropped. "0 NOFILE" ends the current block. Text before
// the first FILE line is ignored. A file with no FILE lines is a single model
// named after fileName.
func SplitFile(fileName string, text string) (string, map[string]string) {
	models := make(map[string]string)
	bodies := make(map[string]*strings.Builder)
	primary := ""
	current := ""

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "0" {
			switch fields[1] {
			case "FILE":
				name := NormalizeName(strings.Join(fields[2:], " "))
				if primary == "" {
					primary = name
				}
				if _, dup := bodies[name]; dup || name == "" {
					current = ""
				} else {
					current = name
					bodies[name] = &strings.Builder{}
				}
			case "NOFILE":
				current = ""
				continue
			}
		}
		if current != "" {
			b := bodies[current]
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	if primary == "" {
		name := fileKey(fileName)
		models[name] = text
		return name, models
	}
	for name, b := range bodies {
		models[name] = b.String()
	}
	return primary, models
}

// ModelSet collects the models of one or more multi-model files and serves
// them as a Source.
type ModelSet struct {
	mu        sync.RWMutex
	models    map[string]string
	primaries map[string]string // file base name -> primary model
}

// NewModelSet creates an empty model set.
func NewModelSet() *ModelSet {
	return &ModelSet{
		models:    make(map[string]string),
		primaries: make(map[string]string),
	}
}

// AddFile splits text and registers its models. Models already present keep
// their first definition. It returns the file's primary model name.
func (s *ModelSet) AddFile(fileName string, text string) string {
	primary, models := SplitFile(fileName, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, body := range models {
		if _, ok := s.models[name]; !ok {
			s.models[name] = body
		}
	}
	s.primaries[fileKey(fileName)] = primary
	return primary
}

// Primary returns the primary model registered for a file.
func (s *ModelSet) Primary(fileName string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.primaries[fileKey(fileName)]
	return name, ok
}

// Names returns all model names, sorted.
func (s *ModelSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.models))
	for n := range s.models {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Read implements Source.
func (s *ModelSet) Read(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.models[NormalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNameNotFound, name)
	}
	return []byte(text), nil
}

func fileKey(fileName string) string {
	return NormalizeName(path.Base(strings.ReplaceAll(fileName, "\\", "/")))
}
