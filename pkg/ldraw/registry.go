package ldraw

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ErrPartNotFound is returned when no source has text for a referenced name.
var ErrPartNotFound = errors.New("part not found")

// Registry caches parsed models by normalized name. Each name is parsed at
// most once; later requests return the same *Model. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Model
	log    *zap.Logger
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		models: make(map[string]*Model),
		log:    log,
	}
}

// GetOrCreate returns the model for name, reading and parsing it from src on
// first use. Malformed lines are logged and parsed with defaults. A name src
// does not know fails with ErrPartNotFound.
func (r *Registry) GetOrCreate(name string, src Source) (*Model, error) {
	key := NormalizeName(name)

	// Fast path: read lock
	r.mu.RLock()
	if m, ok := r.models[key]; ok {
		r.mu.RUnlock()
		return m, nil
	}
	r.mu.RUnlock()

	data, err := src.Read(key)
	if err != nil {
		if errors.Is(err, ErrNameNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPartNotFound, key)
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	m, problems := ParseModel(key, data)

	// Write lock with double-check
	r.mu.Lock()
	if existing, ok := r.models[key]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.models[key] = m
	r.mu.Unlock()

	for _, p := range problems {
		r.log.Warn("malformed line", zap.String("model", key), zap.Error(p))
	}
	r.log.Debug("model parsed",
		zap.String("model", key),
		zap.Int("commands", len(m.Commands)),
		zap.Bool("part", m.IsPart()))
	return m, nil
}

// Lookup returns an already-parsed model without reading any source.
func (r *Registry) Lookup(name string) (*Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[NormalizeName(name)]
	return m, ok
}

// Len returns the number of parsed models.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}

// Names returns the parsed model names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.models))
	for n := range r.models {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
