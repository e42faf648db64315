// Package store persists finalized meshes so identical parts are not
// tessellated again in later sessions.
package store

import (
	"errors"
	"sync"

	"github.com/Faultbox/brickyard/internal/mesh"
)

// ErrMeshNotFound is returned by Get when no mesh is stored under a name.
var ErrMeshNotFound = errors.New("mesh not found")

// Store is a persistent mesh cache keyed by normalized part name.
type Store interface {
	Get(name string) (*mesh.Mesh, error)
	Save(m *mesh.Mesh) error
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	meshes map[string]*mesh.Mesh
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{meshes: make(map[string]*mesh.Mesh)}
}

// Get implements Store.
func (s *Memory) Get(name string) (*mesh.Mesh, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meshes[name]
	if !ok {
		return nil, ErrMeshNotFound
	}
	return m, nil
}

// Save implements Store.
func (s *Memory) Save(m *mesh.Mesh) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meshes[m.Name] = m
	return nil
}

// Len returns the number of stored meshes.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meshes)
}
