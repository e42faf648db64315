// Package compose expands LDraw models into instance trees of welded part
// meshes.
package compose

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/brickyard/internal/mesh"
	"github.com/Faultbox/brickyard/internal/store"
	"github.com/Faultbox/brickyard/pkg/ldraw"
	"github.com/Faultbox/brickyard/pkg/math"
)

// ErrRecursionLimit is reported for references nested deeper than the
// configured limit and for references that lead back to an ancestor.
var ErrRecursionLimit = errors.New("recursion limit exceeded")

// DefaultMaxDepth is the default reference nesting limit.
const DefaultMaxDepth = 64

// Options configures a Session.
type Options struct {
	MaxDepth   int     // 0 selects DefaultMaxDepth
	WeldDigits int     // below zero selects mesh.DefaultWeldDigits
	Scale      float64 // uniform scale applied at the root; 0 means 1
	Logger     *zap.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MaxDepth:   DefaultMaxDepth,
		WeldDigits: mesh.DefaultWeldDigits,
		Scale:      1,
	}
}

// Session is the import context: the model registry, the finalized mesh
// cache and the optional persistent mesh store. One session can serve many
// Generate calls, also concurrently; parsed models and part meshes are shared
// between them.
type Session struct {
	source   ldraw.Source
	registry *ldraw.Registry
	meshes   *mesh.Cache
	store    store.Store
	opts     Options
	log      *zap.Logger
}

// NewSession creates a session reading model text from src. st may be nil,
// in which case part meshes live only in memory.
func NewSession(src ldraw.Source, st store.Store, opts Options) *Session {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.WeldDigits < 0 {
		opts.WeldDigits = mesh.DefaultWeldDigits
	}
	if opts.Scale == 0 {
		opts.Scale = 1
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		source:   src,
		registry: ldraw.NewRegistry(log.Named("registry")),
		meshes:   mesh.NewCache(),
		store:    st,
		opts:     opts,
		log:      log,
	}
}

// Registry returns the session's model registry.
func (s *Session) Registry() *ldraw.Registry {
	return s.registry
}

// Meshes returns the session's finalized part mesh cache.
func (s *Session) Meshes() *mesh.Cache {
	return s.meshes
}

// Generate imports the model called name and returns its instance tree.
//
// Only a top-level model that cannot be read fails the call. Missing or
// cyclic references further down become placeholder nodes and are listed in
// Result.Problems.
func (s *Session) Generate(name string) (*Result, error) {
	model, err := s.registry.GetOrCreate(name, s.source)
	if err != nil {
		return nil, err
	}

	g := &generation{
		s:        s,
		visiting: make(map[string]bool),
	}
	root := g.build(model, s.rootMatrix(), ldraw.ColorCode(ldraw.MainColor), 0)

	s.log.Debug("model generated",
		zap.String("model", model.Name),
		zap.Int("problems", len(g.problems)))
	return &Result{Root: root, Problems: g.problems}, nil
}

// PartMesh returns the finalized mesh of a single part, composing it on
// first use.
func (s *Session) PartMesh(name string) (*mesh.Mesh, error) {
	model, err := s.registry.GetOrCreate(name, s.source)
	if err != nil {
		return nil, err
	}
	if !model.IsPart() {
		return nil, fmt.Errorf("%s is not a part", model.Name)
	}
	g := &generation{s: s, visiting: map[string]bool{model.Name: true}}
	return g.partMesh(model, 0), nil
}

func (s *Session) rootMatrix() math.Mat4 {
	if s.opts.Scale == 1 {
		return math.Identity()
	}
	return math.Scale(s.opts.Scale, s.opts.Scale, s.opts.Scale)
}
