package batch

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Faultbox/brickyard/internal/compose"
	"github.com/Faultbox/brickyard/pkg/ldraw"
)

var files = ldraw.MapSource{
	"brick": `0 !LDRAW_ORG Part
3 16 0 0 0 1 0 0 0 0 1
`,
	"ok":      "1 4 0 0 0 1 0 0 0 1 0 0 0 1 brick.dat\n",
	"partial": "1 4 0 0 0 1 0 0 0 1 0 0 0 1 brick.dat\n1 1 0 0 0 1 0 0 0 1 0 0 0 1 gone.dat\n",
}

func newSession() *compose.Session {
	return compose.NewSession(files, nil, compose.DefaultOptions())
}

func TestRun(t *testing.T) {
	names := []string{"ok", "partial", "nope", "brick"}
	results := RunConfig(Config{Session: newSession(), Workers: 3}, names)

	if len(results) != len(names) {
		t.Fatalf("results = %d, want %d", len(results), len(names))
	}
	for i, r := range results {
		if r.Name != names[i] {
			t.Errorf("result %d is %q, want %q", i, r.Name, names[i])
		}
	}

	if !results[0].Success || len(results[0].Problems) != 0 {
		t.Errorf("ok = %+v", results[0])
	}
	if !results[1].Success || len(results[1].Problems) != 1 {
		t.Errorf("partial = %+v", results[1])
	}
	if len(results[1].Missing) != 1 || results[1].Missing[0] != "gone" {
		t.Errorf("partial missing = %v", results[1].Missing)
	}
	if results[2].Success || !errors.Is(results[2].Error, ldraw.ErrPartNotFound) {
		t.Errorf("nope = %+v", results[2])
	}
	if !results[3].Success || results[3].Stats.Triangles != 1 {
		t.Errorf("brick = %+v", results[3])
	}

	ok, failed := Summary(results)
	if ok != 3 || failed != 1 {
		t.Errorf("Summary() = %d, %d", ok, failed)
	}
}

func TestRunManyModels(t *testing.T) {
	var names []string
	for i := 0; i < 300; i++ {
		names = append(names, []string{"ok", "partial", "brick"}[i%3])
	}
	s := newSession()
	results := RunConfig(Config{Session: s, Workers: 8}, names)
	if ok, failed := Summary(results); ok != 300 || failed != 0 {
		t.Errorf("Summary() = %d, %d", ok, failed)
	}
	if s.Meshes().Len() != 1 {
		t.Errorf("part meshes = %d, want 1", s.Meshes().Len())
	}
}

func TestRunExport(t *testing.T) {
	var mu sync.Mutex
	exported := make(map[string]int)

	cfg := Config{
		Session: newSession(),
		Workers: 2,
		Export: func(name string, res *compose.Result) error {
			switch name {
			case "partial":
				return fmt.Errorf("disk full")
			case "brick":
				panic("boom")
			}
			mu.Lock()
			exported[name]++
			mu.Unlock()
			return nil
		},
	}
	results := RunConfig(cfg, []string{"ok", "partial", "nope", "brick"})

	if exported["ok"] != 1 || len(exported) != 1 {
		t.Errorf("exported = %v", exported)
	}
	if results[1].Success || results[1].Error == nil {
		t.Errorf("export failure should fail the model: %+v", results[1])
	}
	if results[3].Success || results[3].Error == nil {
		t.Errorf("panic should fail the model: %+v", results[3])
	}
	if !results[0].Success {
		t.Errorf("ok = %+v", results[0])
	}
}

func TestRunEmpty(t *testing.T) {
	if got := RunConfig(Config{Session: newSession(), Workers: 4}, nil); len(got) != 0 {
		t.Errorf("results = %v", got)
	}
}
