package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Faultbox/brickyard/internal/config"
)

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ldraw", "parts", "3001.dat"),
		"0 !LDRAW_ORG Part\n3 16 0 0 0 1 0 0 0 0 1\n")
	writeFile(t, filepath.Join(root, "ldraw", "LDConfig.ldr"),
		"0 !COLOUR Red CODE 4 VALUE #C91A09 EDGE #333333\n")
	writeFile(t, filepath.Join(root, "models", "car.ldr"),
		"1 4 0 0 0 1 0 0 0 1 0 0 0 1 3001.dat\n1 4 0 0 0 1 0 0 0 1 0 0 0 1 wheel.dat\n")

	cfg := config.Default()
	cfg.Library.Path = filepath.Join(root, "ldraw")
	cfg.Library.ModelsPath = filepath.Join(root, "models")
	cfg.Cache.Enabled = false
	return cfg
}

func TestOpenEnv(t *testing.T) {
	e, err := openEnv(testConfig(t))
	if err != nil {
		t.Fatalf("openEnv: %v", err)
	}
	defer e.close()

	if e.lib == nil || e.lib.Len() != 1 {
		t.Fatalf("library not opened")
	}
	if e.colors.Len() != 1 {
		t.Errorf("colours = %d, want the library's table", e.colors.Len())
	}

	names, err := e.modelNames(nil)
	if err != nil {
		t.Fatalf("modelNames: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"car"}) {
		t.Fatalf("names = %v", names)
	}

	res, err := e.session.Generate("car")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if st := res.Stats(); st.Parts != 1 || st.Missing != 1 {
		t.Errorf("stats = %+v", st)
	}
	if got := res.MissingParts(); !reflect.DeepEqual(got, []string{"wheel"}) {
		t.Errorf("MissingParts() = %v", got)
	}
}

func TestOpenEnvWithoutLibrary(t *testing.T) {
	cfg := testConfig(t)
	cfg.Library.Path = filepath.Join(t.TempDir(), "missing")

	e, err := openEnv(cfg)
	if err != nil {
		t.Fatalf("openEnv: %v", err)
	}
	defer e.close()
	if e.lib != nil {
		t.Error("library should be nil")
	}
	if e.colors.Len() == 0 {
		t.Error("expected the built-in colour table")
	}
	res, err := e.session.Generate("car")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Stats().Missing != 2 {
		t.Errorf("stats = %+v", res.Stats())
	}
}

func TestModelName(t *testing.T) {
	e, err := openEnv(testConfig(t))
	if err != nil {
		t.Fatalf("openEnv: %v", err)
	}
	defer e.close()

	path := filepath.Join(t.TempDir(), "House.mpd")
	writeFile(t, path, "0 FILE main.ldr\n1 4 0 0 0 1 0 0 0 1 0 0 0 1 3001.dat\n")

	tests := []struct {
		arg  string
		want string
	}{
		{"3001.dat", "3001.dat"},
		{path, "main"},
		{"car.ldr", "car"},
		{"absent.ldr", "absent.ldr"},
	}
	for _, tt := range tests {
		got, err := e.modelName(tt.arg)
		if err != nil {
			t.Errorf("modelName(%q): %v", tt.arg, err)
			continue
		}
		if got != tt.want {
			t.Errorf("modelName(%q) = %q, want %q", tt.arg, got, tt.want)
		}
	}
}

func TestModelNamesWithoutModelsPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.Library.ModelsPath = ""
	e, err := openEnv(cfg)
	if err != nil {
		t.Fatalf("openEnv: %v", err)
	}
	defer e.close()
	if _, err := e.modelNames(nil); err == nil {
		t.Error("expected an error without models")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		dir, name, ext string
		want           string
	}{
		{"out", "car", ".glb", filepath.Join("out", "car.glb")},
		{"out", "s/3001s01", ".webp", filepath.Join("out", "3001s01.webp")},
		{".", "main.ldr", ".glb", "main.glb"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.dir, tt.name, tt.ext); got != tt.want {
			t.Errorf("outputPath(%q, %q) = %q, want %q", tt.dir, tt.name, got, tt.want)
		}
	}
}
