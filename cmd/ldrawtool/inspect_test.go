package main

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/Faultbox/brickyard/pkg/ldraw"
)

func TestPrintPartMesh(t *testing.T) {
	e, err := openEnv(testConfig(t))
	if err != nil {
		t.Fatalf("openEnv: %v", err)
	}
	defer e.close()

	m, err := e.session.PartMesh("3001.dat")
	if err != nil {
		t.Fatalf("PartMesh: %v", err)
	}
	var buf bytes.Buffer
	printPartMesh(&buf, m, nil)
	out := buf.String()

	for _, want := range []string{"Part:       3001", "Vertices:   3", "Triangles:  1", "Polylines:  0", "Center:", "indices=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "References:") {
		t.Errorf("part without sub-files printed references:\n%s", out)
	}

	if _, err := e.session.PartMesh("car"); err == nil {
		t.Error("expected an error for a model that is not a part")
	}
}

func TestPrintPartMeshReferences(t *testing.T) {
	e, err := openEnv(testConfig(t))
	if err != nil {
		t.Fatalf("openEnv: %v", err)
	}
	defer e.close()

	m, err := e.session.PartMesh("3001.dat")
	if err != nil {
		t.Fatalf("PartMesh: %v", err)
	}
	var buf bytes.Buffer
	printPartMesh(&buf, m, []string{"stud", "box5"})
	if !strings.Contains(buf.String(), "References: stud, box5") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestPrintColors(t *testing.T) {
	table := ldraw.NewColorTable()
	table.Add(ldraw.Color{Name: "Trans_Clear", Code: 47, Value: color.NRGBA{R: 0xFC, G: 0xFC, B: 0xFC, A: 128}})
	table.Add(ldraw.Color{Name: "Red", Code: 4, Value: color.NRGBA{R: 0xC9, G: 0x1A, B: 0x09, A: 255}})

	var buf bytes.Buffer
	printColors(&buf, table)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}

	tests := []struct {
		line     string
		contains []string
		absent   string
	}{
		{lines[0], []string{"4", "Red", "#C91A09"}, "alpha"},
		{lines[1], []string{"47", "Trans_Clear", "#FCFCFC", "alpha=128"}, ""},
	}
	for _, tt := range tests {
		for _, want := range tt.contains {
			if !strings.Contains(tt.line, want) {
				t.Errorf("line %q lacks %q", tt.line, want)
			}
		}
		if tt.absent != "" && strings.Contains(tt.line, tt.absent) {
			t.Errorf("line %q contains %q", tt.line, tt.absent)
		}
	}
}
