package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/brickyard/internal/config"
	"github.com/Faultbox/brickyard/internal/logger"
	"github.com/Faultbox/brickyard/internal/mesh"
	"github.com/Faultbox/brickyard/pkg/ldraw"
	"github.com/Faultbox/brickyard/pkg/library"
)

func cmdPart(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ldrawtool part <name>")
		os.Exit(1)
	}
	e, err := openEnv(cfg)
	if err != nil {
		return err
	}
	defer e.close()

	m, err := e.session.PartMesh(args[0])
	if err != nil {
		return err
	}
	var refs []string
	if model, ok := e.session.Registry().Lookup(args[0]); ok {
		refs = model.References()
	}
	printPartMesh(os.Stdout, m, refs)
	return nil
}

// printPartMesh writes the summary shown by the part command.
func printPartMesh(w io.Writer, m *mesh.Mesh, refs []string) {
	fmt.Fprintf(w, "Part:       %s\n", m.Name)
	fmt.Fprintf(w, "Vertices:   %d\n", len(m.Vertices))
	fmt.Fprintf(w, "Triangles:  %d\n", m.TriangleCount())
	fmt.Fprintf(w, "Polylines:  %d\n", m.PolylineCount())
	if m.Bounds.Valid() {
		c, s := m.Bounds.Center(), m.Bounds.Size()
		fmt.Fprintf(w, "Center:     (%g, %g, %g)\n", c.X, c.Y, c.Z)
		fmt.Fprintf(w, "Size:       (%g, %g, %g)\n", s.X, s.Y, s.Z)
	}
	if len(refs) > 0 {
		fmt.Fprintf(w, "References: %s\n", strings.Join(refs, ", "))
	}
	for _, sm := range m.Submeshes {
		fmt.Fprintf(w, "  %-10s colour=%-6s indices=%d\n", sm.Topology, sm.Color, len(sm.Indices))
	}
}

func cmdColors(cfg *config.Config, args []string) error {
	var lib library.Library
	if l, err := openLibrary(cfg); err != nil {
		logger.Warn("library not available", zap.Error(err))
	} else {
		lib = l
		defer lib.Close()
	}
	printColors(os.Stdout, loadColors(cfg, lib))
	return nil
}

// printColors writes one line per colour in code order.
func printColors(w io.Writer, t *ldraw.ColorTable) {
	for _, code := range t.Codes() {
		c, err := t.Resolve(ldraw.ColorCode(code))
		if err != nil {
			continue
		}
		line := fmt.Sprintf("%5d  %-28s #%02X%02X%02X", c.Code, c.Name, c.Value.R, c.Value.G, c.Value.B)
		if c.Transparent() {
			line += fmt.Sprintf("  alpha=%d", c.Value.A)
		}
		fmt.Fprintln(w, line)
	}
}

func cmdModels(cfg *config.Config, args []string) error {
	e, err := openEnv(cfg)
	if err != nil {
		return err
	}
	defer e.close()

	for _, arg := range args {
		if _, err := e.modelNames([]string{arg}); err != nil {
			return err
		}
	}
	names := e.models.Names()
	for _, n := range names {
		fmt.Println(n)
	}
	fmt.Fprintf(os.Stderr, "\n(%d models)\n", len(names))
	return nil
}
