package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/brickyard/internal/batch"
	"github.com/Faultbox/brickyard/internal/compose"
	"github.com/Faultbox/brickyard/internal/config"
	"github.com/Faultbox/brickyard/internal/logger"
	"github.com/Faultbox/brickyard/internal/preview"
	"github.com/Faultbox/brickyard/internal/render"
	"github.com/Faultbox/brickyard/internal/store"
)

// generate imports the single model named by args.
func generate(cfg *config.Config, usage string, args []string) (*env, *compose.Result, error) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: ldrawtool %s\n", usage)
		os.Exit(1)
	}
	e, err := openEnv(cfg)
	if err != nil {
		return nil, nil, err
	}
	name, err := e.modelName(args[0])
	if err != nil {
		e.close()
		return nil, nil, err
	}
	res, err := e.session.Generate(name)
	if err != nil {
		e.close()
		return nil, nil, err
	}
	return e, res, nil
}

func cmdInfo(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	files := fs.Bool("files", false, "List every file parsed for the model")
	fs.Parse(args)

	start := time.Now()
	e, res, err := generate(cfg, "info [-files] <model>", fs.Args())
	if err != nil {
		return err
	}
	defer e.close()

	st := res.Stats()
	fmt.Printf("Model:     %s\n", res.Root.Name)
	fmt.Printf("Nodes:     %d\n", st.Nodes)
	fmt.Printf("Parts:     %d\n", st.Parts)
	fmt.Printf("Missing:   %d\n", st.Missing)
	fmt.Printf("Baked:     %d\n", st.Baked)
	fmt.Printf("Triangles: %d\n", st.Triangles)
	fmt.Printf("Polylines: %d\n", st.Polylines)
	fmt.Printf("Files:     %d parsed, %d part meshes\n", e.session.Registry().Len(), e.session.Meshes().Len())
	fmt.Printf("Elapsed:   %s\n", time.Since(start).Round(time.Millisecond))
	if *files {
		fmt.Println()
		for _, name := range e.session.Registry().Names() {
			fmt.Printf("  %s\n", name)
		}
	}

	if len(res.Problems) > 0 {
		fmt.Println()
		fmt.Println("Problems:")
		for _, p := range res.Problems {
			fmt.Printf("  %v\n", p)
		}
	}
	reportMissing(res)
	return nil
}

func cmdList(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N files (0 = all)")
	fs.Parse(args)

	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer lib.Close()

	pattern := ""
	if fs.NArg() > 0 {
		pattern = strings.ToLower(fs.Arg(0))
	}

	count := 0
	for _, f := range lib.List() {
		if pattern != "" {
			matched, _ := filepath.Match(pattern, filepath.Base(f))
			if !matched && !strings.Contains(f, pattern) {
				continue
			}
		}
		fmt.Println(f)
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}

	if pattern != "" {
		fmt.Fprintf(os.Stderr, "\n(%d files matched)\n", count)
	}
	return nil
}

func cmdSearch(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ldrawtool search <pattern>")
		os.Exit(1)
	}

	lib, err := openLibrary(cfg)
	if err != nil {
		return err
	}
	defer lib.Close()

	pattern := strings.ToLower(args[0])
	var matches []string
	for _, f := range lib.List() {
		if strings.Contains(f, pattern) {
			matches = append(matches, f)
		}
	}

	// Parts first, then sub-parts and primitives.
	sort.SliceStable(matches, func(i, j int) bool {
		return strings.Count(matches[i], "/") < strings.Count(matches[j], "/")
	})
	for _, m := range matches {
		fmt.Println(m)
	}
	fmt.Fprintf(os.Stderr, "\n(%d files found)\n", len(matches))
	return nil
}

func cmdTree(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tree", flag.ExitOnError)
	maxDepth := fs.Int("depth", 0, "Limit printed depth (0 = all)")
	fs.Parse(args)

	e, res, err := generate(cfg, "tree [-depth N] <model>", fs.Args())
	if err != nil {
		return err
	}
	defer e.close()

	res.Root.Walk(func(n *compose.Node, depth int) {
		if *maxDepth > 0 && depth > *maxDepth {
			return
		}
		var flags []string
		if n.Part {
			flags = append(flags, "part")
		}
		if n.Baked {
			flags = append(flags, "baked")
		}
		if n.Missing {
			flags = append(flags, "missing")
		}
		p := n.Transform.Position
		line := fmt.Sprintf("%s%s  colour=%s  pos=(%g, %g, %g)",
			strings.Repeat("  ", depth), n.Name, n.Color, p.X, p.Y, p.Z)
		if n.Mesh != nil {
			line += fmt.Sprintf("  tris=%d", n.Mesh.TriangleCount())
		}
		if len(flags) > 0 {
			line += "  [" + strings.Join(flags, ",") + "]"
		}
		fmt.Println(line)
	})
	reportMissing(res)
	return nil
}

func cmdExport(cfg *config.Config, args []string) error {
	e, res, err := generate(cfg, "export <model> [output.glb]", args)
	if err != nil {
		return err
	}
	defer e.close()

	out := outputPath(".", res.Root.Name, ".glb")
	if len(args) > 1 {
		out = args[1]
	}
	if err := store.ExportScene(out, res.Root.Scene(), e.colors); err != nil {
		return err
	}
	fmt.Printf("Exported %s -> %s\n", res.Root.Name, out)
	reportMissing(res)
	return nil
}

func previewOptions(cfg *config.Config) preview.Options {
	opts := preview.DefaultOptions()
	opts.Size = cfg.Preview.Size
	opts.Supersample = cfg.Preview.Supersample
	opts.Edges = cfg.Preview.Edges
	return opts
}

func cmdPreview(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	size := fs.Int("size", 0, "Image size in pixels (0 = config)")
	yaw := fs.Float64("yaw", float64(preview.DefaultOptions().Yaw), "Camera yaw in degrees")
	pitch := fs.Float64("pitch", float64(preview.DefaultOptions().Pitch), "Camera pitch in degrees")
	fs.Parse(args)

	e, res, err := generate(cfg, "preview [-size N] [-yaw D] [-pitch D] <model> [output.webp]", fs.Args())
	if err != nil {
		return err
	}
	defer e.close()

	opts := previewOptions(cfg)
	if *size > 0 {
		opts.Size = *size
	}
	opts.Yaw, opts.Pitch = float32(*yaw), float32(*pitch)

	out := outputPath(".", res.Root.Name, ".webp")
	if fs.NArg() > 1 {
		out = fs.Arg(1)
	}
	img := preview.Render(render.Flatten(res.Root, e.colors), opts)
	if err := preview.WriteFile(out, img); err != nil {
		return err
	}
	fmt.Printf("Rendered %s -> %s\n", res.Root.Name, out)
	reportMissing(res)
	return nil
}

func cmdBatch(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	outDir := fs.String("out", "", "Write a .glb scene per model to this directory")
	withPreview := fs.Bool("preview", false, "Also write a .webp preview per model (needs -out)")
	fs.Parse(args)

	e, err := openEnv(cfg)
	if err != nil {
		return err
	}
	defer e.close()

	names, err := e.modelNames(fs.Args())
	if err != nil {
		return err
	}

	bcfg := batch.Config{
		Session:          e.session,
		Workers:          cfg.Import.Workers,
		ProgressInterval: 5 * time.Second,
		Logger:           logger.Named("batch"),
	}
	if *outDir != "" {
		opts := previewOptions(cfg)
		bcfg.Export = func(name string, res *compose.Result) error {
			if err := store.ExportScene(outputPath(*outDir, name, ".glb"), res.Root.Scene(), e.colors); err != nil {
				return err
			}
			if !*withPreview {
				return nil
			}
			img := preview.Render(render.Flatten(res.Root, e.colors), opts)
			return preview.WriteFile(outputPath(*outDir, name, ".webp"), img)
		}
	}

	results := batch.RunConfig(bcfg, names)

	missing := make(map[string]bool)
	for _, r := range results {
		status := "ok"
		if !r.Success {
			status = "FAILED: " + r.Error.Error()
		} else if len(r.Problems) > 0 {
			status = fmt.Sprintf("ok, %d problem(s)", len(r.Problems))
		}
		fmt.Printf("%-40s %8s  %s\n", r.Name, r.Elapsed.Round(time.Millisecond), status)
		for _, name := range r.Missing {
			missing[name] = true
		}
	}

	ok, failed := batch.Summary(results)
	fmt.Printf("\n%d imported, %d failed\n", ok, failed)
	if len(missing) > 0 {
		list := make([]string, 0, len(missing))
		for name := range missing {
			list = append(list, name)
		}
		sort.Strings(list)
		logger.Warn("parts not found", zap.Strings("parts", list))
		fmt.Fprintf(os.Stderr, "\n%d part(s) not found across all models:\n", len(list))
		for _, name := range list {
			fmt.Fprintf(os.Stderr, "  %s\n", name)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d model(s) failed", failed)
	}
	return nil
}

func cmdInitConfig(cfg *config.Config, args []string) error {
	path := filepath.Join(config.ConfigDir(), "config.yaml")
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
