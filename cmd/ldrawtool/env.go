package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/brickyard/internal/compose"
	"github.com/Faultbox/brickyard/internal/config"
	"github.com/Faultbox/brickyard/internal/logger"
	"github.com/Faultbox/brickyard/internal/store"
	"github.com/Faultbox/brickyard/pkg/ldraw"
	"github.com/Faultbox/brickyard/pkg/library"
)

// env is the import environment shared by the model commands.
type env struct {
	cfg     *config.Config
	lib     library.Library // nil when no library could be opened
	models  *ldraw.ModelSet
	colors  *ldraw.ColorTable
	session *compose.Session
}

func openLibrary(cfg *config.Config) (library.Library, error) {
	lib, err := library.Open(cfg.Library.Path)
	if err != nil {
		return nil, err
	}
	logger.Info("library opened",
		zap.String("path", cfg.Library.Path),
		zap.Int("files", lib.Len()))
	return lib, nil
}

// openEnv opens the library, scans the models path and creates the session.
// A missing library is only a warning: models that reference nothing but
// their own sub-models still import.
func openEnv(cfg *config.Config) (*env, error) {
	e := &env{cfg: cfg, models: ldraw.NewModelSet()}

	var src ldraw.Chain
	lib, err := openLibrary(cfg)
	if err != nil {
		logger.Warn("library not available", zap.Error(err))
	} else {
		e.lib = lib
		src = append(src, lib)
	}
	src = append(src, e.models)

	if cfg.Library.ModelsPath != "" {
		names, err := library.ScanModels(e.models, cfg.Library.ModelsPath)
		if err != nil {
			e.close()
			return nil, err
		}
		logger.Debug("models scanned",
			zap.String("path", cfg.Library.ModelsPath),
			zap.Int("files", len(names)))
	}

	e.colors = loadColors(cfg, e.lib)

	var st store.Store
	if cfg.Cache.Enabled {
		st = store.NewGLB(cfg.Cache.MeshDir)
	}
	e.session = compose.NewSession(src, st, compose.Options{
		MaxDepth:   cfg.Import.MaxDepth,
		WeldDigits: cfg.Import.WeldDigits,
		Scale:      cfg.Import.Scale,
		Logger:     logger.Named("compose"),
	})
	return e, nil
}

func (e *env) close() {
	if e.lib != nil {
		e.lib.Close()
	}
}

// loadColors reads the configured colour table, then the library's, then
// falls back to the built-in table.
func loadColors(cfg *config.Config, lib library.Library) *ldraw.ColorTable {
	var data []byte
	var err error
	switch {
	case cfg.Library.ColorConfig != "":
		data, err = os.ReadFile(cfg.Library.ColorConfig)
	case lib != nil:
		data, err = lib.ColorConfig()
	default:
		return ldraw.DefaultColors()
	}
	if err == nil {
		var table *ldraw.ColorTable
		if table, err = ldraw.ParseColorConfig(bytes.NewReader(data)); err == nil {
			return table
		}
	}
	if !errors.Is(err, ldraw.ErrNameNotFound) {
		logger.Warn("colour table not loaded, using built-in colours", zap.Error(err))
	}
	return ldraw.DefaultColors()
}

// modelName resolves a command argument: an existing model file is loaded
// and its primary model returned, the file name of a scanned model file
// gives that file's primary model, anything else is a library or model name.
func (e *env) modelName(arg string) (string, error) {
	if !isModelFile(arg) {
		return arg, nil
	}
	if _, err := os.Stat(arg); err != nil {
		if primary, ok := e.models.Primary(arg); ok {
			return primary, nil
		}
		return arg, nil
	}
	return library.LoadModelFile(e.models, arg)
}

// modelNames expands arguments into model names. Directories are scanned;
// no arguments scan the configured models path.
func (e *env) modelNames(args []string) ([]string, error) {
	if len(args) == 0 {
		if e.cfg.Library.ModelsPath == "" {
			return nil, fmt.Errorf("no models given and no models_path configured")
		}
		args = []string{e.cfg.Library.ModelsPath}
	}

	var names []string
	for _, arg := range args {
		if fi, err := os.Stat(arg); err == nil && fi.IsDir() {
			found, err := library.ScanModels(e.models, arg)
			if err != nil {
				return nil, err
			}
			names = append(names, found...)
			continue
		}
		name, err := e.modelName(arg)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func isModelFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ldr", ".mpd", ".dat":
		return true
	}
	return false
}

// outputPath returns dir/<model base name><ext>.
func outputPath(dir, name, ext string) string {
	base := filepath.Base(filepath.FromSlash(name))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+ext)
}

// reportMissing prints each distinct missing part once.
func reportMissing(res *compose.Result) {
	missing := res.MissingParts()
	if len(missing) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "\n%d part(s) not found, add them to the library or models path:\n", len(missing))
	for _, name := range missing {
		fmt.Fprintf(os.Stderr, "  %s\n", name)
	}
}
