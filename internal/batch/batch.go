// Package batch imports many models concurrently on a worker pool.
package batch

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/zap"

	"github.com/Faultbox/brickyard/internal/compose"
)

// Config holds the shared resources of a batch run.
type Config struct {
	Session *compose.Session
	Workers int

	// Export, when set, runs after a successful import (glTF export,
	// preview). Its error fails that model only.
	Export func(name string, res *compose.Result) error

	// ProgressInterval is how often progress is logged; 0 disables it.
	ProgressInterval time.Duration
	Logger           *zap.Logger
}

// Result holds the outcome of importing one model.
type Result struct {
	Name     string
	Success  bool
	Error    error
	Problems []error // recoverable issues of a successful import
	Missing  []string
	Stats    compose.Stats
	Elapsed  time.Duration
}

// RunConfig imports every name and returns results in input order. A failing
// or panicking model never stops the others.
func RunConfig(cfg Config, names []string) []Result {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	total := len(names)
	results := make([]Result, total)
	var processed atomic.Int64
	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.ProgressInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.ProgressInterval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						log.Info("batch progress",
							zap.Int64("done", p),
							zap.Int("total", total),
							zap.Float64("models_per_sec", rate))
					}
				}
			}
		}()
	}

	pool := worker.NewDynamicWorkerPool(workers, 256, time.Second)
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				results[i] = process(cfg, name)
				processed.Add(1)
				return nil, results[i].Error
			},
		})
	}
	wg.Wait()
	pool.Stop()
	close(done)

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
			log.Warn("model import failed", zap.String("model", r.Name), zap.Error(r.Error))
		}
	}
	log.Info("batch finished",
		zap.Int("total", total),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)))
	return results
}

func process(cfg Config, name string) (r Result) {
	r.Name = name
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			r.Success = false
			r.Error = fmt.Errorf("panic importing %s: %v", name, p)
		}
		r.Elapsed = time.Since(start)
	}()

	res, err := cfg.Session.Generate(name)
	if err != nil {
		r.Error = err
		return r
	}
	r.Problems = res.Problems
	r.Missing = res.MissingParts()
	r.Stats = res.Stats()

	if cfg.Export != nil {
		if err := cfg.Export(name, res); err != nil {
			r.Error = fmt.Errorf("exporting %s: %w", name, err)
			return r
		}
	}
	r.Success = true
	return r
}

// Summary counts successful and failed results.
func Summary(results []Result) (ok, failed int) {
	for _, r := range results {
		if r.Success {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}
