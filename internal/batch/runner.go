package batch

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/notarykit/docuscan/constants"
	"github.com/notarykit/docuscan/internal/common"
	"github.com/notarykit/docuscan/internal/export"
	"github.com/notarykit/docuscan/internal/extraction"
	"github.com/notarykit/docuscan/internal/imaging"

	"log/slog"
)

// Config holds worker-pool and retry behavior for batch runs.
type Config struct {
	Workers     int           // default 4
	FileTimeout time.Duration // per-file budget, default 2m
	Attempts    uint          // attempts per file, default 3; only transport-class errors retry
	RetryDelay  time.Duration // base backoff, default 2s
	SkipHidden  bool
}

// Runner walks a directory of document images and feeds each one through
// the extraction pipeline on a fixed pool of workers. The pipeline is
// stateless, so workers share one instance without locking.
type Runner struct {
	logger   *slog.Logger
	cfg      Config
	pipeline *extraction.Pipeline
}

// Stats aggregates one batch run.
type Stats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}

func NewRunner(pipeline *extraction.Pipeline, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.FileTimeout <= 0 {
		cfg.FileTimeout = 2 * time.Minute
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &Runner{logger: logger, cfg: cfg, pipeline: pipeline}
}

// Run walks root, filters by includeExts (or image defaults), extracts every
// match, and returns per-file rows sorted by path plus aggregate stats.
func (r *Runner) Run(ctx context.Context, kind constants.DocKind, root string, includeExts []string) ([]export.Row, Stats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, Stats{}, errors.New("root path is required")
	}

	exts := map[string]struct{}{}
	if len(includeExts) == 0 {
		exts = map[string]struct{}{"jpg": {}, "jpeg": {}, "png": {}, "webp": {}}
	} else {
		for _, e := range includeExts {
			e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
			if e != "" {
				exts[e] = struct{}{}
			}
		}
	}

	var stats Stats
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			r.logger.Warn("batch.walk_error", "path", path, "error", walkErr)
			stats.Failed++
			return nil // continue walking
		}
		if r.cfg.SkipHidden && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if _, ok := exts[ext]; !ok {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	r.logger.Info("batch.start",
		"kind", kind, "root", root,
		"matched", stats.Matched, "workers", r.cfg.Workers,
	)

	jobs := make(chan string)
	var mu sync.Mutex
	var rows []export.Row
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for path := range jobs {
				row := r.extractOne(ctx, kind, path)
				mu.Lock()
				if row.Err == "" {
					stats.Succeeded++
				} else {
					stats.Failed++
				}
				rows = append(rows, row)
				mu.Unlock()
			}
		}(i + 1)
	}

	for _, p := range paths {
		select {
		case jobs <- p:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return rows, stats, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	sort.Slice(rows, func(i, j int) bool { return rows[i].Path < rows[j].Path })

	r.logger.Info("batch.done",
		"kind", kind,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
	)
	return rows, stats, nil
}

// extractOne reads the file once and retries the pipeline call on
// transport-class failures only; config and input errors will not improve
// on a second attempt.
func (r *Runner) extractOne(ctx context.Context, kind constants.DocKind, path string) export.Row {
	raw, err := os.ReadFile(path)
	if err != nil {
		r.logger.Error("batch.read_error", "path", path, "error", err)
		return export.Row{Path: path, Err: err.Error()}
	}
	mediaType := imaging.MediaTypeForPath(path)

	var result *extraction.Result
	err = retry.Do(
		func() error {
			runCtx, cancel := context.WithTimeout(ctx, r.cfg.FileTimeout)
			defer cancel()
			res, err := r.pipeline.Extract(runCtx, kind, imaging.Image{
				Reader:    bytes.NewReader(raw),
				MediaType: mediaType,
			})
			if err != nil {
				return err
			}
			result = res
			return nil
		},
		retry.Attempts(r.cfg.Attempts),
		retry.Delay(r.cfg.RetryDelay),
		retry.RetryIf(common.Retryable),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Warn("batch.retry", "path", path, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		r.logger.Error("batch.extract_error", "path", path, "error", err)
		return export.Row{Path: path, Err: err.Error()}
	}

	r.logger.Info("batch.extract_ok",
		"path", path,
		"confidence", result.Confidence,
		"verified", result.Verified,
		"tier", result.Tier,
	)
	return export.Row{Path: path, Result: result}
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
