// Package engine drives the documentation checks over parsed files: one
// traversal per file with a fresh symbol table, files linted in parallel
// and aggregated by path.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/maypok86/otter"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/doclint/internal/diag"
	"github.com/mvp-joe/doclint/internal/parser"
	"github.com/mvp-joe/doclint/internal/rules"
	"github.com/mvp-joe/doclint/internal/symbols"
)

var (
	// ErrSyntax is returned for a file whose syntax tree contains errors.
	ErrSyntax = errors.New("syntax error")

	// ErrContract is returned when the traversal drives the scope tracker
	// incorrectly. The file's partial results are discarded.
	ErrContract = errors.New("traversal aborted")
)

// ProgressReporter receives progress while files are linted.
type ProgressReporter interface {
	OnLintStart(totalFiles int)
	OnFileLinted(processed, total int, path string)
	OnLintComplete(files, diagnostics int, duration time.Duration)
}

// Engine lints JavaScript and TypeScript sources. An Engine is safe for
// concurrent use; every file run has its own state.
type Engine struct {
	rules    *rules.Registry
	log      logrus.FieldLogger
	jobs     int
	cache    otter.Cache[string, *diag.FileResult]
	cached   bool
	progress ProgressReporter
}

// Option configures an Engine.
type Option func(*Engine)

// WithRules sets the rule registry. The default is rules.Default().
func WithRules(reg *rules.Registry) Option {
	return func(e *Engine) {
		e.rules = reg
	}
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithJobs bounds the number of files linted concurrently. Zero or less
// means GOMAXPROCS.
func WithJobs(jobs int) Option {
	return func(e *Engine) {
		e.jobs = jobs
	}
}

// WithCache memoizes results of up to size files, keyed by path and
// content hash.
func WithCache(size int) Option {
	return func(e *Engine) {
		if size <= 0 {
			return
		}
		cache, err := otter.MustBuilder[string, *diag.FileResult](size).Build()
		if err != nil {
			e.log.WithError(err).Warn("result cache disabled")
			return
		}
		e.cache = cache
		e.cached = true
	}
}

// WithProgress configures progress reporting for LintFiles.
func WithProgress(progress ProgressReporter) Option {
	return func(e *Engine) {
		e.progress = progress
	}
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		rules: rules.Default(),
		log:   discardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.jobs <= 0 {
		e.jobs = runtime.GOMAXPROCS(0)
	}
	return e
}

// Close releases the result cache.
func (e *Engine) Close() {
	if e.cached {
		e.cache.Close()
	}
}

// Rules returns the engine's rule registry.
func (e *Engine) Rules() *rules.Registry {
	return e.rules
}

// LintSource lints one file's content. Results are shared with the cache
// and must not be modified.
func (e *Engine) LintSource(ctx context.Context, path string, src []byte) (*diag.FileResult, error) {
	var key string
	if e.cached {
		key = cacheKey(path, src)
		if res, ok := e.cache.Get(key); ok {
			e.log.WithField("file", path).Debug("cache hit")
			return res, nil
		}
	}

	res, err := e.lint(ctx, path, src)
	if err != nil {
		return nil, err
	}
	if e.cached {
		e.cache.Set(key, res)
	}
	return res, nil
}

func (e *Engine) lint(ctx context.Context, path string, src []byte) (res *diag.FileResult, err error) {
	start := time.Now()

	tree, err := parser.Parse(ctx, path, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	if bad := tree.FirstError(); bad != nil {
		return nil, fmt.Errorf("%w at %s", ErrSyntax, tree.Position(bad))
	}

	defer func() {
		if r := recover(); r != nil {
			v, ok := r.(*symbols.ContractViolation)
			if !ok {
				panic(r)
			}
			res, err = nil, fmt.Errorf("%w: %s: %w", ErrContract, path, v)
		}
	}()

	w := newWalker(ctx, tree, e.rules)
	if err := w.run(); err != nil {
		var v *symbols.ContractViolation
		if errors.As(err, &v) {
			return nil, fmt.Errorf("%w: %s: %w", ErrContract, path, v)
		}
		return nil, err
	}

	arena := w.tracker.Arena()
	res = &diag.FileResult{
		Path:        path,
		Diagnostics: w.reporter.Finish(),
		Functions:   len(arena.Functions()),
		Types:       len(arena.Types()),
		Duration:    time.Since(start),
	}
	e.log.WithFields(logrus.Fields{
		"file":        path,
		"functions":   res.Functions,
		"types":       res.Types,
		"diagnostics": len(res.Diagnostics),
		"duration":    res.Duration,
	}).Debug("linted")
	return res, nil
}

// LintFiles reads and lints files in parallel. A file that cannot be read,
// parsed or traversed is recorded as a failure of that file; only context
// cancellation fails the run.
func (e *Engine) LintFiles(ctx context.Context, paths []string) (*diag.Report, error) {
	start := time.Now()
	if e.progress != nil {
		e.progress.OnLintStart(len(paths))
	}

	// each goroutine writes only its own slot
	results := make([]*diag.FileResult, len(paths))
	failures := make([]error, len(paths))
	var processed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(e.jobs, len(paths))))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := e.lintFile(gctx, path)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				e.log.WithError(err).WithField("file", path).Warn("file skipped")
				failures[i] = err
			} else {
				results[i] = res
			}

			if e.progress != nil {
				e.progress.OnFileLinted(int(processed.Add(1)), len(paths), path)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make([]diag.FileResult, 0, len(paths))
	var failed []diag.Failure
	for i, path := range paths {
		if failures[i] != nil {
			failed = append(failed, diag.Failure{Path: path, Err: failures[i]})
			continue
		}
		files = append(files, *results[i])
	}
	report := diag.NewReport(files, failed)

	if e.progress != nil {
		e.progress.OnLintComplete(len(files), len(report.Diagnostics()), time.Since(start))
	}
	e.log.WithFields(logrus.Fields{
		"files":    len(files),
		"failures": len(failed),
		"duration": time.Since(start),
	}).Info("lint complete")
	return report, nil
}

func (e *Engine) lintFile(ctx context.Context, path string) (*diag.FileResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return e.LintSource(ctx, path, src)
}

func cacheKey(path string, src []byte) string {
	sum := sha256.Sum256(src)
	return path + "\x00" + hex.EncodeToString(sum[:])
}
