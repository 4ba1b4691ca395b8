// SPDX-License-Identifier: Apache-2.0

// Package batch renders many serialized documents concurrently, e.g. to
// feed a search index.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/docscope/officemd/internal/document"
	"github.com/docscope/officemd/internal/render"
)

// Result is the outcome for one input file. Err is set when the file could
// not be loaded; the other files of the batch are unaffected.
type Result struct {
	Path     string           `json:"path"`
	DocType  document.DocType `json:"doc_type,omitempty"`
	Renderer string           `json:"renderer,omitempty"`
	Text     string           `json:"text,omitempty"`
	Cached   bool             `json:"cached,omitempty"`
	Err      error            `json:"-"`
}

// Options configures a Runner.
type Options struct {
	Delimiter string
	Workers   int
	MaxDepth  int
	Logger    *slog.Logger
}

// Runner loads and renders document files with bounded concurrency and
// memoizes the text of unchanged files.
type Runner struct {
	dispatcher *render.Dispatcher
	delimiter  string
	workers    int
	maxDepth   int
	logger     *slog.Logger

	mu    sync.Mutex
	cache map[cacheKey]Result
}

type cacheKey struct {
	path    string
	size    int64
	modTime time.Time
}

// New creates a Runner. Zero options fall back to a newline delimiter,
// GOMAXPROCS workers and render.DefaultMaxDepth.
func New(opts Options) *Runner {
	if opts.Delimiter == "" {
		opts.Delimiter = render.DefaultDelimiter
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = render.DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{
		dispatcher: render.NewDispatcher(render.WithMaxDepth(opts.MaxDepth)),
		delimiter:  opts.Delimiter,
		workers:    opts.Workers,
		maxDepth:   opts.MaxDepth,
		logger:     opts.Logger,
		cache:      make(map[cacheKey]Result),
	}
}

// Run renders every path and returns one Result per path, in input order.
// The returned error is non-nil only when ctx is cancelled; per-file
// failures are reported in Result.Err.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.workers)

	r.logger.Info("batch started", "files", len(paths), "workers", r.workers)
	for i, path := range paths {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.renderFile(path)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return results, fmt.Errorf("batch cancelled: %w", err)
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	r.logger.Info("batch finished", "files", len(paths), "failed", failed)
	return results, nil
}

// CacheLen returns the number of memoized files.
func (r *Runner) CacheLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

func (r *Runner) renderFile(path string) Result {
	logCtx := r.logger.With("path", path)

	info, err := os.Stat(path)
	if err != nil {
		logCtx.Error("stat failed", "error", err)
		return Result{Path: path, Err: fmt.Errorf("stat %s: %w", path, err)}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	key := cacheKey{path: abs, size: info.Size(), modTime: info.ModTime()}

	r.mu.Lock()
	cached, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		logCtx.Debug("cache hit")
		cached.Path = path
		cached.Cached = true
		return cached
	}

	doc, err := document.LoadFile(path)
	if err != nil {
		logCtx.Error("load failed", "error", err)
		return Result{Path: path, Err: err}
	}
	if err := document.CheckDepth(doc, r.maxDepth); err != nil {
		logCtx.Warn("tree truncated while rendering", "error", err)
	}

	res := Result{
		Path:     path,
		DocType:  doc.Type,
		Renderer: r.dispatcher.Select(doc.Type).Name(),
		Text:     r.dispatcher.RenderToText(doc, r.delimiter),
	}
	r.mu.Lock()
	r.cache[key] = res
	r.mu.Unlock()
	logCtx.Debug("rendered", "renderer", res.Renderer, "bytes", len(res.Text))
	return res
}
