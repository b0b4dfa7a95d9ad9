package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ftahirops/xtimeline/engine"
)

// Status is a snapshot of a Loader's progress.
type Status struct {
	Pending int
	Loaded  int
	Failed  int
	// LastErr is the most recent source failure.
	LastErr error
}

// Busy reports whether sources are still loading.
func (s Status) Busy() bool { return s.Pending > 0 }

// Loader fetches and decodes sources in the background. Finished batches
// wait in a mutex-guarded cell until the owner of the engine takes them,
// so the engine itself is only touched from one goroutine.
type Loader struct {
	fetcher *Fetcher
	limit   int
	log     *slog.Logger

	mu     sync.Mutex
	ready  []engine.Batch
	errs   []error
	status Status
}

// NewLoader creates a Loader running at most limit fetches at a time.
func NewLoader(f *Fetcher, limit int, log *slog.Logger) *Loader {
	if limit < 1 {
		limit = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Loader{fetcher: f, limit: limit, log: log}
}

// Start loads sources asynchronously and returns immediately.
func (l *Loader) Start(ctx context.Context, sources ...string) {
	if len(sources) == 0 {
		return
	}
	l.mu.Lock()
	l.status.Pending += len(sources)
	l.mu.Unlock()
	go l.run(ctx, sources)
}

// Run loads sources and blocks until all of them finished. It returns the
// first failure; successful batches are still available from Take.
func (l *Loader) Run(ctx context.Context, sources ...string) error {
	l.mu.Lock()
	l.status.Pending += len(sources)
	l.mu.Unlock()
	return l.run(ctx, sources)
}

func (l *Loader) run(ctx context.Context, sources []string) error {
	var g errgroup.Group
	g.SetLimit(l.limit)
	for _, src := range sources {
		src := src
		g.Go(func() error {
			b, err := l.fetcher.Load(ctx, src)
			l.finish(src, b, err)
			if err != nil {
				return fmt.Errorf("load %s: %w", src, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (l *Loader) finish(src string, b engine.Batch, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status.Pending--
	if err != nil {
		l.status.Failed++
		l.status.LastErr = err
		l.errs = append(l.errs, fmt.Errorf("load %s: %w", src, err))
		l.log.Error("source failed", "source", src, "err", err)
		return
	}
	l.status.Loaded++
	l.ready = append(l.ready, b)
}

// Take hands over the batches and errors collected since the last call.
func (l *Loader) Take() ([]engine.Batch, []error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, e := l.ready, l.errs
	l.ready, l.errs = nil, nil
	return b, e
}

// Status returns the current progress counters.
func (l *Loader) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}
