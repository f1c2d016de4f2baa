// Package estimate computes the total byte size of a transfer working set
// in the background, so jobs can start immediately and progress reporting
// can upgrade from file counts to bytes as sizes arrive.
package estimate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/blobkit/transfer/store"
	"github.com/blobkit/transfer/transfertypes"
)

// Config controls one estimation pass.
type Config struct {
	// Workers is the number of concurrent metadata probes.
	Workers int

	// Pacing is the delay each worker inserts before a probe, keeping the
	// request rate low enough to stay clear of store throttling.
	Pacing time.Duration

	// NotifyEvery publishes the running total after this many entries.
	// The final total is always published regardless.
	NotifyEvery int

	// Publish receives the running total. Complete is true only on the
	// final publish of a full, uncancelled pass.
	Publish func(totalBytes int64, complete bool)

	Logger *slog.Logger
}

// Estimator resolves unknown entry sizes via metadata probes and maintains
// a running byte total. It writes entry sizes and publishes totals; all
// other transfer state belongs to the engine.
type Estimator struct {
	store     store.Client
	container string
	cfg       Config

	mu        sync.Mutex
	total     int64
	processed int
	complete  bool
}

// New returns an estimator for one job's working set.
func New(st store.Client, container string, cfg Config) *Estimator {
	if cfg.Workers <= 0 {
		cfg.Workers = transfertypes.DefaultEstimatorWorkers
	}
	if cfg.NotifyEvery <= 0 {
		cfg.NotifyEvery = transfertypes.DefaultNotifyEvery
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Estimator{store: st, container: container, cfg: cfg}
}

// Run processes the working set and returns once every entry has been
// accounted for or ctx is cancelled. Entries with known sizes are summed
// without a probe; unknown sizes are fetched with pacing between probes.
// A failed probe records size 0 and the pass continues.
func (e *Estimator) Run(ctx context.Context, entries []*transfertypes.ObjectEntry) error {
	queue := make(chan *transfertypes.ObjectEntry)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(queue)
		for _, entry := range entries {
			select {
			case queue <- entry:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < e.cfg.Workers; i++ {
		g.Go(func() error {
			for entry := range queue {
				if err := e.account(gctx, entry); err != nil {
					return err
				}
			}
			return nil
		})
	}

	err := g.Wait()

	e.mu.Lock()
	if err == nil {
		e.complete = true
	}
	total, complete := e.total, e.complete
	e.mu.Unlock()

	if e.cfg.Publish != nil {
		e.cfg.Publish(total, complete)
	}
	return err
}

func (e *Estimator) account(ctx context.Context, entry *transfertypes.ObjectEntry) error {
	if size, known := entry.Size(); known {
		e.add(size)
		return nil
	}

	if e.cfg.Pacing > 0 {
		timer := time.NewTimer(e.cfg.Pacing)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	meta, err := e.store.GetMetadata(ctx, e.container, entry.Key)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.cfg.Logger.Warn("size probe failed",
			"container", e.container, "key", entry.Key, "error", err)
		entry.SetSize(0)
		e.add(0)
		return nil
	}

	entry.SetSize(meta.Size)
	e.add(meta.Size)
	return nil
}

func (e *Estimator) add(size int64) {
	e.mu.Lock()
	e.total += size
	e.processed++
	notify := e.processed%e.cfg.NotifyEvery == 0
	total := e.total
	e.mu.Unlock()

	if notify && e.cfg.Publish != nil {
		e.cfg.Publish(total, false)
	}
}

// Total returns the running byte total accumulated so far.
func (e *Estimator) Total() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.total
}

// Complete reports whether a full pass over the working set finished
// without cancellation. Totals published before this are lower bounds.
func (e *Estimator) Complete() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.complete
}
