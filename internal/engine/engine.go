// Package engine runs bulk transfer jobs: download, upload, delete, and
// cross-account copy. A job expands its selection into a flat working set,
// fans the work out over a bounded pool, and reports progress, per-file
// results, and a final summary through callbacks.
//
// Counter ownership is strict: transfer workers update completed, failed,
// and transferred-byte counts under the job mutex; the size estimator is
// the only writer of the total-byte figure. Progress consumers therefore
// always see internally consistent numbers.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/blobkit/transfer/errors"
	"github.com/blobkit/transfer/internal/copier"
	"github.com/blobkit/transfer/internal/estimate"
	"github.com/blobkit/transfer/internal/progress"
	"github.com/blobkit/transfer/store"
	"github.com/blobkit/transfer/transfertypes"
)

// Config assembles everything a job needs. Store is the source store for
// all kinds; DestStore is the copy destination and defaults to Store.
type Config struct {
	Store     store.Client
	DestStore store.Client
	FS        fs.Filesystem
	Logger    *slog.Logger
	Callbacks transfertypes.Callbacks

	Concurrency       int
	Overwrite         bool
	PreserveStructure bool

	PollInterval     time.Duration
	PollBudget       time.Duration
	ReadURLTTL       time.Duration
	EstimatorWorkers int
	EstimatorPacing  time.Duration
	NotifyEvery      int
}

// Request is the job input: the containers involved, the selected entries
// (store-side kinds), or local paths (upload), and kind-specific roots.
type Request struct {
	Kind transfertypes.OperationKind

	Container     string
	DestContainer string

	// Targets is the user selection for download, delete, and copy.
	// Directory entries are expanded recursively before work starts.
	Targets []*transfertypes.ObjectEntry

	// LocalPaths is the upload selection; files or directories.
	LocalPaths []string

	// LocalRoot is where downloads land.
	LocalRoot string

	// TargetDir is the key prefix uploads are placed under.
	TargetDir string
}

// workItem is one unit of transfer work after expansion.
type workItem struct {
	entry     *transfertypes.ObjectEntry
	localPath string
	destKey   string
}

// result is the outcome of executing one work item.
type result struct {
	size    int64
	skipped bool
	err     error
}

// Job is a running transfer operation. All exported methods are safe for
// concurrent use.
type Job struct {
	id  string
	cfg Config
	req Request
	log *slog.Logger

	cancelled atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
	started   time.Time

	mu         sync.Mutex
	completed  int
	failed     int
	total      int
	bytesDone  int64
	totalBytes int64
	sizesFinal bool
	summary    transfertypes.Summary
	finished   bool
}

// NewJob builds a job without starting it.
func NewJob(cfg Config, req Request) *Job {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DestStore == nil {
		cfg.DestStore = cfg.Store
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = transfertypes.DefaultConcurrency
	}
	id := uuid.NewString()
	return &Job{
		id:   id,
		cfg:  cfg,
		req:  req,
		log:  logger.With("job", id, "kind", string(req.Kind)),
		done: make(chan struct{}),
	}
}

// Start launches the job's run loop. It must be called exactly once.
func (j *Job) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	go j.run(runCtx)
}

// ID returns the job's unique identifier.
func (j *Job) ID() string { return j.id }

// Done is closed when the job has finished and its summary is available.
func (j *Job) Done() <-chan struct{} { return j.done }

// Cancel requests cooperative cancellation. It is idempotent and never
// un-cancels; queued work is dropped and polling loops exit, while work
// already in flight may still finish.
func (j *Job) Cancel() {
	if j.cancelled.CompareAndSwap(false, true) {
		j.log.Info("cancellation requested")
		if j.cancel != nil {
			j.cancel()
		}
	}
}

// Cancelled reports whether cancellation has been requested.
func (j *Job) Cancelled() bool { return j.cancelled.Load() }

// Summary returns the final summary. Valid only after Done is closed.
func (j *Job) Summary() transfertypes.Summary {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.summary
}

// Progress returns a point-in-time progress view of the job.
func (j *Job) Progress() transfertypes.ProgressUpdate {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.progressLocked()
}

func (j *Job) run(ctx context.Context) {
	defer close(j.done)
	j.started = time.Now()

	if j.cfg.Store == nil {
		j.finish(errors.NewError(string(j.req.Kind), errors.ErrClientInit).Error(),
			transfertypes.OutcomeFailed)
		return
	}

	items, err := j.expand(ctx)
	if err != nil {
		if errors.IsCancelled(err) {
			j.finishCancelled()
		} else {
			j.finish(err.Error(), transfertypes.OutcomeFailed)
		}
		return
	}

	j.mu.Lock()
	j.total = len(items)
	j.mu.Unlock()

	// Cancellation during expansion must surface as cancelled, not as an
	// empty success or a failure.
	if j.cancelled.Load() {
		j.finishCancelled()
		return
	}

	if len(items) == 0 {
		j.finishEmpty()
		return
	}

	j.emitProgress()

	estCtx, estCancel := context.WithCancel(ctx)
	var estWG sync.WaitGroup
	if j.needsEstimator() {
		entries := make([]*transfertypes.ObjectEntry, len(items))
		for i, it := range items {
			entries[i] = it.entry
		}
		est := estimate.New(j.cfg.Store, j.req.Container, estimate.Config{
			Workers:     j.cfg.EstimatorWorkers,
			Pacing:      j.cfg.EstimatorPacing,
			NotifyEvery: j.cfg.NotifyEvery,
			Logger:      j.log,
			Publish:     j.publishTotal,
		})
		estWG.Add(1)
		go func() {
			defer estWG.Done()
			if err := est.Run(estCtx, entries); err != nil && estCtx.Err() == nil {
				j.log.Warn("size estimation aborted", "error", err)
			}
		}()
	} else {
		var total int64
		for _, it := range items {
			total += it.entry.SizeOrZero()
		}
		j.publishTotal(total, true)
	}

	j.runPool(ctx, items)

	// Transfers are done; whatever the estimator has not probed yet no
	// longer affects the outcome.
	estCancel()
	estWG.Wait()

	j.finishFromCounters()
}

// needsEstimator reports whether the working set's sizes live in the store.
// Upload sizes come from local stat calls during expansion.
func (j *Job) needsEstimator() bool {
	return j.req.Kind != transfertypes.OpUpload
}

// publishTotal is the estimator's sink. It is the only writer of the
// total-byte figure.
func (j *Job) publishTotal(totalBytes int64, complete bool) {
	j.mu.Lock()
	j.totalBytes = totalBytes
	if complete {
		j.sizesFinal = true
	}
	j.mu.Unlock()
	j.emitProgress()
}

// runPool executes the working set on a bounded worker pool. Slots are
// acquired before spawning so at most Concurrency items are in flight.
func (j *Job) runPool(ctx context.Context, items []workItem) {
	sem := make(chan struct{}, j.cfg.Concurrency)
	var wg sync.WaitGroup

	for _, item := range items {
		if j.cancelled.Load() {
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return
		}

		wg.Add(1)
		go func(item workItem) {
			defer func() {
				<-sem
				wg.Done()
			}()
			if j.cancelled.Load() {
				return
			}
			j.record(item, j.execute(ctx, item))
		}(item)
	}

	wg.Wait()
}

// execute dispatches one work item to its kind-specific action.
func (j *Job) execute(ctx context.Context, item workItem) result {
	switch j.req.Kind {
	case transfertypes.OpDownload:
		return j.downloadOne(ctx, item)
	case transfertypes.OpUpload:
		return j.uploadOne(ctx, item)
	case transfertypes.OpDelete:
		return j.deleteOne(ctx, item)
	case transfertypes.OpCopyAcross:
		return j.copyOne(ctx, item)
	default:
		return result{err: errors.NewError(string(j.req.Kind),
			fmt.Errorf("%w: unknown operation kind", errors.ErrInvalidInput))}
	}
}

// record folds one result into the job counters. Cancelled work units are
// neither completions nor failures.
func (j *Job) record(item workItem, res result) {
	if res.err != nil && errors.IsCancelled(res.err) {
		return
	}

	key := item.destKey
	if item.entry != nil {
		key = item.entry.Key
	}

	j.mu.Lock()
	if res.err != nil {
		j.failed++
	} else {
		j.completed++
		j.bytesDone += res.size
	}
	update := j.progressLocked()
	j.mu.Unlock()

	if res.err != nil {
		j.log.Warn("work unit failed", "key", key, "error", res.err)
	} else {
		j.log.Debug("work unit done", "key", key, "bytes", res.size, "skipped", res.skipped)
	}

	j.cfg.Callbacks.EmitFileCompleted(transfertypes.FileResult{
		Key:     key,
		Size:    res.size,
		Skipped: res.skipped,
		Err:     res.err,
	})
	j.cfg.Callbacks.EmitProgress(update)
}

func (j *Job) progressLocked() transfertypes.ProgressUpdate {
	snap := progress.Compute(
		time.Since(j.started),
		j.bytesDone, j.totalBytes,
		j.completed, j.total,
		!j.finished,
	)
	return transfertypes.ProgressUpdate{
		JobID:            j.id,
		Kind:             j.req.Kind,
		Percent:          snap.Percent,
		Speed:            snap.Speed,
		ETA:              snap.ETA,
		BytesTransferred: j.bytesDone,
		TotalBytes:       j.totalBytes,
		CompletedFiles:   j.completed,
		TotalFiles:       j.total,
		SizesFinal:       j.sizesFinal,
		Status:           fmt.Sprintf("%d of %d files", j.completed, j.total),
	}
}

func (j *Job) emitProgress() {
	j.mu.Lock()
	update := j.progressLocked()
	j.mu.Unlock()
	j.cfg.Callbacks.EmitProgress(update)
}

func (j *Job) warn(op, prefix string, err error) {
	j.log.Warn("non-fatal job warning", "op", op, "prefix", prefix, "error", err)
	j.cfg.Callbacks.EmitWarning(transfertypes.Warning{
		Op:        op,
		Container: j.req.Container,
		Prefix:    prefix,
		Err:       err,
	})
}

// finishEmpty ends a job whose expansion produced nothing to do.
func (j *Job) finishEmpty() {
	j.finish("Nothing to do", transfertypes.OutcomeSucceeded)
}

// finishFromCounters derives the terminal outcome and message after the
// pool has drained.
func (j *Job) finishFromCounters() {
	j.mu.Lock()
	completed, failed, total := j.completed, j.failed, j.total
	j.mu.Unlock()

	switch {
	case j.cancelled.Load():
		j.finishCancelled()
	case completed == 0:
		j.finish(fmt.Sprintf("All %d files failed", total), transfertypes.OutcomeFailed)
	default:
		j.finish(j.successMessage(completed, failed, total), transfertypes.OutcomeSucceeded)
	}
}

// finishCancelled ends the job with the cancelled outcome, whether any
// work had started or not.
func (j *Job) finishCancelled() {
	j.mu.Lock()
	completed, total := j.completed, j.total
	j.mu.Unlock()
	j.finish(fmt.Sprintf("Cancelled after %d of %d files", completed, total),
		transfertypes.OutcomeCancelled)
}

func (j *Job) successMessage(completed, failed, total int) string {
	if j.req.Kind == transfertypes.OpDelete {
		if failed == 0 {
			return fmt.Sprintf("Successfully deleted %d items", completed)
		}
		return fmt.Sprintf("Deleted %d of %d items", completed, total)
	}
	return fmt.Sprintf("%d of %d files succeeded", completed, total)
}

// finish freezes the counters into the summary and emits the terminal
// events. A successful finish reports exactly 100 percent; failed and
// cancelled jobs keep the last computed value.
func (j *Job) finish(message string, outcome transfertypes.Outcome) {
	j.mu.Lock()
	j.finished = true
	j.summary = transfertypes.Summary{
		JobID:            j.id,
		Kind:             j.req.Kind,
		Outcome:          outcome,
		Success:          outcome == transfertypes.OutcomeSucceeded,
		CompletedFiles:   j.completed,
		FailedFiles:      j.failed,
		TotalFiles:       j.total,
		BytesTransferred: j.bytesDone,
		TotalBytes:       j.totalBytes,
		Message:          message,
		Duration:         time.Since(j.started),
	}
	summary := j.summary
	update := j.progressLocked()
	if outcome == transfertypes.OutcomeSucceeded {
		update.Percent = 100
	}
	j.mu.Unlock()

	j.log.Info("job finished",
		"outcome", string(outcome),
		"completed", summary.CompletedFiles,
		"failed", summary.FailedFiles,
		"total", summary.TotalFiles,
		"bytes", summary.BytesTransferred,
		"duration", summary.Duration,
	)

	update.Status = message
	j.cfg.Callbacks.EmitProgress(update)
	j.cfg.Callbacks.EmitCompleted(summary)
}

// newCopier builds the per-object copy driver from the job configuration.
func (j *Job) newCopier() *copier.Copier {
	interval := j.cfg.PollInterval
	if interval <= 0 {
		interval = transfertypes.DefaultPollInterval
	}
	budget := j.cfg.PollBudget
	if budget <= 0 {
		budget = transfertypes.DefaultPollBudget
	}
	ttl := j.cfg.ReadURLTTL
	if ttl <= 0 {
		ttl = transfertypes.DefaultReadURLTTL
	}
	return copier.New(j.cfg.Store, j.cfg.DestStore, interval, budget, ttl)
}
