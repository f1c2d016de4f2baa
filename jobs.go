package transfer

import (
	"context"

	"github.com/blobkit/transfer/errors"
	"github.com/blobkit/transfer/internal/engine"
	"github.com/blobkit/transfer/internal/validation"
	"github.com/blobkit/transfer/store"
	"github.com/blobkit/transfer/transfertypes"
)

// DownloadRequest selects entries to download into a local root directory.
// Directory entries are expanded recursively before work starts.
type DownloadRequest struct {
	Container string
	Targets   []*transfertypes.ObjectEntry
	LocalRoot string
}

// UploadRequest selects local files or directories to upload. Directories
// keep their own name as the top of the uploaded hierarchy. TargetDir is an
// optional key prefix everything lands under.
type UploadRequest struct {
	Container string
	Paths     []string
	TargetDir string
}

// DeleteRequest selects entries to delete. Directory entries delete their
// whole subtree.
type DeleteRequest struct {
	Container string
	Targets   []*transfertypes.ObjectEntry
}

// CopyRequest selects entries to copy into another container, possibly in
// another account. DestStore is the destination's own client; nil means the
// destination is reachable through the source store.
type CopyRequest struct {
	SourceContainer string
	DestContainer   string
	DestStore       store.Client
	Targets         []*transfertypes.ObjectEntry
}

// Job is a handle to a running transfer operation.
type Job struct {
	inner *engine.Job
}

// ID returns the job's unique identifier.
func (j *Job) ID() string { return j.inner.ID() }

// Cancel requests cooperative cancellation. It is idempotent; queued work
// is dropped while work already in flight may still finish.
func (j *Job) Cancel() { j.inner.Cancel() }

// Done is closed when the job has finished and its summary is available.
func (j *Job) Done() <-chan struct{} { return j.inner.Done() }

// Progress returns a point-in-time progress view of the job.
func (j *Job) Progress() transfertypes.ProgressUpdate { return j.inner.Progress() }

// Summary returns the final summary. Valid only after Done is closed.
func (j *Job) Summary() transfertypes.Summary { return j.inner.Summary() }

// Wait blocks until the job finishes or ctx expires. The job keeps running
// if ctx expires first; only Cancel stops it.
func (j *Job) Wait(ctx context.Context) (transfertypes.Summary, error) {
	select {
	case <-j.inner.Done():
		return j.inner.Summary(), nil
	case <-ctx.Done():
		return transfertypes.Summary{}, ctx.Err()
	}
}

// Download starts a download job and returns its handle.
func (c *Client) Download(ctx context.Context, req DownloadRequest, opts ...transfertypes.JobOption) (*Job, error) {
	if err := validation.ValidateContainerName(req.Container); err != nil {
		return nil, err
	}
	if req.LocalRoot == "" {
		return nil, errors.NewError("download", errors.ErrInvalidInput).
			WithMessage("local root is required")
	}
	return c.start(ctx, engine.Request{
		Kind:      transfertypes.OpDownload,
		Container: req.Container,
		Targets:   req.Targets,
		LocalRoot: req.LocalRoot,
	}, nil, opts)
}

// Upload starts an upload job and returns its handle.
func (c *Client) Upload(ctx context.Context, req UploadRequest, opts ...transfertypes.JobOption) (*Job, error) {
	if err := validation.ValidateContainerName(req.Container); err != nil {
		return nil, err
	}
	if err := validation.ValidateKeyPrefix(req.TargetDir); err != nil {
		return nil, err
	}
	return c.start(ctx, engine.Request{
		Kind:       transfertypes.OpUpload,
		Container:  req.Container,
		LocalPaths: req.Paths,
		TargetDir:  req.TargetDir,
	}, nil, opts)
}

// Delete starts a delete job and returns its handle.
func (c *Client) Delete(ctx context.Context, req DeleteRequest, opts ...transfertypes.JobOption) (*Job, error) {
	if err := validation.ValidateContainerName(req.Container); err != nil {
		return nil, err
	}
	return c.start(ctx, engine.Request{
		Kind:      transfertypes.OpDelete,
		Container: req.Container,
		Targets:   req.Targets,
	}, nil, opts)
}

// CopyAcross starts a cross-account copy job and returns its handle.
func (c *Client) CopyAcross(ctx context.Context, req CopyRequest, opts ...transfertypes.JobOption) (*Job, error) {
	if err := validation.ValidateContainerName(req.SourceContainer); err != nil {
		return nil, err
	}
	if err := validation.ValidateContainerName(req.DestContainer); err != nil {
		return nil, err
	}
	return c.start(ctx, engine.Request{
		Kind:          transfertypes.OpCopyAcross,
		Container:     req.SourceContainer,
		DestContainer: req.DestContainer,
		Targets:       req.Targets,
	}, req.DestStore, opts)
}

func (c *Client) start(ctx context.Context, req engine.Request, destStore store.Client, opts []transfertypes.JobOption) (*Job, error) {
	jobCfg := transfertypes.JobConfig{Concurrency: c.cfg.Concurrency}
	for _, opt := range opts {
		opt(&jobCfg)
	}

	inner := engine.NewJob(engine.Config{
		Store:             c.store,
		DestStore:         destStore,
		FS:                c.cfg.Filesystem,
		Logger:            c.cfg.Logger,
		Callbacks:         jobCfg.Callbacks,
		Concurrency:       jobCfg.Concurrency,
		Overwrite:         jobCfg.Overwrite,
		PreserveStructure: jobCfg.PreserveStructure,
		PollInterval:      c.cfg.PollInterval,
		PollBudget:        c.cfg.PollBudget,
		ReadURLTTL:        c.cfg.ReadURLTTL,
		EstimatorWorkers:  c.cfg.EstimatorWorkers,
		EstimatorPacing:   c.cfg.EstimatorPacing,
		NotifyEvery:       c.cfg.NotifyEvery,
	}, req)

	inner.Start(ctx)
	return &Job{inner: inner}, nil
}
