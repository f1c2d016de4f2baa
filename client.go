// Package transfer provides client initialization and job submission.
//
// The Client provides a high-level interface for bulk object-store
// operations: download, upload, delete, and cross-account copy, with live
// progress, throughput, and ETA reporting through callbacks.
package transfer

import (
	"context"
	"log/slog"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/blobkit/transfer/errors"
	"github.com/blobkit/transfer/internal/validation"
	"github.com/blobkit/transfer/store"
	"github.com/blobkit/transfer/transfertypes"
	"github.com/blobkit/transfer/tree"
)

// Client submits transfer jobs against a source store.
// It is safe for concurrent use; each submitted job runs independently.
type Client struct {
	store store.Client
	cfg   transfertypes.ClientConfig
}

// New creates a transfer client for the given source store.
// Unset options take the package defaults.
//
// Example:
//
//	client, err := transfer.New(st,
//	    transfer.WithConcurrency(4),
//	    transfer.WithLogger(logger),
//	)
func New(st store.Client, opts ...transfertypes.Option) (*Client, error) {
	if st == nil {
		return nil, errors.NewError("client initialization", errors.ErrClientInit).
			WithMessage("store client is required")
	}

	cfg := transfertypes.ClientConfig{
		Concurrency:      transfertypes.DefaultConcurrency,
		PollInterval:     transfertypes.DefaultPollInterval,
		PollBudget:       transfertypes.DefaultPollBudget,
		ReadURLTTL:       transfertypes.DefaultReadURLTTL,
		EstimatorWorkers: transfertypes.DefaultEstimatorWorkers,
		EstimatorPacing:  transfertypes.DefaultEstimatorPacing,
		NotifyEvery:      transfertypes.DefaultNotifyEvery,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Filesystem == nil {
		// Default to OS filesystem rooted at /
		cfg.Filesystem = billy.NewOSFS("/")
	}

	return &Client{store: st, cfg: cfg}, nil
}

// Store returns the client's source store.
func (c *Client) Store() store.Client {
	return c.store
}

// Tree fetches the top level of a container and returns the loaded root
// node of its virtual directory tree. Deeper levels load on Expand.
func (c *Client) Tree(ctx context.Context, container string) (*tree.Node, error) {
	if err := validation.ValidateContainerName(container); err != nil {
		return nil, err
	}
	return tree.ListRoot(ctx, c.store, container)
}
