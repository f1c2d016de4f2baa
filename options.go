// Package transfer provides functional options for configuring client and
// job behavior. These options follow the functional options pattern for
// clean, composable configuration.
package transfer

import (
	"log/slog"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/blobkit/transfer/transfertypes"
)

// WithConcurrency sets the default number of concurrent work units per job.
// Default is 8.
func WithConcurrency(concurrency int) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithLogger sets the structured logger used by the client and its jobs.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithFilesystem sets a custom filesystem implementation for local file
// operations. This allows using in-memory filesystems for testing.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithPollInterval sets how often copy jobs poll the destination for copy
// status. Default is 2s.
func WithPollInterval(interval time.Duration) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		if interval > 0 {
			c.PollInterval = interval
		}
	}
}

// WithPollBudget sets the wall-clock budget for a single object copy before
// it is marked timed out. Default is 300s.
func WithPollBudget(budget time.Duration) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		if budget > 0 {
			c.PollBudget = budget
		}
	}
}

// WithReadURLTTL sets the validity window of the presigned read URLs issued
// for cross-account copies. Default is 1h.
func WithReadURLTTL(ttl time.Duration) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		if ttl > 0 {
			c.ReadURLTTL = ttl
		}
	}
}

// WithEstimatorWorkers sets the number of concurrent size probes the
// background estimator runs. Default is 4.
func WithEstimatorWorkers(workers int) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		if workers > 0 {
			c.EstimatorWorkers = workers
		}
	}
}

// WithEstimatorPacing sets the delay between estimator metadata probes,
// keeping the probe rate clear of store throttling. Default is 25ms.
func WithEstimatorPacing(pacing time.Duration) transfertypes.Option {
	return func(c *transfertypes.ClientConfig) {
		if pacing >= 0 {
			c.EstimatorPacing = pacing
		}
	}
}

// WithJobConcurrency overrides the client's concurrency for one job.
func WithJobConcurrency(concurrency int) transfertypes.JobOption {
	return func(c *transfertypes.JobConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithOverwrite controls whether copy jobs replace existing destination
// objects. When off, existing destinations are skipped and counted as
// successes. Default is off.
func WithOverwrite(overwrite bool) transfertypes.JobOption {
	return func(c *transfertypes.JobConfig) {
		c.Overwrite = overwrite
	}
}

// WithPreserveStructure controls whether copy jobs keep full source keys at
// the destination. When off, objects land flat under their base names.
// Default is off.
func WithPreserveStructure(preserve bool) transfertypes.JobOption {
	return func(c *transfertypes.JobConfig) {
		c.PreserveStructure = preserve
	}
}

// WithCallbacks attaches event hooks to one job. Hooks are invoked from job
// goroutines and must not block for long.
func WithCallbacks(callbacks transfertypes.Callbacks) transfertypes.JobOption {
	return func(c *transfertypes.JobConfig) {
		c.Callbacks = callbacks
	}
}
