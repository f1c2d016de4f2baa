package transfertypes

import (
	"log/slog"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// Defaults applied by the client when an option is left zero.
const (
	DefaultConcurrency      = 8
	DefaultPollInterval     = 2 * time.Second
	DefaultPollBudget       = 300 * time.Second
	DefaultReadURLTTL       = time.Hour
	DefaultEstimatorWorkers = 4
	DefaultEstimatorPacing  = 25 * time.Millisecond
	DefaultNotifyEvery      = 10
)

// ClientConfig holds client-level settings populated by functional options.
type ClientConfig struct {
	Concurrency      int
	Logger           *slog.Logger
	Filesystem       fs.Filesystem
	PollInterval     time.Duration
	PollBudget       time.Duration
	ReadURLTTL       time.Duration
	EstimatorWorkers int
	EstimatorPacing  time.Duration
	NotifyEvery      int
}

// Option configures the client.
type Option func(*ClientConfig)

// JobConfig holds per-job settings populated by job options, starting from
// the client defaults.
type JobConfig struct {
	Concurrency       int
	Overwrite         bool
	PreserveStructure bool
	Callbacks         Callbacks
}

// JobOption configures a single job submission.
type JobOption func(*JobConfig)
