package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/blobkit/transfer"
	"github.com/blobkit/transfer/store/s3store"
	"github.com/blobkit/transfer/transfertypes"
)

var (
	flagRegion      string
	flagEndpoint    string
	flagConcurrency int
	flagVerbose     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRegion, "region", "", "store region (default from BLOBKIT_REGION)")
	rootCmd.PersistentFlags().StringVar(&flagEndpoint, "endpoint", "", "custom endpoint URL (default from BLOBKIT_ENDPOINT)")
	rootCmd.PersistentFlags().IntVar(&flagConcurrency, "concurrency", 0, "concurrent transfers per job")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}

// absPaths resolves every path against the working directory. The client's
// default filesystem is rooted at /, so relative CLI paths must be made
// absolute before they reach a request.
func absPaths(paths []string) ([]string, error) {
	out := make([]string, len(paths))
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve path %q: %w", p, err)
		}
		out[i] = abs
	}
	return out, nil
}

// env returns the environment value for key, preferring the flag value.
func env(flag, key string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(key)
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newStore builds the source store from flags and environment. The envPrefix
// lets the copy command build a second store for the destination account.
func newStore(ctx context.Context, envPrefix string) (*s3store.Store, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	opts := []s3store.Option{s3store.WithForcePathStyle(true)}
	if region := env(flagRegion, envPrefix+"REGION"); region != "" {
		opts = append(opts, s3store.WithRegion(region))
	}
	if endpoint := env(flagEndpoint, envPrefix+"ENDPOINT"); endpoint != "" {
		opts = append(opts, s3store.WithEndpoint(endpoint))
	}
	if access := os.Getenv(envPrefix + "ACCESS_KEY"); access != "" {
		opts = append(opts, s3store.WithStaticCredentials(access, os.Getenv(envPrefix+"SECRET_KEY")))
	}
	return s3store.New(ctx, opts...)
}

// hasDestEnv reports whether a separate destination account is configured.
func hasDestEnv() bool {
	return os.Getenv("BLOBKIT_DEST_ACCESS_KEY") != "" ||
		os.Getenv("BLOBKIT_DEST_ENDPOINT") != ""
}

func newClient(ctx context.Context) (*transfer.Client, error) {
	st, err := newStore(ctx, "BLOBKIT_")
	if err != nil {
		return nil, err
	}

	opts := []transfertypes.Option{transfer.WithLogger(newLogger())}
	if flagConcurrency > 0 {
		opts = append(opts, transfer.WithConcurrency(flagConcurrency))
	}
	return transfer.New(st, opts...)
}

// progressCallbacks renders job events on the terminal.
func progressCallbacks() transfertypes.Callbacks {
	return transfertypes.Callbacks{
		OnProgress: func(u transfertypes.ProgressUpdate) {
			fmt.Printf("\r[%3d%%] %s  ETA %s  (%d/%d files)    ",
				u.Percent, u.Speed, u.ETA, u.CompletedFiles, u.TotalFiles)
		},
		OnFileCompleted: func(r transfertypes.FileResult) {
			if r.Err != nil {
				fmt.Printf("\nfailed: %s: %v\n", r.Key, r.Err)
			}
		},
		OnWarning: func(w transfertypes.Warning) {
			fmt.Printf("\nwarning: %s %s: %v\n", w.Op, w.Prefix, w.Err)
		},
	}
}

// runJob waits for the job, cancelling it on Ctrl-C.
func runJob(ctx context.Context, job *transfer.Job) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-sigCtx.Done()
		job.Cancel()
	}()

	<-job.Done()
	summary := job.Summary()

	fmt.Printf("\n%s\n", summary.Message)
	if !summary.Success {
		return fmt.Errorf("job %s: %s", summary.JobID, summary.Outcome)
	}
	return nil
}
