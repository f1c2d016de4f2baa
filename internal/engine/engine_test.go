package engine

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blobkit/transfer/internal/testutil"
	"github.com/blobkit/transfer/transfertypes"
)

func waitForJob(t *testing.T, j *Job) transfertypes.Summary {
	t.Helper()
	select {
	case <-j.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("job did not finish in time")
	}
	return j.Summary()
}

func runTestJob(t *testing.T, cfg Config, req Request) transfertypes.Summary {
	t.Helper()
	job := NewJob(cfg, req)
	job.Start(context.Background())
	return waitForJob(t, job)
}

func baseConfig(st *testutil.FakeStore, rec *testutil.CallbackRecorder) Config {
	cfg := Config{
		Store:        st,
		FS:           billy.NewInMemoryFS(),
		Concurrency:  2,
		PollInterval: time.Millisecond,
		PollBudget:   time.Second,
		NotifyEvery:  1,
	}
	if rec != nil {
		cfg.Callbacks = rec.Callbacks()
	}
	return cfg
}

func dirTarget(key string) []*transfertypes.ObjectEntry {
	return []*transfertypes.ObjectEntry{transfertypes.NewDirEntry(key)}
}

func TestDownloadDirectory(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("media", "docs/a.txt", []byte("hello"))
	st.Seed("media", "docs/sub/b.txt", []byte("world!!"))

	rec := testutil.NewCallbackRecorder()
	cfg := baseConfig(st, rec)

	summary := runTestJob(t, cfg, Request{
		Kind:      transfertypes.OpDownload,
		Container: "media",
		Targets:   dirTarget("docs/"),
		LocalRoot: "/data",
	})

	assert.True(t, summary.Success)
	assert.Equal(t, transfertypes.OutcomeSucceeded, summary.Outcome)
	assert.Equal(t, 2, summary.CompletedFiles)
	assert.Equal(t, 0, summary.FailedFiles)
	assert.Equal(t, int64(12), summary.BytesTransferred)
	assert.Equal(t, "2 of 2 files succeeded", summary.Message)

	data, err := cfg.FS.ReadFile("/data/docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	data, err = cfg.FS.ReadFile("/data/docs/sub/b.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("world!!"), data)

	// Successful completion reports exactly 100.
	updates := rec.Progress()
	require.NotEmpty(t, updates)
	assert.Equal(t, 100, updates[len(updates)-1].Percent)
}

func TestDownloadPerFileFailureIsolation(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("media", "docs/a.txt", []byte("hello"))
	st.Seed("media", "docs/bad.txt", []byte("bye"))
	st.Seed("media", "docs/c.txt", []byte("more"))

	st.GetBytesFunc = func(_ context.Context, container, key string) (io.ReadCloser, error) {
		if strings.HasSuffix(key, "bad.txt") {
			return nil, fmt.Errorf("connection reset")
		}
		return io.NopCloser(strings.NewReader("x")), nil
	}

	rec := testutil.NewCallbackRecorder()
	summary := runTestJob(t, baseConfig(st, rec), Request{
		Kind:      transfertypes.OpDownload,
		Container: "media",
		Targets:   dirTarget("docs/"),
		LocalRoot: "/data",
	})

	assert.True(t, summary.Success)
	assert.Equal(t, 2, summary.CompletedFiles)
	assert.Equal(t, 1, summary.FailedFiles)
	assert.Equal(t, "2 of 3 files succeeded", summary.Message)

	var failures int
	for _, f := range rec.Files() {
		if f.Err != nil {
			failures++
			assert.Equal(t, "docs/bad.txt", f.Key)
		}
	}
	assert.Equal(t, 1, failures)
}

func TestDownloadAllFailed(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("media", "docs/a.txt", []byte("hello"))
	st.GetBytesFunc = func(context.Context, string, string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("forbidden")
	}

	summary := runTestJob(t, baseConfig(st, nil), Request{
		Kind:      transfertypes.OpDownload,
		Container: "media",
		Targets:   dirTarget("docs/"),
		LocalRoot: "/data",
	})

	assert.False(t, summary.Success)
	assert.Equal(t, transfertypes.OutcomeFailed, summary.Outcome)
	assert.Equal(t, "All 1 files failed", summary.Message)
}

func TestDownloadListingFailureIsWarning(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("media", "docs/a.txt", []byte("hello"))
	st.ListRecursiveFunc = func(_ context.Context, _, prefix string) ([]*transfertypes.ObjectEntry, error) {
		if prefix == "broken/" {
			return nil, fmt.Errorf("throttled")
		}
		return []*transfertypes.ObjectEntry{
			transfertypes.NewFileEntry("docs/a.txt", 5, time.Time{}, ""),
		}, nil
	}

	rec := testutil.NewCallbackRecorder()
	summary := runTestJob(t, baseConfig(st, rec), Request{
		Kind:      transfertypes.OpDownload,
		Container: "media",
		Targets: []*transfertypes.ObjectEntry{
			transfertypes.NewDirEntry("broken/"),
			transfertypes.NewDirEntry("docs/"),
		},
		LocalRoot: "/data",
	})

	// The broken selection is skipped with a warning; the rest runs.
	assert.True(t, summary.Success)
	assert.Equal(t, 1, summary.CompletedFiles)
	require.Len(t, rec.Warnings(), 1)
	assert.Equal(t, "broken/", rec.Warnings()[0].Prefix)
}

func TestUploadFolderPreservesStructure(t *testing.T) {
	st := testutil.NewFakeStore()
	rec := testutil.NewCallbackRecorder()
	cfg := baseConfig(st, rec)

	require.NoError(t, cfg.FS.MkdirAll("/src/sub", 0o755))
	require.NoError(t, cfg.FS.WriteFile("/src/a.txt", []byte("alpha"), 0o644))
	require.NoError(t, cfg.FS.WriteFile("/src/sub/b.txt", []byte("beta"), 0o644))

	summary := runTestJob(t, cfg, Request{
		Kind:       transfertypes.OpUpload,
		Container:  "media",
		LocalPaths: []string{"/src"},
		TargetDir:  "backup",
	})

	assert.True(t, summary.Success)
	assert.Equal(t, 2, summary.CompletedFiles)
	assert.Equal(t, int64(9), summary.BytesTransferred)
	// Upload totals come from local stat calls, so they are final from
	// the start.
	assert.Equal(t, int64(9), summary.TotalBytes)

	data, ok := st.Object("media", "backup/src/a.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("alpha"), data)
	_, ok = st.Object("media", "backup/src/sub/b.txt")
	assert.True(t, ok)

	assert.True(t, strings.HasPrefix(st.ContentType("media", "backup/src/a.txt"), "text/plain"))
}

func TestUploadSingleFileUsesBareName(t *testing.T) {
	st := testutil.NewFakeStore()
	cfg := baseConfig(st, nil)
	require.NoError(t, cfg.FS.MkdirAll("/deep/nested", 0o755))
	require.NoError(t, cfg.FS.WriteFile("/deep/nested/report.csv", []byte("a,b\n1,2\n"), 0o644))

	summary := runTestJob(t, cfg, Request{
		Kind:       transfertypes.OpUpload,
		Container:  "media",
		LocalPaths: []string{"/deep/nested/report.csv"},
	})

	assert.True(t, summary.Success)
	_, ok := st.Object("media", "report.csv")
	assert.True(t, ok)
}

func TestUploadMissingPathIsWarning(t *testing.T) {
	st := testutil.NewFakeStore()
	rec := testutil.NewCallbackRecorder()
	cfg := baseConfig(st, rec)
	require.NoError(t, cfg.FS.WriteFile("/ok.txt", []byte("fine"), 0o644))

	summary := runTestJob(t, cfg, Request{
		Kind:       transfertypes.OpUpload,
		Container:  "media",
		LocalPaths: []string{"/missing.txt", "/ok.txt"},
	})

	assert.True(t, summary.Success)
	assert.Equal(t, 1, summary.CompletedFiles)
	assert.Len(t, rec.Warnings(), 1)
}

func TestDeleteTree(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("media", "old/a.txt", []byte("x"))
	st.Seed("media", "old/b.txt", []byte("y"))
	st.Seed("media", "keep/c.txt", []byte("z"))

	summary := runTestJob(t, baseConfig(st, nil), Request{
		Kind:      transfertypes.OpDelete,
		Container: "media",
		Targets:   dirTarget("old/"),
	})

	assert.True(t, summary.Success)
	assert.Equal(t, "Successfully deleted 2 items", summary.Message)

	_, ok := st.Object("media", "old/a.txt")
	assert.False(t, ok)
	_, ok = st.Object("media", "keep/c.txt")
	assert.True(t, ok)
}

func TestDeletePartialFailure(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("media", "old/a.txt", []byte("x"))
	st.Seed("media", "old/locked.txt", []byte("y"))
	st.DeleteFunc = func(_ context.Context, _, key string) error {
		if strings.HasSuffix(key, "locked.txt") {
			return fmt.Errorf("access denied")
		}
		return nil
	}

	summary := runTestJob(t, baseConfig(st, nil), Request{
		Kind:      transfertypes.OpDelete,
		Container: "media",
		Targets:   dirTarget("old/"),
	})

	assert.True(t, summary.Success)
	assert.Equal(t, 1, summary.CompletedFiles)
	assert.Equal(t, 1, summary.FailedFiles)
	assert.Equal(t, "Deleted 1 of 2 items", summary.Message)
}

func TestDeleteEmptySelection(t *testing.T) {
	st := testutil.NewFakeStore()

	summary := runTestJob(t, baseConfig(st, nil), Request{
		Kind:      transfertypes.OpDelete,
		Container: "media",
		Targets:   dirTarget("nothing-here/"),
	})

	assert.True(t, summary.Success)
	assert.Equal(t, 0, summary.TotalFiles)
	assert.Equal(t, "Nothing to do", summary.Message)
}

func TestCopyAcrossFlattensByDefault(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("src", "docs/sub/report.pdf", []byte("pdf-bytes"))

	summary := runTestJob(t, baseConfig(st, nil), Request{
		Kind:          transfertypes.OpCopyAcross,
		Container:     "src",
		DestContainer: "dst",
		Targets:       dirTarget("docs/"),
	})

	assert.True(t, summary.Success)
	_, ok := st.Object("dst", "report.pdf")
	assert.True(t, ok)
	_, ok = st.Object("dst", "docs/sub/report.pdf")
	assert.False(t, ok)
}

func TestCopyAcrossPreservesStructure(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("src", "docs/sub/report.pdf", []byte("pdf-bytes"))

	cfg := baseConfig(st, nil)
	cfg.PreserveStructure = true

	summary := runTestJob(t, cfg, Request{
		Kind:          transfertypes.OpCopyAcross,
		Container:     "src",
		DestContainer: "dst",
		Targets:       dirTarget("docs/"),
	})

	assert.True(t, summary.Success)
	_, ok := st.Object("dst", "docs/sub/report.pdf")
	assert.True(t, ok)
}

func TestCopySkipsExistingWithoutOverwrite(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("src", "a.txt", []byte("new contents"))
	st.Seed("dst", "a.txt", []byte("old contents"))

	rec := testutil.NewCallbackRecorder()
	summary := runTestJob(t, baseConfig(st, rec), Request{
		Kind:          transfertypes.OpCopyAcross,
		Container:     "src",
		DestContainer: "dst",
		Targets:       []*transfertypes.ObjectEntry{transfertypes.NewPendingEntry("a.txt")},
	})

	// Skip counts as success and the destination is untouched.
	assert.True(t, summary.Success)
	assert.Equal(t, 1, summary.CompletedFiles)
	data, _ := st.Object("dst", "a.txt")
	assert.Equal(t, []byte("old contents"), data)

	require.Len(t, rec.Files(), 1)
	assert.True(t, rec.Files()[0].Skipped)
	assert.Equal(t, 0, st.Calls("StartCopy"))
}

func TestCopyOverwritesWhenAsked(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("src", "a.txt", []byte("new contents"))
	st.Seed("dst", "a.txt", []byte("old contents"))

	cfg := baseConfig(st, nil)
	cfg.Overwrite = true

	summary := runTestJob(t, cfg, Request{
		Kind:          transfertypes.OpCopyAcross,
		Container:     "src",
		DestContainer: "dst",
		Targets:       []*transfertypes.ObjectEntry{transfertypes.NewPendingEntry("a.txt")},
	})

	assert.True(t, summary.Success)
	data, _ := st.Object("dst", "a.txt")
	assert.Equal(t, []byte("new contents"), data)
}

func TestCopyFailureCounts(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("src", "a.txt", []byte("x"))
	st.Seed("src", "b.txt", []byte("y"))
	st.FailCopies = map[string]bool{"b.txt": true}

	summary := runTestJob(t, baseConfig(st, nil), Request{
		Kind:          transfertypes.OpCopyAcross,
		Container:     "src",
		DestContainer: "dst",
		Targets: []*transfertypes.ObjectEntry{
			transfertypes.NewPendingEntry("a.txt"),
			transfertypes.NewPendingEntry("b.txt"),
		},
	})

	assert.True(t, summary.Success)
	assert.Equal(t, 1, summary.CompletedFiles)
	assert.Equal(t, 1, summary.FailedFiles)
}

func TestCancellationFreezesCounters(t *testing.T) {
	st := testutil.NewFakeStore()
	for i := 0; i < 5; i++ {
		st.Seed("media", fmt.Sprintf("docs/f%d.txt", i), []byte("x"))
	}

	cfg := baseConfig(st, nil)
	cfg.Concurrency = 1

	job := NewJob(cfg, Request{
		Kind:      transfertypes.OpDelete,
		Container: "media",
		Targets:   dirTarget("docs/"),
	})

	released := make(chan struct{})
	st.DeleteFunc = func(_ context.Context, container, key string) error {
		job.Cancel()
		close(released)
		return nil
	}

	job.Start(context.Background())
	<-released
	summary := waitForJob(t, job)

	assert.Equal(t, transfertypes.OutcomeCancelled, summary.Outcome)
	assert.False(t, summary.Success)
	assert.Equal(t, 1, summary.CompletedFiles)
	assert.Equal(t, 5, summary.TotalFiles)
	assert.Contains(t, summary.Message, "Cancelled after 1 of 5 files")

	// Cancel stays set and is idempotent.
	job.Cancel()
	assert.True(t, job.Cancelled())
}

func TestMixedSelectionDownload(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("media", "top.txt", []byte("root"))
	st.Seed("media", "docs/a.txt", []byte("nested"))

	cfg := baseConfig(st, nil)
	summary := runTestJob(t, cfg, Request{
		Kind:      transfertypes.OpDownload,
		Container: "media",
		Targets: []*transfertypes.ObjectEntry{
			transfertypes.NewPendingEntry("top.txt"),
			transfertypes.NewDirEntry("docs/"),
		},
		LocalRoot: "/data",
	})

	assert.True(t, summary.Success)
	assert.Equal(t, 2, summary.CompletedFiles)

	data, err := cfg.FS.ReadFile("/data/top.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("root"), data)
	data, err = cfg.FS.ReadFile("/data/docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("nested"), data)
}

func TestCancelDuringExpansion(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("media", "docs/a.txt", []byte("x"))

	job := NewJob(baseConfig(st, nil), Request{
		Kind:      transfertypes.OpDownload,
		Container: "media",
		Targets:   dirTarget("docs/"),
		LocalRoot: "/data",
	})

	st.ListRecursiveFunc = func(ctx context.Context, _, _ string) ([]*transfertypes.ObjectEntry, error) {
		job.Cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}

	job.Start(context.Background())
	summary := waitForJob(t, job)

	assert.Equal(t, transfertypes.OutcomeCancelled, summary.Outcome)
	assert.False(t, summary.Success)
	assert.Contains(t, summary.Message, "Cancelled")
	assert.Equal(t, 0, summary.CompletedFiles)
	assert.Equal(t, 0, summary.FailedFiles)
}

func TestCancelledInFlightWorkNotCountedFailed(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("media", "docs/a.txt", []byte("x"))
	st.Seed("media", "docs/b.txt", []byte("y"))

	cfg := baseConfig(st, nil)
	cfg.Concurrency = 1

	job := NewJob(cfg, Request{
		Kind:      transfertypes.OpDownload,
		Container: "media",
		Targets:   dirTarget("docs/"),
		LocalRoot: "/data",
	})

	// The first download is interrupted by cancellation and surfaces the
	// context's error; it must not land in the failure count.
	st.GetBytesFunc = func(ctx context.Context, _, _ string) (io.ReadCloser, error) {
		job.Cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}

	job.Start(context.Background())
	summary := waitForJob(t, job)

	assert.Equal(t, transfertypes.OutcomeCancelled, summary.Outcome)
	assert.Equal(t, 0, summary.CompletedFiles)
	assert.Equal(t, 0, summary.FailedFiles)
}

func TestNilStoreFailsJob(t *testing.T) {
	rec := testutil.NewCallbackRecorder()
	summary := runTestJob(t, Config{Callbacks: rec.Callbacks()}, Request{
		Kind:      transfertypes.OpDownload,
		Container: "media",
	})

	assert.False(t, summary.Success)
	assert.Equal(t, transfertypes.OutcomeFailed, summary.Outcome)
	require.Len(t, rec.Completed(), 1)
}

func TestEstimatorUpgradesByteTotals(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("media", "docs/a.bin", make([]byte, 100))
	st.Seed("media", "docs/b.bin", make([]byte, 300))
	st.ListSizesUnknown = true

	rec := testutil.NewCallbackRecorder()
	cfg := baseConfig(st, rec)
	cfg.EstimatorWorkers = 2

	summary := runTestJob(t, cfg, Request{
		Kind:      transfertypes.OpDownload,
		Container: "media",
		Targets:   dirTarget("docs/"),
		LocalRoot: "/data",
	})

	assert.True(t, summary.Success)
	assert.Equal(t, int64(400), summary.BytesTransferred)
}
