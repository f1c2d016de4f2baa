// Package transfer provides a high-level Go module for bulk object-store
// transfers. It runs download, upload, delete, and cross-account copy jobs
// over any store backend while reporting live progress, throughput, and ETA.
//
// The module emphasizes responsiveness for interactive callers: jobs start
// immediately while a background estimator resolves unknown object sizes,
// individual file failures never abort the rest of a job, and cancellation
// is cooperative and takes effect at work-unit boundaries.
//
// Key features:
//   - Four bulk operations behind one job API with a uniform handle
//   - Bounded per-job concurrency with per-file failure isolation
//   - Background size estimation that upgrades progress from file counts to bytes
//   - Virtual directory tree with lazy one-level expansion
//   - Cross-account copy via presigned read URLs and status polling
//   - Comprehensive error handling with context
//
// Example usage:
//
//	client, err := transfer.New(st)
//	if err != nil {
//	    return err
//	}
//
//	// Download a selection into /data
//	job, err := client.Download(ctx, transfer.DownloadRequest{
//	    Container: "my-container",
//	    Targets:   selection,
//	    LocalRoot: "/data",
//	})
//	if err != nil {
//	    return err
//	}
//	summary, err := job.Wait(ctx)
package transfer
