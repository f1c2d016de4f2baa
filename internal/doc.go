// Package internal contains private implementation details for the transfer
// module. These packages are not intended for external use and may change
// without notice.
//
// The internal packages are organized as follows:
//   - engine: Job orchestration, worker pool, progress accounting
//   - estimate: Background total-size estimation
//   - copier: Cross-account copy polling state machine
//   - progress: Percent, speed, and ETA computation and formatting
//   - validation: Input validation logic
//   - testutil: Fake store and callback recorder shared by tests
package internal
