// Package copier drives a single cross-account server-side copy: issue a
// time-limited read URL on the source, start the copy on the destination,
// then poll until the destination reports a terminal state or the polling
// budget runs out.
package copier

import (
	"context"
	"fmt"
	"time"

	"github.com/blobkit/transfer/errors"
	"github.com/blobkit/transfer/store"
)

// Status is the lifecycle state of one copy operation.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusPending    Status = "pending"
	StatusCopying    Status = "copying"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
	StatusTimedOut   Status = "timed-out"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether the status is one a copy can never leave.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusTimedOut, StatusCancelled:
		return true
	}
	return false
}

// Copier copies objects from a source store to a destination store that
// cannot read the source directly. The handoff is a presigned read URL.
type Copier struct {
	src store.Client
	dst store.Client

	interval time.Duration
	budget   time.Duration
	urlTTL   time.Duration
}

// New returns a copier polling at interval under a total wall-clock budget,
// issuing source read URLs valid for urlTTL.
func New(src, dst store.Client, interval, budget, urlTTL time.Duration) *Copier {
	return &Copier{src: src, dst: dst, interval: interval, budget: budget, urlTTL: urlTTL}
}

// Copy runs one object copy to completion and returns its terminal status.
// The error is nil only for StatusSuccess; StatusCancelled carries
// errors.ErrCancelled so callers can keep cancellation out of failure
// counts. An unrecognized status from the destination is treated as failed.
func (c *Copier) Copy(ctx context.Context, srcContainer, srcKey, dstContainer, dstKey string) (Status, error) {
	url, err := c.src.IssueReadURL(ctx, srcContainer, srcKey, c.urlTTL)
	if err != nil {
		return StatusFailed, errors.NewObjectError("issueReadURL", srcContainer, srcKey, err)
	}

	if err := c.dst.StartCopy(ctx, dstContainer, dstKey, url); err != nil {
		return StatusFailed, errors.NewObjectError("startCopy", dstContainer, dstKey, err)
	}

	deadline := time.Now().Add(c.budget)
	for {
		if ctx.Err() != nil {
			return StatusCancelled, errors.NewObjectError("copy", dstContainer, dstKey, errors.ErrCancelled)
		}

		state, err := c.dst.GetCopyStatus(ctx, dstContainer, dstKey)
		if err != nil {
			return StatusFailed, errors.NewObjectError("copyStatus", dstContainer, dstKey, err)
		}

		switch state {
		case store.CopyStateSuccess:
			return StatusSuccess, nil
		case store.CopyStateFailed:
			return StatusFailed, errors.NewObjectError("copy", dstContainer, dstKey, errors.ErrCopyFailed)
		case store.CopyStatePending, store.CopyStateCopying:
		default:
			return StatusFailed, errors.NewObjectError("copy", dstContainer, dstKey,
				fmt.Errorf("%w: unrecognized copy state %q", errors.ErrCopyFailed, state))
		}

		if time.Now().After(deadline) {
			return StatusTimedOut, errors.NewObjectError("copy", dstContainer, dstKey, errors.ErrCopyTimeout)
		}

		timer := time.NewTimer(c.interval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return StatusCancelled, errors.NewObjectError("copy", dstContainer, dstKey, errors.ErrCancelled)
		}
	}
}
