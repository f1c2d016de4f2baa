package s3store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/blobkit/transfer/errors"
	"github.com/blobkit/transfer/store"
)

// copyJob tracks one asynchronous copy in the local status registry.
type copyJob struct {
	state store.CopyState
	err   error
}

func copyKey(container, key string) string {
	return container + store.Delimiter + key
}

// StartCopy begins copying sourceURL into the destination object and
// returns immediately. The transfer runs in its own goroutine: fetch the
// presigned source URL, stream the body into a put. GetCopyStatus reports
// the outcome.
func (s *Store) StartCopy(ctx context.Context, destContainer, destKey, sourceURL string) error {
	job := &copyJob{state: store.CopyStatePending}

	s.copyMu.Lock()
	s.copies[copyKey(destContainer, destKey)] = job
	s.copyMu.Unlock()

	// The copy must outlive the StartCopy call but still stop if the
	// caller's context is cancelled.
	go s.runCopy(ctx, job, destContainer, destKey, sourceURL)
	return nil
}

func (s *Store) runCopy(ctx context.Context, job *copyJob, destContainer, destKey, sourceURL string) {
	s.setCopyState(job, store.CopyStateCopying, nil)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		s.setCopyState(job, store.CopyStateFailed, err)
		return
	}

	resp, err := s.http.Do(req)
	if err != nil {
		s.setCopyState(job, store.CopyStateFailed, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.setCopyState(job, store.CopyStateFailed,
			fmt.Errorf("source fetch returned %s", resp.Status))
		return
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		s.setCopyState(job, store.CopyStateFailed, err)
		return
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(destContainer),
		Key:           aws.String(destKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.api.PutObject(ctx, input); err != nil {
		s.setCopyState(job, store.CopyStateFailed, err)
		return
	}
	s.setCopyState(job, store.CopyStateSuccess, nil)
}

func (s *Store) setCopyState(job *copyJob, state store.CopyState, err error) {
	s.copyMu.Lock()
	job.state = state
	job.err = err
	s.copyMu.Unlock()
}

// GetCopyStatus reports the state of a copy previously begun by StartCopy.
// Unknown destinations are an error: a copy that was never started has no
// status to report.
func (s *Store) GetCopyStatus(_ context.Context, destContainer, destKey string) (store.CopyState, error) {
	s.copyMu.Lock()
	defer s.copyMu.Unlock()

	job, ok := s.copies[copyKey(destContainer, destKey)]
	if !ok {
		return "", errors.NewObjectError("copyStatus", destContainer, destKey, errors.ErrNotFound)
	}
	return job.state, nil
}
