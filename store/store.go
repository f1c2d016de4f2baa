// Package store defines the object-store capability the transfer core
// consumes. Implementations adapt a concrete backend (see s3store) behind a
// small synchronous surface; all orchestration, concurrency, and progress
// accounting live above this interface.
package store

import (
	"context"
	"io"
	"time"

	"github.com/blobkit/transfer/transfertypes"
)

// Delimiter is the key separator used to derive the virtual directory
// hierarchy from flat object keys.
const Delimiter = transfertypes.Delimiter

// CopyState is the status a store reports for a server-side copy in flight.
type CopyState string

const (
	CopyStatePending CopyState = "pending"
	CopyStateCopying CopyState = "copying"
	CopyStateSuccess CopyState = "success"
	CopyStateFailed  CopyState = "failed"
)

// Metadata describes a single object without its content.
type Metadata struct {
	Size         int64
	LastModified time.Time
	Tier         string
	ContentType  string
}

// Client is the capability a transfer engine needs from an object store.
//
// ListDirect returns the entries exactly one level below prefix: file
// objects plus virtual directory entries derived from deeper keys. Callers
// may receive entries from deeper levels as well; the directory tree applies
// its own depth filter.
//
// ListRecursive returns every file object under prefix, at any depth.
// Entries may come back with unknown sizes; the estimator fills those in
// through GetMetadata.
//
// GetMetadata returns a wrapped errors.ErrNotFound when the object does not
// exist, which callers depend on to distinguish absence from outage.
//
// StartCopy begins an asynchronous copy of sourceURL into destContainer at
// destKey and returns immediately; GetCopyStatus reports its progress until
// it reaches CopyStateSuccess or CopyStateFailed.
type Client interface {
	ListDirect(ctx context.Context, container, prefix string) ([]*transfertypes.ObjectEntry, error)
	ListRecursive(ctx context.Context, container, prefix string) ([]*transfertypes.ObjectEntry, error)
	GetMetadata(ctx context.Context, container, key string) (*Metadata, error)
	GetBytes(ctx context.Context, container, key string) (io.ReadCloser, error)
	PutBytes(ctx context.Context, container, key string, body io.Reader, contentType string, overwrite bool) error
	Delete(ctx context.Context, container, key string) error
	IssueReadURL(ctx context.Context, container, key string, ttl time.Duration) (string, error)
	StartCopy(ctx context.Context, destContainer, destKey, sourceURL string) error
	GetCopyStatus(ctx context.Context, destContainer, destKey string) (CopyState, error)
}
