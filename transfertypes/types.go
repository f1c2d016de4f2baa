// Package transfertypes contains the public value types shared by the
// transfer client, the store adapters, and the directory tree.
package transfertypes

import (
	"strings"
	"sync"
	"time"
)

// Delimiter separates key segments in the virtual directory hierarchy.
const Delimiter = "/"

// OperationKind identifies one of the bulk operations a job can run.
type OperationKind string

const (
	OpDownload   OperationKind = "download"
	OpUpload     OperationKind = "upload"
	OpDelete     OperationKind = "delete"
	OpCopyAcross OperationKind = "copy-across"
)

// ObjectEntry is one addressable item in an object store: either a file
// object or a virtual directory derived from a key prefix.
//
// Size is mutable and may be unknown at construction time. The background
// size estimator populates it while transfer workers read it, so access
// goes through Size/SetSize which are safe for concurrent use.
type ObjectEntry struct {
	Key          string
	IsDir        bool
	LastModified time.Time
	Tier         string

	mu        sync.Mutex
	size      int64
	sizeKnown bool
}

// NewFileEntry returns a file entry with a known size.
func NewFileEntry(key string, size int64, lastModified time.Time, tier string) *ObjectEntry {
	return &ObjectEntry{
		Key:          key,
		LastModified: lastModified,
		Tier:         tier,
		size:         size,
		sizeKnown:    true,
	}
}

// NewPendingEntry returns a file entry whose size is not yet known.
func NewPendingEntry(key string) *ObjectEntry {
	return &ObjectEntry{Key: key}
}

// NewDirEntry returns a virtual directory entry. Directory keys always end
// with the delimiter; it is appended if missing. Directories report size 0.
func NewDirEntry(key string) *ObjectEntry {
	if key != "" && !strings.HasSuffix(key, Delimiter) {
		key += Delimiter
	}
	return &ObjectEntry{Key: key, IsDir: true, sizeKnown: true}
}

// Size returns the entry size and whether it is known yet.
func (e *ObjectEntry) Size() (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.size, e.sizeKnown
}

// SetSize records the entry size, marking it known.
func (e *ObjectEntry) SetSize(n int64) {
	e.mu.Lock()
	e.size = n
	e.sizeKnown = true
	e.mu.Unlock()
}

// SizeOrZero returns the size if known, otherwise 0.
func (e *ObjectEntry) SizeOrZero() int64 {
	n, _ := e.Size()
	return n
}

// Name returns the last key segment, without any trailing delimiter.
func (e *ObjectEntry) Name() string {
	key := strings.TrimSuffix(e.Key, Delimiter)
	if i := strings.LastIndex(key, Delimiter); i >= 0 {
		return key[i+1:]
	}
	return key
}

// Outcome is the terminal result of a job.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// ProgressUpdate is a point-in-time view of a running job, shaped for
// direct display: percent, humanized speed and ETA strings, raw counters.
type ProgressUpdate struct {
	JobID            string
	Kind             OperationKind
	Percent          int
	Speed            string
	ETA              string
	BytesTransferred int64
	TotalBytes       int64
	CompletedFiles   int
	TotalFiles       int
	SizesFinal       bool
	Status           string
}

// FileResult reports the outcome of a single work unit within a job.
// Err is nil on success. Skipped marks items counted as successes without
// being transferred (destination already existed and overwrite was off).
type FileResult struct {
	Key     string
	Size    int64
	Skipped bool
	Err     error
}

// Warning is a non-fatal condition encountered during a job, such as a
// directory listing that failed during expansion.
type Warning struct {
	Op        string
	Container string
	Prefix    string
	Err       error
}

// Summary is the final report for a finished job.
type Summary struct {
	JobID            string
	Kind             OperationKind
	Outcome          Outcome
	Success          bool
	CompletedFiles   int
	FailedFiles      int
	TotalFiles       int
	BytesTransferred int64
	TotalBytes       int64
	Message          string
	Duration         time.Duration
}

// Callbacks carries the optional event hooks a caller can attach to a job.
// Every field may be nil; the Emit helpers make dispatch nil-safe. Hooks
// are invoked from job goroutines and must not block for long.
type Callbacks struct {
	OnProgress      func(ProgressUpdate)
	OnFileCompleted func(FileResult)
	OnWarning       func(Warning)
	OnCompleted     func(Summary)
}

// EmitProgress invokes OnProgress if set.
func (c Callbacks) EmitProgress(u ProgressUpdate) {
	if c.OnProgress != nil {
		c.OnProgress(u)
	}
}

// EmitFileCompleted invokes OnFileCompleted if set.
func (c Callbacks) EmitFileCompleted(r FileResult) {
	if c.OnFileCompleted != nil {
		c.OnFileCompleted(r)
	}
}

// EmitWarning invokes OnWarning if set.
func (c Callbacks) EmitWarning(w Warning) {
	if c.OnWarning != nil {
		c.OnWarning(w)
	}
}

// EmitCompleted invokes OnCompleted if set.
func (c Callbacks) EmitCompleted(s Summary) {
	if c.OnCompleted != nil {
		c.OnCompleted(s)
	}
}
