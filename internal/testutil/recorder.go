package testutil

import (
	"sync"

	"github.com/blobkit/transfer/transfertypes"
)

// CallbackRecorder captures every event a job emits so tests can assert on
// ordering and content after the job finishes.
type CallbackRecorder struct {
	mu        sync.Mutex
	progress  []transfertypes.ProgressUpdate
	files     []transfertypes.FileResult
	warnings  []transfertypes.Warning
	completed []transfertypes.Summary
}

// NewCallbackRecorder returns an empty recorder.
func NewCallbackRecorder() *CallbackRecorder {
	return &CallbackRecorder{}
}

// Callbacks returns a callback set wired to the recorder.
func (r *CallbackRecorder) Callbacks() transfertypes.Callbacks {
	return transfertypes.Callbacks{
		OnProgress: func(u transfertypes.ProgressUpdate) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.progress = append(r.progress, u)
		},
		OnFileCompleted: func(f transfertypes.FileResult) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.files = append(r.files, f)
		},
		OnWarning: func(w transfertypes.Warning) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.warnings = append(r.warnings, w)
		},
		OnCompleted: func(s transfertypes.Summary) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.completed = append(r.completed, s)
		},
	}
}

// Progress returns a copy of the recorded progress updates.
func (r *CallbackRecorder) Progress() []transfertypes.ProgressUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]transfertypes.ProgressUpdate, len(r.progress))
	copy(out, r.progress)
	return out
}

// Files returns a copy of the recorded per-file results.
func (r *CallbackRecorder) Files() []transfertypes.FileResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]transfertypes.FileResult, len(r.files))
	copy(out, r.files)
	return out
}

// Warnings returns a copy of the recorded warnings.
func (r *CallbackRecorder) Warnings() []transfertypes.Warning {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]transfertypes.Warning, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// Completed returns a copy of the recorded summaries.
func (r *CallbackRecorder) Completed() []transfertypes.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]transfertypes.Summary, len(r.completed))
	copy(out, r.completed)
	return out
}
