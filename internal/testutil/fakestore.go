// Package testutil provides test doubles for the transfer packages: an
// in-memory store with injectable failures and a callback recorder.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/blobkit/transfer/errors"
	"github.com/blobkit/transfer/store"
	"github.com/blobkit/transfer/transfertypes"
)

// FakeStore is an in-memory store.Client. Every method can be overridden
// with a function field for error injection; unset fields hit the in-memory
// state. Safe for concurrent use.
type FakeStore struct {
	mu      sync.Mutex
	objects map[string]map[string][]byte
	types   map[string]string
	copies  map[string]*fakeCopy
	calls   map[string]int

	// ListSizesUnknown makes recursive listings return entries without
	// sizes, forcing callers through GetMetadata.
	ListSizesUnknown bool

	// CopyPollsUntilDone is how many GetCopyStatus calls a copy spends in
	// CopyStateCopying before committing. Zero means done on first poll.
	CopyPollsUntilDone int

	// FailCopies marks destination keys whose copies end in failure.
	FailCopies map[string]bool

	ListDirectFunc    func(ctx context.Context, container, prefix string) ([]*transfertypes.ObjectEntry, error)
	ListRecursiveFunc func(ctx context.Context, container, prefix string) ([]*transfertypes.ObjectEntry, error)
	GetMetadataFunc   func(ctx context.Context, container, key string) (*store.Metadata, error)
	GetBytesFunc      func(ctx context.Context, container, key string) (io.ReadCloser, error)
	PutBytesFunc      func(ctx context.Context, container, key string, body io.Reader, contentType string, overwrite bool) error
	DeleteFunc        func(ctx context.Context, container, key string) error
	IssueReadURLFunc  func(ctx context.Context, container, key string, ttl time.Duration) (string, error)
	StartCopyFunc     func(ctx context.Context, destContainer, destKey, sourceURL string) error
	GetCopyStatusFunc func(ctx context.Context, destContainer, destKey string) (store.CopyState, error)
}

type fakeCopy struct {
	data  []byte
	polls int
	fail  bool
	state store.CopyState
}

// NewFakeStore returns an empty fake store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		objects: make(map[string]map[string][]byte),
		types:   make(map[string]string),
		copies:  make(map[string]*fakeCopy),
		calls:   make(map[string]int),
	}
}

// Seed stores an object directly, bypassing PutBytes bookkeeping.
func (f *FakeStore) Seed(container, key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects[container] == nil {
		f.objects[container] = make(map[string][]byte)
	}
	f.objects[container][key] = data
}

// Object returns the stored bytes and whether the key exists.
func (f *FakeStore) Object(container, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[container][key]
	return data, ok
}

// ContentType returns the content type recorded by the last PutBytes.
func (f *FakeStore) ContentType(container, key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.types[container+"/"+key]
}

// Calls returns how many times the named method ran against the in-memory
// state (overridden methods are not counted).
func (f *FakeStore) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *FakeStore) record(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

// ListDirect returns the entries one level below prefix: files directly
// under it plus one directory entry per distinct child prefix.
func (f *FakeStore) ListDirect(ctx context.Context, container, prefix string) ([]*transfertypes.ObjectEntry, error) {
	if f.ListDirectFunc != nil {
		return f.ListDirectFunc(ctx, container, prefix)
	}
	f.record("ListDirect")

	f.mu.Lock()
	defer f.mu.Unlock()

	var entries []*transfertypes.ObjectEntry
	dirSeen := make(map[string]struct{})
	for key, data := range f.objects[container] {
		if !strings.HasPrefix(key, prefix) || key == prefix {
			continue
		}
		suffix := strings.TrimPrefix(key, prefix)
		if idx := strings.Index(suffix, store.Delimiter); idx >= 0 {
			dirKey := prefix + suffix[:idx+1]
			if _, ok := dirSeen[dirKey]; !ok {
				dirSeen[dirKey] = struct{}{}
				entries = append(entries, transfertypes.NewDirEntry(dirKey))
			}
			continue
		}
		entries = append(entries, transfertypes.NewFileEntry(key, int64(len(data)), time.Now(), "standard"))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// ListRecursive returns every object under prefix at any depth.
func (f *FakeStore) ListRecursive(ctx context.Context, container, prefix string) ([]*transfertypes.ObjectEntry, error) {
	if f.ListRecursiveFunc != nil {
		return f.ListRecursiveFunc(ctx, container, prefix)
	}
	f.record("ListRecursive")

	f.mu.Lock()
	defer f.mu.Unlock()

	var entries []*transfertypes.ObjectEntry
	for key, data := range f.objects[container] {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if f.ListSizesUnknown {
			entries = append(entries, transfertypes.NewPendingEntry(key))
		} else {
			entries = append(entries, transfertypes.NewFileEntry(key, int64(len(data)), time.Now(), "standard"))
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func (f *FakeStore) GetMetadata(ctx context.Context, container, key string) (*store.Metadata, error) {
	if f.GetMetadataFunc != nil {
		return f.GetMetadataFunc(ctx, container, key)
	}
	f.record("GetMetadata")

	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[container][key]
	if !ok {
		return nil, errors.NewObjectError("getMetadata", container, key, errors.ErrNotFound)
	}
	return &store.Metadata{
		Size:         int64(len(data)),
		LastModified: time.Now(),
		Tier:         "standard",
		ContentType:  f.types[container+"/"+key],
	}, nil
}

func (f *FakeStore) GetBytes(ctx context.Context, container, key string) (io.ReadCloser, error) {
	if f.GetBytesFunc != nil {
		return f.GetBytesFunc(ctx, container, key)
	}
	f.record("GetBytes")

	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[container][key]
	if !ok {
		return nil, errors.NewObjectError("getBytes", container, key, errors.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *FakeStore) PutBytes(ctx context.Context, container, key string, body io.Reader, contentType string, overwrite bool) error {
	if f.PutBytesFunc != nil {
		return f.PutBytesFunc(ctx, container, key, body, contentType, overwrite)
	}
	f.record("PutBytes")

	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.objects[container][key]; exists && !overwrite {
		return errors.NewObjectError("putBytes", container, key, errors.ErrAlreadyExists)
	}
	if f.objects[container] == nil {
		f.objects[container] = make(map[string][]byte)
	}
	f.objects[container][key] = data
	f.types[container+"/"+key] = contentType
	return nil
}

func (f *FakeStore) Delete(ctx context.Context, container, key string) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, container, key)
	}
	f.record("Delete")

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[container][key]; !ok {
		return errors.NewObjectError("delete", container, key, errors.ErrNotFound)
	}
	delete(f.objects[container], key)
	return nil
}

func (f *FakeStore) IssueReadURL(ctx context.Context, container, key string, ttl time.Duration) (string, error) {
	if f.IssueReadURLFunc != nil {
		return f.IssueReadURLFunc(ctx, container, key, ttl)
	}
	f.record("IssueReadURL")

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[container][key]; !ok {
		return "", errors.NewObjectError("issueReadURL", container, key, errors.ErrNotFound)
	}
	return "fake://" + container + "/" + key, nil
}

func (f *FakeStore) StartCopy(ctx context.Context, destContainer, destKey, sourceURL string) error {
	if f.StartCopyFunc != nil {
		return f.StartCopyFunc(ctx, destContainer, destKey, sourceURL)
	}
	f.record("StartCopy")

	rest, ok := strings.CutPrefix(sourceURL, "fake://")
	if !ok {
		return fmt.Errorf("unrecognized source url %q", sourceURL)
	}
	srcContainer, srcKey, ok := strings.Cut(rest, "/")
	if !ok {
		return fmt.Errorf("malformed source url %q", sourceURL)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	data, exists := f.objects[srcContainer][srcKey]
	f.copies[destContainer+"/"+destKey] = &fakeCopy{
		data:  data,
		fail:  !exists || f.FailCopies[destKey],
		state: store.CopyStatePending,
	}
	return nil
}

func (f *FakeStore) GetCopyStatus(ctx context.Context, destContainer, destKey string) (store.CopyState, error) {
	if f.GetCopyStatusFunc != nil {
		return f.GetCopyStatusFunc(ctx, destContainer, destKey)
	}
	f.record("GetCopyStatus")

	f.mu.Lock()
	defer f.mu.Unlock()
	cp, ok := f.copies[destContainer+"/"+destKey]
	if !ok {
		return "", errors.NewObjectError("copyStatus", destContainer, destKey, errors.ErrNotFound)
	}
	if cp.state == store.CopyStateSuccess || cp.state == store.CopyStateFailed {
		return cp.state, nil
	}

	if cp.polls < f.CopyPollsUntilDone {
		cp.polls++
		cp.state = store.CopyStateCopying
		return cp.state, nil
	}

	if cp.fail {
		cp.state = store.CopyStateFailed
		return cp.state, nil
	}
	if f.objects[destContainer] == nil {
		f.objects[destContainer] = make(map[string][]byte)
	}
	f.objects[destContainer][destKey] = cp.data
	cp.state = store.CopyStateSuccess
	return cp.state, nil
}

var _ store.Client = (*FakeStore)(nil)
