package engine

import (
	"context"
	"io"
	"path/filepath"

	"github.com/blobkit/transfer/errors"
)

// downloadOne streams a single object to the local filesystem, recreating
// the key's directory hierarchy under the job's local root.
func (j *Job) downloadOne(ctx context.Context, item workItem) result {
	key := item.entry.Key

	body, err := j.cfg.Store.GetBytes(ctx, j.req.Container, key)
	if err != nil {
		return result{err: errors.NewObjectError("download", j.req.Container, key, err)}
	}
	defer body.Close()

	localPath := filepath.Join(j.req.LocalRoot, filepath.FromSlash(key))
	if dir := filepath.Dir(localPath); dir != "." {
		if err := j.cfg.FS.MkdirAll(dir, 0o755); err != nil {
			return result{err: errors.NewObjectError("download", j.req.Container, key, err)}
		}
	}

	file, err := j.cfg.FS.Create(localPath)
	if err != nil {
		return result{err: errors.NewObjectError("download", j.req.Container, key, err)}
	}

	written, err := io.Copy(file, body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return result{err: errors.NewObjectError("download", j.req.Container, key, err)}
	}

	// Accounting uses the listed size when known so transferred bytes stay
	// consistent with the estimator's total.
	if size, known := item.entry.Size(); known {
		return result{size: size}
	}
	return result{size: written}
}
