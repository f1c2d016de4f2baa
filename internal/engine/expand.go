package engine

import (
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/blobkit/transfer/errors"
	"github.com/blobkit/transfer/transfertypes"
)

// expand flattens the job's selection into the working set. Directory
// entries are resolved through recursive listing; upload paths are resolved
// through the local filesystem. A listing or walk failure on one selected
// item is a warning, not a job failure: the rest of the selection still
// runs.
func (j *Job) expand(ctx context.Context) ([]workItem, error) {
	if j.req.Kind == transfertypes.OpUpload {
		return j.expandUploads(ctx)
	}
	return j.expandTargets(ctx)
}

func (j *Job) expandTargets(ctx context.Context) ([]workItem, error) {
	var items []workItem
	for _, target := range j.req.Targets {
		if ctx.Err() != nil {
			return nil, errors.NewError("expand", errors.ErrCancelled)
		}
		if !target.IsDir {
			items = append(items, workItem{entry: target, destKey: j.storeDestKey(target.Key)})
			continue
		}

		entries, err := j.cfg.Store.ListRecursive(ctx, j.req.Container, target.Key)
		if err != nil {
			// A listing that died with the context is cancellation, not a
			// per-target warning.
			if ctx.Err() != nil {
				return nil, errors.NewError("expand", errors.ErrCancelled)
			}
			j.warn("expand", target.Key, err)
			continue
		}
		for _, entry := range entries {
			items = append(items, workItem{entry: entry, destKey: j.storeDestKey(entry.Key)})
		}
	}
	return items, nil
}

// storeDestKey maps a source key to its destination key for copy jobs.
// With structure preservation the full key carries over; otherwise objects
// land flat at the destination root under their base name.
func (j *Job) storeDestKey(srcKey string) string {
	if j.req.Kind != transfertypes.OpCopyAcross {
		return srcKey
	}
	if j.cfg.PreserveStructure {
		return srcKey
	}
	return path.Base(srcKey)
}

func (j *Job) expandUploads(_ context.Context) ([]workItem, error) {
	var items []workItem
	for _, localPath := range j.req.LocalPaths {
		info, err := j.cfg.FS.Stat(localPath)
		if err != nil {
			j.warn("expand", localPath, err)
			continue
		}

		if !info.IsDir() {
			items = append(items, workItem{
				localPath: localPath,
				destKey:   path.Join(j.req.TargetDir, filepath.Base(localPath)),
				entry:     sizedEntry(localPath, info.Size()),
			})
			continue
		}

		// Folder upload keeps the folder's own name as the top of the
		// uploaded hierarchy, with relative paths preserved below it.
		rootName := filepath.Base(localPath)
		walkErr := j.cfg.FS.Walk(localPath, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(localPath, p)
			if err != nil {
				return err
			}
			items = append(items, workItem{
				localPath: p,
				destKey:   path.Join(j.req.TargetDir, rootName, filepath.ToSlash(rel)),
				entry:     sizedEntry(p, fi.Size()),
			})
			return nil
		})
		if walkErr != nil {
			j.warn("expand", localPath, walkErr)
		}
	}
	return items, nil
}

func sizedEntry(localPath string, size int64) *transfertypes.ObjectEntry {
	entry := transfertypes.NewPendingEntry(filepath.ToSlash(localPath))
	entry.SetSize(size)
	return entry
}
