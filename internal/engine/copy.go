package engine

import (
	"context"

	"github.com/blobkit/transfer/errors"
)

// copyOne copies a single object into the destination container through the
// presigned-URL handoff, honoring the overwrite setting.
//
// When overwrite is off, the destination is probed first: an existing
// object makes the item a skip counted as success, a not-found answer lets
// the copy proceed, and any other probe error fails the item rather than
// guessing about the destination's state.
func (j *Job) copyOne(ctx context.Context, item workItem) result {
	srcKey := item.entry.Key
	destKey := item.destKey

	if !j.cfg.Overwrite {
		_, err := j.cfg.DestStore.GetMetadata(ctx, j.req.DestContainer, destKey)
		switch {
		case err == nil:
			j.log.Debug("destination exists, skipping", "key", destKey)
			return result{size: item.entry.SizeOrZero(), skipped: true}
		case errors.IsNotFound(err):
		default:
			return result{err: errors.NewObjectError("copy", j.req.DestContainer, destKey, err)}
		}
	}

	status, err := j.newCopier().Copy(ctx, j.req.Container, srcKey, j.req.DestContainer, destKey)
	if err != nil {
		return result{err: err}
	}
	j.log.Debug("copy finished", "src", srcKey, "dest", destKey, "status", string(status))
	return result{size: item.entry.SizeOrZero()}
}
