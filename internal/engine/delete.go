package engine

import (
	"context"

	"github.com/blobkit/transfer/errors"
)

// deleteOne removes a single object. Byte accounting uses the listed size
// when known so delete progress can still report a byte figure.
func (j *Job) deleteOne(ctx context.Context, item workItem) result {
	key := item.entry.Key
	if err := j.cfg.Store.Delete(ctx, j.req.Container, key); err != nil {
		return result{err: errors.NewObjectError("delete", j.req.Container, key, err)}
	}
	return result{size: item.entry.SizeOrZero()}
}
