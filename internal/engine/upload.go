package engine

import (
	"bytes"
	"context"
	"io"
	"mime"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/blobkit/transfer/errors"
)

const defaultContentType = "application/octet-stream"

// uploadOne streams a single local file to the store. Uploads always
// overwrite: re-uploading a selection is the refresh gesture.
func (j *Job) uploadOne(ctx context.Context, item workItem) result {
	file, err := j.cfg.FS.Open(item.localPath)
	if err != nil {
		return result{err: errors.NewObjectError("upload", j.req.Container, item.destKey, err)}
	}
	defer file.Close()

	contentType, reader := sniffContentType(item.localPath, file)

	if err := j.cfg.Store.PutBytes(ctx, j.req.Container, item.destKey, reader, contentType, true); err != nil {
		return result{err: errors.NewObjectError("upload", j.req.Container, item.destKey, err)}
	}
	return result{size: item.entry.SizeOrZero()}
}

// sniffContentType detects the content type from the file's leading bytes,
// falling back to the extension, then to the octet-stream default. The
// returned reader replays the sniffed bytes ahead of the rest of the file.
func sniffContentType(localPath string, file io.Reader) (string, io.Reader) {
	buf := make([]byte, 512)
	n, _ := io.ReadFull(file, buf)
	reader := io.MultiReader(bytes.NewReader(buf[:n]), file)

	if n > 0 {
		if mt := mimetype.Detect(buf[:n]); mt != nil {
			return mt.String(), reader
		}
	}
	if byExt := mime.TypeByExtension(filepath.Ext(localPath)); byExt != "" {
		return byExt, reader
	}
	return defaultContentType, reader
}
