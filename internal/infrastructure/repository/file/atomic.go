package file

import (
	"io"
	"os"
	"path/filepath"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
)

// writeAtomic materializes a file through a temp sibling and a rename so
// readers never observe a partial write. Content is assembled in a
// pooled buffer before anything touches the disk; a fill error leaves
// the previous file untouched.
func writeAtomic(path string, fill func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return crerr.Wrapf(err, "create directory %s", dir)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := fill(buf); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-")
	if err != nil {
		return crerr.Wrapf(err, "create temp file in %s", dir)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.B); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return crerr.Wrapf(err, "write %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return crerr.Wrapf(err, "close %s", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return crerr.Wrapf(err, "rename %s to %s", tmpPath, path)
	}
	return nil
}
