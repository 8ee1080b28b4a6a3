package snapshot

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// FileSink writes snapshots to a local file, replacing any previous content.
type FileSink struct {
	path string
}

// NewFileSink returns a sink writing to path. Missing parent directories are created.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Put writes body to the sink's file and returns its absolute path.
func (s *FileSink) Put(ctx context.Context, _ string, body io.Reader, _ int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(s.path)
	if err != nil {
		return "", errors.Join(ErrWriteFailed, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", errors.Join(ErrWriteFailed, err)
	}

	f, err := os.Create(abs)
	if err != nil {
		return "", errors.Join(ErrWriteFailed, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		return "", errors.Join(ErrWriteFailed, err)
	}
	if err := f.Close(); err != nil {
		return "", errors.Join(ErrWriteFailed, err)
	}
	return abs, nil
}
