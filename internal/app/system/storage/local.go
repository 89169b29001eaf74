package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local stores objects under a directory on disk and serves them from a
// static file route. Intended for development and single-node deployments.
type Local struct {
	baseDir string
	baseURL string
}

// NewLocal creates a disk-backed store rooted at baseDir. baseURL is the URL
// prefix the file server mounts, e.g. "/files".
func NewLocal(baseDir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &Local{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Dir returns the root directory, for mounting a file server over it.
func (l *Local) Dir() string { return l.baseDir }

func (l *Local) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	dst := l.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return err
	}
	return f.Close()
}

func (l *Local) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(l.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return f, err
}

func (l *Local) Delete(_ context.Context, key string) error {
	err := os.Remove(l.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (l *Local) URL(key string) string {
	return l.baseURL + "/" + key
}

// path maps a key onto the base directory, refusing traversal outside it.
func (l *Local) path(key string) string {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	return filepath.Join(l.baseDir, clean)
}
