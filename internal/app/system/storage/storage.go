// Package storage abstracts where uploaded material files live. The app
// talks to a Store; deployments pick the local-disk backend for development
// and the S3-compatible backend for production.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the object key does not exist.
var ErrNotFound = errors.New("object not found")

// Store is the interface both backends implement.
type Store interface {
	// Save writes the object under key. size may be -1 when unknown.
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Open returns the object's contents for streaming to a client.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for the object, for use in templates.
	URL(key string) string
}

// ObjectKey builds the storage key for an uploaded file: a year/month prefix
// for humane browsing plus a short random ID so repeated file names never
// collide.
func ObjectKey(fileName string) string {
	now := time.Now().UTC()
	return path.Join(
		"materials",
		now.Format("2006"),
		now.Format("01"),
		uuid.NewString()[:8]+"-"+sanitizeName(fileName),
	)
}

// sanitizeName keeps the original file name recognizable while stripping
// path separators and characters that are awkward in URLs.
func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
