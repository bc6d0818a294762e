// internal/app/system/blobstore/blobstore.go
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dalemusser/waffle/pantry/storage"
)

var (
	// ErrNotFound is returned by Get when no blob exists under the key.
	ErrNotFound = errors.New("blob not found")
	// ErrBadKey is returned for keys that are empty or contain path elements.
	ErrBadKey = errors.New("invalid blob key")
)

// Store holds opaque blobs addressed by a flat key.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) (bool, error)
}

// Local keeps blobs in a waffle local storage backend rooted at one
// directory. A Put replaces any earlier blob with the same key.
type Local struct {
	dir     string
	backend *storage.Local
}

// NewLocal returns a Local rooted at dir, creating the directory up front so
// health checks and the file server see it before the first upload.
// urlPrefix is the path the directory is served under.
func NewLocal(dir, urlPrefix string) (*Local, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("blob directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	backend, err := storage.NewLocal(storage.LocalConfig{BasePath: dir, BaseURL: urlPrefix})
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}
	return &Local{dir: dir, backend: backend}, nil
}

// Dir returns the root directory.
func (l *Local) Dir() string { return l.dir }

// URL returns the public URL of key under the configured prefix.
func (l *Local) URL(key string) string { return l.backend.URL(key) }

func checkKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return ErrBadKey
	}
	return nil
}

func (l *Local) fullPath(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	return l.backend.GetFullPath(key)
}

func (l *Local) Put(ctx context.Context, key string, r io.Reader) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.backend.Put(ctx, key, r, &storage.PutOptions{
		ContentType: mime.TypeByExtension(filepath.Ext(key)),
	})
}

func (l *Local) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := l.fullPath(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// Delete removes the blob and reports whether one existed.
func (l *Local) Delete(ctx context.Context, key string) (bool, error) {
	p, err := l.fullPath(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	if err := l.backend.Delete(ctx, key); err != nil {
		return false, err
	}
	return true, nil
}
