// Package blob stores uploaded asset photos, on local disk or in S3.
package blob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store saves blobs and hands back a URL clients can fetch them from.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// ErrBadKey is returned for keys that would escape the store.
var ErrBadKey = errors.New("invalid blob key")

// NewKey returns a fresh key for a blob with extension ext, grouped by month.
func NewKey(ext string) string {
	return time.Now().UTC().Format("2006/01/") + uuid.NewString() + ext
}

// CleanKey rejects keys that are absolute or climb out of the store.
func CleanKey(key string) (string, error) {
	k := path.Clean("/" + key)[1:]
	if k == "" || k != key || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q", ErrBadKey, key)
	}
	return k, nil
}

// Local keeps blobs under Dir and serves them below PublicURL.
type Local struct {
	Dir       string
	PublicURL string
}

var _ Store = (*Local)(nil)

// NewLocal creates dir if needed.
func NewLocal(dir, publicURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &Local{Dir: dir, PublicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (l *Local) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := filepath.Join(l.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("storing %s: %w", key, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("storing %s: %w", key, err)
	}
	slog.Info("blob stored", "key", key, "bytes", len(data), "type", contentType)
	return l.PublicURL + "/" + key, nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(l.Dir, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}
