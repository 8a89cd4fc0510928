package blob

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	k := NewKey(".jpg")
	assert.Regexp(t, regexp.MustCompile(`^\d{4}/\d{2}/[0-9a-f-]{36}\.jpg$`), k)
	assert.NotEqual(t, k, NewKey(".jpg"))
}

func TestCleanKey(t *testing.T) {
	for _, ok := range []string{"a.jpg", "2024/03/a.jpg"} {
		k, err := CleanKey(ok)
		require.NoError(t, err, ok)
		assert.Equal(t, ok, k)
	}
	for _, bad := range []string{"", "/etc/passwd", "../x.jpg", "a/../../x", "a//b", "./a"} {
		_, err := CleanKey(bad)
		assert.ErrorIs(t, err, ErrBadKey, bad)
	}
}

func TestLocalPutDelete(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(filepath.Join(dir, "uploads"), "http://localhost:8080/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := l.Put(ctx, "2024/03/photo.jpg", "image/jpeg", []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/2024/03/photo.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "uploads", "2024", "03", "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	require.NoError(t, l.Delete(ctx, "2024/03/photo.jpg"))
	require.NoError(t, l.Delete(ctx, "2024/03/photo.jpg"), "deleting twice is fine")

	_, err = l.Put(ctx, "../escape.jpg", "image/jpeg", nil)
	assert.ErrorIs(t, err, ErrBadKey)
}

func TestS3PutPresigns(t *testing.T) {
	var (
		mu   sync.Mutex
		puts = map[string]string{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		puts[r.URL.Path] = string(body)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewS3(context.Background(), S3Config{
		Region:    "eu-central-1",
		Bucket:    "assets",
		KeyPrefix: "photos/",
		Endpoint:  srv.URL,
		AccessID:  "id",
		AccessKey: "secret",
	})
	require.NoError(t, err)

	url, err := s.Put(context.Background(), "2024/03/a.jpg", "image/jpeg", []byte("jpeg"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, srv.URL+"/assets/photos/2024/03/a.jpg?"), url)
	assert.Contains(t, url, "X-Amz-Signature=")

	mu.Lock()
	assert.Equal(t, "jpeg", puts["/assets/photos/2024/03/a.jpg"])
	mu.Unlock()

	require.NoError(t, s.Delete(context.Background(), "2024/03/a.jpg"))

	_, err = NewS3(context.Background(), S3Config{Region: "eu-central-1"})
	assert.Error(t, err)
}
