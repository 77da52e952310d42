package storage_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filesend-bot/internal/config"
	domain "filesend-bot/internal/domain/storage"
	"filesend-bot/internal/infrastructure/storage"
)

// fakeBucket emulates path-style HEAD and PUT object calls for one bucket.
type fakeBucket struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	forbidden    bool
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key, ok := strings.CutPrefix(r.URL.Path, "/submissions/")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if b.forbidden {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	switch r.Method {
	case http.MethodHead:
		body, found := b.objects[key]
		if !found {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", b.contentTypes[key])
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b.objects[key] = body
		b.contentTypes[key] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (b *fakeBucket) object(key string) ([]byte, string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	body, ok := b.objects[key]
	return body, b.contentTypes[key], ok
}

func (b *fakeBucket) forbid() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forbidden = true
}

func newS3Storage(t *testing.T) (*storage.S3Storage, *fakeBucket) {
	t.Helper()
	bucket := &fakeBucket{objects: map[string][]byte{}, contentTypes: map[string]string{}}
	server := httptest.NewServer(bucket)
	t.Cleanup(server.Close)

	st, err := storage.NewS3Storage(context.Background(), &config.Config{
		S3Bucket:       "submissions",
		S3Region:       "us-east-1",
		S3Endpoint:     server.URL,
		S3AccessKeyID:  "test",
		S3SecretKey:    "test",
		S3UsePathStyle: true,
	}, zerolog.Nop())
	require.NoError(t, err)
	return st, bucket
}

func TestS3Storage_MkdirWritesFolderMarker(t *testing.T) {
	st, bucket := newS3Storage(t)
	ctx := context.Background()

	require.NoError(t, st.Mkdir(ctx, "/FilesSendBot/Petrov Ivan"))
	_, contentType, ok := bucket.object("FilesSendBot/Petrov Ivan/")
	assert.True(t, ok)
	assert.Equal(t, "application/x-directory", contentType)

	err := st.Mkdir(ctx, "/FilesSendBot/Petrov Ivan")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	exists, err := st.Exists(ctx, "/FilesSendBot/Petrov Ivan")
	require.NoError(t, err)
	assert.True(t, exists, "a folder marker counts as existing")
}

func TestS3Storage_UploadAndExists(t *testing.T) {
	st, bucket := newS3Storage(t)
	ctx := context.Background()
	remote := "/FilesSendBot/Petrov Ivan/Petrov_Essay.txt"
	key := "FilesSendBot/Petrov Ivan/Petrov_Essay.txt"

	exists, err := st.Exists(ctx, remote)
	require.NoError(t, err)
	assert.False(t, exists)

	local := filepath.Join(t.TempDir(), "essay.txt")
	require.NoError(t, os.WriteFile(local, []byte("first draft"), 0o600))

	require.NoError(t, st.Upload(ctx, local, remote, false))
	body, contentType, _ := bucket.object(key)
	assert.Equal(t, []byte("first draft"), body)
	assert.True(t, strings.HasPrefix(contentType, "text/plain"), contentType)

	exists, err = st.Exists(ctx, remote)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, os.WriteFile(local, []byte("second draft"), 0o600))
	assert.ErrorIs(t, st.Upload(ctx, local, remote, false), domain.ErrAlreadyExists)
	body, _, _ = bucket.object(key)
	assert.Equal(t, []byte("first draft"), body)

	require.NoError(t, st.Upload(ctx, local, remote, true))
	body, _, _ = bucket.object(key)
	assert.Equal(t, []byte("second draft"), body)
}

func TestS3Storage_ErrorsOtherThanNotFound(t *testing.T) {
	st, bucket := newS3Storage(t)
	bucket.forbid()
	ctx := context.Background()

	_, err := st.Exists(ctx, "/FilesSendBot")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrAlreadyExists)

	err = st.Mkdir(ctx, "/FilesSendBot")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestNewS3Storage_RequiresBucket(t *testing.T) {
	_, err := storage.NewS3Storage(context.Background(), &config.Config{S3Region: "us-east-1"}, zerolog.Nop())
	assert.Error(t, err)
}
