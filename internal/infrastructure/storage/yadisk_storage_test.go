package storage_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "filesend-bot/internal/domain/storage"
	"filesend-bot/internal/infrastructure/storage"
)

// fakeDisk emulates the subset of the Yandex Disk REST API the backend uses.
type fakeDisk struct {
	mu      sync.Mutex
	server  *httptest.Server
	dirs    map[string]bool
	files   map[string][]byte
	authHdr []string
}

func newFakeDisk(t *testing.T) *fakeDisk {
	t.Helper()
	d := &fakeDisk{dirs: map[string]bool{}, files: map[string][]byte{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/disk/resources", d.resources)
	mux.HandleFunc("/v1/disk/resources/upload", d.uploadLink)
	mux.HandleFunc("/upload-target", d.receive)
	d.server = httptest.NewServer(mux)
	t.Cleanup(d.server.Close)
	return d
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (d *fakeDisk) resources(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.authHdr = append(d.authHdr, r.Header.Get("Authorization"))
	p := r.URL.Query().Get("path")

	switch r.Method {
	case http.MethodGet:
		if d.dirs[p] || d.files[p] != nil {
			writeJSON(w, http.StatusOK, map[string]string{"path": "disk:" + p})
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "DiskNotFoundError"})
	case http.MethodPut:
		if d.dirs[p] {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "DiskPathPointsToExistentDirectoryError"})
			return
		}
		if parent := filepath.Dir(p); parent != "/" && !d.dirs[parent] {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "DiskPathDoesntExistsError"})
			return
		}
		d.dirs[p] = true
		writeJSON(w, http.StatusCreated, map[string]string{"href": "x"})
	}
}

func (d *fakeDisk) uploadLink(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := r.URL.Query().Get("path")
	if d.files[p] != nil && r.URL.Query().Get("overwrite") != "true" {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "DiskResourceAlreadyExistsError"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"href":   d.server.URL + "/upload-target?path=" + p,
		"method": "PUT",
	})
}

func (d *fakeDisk) receive(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	d.mu.Lock()
	defer d.mu.Unlock()
	if r.Header.Get("Authorization") != "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	d.files[r.URL.Query().Get("path")] = body
	w.WriteHeader(http.StatusCreated)
}

func TestYandexDiskStorage(t *testing.T) {
	disk := newFakeDisk(t)
	backend := storage.NewYandexDiskStorage(disk.server.URL+"/v1/disk/", "secret", 5*time.Second, zerolog.Nop())
	ctx := context.Background()

	assert.Equal(t, "yadisk", backend.Name())

	exists, err := backend.Exists(ctx, "/FilesSendBot")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, backend.Mkdir(ctx, "/FilesSendBot"))
	assert.ErrorIs(t, backend.Mkdir(ctx, "/FilesSendBot"), domain.ErrAlreadyExists)

	err = backend.Mkdir(ctx, "/missing/child")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrAlreadyExists)

	exists, err = backend.Exists(ctx, "/FilesSendBot")
	require.NoError(t, err)
	assert.True(t, exists)

	local := filepath.Join(t.TempDir(), "essay.txt")
	require.NoError(t, os.WriteFile(local, []byte("essay body"), 0o600))

	require.NoError(t, backend.Upload(ctx, local, "/FilesSendBot/Petrov_Essay.txt", false))
	assert.Equal(t, []byte("essay body"), disk.files["/FilesSendBot/Petrov_Essay.txt"])

	assert.ErrorIs(t, backend.Upload(ctx, local, "/FilesSendBot/Petrov_Essay.txt", false), domain.ErrAlreadyExists)

	require.NoError(t, os.WriteFile(local, []byte("new body"), 0o600))
	require.NoError(t, backend.Upload(ctx, local, "/FilesSendBot/Petrov_Essay.txt", true))
	assert.Equal(t, []byte("new body"), disk.files["/FilesSendBot/Petrov_Essay.txt"])

	for _, h := range disk.authHdr {
		assert.Equal(t, "OAuth secret", h)
	}
}

func TestYandexDiskStorage_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "DiskUnavailable", "description": "try later"})
	}))
	t.Cleanup(server.Close)

	backend := storage.NewYandexDiskStorage(server.URL, "secret", time.Second, zerolog.Nop())
	_, err := backend.Exists(context.Background(), "/FilesSendBot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
