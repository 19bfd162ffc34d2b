package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"snapfeed/internal/config"
	"snapfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func newTestStore(t *testing.T) *ImageStore {
	t.Helper()
	return NewImageStore(&config.Config{ImageDir: t.TempDir(), MaxUploadMB: 1})
}

func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["image"][0]
}

func TestImageStoreSave(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	path, err := store.Save(makeFileHeader(t, "my photo.png", pngHeader))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, store.Dir()+"/"), "path %q must live under the store dir", path)
	assert.NotContains(t, path, "\\")
	assert.True(t, strings.HasSuffix(path, "-my_photo.png"), "original name kept after the uuid prefix: %q", path)

	_, statErr := os.Stat(filepath.FromSlash(path))
	assert.NoError(t, statErr)
}

func TestImageStoreSaveRejectsNonImage(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	tests := []struct {
		name     string
		filename string
		content  []byte
	}{
		{"Plain Text", "notes.txt", []byte("just some text content here")},
		{"Renamed Text", "fake.png", []byte("still just text despite the name")},
		{"GIF", "anim.gif", []byte("GIF89a\x01\x00\x01\x00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Save(makeFileHeader(t, tt.filename, tt.content))
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, 422, appErr.Status)
		})
	}
}

func TestImageStoreSaveRejectsOversized(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	big := make([]byte, 2*1024*1024)
	copy(big, pngHeader)
	_, err := store.Save(makeFileHeader(t, "big.png", big))

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 422, appErr.Status)
}

func TestImageStoreRemove(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.StartWorker(ctx)

	path, err := store.Save(makeFileHeader(t, "gone.png", pngHeader))
	require.NoError(t, err)

	store.Remove(path)

	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.FromSlash(path))
		return os.IsNotExist(err)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestImageStoreReplace(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.StartWorker(ctx)

	oldPath, err := store.Save(makeFileHeader(t, "old.png", pngHeader))
	require.NoError(t, err)
	newPath, err := store.Save(makeFileHeader(t, "new.png", pngHeader))
	require.NoError(t, err)

	// Same path is a no-op
	store.Replace(newPath, newPath)
	store.Replace(oldPath, newPath)

	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.FromSlash(oldPath))
		return os.IsNotExist(err)
	}, 2*time.Second, 10*time.Millisecond)

	_, err = os.Stat(filepath.FromSlash(newPath))
	assert.NoError(t, err, "replacement artifact must survive")
}

func TestImageStoreDiskPathRejectsEscapes(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	tests := []string{
		"../etc/passwd",
		store.Dir() + "/../outside.png",
		"/etc/passwd",
		store.Dir(),
	}

	for _, path := range tests {
		_, err := store.diskPath(path)
		assert.Error(t, err, "path %q must be rejected", path)
	}
}

func TestImageStoreRemoveMissingFileIsSwallowed(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.StartWorker(ctx)

	// Nothing to observe beyond the absence of a panic or block.
	store.Remove(store.Dir() + "/does-not-exist.png")
	store.Remove("")
}
