package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadImageRequest(t *testing.T, token string, fields map[string]string, withImage bool) *http.Request {
	t.Helper()
	body, contentType := multipartPostBody(t, fields, withImage)
	req := httptest.NewRequest(http.MethodPut, "/post-image", body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestUploadPostImageRequiresAuthentication(t *testing.T) {
	_, app := newTestServer(t)

	resp, err := app.Test(uploadImageRequest(t, "", nil, true), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUploadPostImageWithoutFile(t *testing.T) {
	_, app := newTestServer(t)
	_, token := signupAndLogin(t, app, "upload-empty@example.com")

	resp, err := app.Test(uploadImageRequest(t, token, nil, false), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "No file provided", body["message"])
}

func TestUploadPostImageStoresFile(t *testing.T) {
	srv, app := newTestServer(t)
	_, token := signupAndLogin(t, app, "uploader@example.com")

	resp, err := app.Test(uploadImageRequest(t, token, nil, true), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	filePath, _ := body["filePath"].(string)
	require.True(t, strings.HasPrefix(filePath, filepath.ToSlash(srv.images.Dir())))
	assert.Contains(t, filePath, "-upload.png")

	_, statErr := os.Stat(filepath.FromSlash(filePath))
	assert.NoError(t, statErr)
}

func TestUploadPostImageReplacesOldArtifact(t *testing.T) {
	_, app := newTestServer(t)
	_, token := signupAndLogin(t, app, "replacer@example.com")

	first, err := app.Test(uploadImageRequest(t, token, nil, true), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, first.StatusCode)
	oldPath := decodeBody(t, first)["filePath"].(string)

	second, err := app.Test(uploadImageRequest(t, token, map[string]string{"oldPath": oldPath}, true), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, second.StatusCode)

	// Removal is asynchronous.
	stale := filepath.FromSlash(oldPath)
	assert.Eventually(t, func() bool {
		_, statErr := os.Stat(stale)
		return os.IsNotExist(statErr)
	}, 2*time.Second, 10*time.Millisecond)
}
