// Package service contains the application's business logic.
package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"snapfeed/internal/config"
	"snapfeed/internal/middleware"
	"snapfeed/internal/models"

	"github.com/google/uuid"
)

const (
	DefaultImageDir         = "images"
	DefaultImageMaxUploadMB = 10
	cleanupQueueSize        = 64
	sniffLen                = 512
)

// ImageLifecycle manages stored image artifacts across post mutations.
// Replace and Remove are best-effort: a post mutation never fails because
// a stale artifact could not be deleted.
type ImageLifecycle interface {
	Replace(oldPath, newPath string)
	Remove(path string)
}

// ImageStore persists uploaded images on local disk and reclaims
// orphaned artifacts in the background.
type ImageStore struct {
	dir            string
	maxUploadBytes int64
	cleanup        chan string
	workerOnce     sync.Once
}

func NewImageStore(cfg *config.Config) *ImageStore {
	dir := DefaultImageDir
	maxUploadMB := DefaultImageMaxUploadMB

	if cfg != nil {
		if cfg.ImageDir != "" {
			dir = cfg.ImageDir
		}
		if cfg.MaxUploadMB > 0 {
			maxUploadMB = cfg.MaxUploadMB
		}
	}

	return &ImageStore{
		dir:            dir,
		maxUploadBytes: int64(maxUploadMB) * 1024 * 1024,
		cleanup:        make(chan string, cleanupQueueSize),
	}
}

// Dir returns the root directory images are stored under.
func (s *ImageStore) Dir() string {
	return s.dir
}

// StartWorker launches the cleanup worker. Safe to call more than once.
func (s *ImageStore) StartWorker(ctx context.Context) {
	s.workerOnce.Do(func() {
		go s.workerLoop(ctx)
	})
}

// Save validates and writes an uploaded file, returning its public path.
// The returned path always uses forward slashes so it can be served and
// stored verbatim regardless of platform.
func (s *ImageStore) Save(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", models.NewValidationError("No image provided")
	}
	if file.Size > s.maxUploadBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadBytes/(1024*1024)))
	}

	src, err := file.Open()
	if err != nil {
		return "", models.NewInternalError(err)
	}
	defer func() { _ = src.Close() }()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", models.NewInternalError(err)
	}
	if !isAllowedImageMIME(http.DetectContentType(head[:n])) {
		return "", models.NewValidationError("Only PNG and JPEG images are allowed")
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", models.NewInternalError(err)
	}

	name := fmt.Sprintf("%s-%s", uuid.NewString(), sanitizeFilename(file.Filename))
	rel := filepath.ToSlash(filepath.Join(s.dir, name))
	abs := filepath.Join(s.dir, name)

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", models.NewInternalError(err)
	}
	// #nosec G304: abs is built from a generated UUID and a sanitized name
	dst, err := os.Create(abs)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(abs)
		return "", models.NewInternalError(err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(abs)
		return "", models.NewInternalError(err)
	}

	return rel, nil
}

// Replace schedules removal of the old artifact when it differs from the
// new one. A no-op when the path is unchanged or empty.
func (s *ImageStore) Replace(oldPath, newPath string) {
	if oldPath == "" || oldPath == newPath {
		return
	}
	s.Remove(oldPath)
}

// Remove schedules deletion of a stored artifact. Never blocks: when the
// queue is full the removal runs in its own goroutine instead.
func (s *ImageStore) Remove(path string) {
	if path == "" {
		return
	}
	select {
	case s.cleanup <- path:
	default:
		go s.removeNow(path)
	}
}

func (s *ImageStore) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			// Drain whatever is still queued before exiting.
			for {
				select {
				case path := <-s.cleanup:
					s.removeNow(path)
				default:
					return
				}
			}
		case path := <-s.cleanup:
			s.removeNow(path)
		}
	}
}

func (s *ImageStore) removeNow(path string) {
	abs, err := s.diskPath(path)
	if err != nil {
		middleware.Logger.Warn("refusing to delete image outside store", "path", path)
		return
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		middleware.Logger.Warn("failed to delete image", "path", path, "error", err)
	}
}

// diskPath maps a stored public path back to a location on disk,
// rejecting anything that escapes the store directory.
func (s *ImageStore) diskPath(public string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(public))
	base := filepath.Clean(s.dir)
	if cleaned != base && !strings.HasPrefix(cleaned, base+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside image dir", public)
	}
	if cleaned == base {
		return "", fmt.Errorf("path %q is not a file", public)
	}
	return cleaned, nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(filepath.Clean(name))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "upload"
	}
	return name
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}
