// Package media validates and stores uploaded post thumbnails.
package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"blogshare/internal/middleware"
	"blogshare/internal/models"

	"github.com/google/uuid"
)

const (
	DefaultUploadDir       = "uploads"
	DefaultMaxUploadSizeMB = 5
	// PublicPrefix is the path stored images are served under.
	PublicPrefix = "/uploads"
)

var (
	allowedContentTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/jpg":  {},
		"image/png":  {},
		"image/gif":  {},
	}
	allowedExtensions = map[string]struct{}{
		".jpeg": {},
		".jpg":  {},
		".png":  {},
		".gif":  {},
	}
)

// Upload describes one file part as received from the client. Filename and ContentType are
// client-declared and trusted; the bytes are not inspected.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Intake accepts uploads and turns them into public image references.
type Intake struct {
	uploadDir     string
	publicBaseURL string
	maxBytes      int64
}

// NewIntake returns an Intake writing into uploadDir. maxBytes <= 0 selects the default ceiling.
func NewIntake(uploadDir, publicBaseURL string, maxBytes int64) *Intake {
	if uploadDir == "" {
		uploadDir = DefaultUploadDir
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadSizeMB * 1024 * 1024
	}
	return &Intake{
		uploadDir:     uploadDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		maxBytes:      maxBytes,
	}
}

// EnsureDir creates the upload directory if it does not exist.
func (in *Intake) EnsureDir() error {
	if err := os.MkdirAll(in.uploadDir, 0o750); err != nil {
		return fmt.Errorf("create upload dir %s: %w", in.uploadDir, err)
	}
	return nil
}

// Dir is the directory stored files live in.
func (in *Intake) Dir() string {
	return in.uploadDir
}

// MaxBytes is the per-file size ceiling.
func (in *Intake) MaxBytes() int64 {
	return in.maxBytes
}

// Accept validates u and persists it under a fresh name, returning the public URL.
func (in *Intake) Accept(ctx context.Context, u Upload) (string, error) {
	if u.Open == nil {
		return "", models.NewValidationError("Image is required")
	}

	ext := strings.ToLower(filepath.Ext(u.Filename))
	if !IsAllowedType(u.ContentType, ext) {
		middleware.MediaUploads.WithLabelValues("rejected_type").Inc()
		return "", models.NewUnsupportedMediaTypeError("Only jpeg, jpg, png and gif images are allowed")
	}
	if u.Size > in.maxBytes {
		middleware.MediaUploads.WithLabelValues("rejected_size").Inc()
		return "", in.tooLarge()
	}

	name := uuid.NewString() + ext
	if err := in.store(u, name); err != nil {
		if models.IsCode(err, models.CodePayloadTooLarge) {
			middleware.MediaUploads.WithLabelValues("rejected_size").Inc()
			return "", err
		}
		middleware.MediaUploads.WithLabelValues("error").Inc()
		middleware.Logger.ErrorContext(ctx, "failed to store upload",
			slog.String("file", name),
			slog.String("error", err.Error()),
		)
		return "", models.NewInternalError(err)
	}

	middleware.MediaUploads.WithLabelValues("stored").Inc()
	return in.URLFor(name), nil
}

// URLFor builds the public reference for a stored file name.
func (in *Intake) URLFor(name string) string {
	return in.publicBaseURL + PublicPrefix + "/" + name
}

func (in *Intake) tooLarge() error {
	return models.NewPayloadTooLargeError(fmt.Sprintf("Image too large (max %dMB)", in.maxBytes/(1024*1024)))
}

// store copies at most maxBytes; a declared size that understates the body is caught here.
func (in *Intake) store(u Upload, name string) (err error) {
	src, err := u.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := in.EnsureDir(); err != nil {
		return err
	}

	path := filepath.Join(in.uploadDir, name)
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	n, err := io.Copy(dst, io.LimitReader(src, in.maxBytes+1))
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if n > in.maxBytes {
		return in.tooLarge()
	}
	return nil
}

// IsAllowedType reports whether both the declared MIME type and the extension name a raster
// format on the allow-list.
func IsAllowedType(contentType, ext string) bool {
	if _, ok := allowedContentTypes[normalizeContentType(contentType)]; !ok {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(ext)]
	return ok
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

// FromFileHeader adapts a multipart file part.
func FromFileHeader(fh *multipart.FileHeader) Upload {
	return Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
