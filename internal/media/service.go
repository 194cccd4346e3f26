package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/sonigems/saraf-backend/pkg/config"
	pkgerrors "github.com/sonigems/saraf-backend/pkg/errors"
	"github.com/sonigems/saraf-backend/pkg/logger"
)

var allowedImageMimeTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

type objectStore interface {
	UploadObject(ctx context.Context, objectName, contentType string, body io.Reader) (string, error)
	DeleteObject(ctx context.Context, objectName string) error
	ObjectNameFromURL(publicURL string) string
}

// Service stores product images and guards the shared placeholder asset.
type Service interface {
	UploadProductImage(ctx context.Context, input UploadInput) (string, error)
	DeleteByURL(ctx context.Context, imageURL string) error
	PlaceholderURL() string
}

type service struct {
	store  objectStore
	cfg    config.MediaConfig
	logg   *logger.Logger
	maxLen int64
}

// NewService constructs a media service backed by the object store.
func NewService(store objectStore, cfg config.MediaConfig, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.PlaceholderImageURL == "" {
		return nil, fmt.Errorf("placeholder image url required")
	}
	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 10
	}
	return &service{
		store:  store,
		cfg:    cfg,
		logg:   logg,
		maxLen: int64(maxMB) * 1024 * 1024,
	}, nil
}

// UploadInput models one product image upload.
type UploadInput struct {
	FileName    string
	ContentType string
	SizeBytes   int64
	Body        io.Reader
}

func (s *service) UploadProductImage(ctx context.Context, input UploadInput) (string, error) {
	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	if input.Body == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image body is required")
	}
	if input.SizeBytes <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image size must be positive")
	}
	if input.SizeBytes > s.maxLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image exceeds %d bytes", s.maxLen))
	}
	if !isAllowedImageMime(input.ContentType) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported image content type")
	}

	objectName := buildObjectName(s.cfg.ProductImageFolder, uuid.New(), fileName)
	body := io.LimitReader(input.Body, s.maxLen)

	url, err := s.store.UploadObject(ctx, objectName, input.ContentType, body)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload product image")
	}
	return url, nil
}

// DeleteByURL removes a stored image. The shared placeholder and foreign URLs
// are never deleted.
func (s *service) DeleteByURL(ctx context.Context, imageURL string) error {
	trimmed := strings.TrimSpace(imageURL)
	if trimmed == "" || trimmed == s.cfg.PlaceholderImageURL {
		return nil
	}
	objectName := s.store.ObjectNameFromURL(trimmed)
	if objectName == "" {
		return nil
	}
	if err := s.store.DeleteObject(ctx, objectName); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product image")
	}
	return nil
}

func (s *service) PlaceholderURL() string {
	return s.cfg.PlaceholderImageURL
}

func isAllowedImageMime(mimeType string) bool {
	for _, candidate := range allowedImageMimeTypes {
		if strings.EqualFold(candidate, mimeType) {
			return true
		}
	}
	return false
}

func buildObjectName(folder string, id uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = id.String()
	}
	if folder == "" {
		folder = "products"
	}
	return fmt.Sprintf("%s/%s/%s", folder, id.String(), cleanName)
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.TrimSpace(name))
	if clean == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}
