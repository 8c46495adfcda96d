package handlers

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/ashmitsharp/vendlens-api/internal/services"
	"github.com/ashmitsharp/vendlens-api/internal/utils"
)

const (
	// PresignedURLExpiry is how long a presigned upload URL stays valid
	PresignedURLExpiry = 15 * time.Minute
	// PresignedURLExpirySeconds is PresignedURLExpiry in seconds
	PresignedURLExpirySeconds = int(PresignedURLExpiry / time.Second)
	// ImportKeyPrefix is the S3 prefix every uploaded POS export lives under
	ImportKeyPrefix = "imports/"
)

// AllowedContentTypes defines the content types that are allowed for upload
var AllowedContentTypes = map[string]bool{
	services.MimeCSV:  true,
	services.MimeXLS:  true,
	services.MimeXLSX: true,
}

// StorageService interface defines methods for S3 operations
type StorageService interface {
	GenerateUploadKey(machine, filename string) (string, error)
	GeneratePresignedURL(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, error)
}

// UploadHandler hands out presigned URLs so browsers upload exports straight to S3
type UploadHandler struct {
	storage StorageService
}

// NewUploadHandler creates a new upload handler instance. storage may be nil
// when no bucket is configured.
func NewUploadHandler(storage StorageService) *UploadHandler {
	return &UploadHandler{storage: storage}
}

// GetPresignedURL generates a presigned URL for file upload
// Query params: filename (required), content_type (required), machine (optional)
// Returns: upload_url, file_key, expires_in
func (h *UploadHandler) GetPresignedURL(c fiber.Ctx) error {
	if h.storage == nil {
		return utils.NewServiceUnavailableError("file storage is not configured")
	}

	// 1. Get query parameters
	filename := c.Query("filename")
	contentType := mediaType(c.Query("content_type"))

	// 2. Validate filename
	if filename == "" {
		return utils.NewBadRequestError("filename is required", nil)
	}
	if err := services.CheckFilename(filename); err != nil {
		return utils.NewBadRequestError("invalid filename", err.Error())
	}

	// 3. Validate content_type
	if contentType == "" {
		return utils.NewBadRequestError("content_type is required", nil)
	}
	if !AllowedContentTypes[contentType] {
		return utils.NewBadRequestError("unsupported file type", contentType)
	}

	// 4. Generate upload key
	key, err := h.storage.GenerateUploadKey(c.Query("machine"), filename)
	if err != nil {
		return utils.NewInternalError(err)
	}

	// 5. Generate presigned URL
	url, err := h.storage.GeneratePresignedURL(c.Context(), key, contentType, PresignedURLExpiry)
	if err != nil {
		return utils.NewInternalError(err)
	}

	return c.JSON(fiber.Map{
		"upload_url": url,
		"file_key":   key,
		"expires_in": PresignedURLExpirySeconds,
	})
}

// isImportKey reports whether key points inside the import prefix
func isImportKey(key string) bool {
	return strings.HasPrefix(key, ImportKeyPrefix) && !strings.Contains(key, "..")
}

// mediaType strips parameters such as charset from a Content-Type value
func mediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
