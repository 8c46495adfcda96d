package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"path"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/ashmitsharp/vendlens-api/internal/logger"
	"github.com/ashmitsharp/vendlens-api/internal/models"
	"github.com/ashmitsharp/vendlens-api/internal/notify"
	"github.com/ashmitsharp/vendlens-api/internal/services"
	"github.com/ashmitsharp/vendlens-api/internal/utils"
)

// MaxPreviewFiles caps the number of spreadsheets in one preview request
const MaxPreviewFiles = 20

var (
	errOutsideImportArea = errors.New("file key is outside the import area")
	errNotInStorage      = errors.New("file not found in storage")
)

// BatchImporter parses spreadsheets into a staged batch
type BatchImporter interface {
	ParseFiles(ctx context.Context, files []services.FileInput, manualDate string) *models.ImportBatch
}

// BatchCommitter persists the new transactions of a staged batch
type BatchCommitter interface {
	Commit(ctx context.Context, txs []models.Transaction) (models.CommitResult, error)
}

// ImportHandler drives the preview, commit and discard flow of POS exports
type ImportHandler struct {
	importer  BatchImporter
	committer BatchCommitter
	staging   *services.StagingArea
	validator *services.FileValidator
	storage   StorageService
	notifier  notify.Notifier
}

// NewImportHandler creates an import handler. storage may be nil, in which case
// only multipart previews are available.
func NewImportHandler(
	importer BatchImporter,
	committer BatchCommitter,
	staging *services.StagingArea,
	validator *services.FileValidator,
	storage StorageService,
	notifier notify.Notifier,
) *ImportHandler {
	return &ImportHandler{
		importer:  importer,
		committer: committer,
		staging:   staging,
		validator: validator,
		storage:   storage,
		notifier:  notifier,
	}
}

// ProcessImportRequest is the body of POST /v1/imports/process
type ProcessImportRequest struct {
	FileKeys []string `json:"file_keys"`
	Date     string   `json:"date"`
}

// CommitResponse is returned after a staged batch has been committed
type CommitResponse struct {
	BatchID      uuid.UUID      `json:"batch_id"`
	Accepted     int            `json:"accepted"`
	Skipped      int            `json:"skipped"`
	StockUpdates map[string]int `json:"stock_updates"`
}

// Preview parses uploaded spreadsheets and stages the result
// POST /v1/imports/preview (multipart: files[], date)
func (h *ImportHandler) Preview(c fiber.Ctx) error {
	// 1. Collect files
	form, err := c.MultipartForm()
	if err != nil {
		return utils.NewBadRequestError("expected multipart form with files", nil)
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return utils.NewBadRequestError("at least one file is required", nil)
	}
	if len(headers) > MaxPreviewFiles {
		return utils.NewBadRequestError("too many files", fiber.Map{"max": MaxPreviewFiles})
	}

	// 2. Validate each file; invalid ones are reported but do not stop the batch
	inputs := make([]services.FileInput, 0, len(headers))
	for _, fh := range headers {
		data, err := readValidated(h.validator, fh)
		if err != nil {
			inputs = append(inputs, services.FileInput{Name: fh.Filename, Err: err})
			continue
		}
		inputs = append(inputs, services.FileInput{Name: fh.Filename, Reader: bytes.NewReader(data)})
	}

	// 3. Parse and stage
	batch := h.importer.ParseFiles(c.Context(), inputs, c.FormValue("date"))
	return h.stage(c, batch)
}

// Process parses spreadsheets previously uploaded through presigned URLs
// POST /v1/imports/process
// Body: {"file_keys": ["imports/VMCHERAS-5/1767772800-ab12cd34-sales.csv"], "date": "2026-01-07"}
func (h *ImportHandler) Process(c fiber.Ctx) error {
	if h.storage == nil {
		return utils.NewServiceUnavailableError("file storage is not configured")
	}

	// 1. Parse request body
	var req ProcessImportRequest
	if err := c.Bind().JSON(&req); err != nil {
		return utils.NewBadRequestError("invalid request body", nil)
	}
	if len(req.FileKeys) == 0 {
		return utils.NewBadRequestError("file_keys is required", nil)
	}
	if len(req.FileKeys) > MaxPreviewFiles {
		return utils.NewBadRequestError("too many files", fiber.Map{"max": MaxPreviewFiles})
	}

	// 2. Download each file
	ctx := c.Context()
	inputs := make([]services.FileInput, 0, len(req.FileKeys))
	for _, key := range req.FileKeys {
		name := path.Base(key)
		if !isImportKey(key) {
			inputs = append(inputs, services.FileInput{Name: name, Err: errOutsideImportArea})
			continue
		}
		data, err := h.download(ctx, key)
		if err != nil {
			log := logger.FromContext(ctx)
			log.Warn().Err(err).Str("file_key", key).Msg("failed to download import")
			inputs = append(inputs, services.FileInput{Name: name, Err: errNotInStorage})
			continue
		}
		inputs = append(inputs, services.FileInput{Name: name, Reader: bytes.NewReader(data)})
	}

	// 3. Parse and stage
	batch := h.importer.ParseFiles(ctx, inputs, req.Date)
	return h.stage(c, batch)
}

// Get returns a staged batch
// GET /v1/imports/:id
func (h *ImportHandler) Get(c fiber.Ctx) error {
	batch, err := h.lookup(c)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, batch)
}

// Commit persists a staged batch. On failure the batch stays staged so the
// operator can retry.
// POST /v1/imports/:id/commit
func (h *ImportHandler) Commit(c fiber.Ctx) error {
	batch, err := h.lookup(c)
	if err != nil {
		return err
	}

	ctx := c.Context()
	result, err := h.committer.Commit(ctx, batch.Transactions)
	notify.CommitOutcome(ctx, h.notifier, result, err)
	if errors.Is(err, services.ErrEmptyBatch) {
		return utils.NewBadRequestError("batch has no valid transactions", nil)
	}
	if err != nil {
		return utils.NewInternalError(err)
	}

	// A concurrent discard is harmless here
	_ = h.staging.Discard(batch.ID)

	log := logger.FromContext(ctx)
	log.Info().
		Str("batch_id", batch.ID.String()).
		Int("accepted", result.Accepted).
		Int("skipped", result.Skipped).
		Msg("committed import")

	return utils.SuccessResponse(c, CommitResponse{
		BatchID:      batch.ID,
		Accepted:     result.Accepted,
		Skipped:      result.Skipped,
		StockUpdates: result.StockUpdates,
	})
}

// Discard drops a staged batch without saving it
// DELETE /v1/imports/:id
func (h *ImportHandler) Discard(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.NewBadRequestError("invalid batch id", nil)
	}
	if err := h.staging.Discard(id); err != nil {
		return utils.NewNotFoundError("staged batch")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ImportHandler) stage(c fiber.Ctx, batch *models.ImportBatch) error {
	h.staging.Put(batch)

	log := logger.FromContext(c.Context())
	log.Info().
		Str("batch_id", batch.ID.String()).
		Int("files", len(batch.Files)).
		Int("transactions", batch.TotalRows).
		Msg("staged import")

	return utils.CreatedResponse(c, batch)
}

func (h *ImportHandler) lookup(c fiber.Ctx) (*models.ImportBatch, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, utils.NewBadRequestError("invalid batch id", nil)
	}
	batch, err := h.staging.Get(id)
	if err != nil {
		return nil, utils.NewNotFoundError("staged batch")
	}
	return batch, nil
}

func (h *ImportHandler) download(ctx context.Context, key string) ([]byte, error) {
	body, err := h.storage.DownloadFile(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

// readValidated reads an uploaded spreadsheet and runs it through the validator
func readValidated(validator *services.FileValidator, fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	contentType := mediaType(fh.Header.Get("Content-Type"))
	if contentType == "" {
		contentType = services.ContentTypeFor(fh.Filename)
	}

	if _, err := validator.Check(data, fh.Filename, contentType); err != nil {
		return nil, err
	}
	return data, nil
}
