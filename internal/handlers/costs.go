package handlers

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/ashmitsharp/vendlens-api/internal/logger"
	"github.com/ashmitsharp/vendlens-api/internal/services"
	"github.com/ashmitsharp/vendlens-api/internal/store"
	"github.com/ashmitsharp/vendlens-api/internal/utils"
)

// CostIndexInvalidator drops a cached cost index after the master list changes
type CostIndexInvalidator interface {
	Invalidate()
}

// CostHandler manages the master cost list
type CostHandler struct {
	store     store.CostStore
	matcher   CostIndexInvalidator
	validator *services.FileValidator
}

// NewCostHandler creates a cost handler
func NewCostHandler(costs store.CostStore, matcher CostIndexInvalidator, validator *services.FileValidator) *CostHandler {
	return &CostHandler{store: costs, matcher: matcher, validator: validator}
}

// Upload replaces the master cost list with the contents of a spreadsheet
// POST /v1/costs/upload (multipart: file)
func (h *CostHandler) Upload(c fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return utils.NewBadRequestError("file is required", nil)
	}

	data, err := readValidated(h.validator, fh)
	if err != nil {
		return utils.NewBadRequestError("invalid file", err.Error())
	}

	costs, err := services.ParseMasterCostSheet(bytes.NewReader(data), fh.Filename)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedFormat) {
			return utils.NewBadRequestError("unsupported spreadsheet", err.Error())
		}
		return utils.NewBadRequestError("failed to read master cost list", err.Error())
	}

	ctx := c.Context()
	if err := h.store.SaveProductCosts(ctx, costs); err != nil {
		return utils.NewInternalError(err)
	}
	if h.matcher != nil {
		h.matcher.Invalidate()
	}

	log := logger.FromContext(ctx)
	log.Info().Str("file", fh.Filename).Int("products", len(costs)).Msg("master cost list replaced")

	return utils.SuccessResponse(c, fiber.Map{
		"products": len(costs),
		"costs":    costs,
	})
}

// List returns the master cost list
// GET /v1/costs
func (h *CostHandler) List(c fiber.Ctx) error {
	costs, err := h.store.GetProductCosts(c.Context())
	if err != nil {
		return utils.NewInternalError(err)
	}
	return utils.SuccessResponse(c, costs)
}
