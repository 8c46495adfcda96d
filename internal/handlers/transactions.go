package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/ashmitsharp/vendlens-api/internal/logger"
	"github.com/ashmitsharp/vendlens-api/internal/models"
	"github.com/ashmitsharp/vendlens-api/internal/utils"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// SalesHistory reads and clears the committed sales history
type SalesHistory interface {
	GetTransactions(ctx context.Context) ([]models.Transaction, error)
	ClearSales(ctx context.Context) error
}

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	history SalesHistory
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(history SalesHistory) *TransactionHandler {
	return &TransactionHandler{history: history}
}

// GetTransactions returns one page of the sales history, newest first
// GET /v1/transactions?limit=50&offset=0
func (h *TransactionHandler) GetTransactions(c fiber.Ctx) error {
	// 1. Parse query parameters
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}

	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	// 2. Load history
	txs, err := h.history.GetTransactions(c.Context())
	if err != nil {
		return utils.NewInternalError(err)
	}

	// 3. Slice the page
	total := len(txs)
	start := min(offset, total)
	end := min(start+limit, total)
	page := txs[start:end]
	if page == nil {
		page = []models.Transaction{}
	}

	return utils.PaginatedResponse(c, page, offset/limit+1, limit, total)
}

// ClearTransactions deletes the whole sales history
// DELETE /v1/transactions
func (h *TransactionHandler) ClearTransactions(c fiber.Ctx) error {
	ctx := c.Context()
	if err := h.history.ClearSales(ctx); err != nil {
		return utils.NewInternalError(err)
	}
	log := logger.FromContext(ctx)
	log.Warn().Msg("sales history cleared")
	return c.SendStatus(fiber.StatusNoContent)
}
