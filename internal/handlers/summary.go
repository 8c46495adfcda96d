package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/ashmitsharp/vendlens-api/internal/models"
	"github.com/ashmitsharp/vendlens-api/internal/services"
	"github.com/ashmitsharp/vendlens-api/internal/utils"
)

const maxTrendDays = 366

// TransactionReader reads the committed sales history
type TransactionReader interface {
	GetTransactions(ctx context.Context) ([]models.Transaction, error)
}

type SummaryHandler struct {
	history TransactionReader
	now     func() time.Time
}

func NewSummaryHandler(history TransactionReader) *SummaryHandler {
	return &SummaryHandler{
		history: history,
		now:     time.Now,
	}
}

// GetSummary handles GET /v1/summary
// Query params: from (date), to (date), days (trend length)
func (h *SummaryHandler) GetSummary(c fiber.Ctx) error {
	opts := services.SummaryOptions{
		From: c.Query("from"),
		To:   c.Query("to"),
		Now:  h.now(),
	}

	for _, d := range []string{opts.From, opts.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, d); err != nil {
			return utils.NewBadRequestError("invalid date, expected YYYY-MM-DD", d)
		}
	}
	if opts.From != "" && opts.To != "" && opts.From > opts.To {
		return utils.NewBadRequestError("from must not be after to", nil)
	}

	if days := c.Query("days"); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil || n < 1 || n > maxTrendDays {
			return utils.NewBadRequestError("days must be between 1 and 366", days)
		}
		opts.Days = n
	}

	txs, err := h.history.GetTransactions(c.Context())
	if err != nil {
		return utils.NewInternalError(err)
	}

	return utils.SuccessResponse(c, services.BuildSummary(txs, opts))
}
