package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/ashmitsharp/vendlens-api/internal/logger"
	"github.com/ashmitsharp/vendlens-api/internal/models"
	"github.com/ashmitsharp/vendlens-api/internal/store"
	"github.com/ashmitsharp/vendlens-api/internal/utils"
)

// InventoryHandler manages machine slots and their stock counts
type InventoryHandler struct {
	store store.InventoryStore
}

// NewInventoryHandler creates an inventory handler
func NewInventoryHandler(inventory store.InventoryStore) *InventoryHandler {
	return &InventoryHandler{store: inventory}
}

// List returns every slot with its current stock
// GET /v1/inventory
func (h *InventoryHandler) List(c fiber.Ctx) error {
	slots, err := h.store.GetInventory(c.Context())
	if err != nil {
		return utils.NewInternalError(err)
	}
	if slots == nil {
		slots = []models.InventorySlot{}
	}
	return utils.SuccessResponse(c, slots)
}

// Replace overwrites the slot layout
// PUT /v1/inventory
// Body: [{"id": "A1", "productName": "Coca-Cola 500ML", "price": "2.50", "maxCapacity": 10, "currentStock": 8}]
func (h *InventoryHandler) Replace(c fiber.Ctx) error {
	var slots []models.InventorySlot
	if err := c.Bind().JSON(&slots); err != nil {
		return utils.NewBadRequestError("invalid request body", nil)
	}
	if problems := validateSlots(slots); len(problems) > 0 {
		return utils.NewBadRequestError("invalid inventory", problems)
	}

	ctx := c.Context()
	if err := h.store.SaveInventory(ctx, slots); err != nil {
		return utils.NewInternalError(err)
	}
	log := logger.FromContext(ctx)
	log.Info().Int("slots", len(slots)).Msg("inventory replaced")
	return utils.SuccessResponse(c, slots)
}

// Reset refills every slot to its capacity
// POST /v1/inventory/reset
func (h *InventoryHandler) Reset(c fiber.Ctx) error {
	ctx := c.Context()
	if err := h.store.ResetInventory(ctx); err != nil {
		return utils.NewInternalError(err)
	}

	slots, err := h.store.GetInventory(ctx)
	if err != nil {
		return utils.NewInternalError(err)
	}
	log := logger.FromContext(ctx)
	log.Info().Int("slots", len(slots)).Msg("inventory reset")
	return utils.SuccessResponse(c, slots)
}

func validateSlots(slots []models.InventorySlot) []string {
	var problems []string
	seen := make(map[string]bool, len(slots))
	for i, s := range slots {
		switch {
		case s.ID == "":
			problems = append(problems, fmt.Sprintf("slot %d: id is required", i))
		case seen[s.ID]:
			problems = append(problems, fmt.Sprintf("slot %s: duplicate id", s.ID))
		}
		seen[s.ID] = true

		if s.MaxCapacity < 0 || s.CurrentStock < 0 {
			problems = append(problems, fmt.Sprintf("slot %s: stock must not be negative", s.ID))
		} else if s.CurrentStock > s.MaxCapacity {
			problems = append(problems, fmt.Sprintf("slot %s: stock exceeds capacity", s.ID))
		}
	}
	return problems
}
