package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashmitsharp/vendlens-api/internal/models"
	"github.com/ashmitsharp/vendlens-api/internal/services"
	"github.com/ashmitsharp/vendlens-api/internal/store"
)

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate() { c.calls++ }

// MockCostStore is a mock implementation of store.CostStore for testing
type MockCostStore struct {
	GetProductCostsFunc  func(ctx context.Context) ([]models.ProductCost, error)
	SaveProductCostsFunc func(ctx context.Context, costs []models.ProductCost) error
}

func (m *MockCostStore) GetProductCosts(ctx context.Context) ([]models.ProductCost, error) {
	return m.GetProductCostsFunc(ctx)
}

func (m *MockCostStore) SaveProductCosts(ctx context.Context, costs []models.ProductCost) error {
	return m.SaveProductCostsFunc(ctx, costs)
}

func newCostApp(costs store.CostStore, inv CostIndexInvalidator) *fiber.App {
	handler := NewCostHandler(costs, inv, services.NewFileValidator(1<<20))
	app := newTestApp()
	app.Post("/costs/upload", handler.Upload)
	app.Get("/costs", handler.List)
	return app
}

func TestCostHandler_UploadAndList(t *testing.T) {
	repo := store.NewRepository(store.NewMemoryKV())
	inv := &countingInvalidator{}
	app := newCostApp(repo, inv)

	req := multipartRequest(t, "/costs/upload", []upload{{
		field: "file", name: "master_cost.csv", contentType: "text/csv", content: fixture(t, "master_cost.csv"),
	}}, nil)
	status, body := do(t, app, req)
	require.Equal(t, fiber.StatusOK, status, body.Message)
	assert.Equal(t, 1, inv.calls)

	var uploaded struct {
		Products int `json:"products"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &uploaded))
	assert.Equal(t, 3, uploaded.Products)

	status, body = do(t, app, httptest.NewRequest("GET", "/costs", nil))
	require.Equal(t, fiber.StatusOK, status)

	var costs []models.ProductCost
	require.NoError(t, json.Unmarshal(body.Data, &costs))
	require.Len(t, costs, 3)
	assert.Equal(t, "Coca-Cola 500ML", costs[0].Name)
	assert.Equal(t, "1.2", costs[0].CostPrice.String())
}

func TestCostHandler_UploadErrors(t *testing.T) {
	repo := store.NewRepository(store.NewMemoryKV())

	tests := []struct {
		name        string
		files       []upload
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "no file",
			wantStatus:  fiber.StatusBadRequest,
			wantMessage: "file is required",
		},
		{
			name:        "wrong extension",
			files:       []upload{{field: "file", name: "costs.pdf", contentType: "application/pdf", content: []byte("%PDF")}},
			wantStatus:  fiber.StatusBadRequest,
			wantMessage: "invalid file",
		},
		{
			name:        "no products",
			files:       []upload{{field: "file", name: "costs.csv", contentType: "text/csv", content: []byte("No,Product Name,Category,Cost Price\n1,,Drinks,\n")}},
			wantStatus:  fiber.StatusBadRequest,
			wantMessage: "failed to read master cost list",
		},
		{
			name:        "legacy workbook",
			files:       []upload{{field: "file", name: "costs.xls", contentType: "application/vnd.ms-excel", content: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1}}},
			wantStatus:  fiber.StatusBadRequest,
			wantMessage: "unsupported spreadsheet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &countingInvalidator{}
			status, body := do(t, newCostApp(repo, inv), multipartRequest(t, "/costs/upload", tt.files, map[string]string{"note": "x"}))
			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, body.Message, tt.wantMessage)
			assert.Zero(t, inv.calls)
		})
	}
}

func TestCostHandler_StoreErrors(t *testing.T) {
	failing := &MockCostStore{
		GetProductCostsFunc: func(context.Context) ([]models.ProductCost, error) {
			return nil, errors.New("connection reset")
		},
		SaveProductCostsFunc: func(context.Context, []models.ProductCost) error {
			return errors.New("connection reset")
		},
	}
	inv := &countingInvalidator{}
	app := newCostApp(failing, inv)

	status, _ := do(t, app, httptest.NewRequest("GET", "/costs", nil))
	assert.Equal(t, fiber.StatusInternalServerError, status)

	req := multipartRequest(t, "/costs/upload", []upload{{
		field: "file", name: "master_cost.csv", contentType: "text/csv", content: fixture(t, "master_cost.csv"),
	}}, nil)
	status, _ = do(t, app, req)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Zero(t, inv.calls)
}
