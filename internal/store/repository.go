package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ashmitsharp/vendlens-api/internal/models"
)

// Keys under which the dashboard state is persisted
const (
	KeyTransactions = "vmms_transactions"
	KeyInventory    = "vmms_inventory"
	KeyStockCounts  = "vmms_stock_counts"
	KeyProductCosts = "vmms_product_costs"
)

// AllKeys lists every key the repository owns
var AllKeys = []string{KeyTransactions, KeyInventory, KeyStockCounts, KeyProductCosts}

// TransactionStore persists the sales history, newest first
type TransactionStore interface {
	GetTransactions(ctx context.Context) ([]models.Transaction, error)
	SaveBulkTransactions(ctx context.Context, txs []models.Transaction) error
	ClearSales(ctx context.Context) error
}

// InventoryStore persists slots and their stock counts
type InventoryStore interface {
	GetInventory(ctx context.Context) ([]models.InventorySlot, error)
	SaveInventory(ctx context.Context, slots []models.InventorySlot) error
	SaveBulkStock(ctx context.Context, stock map[string]int) error
	ResetInventory(ctx context.Context) error
}

// CostStore persists the master cost list
type CostStore interface {
	GetProductCosts(ctx context.Context) ([]models.ProductCost, error)
	SaveProductCosts(ctx context.Context, costs []models.ProductCost) error
}

// Repository implements every store over a KV backend
type Repository struct {
	kv KV
	// mu serializes read-modify-write sequences within this process
	mu sync.Mutex
}

// NewRepository creates a repository over kv
func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// GetTransactions returns the full history, newest first
func (r *Repository) GetTransactions(ctx context.Context) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := r.load(ctx, KeyTransactions, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// SaveBulkTransactions adds txs to the history
func (r *Repository) SaveBulkTransactions(ctx context.Context, txs []models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	merged, err := r.mergedHistory(ctx, txs)
	if err != nil {
		return err
	}
	return r.save(ctx, KeyTransactions, merged)
}

// ClearSales empties the sales history
func (r *Repository) ClearSales(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, KeyTransactions, []models.Transaction{})
}

// GetInventory returns the slots with their current stock applied
func (r *Repository) GetInventory(ctx context.Context) ([]models.InventorySlot, error) {
	var slots []models.InventorySlot
	if err := r.load(ctx, KeyInventory, &slots); err != nil {
		return nil, err
	}
	stock, err := r.stockCounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		if n, ok := stock[slots[i].ID]; ok {
			slots[i].CurrentStock = n
		}
	}
	return slots, nil
}

// SaveInventory replaces the slot list and resets stock counts to the given values
func (r *Repository) SaveInventory(ctx context.Context, slots []models.InventorySlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stock := make(map[string]int, len(slots))
	for _, s := range slots {
		stock[s.ID] = s.CurrentStock
	}
	return r.saveMany(ctx, map[string]any{
		KeyInventory:   slots,
		KeyStockCounts: stock,
	})
}

// SaveBulkStock overwrites the stock count of each listed slot
func (r *Repository) SaveBulkStock(ctx context.Context, updates map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stock, err := r.stockCounts(ctx)
	if err != nil {
		return err
	}
	for id, n := range updates {
		stock[id] = n
	}
	return r.save(ctx, KeyStockCounts, stock)
}

// ResetInventory refills every slot to its maximum capacity
func (r *Repository) ResetInventory(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var slots []models.InventorySlot
	if err := r.load(ctx, KeyInventory, &slots); err != nil {
		return err
	}
	stock := make(map[string]int, len(slots))
	for _, s := range slots {
		stock[s.ID] = s.MaxCapacity
	}
	return r.save(ctx, KeyStockCounts, stock)
}

// GetProductCosts returns the master cost list
func (r *Repository) GetProductCosts(ctx context.Context) ([]models.ProductCost, error) {
	var costs []models.ProductCost
	if err := r.load(ctx, KeyProductCosts, &costs); err != nil {
		return nil, err
	}
	return costs, nil
}

// SaveProductCosts replaces the master cost list
func (r *Repository) SaveProductCosts(ctx context.Context, costs []models.ProductCost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if costs == nil {
		costs = []models.ProductCost{}
	}
	return r.save(ctx, KeyProductCosts, costs)
}

// CommitImport adds txs to the history and applies stock updates in a single write
func (r *Repository) CommitImport(ctx context.Context, txs []models.Transaction, updates map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	merged, err := r.mergedHistory(ctx, txs)
	if err != nil {
		return err
	}
	stock, err := r.stockCounts(ctx)
	if err != nil {
		return err
	}
	for id, n := range updates {
		stock[id] = n
	}

	return r.saveMany(ctx, map[string]any{
		KeyTransactions: merged,
		KeyStockCounts:  stock,
	})
}

// mergedHistory prepends txs and keeps the history sorted by timestamp, newest first
func (r *Repository) mergedHistory(ctx context.Context, txs []models.Transaction) ([]models.Transaction, error) {
	var current []models.Transaction
	if err := r.load(ctx, KeyTransactions, &current); err != nil {
		return nil, err
	}

	merged := make([]models.Transaction, 0, len(txs)+len(current))
	merged = append(merged, txs...)
	merged = append(merged, current...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp > merged[j].Timestamp
	})
	return merged, nil
}

func (r *Repository) stockCounts(ctx context.Context) (map[string]int, error) {
	stock := make(map[string]int)
	if err := r.load(ctx, KeyStockCounts, &stock); err != nil {
		return nil, err
	}
	if stock == nil {
		stock = make(map[string]int)
	}
	return stock, nil
}

// load decodes key into dst; a missing key leaves dst untouched
func (r *Repository) load(ctx context.Context, key string, dst any) error {
	raw, err := r.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (r *Repository) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := r.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (r *Repository) saveMany(ctx context.Context, values map[string]any) error {
	encoded := make(map[string]json.RawMessage, len(values))
	for key, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		encoded[key] = raw
	}
	if err := r.kv.SetMany(ctx, encoded); err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}
	return nil
}
