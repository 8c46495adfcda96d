package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ashmitsharp/vendlens-api/internal/logger"
	"github.com/ashmitsharp/vendlens-api/internal/models"
)

// ErrEmptyBatch is returned when there is nothing to commit
var ErrEmptyBatch = errors.New("no transactions to commit")

// CommitStore is the persistence boundary of the commit engine
type CommitStore interface {
	GetTransactions(ctx context.Context) ([]models.Transaction, error)
	GetInventory(ctx context.Context) ([]models.InventorySlot, error)
	CommitImport(ctx context.Context, txs []models.Transaction, stock map[string]int) error
}

// CommitEngine filters duplicates out of a staged batch, attributes sales to
// inventory slots and persists the result
type CommitEngine struct {
	store CommitStore
	// mu makes the read-check-write sequence exclusive within this process
	mu sync.Mutex
}

// NewCommitEngine creates a commit engine
func NewCommitEngine(store CommitStore) *CommitEngine {
	return &CommitEngine{store: store}
}

// Commit persists every transaction whose refNo is not yet known, in batch order.
// The first occurrence of a refNo inside the batch wins. The input slice is not
// modified, so a failed commit can be retried with the same batch.
func (e *CommitEngine) Commit(ctx context.Context, txs []models.Transaction) (models.CommitResult, error) {
	if len(txs) == 0 {
		return models.CommitResult{}, ErrEmptyBatch
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	log := logger.FromContext(ctx)

	// 1. Load current state
	history, err := e.store.GetTransactions(ctx)
	if err != nil {
		return models.CommitResult{}, fmt.Errorf("failed to load transactions: %w", err)
	}
	inventory, err := e.store.GetInventory(ctx)
	if err != nil {
		return models.CommitResult{}, fmt.Errorf("failed to load inventory: %w", err)
	}

	existingRefs := make(map[string]struct{}, len(history)+len(txs))
	for _, t := range history {
		existingRefs[t.RefNo] = struct{}{}
	}

	// 2. Filter and attribute
	result := models.CommitResult{StockUpdates: make(map[string]int)}
	for _, tx := range txs {
		if _, dup := existingRefs[tx.RefNo]; dup {
			result.Skipped++
			continue
		}

		if slot, ok := matchSlot(inventory, tx.ProductName); ok {
			current, seen := result.StockUpdates[slot.ID]
			if !seen {
				current = slot.CurrentStock
			}
			result.StockUpdates[slot.ID] = max(0, current-1)
			tx.SlotID = slot.ID
		}

		result.Transactions = append(result.Transactions, tx)
		existingRefs[tx.RefNo] = struct{}{}
	}
	result.Accepted = len(result.Transactions)

	// 3. Persist
	if result.Accepted == 0 {
		log.Info().Int("skipped", result.Skipped).Msg("no new transactions to commit")
		return result, nil
	}
	if err := e.store.CommitImport(ctx, result.Transactions, result.StockUpdates); err != nil {
		return result, fmt.Errorf("failed to persist import: %w", err)
	}

	log.Info().
		Int("accepted", result.Accepted).
		Int("skipped", result.Skipped).
		Int("slots_updated", len(result.StockUpdates)).
		Msg("committed import")

	return result, nil
}

// matchSlot finds the first slot whose product name equals or is contained in name,
// ignoring case
func matchSlot(slots []models.InventorySlot, name string) (models.InventorySlot, bool) {
	txName := strings.ToLower(strings.TrimSpace(name))
	for _, s := range slots {
		slotName := strings.ToLower(strings.TrimSpace(s.ProductName))
		if slotName == "" {
			continue
		}
		if slotName == txName || strings.Contains(txName, slotName) {
			return s, true
		}
	}
	return models.InventorySlot{}, false
}
