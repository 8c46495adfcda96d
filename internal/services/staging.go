package services

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ashmitsharp/vendlens-api/internal/models"
)

// ErrBatchNotFound is returned for unknown or expired staged batches
var ErrBatchNotFound = errors.New("staged batch not found")

// StagingArea holds parsed batches until the operator commits or discards them
type StagingArea struct {
	mu      sync.Mutex
	batches map[uuid.UUID]*models.ImportBatch
	ttl     time.Duration
	now     func() time.Time
}

// NewStagingArea creates a staging area; batches older than ttl are dropped
func NewStagingArea(ttl time.Duration) *StagingArea {
	return &StagingArea{
		batches: make(map[uuid.UUID]*models.ImportBatch),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stages a batch
func (s *StagingArea) Put(batch *models.ImportBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	s.batches[batch.ID] = batch
}

// Get returns a staged batch
func (s *StagingArea) Get(id uuid.UUID) (*models.ImportBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()

	batch, ok := s.batches[id]
	if !ok {
		return nil, ErrBatchNotFound
	}
	return batch, nil
}

// Discard removes a staged batch
func (s *StagingArea) Discard(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.batches[id]; !ok {
		return ErrBatchNotFound
	}
	delete(s.batches, id)
	return nil
}

// Len returns the number of live batches
func (s *StagingArea) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	return len(s.batches)
}

func (s *StagingArea) evictLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, b := range s.batches {
		if b.CreatedAt.Before(cutoff) {
			delete(s.batches, id)
		}
	}
}
