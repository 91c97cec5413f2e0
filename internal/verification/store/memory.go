package store

import (
	"context"
	"sort"
	"sync"

	"galang/internal/verification/models"
	id "galang/pkg/domain"
	"galang/pkg/platform/sentinel"
)

// InMemory keeps verification records in process memory. Used by tests and
// dev mode; the postgres store is the production implementation.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.VerificationID]*models.Verification
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.VerificationID]*models.Verification)}
}

func (s *InMemory) Create(_ context.Context, v *models.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[v.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *v
	s.records[v.ID] = &clone
	return nil
}

func (s *InMemory) FindByID(_ context.Context, verificationID id.VerificationID) (*models.Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[verificationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *v
	return &clone, nil
}

func (s *InMemory) FindNewestByUser(_ context.Context, userID id.UserID) (*models.Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	newest := s.newestByUserLocked(userID)
	if newest == nil {
		return nil, sentinel.ErrNotFound
	}
	clone := *newest
	return &clone, nil
}

func (s *InMemory) HasApproved(_ context.Context, userID id.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.records {
		if v.UserID == userID && v.Status == models.StatusApproved {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemory) Update(_ context.Context, v *models.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[v.ID]; !ok {
		return sentinel.ErrNotFound
	}
	clone := *v
	s.records[v.ID] = &clone
	return nil
}

func (s *InMemory) ListByStatus(_ context.Context, status models.Status, page, limit int) ([]*models.Verification, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Verification
	for _, v := range s.records {
		if v.Status == status {
			matched = append(matched, v)
		}
	}
	// Review queue runs oldest first.
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}

	out := make([]*models.Verification, 0, end-start)
	for _, v := range matched[start:end] {
		clone := *v
		out = append(out, &clone)
	}
	return out, total, nil
}

func (s *InMemory) IncrementWarning(_ context.Context, userID id.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	newest := s.newestByUserLocked(userID)
	if newest == nil {
		return 0, sentinel.ErrNotFound
	}
	newest.WarningCount++
	return newest.WarningCount, nil
}

func (s *InMemory) newestByUserLocked(userID id.UserID) *models.Verification {
	var newest *models.Verification
	for _, v := range s.records {
		if v.UserID != userID {
			continue
		}
		if newest == nil || v.CreatedAt.After(newest.CreatedAt) {
			newest = v
		}
	}
	return newest
}
