package store

import (
	"context"
	"sort"
	"sync"

	"galang/internal/withdrawal/models"
	id "galang/pkg/domain"
	"galang/pkg/platform/sentinel"
)

// InMemory keeps withdrawals in a map.
type InMemory struct {
	mu   sync.RWMutex
	byID map[id.WithdrawalID]*models.Withdrawal
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[id.WithdrawalID]*models.Withdrawal)}
}

func (s *InMemory) Create(_ context.Context, w *models.Withdrawal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[w.ID]; ok {
		return sentinel.ErrConflict
	}
	clone := *w
	s.byID[w.ID] = &clone
	return nil
}

func (s *InMemory) FindByID(_ context.Context, withdrawalID id.WithdrawalID) (*models.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.byID[withdrawalID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *w
	return &clone, nil
}

func (s *InMemory) Update(_ context.Context, w *models.Withdrawal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[w.ID]; !ok {
		return sentinel.ErrNotFound
	}
	clone := *w
	s.byID[w.ID] = &clone
	return nil
}

func (s *InMemory) ListByCampaign(_ context.Context, campaignID id.CampaignID) ([]*models.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Withdrawal
	for _, w := range s.byID {
		if w.CampaignID == campaignID {
			clone := *w
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemory) SumReserved(_ context.Context, campaignID id.CampaignID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum int64
	for _, w := range s.byID {
		if w.CampaignID == campaignID && w.Status != models.StatusFailed {
			sum += w.Amount
		}
	}
	return sum, nil
}

func (s *InMemory) SumCompleted(_ context.Context, campaignID id.CampaignID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum int64
	for _, w := range s.byID {
		if w.CampaignID == campaignID && w.Status == models.StatusCompleted {
			sum += w.Amount
		}
	}
	return sum, nil
}
