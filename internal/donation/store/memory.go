package store

import (
	"context"
	"sort"
	"sync"

	"galang/internal/donation/models"
	id "galang/pkg/domain"
	"galang/pkg/platform/sentinel"
)

// InMemory keeps donations in a map, indexed by external reference.
type InMemory struct {
	mu    sync.RWMutex
	byID  map[id.DonationID]*models.Donation
	byRef map[string]id.DonationID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:  make(map[id.DonationID]*models.Donation),
		byRef: make(map[string]id.DonationID),
	}
}

func (s *InMemory) Create(_ context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[d.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.byRef[d.ExternalRef]; ok {
		return sentinel.ErrConflict
	}
	clone := *d
	s.byID[d.ID] = &clone
	s.byRef[d.ExternalRef] = d.ID
	return nil
}

func (s *InMemory) FindByExternalRef(_ context.Context, externalRef string) (*models.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	donationID, ok := s.byRef[externalRef]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.byID[donationID]
	return &clone, nil
}

func (s *InMemory) Update(_ context.Context, d *models.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[d.ID]; !ok {
		return sentinel.ErrNotFound
	}
	clone := *d
	s.byID[d.ID] = &clone
	return nil
}

func (s *InMemory) ListConfirmedByCampaign(_ context.Context, campaignID id.CampaignID, page, limit int) ([]*models.Donation, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Donation
	for _, d := range s.byID {
		if d.CampaignID == campaignID && d.Status == models.StatusConfirmed {
			clone := *d
			matched = append(matched, &clone)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ConfirmedAt.After(*matched[j].ConfirmedAt)
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
	return matched[start:end], total, nil
}

func (s *InMemory) CountConfirmed(_ context.Context, campaignID id.CampaignID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, d := range s.byID {
		if d.CampaignID == campaignID && d.Status == models.StatusConfirmed {
			count++
		}
	}
	return count, nil
}
