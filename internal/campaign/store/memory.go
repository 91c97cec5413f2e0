package store

import (
	"context"
	"sort"
	"sync"

	"galang/internal/campaign/models"
	id "galang/pkg/domain"
	"galang/pkg/platform/sentinel"
)

// InMemory keeps campaigns in process memory for dev mode and tests.
type InMemory struct {
	mu        sync.RWMutex
	campaigns map[id.CampaignID]*models.Campaign
}

func NewInMemory() *InMemory {
	return &InMemory{campaigns: make(map[id.CampaignID]*models.Campaign)}
}

func (s *InMemory) Create(_ context.Context, c *models.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.campaigns[c.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *c
	s.campaigns[c.ID] = &clone
	return nil
}

func (s *InMemory) FindByID(_ context.Context, campaignID id.CampaignID) (*models.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.campaigns[campaignID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

// Update writes the campaign's mutable fields. CollectedAmount is owned by
// AddToCollected and keeps the stored value, matching the SQL store.
func (s *InMemory) Update(_ context.Context, c *models.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.campaigns[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	clone := *c
	clone.CollectedAmount = current.CollectedAmount
	s.campaigns[c.ID] = &clone
	return nil
}

func (s *InMemory) AddToCollected(_ context.Context, campaignID id.CampaignID, amount int64) (*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[campaignID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c.CollectedAmount += amount
	clone := *c
	return &clone, nil
}

func (s *InMemory) List(_ context.Context, filter models.ListFilter, page, limit int) ([]*models.Campaign, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Campaign
	for _, c := range s.campaigns {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.Emergency != nil && c.IsEmergency != *filter.Emergency {
			continue
		}
		if filter.Category != "" && c.Category != filter.Category {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
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

	out := make([]*models.Campaign, 0, end-start)
	for _, c := range matched[start:end] {
		clone := *c
		out = append(out, &clone)
	}
	return out, total, nil
}

func (s *InMemory) Delete(_ context.Context, campaignID id.CampaignID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[campaignID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.campaigns, campaignID)
	return nil
}
