package store

import (
	"context"
	"sort"
	"sync"

	"galang/internal/report/models"
	id "galang/pkg/domain"
	"galang/pkg/platform/sentinel"
)

// InMemory keeps reports in a map.
type InMemory struct {
	mu   sync.RWMutex
	byID map[id.ReportID]*models.Report
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[id.ReportID]*models.Report)}
}

func (s *InMemory) Create(_ context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[r.ID]; ok {
		return sentinel.ErrConflict
	}
	clone := *r
	s.byID[r.ID] = &clone
	return nil
}

func (s *InMemory) FindByID(_ context.Context, reportID id.ReportID) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[reportID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *r
	return &clone, nil
}

func (s *InMemory) Update(_ context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[r.ID]; !ok {
		return sentinel.ErrNotFound
	}
	clone := *r
	s.byID[r.ID] = &clone
	return nil
}

func (s *InMemory) ListByStatus(_ context.Context, status models.Status, page, limit int) ([]*models.Report, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Report
	for _, r := range s.byID {
		if r.Status == status {
			clone := *r
			matched = append(matched, &clone)
		}
	}
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
	return matched[start:end], total, nil
}
