//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"galang/internal/campaign/models"
	"galang/internal/campaign/store"
	id "galang/pkg/domain"
	"galang/pkg/platform/sentinel"
	"galang/pkg/testutil/containers"
)

type CampaignPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestCampaignPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CampaignPostgresSuite))
}

func (s *CampaignPostgresSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *CampaignPostgresSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background(), "campaigns"))
}

func newCampaign(status models.Status) *models.Campaign {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Campaign{
		ID:           id.NewCampaignID(),
		Title:        "Village library",
		Description:  "Books and shelving",
		Category:     "education",
		CreatorID:    id.NewUserID(),
		TargetAmount: 5_000_000,
		Status:       status,
		StartDate:    now,
		EndDate:      now.AddDate(0, 1, 0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *CampaignPostgresSuite) TestCreateAndFind() {
	ctx := context.Background()
	c := newCampaign(models.StatusActive)
	s.Require().NoError(s.store.Create(ctx, c))

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.Title, found.Title)
	s.Equal(c.Status, found.Status)
	s.Equal(int64(0), found.CollectedAmount)

	_, err = s.store.FindByID(ctx, id.NewCampaignID())
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *CampaignPostgresSuite) TestAddToCollectedIsAtomic() {
	ctx := context.Background()
	c := newCampaign(models.StatusActive)
	s.Require().NoError(s.store.Create(ctx, c))

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for n := 0; n < workers; n++ {
		go func() {
			defer wg.Done()
			_, err := s.store.AddToCollected(ctx, c.ID, 100_000)
			s.NoError(err)
		}()
	}
	wg.Wait()

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(int64(workers*100_000), found.CollectedAmount)
}

func (s *CampaignPostgresSuite) TestListFilters() {
	ctx := context.Background()

	active := newCampaign(models.StatusActive)
	s.Require().NoError(s.store.Create(ctx, active))

	emergency := newCampaign(models.StatusActive)
	emergency.IsEmergency = true
	emergency.Category = "disaster"
	s.Require().NoError(s.store.Create(ctx, emergency))

	draft := newCampaign(models.StatusDraft)
	s.Require().NoError(s.store.Create(ctx, draft))

	statusActive := models.StatusActive
	items, total, err := s.store.List(ctx, models.ListFilter{Status: &statusActive}, 1, 20)
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Len(items, 2)

	isEmergency := true
	items, total, err = s.store.List(ctx, models.ListFilter{Emergency: &isEmergency}, 1, 20)
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Require().Len(items, 1)
	s.Equal(emergency.ID, items[0].ID)

	_, total, err = s.store.List(ctx, models.ListFilter{Category: "disaster"}, 1, 20)
	s.Require().NoError(err)
	s.Equal(1, total)
}

func (s *CampaignPostgresSuite) TestDelete() {
	ctx := context.Background()
	c := newCampaign(models.StatusDraft)
	s.Require().NoError(s.store.Create(ctx, c))

	s.Require().NoError(s.store.Delete(ctx, c.ID))

	_, err := s.store.FindByID(ctx, c.ID)
	s.True(errors.Is(err, sentinel.ErrNotFound))

	s.True(errors.Is(s.store.Delete(ctx, c.ID), sentinel.ErrNotFound))
}
