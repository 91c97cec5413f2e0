package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"galang/internal/audit"
	auditmemory "galang/internal/audit/store/memory"
	"galang/internal/campaign/models"
	"galang/internal/campaign/store"
	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
	"galang/pkg/requestcontext"
)

type stubCapability struct {
	approved map[id.UserID]bool
}

func (s *stubCapability) HasCreatorCapability(_ context.Context, userID id.UserID) (bool, error) {
	return s.approved[userID], nil
}

type stubReserved struct {
	sums map[id.CampaignID]int64
}

func (s *stubReserved) SumReserved(_ context.Context, campaignID id.CampaignID) (int64, error) {
	return s.sums[campaignID], nil
}

type stubConfirmed struct {
	counts map[id.CampaignID]int
}

func (s *stubConfirmed) CountConfirmed(_ context.Context, campaignID id.CampaignID) (int, error) {
	return s.counts[campaignID], nil
}

type CampaignServiceSuite struct {
	suite.Suite
	ctx        context.Context
	now        time.Time
	store      *store.InMemory
	capability *stubCapability
	reserved   *stubReserved
	confirmed  *stubConfirmed
	auditStore *auditmemory.Store
	service    *Service
	creator    id.UserID
}

func TestCampaignServiceSuite(t *testing.T) {
	suite.Run(t, new(CampaignServiceSuite))
}

func (s *CampaignServiceSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.creator = id.NewUserID()

	s.store = store.NewInMemory()
	s.capability = &stubCapability{approved: map[id.UserID]bool{s.creator: true}}
	s.reserved = &stubReserved{sums: map[id.CampaignID]int64{}}
	s.confirmed = &stubConfirmed{counts: map[id.CampaignID]int{}}
	s.auditStore = auditmemory.New()

	s.service = New(s.store, s.capability, NewShardedTx(),
		WithReservationSummer(s.reserved),
		WithConfirmedCounter(s.confirmed),
		WithAuditPublisher(audit.NewPublisher(s.auditStore, nil)),
	)
}

func (s *CampaignServiceSuite) createRequest() models.CreateRequest {
	return models.CreateRequest{
		Title:        "School rebuild",
		Description:  "Rebuild the village school",
		Category:     "education",
		TargetAmount: 10_000_000,
		StartDate:    s.now,
		EndDate:      s.now.AddDate(0, 1, 0),
		Status:       models.StatusActive,
	}
}

func (s *CampaignServiceSuite) TestCreate() {
	s.Run("verified creator succeeds", func() {
		c, err := s.service.Create(s.ctx, s.creator, s.createRequest())
		s.NoError(err)
		s.Equal(models.StatusActive, c.Status)
		s.Equal(int64(0), c.CollectedAmount)
	})

	s.Run("unverified creator is forbidden", func() {
		_, err := s.service.Create(s.ctx, id.NewUserID(), s.createRequest())
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("admin bypasses capability check", func() {
		ctx := requestcontext.WithRole(s.ctx, id.RoleAdmin)
		_, err := s.service.Create(ctx, id.NewUserID(), s.createRequest())
		s.NoError(err)
	})

	s.Run("create emits an audit event", func() {
		before := len(s.auditStore.Events())
		_, err := s.service.Create(s.ctx, s.creator, s.createRequest())
		s.Require().NoError(err)
		s.Len(s.auditStore.Events(), before+1)
	})
}

func (s *CampaignServiceSuite) TestUpdateStatus() {
	c, err := s.service.Create(s.ctx, s.creator, s.createRequest())
	s.Require().NoError(err)

	s.Run("active to completed", func() {
		updated, err := s.service.UpdateStatus(s.ctx, c.ID, models.StatusCompleted)
		s.NoError(err)
		s.Equal(models.StatusCompleted, updated.Status)
	})

	s.Run("completed to active is invalid", func() {
		_, err := s.service.UpdateStatus(s.ctx, c.ID, models.StatusActive)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("unknown campaign is not found", func() {
		_, err := s.service.UpdateStatus(s.ctx, id.NewCampaignID(), models.StatusSuspended)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *CampaignServiceSuite) TestApplyConfirmedDonation() {
	c, err := s.service.Create(s.ctx, s.creator, s.createRequest())
	s.Require().NoError(err)

	s.Run("increments collected amount", func() {
		updated, err := s.service.ApplyConfirmedDonation(s.ctx, c.ID, 4_000_000)
		s.NoError(err)
		s.Equal(int64(4_000_000), updated.CollectedAmount)

		updated, err = s.service.ApplyConfirmedDonation(s.ctx, c.ID, 1_000_000)
		s.NoError(err)
		s.Equal(int64(5_000_000), updated.CollectedAmount)
	})

	s.Run("non-positive amount is an invariant violation", func() {
		_, err := s.service.ApplyConfirmedDonation(s.ctx, c.ID, 0)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *CampaignServiceSuite) TestAvailableBalance() {
	c, err := s.service.Create(s.ctx, s.creator, s.createRequest())
	s.Require().NoError(err)
	_, err = s.service.ApplyConfirmedDonation(s.ctx, c.ID, 5_000_000)
	s.Require().NoError(err)

	s.Run("collected minus reserved", func() {
		s.reserved.sums[c.ID] = 2_000_000
		available, err := s.service.AvailableBalance(s.ctx, c.ID)
		s.NoError(err)
		s.Equal(int64(3_000_000), available)
	})

	s.Run("negative balance surfaces as invariant violation", func() {
		s.reserved.sums[c.ID] = 6_000_000
		_, err := s.service.AvailableBalance(s.ctx, c.ID)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *CampaignServiceSuite) TestDelete() {
	draftReq := s.createRequest()
	draftReq.Status = models.StatusDraft
	c, err := s.service.Create(s.ctx, s.creator, draftReq)
	s.Require().NoError(err)

	s.Run("published campaign cannot be deleted", func() {
		active, err := s.service.Create(s.ctx, s.creator, s.createRequest())
		s.Require().NoError(err)
		err = s.service.Delete(s.ctx, active.ID)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("draft with confirmed donations cannot be deleted", func() {
		s.confirmed.counts[c.ID] = 2
		err := s.service.Delete(s.ctx, c.ID)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("empty draft deletes", func() {
		s.confirmed.counts[c.ID] = 0
		s.NoError(s.service.Delete(s.ctx, c.ID))
		_, err := s.service.Get(s.ctx, c.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *CampaignServiceSuite) TestSetEmergency() {
	c, err := s.service.Create(s.ctx, s.creator, s.createRequest())
	s.Require().NoError(err)
	s.False(c.IsEmergency)

	updated, err := s.service.SetEmergency(s.ctx, c.ID, true)
	s.NoError(err)
	s.True(updated.IsEmergency)
	s.Equal(models.StatusActive, updated.Status, "emergency flag is orthogonal to status")
}

func (s *CampaignServiceSuite) TestSetEmergencyDoesNotClobberConfirmations() {
	c, err := s.service.Create(s.ctx, s.creator, s.createRequest())
	s.Require().NoError(err)

	const confirmations = 200
	var wg sync.WaitGroup
	wg.Add(confirmations * 2)
	for i := 0; i < confirmations; i++ {
		i := i
		go func() {
			defer wg.Done()
			_, err := s.service.ApplyConfirmedDonation(s.ctx, c.ID, 100)
			s.NoError(err)
		}()
		go func() {
			defer wg.Done()
			_, err := s.service.SetEmergency(s.ctx, c.ID, i%2 == 0)
			s.NoError(err)
		}()
	}
	wg.Wait()

	got, err := s.service.Get(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(int64(confirmations*100), got.CollectedAmount)
}
