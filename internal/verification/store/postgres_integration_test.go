//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"galang/internal/verification/models"
	"galang/internal/verification/store"
	id "galang/pkg/domain"
	"galang/pkg/platform/sentinel"
	"galang/pkg/testutil/containers"
)

type VerificationPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestVerificationPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(VerificationPostgresSuite))
}

func (s *VerificationPostgresSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *VerificationPostgresSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background(), "verifications"))
}

func newVerification(userID id.UserID, createdAt time.Time) *models.Verification {
	return models.New(id.NewVerificationID(), userID, models.SubmitRequest{
		KTPName:           "Siti Rahma",
		KTPNumber:         "3201234567890001",
		KTPDocumentURL:    "https://docs.example.com/ktp.jpg",
		BankAccountNumber: "1234567890",
		BankAccountName:   "Siti Rahma",
		BankDocumentURL:   "https://docs.example.com/bank.jpg",
		TermsDocumentURL:  "https://docs.example.com/terms.pdf",
	}, nil, createdAt)
}

func (s *VerificationPostgresSuite) TestFindNewestByUser() {
	ctx := context.Background()
	userID := id.NewUserID()
	base := time.Now().UTC().Truncate(time.Microsecond)

	older := newVerification(userID, base.Add(-time.Hour))
	older.Status = models.StatusRejected
	older.RejectionReason = "bank document unreadable"
	s.Require().NoError(s.store.Create(ctx, older))

	newer := newVerification(userID, base)
	prevID := older.ID
	newer.PreviousID = &prevID
	s.Require().NoError(s.store.Create(ctx, newer))

	found, err := s.store.FindNewestByUser(ctx, userID)
	s.Require().NoError(err)
	s.Equal(newer.ID, found.ID)
	s.Require().NotNil(found.PreviousID)
	s.Equal(older.ID, *found.PreviousID)

	_, err = s.store.FindNewestByUser(ctx, id.NewUserID())
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *VerificationPostgresSuite) TestHasApproved() {
	ctx := context.Background()
	userID := id.NewUserID()
	base := time.Now().UTC().Truncate(time.Microsecond)

	v := newVerification(userID, base)
	s.Require().NoError(s.store.Create(ctx, v))

	approved, err := s.store.HasApproved(ctx, userID)
	s.Require().NoError(err)
	s.False(approved)

	now := base.Add(time.Minute)
	v.Status = models.StatusApproved
	v.ReviewedAt = &now
	v.ReviewedBy = id.NewUserID()
	s.Require().NoError(s.store.Update(ctx, v))

	approved, err = s.store.HasApproved(ctx, userID)
	s.Require().NoError(err)
	s.True(approved)
}

func (s *VerificationPostgresSuite) TestIncrementWarningTargetsNewestRecord() {
	ctx := context.Background()
	userID := id.NewUserID()
	base := time.Now().UTC().Truncate(time.Microsecond)

	older := newVerification(userID, base.Add(-time.Hour))
	older.Status = models.StatusRejected
	older.RejectionReason = "photo does not match"
	s.Require().NoError(s.store.Create(ctx, older))

	newer := newVerification(userID, base)
	s.Require().NoError(s.store.Create(ctx, newer))

	count, err := s.store.IncrementWarning(ctx, userID)
	s.Require().NoError(err)
	s.Equal(1, count)

	count, err = s.store.IncrementWarning(ctx, userID)
	s.Require().NoError(err)
	s.Equal(2, count)

	found, err := s.store.FindByID(ctx, older.ID)
	s.Require().NoError(err)
	s.Equal(0, found.WarningCount, "warnings attach to the newest record")

	_, err = s.store.IncrementWarning(ctx, id.NewUserID())
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *VerificationPostgresSuite) TestListByStatusOldestFirst() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	first := newVerification(id.NewUserID(), base.Add(-2*time.Hour))
	second := newVerification(id.NewUserID(), base.Add(-time.Hour))
	s.Require().NoError(s.store.Create(ctx, first))
	s.Require().NoError(s.store.Create(ctx, second))

	items, total, err := s.store.ListByStatus(ctx, models.StatusPending, 1, 1)
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Require().Len(items, 1)
	s.Equal(first.ID, items[0].ID)
}
