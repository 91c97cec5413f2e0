package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"galang/internal/verification/models"
	"galang/internal/verification/store"
	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
	"galang/pkg/requestcontext"
)

type VerificationServiceSuite struct {
	suite.Suite
	ctx      context.Context
	store    *store.InMemory
	service  *Service
	user     id.UserID
	operator id.UserID
}

func TestVerificationServiceSuite(t *testing.T) {
	suite.Run(t, new(VerificationServiceSuite))
}

func (s *VerificationServiceSuite) SetupTest() {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), now)
	s.store = store.NewInMemory()
	s.service = New(s.store)
	s.user = id.NewUserID()
	s.operator = id.NewUserID()
}

func (s *VerificationServiceSuite) submitRequest() models.SubmitRequest {
	return models.SubmitRequest{
		KTPName:           "Siti Rahma",
		KTPNumber:         "3201234567890001",
		KTPDocumentURL:    "https://docs.example.com/ktp.jpg",
		BankAccountNumber: "1234567890",
		BankAccountName:   "Siti Rahma",
		BankDocumentURL:   "https://docs.example.com/bank.jpg",
		TermsDocumentURL:  "https://docs.example.com/terms.pdf",
	}
}

func (s *VerificationServiceSuite) TestSubmit() {
	s.Run("valid submission is pending", func() {
		v, err := s.service.Submit(s.ctx, s.user, s.submitRequest())
		s.Require().NoError(err)
		s.Equal(models.StatusPending, v.Status)
		s.Nil(v.PreviousID)
	})

	s.Run("second submission while pending fails", func() {
		_, err := s.service.Submit(s.ctx, s.user, s.submitRequest())
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyPending))
	})

	s.Run("ktp number must be sixteen digits", func() {
		req := s.submitRequest()
		req.KTPNumber = "12345"
		_, err := s.service.Submit(s.ctx, id.NewUserID(), req)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		req.KTPNumber = "32012345678900ab"
		_, err = s.service.Submit(s.ctx, id.NewUserID(), req)
		s.Error(err)
	})

	s.Run("missing document fails", func() {
		req := s.submitRequest()
		req.TermsDocumentURL = ""
		_, err := s.service.Submit(s.ctx, id.NewUserID(), req)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *VerificationServiceSuite) TestReview() {
	v, err := s.service.Submit(s.ctx, s.user, s.submitRequest())
	s.Require().NoError(err)

	s.Run("rejection requires a bounded reason", func() {
		_, err := s.service.Review(s.ctx, v.ID, models.StatusRejected, "", s.operator)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = s.service.Review(s.ctx, v.ID, models.StatusRejected, "too short", s.operator)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("approval grants creator capability", func() {
		reviewed, err := s.service.Review(s.ctx, v.ID, models.StatusApproved, "", s.operator)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, reviewed.Status)
		s.Equal(s.operator, reviewed.ReviewedBy)

		ok, err := s.service.HasCreatorCapability(s.ctx, s.user)
		s.NoError(err)
		s.True(ok)
	})

	s.Run("re-review fails with already resolved", func() {
		_, err := s.service.Review(s.ctx, v.ID, models.StatusApproved, "", s.operator)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyResolved))
	})

	s.Run("unknown verification is not found", func() {
		_, err := s.service.Review(s.ctx, id.NewVerificationID(), models.StatusApproved, "", s.operator)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *VerificationServiceSuite) TestResubmissionAfterRejection() {
	first, err := s.service.Submit(s.ctx, s.user, s.submitRequest())
	s.Require().NoError(err)
	_, err = s.service.Review(s.ctx, first.ID, models.StatusRejected, "bank document is unreadable", s.operator)
	s.Require().NoError(err)

	second, err := s.service.Submit(s.ctx, s.user, s.submitRequest())
	s.Require().NoError(err)
	s.Equal(models.StatusPending, second.Status)
	s.Require().NotNil(second.PreviousID)
	s.Equal(first.ID, *second.PreviousID, "resubmission links the rejected record")

	ok, err := s.service.HasCreatorCapability(s.ctx, s.user)
	s.NoError(err)
	s.False(ok)
}

func (s *VerificationServiceSuite) TestIssueWarning() {
	s.Run("no record is not found", func() {
		_, err := s.service.IssueWarning(s.ctx, id.NewUserID())
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("increments independent of status", func() {
		v, err := s.service.Submit(s.ctx, s.user, s.submitRequest())
		s.Require().NoError(err)

		count, err := s.service.IssueWarning(s.ctx, s.user)
		s.NoError(err)
		s.Equal(1, count)

		_, err = s.service.Review(s.ctx, v.ID, models.StatusApproved, "", s.operator)
		s.Require().NoError(err)

		count, err = s.service.IssueWarning(s.ctx, s.user)
		s.NoError(err)
		s.Equal(2, count)
	})
}
