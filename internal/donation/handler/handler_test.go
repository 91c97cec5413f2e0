package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	campaignmodels "galang/internal/campaign/models"
	campaignservice "galang/internal/campaign/service"
	campaignstore "galang/internal/campaign/store"
	"galang/internal/donation/models"
	donationservice "galang/internal/donation/service"
	"galang/internal/donation/store"
	id "galang/pkg/domain"
)

const webhookSecret = "gateway-shared-secret"

type allowAll struct{}

func (allowAll) HasCreatorCapability(context.Context, id.UserID) (bool, error) { return true, nil }

type DonationHandlerSuite struct {
	suite.Suite
	router    http.Handler
	donations *donationservice.Service
	campaigns *campaignservice.Service
	campaign  *campaignmodels.Campaign
}

func TestDonationHandlerSuite(t *testing.T) {
	suite.Run(t, new(DonationHandlerSuite))
}

func (s *DonationHandlerSuite) SetupTest() {
	tx := campaignservice.NewShardedTx()
	s.campaigns = campaignservice.New(campaignstore.NewInMemory(), allowAll{}, tx)
	s.donations = donationservice.New(store.NewInMemory(), s.campaigns, tx, store.NewInMemoryTokens())

	now := time.Now()
	campaign, err := s.campaigns.Create(context.Background(), id.NewUserID(), campaignmodels.CreateRequest{
		Title:        "Scholarship fund",
		Description:  "Tuition for ten students",
		Category:     "education",
		TargetAmount: 10_000_000,
		StartDate:    now,
		EndDate:      now.AddDate(0, 1, 0),
		Status:       campaignmodels.StatusActive,
	})
	s.Require().NoError(err)
	s.campaign = campaign

	hash, err := bcrypt.GenerateFromPassword([]byte(webhookSecret), bcrypt.MinCost)
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(s.donations, logger, WithWebhookSecretHash(string(hash)))

	r := chi.NewRouter()
	h.Register(r)
	h.RegisterWebhook(r)
	s.router = r
}

func (s *DonationHandlerSuite) postJSON(path string, payload any, header map[string]string) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	s.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *DonationHandlerSuite) createIntent() intentResponse {
	rec := s.postJSON("/campaigns/"+s.campaign.ID.String()+"/donations", map[string]any{
		"amount": 100_000,
		"name":   "Budi",
		"email":  "budi@example.com",
	}, nil)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var resp intentResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Require().NotEmpty(resp.PaymentToken)
	return resp
}

func (s *DonationHandlerSuite) TestCreateIntent() {
	s.Run("valid intent is created pending", func() {
		resp := s.createIntent()
		s.Equal(models.StatusPending, resp.Donation.Status)
		s.NotEmpty(resp.Donation.ExternalRef)
	})

	s.Run("non-positive amount is rejected", func() {
		rec := s.postJSON("/campaigns/"+s.campaign.ID.String()+"/donations", map[string]any{
			"amount": 0,
			"name":   "Budi",
			"email":  "budi@example.com",
		}, nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("malformed campaign id is rejected", func() {
		rec := s.postJSON("/campaigns/not-a-uuid/donations", map[string]any{
			"amount": 100_000, "name": "Budi", "email": "budi@example.com",
		}, nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *DonationHandlerSuite) TestWebhook() {
	secretHeader := map[string]string{"X-Webhook-Secret": webhookSecret}

	s.Run("missing secret is unauthorized", func() {
		resp := s.createIntent()
		rec := s.postJSON("/donations/notify", map[string]any{
			"external_ref": resp.Donation.ExternalRef,
			"status":       "CONFIRMED",
		}, nil)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("wrong secret is unauthorized", func() {
		resp := s.createIntent()
		rec := s.postJSON("/donations/notify", map[string]any{
			"external_ref": resp.Donation.ExternalRef,
			"status":       "CONFIRMED",
		}, map[string]string{"X-Webhook-Secret": "guess"})
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("confirmation by external ref updates the campaign", func() {
		resp := s.createIntent()
		rec := s.postJSON("/donations/notify", map[string]any{
			"external_ref": resp.Donation.ExternalRef,
			"status":       "CONFIRMED",
		}, secretHeader)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var confirmed models.Donation
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&confirmed))
		s.Equal(models.StatusConfirmed, confirmed.Status)

		campaign, err := s.campaigns.Get(context.Background(), s.campaign.ID)
		s.Require().NoError(err)
		s.Equal(int64(100_000), campaign.CollectedAmount)
	})

	s.Run("duplicate confirmation is a success", func() {
		resp := s.createIntent()
		before, err := s.campaigns.Get(context.Background(), s.campaign.ID)
		s.Require().NoError(err)

		for n := 0; n < 2; n++ {
			rec := s.postJSON("/donations/notify", map[string]any{
				"external_ref": resp.Donation.ExternalRef,
				"status":       "CONFIRMED",
			}, secretHeader)
			s.Require().Equal(http.StatusOK, rec.Code)
		}

		after, err := s.campaigns.Get(context.Background(), s.campaign.ID)
		s.Require().NoError(err)
		s.Equal(before.CollectedAmount+100_000, after.CollectedAmount)
	})

	s.Run("token resolution stands in for the ref", func() {
		resp := s.createIntent()
		rec := s.postJSON("/donations/notify", map[string]any{
			"payment_token": resp.PaymentToken,
			"status":        "FAILED",
			"reason":        "card declined",
		}, secretHeader)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var failed models.Donation
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&failed))
		s.Equal(models.StatusFailed, failed.Status)
		s.Equal("card declined", failed.FailureReason)
	})

	s.Run("unknown status is rejected", func() {
		rec := s.postJSON("/donations/notify", map[string]any{
			"external_ref": "don-whatever",
			"status":       "SETTLED",
		}, secretHeader)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unknown ref is not found", func() {
		rec := s.postJSON("/donations/notify", map[string]any{
			"external_ref": "don-missing",
			"status":       "CONFIRMED",
		}, secretHeader)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *DonationHandlerSuite) TestListHidesPendingAndContactInfo() {
	resp := s.createIntent()
	rec := s.postJSON("/donations/notify", map[string]any{
		"external_ref": resp.Donation.ExternalRef,
		"status":       "CONFIRMED",
	}, map[string]string{"X-Webhook-Secret": webhookSecret})
	s.Require().Equal(http.StatusOK, rec.Code)

	s.createIntent() // stays pending, must not be listed

	req := httptest.NewRequest(http.MethodGet, "/campaigns/"+s.campaign.ID.String()+"/donations", nil)
	listRec := httptest.NewRecorder()
	s.router.ServeHTTP(listRec, req)
	s.Require().Equal(http.StatusOK, listRec.Code)

	raw := listRec.Body.String()
	var envelope struct {
		Data  []listedDonation `json:"data"`
		Total int              `json:"total"`
	}
	s.Require().NoError(json.Unmarshal([]byte(raw), &envelope))
	s.Equal(1, envelope.Total)
	s.Require().Len(envelope.Data, 1)
	s.Equal("Budi", envelope.Data[0].DonorName)
	s.NotContains(raw, "budi@example.com")
}
