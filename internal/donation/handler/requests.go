package handler

import (
	"strings"
	"time"

	"galang/internal/donation/models"
	dErrors "galang/pkg/domain-errors"
)

type createIntentRequest struct {
	Amount    int64  `json:"amount"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	Anonymous bool   `json:"is_anonymous"`
}

func (r *createIntentRequest) Validate() error {
	if r.Amount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	return nil
}

type intentResponse struct {
	Donation     *models.Donation `json:"donation"`
	PaymentToken string           `json:"payment_token"`
}

const (
	notificationConfirmed = "CONFIRMED"
	notificationFailed    = "FAILED"
	notificationExpired   = "EXPIRED"
)

type notificationRequest struct {
	ExternalRef  string `json:"external_ref"`
	PaymentToken string `json:"payment_token"`
	Status       string `json:"status"`
	Reason       string `json:"reason"`
}

func (r *notificationRequest) Validate() error {
	r.ExternalRef = strings.TrimSpace(r.ExternalRef)
	r.PaymentToken = strings.TrimSpace(r.PaymentToken)
	if r.ExternalRef == "" && r.PaymentToken == "" {
		return dErrors.New(dErrors.CodeValidation, "external_ref or payment_token is required")
	}
	switch r.Status {
	case notificationConfirmed, notificationFailed, notificationExpired:
		return nil
	}
	return dErrors.New(dErrors.CodeValidation, "status must be CONFIRMED, FAILED, or EXPIRED")
}

// listedDonation is the public listing shape. Anonymous donors show as
// "Anonymous" and contact details never leave the server.
type listedDonation struct {
	ID          string    `json:"id"`
	DonorName   string    `json:"donor_name"`
	Amount      int64     `json:"amount"`
	Message     string    `json:"message,omitempty"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

func toListedDonation(d *models.Donation) listedDonation {
	out := listedDonation{
		ID:        d.ID.String(),
		DonorName: d.DisplayName(),
		Amount:    d.Amount,
		Message:   d.Message,
	}
	if d.ConfirmedAt != nil {
		out.ConfirmedAt = *d.ConfirmedAt
	}
	return out
}
