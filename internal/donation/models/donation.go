// Package models defines the donation record: an intent opened by a donor,
// confirmed (or not) by the payment gateway.
package models

import (
	"strings"
	"time"

	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusFailed    Status = "FAILED"
	StatusExpired   Status = "EXPIRED"
)

// Terminal states are final: only PENDING donations may transition.
func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed || s == StatusExpired
}

// MessageMaxLen bounds the optional prayer/message text.
const MessageMaxLen = 500

// DonorInfo identifies the donor: a registered user or an anonymous contact
// triple. At least a name is required for unregistered donors.
type DonorInfo struct {
	UserID id.UserID `json:"user_id,omitempty"`
	Name   string    `json:"name"`
	Email  string    `json:"email,omitempty"`
	Phone  string    `json:"phone,omitempty"`
}

func (d *DonorInfo) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
}

func (d DonorInfo) Validate() error {
	if d.UserID.IsNil() && d.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "donor name is required for unregistered donors")
	}
	return nil
}

// Donation is one funding attempt against a campaign. ExternalRef is the
// reference the payment gateway echoes in its notifications; it is unique per
// attempt and is the idempotency key for confirmation.
type Donation struct {
	ID         id.DonationID `json:"id"`
	CampaignID id.CampaignID `json:"campaign_id"`
	Donor      DonorInfo     `json:"donor"`
	Amount     int64         `json:"amount"`
	Message    string        `json:"message,omitempty"`
	Anonymous  bool          `json:"is_anonymous"`
	Status     Status        `json:"status"`

	ExternalRef string `json:"external_ref"`

	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	// FailureReason is set when the gateway reports a failed payment.
	FailureReason string `json:"failure_reason,omitempty"`
}

// DisplayName is what public listings render, honoring anonymity.
func (d *Donation) DisplayName() string {
	if d.Anonymous || d.Donor.Name == "" {
		return "Anonymous"
	}
	return d.Donor.Name
}
