// Package models defines withdrawal records. A withdrawal reserves funds the
// moment it is created; only a FAILED resolution returns them.
package models

import (
	"time"

	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
)

type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Resolved reports whether the withdrawal reached a terminal state.
func (s Status) Resolved() bool {
	return s == StatusCompleted || s == StatusFailed
}

const NoteMaxLen = 500

type Withdrawal struct {
	ID         id.WithdrawalID `json:"id"`
	CampaignID id.CampaignID   `json:"campaign_id"`
	Amount     int64           `json:"amount"`
	Note       string          `json:"note,omitempty"`
	Status     Status          `json:"status"`

	// RequestedBy and ResolvedBy record operator identities.
	RequestedBy id.UserID `json:"requested_by"`
	ResolvedBy  id.UserID `json:"resolved_by,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// Resolve applies a terminal outcome. Withdrawals resolve exactly once.
func (w *Withdrawal) Resolve(outcome Status, operator id.UserID, now time.Time) error {
	if !outcome.Resolved() {
		return dErrors.New(dErrors.CodeValidation, "outcome must be COMPLETED or FAILED")
	}
	if w.Status.Resolved() {
		return dErrors.New(dErrors.CodeAlreadyResolved, "withdrawal is already "+string(w.Status))
	}
	w.Status = outcome
	w.ResolvedBy = operator
	w.ResolvedAt = &now
	return nil
}

func New(withdrawalID id.WithdrawalID, campaignID id.CampaignID, amount int64, note string, operator id.UserID, now time.Time) *Withdrawal {
	return &Withdrawal{
		ID:          withdrawalID,
		CampaignID:  campaignID,
		Amount:      amount,
		Note:        note,
		Status:      StatusProcessing,
		RequestedBy: operator,
		CreatedAt:   now,
	}
}
