// Package models defines the campaign aggregate root.
//
// Invariants:
//   - TargetAmount is a positive integer in the smallest currency unit
//   - CollectedAmount equals the sum of CONFIRMED donations and is only ever
//     changed by applying a confirmed donation inside the per-campaign
//     transaction boundary
//   - EndDate is never before StartDate
//   - Status transitions: DRAFT→ACTIVE, ACTIVE→COMPLETED, SUSPENDED from any
//     non-SUSPENDED state (operator override), SUSPENDED→ACTIVE by explicit
//     operator action only
package models

import (
	"strings"
	"time"

	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusSuspended Status = "SUSPENDED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusCompleted, StatusSuspended:
		return true
	}
	return false
}

// CanTransitionTo encodes the legal status machine.
func (s Status) CanTransitionTo(to Status) bool {
	if s == to {
		return false
	}
	switch to {
	case StatusActive:
		return s == StatusDraft || s == StatusSuspended
	case StatusCompleted:
		return s == StatusActive
	case StatusSuspended:
		return true
	}
	return false
}

type Campaign struct {
	ID          id.CampaignID `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	CreatorID   id.UserID     `json:"creator_id"`

	TargetAmount    int64 `json:"target_amount"`
	CollectedAmount int64 `json:"collected_amount"`

	Status      Status `json:"status"`
	IsEmergency bool   `json:"is_emergency"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AcceptsDonations reports whether new confirmed donations may be applied.
// COMPLETED and SUSPENDED campaigns stop collecting.
func (c *Campaign) AcceptsDonations() bool {
	return c.Status == StatusActive
}

// OpenForIntents additionally enforces the end date for new donation intents.
// The end date is advisory for confirmations already in flight.
func (c *Campaign) OpenForIntents(now time.Time) bool {
	return c.Status == StatusActive && !now.After(c.EndDate)
}

// AllowsWithdrawal reports whether the campaign's funds may be disbursed.
func (c *Campaign) AllowsWithdrawal() bool {
	return c.Status == StatusActive || c.Status == StatusCompleted
}

// ApplyStatus transitions the campaign, rejecting illegal transitions.
func (c *Campaign) ApplyStatus(to Status, now time.Time) error {
	if !to.Valid() {
		return dErrors.New(dErrors.CodeBadRequest, "unknown campaign status: "+string(to))
	}
	if !c.Status.CanTransitionTo(to) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"cannot transition campaign from "+string(c.Status)+" to "+string(to))
	}
	c.Status = to
	c.UpdatedAt = now
	return nil
}

// ListFilter narrows public campaign listings.
type ListFilter struct {
	Status    *Status
	Emergency *bool
	Category  string
}

// CreateRequest carries the creator's campaign fields.
type CreateRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	TargetAmount int64     `json:"target_amount"`
	IsEmergency  bool      `json:"is_emergency"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	// Status is the requested initial status, DRAFT or ACTIVE.
	Status Status `json:"status"`
}

func (r *CreateRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	if r.Status == "" {
		r.Status = StatusDraft
	}
}

func (r *CreateRequest) Validate() error {
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if r.Description == "" {
		return dErrors.New(dErrors.CodeValidation, "description is required")
	}
	if r.Category == "" {
		return dErrors.New(dErrors.CodeValidation, "category is required")
	}
	if r.TargetAmount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "target_amount must be positive")
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "start_date and end_date are required")
	}
	if r.EndDate.Before(r.StartDate) {
		return dErrors.New(dErrors.CodeValidation, "end_date must not be before start_date")
	}
	if r.Status != StatusDraft && r.Status != StatusActive {
		return dErrors.New(dErrors.CodeValidation, "initial status must be DRAFT or ACTIVE")
	}
	return nil
}

// New builds a campaign from a validated request.
func New(campaignID id.CampaignID, creator id.UserID, req CreateRequest, now time.Time) *Campaign {
	return &Campaign{
		ID:           campaignID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		CreatorID:    creator,
		TargetAmount: req.TargetAmount,
		Status:       req.Status,
		IsEmergency:  req.IsEmergency,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
