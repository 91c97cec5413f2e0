// Package models defines abuse reports and the moderation outcomes applied
// to them.
package models

import (
	"strings"
	"time"

	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusReviewed Status = "REVIEWED"
	StatusRejected Status = "REJECTED"
)

// Resolved reports whether the report has been handled. Reviews are terminal.
func (s Status) Resolved() bool {
	return s == StatusReviewed || s == StatusRejected
}

// Reason categorizes what the reporter alleges.
type Reason string

const (
	ReasonFraud         Reason = "FRAUD"
	ReasonInappropriate Reason = "INAPPROPRIATE"
	ReasonMisleading    Reason = "MISLEADING"
	ReasonSpam          Reason = "SPAM"
	ReasonOther         Reason = "OTHER"
)

func (r Reason) Valid() bool {
	switch r {
	case ReasonFraud, ReasonInappropriate, ReasonMisleading, ReasonSpam, ReasonOther:
		return true
	}
	return false
}

// Action is the moderation decision recorded with a review. Exactly one is
// applied per review.
type Action string

const (
	ActionWarning Action = "WARNING"
	ActionSuspend Action = "SUSPEND"
	ActionReject  Action = "REJECT"
)

func (a Action) Valid() bool {
	switch a {
	case ActionWarning, ActionSuspend, ActionReject:
		return true
	}
	return false
}

const (
	DescriptionMaxLen = 2000
	AdminNoteMinLen   = 10
	AdminNoteMaxLen   = 500
)

type Report struct {
	ID         id.ReportID   `json:"id"`
	CampaignID id.CampaignID `json:"campaign_id"`

	// ReporterUserID is set for signed-in reporters; anonymous visitors leave
	// an email instead. Either may be empty, never both.
	ReporterUserID id.UserID `json:"reporter_user_id,omitempty"`
	ReporterEmail  string    `json:"reporter_email,omitempty"`

	Reason      Reason `json:"reason"`
	Description string `json:"description"`
	Status      Status `json:"status"`

	AdminNote  string     `json:"admin_note,omitempty"`
	Action     Action     `json:"action,omitempty"`
	ReviewedBy id.UserID  `json:"reviewed_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// FileRequest is the public report-filing payload.
type FileRequest struct {
	ReporterUserID id.UserID `json:"-"`
	ReporterEmail  string    `json:"reporter_email"`
	Reason         Reason    `json:"reason"`
	Description    string    `json:"description"`
}

func (r *FileRequest) Normalize() {
	r.ReporterEmail = strings.TrimSpace(r.ReporterEmail)
	r.Description = strings.TrimSpace(r.Description)
}

func (r FileRequest) Validate() error {
	if !r.Reason.Valid() {
		return dErrors.New(dErrors.CodeValidation, "reason must be one of FRAUD, INAPPROPRIATE, MISLEADING, SPAM, OTHER")
	}
	if r.Description == "" {
		return dErrors.New(dErrors.CodeValidation, "description is required")
	}
	if len(r.Description) > DescriptionMaxLen {
		return dErrors.New(dErrors.CodeValidation, "description must be at most 2000 characters")
	}
	if r.ReporterUserID.IsNil() && r.ReporterEmail == "" {
		return dErrors.New(dErrors.CodeValidation, "reporter email is required for anonymous reports")
	}
	return nil
}

// ValidateAdminNote enforces the review note length bounds on the trimmed
// text; padding never counts toward the minimum.
func ValidateAdminNote(note string) error {
	trimmed := strings.TrimSpace(note)
	if len(trimmed) < AdminNoteMinLen {
		return dErrors.New(dErrors.CodeValidation, "admin note must be at least 10 characters")
	}
	if len(trimmed) > AdminNoteMaxLen {
		return dErrors.New(dErrors.CodeValidation, "admin note must be at most 500 characters")
	}
	return nil
}

// Review applies a terminal outcome. Reports are reviewed exactly once.
func (r *Report) Review(outcome Status, action Action, note string, operator id.UserID, now time.Time) error {
	if !outcome.Resolved() {
		return dErrors.New(dErrors.CodeValidation, "outcome must be REVIEWED or REJECTED")
	}
	if !action.Valid() {
		return dErrors.New(dErrors.CodeValidation, "action must be one of WARNING, SUSPEND, REJECT")
	}
	if r.Status.Resolved() {
		return dErrors.New(dErrors.CodeAlreadyResolved, "report is already "+string(r.Status))
	}
	note = strings.TrimSpace(note)
	if err := ValidateAdminNote(note); err != nil {
		return err
	}
	r.Status = outcome
	r.Action = action
	r.AdminNote = note
	r.ReviewedBy = operator
	r.ReviewedAt = &now
	return nil
}

func New(reportID id.ReportID, campaignID id.CampaignID, req FileRequest, now time.Time) *Report {
	return &Report{
		ID:             reportID,
		CampaignID:     campaignID,
		ReporterUserID: req.ReporterUserID,
		ReporterEmail:  req.ReporterEmail,
		Reason:         req.Reason,
		Description:    req.Description,
		Status:         StatusPending,
		CreatedAt:      now,
	}
}
