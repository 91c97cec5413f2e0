// Package audit records who did what to the money. Every mutating ledger and
// moderation operation emits an event through the Publisher; the postgres
// store writes a transactional outbox row and the worker relays rows to
// Kafka, which is the durable audit log.
package audit

import (
	"context"
	"time"

	id "galang/pkg/domain"
)

// Actions emitted by the ledger and moderation services.
const (
	ActionCampaignCreated      = "campaign_created"
	ActionCampaignStatusSet    = "campaign_status_set"
	ActionCampaignEmergencySet = "campaign_emergency_set"
	ActionCampaignDeleted      = "campaign_deleted"
	ActionDonationIntent       = "donation_intent_created"
	ActionDonationConfirmed    = "donation_confirmed"
	ActionDonationFailed       = "donation_failed"
	ActionDonationExpired      = "donation_expired"
	ActionWithdrawalRequested  = "withdrawal_requested"
	ActionWithdrawalResolved   = "withdrawal_resolved"
	ActionVerificationSubmit   = "verification_submitted"
	ActionVerificationReviewed = "verification_reviewed"
	ActionWarningIssued        = "warning_issued"
	ActionReportFiled          = "report_filed"
	ActionReportReviewed       = "report_reviewed"
)

// Event is one audit record. CampaignID and Amount are zero when the action
// has no campaign or money attached.
type Event struct {
	Action     string
	Timestamp  time.Time
	ActorID    id.UserID
	CampaignID id.CampaignID
	Subject    string
	Amount     int64
	Detail     string
	RequestID  string
}

// Store is the audit sink. The postgres implementation joins the caller's
// transaction via pkg/platform/tx, so an aborted ledger mutation never leaves
// a stray audit row.
type Store interface {
	Append(ctx context.Context, event Event) error
}
