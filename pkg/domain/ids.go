// Package domain holds the typed identifiers and enums shared across the
// funding ledger. IDs wrap uuid.UUID so the compiler keeps a CampaignID from
// ever being passed where a DonationID belongs.
package domain

import (
	"github.com/google/uuid"

	dErrors "galang/pkg/domain-errors"
)

type (
	UserID         uuid.UUID
	CampaignID     uuid.UUID
	DonationID     uuid.UUID
	WithdrawalID   uuid.UUID
	VerificationID uuid.UUID
	ReportID       uuid.UUID
)

func NewUserID() UserID                 { return UserID(uuid.New()) }
func NewCampaignID() CampaignID         { return CampaignID(uuid.New()) }
func NewDonationID() DonationID         { return DonationID(uuid.New()) }
func NewWithdrawalID() WithdrawalID     { return WithdrawalID(uuid.New()) }
func NewVerificationID() VerificationID { return VerificationID(uuid.New()) }
func NewReportID() ReportID             { return ReportID(uuid.New()) }

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id CampaignID) String() string     { return uuid.UUID(id).String() }
func (id DonationID) String() string     { return uuid.UUID(id).String() }
func (id WithdrawalID) String() string   { return uuid.UUID(id).String() }
func (id VerificationID) String() string { return uuid.UUID(id).String() }
func (id ReportID) String() string       { return uuid.UUID(id).String() }

// MarshalText keeps the canonical UUID string form in JSON payloads; the
// defined types do not inherit uuid.UUID's encoding methods.
func (id UserID) MarshalText() ([]byte, error)         { return []byte(id.String()), nil }
func (id CampaignID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id DonationID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id WithdrawalID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id VerificationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id ReportID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = UserID(parsed)
	return nil
}

func (id *CampaignID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = CampaignID(parsed)
	return nil
}

func (id *DonationID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = DonationID(parsed)
	return nil
}

func (id *WithdrawalID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = WithdrawalID(parsed)
	return nil
}

func (id *VerificationID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = VerificationID(parsed)
	return nil
}

func (id *ReportID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = ReportID(parsed)
	return nil
}

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id CampaignID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id DonationID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id WithdrawalID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id VerificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ReportID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs. Parsing happens at trust boundaries (HTTP path params,
// webhook payloads) so everything past the handler works with typed IDs.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be the nil UUID")
	}
	return parsed, nil
}

func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw, "user")
	return UserID(parsed), err
}

func ParseCampaignID(raw string) (CampaignID, error) {
	parsed, err := parseUUID(raw, "campaign")
	return CampaignID(parsed), err
}

func ParseDonationID(raw string) (DonationID, error) {
	parsed, err := parseUUID(raw, "donation")
	return DonationID(parsed), err
}

func ParseWithdrawalID(raw string) (WithdrawalID, error) {
	parsed, err := parseUUID(raw, "withdrawal")
	return WithdrawalID(parsed), err
}

func ParseVerificationID(raw string) (VerificationID, error) {
	parsed, err := parseUUID(raw, "verification")
	return VerificationID(parsed), err
}

func ParseReportID(raw string) (ReportID, error) {
	parsed, err := parseUUID(raw, "report")
	return ReportID(parsed), err
}
