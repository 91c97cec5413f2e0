package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"galang/internal/donation/models"
	id "galang/pkg/domain"
	"galang/pkg/platform/sentinel"
	txcontext "galang/pkg/platform/tx"
)

// Postgres persists donation records.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const donationColumns = `id, campaign_id, donor_user_id, donor_name, donor_email, donor_phone,
	amount, message, is_anonymous, status, external_ref, failure_reason, created_at, confirmed_at`

func (s *Postgres) Create(ctx context.Context, d *models.Donation) error {
	var donorUser any
	if !d.Donor.UserID.IsNil() {
		donorUser = d.Donor.UserID.String()
	}
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO donations (`+donationColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		d.ID.String(), d.CampaignID.String(), donorUser,
		d.Donor.Name, d.Donor.Email, d.Donor.Phone,
		d.Amount, d.Message, d.Anonymous,
		string(d.Status), d.ExternalRef, d.FailureReason,
		d.CreatedAt, d.ConfirmedAt,
	)
	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

func (s *Postgres) FindByExternalRef(ctx context.Context, externalRef string) (*models.Donation, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+donationColumns+` FROM donations WHERE external_ref = $1`,
		externalRef,
	)
	return scanDonation(row)
}

func (s *Postgres) Update(ctx context.Context, d *models.Donation) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE donations SET status = $2, failure_reason = $3, confirmed_at = $4 WHERE id = $1`,
		d.ID.String(), string(d.Status), d.FailureReason, d.ConfirmedAt,
	)
	if err != nil {
		return fmt.Errorf("update donation: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) ListConfirmedByCampaign(ctx context.Context, campaignID id.CampaignID, page, limit int) ([]*models.Donation, int, error) {
	var total int
	if err := s.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM donations WHERE campaign_id = $1 AND status = 'CONFIRMED'`,
		campaignID.String(),
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count donations: %w", err)
	}

	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+donationColumns+` FROM donations
		 WHERE campaign_id = $1 AND status = 'CONFIRMED'
		 ORDER BY confirmed_at DESC LIMIT $2 OFFSET $3`,
		campaignID.String(), limit, (page-1)*limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var out []*models.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

func (s *Postgres) CountConfirmed(ctx context.Context, campaignID id.CampaignID) (int, error) {
	var count int
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM donations WHERE campaign_id = $1 AND status = 'CONFIRMED'`,
		campaignID.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count confirmed donations: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonation(row rowScanner) (*models.Donation, error) {
	var (
		d           models.Donation
		rawID       string
		rawCampaign string
		donorUser   sql.NullString
		confirmedAt sql.NullTime
	)
	err := row.Scan(
		&rawID, &rawCampaign, &donorUser,
		&d.Donor.Name, &d.Donor.Email, &d.Donor.Phone,
		&d.Amount, &d.Message, &d.Anonymous,
		&d.Status, &d.ExternalRef, &d.FailureReason,
		&d.CreatedAt, &confirmedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan donation: %w", err)
	}

	if d.ID, err = id.ParseDonationID(rawID); err != nil {
		return nil, err
	}
	if d.CampaignID, err = id.ParseCampaignID(rawCampaign); err != nil {
		return nil, err
	}
	if donorUser.Valid {
		if d.Donor.UserID, err = id.ParseUserID(donorUser.String); err != nil {
			return nil, err
		}
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		d.ConfirmedAt = &t
	}
	return &d, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
