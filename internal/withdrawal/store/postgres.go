package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"galang/internal/withdrawal/models"
	id "galang/pkg/domain"
	"galang/pkg/platform/sentinel"
	txcontext "galang/pkg/platform/tx"
)

// Postgres persists withdrawal records.
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

const withdrawalColumns = `id, campaign_id, amount, note, status, requested_by, resolved_by, created_at, resolved_at`

func (s *Postgres) Create(ctx context.Context, w *models.Withdrawal) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO withdrawals (`+withdrawalColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		w.ID.String(), w.CampaignID.String(), w.Amount, w.Note, string(w.Status),
		w.RequestedBy.String(), nullableUser(w.ResolvedBy), w.CreatedAt, w.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert withdrawal: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, withdrawalID id.WithdrawalID) (*models.Withdrawal, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1`,
		withdrawalID.String(),
	)
	return scanWithdrawal(row)
}

func (s *Postgres) Update(ctx context.Context, w *models.Withdrawal) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE withdrawals SET status = $2, resolved_by = $3, resolved_at = $4 WHERE id = $1`,
		w.ID.String(), string(w.Status), nullableUser(w.ResolvedBy), w.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("update withdrawal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListByCampaign(ctx context.Context, campaignID id.CampaignID) ([]*models.Withdrawal, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals
		 WHERE campaign_id = $1 ORDER BY created_at DESC`,
		campaignID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	defer rows.Close()

	var out []*models.Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Postgres) SumReserved(ctx context.Context, campaignID id.CampaignID) (int64, error) {
	return s.sumByStatuses(ctx, campaignID,
		`SELECT COALESCE(SUM(amount), 0) FROM withdrawals
		 WHERE campaign_id = $1 AND status IN ('PROCESSING', 'COMPLETED')`)
}

func (s *Postgres) SumCompleted(ctx context.Context, campaignID id.CampaignID) (int64, error) {
	return s.sumByStatuses(ctx, campaignID,
		`SELECT COALESCE(SUM(amount), 0) FROM withdrawals
		 WHERE campaign_id = $1 AND status = 'COMPLETED'`)
}

func (s *Postgres) sumByStatuses(ctx context.Context, campaignID id.CampaignID, query string) (int64, error) {
	var sum int64
	if err := s.q(ctx).QueryRowContext(ctx, query, campaignID.String()).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum withdrawals: %w", err)
	}
	return sum, nil
}

func nullableUser(userID id.UserID) any {
	if userID.IsNil() {
		return nil
	}
	return userID.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWithdrawal(row rowScanner) (*models.Withdrawal, error) {
	var (
		w           models.Withdrawal
		rawID       string
		rawCampaign string
		rawReq      string
		resolvedBy  sql.NullString
		resolvedAt  sql.NullTime
	)
	err := row.Scan(
		&rawID, &rawCampaign, &w.Amount, &w.Note, &w.Status,
		&rawReq, &resolvedBy, &w.CreatedAt, &resolvedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan withdrawal: %w", err)
	}

	if w.ID, err = id.ParseWithdrawalID(rawID); err != nil {
		return nil, err
	}
	if w.CampaignID, err = id.ParseCampaignID(rawCampaign); err != nil {
		return nil, err
	}
	if w.RequestedBy, err = id.ParseUserID(rawReq); err != nil {
		return nil, err
	}
	if resolvedBy.Valid {
		if w.ResolvedBy, err = id.ParseUserID(resolvedBy.String); err != nil {
			return nil, err
		}
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		w.ResolvedAt = &t
	}
	return &w, nil
}
