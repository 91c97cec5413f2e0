package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"galang/internal/report/models"
	id "galang/pkg/domain"
	"galang/pkg/platform/sentinel"
	txcontext "galang/pkg/platform/tx"
)

// Postgres persists abuse reports.
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

const reportColumns = `id, campaign_id, reporter_user_id, reporter_email, reason, description,
	status, admin_note, action, reviewed_by, created_at, reviewed_at`

func (s *Postgres) Create(ctx context.Context, r *models.Report) error {
	var reporter any
	if !r.ReporterUserID.IsNil() {
		reporter = r.ReporterUserID.String()
	}
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO reports (`+reportColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		r.ID.String(), r.CampaignID.String(), reporter, r.ReporterEmail,
		string(r.Reason), r.Description, string(r.Status),
		r.AdminNote, string(r.Action), nullableUser(r.ReviewedBy),
		r.CreatedAt, r.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, reportID id.ReportID) (*models.Report, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = $1`,
		reportID.String(),
	)
	return scanReport(row)
}

func (s *Postgres) Update(ctx context.Context, r *models.Report) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE reports SET status = $2, admin_note = $3, action = $4, reviewed_by = $5, reviewed_at = $6
		 WHERE id = $1`,
		r.ID.String(), string(r.Status), r.AdminNote, string(r.Action),
		nullableUser(r.ReviewedBy), r.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("update report: %w", err)
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

func (s *Postgres) ListByStatus(ctx context.Context, status models.Status, page, limit int) ([]*models.Report, int, error) {
	var total int
	if err := s.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reports WHERE status = $1`, string(status),
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports
		 WHERE status = $1 ORDER BY created_at LIMIT $2 OFFSET $3`,
		string(status), limit, (page-1)*limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []*models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
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

func scanReport(row rowScanner) (*models.Report, error) {
	var (
		r           models.Report
		rawID       string
		rawCampaign string
		reporter    sql.NullString
		reviewedBy  sql.NullString
		reviewedAt  sql.NullTime
	)
	err := row.Scan(
		&rawID, &rawCampaign, &reporter, &r.ReporterEmail,
		&r.Reason, &r.Description, &r.Status,
		&r.AdminNote, &r.Action, &reviewedBy,
		&r.CreatedAt, &reviewedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}

	if r.ID, err = id.ParseReportID(rawID); err != nil {
		return nil, err
	}
	if r.CampaignID, err = id.ParseCampaignID(rawCampaign); err != nil {
		return nil, err
	}
	if reporter.Valid {
		if r.ReporterUserID, err = id.ParseUserID(reporter.String); err != nil {
			return nil, err
		}
	}
	if reviewedBy.Valid {
		if r.ReviewedBy, err = id.ParseUserID(reviewedBy.String); err != nil {
			return nil, err
		}
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		r.ReviewedAt = &t
	}
	return &r, nil
}
