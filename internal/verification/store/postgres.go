package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"galang/internal/verification/models"
	id "galang/pkg/domain"
	"galang/pkg/platform/sentinel"
	txcontext "galang/pkg/platform/tx"
)

// Postgres persists verification records.
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

const verificationColumns = `id, user_id, previous_id, ktp_name, ktp_number, ktp_document_url,
	bank_account_number, bank_account_name, bank_document_url, terms_document_url,
	status, rejection_reason, warning_count, created_at, reviewed_at, reviewed_by`

func (s *Postgres) Create(ctx context.Context, v *models.Verification) error {
	var previous any
	if v.PreviousID != nil {
		previous = v.PreviousID.String()
	}
	var reviewedBy any
	if !v.ReviewedBy.IsNil() {
		reviewedBy = v.ReviewedBy.String()
	}
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO verifications (`+verificationColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		v.ID.String(), v.UserID.String(), previous,
		v.KTPName, v.KTPNumber, v.KTPDocumentURL,
		v.BankAccountNumber, v.BankAccountName, v.BankDocumentURL, v.TermsDocumentURL,
		string(v.Status), v.RejectionReason, v.WarningCount,
		v.CreatedAt, v.ReviewedAt, reviewedBy,
	)
	if err != nil {
		return fmt.Errorf("insert verification: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, verificationID id.VerificationID) (*models.Verification, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+verificationColumns+` FROM verifications WHERE id = $1`,
		verificationID.String(),
	)
	return scanVerification(row)
}

func (s *Postgres) FindNewestByUser(ctx context.Context, userID id.UserID) (*models.Verification, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+verificationColumns+` FROM verifications
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`,
		userID.String(),
	)
	return scanVerification(row)
}

func (s *Postgres) HasApproved(ctx context.Context, userID id.UserID) (bool, error) {
	var exists bool
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM verifications WHERE user_id = $1 AND status = 'APPROVED')`,
		userID.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check approved verification: %w", err)
	}
	return exists, nil
}

func (s *Postgres) Update(ctx context.Context, v *models.Verification) error {
	var reviewedBy any
	if !v.ReviewedBy.IsNil() {
		reviewedBy = v.ReviewedBy.String()
	}
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE verifications
		 SET status = $2, rejection_reason = $3, warning_count = $4, reviewed_at = $5, reviewed_by = $6
		 WHERE id = $1`,
		v.ID.String(), string(v.Status), v.RejectionReason, v.WarningCount, v.ReviewedAt, reviewedBy,
	)
	if err != nil {
		return fmt.Errorf("update verification: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) ListByStatus(ctx context.Context, status models.Status, page, limit int) ([]*models.Verification, int, error) {
	var total int
	if err := s.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM verifications WHERE status = $1`, string(status),
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count verifications: %w", err)
	}

	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+verificationColumns+` FROM verifications
		 WHERE status = $1 ORDER BY created_at LIMIT $2 OFFSET $3`,
		string(status), limit, (page-1)*limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list verifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Verification
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

func (s *Postgres) IncrementWarning(ctx context.Context, userID id.UserID) (int, error) {
	var count int
	err := s.q(ctx).QueryRowContext(ctx,
		`UPDATE verifications SET warning_count = warning_count + 1
		 WHERE id = (SELECT id FROM verifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1)
		 RETURNING warning_count`,
		userID.String(),
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment warning count: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVerification(row rowScanner) (*models.Verification, error) {
	var (
		v          models.Verification
		rawID      string
		rawUser    string
		previous   sql.NullString
		reviewedAt sql.NullTime
		reviewedBy sql.NullString
	)
	err := row.Scan(
		&rawID, &rawUser, &previous,
		&v.KTPName, &v.KTPNumber, &v.KTPDocumentURL,
		&v.BankAccountNumber, &v.BankAccountName, &v.BankDocumentURL, &v.TermsDocumentURL,
		&v.Status, &v.RejectionReason, &v.WarningCount,
		&v.CreatedAt, &reviewedAt, &reviewedBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan verification: %w", err)
	}

	if v.ID, err = id.ParseVerificationID(rawID); err != nil {
		return nil, err
	}
	if v.UserID, err = id.ParseUserID(rawUser); err != nil {
		return nil, err
	}
	if previous.Valid {
		prevID, err := id.ParseVerificationID(previous.String)
		if err != nil {
			return nil, err
		}
		v.PreviousID = &prevID
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		v.ReviewedAt = &t
	}
	if reviewedBy.Valid {
		if v.ReviewedBy, err = id.ParseUserID(reviewedBy.String); err != nil {
			return nil, err
		}
	}
	return &v, nil
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
