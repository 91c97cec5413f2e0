package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"galang/internal/campaign/models"
	id "galang/pkg/domain"
	"galang/pkg/platform/sentinel"
	txcontext "galang/pkg/platform/tx"
)

// Postgres persists campaigns. Mutations issued inside a campaign
// transaction join it via pkg/platform/tx.
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

const campaignColumns = `id, title, description, category, creator_id, target_amount,
	collected_amount, status, is_emergency, start_date, end_date, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, c *models.Campaign) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO campaigns (`+campaignColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		c.ID.String(), c.Title, c.Description, c.Category, c.CreatorID.String(),
		c.TargetAmount, c.CollectedAmount, string(c.Status), c.IsEmergency,
		c.StartDate, c.EndDate, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, campaignID id.CampaignID) (*models.Campaign, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`,
		campaignID.String(),
	)
	return scanCampaign(row)
}

func (s *Postgres) Update(ctx context.Context, c *models.Campaign) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE campaigns
		 SET title = $2, description = $3, category = $4, status = $5,
		     is_emergency = $6, start_date = $7, end_date = $8, updated_at = $9
		 WHERE id = $1`,
		c.ID.String(), c.Title, c.Description, c.Category, string(c.Status),
		c.IsEmergency, c.StartDate, c.EndDate, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return requireRow(res)
}

// AddToCollected is the only statement that touches collected_amount.
func (s *Postgres) AddToCollected(ctx context.Context, campaignID id.CampaignID, amount int64) (*models.Campaign, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`UPDATE campaigns SET collected_amount = collected_amount + $2
		 WHERE id = $1
		 RETURNING `+campaignColumns,
		campaignID.String(), amount,
	)
	return scanCampaign(row)
}

func (s *Postgres) List(ctx context.Context, filter models.ListFilter, page, limit int) ([]*models.Campaign, int, error) {
	where, args := buildFilter(filter)

	var total int
	if err := s.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM campaigns`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	n := len(args)
	query := `SELECT ` + campaignColumns + ` FROM campaigns` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := s.q(ctx).QueryContext(ctx, query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []*models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (s *Postgres) Delete(ctx context.Context, campaignID id.CampaignID) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`DELETE FROM campaigns WHERE id = $1`, campaignID.String(),
	)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return requireRow(res)
}

func buildFilter(filter models.ListFilter) (string, []any) {
	var clauses []string
	var args []any
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.Emergency != nil {
		args = append(args, *filter.Emergency)
		clauses = append(clauses, "is_emergency = $"+strconv.Itoa(len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		clauses = append(clauses, "category = $"+strconv.Itoa(len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (*models.Campaign, error) {
	var (
		c          models.Campaign
		rawID      string
		rawCreator string
	)
	err := row.Scan(
		&rawID, &c.Title, &c.Description, &c.Category, &rawCreator,
		&c.TargetAmount, &c.CollectedAmount, &c.Status, &c.IsEmergency,
		&c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan campaign: %w", err)
	}
	if c.ID, err = id.ParseCampaignID(rawID); err != nil {
		return nil, err
	}
	if c.CreatorID, err = id.ParseUserID(rawCreator); err != nil {
		return nil, err
	}
	return &c, nil
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
