package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
	txcontext "galang/pkg/platform/tx"
)

const defaultCampaignTxTimeout = 5 * time.Second

// campaignPostgresTx is the database-backed serialization boundary: it opens
// a transaction and takes a FOR UPDATE lock on the campaign row, so every
// money-moving operation for one campaign runs single-file while other
// campaigns proceed in parallel. The open transaction travels in the context
// and all stores join it.
type campaignPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newCampaignPostgresTx(db *sql.DB) *campaignPostgresTx {
	return &campaignPostgresTx{db: db, timeout: defaultCampaignTxTimeout}
}

func (t *campaignPostgresTx) RunInCampaignTx(ctx context.Context, campaignID id.CampaignID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// The row lock is the boundary. A missing campaign is left for fn to
	// report with its own error mapping.
	var locked string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM campaigns WHERE id = $1 FOR UPDATE`,
		campaignID.String(),
	).Scan(&locked)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock campaign row")
	}

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit transaction")
	}
	return nil
}
