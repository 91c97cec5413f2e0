package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"galang/internal/audit"
	txcontext "galang/pkg/platform/tx"
)

// Store implements audit.Store with the transactional outbox pattern. Events
// land in audit_outbox inside the caller's transaction; the outbox worker
// relays them to Kafka and marks them published.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// payload is the JSON body relayed to Kafka.
type payload struct {
	ID         string `json:"id"`
	Action     string `json:"action"`
	Timestamp  string `json:"timestamp"`
	ActorID    string `json:"actor_id,omitempty"`
	CampaignID string `json:"campaign_id,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Amount     int64  `json:"amount,omitempty"`
	Detail     string `json:"detail,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	body := payload{
		ID:        uuid.NewString(),
		Action:    event.Action,
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Subject:   event.Subject,
		Amount:    event.Amount,
		Detail:    event.Detail,
		RequestID: event.RequestID,
	}
	if !event.ActorID.IsNil() {
		body.ActorID = event.ActorID.String()
	}
	if !event.CampaignID.IsNil() {
		body.CampaignID = event.CampaignID.String()
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	// Partition key keeps one campaign's events ordered on the topic.
	key := body.CampaignID
	if key == "" {
		key = body.ActorID
	}

	_, err = s.execer(ctx).ExecContext(ctx,
		`INSERT INTO audit_outbox (id, partition_key, payload, created_at)
		 VALUES ($1, $2, $3, $4)`,
		body.ID, key, raw, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit outbox: %w", err)
	}
	return nil
}

// OutboxRow is an unpublished audit event awaiting relay.
type OutboxRow struct {
	ID           string
	PartitionKey string
	Payload      []byte
}

// FetchUnpublished returns up to limit unpublished rows, oldest first. The
// relay is at-least-once: a crash between produce and MarkPublished re-sends
// the row, and consumers dedupe on the event id.
func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]OutboxRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, partition_key, payload FROM audit_outbox
		 WHERE published_at IS NULL
		 ORDER BY created_at
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch audit outbox: %w", err)
	}
	defer rows.Close()

	var out []OutboxRow
	for rows.Next() {
		var row OutboxRow
		if err := rows.Scan(&row.ID, &row.PartitionKey, &row.Payload); err != nil {
			return nil, fmt.Errorf("scan audit outbox: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// MarkPublished stamps relayed rows so they are not sent again.
func (s *Store) MarkPublished(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE audit_outbox SET published_at = $1 WHERE id = ANY($2)`,
		at, pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("mark audit outbox published: %w", err)
	}
	return nil
}
