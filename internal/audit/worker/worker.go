// Package worker relays audit outbox rows to Kafka. It runs alongside the
// HTTP server under the same errgroup and stops when the server context is
// cancelled.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"galang/internal/audit/store/postgres"
)

const (
	defaultBatchSize = 100
	defaultInterval  = time.Second
)

// Worker polls the outbox and produces unpublished events to the audit topic.
type Worker struct {
	outbox   *postgres.Store
	client   *kgo.Client
	topic    string
	logger   *slog.Logger
	interval time.Duration
}

// NewClient builds the Kafka producer for the relay.
func NewClient(brokers []string) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
}

func New(outbox *postgres.Store, client *kgo.Client, topic string, logger *slog.Logger) *Worker {
	return &Worker{
		outbox:   outbox,
		client:   client,
		topic:    topic,
		logger:   logger,
		interval: defaultInterval,
	}
}

// Run polls until ctx is cancelled. Relay failures are logged and retried on
// the next tick; rows stay unpublished until the produce succeeds.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.relayBatch(ctx); err != nil && ctx.Err() == nil {
				w.logger.ErrorContext(ctx, "audit relay failed", "error", err.Error())
			}
		}
	}
}

func (w *Worker) relayBatch(ctx context.Context) error {
	rows, err := w.outbox.FetchUnpublished(ctx, defaultBatchSize)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	records := make([]*kgo.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, &kgo.Record{
			Topic: w.topic,
			Key:   []byte(row.PartitionKey),
			Value: row.Payload,
		})
	}
	if err := w.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return w.outbox.MarkPublished(ctx, ids, time.Now().UTC())
}
