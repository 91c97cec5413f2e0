package service

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"

	id "galang/pkg/domain"
	dErrors "galang/pkg/domain-errors"
)

// CampaignTx is the per-campaign serialization boundary. Everything that
// moves money for a campaign — applying a confirmed donation, checking and
// reserving a withdrawal — runs inside RunInCampaignTx so two concurrent
// mutations of the same campaign never interleave, while different campaigns
// proceed in parallel.
//
// The in-memory implementation below shards mutexes by campaign ID. The
// postgres implementation (wired in cmd/server) opens a transaction and takes
// a FOR UPDATE row lock on the campaign.
type CampaignTx interface {
	RunInCampaignTx(ctx context.Context, campaignID id.CampaignID, fn func(ctx context.Context) error) error
}

const numTxShards = 128

const defaultTxTimeout = 5 * time.Second

// ShardedTx serializes per-campaign work on a fixed pool of mutexes. Two
// campaigns may share a shard; that costs throughput, never correctness.
type ShardedTx struct {
	shards  [numTxShards]sync.Mutex
	timeout time.Duration
}

func NewShardedTx() *ShardedTx {
	return &ShardedTx{timeout: defaultTxTimeout}
}

func (t *ShardedTx) RunInCampaignTx(ctx context.Context, campaignID id.CampaignID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	shard := shardFor(campaignID)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Re-check after acquiring the lock; a caller that waited past its
	// deadline must not start mutating.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

func shardFor(campaignID id.CampaignID) int {
	h := fnv.New32a()
	raw := uuid.UUID(campaignID)
	_, _ = h.Write(raw[:])
	return int(h.Sum32() % numTxShards)
}
