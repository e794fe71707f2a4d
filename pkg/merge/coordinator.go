// Package merge owns all writes to player progress state. Observations are
// applied under a strict monotonic-improvement policy: a stored field is only
// overwritten by a numerically greater observation, and every merge leaves an
// append-only trail in the history table.
package merge

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/caldweld/TowerScoreBoardBot/pkg/compare"
	"github.com/caldweld/TowerScoreBoardBot/pkg/logger"
	"github.com/caldweld/TowerScoreBoardBot/pkg/metrics"
	"github.com/caldweld/TowerScoreBoardBot/pkg/normalize"
	"github.com/caldweld/TowerScoreBoardBot/pkg/store"
	"github.com/caldweld/TowerScoreBoardBot/pkg/suffix"
)

// Coordinator serializes merges per player and is the sole writer of
// player_current, player_history, and player_stats_snapshot.
type Coordinator struct {
	store       store.Store
	locks       *KeyedLocks
	logger      *logger.Logger
	lockTimeout time.Duration
	now         func() time.Time
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(s store.Store, l *logger.Logger, lockTimeout time.Duration) *Coordinator {
	return &Coordinator{
		store:       s,
		locks:       NewKeyedLocks(),
		logger:      l,
		lockTimeout: lockTimeout,
		now:         time.Now,
	}
}

// TierResult reports the outcome of a tier merge per slot index. Nothing is
// silently dropped: every slot is either accepted or skipped, and a failed
// merge commits nothing.
type TierResult struct {
	Accepted        []int
	Skipped         []int
	State           store.TierSet
	HistoryAppended bool
}

// MergeTiers applies one observed 18-slot vector for a player. Merges for the
// same player are strictly serialized; the lock is taken only once the
// observation is ready, keeping hold time down to the storage transaction.
func (c *Coordinator) MergeTiers(ctx context.Context, playerKey, displayName string, observed store.TierSet) (*TierResult, error) {
	for i := range observed {
		observed[i].Coins = suffix.Normalize(observed[i].Coins)
	}

	release, err := c.locks.Acquire(ctx, playerKey, c.lockTimeout)
	if err != nil {
		if err == ErrLockTimeout {
			metrics.MergeLockTimeoutsTotal.Inc()
		}
		return nil, err
	}
	defer release()

	start := c.now()

	current, err := c.store.GetCurrent(ctx, playerKey)
	if err != nil {
		metrics.MergeStorageErrorsTotal.Inc()
		return nil, err
	}

	var baseline store.TierSet
	if current != nil {
		baseline = current.Tiers
	}

	merged, accepted, skipped := compare.TierSet(baseline, observed)

	state := &store.CurrentState{
		PlayerKey:   playerKey,
		DisplayName: displayName,
		Tiers:       merged,
		LastUpdated: c.now().UTC(),
	}

	appended, err := c.store.SaveMerged(ctx, state)
	if err != nil {
		metrics.MergeStorageErrorsTotal.Inc()
		return nil, err
	}

	metrics.MergeAcceptedSlotsTotal.Add(float64(len(accepted)))
	metrics.MergeSkippedSlotsTotal.Add(float64(len(skipped)))
	if appended {
		metrics.MergeHistoryAppendsTotal.Inc()
	} else {
		metrics.MergeHistoryDedupTotal.Inc()
	}
	metrics.MergeLatency.Observe(time.Since(start).Seconds())

	c.logger.Debug("tier merge complete",
		zap.String("player_key", playerKey),
		zap.Int("accepted", len(accepted)),
		zap.Bool("history_appended", appended))

	return &TierResult{
		Accepted:        accepted,
		Skipped:         skipped,
		State:           merged,
		HistoryAppended: appended,
	}, nil
}

// MergeStats normalizes and stores one stats observation. Snapshots are
// append-only and stored unconditionally; the improvement list is computed
// against the most recent prior snapshot for caller notification only. The
// per-player lock is shared with tier merges to keep interleaved uploads from
// one player easy to reason about.
func (c *Coordinator) MergeStats(ctx context.Context, playerKey, displayName string, fields map[string]string) ([]string, error) {
	snap := &store.StatsSnapshot{
		PlayerKey:   playerKey,
		DisplayName: displayName,
		RecordedAt:  c.now().UTC(),
		GameStarted: normalize.Date(fields["game_started"]),
		Fields:      make(map[string]string, len(store.StatFieldNames)),
	}
	for _, name := range store.StatFieldNames {
		if raw, ok := fields[name]; ok && raw != "" && raw != "null" {
			snap.Fields[name] = normalize.StatField(name, raw)
		}
	}

	release, err := c.locks.Acquire(ctx, playerKey, c.lockTimeout)
	if err != nil {
		if err == ErrLockTimeout {
			metrics.MergeLockTimeoutsTotal.Inc()
		}
		return nil, err
	}
	defer release()

	prev, err := c.store.LatestStatsSnapshot(ctx, playerKey)
	if err != nil {
		metrics.MergeStorageErrorsTotal.Inc()
		return nil, err
	}

	improved := compare.Stats(prev, snap)

	if err := c.store.InsertStatsSnapshot(ctx, snap); err != nil {
		metrics.MergeStorageErrorsTotal.Inc()
		return nil, err
	}
	metrics.StatsSnapshotsTotal.Inc()

	c.logger.Debug("stats snapshot stored",
		zap.String("player_key", playerKey),
		zap.Strings("improved", improved))

	return improved, nil
}
