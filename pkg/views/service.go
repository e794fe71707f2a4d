package views

import (
	"context"
	"fmt"

	"github.com/caldweld/TowerScoreBoardBot/pkg/store"
)

// Service loads rows from storage and applies the pure rankings.
type Service struct {
	store store.Store
}

// NewService creates a Service.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Leaderboard builds the requested ranking. selector is only consulted for
// KindTier (a tier like "T5") and KindStat (a known stats field name).
func (s *Service) Leaderboard(ctx context.Context, kind Kind, selector string) ([]Row, error) {
	switch kind {
	case KindBestTier, KindMaxWave, KindMaxCoins, KindTier:
		var tier int
		if kind == KindTier {
			var ok bool
			if tier, ok = ParseTier(selector); !ok {
				return nil, fmt.Errorf("tier selector %q must be T1..T%d", selector, store.NumTiers)
			}
		}
		states, err := s.store.AllCurrent(ctx)
		if err != nil {
			return nil, err
		}
		switch kind {
		case KindMaxWave:
			return RankMaxWave(states), nil
		case KindMaxCoins:
			return RankMaxCoins(states), nil
		case KindTier:
			return RankTier(states, tier), nil
		default:
			return RankBestTier(states), nil
		}
	case KindStat:
		if !knownStatField(selector) {
			return nil, fmt.Errorf("unknown stat field %q", selector)
		}
		snaps, err := s.store.AllStatsSnapshots(ctx)
		if err != nil {
			return nil, err
		}
		return RankStat(snaps, selector), nil
	default:
		return nil, fmt.Errorf("unknown leaderboard kind %q", kind)
	}
}

func knownStatField(name string) bool {
	for _, f := range store.StatFieldNames {
		if f == name {
			return true
		}
	}
	return false
}
