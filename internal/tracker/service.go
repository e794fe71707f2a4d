// Package tracker implements the upload contract exposed to the chat front
// end: ingest a screenshot's extraction, merge it, and report exactly what
// happened. An upload that improves nothing is still answered with an explicit
// "no improvement" result, never dropped.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/caldweld/TowerScoreBoardBot/pkg/extract"
	"github.com/caldweld/TowerScoreBoardBot/pkg/logger"
	"github.com/caldweld/TowerScoreBoardBot/pkg/merge"
	"github.com/caldweld/TowerScoreBoardBot/pkg/metrics"
	"github.com/caldweld/TowerScoreBoardBot/pkg/parser"
	"github.com/caldweld/TowerScoreBoardBot/pkg/store"
	"github.com/caldweld/TowerScoreBoardBot/pkg/views"
)

// ErrNotFound is returned when a player has never been observed.
var ErrNotFound = errors.New("tracker: player not found")

// ValidationError marks an upload as structurally unusable: wrong screenshot,
// low extraction confidence, or a malformed field map. Nothing is persisted
// and redelivery would fail the same way.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid upload: " + e.Reason
}

// IsValidationError reports whether err is a rejection rather than a failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UploadResult is the per-upload outcome reported back to the front end.
type UploadResult struct {
	Kind           extract.Kind
	Accepted       []int
	Skipped        []int
	NoImprovement  bool
	ImprovedFields []string
	Summary        map[string]string
}

// Service ties extraction, merging, and views together.
type Service struct {
	merger        *merge.Coordinator
	store         store.Store
	views         *views.Service
	extractor     extract.Client
	minConfidence float64
	logger        *logger.Logger
}

// NewService creates a Service. extractor is only consulted for events that
// arrive without an inline extraction payload.
func NewService(m *merge.Coordinator, s store.Store, v *views.Service, e extract.Client, minConfidence float64, l *logger.Logger) *Service {
	return &Service{
		merger:        m,
		store:         s,
		views:         v,
		extractor:     e,
		minConfidence: minConfidence,
		logger:        l,
	}
}

// IngestUpload processes one upload event end to end: obtain the extraction,
// validate it, and dispatch on the screenshot kind.
func (s *Service) IngestUpload(ctx context.Context, event parser.UploadEvent) (*UploadResult, error) {
	result := event.Extraction
	if result == nil {
		if s.extractor == nil {
			return nil, &ValidationError{Reason: "no extraction payload and no extractor configured"}
		}
		start := time.Now()
		r, err := s.extractor.Extract(ctx, event.ImageURL)
		if err != nil {
			metrics.ExtractFailuresTotal.Inc()
			return nil, fmt.Errorf("extraction failed: %w", err)
		}
		metrics.ExtractLatency.Observe(time.Since(start).Seconds())
		result = r
	}

	if result.Kind == extract.KindInvalid {
		reason := result.Reason
		if reason == "" {
			reason = "not a recognized game screenshot"
		}
		return nil, &ValidationError{Reason: reason}
	}
	if result.Confidence < s.minConfidence {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("extraction confidence %.2f below threshold %.2f", result.Confidence, s.minConfidence),
		}
	}

	switch result.Kind {
	case extract.KindTier:
		return s.IngestTierUpload(ctx, event.PlayerKey, event.DisplayName, result.Tiers)
	case extract.KindStats:
		return s.IngestStatsUpload(ctx, event.PlayerKey, event.DisplayName, result.Stats)
	default:
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown screenshot kind %q", result.Kind)}
	}
}

// IngestTierUpload merges one tier-screen extraction. Summary fields are
// carried through to the result unchanged.
func (s *Service) IngestTierUpload(ctx context.Context, playerKey, displayName string, raw *extract.TierExtraction) (*UploadResult, error) {
	if raw == nil || len(raw.Tiers) == 0 {
		return nil, &ValidationError{Reason: "tier upload carries no tier entries"}
	}

	var observed store.TierSet
	for n, obs := range raw.Tiers {
		if n < 1 || n > store.NumTiers {
			return nil, &ValidationError{Reason: fmt.Sprintf("tier number %d out of range", n)}
		}
		if obs.Wave < 0 {
			return nil, &ValidationError{Reason: fmt.Sprintf("negative wave on tier %d", n)}
		}
		observed[n-1] = store.TierSlot{Wave: obs.Wave, Coins: obs.Coins}
	}

	res, err := s.merger.MergeTiers(ctx, playerKey, displayName, observed)
	if err != nil {
		return nil, err
	}

	s.logger.Info("tier upload processed",
		zap.String("player_key", playerKey),
		zap.Int("accepted", len(res.Accepted)),
		zap.Int("skipped", len(res.Skipped)))

	return &UploadResult{
		Kind:          extract.KindTier,
		Accepted:      res.Accepted,
		Skipped:       res.Skipped,
		NoImprovement: len(res.Accepted) == 0,
		Summary:       raw.Summary,
	}, nil
}

// IngestStatsUpload stores one stats-screen extraction and reports which
// fields improved on the previous snapshot.
func (s *Service) IngestStatsUpload(ctx context.Context, playerKey, displayName string, raw *extract.StatsExtraction) (*UploadResult, error) {
	if raw == nil || len(*raw) == 0 {
		return nil, &ValidationError{Reason: "stats upload carries no fields"}
	}

	improved, err := s.merger.MergeStats(ctx, playerKey, displayName, map[string]string(*raw))
	if err != nil {
		return nil, err
	}

	s.logger.Info("stats upload processed",
		zap.String("player_key", playerKey),
		zap.Int("improved_fields", len(improved)))

	return &UploadResult{
		Kind:           extract.KindStats,
		ImprovedFields: improved,
		NoImprovement:  len(improved) == 0,
	}, nil
}

// GetPlayerTiers returns a player's current tier state.
func (s *Service) GetPlayerTiers(ctx context.Context, playerKey string) (*store.CurrentState, error) {
	state, err := s.store.GetCurrent(ctx, playerKey)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrNotFound
	}
	return state, nil
}

// GetLeaderboard returns the requested ranking. tierOrField selects the tier
// for views.KindTier and the stats field for views.KindStat.
func (s *Service) GetLeaderboard(ctx context.Context, kind views.Kind, tierOrField string) ([]views.Row, error) {
	return s.views.Leaderboard(ctx, kind, tierOrField)
}
