package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/caldweld/TowerScoreBoardBot/pkg/cache"
	"github.com/caldweld/TowerScoreBoardBot/pkg/logger"
	"github.com/caldweld/TowerScoreBoardBot/pkg/store"
	"github.com/caldweld/TowerScoreBoardBot/pkg/views"
)

// API serves the read-only player endpoints.
type API struct {
	store  store.Store
	views  *views.Service
	cache  cache.Cache
	logger *logger.Logger
}

// NewAPI wires the read API over storage with an optional response cache.
func NewAPI(s store.Store, v *views.Service, c cache.Cache, l *logger.Logger) *API {
	if c == nil {
		c = cache.Noop{}
	}
	return &API{store: s, views: v, cache: c, logger: l}
}

func (a *API) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/players/{key}/tiers", a.handleTiers)
	mux.HandleFunc("GET /api/players/{key}/stats", a.handleStats)
	mux.HandleFunc("GET /api/players/{key}/progress", a.handleProgress)
	mux.HandleFunc("GET /api/leaderboard", a.handleLeaderboard)
}

type tierEntry struct {
	Tier  int    `json:"tier"`
	Wave  int    `json:"wave"`
	Coins string `json:"coins"`
}

type tiersResponse struct {
	PlayerKey   string      `json:"player_key"`
	DisplayName string      `json:"display_name"`
	LastUpdated time.Time   `json:"last_updated"`
	Tiers       []tierEntry `json:"tiers"`
}

func (a *API) handleTiers(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	state, err := a.store.GetCurrent(r.Context(), key)
	if err != nil {
		a.serverError(w, "load current state", err)
		return
	}
	if state == nil {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}

	resp := tiersResponse{
		PlayerKey:   state.PlayerKey,
		DisplayName: state.DisplayName,
		LastUpdated: state.LastUpdated,
	}
	for i, slot := range state.Tiers {
		if slot.IsZero() {
			continue
		}
		resp.Tiers = append(resp.Tiers, tierEntry{Tier: i + 1, Wave: slot.Wave, Coins: slot.Coins})
	}

	writeJSON(w, http.StatusOK, resp)
}

type statsResponse struct {
	PlayerKey   string            `json:"player_key"`
	DisplayName string            `json:"display_name"`
	RecordedAt  time.Time         `json:"recorded_at"`
	GameStarted string            `json:"game_started,omitempty"`
	Fields      map[string]string `json:"fields"`
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	snap, err := a.store.LatestStatsSnapshot(r.Context(), key)
	if err != nil {
		a.serverError(w, "load stats snapshot", err)
		return
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "no stats recorded for player")
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		PlayerKey:   snap.PlayerKey,
		DisplayName: snap.DisplayName,
		RecordedAt:  snap.RecordedAt,
		GameStarted: snap.GameStarted,
		Fields:      snap.Fields,
	})
}

type progressPoint struct {
	RecordedAt time.Time `json:"recorded_at"`
	Wave       int       `json:"wave"`
	Coins      string    `json:"coins"`
}

type progressResponse struct {
	PlayerKey string          `json:"player_key"`
	Tier      int             `json:"tier"`
	Points    []progressPoint `json:"points"`
}

// handleProgress returns the wave/coin series for one tier out of the history
// table, oldest first, for progress graphs.
func (a *API) handleProgress(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	tier, ok := views.ParseTier(r.URL.Query().Get("tier"))
	if !ok {
		writeError(w, http.StatusBadRequest, "tier must be T1..T18")
		return
	}

	entries, err := a.store.HistoryForPlayer(r.Context(), key)
	if err != nil {
		a.serverError(w, "load history", err)
		return
	}

	resp := progressResponse{PlayerKey: key, Tier: tier, Points: []progressPoint{}}
	for _, e := range entries {
		slot := e.Tiers[tier-1]
		if slot.IsZero() {
			continue
		}
		resp.Points = append(resp.Points, progressPoint{
			RecordedAt: e.RecordedAt,
			Wave:       slot.Wave,
			Coins:      slot.Coins,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	kind := views.Kind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = views.KindBestTier
	}
	selector := r.URL.Query().Get("field")
	if kind == views.KindTier {
		selector = r.URL.Query().Get("tier")
	}

	cacheKey := string(kind)
	if selector != "" {
		cacheKey += ":" + selector
	}

	if payload, err := a.cache.Get(r.Context(), cacheKey); err != nil {
		a.logger.Warn("leaderboard cache read failed", zap.Error(err))
	} else if payload != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(payload)
		return
	}

	rows, err := a.views.Leaderboard(r.Context(), kind, selector)
	if err != nil {
		var storageErr *store.StorageError
		if errors.As(err, &storageErr) {
			a.serverError(w, "build leaderboard", err)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		a.serverError(w, "encode leaderboard", err)
		return
	}

	if err := a.cache.Set(r.Context(), cacheKey, payload); err != nil {
		a.logger.Warn("leaderboard cache write failed", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

func (a *API) serverError(w http.ResponseWriter, op string, err error) {
	a.logger.Error("api request failed", err, zap.String("op", op))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
