package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caldweld/TowerScoreBoardBot/pkg/cache"
	"github.com/caldweld/TowerScoreBoardBot/pkg/logger"
	"github.com/caldweld/TowerScoreBoardBot/pkg/store"
	"github.com/caldweld/TowerScoreBoardBot/pkg/views"
)

// fakeStore serves canned rows for API tests.
type fakeStore struct {
	current   map[string]*store.CurrentState
	snapshots []store.StatsSnapshot
	history   map[string][]store.HistoryEntry
	calls     int
}

func (f *fakeStore) GetCurrent(ctx context.Context, playerKey string) (*store.CurrentState, error) {
	return f.current[playerKey], nil
}

func (f *fakeStore) SaveMerged(ctx context.Context, state *store.CurrentState) (bool, error) {
	return false, nil
}

func (f *fakeStore) InsertStatsSnapshot(ctx context.Context, snap *store.StatsSnapshot) error {
	return nil
}

func (f *fakeStore) LatestStatsSnapshot(ctx context.Context, playerKey string) (*store.StatsSnapshot, error) {
	var latest *store.StatsSnapshot
	for i := range f.snapshots {
		s := f.snapshots[i]
		if s.PlayerKey != playerKey {
			continue
		}
		if latest == nil || s.RecordedAt.After(latest.RecordedAt) {
			latest = &s
		}
	}
	return latest, nil
}

func (f *fakeStore) AllCurrent(ctx context.Context) ([]store.CurrentState, error) {
	f.calls++
	out := make([]store.CurrentState, 0, len(f.current))
	for _, st := range f.current {
		out = append(out, *st)
	}
	return out, nil
}

func (f *fakeStore) AllStatsSnapshots(ctx context.Context) ([]store.StatsSnapshot, error) {
	return f.snapshots, nil
}

func (f *fakeStore) HistoryForPlayer(ctx context.Context, playerKey string) ([]store.HistoryEntry, error) {
	return f.history[playerKey], nil
}

func (f *fakeStore) IsAdmin(ctx context.Context, playerKey string) (bool, error) { return false, nil }
func (f *fakeStore) AddAdmin(ctx context.Context, playerKey string) error        { return nil }
func (f *fakeStore) RemoveAdmin(ctx context.Context, playerKey string) error     { return nil }
func (f *fakeStore) ListAdmins(ctx context.Context) ([]string, error)            { return nil, nil }
func (f *fakeStore) Close()                                                      {}

func newTestAPI(t *testing.T, fs *fakeStore, c cache.Cache) *httptest.Server {
	t.Helper()
	l, err := logger.New(logger.Config{Level: "error", ServiceName: "test"})
	require.NoError(t, err)

	api := NewAPI(fs, views.NewService(fs), c, l)
	mux := http.NewServeMux()
	api.register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func seededStore() *fakeStore {
	var tiers store.TierSet
	tiers[0] = store.TierSlot{Wave: 4841, Coins: "15.03 M"}
	tiers[4] = store.TierSlot{Wave: 120, Coins: "2.1 K"}

	return &fakeStore{
		current: map[string]*store.CurrentState{
			"889900": {
				PlayerKey:   "889900",
				DisplayName: "alpha",
				Tiers:       tiers,
				LastUpdated: time.Date(2025, 5, 22, 10, 0, 0, 0, time.UTC),
			},
		},
		snapshots: []store.StatsSnapshot{
			{
				PlayerKey:   "889900",
				DisplayName: "alpha",
				RecordedAt:  time.Date(2025, 5, 22, 10, 0, 0, 0, time.UTC),
				GameStarted: "22-05-2025",
				Fields:      map[string]string{"damage_dealt": "3.5 T"},
			},
		},
		history: map[string][]store.HistoryEntry{
			"889900": {
				{PlayerKey: "889900", RecordedAt: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
					Tiers: store.TierSet{{Wave: 100, Coins: "1 M"}}},
				{PlayerKey: "889900", RecordedAt: time.Date(2025, 5, 22, 0, 0, 0, 0, time.UTC),
					Tiers: store.TierSet{{Wave: 4841, Coins: "15.03 M"}}},
			},
		},
	}
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestPlayerTiersEndpoint(t *testing.T) {
	srv := newTestAPI(t, seededStore(), nil)

	var resp tiersResponse
	status := getJSON(t, srv.URL+"/api/players/889900/tiers", &resp)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "alpha", resp.DisplayName)
	require.Len(t, resp.Tiers, 2)
	assert.Equal(t, 1, resp.Tiers[0].Tier)
	assert.Equal(t, 4841, resp.Tiers[0].Wave)
	assert.Equal(t, 5, resp.Tiers[1].Tier)
}

func TestPlayerTiersNotFound(t *testing.T) {
	srv := newTestAPI(t, seededStore(), nil)
	status := getJSON(t, srv.URL+"/api/players/unknown/tiers", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPlayerStatsEndpoint(t *testing.T) {
	srv := newTestAPI(t, seededStore(), nil)

	var resp statsResponse
	status := getJSON(t, srv.URL+"/api/players/889900/stats", &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "22-05-2025", resp.GameStarted)
	assert.Equal(t, "3.5 T", resp.Fields["damage_dealt"])
}

func TestPlayerProgressEndpoint(t *testing.T) {
	srv := newTestAPI(t, seededStore(), nil)

	var resp progressResponse
	status := getJSON(t, srv.URL+"/api/players/889900/progress?tier=T1", &resp)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, resp.Points, 2)
	assert.Equal(t, 100, resp.Points[0].Wave)
	assert.Equal(t, 4841, resp.Points[1].Wave)
}

func TestPlayerProgressBadTier(t *testing.T) {
	srv := newTestAPI(t, seededStore(), nil)
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/players/889900/progress?tier=T99", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/players/889900/progress", nil))
}

func TestLeaderboardEndpoint(t *testing.T) {
	srv := newTestAPI(t, seededStore(), nil)

	var rows []views.Row
	status := getJSON(t, srv.URL+"/api/leaderboard?kind=wave", &rows)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, rows, 1)
	assert.Equal(t, "889900", rows[0].PlayerKey)
	assert.Equal(t, 4841, rows[0].Wave)
}

func TestLeaderboardPerTier(t *testing.T) {
	srv := newTestAPI(t, seededStore(), nil)

	var rows []views.Row
	status := getJSON(t, srv.URL+"/api/leaderboard?kind=tier&tier=T5", &rows)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, rows, 1)
	assert.Equal(t, "889900", rows[0].PlayerKey)
	assert.Equal(t, 5, rows[0].Tier)
	assert.Equal(t, 120, rows[0].Wave)
	assert.Equal(t, "2.1 K", rows[0].Coins)

	// A tier nobody has touched is an empty board, not an error.
	status = getJSON(t, srv.URL+"/api/leaderboard?kind=tier&tier=T9", &rows)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, rows)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/leaderboard?kind=tier&tier=T99", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/leaderboard?kind=tier", nil))
}

func TestLeaderboardUnknownStatField(t *testing.T) {
	srv := newTestAPI(t, seededStore(), nil)
	status := getJSON(t, srv.URL+"/api/leaderboard?kind=stat&field=nope", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLeaderboardUsesCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := cache.NewRedisCache(client, "lb:", time.Minute)

	fs := seededStore()
	srv := newTestAPI(t, fs, c)

	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/leaderboard?kind=best", nil))
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/leaderboard?kind=best", nil))

	// Second request must be served from the cache without touching storage.
	assert.Equal(t, 1, fs.calls)
}
