package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caldweld/TowerScoreBoardBot/pkg/logger"
)

// Store defines the persistence surface for player progress data. The merge
// coordinator is the sole writer of current state and the sole producer of
// history and snapshot rows; everything else reads.
type Store interface {
	// GetCurrent loads a player's current tier state. Returns (nil, nil)
	// when the player has never been observed.
	GetCurrent(ctx context.Context, playerKey string) (*CurrentState, error)

	// SaveMerged upserts the merged current-state row and appends a full
	// history snapshot in one transaction. The history append is suppressed
	// when the snapshot is byte-identical to the immediately preceding entry
	// for that player; the return value reports whether a row was appended.
	SaveMerged(ctx context.Context, state *CurrentState) (bool, error)

	// InsertStatsSnapshot appends one immutable stats row.
	InsertStatsSnapshot(ctx context.Context, snap *StatsSnapshot) error

	// LatestStatsSnapshot returns the most recent stats row for a player, or
	// (nil, nil) when none exists.
	LatestStatsSnapshot(ctx context.Context, playerKey string) (*StatsSnapshot, error)

	AllCurrent(ctx context.Context) ([]CurrentState, error)
	AllStatsSnapshots(ctx context.Context) ([]StatsSnapshot, error)
	HistoryForPlayer(ctx context.Context, playerKey string) ([]HistoryEntry, error)

	IsAdmin(ctx context.Context, playerKey string) (bool, error)
	AddAdmin(ctx context.Context, playerKey string) error
	RemoveAdmin(ctx context.Context, playerKey string) error
	ListAdmins(ctx context.Context) ([]string, error)

	Close()
}

// PGStore implements Store using pgxpool.
type PGStore struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
	now    func() time.Time
}

// Config holds database connection settings.
type Config struct {
	URI      string
	MinConns int32
	MaxConns int32
}

// NewPGStore creates a PGStore and verifies the connection.
func NewPGStore(ctx context.Context, cfg Config, l *logger.Logger) (*PGStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PGStore{pool: pool, logger: l, now: time.Now}, nil
}

// tierCols is the fixed t1..t18 column list shared by the three tier tables.
var tierCols = func() string {
	names := make([]string, NumTiers)
	for i := range names {
		names[i] = fmt.Sprintf("t%d", i+1)
	}
	return strings.Join(names, ", ")
}()

func tierPlaceholders(start int) string {
	ph := make([]string, NumTiers)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(ph, ", ")
}

func tierArgs(ts TierSet) []any {
	cols := ts.Columns()
	args := make([]any, NumTiers)
	for i, c := range cols {
		args[i] = c
	}
	return args
}

func scanTierCols() ([]string, []any) {
	cols := make([]string, NumTiers)
	dest := make([]any, NumTiers)
	for i := range cols {
		dest[i] = &cols[i]
	}
	return cols, dest
}

// GetCurrent loads a player's current tier state.
func (s *PGStore) GetCurrent(ctx context.Context, playerKey string) (*CurrentState, error) {
	query := fmt.Sprintf(
		`SELECT display_name, %s, last_updated FROM player_current WHERE player_key = $1`, tierCols)

	state := CurrentState{PlayerKey: playerKey}
	cols, dest := scanTierCols()
	args := append([]any{&state.DisplayName}, dest...)
	args = append(args, &state.LastUpdated)

	err := s.pool.QueryRow(ctx, query, playerKey).Scan(args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get current", err)
	}

	state.Tiers = TierSetFromColumns(cols)
	return &state, nil
}

// SaveMerged writes the merged state and its history snapshot atomically.
func (s *PGStore) SaveMerged(ctx context.Context, state *CurrentState) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, storageErr("begin", err)
	}
	defer tx.Rollback(ctx)

	upsert := fmt.Sprintf(`
		INSERT INTO player_current (player_key, display_name, %s, last_updated)
		VALUES ($1, $2, %s, $21)
		ON CONFLICT (player_key) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			%s,
			last_updated = EXCLUDED.last_updated
	`, tierCols, tierPlaceholders(3), tierUpdateSet())

	args := append([]any{state.PlayerKey, state.DisplayName}, tierArgs(state.Tiers)...)
	args = append(args, state.LastUpdated)
	if _, err := tx.Exec(ctx, upsert, args...); err != nil {
		return false, storageErr("upsert current", err)
	}

	// Dedup is only against the immediately preceding history entry, not the
	// full history.
	latest := fmt.Sprintf(`
		SELECT %s FROM player_history
		WHERE player_key = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1
	`, tierCols)

	cols, dest := scanTierCols()
	err = tx.QueryRow(ctx, latest, state.PlayerKey).Scan(dest...)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, storageErr("load latest history", err)
	}

	appended := false
	if errors.Is(err, pgx.ErrNoRows) || !state.Tiers.Equal(TierSetFromColumns(cols)) {
		insert := fmt.Sprintf(`
			INSERT INTO player_history (player_key, display_name, recorded_at, %s)
			VALUES ($1, $2, $3, %s)
		`, tierCols, tierPlaceholders(4))

		histArgs := append([]any{state.PlayerKey, state.DisplayName, state.LastUpdated}, tierArgs(state.Tiers)...)
		if _, err := tx.Exec(ctx, insert, histArgs...); err != nil {
			return false, storageErr("append history", err)
		}
		appended = true
	}

	if err := tx.Commit(ctx); err != nil {
		return false, storageErr("commit", err)
	}
	return appended, nil
}

func tierUpdateSet() string {
	parts := make([]string, NumTiers)
	for i := range parts {
		parts[i] = fmt.Sprintf("t%d = EXCLUDED.t%d", i+1, i+1)
	}
	return strings.Join(parts, ",\n\t\t\t")
}

// statCols is the fixed stat field column list for player_stats_snapshot.
var statCols = strings.Join(StatFieldNames, ", ")

// InsertStatsSnapshot appends one stats row. Snapshots are immutable; there
// is no conflict handling.
func (s *PGStore) InsertStatsSnapshot(ctx context.Context, snap *StatsSnapshot) error {
	ph := make([]string, len(StatFieldNames))
	args := []any{snap.PlayerKey, snap.DisplayName, snap.RecordedAt, nullable(snap.GameStarted)}
	for i, name := range StatFieldNames {
		ph[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, nullable(snap.Field(name)))
	}

	query := fmt.Sprintf(`
		INSERT INTO player_stats_snapshot (player_key, display_name, recorded_at, game_started, %s)
		VALUES ($1, $2, $3, $4, %s)
		RETURNING id
	`, statCols, strings.Join(ph, ", "))

	if err := s.pool.QueryRow(ctx, query, args...).Scan(&snap.ID); err != nil {
		return storageErr("insert stats snapshot", err)
	}
	return nil
}

func nullable(v string) any {
	if v == "" || v == "null" {
		return nil
	}
	return v
}

func scanStatsRow(row pgx.Row) (*StatsSnapshot, error) {
	snap := StatsSnapshot{Fields: make(map[string]string, len(StatFieldNames))}
	var gameStarted *string
	fields := make([]*string, len(StatFieldNames))

	dest := []any{&snap.ID, &snap.PlayerKey, &snap.DisplayName, &snap.RecordedAt, &gameStarted}
	for i := range fields {
		dest = append(dest, &fields[i])
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if gameStarted != nil {
		snap.GameStarted = *gameStarted
	}
	for i, name := range StatFieldNames {
		if fields[i] != nil {
			snap.Fields[name] = *fields[i]
		}
	}
	return &snap, nil
}

// LatestStatsSnapshot returns a player's most recent stats row.
func (s *PGStore) LatestStatsSnapshot(ctx context.Context, playerKey string) (*StatsSnapshot, error) {
	query := fmt.Sprintf(`
		SELECT id, player_key, display_name, recorded_at, game_started, %s
		FROM player_stats_snapshot
		WHERE player_key = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1
	`, statCols)

	snap, err := scanStatsRow(s.pool.QueryRow(ctx, query, playerKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("latest stats snapshot", err)
	}
	return snap, nil
}

// AllCurrent loads the current state of every player, for leaderboard views.
func (s *PGStore) AllCurrent(ctx context.Context) ([]CurrentState, error) {
	query := fmt.Sprintf(
		`SELECT player_key, display_name, %s, last_updated FROM player_current ORDER BY player_key`, tierCols)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, storageErr("all current", err)
	}
	defer rows.Close()

	var states []CurrentState
	for rows.Next() {
		var state CurrentState
		cols, dest := scanTierCols()
		args := append([]any{&state.PlayerKey, &state.DisplayName}, dest...)
		args = append(args, &state.LastUpdated)
		if err := rows.Scan(args...); err != nil {
			return nil, storageErr("scan current", err)
		}
		state.Tiers = TierSetFromColumns(cols)
		states = append(states, state)
	}
	return states, storageErr("all current", rows.Err())
}

// AllStatsSnapshots loads every stats row, for per-field leaderboards that
// rank by the maximum ever observed, not just the latest.
func (s *PGStore) AllStatsSnapshots(ctx context.Context) ([]StatsSnapshot, error) {
	query := fmt.Sprintf(`
		SELECT id, player_key, display_name, recorded_at, game_started, %s
		FROM player_stats_snapshot
		ORDER BY player_key, recorded_at
	`, statCols)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, storageErr("all stats snapshots", err)
	}
	defer rows.Close()

	var snaps []StatsSnapshot
	for rows.Next() {
		snap, err := scanStatsRow(rows)
		if err != nil {
			return nil, storageErr("scan stats snapshot", err)
		}
		snaps = append(snaps, *snap)
	}
	return snaps, storageErr("all stats snapshots", rows.Err())
}

// HistoryForPlayer loads a player's history snapshots in chronological order,
// for progress series.
func (s *PGStore) HistoryForPlayer(ctx context.Context, playerKey string) ([]HistoryEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, display_name, recorded_at, %s
		FROM player_history
		WHERE player_key = $1
		ORDER BY recorded_at, id
	`, tierCols)

	rows, err := s.pool.Query(ctx, query, playerKey)
	if err != nil {
		return nil, storageErr("history for player", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		entry := HistoryEntry{PlayerKey: playerKey}
		cols, dest := scanTierCols()
		args := append([]any{&entry.ID, &entry.DisplayName, &entry.RecordedAt}, dest...)
		if err := rows.Scan(args...); err != nil {
			return nil, storageErr("scan history", err)
		}
		entry.Tiers = TierSetFromColumns(cols)
		entries = append(entries, entry)
	}
	return entries, storageErr("history for player", rows.Err())
}

// IsAdmin reports membership in the admin flag set.
func (s *PGStore) IsAdmin(ctx context.Context, playerKey string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM admin_flags WHERE player_key = $1)`, playerKey).Scan(&exists)
	return exists, storageErr("is admin", err)
}

// AddAdmin grants the admin flag; adding an existing admin is a no-op.
func (s *PGStore) AddAdmin(ctx context.Context, playerKey string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO admin_flags (player_key) VALUES ($1) ON CONFLICT (player_key) DO NOTHING`, playerKey)
	return storageErr("add admin", err)
}

// RemoveAdmin revokes the admin flag.
func (s *PGStore) RemoveAdmin(ctx context.Context, playerKey string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM admin_flags WHERE player_key = $1`, playerKey)
	return storageErr("remove admin", err)
}

// ListAdmins returns all flagged player keys.
func (s *PGStore) ListAdmins(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT player_key FROM admin_flags ORDER BY player_key`)
	if err != nil {
		return nil, storageErr("list admins", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, storageErr("scan admin", err)
		}
		keys = append(keys, key)
	}
	return keys, storageErr("list admins", rows.Err())
}

// Close closes the pool.
func (s *PGStore) Close() {
	s.pool.Close()
}
