// Package store persists board telemetry -- renewal and player-activity
// events -- to Postgres. It never persists board state itself: the board
// is in-memory only, by design (see SPEC_FULL.md's telemetry section).
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// recentLimit bounds how many rows Stats pulls back for the admin surface.
const recentLimit = 10

const createTableSQL = `
CREATE TABLE IF NOT EXISTS board_renewal (
	id            UUID PRIMARY KEY,
	occurred_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	rows          INT NOT NULL,
	cols          INT NOT NULL,
	pairs_cleared INT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_board_renewal_occurred_at ON board_renewal(occurred_at);
CREATE TABLE IF NOT EXISTS player_activity (
	player_id  TEXT PRIMARY KEY,
	first_seen TIMESTAMPTZ NOT NULL DEFAULT now(),
	flips      INT NOT NULL DEFAULT 0,
	matches    INT NOT NULL DEFAULT 0,
	last_seen  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store records telemetry in Postgres. A nil *Store is valid and every
// method on it is a no-op, mirroring the teacher's "pass an empty
// DATABASE_URL to disable persistence" convention.
type Store struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// New connects to Postgres and ensures the telemetry tables exist. If
// databaseURL is empty, New returns (nil, nil), and every method on that
// nil *Store (RenewalOccurred, PlayerSeen, Stats, Close) is a no-op.
func New(ctx context.Context, databaseURL string, log *slog.Logger) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	if log == nil {
		log = slog.Default()
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info("connected to Postgres", "tag", "store")
	return &Store{pool: pool, log: log}, nil
}

// Close closes the connection pool. Safe to call on a nil *Store.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// RenewalOccurred implements board.Telemetry. Failures are logged, never
// returned: telemetry must never be able to fail a board operation.
func (s *Store) RenewalOccurred(rows, cols, pairsCleared int) {
	if s == nil || s.pool == nil {
		return
	}
	ctx := context.Background()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO board_renewal (id, rows, cols, pairs_cleared) VALUES ($1, $2, $3, $4)`,
		uuid.New(), rows, cols, pairsCleared)
	if err != nil {
		s.log.Warn("failed to record board renewal", "tag", "store", "error", err)
	}
}

// PlayerSeen implements board.Telemetry.
func (s *Store) PlayerSeen(playerID string, flips, matches int) {
	if s == nil || s.pool == nil {
		return
	}
	ctx := context.Background()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO player_activity (player_id, first_seen, flips, matches, last_seen)
		VALUES ($1, now(), $2, $3, now())
		ON CONFLICT (player_id) DO UPDATE SET flips = $2, matches = $3, last_seen = now()`,
		playerID, flips, matches)
	if err != nil {
		s.log.Warn("failed to record player activity", "tag", "store", "error", err)
	}
}

// RenewalRecord is one row of the board_renewal history.
type RenewalRecord struct {
	OccurredAt   time.Time `json:"occurred_at"`
	Rows         int       `json:"rows"`
	Cols         int       `json:"cols"`
	PairsCleared int       `json:"pairs_cleared"`
}

// PlayerActivityRecord is one row of the player_activity table.
type PlayerActivityRecord struct {
	PlayerID  string    `json:"player_id"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	Flips     int       `json:"flips"`
	Matches   int       `json:"matches"`
}

// Stats is the telemetry snapshot served by the admin surface: aggregate
// counters plus the most recent renewal/activity rows.
type Stats struct {
	RenewalCount   int                    `json:"renewal_count"`
	PlayerCount    int                    `json:"player_count"`
	TotalFlips     int                    `json:"total_flips"`
	TotalMatches   int                    `json:"total_matches"`
	RecentRenewals []RenewalRecord        `json:"recent_renewals"`
	RecentActivity []PlayerActivityRecord `json:"recent_activity"`
}

// Stats reports aggregate counters plus the most recent rows. Returns a
// zero Stats on a nil *Store.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if s == nil || s.pool == nil {
		return st, nil
	}
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM board_renewal`).Scan(&st.RenewalCount); err != nil {
		return st, err
	}
	row := s.pool.QueryRow(ctx, `SELECT count(*), coalesce(sum(flips), 0), coalesce(sum(matches), 0) FROM player_activity`)
	if err := row.Scan(&st.PlayerCount, &st.TotalFlips, &st.TotalMatches); err != nil {
		return st, err
	}

	renewalRows, err := s.pool.Query(ctx,
		`SELECT occurred_at, rows, cols, pairs_cleared FROM board_renewal ORDER BY occurred_at DESC LIMIT $1`, recentLimit)
	if err != nil {
		return st, err
	}
	defer renewalRows.Close()
	for renewalRows.Next() {
		var r RenewalRecord
		if err := renewalRows.Scan(&r.OccurredAt, &r.Rows, &r.Cols, &r.PairsCleared); err != nil {
			return st, err
		}
		st.RecentRenewals = append(st.RecentRenewals, r)
	}
	if err := renewalRows.Err(); err != nil {
		return st, err
	}

	activityRows, err := s.pool.Query(ctx,
		`SELECT player_id, first_seen, last_seen, flips, matches FROM player_activity ORDER BY last_seen DESC LIMIT $1`, recentLimit)
	if err != nil {
		return st, err
	}
	defer activityRows.Close()
	for activityRows.Next() {
		var a PlayerActivityRecord
		if err := activityRows.Scan(&a.PlayerID, &a.FirstSeen, &a.LastSeen, &a.Flips, &a.Matches); err != nil {
			return st, err
		}
		st.RecentActivity = append(st.RecentActivity, a)
	}
	if err := activityRows.Err(); err != nil {
		return st, err
	}

	return st, nil
}
