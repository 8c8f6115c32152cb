// Package persistence provides SQLite-based storage for completed
// simulation runs and the leaderboard built from them.
package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/ecosphere/internal/eco"
)

// DB wraps a SQLite connection for run result storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	// modernc's driver takes pragmas in _pragma=name(value) form.
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		player TEXT NOT NULL DEFAULT '',
		score INTEGER NOT NULL,
		xp INTEGER NOT NULL,
		biodiversity REAL NOT NULL,
		energy_flow INTEGER NOT NULL,
		stability INTEGER NOT NULL,
		species_count INTEGER NOT NULL,
		achievements_json TEXT NOT NULL,
		finished_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_score ON runs(score);
	CREATE INDEX IF NOT EXISTS idx_runs_finished_at ON runs(finished_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RunRow is one persisted run, as stored and as served on the leaderboard.
type RunRow struct {
	ID           string    `db:"id" json:"id"`
	Player       string    `db:"player" json:"player,omitempty"`
	Score        int       `db:"score" json:"score"`
	XP           int       `db:"xp" json:"xp"`
	Biodiversity float64   `db:"biodiversity" json:"biodiversity"`
	EnergyFlow   int       `db:"energy_flow" json:"energy_flow"`
	Stability    int       `db:"stability" json:"stability"`
	SpeciesCount int       `db:"species_count" json:"species_count"`
	Achievements []string  `db:"-" json:"achievements"`
	FinishedAt   time.Time `db:"-" json:"finished_at"`

	AchievementsJSON string `db:"achievements_json" json:"-"`
	FinishedAtRaw    string `db:"finished_at" json:"-"`
}

// SaveRun stores a completed run and returns its assigned id.
func (db *DB) SaveRun(player string, result eco.RunResult) (string, error) {
	id := uuid.NewString()
	achJSON, err := json.Marshal(result.Achievements)
	if err != nil {
		return "", fmt.Errorf("encode achievements: %w", err)
	}

	_, err = db.conn.Exec(`INSERT INTO runs
		(id, player, score, xp, biodiversity, energy_flow, stability,
		 species_count, achievements_json, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, player, result.Score, result.XP, result.Biodiversity,
		result.EnergyFlow, result.Stability, result.SpeciesCount,
		string(achJSON), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// Leaderboard returns the top runs by score, best first.
func (db *DB) Leaderboard(limit int) ([]RunRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []RunRow
	err := db.conn.Select(&rows,
		`SELECT * FROM runs ORDER BY score DESC, finished_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	for i := range rows {
		if err := decodeRow(&rows[i]); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// RecentRuns returns the latest runs, newest first.
func (db *DB) RecentRuns(limit int) ([]RunRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []RunRow
	err := db.conn.Select(&rows,
		`SELECT * FROM runs ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	for i := range rows {
		if err := decodeRow(&rows[i]); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func decodeRow(row *RunRow) error {
	if err := json.Unmarshal([]byte(row.AchievementsJSON), &row.Achievements); err != nil {
		return fmt.Errorf("decode achievements for run %s: %w", row.ID, err)
	}
	t, err := time.Parse(time.RFC3339, row.FinishedAtRaw)
	if err != nil {
		return fmt.Errorf("decode timestamp for run %s: %w", row.ID, err)
	}
	row.FinishedAt = t
	return nil
}
