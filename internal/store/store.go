// Package store provides SQLite persistence for negwatch: the settings
// repository (display modes and other UI state), the negotiation history, and
// the local cache of server filter presets.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/negwatch/negwatch/internal/model"
)

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex // Protects all database operations
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so every pooled connection sees the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// createTables creates the required tables and indexes if they don't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS negotiations (
		run_id TEXT PRIMARY KEY,
		tournament_id TEXT NOT NULL,
		competitor TEXT NOT NULL,
		opponent TEXT NOT NULL,
		scenario TEXT,
		result TEXT,
		utilities TEXT,
		observed_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_negotiations_tournament ON negotiations(tournament_id);
	CREATE INDEX IF NOT EXISTS idx_negotiations_observed ON negotiations(observed_at DESC);

	CREATE TABLE IF NOT EXISTS filter_presets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		is_default INTEGER DEFAULT 0,
		payload TEXT NOT NULL,
		cached_at DATETIME NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SetSetting upserts a settings row.
// Thread-safe: acquires write lock.
func (s *Store) SetSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	return err
}

// GetSetting returns the stored value for key, or "" if absent.
// Thread-safe: acquires read lock.
func (s *Store) GetSetting(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SaveNegotiations stores finished negotiations, returning the count of new
// rows. Duplicates (by run_id) are silently ignored via INSERT OR IGNORE.
// Thread-safe: acquires write lock.
func (s *Store) SaveNegotiations(tournamentID string, negs []model.Negotiation) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(negs) == 0 {
		return 0, nil
	}

	stmt, err := s.db.Prepare(`
		INSERT OR IGNORE INTO negotiations (
			run_id, tournament_id, competitor, opponent, scenario, result,
			utilities, observed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	newCount := 0
	for _, n := range negs {
		if n.RunID == "" {
			continue
		}
		utilities, err := json.Marshal(n.Utilities)
		if err != nil {
			return newCount, err
		}
		observed := n.Observed
		if observed.IsZero() {
			observed = time.Now().UTC()
		}
		result, err := stmt.Exec(
			n.RunID,
			tournamentID,
			n.Competitor,
			n.Opponent,
			n.Scenario,
			n.Result,
			string(utilities),
			observed,
		)
		if err != nil {
			return newCount, err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return newCount, err
		}
		if affected > 0 {
			newCount++
		}
	}

	return newCount, nil
}

// GetNegotiations retrieves stored negotiations for a tournament, newest
// first. Thread-safe: acquires read lock.
func (s *Store) GetNegotiations(tournamentID string, limit int) ([]model.Negotiation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT run_id, competitor, opponent, scenario, result, utilities, observed_at
		FROM negotiations
		WHERE tournament_id = ?
		ORDER BY observed_at DESC
		LIMIT ?
	`, tournamentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var negs []model.Negotiation
	for rows.Next() {
		var n model.Negotiation
		var utilities string
		if err := rows.Scan(&n.RunID, &n.Competitor, &n.Opponent, &n.Scenario,
			&n.Result, &utilities, &n.Observed); err != nil {
			return nil, err
		}
		if utilities != "" {
			// A malformed utilities blob only loses the utilities column
			_ = json.Unmarshal([]byte(utilities), &n.Utilities)
		}
		negs = append(negs, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return negs, nil
}

// CachePresets replaces the local filter-preset cache with the given presets.
// Thread-safe: acquires write lock.
func (s *Store) CachePresets(presets []model.FilterPreset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM filter_presets"); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, p := range presets {
		payload, err := json.Marshal(p)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO filter_presets (id, name, is_default, payload, cached_at)
			VALUES (?, ?, ?, ?, ?)
		`, p.ID, p.Name, boolToInt(p.IsDefault), string(payload), now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CachedPresets returns the locally cached filter presets.
// Thread-safe: acquires read lock.
func (s *Store) CachedPresets() ([]model.FilterPreset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT payload FROM filter_presets ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []model.FilterPreset
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var p model.FilterPreset
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			continue // skip corrupt cache rows
		}
		presets = append(presets, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return presets, nil
}

// boolToInt converts a bool to an int for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
