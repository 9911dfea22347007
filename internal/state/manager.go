// Package state persists scan pass history.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Pass statuses
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Manager handles pass-history persistence
type Manager struct {
	db *sql.DB
}

// PassRecord represents one completed scan pass
type PassRecord struct {
	ID           int64
	RunID        string
	RSE          string
	StartTime    time.Time
	EndTime      time.Time
	Status       string // "success" or "failed"
	Scanned      int
	Reported     int
	Bad          int
	Unregistered int
	Error        string
}

// NewManager opens (or creates) the pass-history database under dataDir
func NewManager(dataDir string) (*Manager, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cachereport.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection prevents "database is locked" errors
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	manager := &Manager{db: db}
	if err := manager.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return manager, nil
}

func (m *Manager) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS passes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		rse TEXT NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		scanned INTEGER DEFAULT 0,
		reported INTEGER DEFAULT 0,
		bad INTEGER DEFAULT 0,
		unregistered INTEGER DEFAULT 0,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_passes_rse_time ON passes(rse, start_time DESC);
	CREATE INDEX IF NOT EXISTS idx_passes_status ON passes(status);
	`

	_, err := m.db.Exec(schema)
	return err
}

// SavePass records a completed scan pass
func (m *Manager) SavePass(record PassRecord) error {
	if record.Status != StatusSuccess && record.Status != StatusFailed {
		return fmt.Errorf("invalid status: %s", record.Status)
	}

	query := `
		INSERT INTO passes (run_id, rse, start_time, end_time, status, scanned, reported, bad, unregistered, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := m.db.Exec(query,
		record.RunID,
		record.RSE,
		record.StartTime,
		record.EndTime,
		record.Status,
		record.Scanned,
		record.Reported,
		record.Bad,
		record.Unregistered,
		record.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save pass record: %w", err)
	}

	return nil
}

const passColumns = "id, run_id, rse, start_time, end_time, status, scanned, reported, bad, unregistered, error"

func scanPass(row interface{ Scan(...any) error }) (PassRecord, error) {
	var record PassRecord
	err := row.Scan(
		&record.ID,
		&record.RunID,
		&record.RSE,
		&record.StartTime,
		&record.EndTime,
		&record.Status,
		&record.Scanned,
		&record.Reported,
		&record.Bad,
		&record.Unregistered,
		&record.Error,
	)
	return record, err
}

// GetHistory retrieves recent passes for an RSE, newest first
func (m *Manager) GetHistory(rse string, limit int) ([]PassRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM passes
		WHERE rse = ?
		ORDER BY start_time DESC
		LIMIT ?
	`, passColumns)

	rows, err := m.db.Query(query, rse, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []PassRecord
	for rows.Next() {
		record, err := scanPass(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// GetLastSuccess retrieves the most recent successful pass for an RSE, or nil
// when none exists
func (m *Manager) GetLastSuccess(rse string) (*PassRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM passes
		WHERE rse = ? AND status = ?
		ORDER BY start_time DESC
		LIMIT 1
	`, passColumns)

	record, err := scanPass(m.db.QueryRow(query, rse, StatusSuccess))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last success: %w", err)
	}

	return &record, nil
}

// Close closes the database
func (m *Manager) Close() error {
	return m.db.Close()
}
