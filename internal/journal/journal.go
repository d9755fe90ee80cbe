package journal

// Package journal persists the terminal outcome of each item so a
// finished batch can be inspected after the process exits. The pipeline
// runs fine without one; consumers opt in.

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/romsavior/romsavior/internal/model"
)

// Store is a SQLite-backed journal of item outcomes.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id TEXT NOT NULL,
		relative_path TEXT NOT NULL,
		source_url TEXT NOT NULL,
		status TEXT NOT NULL,
		step TEXT,
		download_ok INTEGER NOT NULL,
		convert_ok INTEGER NOT NULL,
		local_file TEXT,
		finished_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_items_finished_at ON items(finished_at);
	CREATE INDEX IF NOT EXISTS idx_items_relative_path ON items(relative_path);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record writes one item's terminal state.
func (s *Store) Record(it *model.Item) error {
	query := `
	INSERT INTO items (item_id, relative_path, source_url, status, step, download_ok, convert_ok, local_file, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		it.ID, it.RelativePath, it.SourceURL,
		it.Status().String(), it.Step(),
		boolInt(it.DownloadSucceeded()), boolInt(it.ConvertSucceeded()),
		it.LocalFile(), time.Now())
	if err != nil {
		return fmt.Errorf("record item: %w", err)
	}
	return nil
}

// Outcome is one journaled row.
type Outcome struct {
	ItemID       string
	RelativePath string
	SourceURL    string
	Status       string
	Step         string
	DownloadOK   bool
	ConvertOK    bool
	LocalFile    string
	FinishedAt   time.Time
}

// List returns the most recent outcomes, newest first.
func (s *Store) List(limit int) ([]Outcome, error) {
	query := `
	SELECT item_id, relative_path, source_url, status, step, download_ok, convert_ok, local_file, finished_at
	FROM items ORDER BY finished_at DESC, id DESC LIMIT ?
	`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		var dlOK, convOK int
		if err := rows.Scan(&o.ItemID, &o.RelativePath, &o.SourceURL, &o.Status, &o.Step,
			&dlOK, &convOK, &o.LocalFile, &o.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		o.DownloadOK = dlOK != 0
		o.ConvertOK = convOK != 0
		out = append(out, o)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
