// Package store persists extraction runs to SQLite so results can be
// listed, re-rendered and exported after the fact. The parsing core
// never writes here itself; callers hand it a finished
// MenuExtractionResult.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/platewise/menu-etl/internal/menuparse"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id          TEXT PRIMARY KEY,
	restaurant_name TEXT NOT NULL,
	source          TEXT NOT NULL DEFAULT '',
	item_count      INTEGER NOT NULL DEFAULT 0,
	metadata        TEXT NOT NULL DEFAULT '{}',
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_items (
	run_id        TEXT NOT NULL,
	position      INTEGER NOT NULL,
	item_name     TEXT NOT NULL,
	category      TEXT NOT NULL DEFAULT '',
	subcategory   TEXT NOT NULL DEFAULT '',
	description   TEXT NOT NULL DEFAULT '',
	price         REAL,
	price_display TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, position)
);
`

type Store struct {
	db *sqlx.DB
}

// Run is one persisted extraction run's header row.
type Run struct {
	RunID          string    `db:"run_id" json:"run_id"`
	RestaurantName string    `db:"restaurant_name" json:"restaurant_name"`
	Source         string    `db:"source" json:"source"`
	ItemCount      int       `db:"item_count" json:"item_count"`
	Metadata       string    `db:"metadata" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveResult writes one run and its items in a single transaction and
// returns the generated run ID.
func (s *Store) SaveResult(result menuparse.MenuExtractionResult, source string) (string, error) {
	metaBlob, err := json.Marshal(result.Metadata)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	runID := uuid.NewString()
	tx, err := s.db.Beginx()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, restaurant_name, source, item_count, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, result.RestaurantName, source, len(result.Items), string(metaBlob),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for i, item := range result.Items {
		var price sql.NullFloat64
		if item.Price != nil {
			price = sql.NullFloat64{Float64: *item.Price, Valid: true}
		}
		_, err = tx.Exec(
			`INSERT INTO run_items (run_id, position, item_name, category, subcategory, description, price, price_display)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, i, item.ItemName, item.Category, item.Subcategory, item.Description, price, item.PriceDisplay,
		)
		if err != nil {
			return "", fmt.Errorf("insert item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// GetRun rebuilds a stored run as a MenuExtractionResult, items in
// original document order.
func (s *Store) GetRun(runID string) (Run, menuparse.MenuExtractionResult, error) {
	var row struct {
		RunID          string `db:"run_id"`
		RestaurantName string `db:"restaurant_name"`
		Source         string `db:"source"`
		ItemCount      int    `db:"item_count"`
		Metadata       string `db:"metadata"`
		CreatedAt      string `db:"created_at"`
	}
	err := s.db.Get(&row, `SELECT run_id, restaurant_name, source, item_count, metadata, created_at FROM runs WHERE run_id = ?`, runID)
	if err == sql.ErrNoRows {
		return Run{}, menuparse.MenuExtractionResult{}, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return Run{}, menuparse.MenuExtractionResult{}, fmt.Errorf("load run: %w", err)
	}

	run := Run{
		RunID:          row.RunID,
		RestaurantName: row.RestaurantName,
		Source:         row.Source,
		ItemCount:      row.ItemCount,
		Metadata:       row.Metadata,
	}
	if ts, err := time.Parse(time.RFC3339Nano, row.CreatedAt); err == nil {
		run.CreatedAt = ts
	}

	result := menuparse.MenuExtractionResult{RestaurantName: row.RestaurantName}
	if err := json.Unmarshal([]byte(row.Metadata), &result.Metadata); err != nil {
		return Run{}, menuparse.MenuExtractionResult{}, fmt.Errorf("decode metadata: %w", err)
	}

	type itemRow struct {
		ItemName     string          `db:"item_name"`
		Category     string          `db:"category"`
		Subcategory  string          `db:"subcategory"`
		Description  string          `db:"description"`
		Price        sql.NullFloat64 `db:"price"`
		PriceDisplay string          `db:"price_display"`
	}
	var rows []itemRow
	err = s.db.Select(&rows, `SELECT item_name, category, subcategory, description, price, price_display
		FROM run_items WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return Run{}, menuparse.MenuExtractionResult{}, fmt.Errorf("load items: %w", err)
	}
	for _, r := range rows {
		item := menuparse.CanonicalMenuItem{
			ItemName:     r.ItemName,
			Category:     r.Category,
			Subcategory:  r.Subcategory,
			Description:  r.Description,
			PriceDisplay: r.PriceDisplay,
		}
		if r.Price.Valid {
			v := r.Price.Float64
			item.Price = &v
		}
		result.Items = append(result.Items, item)
	}
	result.TotalItems = len(result.Items)
	return run, result, nil
}

// ListRuns returns run headers, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []struct {
		RunID          string `db:"run_id"`
		RestaurantName string `db:"restaurant_name"`
		Source         string `db:"source"`
		ItemCount      int    `db:"item_count"`
		Metadata       string `db:"metadata"`
		CreatedAt      string `db:"created_at"`
	}
	err := s.db.Select(&rows, `SELECT run_id, restaurant_name, source, item_count, metadata, created_at
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	out := make([]Run, 0, len(rows))
	for _, row := range rows {
		run := Run{
			RunID:          row.RunID,
			RestaurantName: row.RestaurantName,
			Source:         row.Source,
			ItemCount:      row.ItemCount,
			Metadata:       row.Metadata,
		}
		if ts, err := time.Parse(time.RFC3339Nano, row.CreatedAt); err == nil {
			run.CreatedAt = ts
		}
		out = append(out, run)
	}
	return out, nil
}
