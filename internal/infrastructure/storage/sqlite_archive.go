// Package storage archives run summaries in a local SQLite database so
// operators can review crawl health over time without digging through logs.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/gsaugg/compare/internal/domain"
	"github.com/gsaugg/compare/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at   TEXT NOT NULL,
	duration_ms  INTEGER NOT NULL,
	store_count  INTEGER NOT NULL,
	item_count   INTEGER NOT NULL,
	group_count  INTEGER NOT NULL,
	sku_matches  INTEGER NOT NULL,
	title_matches INTEGER NOT NULL,
	offline      INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS run_stores (
	run_id      INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	store_id    TEXT NOT NULL,
	name        TEXT NOT NULL,
	url         TEXT NOT NULL,
	platform    TEXT NOT NULL,
	fetched     INTEGER NOT NULL,
	filtered    INTEGER NOT NULL,
	final       INTEGER NOT NULL,
	in_stock    INTEGER NOT NULL,
	out_of_stock INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	dropped     TEXT NOT NULL DEFAULT '[]'
);
`

// SQLiteArchive implements ports.RunArchive on a local SQLite file.
type SQLiteArchive struct {
	db *sql.DB
}

var _ ports.RunArchive = (*SQLiteArchive)(nil)

// OpenSQLiteArchive opens (creating if needed) the archive database.
func OpenSQLiteArchive(path string) (*SQLiteArchive, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run archive: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init run archive schema: %w", err)
	}
	return &SQLiteArchive{db: db}, nil
}

// Close releases the database handle.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

// SaveRun inserts one run summary and its per-store rows in a transaction.
func (a *SQLiteArchive) SaveRun(ctx context.Context, run domain.RunSummary) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run insert: %w", err)
	}
	defer tx.Rollback()

	query, args, err := sq.Insert("runs").
		Columns("started_at", "duration_ms", "store_count", "item_count",
			"group_count", "sku_matches", "title_matches", "offline").
		Values(run.StartedAt, run.DurationMS, run.StoreCount, run.ItemCount,
			run.GroupCount, run.SKUMatches, run.TitleMatches, run.Offline).
		ToSql()
	if err != nil {
		return fmt.Errorf("build run insert: %w", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run insert id: %w", err)
	}

	for _, store := range run.Stores {
		dropped, err := json.Marshal(store.Dropped)
		if err != nil {
			return fmt.Errorf("marshal dropped listings for %s: %w", store.StoreID, err)
		}

		query, args, err := sq.Insert("run_stores").
			Columns("run_id", "store_id", "name", "url", "platform", "fetched",
				"filtered", "final", "in_stock", "out_of_stock", "duration_ms",
				"error", "dropped").
			Values(runID, store.StoreID, store.Name, store.URL, store.Platform,
				store.Fetched, store.Filtered, store.Final, store.InStock,
				store.OutOfStock, store.DurationMS, store.Error, string(dropped)).
			ToSql()
		if err != nil {
			return fmt.Errorf("build store insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert store stats for %s: %w", store.StoreID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run insert: %w", err)
	}
	return nil
}

// RecentRuns returns the newest runs first, with their per-store stats.
func (a *SQLiteArchive) RecentRuns(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	query, args, err := sq.Select("id", "started_at", "duration_ms", "store_count",
		"item_count", "group_count", "sku_matches", "title_matches", "offline").
		From("runs").
		OrderBy("id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build runs query: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunSummary
	var ids []int64
	for rows.Next() {
		var id int64
		var run domain.RunSummary
		if err := rows.Scan(&id, &run.StartedAt, &run.DurationMS, &run.StoreCount,
			&run.ItemCount, &run.GroupCount, &run.SKUMatches, &run.TitleMatches,
			&run.Offline); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for i, id := range ids {
		stores, err := a.runStores(ctx, id)
		if err != nil {
			return nil, err
		}
		runs[i].Stores = stores
	}

	return runs, nil
}

func (a *SQLiteArchive) runStores(ctx context.Context, runID int64) ([]domain.StoreRunStats, error) {
	query, args, err := sq.Select("store_id", "name", "url", "platform", "fetched",
		"filtered", "final", "in_stock", "out_of_stock", "duration_ms", "error", "dropped").
		From("run_stores").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("store_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build store stats query: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query store stats: %w", err)
	}
	defer rows.Close()

	var stores []domain.StoreRunStats
	for rows.Next() {
		var s domain.StoreRunStats
		var dropped string
		if err := rows.Scan(&s.StoreID, &s.Name, &s.URL, &s.Platform, &s.Fetched,
			&s.Filtered, &s.Final, &s.InStock, &s.OutOfStock, &s.DurationMS,
			&s.Error, &dropped); err != nil {
			return nil, fmt.Errorf("scan store stats: %w", err)
		}
		if err := json.Unmarshal([]byte(dropped), &s.Dropped); err != nil {
			s.Dropped = nil
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate store stats: %w", err)
	}

	return stores, nil
}
