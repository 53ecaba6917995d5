package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sw33tLie/upgradefeed/pkg/upgrades"
	_ "modernc.org/sqlite"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Same row shape as the hosted table: the record lives in payload.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS upgrades (
  id          TEXT PRIMARY KEY,
  project     TEXT NOT NULL,
  timestamp   TEXT,
  payload     TEXT NOT NULL,
  imported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_upgrades_time ON upgrades(timestamp);
CREATE INDEX IF NOT EXISTS idx_upgrades_project ON upgrades(project);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// ImportUpgrades stores records that are not present yet, keyed by
// Upgrade.Key. It returns how many rows were added.
func (d *DB) ImportUpgrades(ctx context.Context, items []upgrades.Upgrade) (added int, err error) {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO upgrades(id, project, timestamp, payload) VALUES(?,?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, u := range items {
		u.ID = u.Key()
		payload, merr := json.Marshal(u)
		if merr != nil {
			err = fmt.Errorf("encode upgrade %q: %w", u.ID, merr)
			return 0, err
		}
		res, xerr := stmt.ExecContext(ctx, u.ID, strings.ToLower(u.Project), nullIfEmpty(u.Timestamp), string(payload))
		if xerr != nil {
			err = xerr
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// ListUpgrades returns every stored record, newest timestamp first.
func (d *DB) ListUpgrades(ctx context.Context) ([]upgrades.Upgrade, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT id, payload FROM upgrades ORDER BY timestamp DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []upgrades.Upgrade{}
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		var u upgrades.Upgrade
		if err := json.Unmarshal([]byte(payload), &u); err != nil {
			return nil, fmt.Errorf("decode payload of %q: %w", id, err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DB) GetStats(ctx context.Context) ([]ProjectStats, error) {
	query := `
		SELECT
			project,
			COUNT(*),
			COALESCE(MAX(timestamp), '')
		FROM
			upgrades
		GROUP BY
			project
		ORDER BY
			project;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []ProjectStats
	for rows.Next() {
		var s ProjectStats
		if err := rows.Scan(&s.Project, &s.UpgradeCount, &s.LatestAt); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
