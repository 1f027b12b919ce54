// Package persist keeps the transposition table and finished move logs in a
// sqlite database between runs.
package persist

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/kestrel-chess/kestrel/ttable"
)

const schema = `
CREATE TABLE IF NOT EXISTS ttable (
	key       TEXT PRIMARY KEY,
	node_type INTEGER NOT NULL,
	depth     INTEGER NOT NULL,
	score     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS move_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id     TEXT NOT NULL,
	recorded_at TIMESTAMP NOT NULL,
	log         TEXT NOT NULL
);
`

const (
	loadBatchSize = 10000
	writeAttempts = 5
)

type DB struct {
	db *sql.DB
}

// MoveLogRecord is one saved game.
type MoveLogRecord struct {
	ID         int64     `yaml:"id"`
	GameID     string    `yaml:"game-id"`
	RecordedAt time.Time `yaml:"recorded-at"`
	Log        string    `yaml:"log"`
}

// Open opens (creating if needed) the database at path. Use ":memory:" for
// a throwaway database.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases alive and serializes
	// writers.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema in %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// withRetry runs a write, retrying while the database is busy.
func (d *DB) withRetry(ctx context.Context, what string, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(writeAttempts),
		retry.LastErrorOnly(true),
		retry.RetryIf(isBusy),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Err(err).Uint("n", n).Str("op", what).Msg("database-busy-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

// LoadTable seeds store with at most maxRows saved rows (all of them if
// maxRows <= 0) and returns how many it took. Loading stops early once the
// store is full.
func (d *DB) LoadTable(ctx context.Context, store *ttable.Store, maxRows int) (int, error) {
	q := "SELECT key, node_type, depth, score FROM ttable"
	var args []any
	if maxRows > 0 {
		q += " LIMIT ?"
		args = append(args, maxRows)
	}
	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("loading table: %w", err)
	}
	defer rows.Close()

	loaded := 0
	batch := make([]ttable.Row, 0, loadBatchSize)
	flush := func() bool {
		n := store.Seed(batch)
		loaded += n
		full := n < len(batch)
		batch = batch[:0]
		return full
	}
	for rows.Next() {
		var r ttable.Row
		var nt int
		if err := rows.Scan(&r.Key, &nt, &r.Depth, &r.Score); err != nil {
			return loaded, fmt.Errorf("loading table: %w", err)
		}
		r.NodeType = ttable.NodeType(nt)
		batch = append(batch, r)
		if len(batch) == loadBatchSize && flush() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return loaded, fmt.Errorf("loading table: %w", err)
	}
	if len(batch) > 0 {
		flush()
	}
	log.Info().Int("rows", loaded).Int("table-size", store.Len()).Msg("table-loaded")
	return loaded, nil
}

// SaveTable replaces every saved row with the contents of store. The store
// should be locked first so nothing changes underneath.
func (d *DB) SaveTable(ctx context.Context, store *ttable.Store) error {
	if !store.Locked() {
		log.Warn().Msg("saving-unlocked-table")
	}
	rows := store.Rows()
	err := d.withRetry(ctx, "save-table", func() error {
		tx, err := d.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()
		if _, err := tx.ExecContext(ctx, "DELETE FROM ttable"); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO ttable (key, node_type, depth, score) VALUES (?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range rows {
			if _, err := stmt.ExecContext(ctx, r.Key, int(r.NodeType), r.Depth, r.Score); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("saving table: %w", err)
	}
	log.Info().Int("rows", len(rows)).Msg("table-saved")
	return nil
}

// AppendMoveLog saves the log of one game. Empty logs are skipped.
func (d *DB) AppendMoveLog(ctx context.Context, gameID, moveLog string) error {
	if strings.TrimSpace(moveLog) == "" {
		log.Info().Str("game-id", gameID).Msg("empty-move-log-not-saved")
		return nil
	}
	err := d.withRetry(ctx, "append-move-log", func() error {
		_, err := d.db.ExecContext(ctx,
			"INSERT INTO move_log (game_id, recorded_at, log) VALUES (?, ?, ?)",
			gameID, time.Now().UTC(), moveLog)
		return err
	})
	if err != nil {
		return fmt.Errorf("appending move log: %w", err)
	}
	return nil
}

// MoveLogs returns the most recent saved games, newest first.
func (d *DB) MoveLogs(ctx context.Context, limit int) ([]MoveLogRecord, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT id, game_id, recorded_at, log FROM move_log ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("reading move logs: %w", err)
	}
	defer rows.Close()
	var recs []MoveLogRecord
	for rows.Next() {
		var r MoveLogRecord
		if err := rows.Scan(&r.ID, &r.GameID, &r.RecordedAt, &r.Log); err != nil {
			return nil, fmt.Errorf("reading move logs: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}
