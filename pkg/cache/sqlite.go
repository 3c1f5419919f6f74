package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/agentstation/bodsmap/pkg/constants"
	"github.com/agentstation/bodsmap/pkg/errors"
	"github.com/agentstation/bodsmap/pkg/record"
)

// SQLite spills the cache to a SQLite file so runs larger than memory can
// still merge by identity key. Each identity key is one row holding its
// first-seen sequence number and the merged record as JSON.
type SQLite struct {
	db   *sql.DB
	path   string
	n      int
	closed bool

	get    *sql.Stmt
	insert *sql.Stmt
	update *sql.Stmt
}

var _ Cache = (*SQLite)(nil)

const schema = `CREATE TABLE records (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	record_id TEXT NOT NULL UNIQUE,
	payload BLOB NOT NULL
)`

// NewSQLite opens a spill cache at path. Any records table left by an earlier
// run is dropped.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.NewValidationError("spill_file", path, "path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", filepath.Dir(path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`PRAGMA journal_mode = OFF`,
		`PRAGMA synchronous = OFF`,
		`DROP TABLE IF EXISTS records`,
		schema,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, errors.WrapIO("initialize", path, err)
		}
	}

	c := &SQLite{db: db, path: path}
	if err := c.prepare(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLite) prepare(ctx context.Context) error {
	var err error
	if c.get, err = c.db.PrepareContext(ctx, `SELECT payload FROM records WHERE record_id = ?`); err != nil {
		return fmt.Errorf("prepare select: %w", err)
	}
	if c.insert, err = c.db.PrepareContext(ctx, `INSERT INTO records(record_id, payload) VALUES(?, ?)`); err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	if c.update, err = c.db.PrepareContext(ctx, `UPDATE records SET payload = ? WHERE record_id = ?`); err != nil {
		return fmt.Errorf("prepare update: %w", err)
	}
	return nil
}

// Add implements Cache with a read-merge-write of the key's row.
func (c *SQLite) Add(ctx context.Context, rec *record.Record) error {
	if c.closed {
		return errors.ErrClosed
	}
	if rec == nil || rec.Empty() {
		return nil
	}

	var payload []byte
	err := c.get.QueryRowContext(ctx, rec.RecordID).Scan(&payload)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode %s: %w", rec.RecordID, err)
		}
		if _, err := c.insert.ExecContext(ctx, rec.RecordID, data); err != nil {
			return errors.WrapIO("insert", c.path, err)
		}
		c.n++
		return nil
	case err != nil:
		return errors.WrapIO("select", c.path, err)
	}

	var existing record.Record
	if err := json.Unmarshal(payload, &existing); err != nil {
		return fmt.Errorf("decode %s: %w", rec.RecordID, err)
	}
	if err := record.Merge(&existing, rec); err != nil {
		return err
	}
	data, err := json.Marshal(&existing)
	if err != nil {
		return fmt.Errorf("encode %s: %w", rec.RecordID, err)
	}
	if _, err := c.update.ExecContext(ctx, data, rec.RecordID); err != nil {
		return errors.WrapIO("update", c.path, err)
	}
	return nil
}

// Each implements Cache, reading rows in first-seen order.
func (c *SQLite) Each(ctx context.Context, fn func(*record.Record) error) error {
	if c.closed {
		return errors.ErrClosed
	}
	if err := canceled(ctx); err != nil {
		return err
	}
	rows, err := c.db.QueryContext(ctx, `SELECT payload FROM records ORDER BY seq`)
	if err != nil {
		return errors.WrapIO("select", c.path, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := canceled(ctx); err != nil {
			return err
		}
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return errors.WrapIO("scan", c.path, err)
		}
		var rec record.Record
		if err := json.Unmarshal(payload, &rec); err != nil {
			return fmt.Errorf("decode row: %w", err)
		}
		if err := fn(&rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Len implements Cache.
func (c *SQLite) Len() int { return c.n }

// Path returns the spill file path.
func (c *SQLite) Path() string { return c.path }

// Close implements Cache. The spill file is left on disk.
func (c *SQLite) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	for _, stmt := range []*sql.Stmt{c.get, c.insert, c.update} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	return c.db.Close()
}
