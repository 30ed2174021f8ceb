package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const createRecordsTable = `
CREATE TABLE IF NOT EXISTS records (
    collection TEXT    NOT NULL,
    id         TEXT    NOT NULL,
    version    INTEGER NOT NULL,
    data       BLOB,
    PRIMARY KEY (collection, id)
)`

var _ Repository = (*SQLiteRepository)(nil)

// SQLiteRepository stores records in SQLite. Each call acquires one pooled
// connection and returns it before the call ends, failure included.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database at dbPath and runs migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection of an in-memory database is a separate database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(createRecordsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *SQLiteRepository) Close() error {
	return s.db.Close()
}

func (s *SQLiteRepository) Get(ctx context.Context, collection, id string) (Record, bool, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return Record{}, false, translate(err)
	}
	defer conn.Close()

	rec := Record{Collection: collection, ID: id}
	err = conn.QueryRowContext(ctx,
		"SELECT version, data FROM records WHERE collection = ? AND id = ?", collection, id,
	).Scan(&rec.Version, &rec.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get record: %w", translate(err))
	}
	return rec, true, nil
}

func (s *SQLiteRepository) Insert(ctx context.Context, rec Record) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return translate(err)
	}
	defer conn.Close()

	_, err = conn.ExecContext(ctx,
		"INSERT INTO records (collection, id, version, data) VALUES (?, ?, ?, ?)",
		rec.Collection, rec.ID, rec.Version, rec.Data,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", translate(err))
	}
	return nil
}

func (s *SQLiteRepository) Update(ctx context.Context, rec Record, expectedVersion uint64) (Record, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return Record{}, translate(err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("begin tx: %w", translate(err))
	}
	defer tx.Rollback()

	var current uint64
	err = tx.QueryRowContext(ctx,
		"SELECT version FROM records WHERE collection = ? AND id = ?", rec.Collection, rec.ID,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s/%s", ErrNoSuchRecord, rec.Collection, rec.ID)
	}
	if err != nil {
		return Record{}, fmt.Errorf("read version: %w", translate(err))
	}
	if expectedVersion != 0 && current != expectedVersion {
		return Record{}, fmt.Errorf("%w: have %d, expected %d", ErrVersionMismatch, current, expectedVersion)
	}

	next := rec.clone()
	next.Version = current + 1
	if _, err := tx.ExecContext(ctx,
		"UPDATE records SET version = ?, data = ? WHERE collection = ? AND id = ?",
		next.Version, next.Data, next.Collection, next.ID,
	); err != nil {
		return Record{}, fmt.Errorf("update record: %w", translate(err))
	}
	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit update: %w", translate(err))
	}
	return next, nil
}

func (s *SQLiteRepository) Delete(ctx context.Context, collection, id string) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return translate(err)
	}
	defer conn.Close()

	result, err := conn.ExecContext(ctx,
		"DELETE FROM records WHERE collection = ? AND id = ?", collection, id,
	)
	if err != nil {
		return fmt.Errorf("delete record: %w", translate(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", translate(err))
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNoSuchRecord, collection, id)
	}
	return nil
}

// translate maps SQLite result codes onto the repository sentinels.
func translate(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return fmt.Errorf("%w: %v", ErrBusy, err)
	default:
		return err
	}
}
