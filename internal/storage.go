package internal

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// SQLiteKV is the durable KVStore backed by the mirovaKV table
type SQLiteKV struct {
	db *sql.DB
	// SQLite allows one writer at a time
	writeMu sync.Mutex
	path    string
}

// OpenSQLiteKV opens the database at path and returns a store over it
func OpenSQLiteKV(path string) (*SQLiteKV, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, &StorageError{Key: path, Op: "open", Err: err}
	}
	return &SQLiteKV{db: db, path: path}, nil
}

// NewSQLiteKV wraps an already opened database; the table must exist
func NewSQLiteKV(db *sql.DB) *SQLiteKV {
	return &SQLiteKV{db: db}
}

// Path returns the database file the store was opened from
func (s *SQLiteKV) Path() string { return s.path }

// DB exposes the underlying handle for read-only diagnostics
func (s *SQLiteKV) DB() *sql.DB { return s.db }

func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT value FROM "+kvTable+" WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StorageError{Key: key, Op: "get", Err: err}
	}
	if !value.Valid {
		return "", false, nil
	}
	return value.String, true, nil
}

func (s *SQLiteKV) Set(ctx context.Context, key, value string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO "+kvTable+" (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return &StorageError{Key: key, Op: "set", Err: err}
	}
	return nil
}

func (s *SQLiteKV) Delete(ctx context.Context, key string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+kvTable+" WHERE key = ?", key); err != nil {
		return &StorageError{Key: key, Op: "delete", Err: err}
	}
	return nil
}

func (s *SQLiteKV) Keys(_ context.Context, prefix string) ([]string, error) {
	pairs, err := QueryKV(s.db, PrefixPattern(prefix))
	if err != nil {
		return nil, &StorageError{Key: prefix, Op: "keys", Err: err}
	}
	keys := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		keys = append(keys, pair.Key)
	}
	return keys, nil
}

// Stats reports the number of documents and their total size in bytes
func (s *SQLiteKV) Stats(ctx context.Context) (count int, size int64, err error) {
	var total sql.NullInt64
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*), SUM(LENGTH(value)) FROM "+kvTable).Scan(&count, &total)
	if err != nil {
		return 0, 0, &StorageError{Key: kvTable, Op: "stats", Err: err}
	}
	return count, total.Int64, nil
}

func (s *SQLiteKV) Close() error {
	return s.db.Close()
}
