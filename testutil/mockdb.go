package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

const createKVTableSQL = `
	CREATE TABLE IF NOT EXISTS mirovaKV (
		key TEXT PRIMARY KEY,
		value TEXT
	)`

// CreateInMemoryDB creates an in-memory SQLite database with an empty mirovaKV table
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	// every connection would get its own empty in-memory database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createKVTableSQL); err != nil {
		db.Close()
		t.Fatalf("Failed to create mirovaKV table: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// SampleDocuments are the rows inserted by CreateTestDB
var SampleDocuments = map[string]string{
	"mirova-user":                    `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}`,
	"mirova-theme":                   `light`,
	"mirova-history-ada@example.com": `[{"id":"h1","feature":"Mirova Coder","payload":{"id":"c1","name":"Sort","prompt":"sort a list","result":"done","language":"Go"},"timestamp":"2025-01-02T03:04:05.000Z"}]`,
	"mirova-history-bob@example.com": `[]`,
	"other-user":                     `{"firstName":"Eve","lastName":"X","email":"eve@example.com"}`,
}

// CreateTestDB creates an in-memory database holding SampleDocuments
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)

	stmt, err := db.Prepare("INSERT INTO mirovaKV (key, value) VALUES (?, ?)")
	if err != nil {
		t.Fatalf("Failed to prepare insert statement: %v", err)
	}
	defer stmt.Close()

	for key, value := range SampleDocuments {
		if _, err := stmt.Exec(key, value); err != nil {
			t.Fatalf("Failed to insert %s: %v", key, err)
		}
	}

	return db
}

// InsertDocument inserts a row into the mirovaKV table
func InsertDocument(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	if _, err := db.Exec("INSERT OR REPLACE INTO mirovaKV (key, value) VALUES (?, ?)", key, value); err != nil {
		t.Fatalf("Failed to insert %s: %v", key, err)
	}
}
