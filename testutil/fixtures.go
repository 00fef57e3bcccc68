package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateSQLiteFixture creates a database file at dbPath holding SampleDocuments
func CreateSQLiteFixture(t *testing.T, dbPath string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(createKVTableSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	for key, value := range SampleDocuments {
		if _, err := db.Exec("INSERT INTO mirovaKV (key, value) VALUES (?, ?)", key, value); err != nil {
			t.Fatalf("Failed to insert %s: %v", key, err)
		}
	}
}

// CreateConfigFixture writes a TOML config file into dir and returns its path
func CreateConfigFixture(t *testing.T, dir, contents string) string {
	t.Helper()
	return WriteFile(t, dir, "config.toml", []byte(contents))
}

// CreateDataDir creates a fresh data directory and points MIROVA_HOME at it
func CreateDataDir(t *testing.T) string {
	t.Helper()
	dir := CreateTempDir(t)
	t.Setenv("MIROVA_HOME", dir)
	return dir
}
