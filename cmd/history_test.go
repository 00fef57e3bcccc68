package cmd

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/mirova/internal"
	"github.com/iksnae/mirova/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryCommands(t *testing.T) {
	paths := setupCommandTest(t)
	testutil.CreateSQLiteFixture(t, paths.Database)

	out, err := runCommand(t, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 item(s)")
	assert.Contains(t, out, "sort a list")
	assert.Contains(t, out, "Mirova Coder")

	out, err = runCommand(t, "history", "list", "--feature", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "No history yet")

	_, err = runCommand(t, "history", "list", "--feature", "video")
	assert.Error(t, err)

	out, err = runCommand(t, "history", "show", "h1")
	require.NoError(t, err)
	assert.Contains(t, out, "Language: Go")
	assert.Contains(t, out, "done")

	_, err = runCommand(t, "history", "show", "missing")
	assert.Error(t, err)

	out, err = runCommand(t, "history", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com")
	assert.Contains(t, out, "bob@example.com")

	_, err = runCommand(t, "history", "clear")
	require.NoError(t, err)

	out, err = runCommand(t, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No history yet")
}

func TestHistoryExportCommand(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantFile  string
		wantLines int
	}{
		{
			name:      "signed-in user as jsonl",
			args:      []string{},
			wantFile:  "history_ada@example.com.jsonl",
			wantLines: 1,
		},
		{
			name:      "other user",
			args:      []string{"--user", "bob@example.com"},
			wantFile:  "history_bob@example.com.jsonl",
			wantLines: 0,
		},
		{
			name:      "all identities",
			args:      []string{"--all"},
			wantFile:  "history_all.jsonl",
			wantLines: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := setupCommandTest(t)
			testutil.CreateSQLiteFixture(t, paths.Database)
			outDir := filepath.Join(testutil.CreateTempDir(t), "exports")

			args := append([]string{"history", "export", "--out", outDir}, tt.args...)
			out, err := runCommand(t, args...)
			require.NoError(t, err)

			path := filepath.Join(outDir, tt.wantFile)
			assert.Contains(t, out, path)

			file, err := os.Open(path)
			require.NoError(t, err)
			defer file.Close()
			lines := 0
			scanner := bufio.NewScanner(file)
			for scanner.Scan() {
				lines++
			}
			assert.Equal(t, tt.wantLines, lines)
		})
	}
}

func TestHistoryExportCommand_Markdown(t *testing.T) {
	paths := setupCommandTest(t)
	testutil.CreateSQLiteFixture(t, paths.Database)
	outDir := testutil.CreateTempDir(t)

	_, err := runCommand(t, "history", "export", "--format", "md", "--out", outDir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "history_ada@example.com.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# History for ada@example.com")
	assert.Contains(t, string(data), "sort a list")

	_, err = runCommand(t, "history", "export", "--format", "csv", "--out", outDir)
	assert.Error(t, err)
}

func TestFindItem(t *testing.T) {
	items := []internal.HistoryItem{
		{ID: "abc123"},
		{ID: "abd456"},
		{ID: "ab"},
	}

	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr string
	}{
		{name: "exact id wins over prefix", ref: "ab", wantID: "ab"},
		{name: "unique prefix", ref: "abc", wantID: "abc123"},
		{name: "ambiguous prefix", ref: "a", wantErr: "ambiguous"},
		{name: "missing", ref: "zzz", wantErr: "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := findItem(items, tt.ref)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, item.ID)
		})
	}
}

func TestFilterItems(t *testing.T) {
	items := []internal.HistoryItem{
		{ID: "1", Feature: internal.FeatureChat},
		{ID: "2", Feature: internal.FeatureCoder},
		{ID: "3", Feature: internal.FeatureChat},
	}

	got, err := filterItems(items, "chat")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = filterItems(items, "")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = filterItems(items, "video")
	assert.Error(t, err)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "ada@example.com", sanitizeFileName("ada@example.com"))
	assert.Equal(t, "a_b_c_d", sanitizeFileName("a/b:c d"))
}

func TestFormatHelpers(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "—", formatWhen(time.Time{}, now))
	assert.Equal(t, "abcdefgh", shortID("abcdefghijkl"))
	assert.Equal(t, "h1", shortID("h1"))
	assert.Equal(t, "hello...", truncate("hello world", 8))
	assert.Equal(t, "hi", truncate("hi", 8))
	assert.True(t, strings.Contains(wrapText("one two three four", 9), "\n"))
}
