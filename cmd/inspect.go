package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/mirova/internal"
	"github.com/spf13/cobra"
)

var (
	inspectFormat     string
	inspectPrefix     string
	inspectSampleRows int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [key]",
	Short: "Inspect the stored documents",
	Long: `Inspect the documents in the configured store.

Without arguments every key is listed with its kind and size; history documents
also report their item count. With a key, the raw stored value is printed.

Examples:
  mirova inspect                                 # All documents
  mirova inspect --prefix mirova-history-        # Only history documents
  mirova inspect mirova-user                     # Raw value of one key
  mirova inspect --format json --sample 2        # JSON output with 2 sample values`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		kv := a.ws.KV()
		if len(args) == 1 {
			value, ok, err := kv.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("key not found: %s", args[0])
			}
			fmt.Fprintln(out, value)
			return nil
		}

		docs, err := inspectDocuments(cmd.Context(), kv, a.cfg.Keyspace(), inspectPrefix, inspectSampleRows)
		if err != nil {
			return err
		}

		if inspectFormat == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(docs)
		}

		fmt.Fprintf(out, "📋 Storage: %s %s\n", a.cfg.Storage.Backend, a.cfg.Storage.Path)
		if s, ok := kv.(*internal.SQLiteKV); ok {
			if err := inspectSchema(out, s); err != nil {
				fmt.Fprintf(out, "⚠️  Error reading schema: %v\n", err)
			}
		}
		printDocuments(out, docs)
		return nil
	},
}

// DocumentInfo describes one stored key
type DocumentInfo struct {
	Key    string `json:"key"`
	Kind   string `json:"kind"`
	Size   int    `json:"size"`
	Items  *int   `json:"items,omitempty"`
	Sample string `json:"sample,omitempty"`
}

func inspectDocuments(ctx context.Context, kv internal.KVStore, keys internal.Keyspace, prefix string, samples int) ([]DocumentInfo, error) {
	names, err := kv.Keys(ctx, prefix)
	if err != nil {
		return nil, err
	}

	docs := make([]DocumentInfo, 0, len(names))
	for i, key := range names {
		value, ok, err := kv.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		doc := DocumentInfo{Key: key, Kind: documentKind(keys, key), Size: len(value)}
		if doc.Kind == "history" {
			var items []json.RawMessage
			if err := json.Unmarshal([]byte(value), &items); err == nil {
				n := len(items)
				doc.Items = &n
			} else {
				doc.Kind = "history (corrupt)"
			}
		}
		if i < samples {
			doc.Sample = sampleValue(value)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func documentKind(keys internal.Keyspace, key string) string {
	switch {
	case key == keys.User():
		return "user"
	case key == keys.Theme():
		return "theme"
	case strings.HasPrefix(key, keys.HistoryPrefix()):
		return "history"
	default:
		return "other"
	}
}

func sampleValue(value string) string {
	if strings.Contains(value, "\n") {
		value = strings.Split(value, "\n")[0] + "..."
	}
	if len(value) > 200 {
		value = value[:200] + "..."
	}
	return value
}

func printDocuments(out io.Writer, docs []DocumentInfo) {
	if len(docs) == 0 {
		fmt.Fprintln(out, "⚠️  No documents found")
		return
	}
	fmt.Fprintf(out, "📊 Found %d document(s)\n\n", len(docs))
	for _, doc := range docs {
		line := fmt.Sprintf("  • %s [%s] %d bytes", doc.Key, doc.Kind, doc.Size)
		if doc.Items != nil {
			line += fmt.Sprintf(", %d item(s)", *doc.Items)
		}
		fmt.Fprintln(out, line)
		if doc.Sample != "" {
			fmt.Fprintf(out, "      %s\n", doc.Sample)
		}
	}
}

// ColumnInfo is one column of a SQLite table
type ColumnInfo struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
}

func inspectSchema(out io.Writer, s *internal.SQLiteKV) error {
	columns, err := getTableSchema(s.DB(), "mirovaKV")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "📐 Schema:\n")
	for _, col := range columns {
		pk := ""
		if col.PrimaryKey {
			pk = " [PRIMARY KEY]"
		}
		notNull := ""
		if col.NotNull {
			notNull = " NOT NULL"
		}
		fmt.Fprintf(out, "  • %s: %s%s%s\n", col.Name, col.Type, notNull, pk)
	}
	fmt.Fprintln(out)
	return nil
}

func getTableSchema(db *sql.DB, tableName string) ([]ColumnInfo, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		var cid int
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &defaultValue, &pk); err != nil {
			continue
		}
		col.NotNull = notNull == 1
		col.PrimaryKey = pk == 1
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format (text, json)")
	inspectCmd.Flags().StringVar(&inspectPrefix, "prefix", "", "Only show keys with this prefix")
	inspectCmd.Flags().IntVar(&inspectSampleRows, "sample", 0, "Number of documents whose value is sampled")
}
