// Package export writes taxonomy forests to files: a SQLite database, an
// SVG or PNG outline snapshot, and an interactive wizard choosing between them.
package export

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/oasftree/pkg/taxonomy"
	"github.com/vanderheijden86/oasftree/pkg/version"

	_ "modernc.org/sqlite"
)

// SQLiteExportConfig tunes the database file.
type SQLiteExportConfig struct {
	PageSize int
	// FullText adds an FTS5 index over names and descriptions.
	FullText bool
}

// DefaultSQLiteExportConfig returns the settings used by the CLI.
func DefaultSQLiteExportConfig() SQLiteExportConfig {
	return SQLiteExportConfig{PageSize: 4096, FullText: true}
}

// SQLiteExporter writes one or more taxonomy indexes to a SQLite database.
type SQLiteExporter struct {
	Indexes []*taxonomy.TreeIndex
	Config  SQLiteExportConfig
	Source  string
	logger  *log.Logger
}

// NewSQLiteExporter creates an exporter for the given indexes.
func NewSQLiteExporter(indexes ...*taxonomy.TreeIndex) *SQLiteExporter {
	return &SQLiteExporter{
		Indexes: indexes,
		Config:  DefaultSQLiteExportConfig(),
		logger:  log.New(io.Discard, "", 0),
	}
}

// SetLogger sets a custom logger for warnings
func (e *SQLiteExporter) SetLogger(logger *log.Logger) {
	e.logger = logger
}

// Export writes the database to path, replacing any existing file.
func (e *SQLiteExporter) Export(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if err := e.insertCategories(db); err != nil {
		return fmt.Errorf("insert categories: %w", err)
	}

	if e.Config.FullText {
		if err := CreateFTSIndex(db); err != nil {
			e.logger.Printf("Warning: FTS5 not available: %v", err)
		}
	}

	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	if err := OptimizeDatabase(db, e.Config.PageSize); err != nil {
		return fmt.Errorf("optimize database: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true
	return nil
}

func (e *SQLiteExporter) insertCategories(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO categories (type, slug, name, description, parent_slug, depth, ordinal, child_count, path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, idx := range e.Indexes {
		paths := make(map[string]string, idx.CountAll())
		for n := range idx.All() {
			path := n.Name
			if !n.IsRoot() {
				path = paths[n.ParentSlug] + " > " + n.Name
			}
			paths[n.Slug] = path

			if _, err := stmt.Exec(
				string(idx.Type()),
				n.Slug,
				n.Name,
				nullableString(n.Description),
				nullableString(n.ParentSlug),
				n.Depth,
				n.Ordinal,
				len(n.ChildSlugs),
				path,
			); err != nil {
				return fmt.Errorf("insert %s/%s: %w", idx.Type(), n.Slug, err)
			}
		}
	}

	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	types := make([]string, 0, len(e.Indexes))
	total := 0
	for _, idx := range e.Indexes {
		types = append(types, string(idx.Type()))
		total += idx.CountAll()
	}

	meta := map[string]string{
		"version":        version.Version,
		"generated_at":   time.Now().UTC().Format(time.RFC3339),
		"category_count": fmt.Sprintf("%d", total),
		"types":          strings.Join(types, ","),
		"schema_version": fmt.Sprintf("%d", SchemaVersion),
	}
	if e.Source != "" {
		meta["source"] = e.Source
	}

	for key, value := range meta {
		if err := InsertMetaValue(db, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
