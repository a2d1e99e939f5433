package export

import (
	"database/sql"
	"fmt"
)

// Schema version for tracking migrations
const SchemaVersion = 1

// CreateSchema creates all tables and indexes in the database.
func CreateSchema(db *sql.DB) error {
	if err := createCategoriesTable(db); err != nil {
		return fmt.Errorf("create categories table: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	return nil
}

// createCategoriesTable creates the flattened category table. One row per
// category; (type, slug) is unique because slugs are unique per type.
func createCategoriesTable(db *sql.DB) error {
	categoriesSQL := `
		CREATE TABLE IF NOT EXISTS categories (
			type TEXT NOT NULL,
			slug TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			parent_slug TEXT,
			depth INTEGER NOT NULL,
			ordinal INTEGER NOT NULL,
			child_count INTEGER NOT NULL DEFAULT 0,
			path TEXT NOT NULL,
			PRIMARY KEY (type, slug)
		)
	`
	if _, err := db.Exec(categoriesSQL); err != nil {
		return fmt.Errorf("create categories table: %w", err)
	}
	return nil
}

func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_categories_parent ON categories(type, parent_slug)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_ordinal ON categories(type, ordinal)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_depth ON categories(type, depth)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS export_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create export_meta table: %w", err)
	}

	return nil
}

// CreateFTSIndex builds an FTS5 index over category names and descriptions.
func CreateFTSIndex(db *sql.DB) error {
	ftsSQL := `
		CREATE VIRTUAL TABLE IF NOT EXISTS categories_fts USING fts5(
			slug,
			name,
			description,
			content='categories',
			content_rowid='rowid',
			tokenize='porter unicode61'
		)
	`
	if _, err := db.Exec(ftsSQL); err != nil {
		return fmt.Errorf("create FTS5 table: %w", err)
	}

	if _, err := db.Exec(`INSERT INTO categories_fts(categories_fts) VALUES('rebuild')`); err != nil {
		return fmt.Errorf("populate FTS index: %w", err)
	}

	return nil
}

// OptimizeDatabase compacts the file for distribution.
func OptimizeDatabase(db *sql.DB, pageSize int) error {
	if pageSize <= 0 {
		pageSize = 4096
	}

	optimizations := []string{
		`PRAGMA journal_mode=DELETE`,
		fmt.Sprintf(`PRAGMA page_size=%d`, pageSize),
		`ANALYZE`,
		`PRAGMA optimize`,
	}

	for _, stmt := range optimizations {
		if _, err := db.Exec(stmt); err != nil {
			// Some pragmas may fail depending on state, continue
			continue
		}
	}

	_, _ = db.Exec(`INSERT INTO categories_fts(categories_fts) VALUES('optimize')`)

	// VACUUM must be last and outside transaction
	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}

	return nil
}

// InsertMetaValue upserts one export_meta row.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO export_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}
