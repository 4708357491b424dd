package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/ubidoc/internal/glossary"
)

const createGlossaryTable = `
CREATE TABLE glossary (
    position    INTEGER PRIMARY KEY,
    term        TEXT NOT NULL,
    class_name  TEXT NOT NULL,
    context     TEXT NOT NULL,
    description TEXT NOT NULL,
    file_path   TEXT NOT NULL,
    line_number INTEGER NOT NULL,
    url         TEXT NOT NULL
)`

const createMetadataTable = `
CREATE TABLE metadata (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`

var glossaryIndexes = []string{
	"CREATE INDEX idx_glossary_context ON glossary(context)",
	"CREATE INDEX idx_glossary_term ON glossary(term)",
}

// WriteSQLite recreates the database at path holding the glossary table and
// run metadata. Everything is written in one transaction.
func WriteSQLite(ctx context.Context, path string, set *glossary.Set, links LinkBuilder) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove old database %s: %w", path, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	ddl := append([]string{createGlossaryTable, createMetadataTable}, glossaryIndexes...)
	for _, stmt := range ddl {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	for i, r := range set.Records() {
		_, err := sq.Insert("glossary").
			Columns("position", "term", "class_name", "context", "description", "file_path", "line_number", "url").
			Values(i, r.Term(), r.ClassName(), r.Context(), r.Description(), r.FilePath(), r.LineNumber(),
				links.URL(r.FilePath(), r.LineNumber())).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert term %q: %w", r.Term(), err)
		}
	}

	metadata := map[string]string{
		"run_id":       uuid.NewString(),
		"generated_at": time.Now().UTC().Format(time.RFC3339),
		"record_count": strconv.Itoa(set.Len()),
		"repository":   links.Repository,
		"branch":       links.Branch,
	}
	for key, value := range metadata {
		if _, err := sq.Insert("metadata").Columns("key", "value").Values(key, value).RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to write metadata %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ReadSQLite loads the glossary written by WriteSQLite, in stored order.
func ReadSQLite(ctx context.Context, path string) (*glossary.Set, error) {
	db, err := openReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := sq.Select("class_name", "term", "context", "description", "file_path", "line_number").
		From("glossary").
		OrderBy("position").
		RunWith(db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query glossary: %w", err)
	}
	defer rows.Close()

	var records []glossary.Record
	for rows.Next() {
		var opts glossary.RecordOptions
		if err := rows.Scan(&opts.ClassName, &opts.Term, &opts.Context, &opts.Description, &opts.FilePath, &opts.LineNumber); err != nil {
			return nil, fmt.Errorf("failed to scan glossary row: %w", err)
		}
		records = append(records, glossary.NewRecord(opts))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read glossary: %w", err)
	}

	return glossary.Aggregate(records), nil
}

// ReadMetadata returns the key/value metadata of a glossary database.
func ReadMetadata(ctx context.Context, path string) (map[string]string, error) {
	db, err := openReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := sq.Select("key", "value").From("metadata").RunWith(db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		metadata[key] = value
	}
	return metadata, rows.Err()
}

// openReadOnly opens an existing database without write access. The stat
// check keeps the driver from creating an empty file at a wrong path.
func openReadOnly(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
