package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the durable Store: one documents table keyed by (path, id),
// collection order given by rowid. Upserts update in place, so a document
// keeps its position.
type SQLite struct {
	db       *sql.DB
	notifier *notifier
}

// OpenSQLite opens (or creates) the database at dbPath and runs migrations.
func OpenSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Configure SQLite for concurrent access
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = memory",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db, notifier: newNotifier()}, nil
}

func (s *SQLite) GetAll(ctx context.Context, path string) ([]Document, error) {
	return s.getAll(ctx, path)
}

func (s *SQLite) getAll(ctx context.Context, path string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, data FROM documents
		WHERE path = ?
		ORDER BY rowid
	`, path)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", path, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Data); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLite) GetOne(ctx context.Context, path, id string) (Document, error) {
	doc := Document{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM documents WHERE path = ? AND id = ?
	`, path, id).Scan(&doc.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to query document %s/%s: %w", path, id, err)
	}
	return doc, nil
}

func (s *SQLite) Set(ctx context.Context, path, id string, v any) (string, error) {
	data, err := marshal(v)
	if err != nil {
		return "", err
	}
	if id == "" {
		id = uuid.NewString()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (path, id, data)
		VALUES (?, ?, ?)
		ON CONFLICT (path, id) DO UPDATE SET
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, path, id, data)
	if err != nil {
		return "", fmt.Errorf("failed to upsert document %s/%s: %w", path, id, err)
	}

	s.publish(ctx, path)
	return id, nil
}

func (s *SQLite) Delete(ctx context.Context, path, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM documents WHERE path = ? AND id = ?
	`, path, id)
	if err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", path, id, err)
	}

	if n, err := result.RowsAffected(); err == nil && n > 0 {
		s.publish(ctx, path)
	}
	return nil
}

func (s *SQLite) Subscribe(path string, fn func(Snapshot)) Subscription {
	sub := s.notifier.subscribe(path, fn)

	docs, err := s.getAll(context.Background(), path)
	if err != nil {
		// Fail-soft: the subscriber starts from an empty snapshot and
		// catches up on the next change.
		docs = nil
	}
	sub.deliver(Snapshot{Path: path, Docs: docs})

	return sub
}

func (s *SQLite) publish(ctx context.Context, path string) {
	docs, err := s.getAll(ctx, path)
	if err != nil {
		return
	}
	s.notifier.publish(Snapshot{Path: path, Docs: docs})
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
