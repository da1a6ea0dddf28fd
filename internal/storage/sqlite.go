package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/clewlabs/memoria/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Item operations

// InsertItem stores a newly captured archive item.
func (s *SQLiteStore) InsertItem(ctx context.Context, userID string, item *types.ArchiveItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid archive item: %w", err)
	}

	tagsJSON, err := json.Marshal(emptyIfNil(item.Tags))
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	toolsJSON, err := json.Marshal(emptyIfNil(item.DetectedTools))
	if err != nil {
		return fmt.Errorf("failed to encode detected tools: %w", err)
	}

	var url, content sql.NullString
	switch o := item.Origin.(type) {
	case types.URLOrigin:
		url = sql.NullString{String: o.URL, Valid: true}
	case types.ManualOrigin:
		content = sql.NullString{String: o.Content, Valid: true}
	default:
		if item.URL != "" {
			url = sql.NullString{String: item.URL, Valid: true}
		}
	}

	query := `
		INSERT INTO items (id, user_id, title, summary, url, content, tags, detected_tools, source, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		item.ID, userID, item.Title, item.Summary, url, content,
		string(tagsJSON), string(toolsJSON), string(item.Source), item.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// GetItem fetches a single archive item by ID.
func (s *SQLiteStore) GetItem(ctx context.Context, itemID string) (*types.ArchiveItem, error) {
	query := `
		SELECT id, title, summary, url, content, tags, detected_tools, source, timestamp
		FROM items
		WHERE id = ?
	`
	item, err := scanItem(s.db.QueryRowContext(ctx, query, itemID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// ListRecentItems returns the user's most recent items, timestamp descending.
// This is the fetch collaborator the recall snapshot cache is built on.
func (s *SQLiteStore) ListRecentItems(ctx context.Context, userID string, limit int) ([]*types.ArchiveItem, error) {
	query := `
		SELECT id, title, summary, url, content, tags, detected_tools, source, timestamp
		FROM items
		WHERE user_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*types.ArchiveItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row scanner) (*types.ArchiveItem, error) {
	var item types.ArchiveItem
	var url, content sql.NullString
	var tagsJSON, toolsJSON, source string

	err := row.Scan(&item.ID, &item.Title, &item.Summary, &url, &content,
		&tagsJSON, &toolsJSON, &source, &item.Timestamp)
	if err != nil {
		return nil, err
	}

	// Degenerate rows decode to empty collections, not errors.
	if err := json.Unmarshal([]byte(tagsJSON), &item.Tags); err != nil {
		item.Tags = nil
	}
	if err := json.Unmarshal([]byte(toolsJSON), &item.DetectedTools); err != nil {
		item.DetectedTools = nil
	}

	item.Source = types.Source(source)
	if url.Valid && url.String != "" {
		item.URL = url.String
		item.Origin = types.URLOrigin{URL: url.String}
	} else {
		item.Origin = types.ManualOrigin{Content: content.String}
	}
	return &item, nil
}

// System log operations

// AppendLog records one system event. Log writes are best-effort for
// callers; they still return errors so tests can assert on them.
func (s *SQLiteStore) AppendLog(ctx context.Context, entry *LogEntry) error {
	query := `
		INSERT INTO logs (user_id, action, status, details, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		entry.UserID, string(entry.Action), string(entry.Status), entry.Details, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append log: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// ListRecentLogs returns the user's most recent log entries, newest first.
func (s *SQLiteStore) ListRecentLogs(ctx context.Context, userID string, limit int) ([]*LogEntry, error) {
	query := `
		SELECT id, user_id, action, status, details, timestamp
		FROM logs
		WHERE user_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*LogEntry
	for rows.Next() {
		var e LogEntry
		var action, status string
		if err := rows.Scan(&e.ID, &e.UserID, &action, &status, &e.Details, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		e.Action = LogAction(action)
		e.Status = LogStatus(status)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Context document operations

// PutContextDoc stores or replaces a cached context blob.
func (s *SQLiteStore) PutContextDoc(ctx context.Context, doc *ContextDoc) error {
	query := `
		INSERT INTO context_docs (key, data, timestamp)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, timestamp = excluded.timestamp
	`
	if _, err := s.db.ExecContext(ctx, query, doc.Key, string(doc.Data), doc.Timestamp); err != nil {
		return fmt.Errorf("failed to put context doc: %w", err)
	}
	return nil
}

// GetContextDoc fetches a cached context blob by key.
func (s *SQLiteStore) GetContextDoc(ctx context.Context, key string) (*ContextDoc, error) {
	query := `SELECT key, data, timestamp FROM context_docs WHERE key = ?`
	var doc ContextDoc
	var data string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&doc.Key, &data, &doc.Timestamp)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get context doc: %w", err)
	}
	doc.Data = []byte(data)
	return &doc, nil
}

// Status operations

// GetStatus reports archive statistics.
func (s *SQLiteStore) GetStatus(ctx context.Context) (*ArchiveStatus, error) {
	var status ArchiveStatus

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&status.ItemCount); err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM logs").Scan(&status.LogCount); err != nil {
		return nil, fmt.Errorf("failed to count logs: %w", err)
	}

	var last sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(timestamp) FROM items").Scan(&last); err != nil {
		return nil, fmt.Errorf("failed to read last capture time: %w", err)
	}
	if last.Valid {
		status.LastCaptureAt = last.Int64
	}

	return &status, nil
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
