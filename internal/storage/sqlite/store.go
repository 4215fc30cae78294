package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tjfontaine/polyglot-rest-client/internal/core/ports"
)

// Store is a SQLite implementation of InvocationStore
type Store struct {
	db *sql.DB
}

var _ ports.InvocationStore = (*Store)(nil)

// New creates a new SQLite store
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS invocations (
			id TEXT PRIMARY KEY,
			operation TEXT NOT NULL,
			method TEXT NOT NULL,
			path TEXT NOT NULL,
			status_code INTEGER NOT NULL,
			content_type TEXT,
			failed INTEGER NOT NULL DEFAULT 0,
			error_type TEXT,
			error_message TEXT,
			duration_ns INTEGER,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invocations_operation ON invocations(operation)`,
		`CREATE INDEX IF NOT EXISTS idx_invocations_created ON invocations(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// SaveInvocation saves an invocation record
func (s *Store) SaveInvocation(ctx context.Context, rec *ports.InvocationRecord) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("invocation record requires an id")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	var contentType, errorType, errorMessage sql.NullString
	if rec.ContentType != "" {
		contentType = sql.NullString{String: rec.ContentType, Valid: true}
	}
	if rec.ErrorType != "" {
		errorType = sql.NullString{String: rec.ErrorType, Valid: true}
	}
	if rec.ErrorMessage != "" {
		errorMessage = sql.NullString{String: rec.ErrorMessage, Valid: true}
	}

	failed := 0
	if rec.Failed {
		failed = 1
	}

	query := `INSERT INTO invocations (
		id, operation, method, path, status_code, content_type,
		failed, error_type, error_message, duration_ns, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Operation, rec.Method, rec.Path, rec.StatusCode, contentType,
		failed, errorType, errorMessage, int64(rec.Duration), rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save invocation: %w", err)
	}

	return nil
}

const selectColumns = `SELECT id, operation, method, path, status_code, content_type,
	failed, error_type, error_message, duration_ns, created_at FROM invocations`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*ports.InvocationRecord, error) {
	var (
		rec                                  ports.InvocationRecord
		contentType, errorType, errorMessage sql.NullString
		failed                               int
		durationNs                           sql.NullInt64
	)

	err := row.Scan(&rec.ID, &rec.Operation, &rec.Method, &rec.Path, &rec.StatusCode, &contentType,
		&failed, &errorType, &errorMessage, &durationNs, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	rec.ContentType = contentType.String
	rec.Failed = failed == 1
	rec.ErrorType = errorType.String
	rec.ErrorMessage = errorMessage.String
	rec.Duration = time.Duration(durationNs.Int64)

	return &rec, nil
}

// GetInvocation retrieves an invocation record by ID
func (s *Store) GetInvocation(ctx context.Context, id string) (*ports.InvocationRecord, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invocation %s: %w", id, ports.ErrInvocationNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invocation: %w", err)
	}
	return rec, nil
}

// ListInvocations lists invocation records, newest first
func (s *Store) ListInvocations(ctx context.Context, opts ports.ListOptions) ([]*ports.InvocationRecord, error) {
	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(selectColumns)

	if opts.Operation != "" {
		query.WriteString(` WHERE operation = ?`)
		args = append(args, opts.Operation)
	}
	query.WriteString(` ORDER BY created_at DESC, id DESC`)

	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	query.WriteString(` LIMIT ? OFFSET ?`)
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invocations: %w", err)
	}
	defer rows.Close()

	records := []*ports.InvocationRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invocation: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invocations: %w", err)
	}

	return records, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
