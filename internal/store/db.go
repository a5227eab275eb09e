package store

import (
	"context"
	"database/sql"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"taskstate/internal/task"
)

// Store archives completed user tasks in MySQL. The in-memory manager only
// retains a bounded window of completed tasks; the archive keeps the rest.
type Store struct {
	db *sql.DB
}

func NewDefaultStore() (*Store, error) {
	dsn := os.Getenv("STORE_DSN")
	if dsn == "" {
		dsn = "root:123456@tcp(127.0.0.1:3306)/taskstate?parseTime=true"
	}
	return New(dsn)
}

func New(dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	createTasks := `CREATE TABLE IF NOT EXISTS user_tasks (
    id CHAR(36) PRIMARY KEY,
    request_url VARCHAR(500) NOT NULL,
    client_identity VARCHAR(200),
    start_ms BIGINT NOT NULL,
    completed_ms BIGINT NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, createTasks); err != nil {
		return err
	}
	// MySQL lacks IF NOT EXISTS for CREATE INDEX in some versions; ignore duplicates
	_ = s.execIgnoreDupIndex(ctx, `CREATE INDEX idx_completed_ms ON user_tasks(completed_ms)`)
	return nil
}

func (s *Store) execIgnoreDupIndex(ctx context.Context, ddl string) error {
	_, err := s.db.ExecContext(ctx, ddl)
	if err != nil {
		e := err.Error()
		if strings.Contains(e, "Duplicate key name") || strings.Contains(e, "1061") {
			return nil
		}
	}
	return err
}

// ArchivedTask is one completed task as stored in the archive.
type ArchivedTask struct {
	Info        task.Info
	CompletedMs int64
}

// InsertCompleted records a completed task. Re-archiving the same id updates
// the completion time instead of failing; a task completes exactly once, so
// this only matters for retried writes.
func (s *Store) InsertCompleted(ctx context.Context, info task.Info, completedMs int64) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO user_tasks
    (id, request_url, client_identity, start_ms, completed_ms)
    VALUES(?,?,?,?,?)
    ON DUPLICATE KEY UPDATE
      completed_ms=VALUES(completed_ms)`,
		info.ID.String(), info.RequestURL, info.ClientIdentity, info.StartMs, completedMs)
	return err
}

// RecentCompleted returns the most recently completed tasks, newest first.
func (s *Store) RecentCompleted(ctx context.Context, limit int) ([]ArchivedTask, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, request_url, client_identity, start_ms, completed_ms
        FROM user_tasks
        ORDER BY completed_ms DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ArchivedTask
	for rows.Next() {
		var (
			a  ArchivedTask
			id string
		)
		if err := rows.Scan(&id, &a.Info.RequestURL, &a.Info.ClientIdentity, &a.Info.StartMs, &a.CompletedMs); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		a.Info.ID = parsed
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountCompleted returns the number of archived tasks.
func (s *Store) CountCompleted(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_tasks`).Scan(&n)
	return n, err
}
