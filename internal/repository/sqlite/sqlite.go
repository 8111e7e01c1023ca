package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/garnizeh/talentflow/internal/db"
	"github.com/garnizeh/talentflow/pkg/repository"
)

// SQLiteRepo implements the repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.JobRepo = (*SQLiteRepo)(nil)
var _ repository.CandidateRepo = (*SQLiteRepo)(nil)
var _ repository.TimelineRepo = (*SQLiteRepo)(nil)
var _ repository.AssessmentRepo = (*SQLiteRepo)(nil)
var _ repository.SubmissionRepo = (*SQLiteRepo)(nil)
var _ repository.NoteRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

// Repository exposes r as every collection of a repository.Repository.
func (r *SQLiteRepo) Repository() *repository.Repository {
	return &repository.Repository{
		Jobs:        r,
		Candidates:  r,
		Timeline:    r,
		Assessments: r,
		Submissions: r,
		Notes:       r,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

// translate maps driver errors onto repository sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlitedrv.Error
	if errors.As(err, &se) && (se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY) {
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	}
	return err
}

// encodeJSON renders v for a TEXT column, using empty when v is nil.
func encodeJSON(v any, empty string) (string, error) {
	if v == nil {
		return empty, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return empty, nil
	}
	return string(b), nil
}

func decodeJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}

func affectedOrNotFound(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) count(ctx context.Context, query string, args ...any) (int64, error) {
	var cnt int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}
