package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/garnizeh/talentflow/internal/models"
)

const candidateColumns = `id, name, email, job_id, stage, created, updated`

func scanCandidate(s scanner) (*models.Candidate, error) {
	var c models.Candidate
	var jobID sql.NullInt64
	if err := s.Scan(&c.ID, &c.Name, &c.Email, &jobID, &c.Stage, &c.Created, &c.Updated); err != nil {
		return nil, err
	}
	if jobID.Valid {
		v := jobID.Int64
		c.JobID = &v
	}
	return &c, nil
}

func (r *SQLiteRepo) queryCandidates(ctx context.Context, query string, args ...any) ([]models.Candidate, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CreateCandidate(ctx context.Context, c *models.Candidate) (int64, error) {
	return insertCandidate(ctx, r.conn.GetConn(), c)
}

func insertCandidate(ctx context.Context, ex execer, c *models.Candidate) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("candidate is nil")
	}

	ts := now()
	res, err := ex.ExecContext(ctx, `INSERT INTO candidates (name, email, job_id, stage, created, updated) VALUES (?, ?, ?, ?, ?, ?)`,
		c.Name, c.Email, c.JobID, c.Stage, ts, ts)
	if err != nil {
		return 0, translate(err)
	}

	return res.LastInsertId()
}

// CreateCandidateWithEntry inserts c and its first timeline entry in one
// transaction; e.CandidateID is set to the new id.
func (r *SQLiteRepo) CreateCandidateWithEntry(ctx context.Context, c *models.Candidate, e *models.TimelineEntry) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("timeline entry is nil")
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := insertCandidate(ctx, tx, c)
	if err != nil {
		return 0, err
	}
	e.CandidateID = id
	if e.ID, err = insertTimelineEntry(ctx, tx, e); err != nil {
		return 0, fmt.Errorf("append timeline entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepo) GetCandidate(ctx context.Context, id int64) (*models.Candidate, error) {
	c, err := scanCandidate(r.conn.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *SQLiteRepo) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	return r.queryCandidates(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY id ASC`)
}

func (r *SQLiteRepo) ListCandidatesByJob(ctx context.Context, jobID int64) ([]models.Candidate, error) {
	return r.queryCandidates(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE job_id = ? ORDER BY id ASC`, jobID)
}

func (r *SQLiteRepo) ListCandidatesByStage(ctx context.Context, stage models.Stage) ([]models.Candidate, error) {
	return r.queryCandidates(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE stage = ? ORDER BY id ASC`, stage)
}

func (r *SQLiteRepo) UpdateCandidate(ctx context.Context, id int64, u models.CandidateUpdate) error {
	if u.Empty() {
		n, err := r.count(ctx, `SELECT COUNT(*) FROM candidates WHERE id = ?`, id)
		return affectedOrNotFound(n, err)
	}
	return updateCandidate(ctx, r.conn.GetConn(), id, u)
}

// UpdateCandidateWithEntry appends e and applies u in one transaction. A
// missing candidate rolls the entry back and reports ErrNotFound.
func (r *SQLiteRepo) UpdateCandidateWithEntry(ctx context.Context, id int64, u models.CandidateUpdate, e *models.TimelineEntry) error {
	if e == nil {
		return fmt.Errorf("timeline entry is nil")
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	e.CandidateID = id
	if e.ID, err = insertTimelineEntry(ctx, tx, e); err != nil {
		return fmt.Errorf("append timeline entry: %w", err)
	}
	if err := updateCandidate(ctx, tx, id, u); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.logger.Debug("candidate updated with timeline entry", "id", id, "to", e.ToStage)
	return nil
}

func updateCandidate(ctx context.Context, ex execer, id int64, u models.CandidateUpdate) error {
	var sets []string
	var args []any
	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *u.Email)
	}
	if u.Stage != nil {
		sets = append(sets, "stage = ?")
		args = append(args, *u.Stage)
	}
	switch {
	case u.ClearJob:
		sets = append(sets, "job_id = NULL")
	case u.JobID != nil:
		sets = append(sets, "job_id = ?")
		args = append(args, *u.JobID)
	}
	sets = append(sets, "updated = ?")
	args = append(args, now(), id)

	res, err := ex.ExecContext(ctx, `UPDATE candidates SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return translate(err)
	}

	return affectedOrNotFound(res.RowsAffected())
}

func (r *SQLiteRepo) DeleteCandidate(ctx context.Context, id int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM candidates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res.RowsAffected())
}

func (r *SQLiteRepo) CountCandidates(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM candidates`)
}

func (r *SQLiteRepo) CountCandidatesByStage(ctx context.Context, stage models.Stage) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM candidates WHERE stage = ?`, stage)
}
