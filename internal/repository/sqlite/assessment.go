package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/talentflow/internal/models"
)

const assessmentColumns = `id, job_id, title, sections, created, updated`

func scanAssessment(s scanner) (*models.Assessment, error) {
	var a models.Assessment
	var sections string
	if err := s.Scan(&a.ID, &a.JobID, &a.Title, &sections, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if err := decodeJSON(sections, &a.Sections); err != nil {
		return nil, fmt.Errorf("decode sections of assessment %d: %w", a.ID, err)
	}
	if a.Sections == nil {
		a.Sections = []models.Section{}
	}
	return &a, nil
}

func (r *SQLiteRepo) queryAssessments(ctx context.Context, query string, args ...any) ([]models.Assessment, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CreateAssessment(ctx context.Context, a *models.Assessment) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("assessment is nil")
	}

	sections, err := encodeJSON(a.Sections, "[]")
	if err != nil {
		return 0, fmt.Errorf("encode sections: %w", err)
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO assessments (job_id, title, sections, created, updated) VALUES (?, ?, ?, ?, ?)`,
		a.JobID, a.Title, sections, ts, ts)
	if err != nil {
		return 0, translate(err)
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetAssessment(ctx context.Context, id int64) (*models.Assessment, error) {
	a, err := scanAssessment(r.conn.QueryRow(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *SQLiteRepo) ListAssessments(ctx context.Context) ([]models.Assessment, error) {
	return r.queryAssessments(ctx, `SELECT `+assessmentColumns+` FROM assessments ORDER BY id ASC`)
}

func (r *SQLiteRepo) ListAssessmentsByJob(ctx context.Context, jobID int64) ([]models.Assessment, error) {
	return r.queryAssessments(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE job_id = ? ORDER BY id ASC`, jobID)
}

// UpdateAssessment replaces title and sections of the stored record with a.ID.
func (r *SQLiteRepo) UpdateAssessment(ctx context.Context, a *models.Assessment) error {
	if a == nil {
		return fmt.Errorf("assessment is nil")
	}

	sections, err := encodeJSON(a.Sections, "[]")
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}

	res, err := r.conn.Exec(ctx, `UPDATE assessments SET title = ?, sections = ?, updated = ? WHERE id = ?`,
		a.Title, sections, now(), a.ID)
	if err != nil {
		return translate(err)
	}

	return affectedOrNotFound(res.RowsAffected())
}

func (r *SQLiteRepo) DeleteAssessment(ctx context.Context, id int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM assessments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res.RowsAffected())
}

func (r *SQLiteRepo) CountAssessments(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM assessments`)
}
