package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/talentflow/internal/models"
)

const submissionColumns = `id, job_id, candidate_id, answers, submitted_at`

func scanSubmission(s scanner) (*models.Submission, error) {
	var sub models.Submission
	var answers string
	if err := s.Scan(&sub.ID, &sub.JobID, &sub.CandidateID, &answers, &sub.SubmittedAt); err != nil {
		return nil, err
	}
	if err := decodeJSON(answers, &sub.Answers); err != nil {
		return nil, fmt.Errorf("decode answers of submission %d: %w", sub.ID, err)
	}
	if sub.Answers == nil {
		sub.Answers = map[string]any{}
	}
	return &sub, nil
}

// CreateSubmission stores the answers verbatim. A zero SubmittedAt is stamped
// with the current time.
func (r *SQLiteRepo) CreateSubmission(ctx context.Context, s *models.Submission) (int64, error) {
	if s == nil {
		return 0, fmt.Errorf("submission is nil")
	}

	answers, err := encodeJSON(s.Answers, "{}")
	if err != nil {
		return 0, fmt.Errorf("encode answers: %w", err)
	}

	ts := s.SubmittedAt
	if ts == 0 {
		ts = now()
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO submissions (job_id, candidate_id, answers, submitted_at) VALUES (?, ?, ?, ?)`,
		s.JobID, s.CandidateID, answers, ts)
	if err != nil {
		return 0, translate(err)
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetSubmission(ctx context.Context, id int64) (*models.Submission, error) {
	s, err := scanSubmission(r.conn.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *SQLiteRepo) ListSubmissionsByJob(ctx context.Context, jobID int64) ([]models.Submission, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE job_id = ? ORDER BY submitted_at ASC, id ASC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}

	return out, rows.Err()
}
