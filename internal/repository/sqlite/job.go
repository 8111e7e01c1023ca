package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/garnizeh/talentflow/internal/models"
	"github.com/garnizeh/talentflow/pkg/repository"
)

const jobColumns = `id, title, slug, status, tags, sort_order, created, updated`

func scanJob(s scanner) (*models.Job, error) {
	var j models.Job
	var tags string
	if err := s.Scan(&j.ID, &j.Title, &j.Slug, &j.Status, &tags, &j.Order, &j.Created, &j.Updated); err != nil {
		return nil, err
	}
	if err := decodeJSON(tags, &j.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of job %d: %w", j.ID, err)
	}
	if j.Tags == nil {
		j.Tags = []string{}
	}
	return &j, nil
}

func (r *SQLiteRepo) queryJobs(ctx context.Context, query string, args ...any) ([]models.Job, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CreateJob(ctx context.Context, j *models.Job) (int64, error) {
	if j == nil {
		return 0, fmt.Errorf("job is nil")
	}

	tags, err := encodeJSON(j.Tags, "[]")
	if err != nil {
		return 0, fmt.Errorf("encode tags: %w", err)
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO jobs (title, slug, status, tags, sort_order, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.Title, j.Slug, j.Status, tags, j.Order, ts, ts)
	if err != nil {
		return 0, translate(err)
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	j, err := scanJob(r.conn.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return j, nil
}

func (r *SQLiteRepo) GetJobBySlug(ctx context.Context, slug string) (*models.Job, error) {
	j, err := scanJob(r.conn.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE slug = ?`, slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return j, nil
}

func (r *SQLiteRepo) ListJobs(ctx context.Context) ([]models.Job, error) {
	return r.queryJobs(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY sort_order ASC, id ASC`)
}

func (r *SQLiteRepo) ListJobsByStatus(ctx context.Context, status models.JobStatus) ([]models.Job, error) {
	return r.queryJobs(ctx, `SELECT `+jobColumns+` FROM jobs WHERE status = ? ORDER BY sort_order ASC, id ASC`, status)
}

func (r *SQLiteRepo) UpdateJob(ctx context.Context, id int64, u models.JobUpdate) error {
	if u.Empty() {
		n, err := r.count(ctx, `SELECT COUNT(*) FROM jobs WHERE id = ?`, id)
		return affectedOrNotFound(n, err)
	}

	var sets []string
	var args []any
	if u.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *u.Title)
	}
	if u.Slug != nil {
		sets = append(sets, "slug = ?")
		args = append(args, *u.Slug)
	}
	if u.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *u.Status)
	}
	if u.Tags != nil {
		tags, err := encodeJSON(*u.Tags, "[]")
		if err != nil {
			return fmt.Errorf("encode tags: %w", err)
		}
		sets = append(sets, "tags = ?")
		args = append(args, tags)
	}
	sets = append(sets, "updated = ?")
	args = append(args, now(), id)

	res, err := r.conn.Exec(ctx, `UPDATE jobs SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return translate(err)
	}

	return affectedOrNotFound(res.RowsAffected())
}

func (r *SQLiteRepo) DeleteJob(ctx context.Context, id int64) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var order int
	if err := tx.QueryRowContext(ctx, `SELECT sort_order FROM jobs WHERE id = ?`, id).Scan(&order); err != nil {
		if err == sql.ErrNoRows {
			return repository.ErrNotFound
		}
		return fmt.Errorf("query job order: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE jobs SET sort_order = sort_order - 1, updated = ? WHERE sort_order > ?`, now(), order); err != nil {
		return fmt.Errorf("close order gap: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) MaxJobOrder(ctx context.Context) (int, error) {
	var max sql.NullInt64
	if err := r.conn.QueryRow(ctx, `SELECT MAX(sort_order) FROM jobs`).Scan(&max); err != nil {
		return 0, err
	}
	return int(max.Int64), nil
}

func (r *SQLiteRepo) SetJobOrders(ctx context.Context, orders map[int64]int) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(orders))
	for id := range orders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	for _, id := range ids {
		res, err := tx.ExecContext(ctx, `UPDATE jobs SET sort_order = ?, updated = ? WHERE id = ?`, orders[id], ts, id)
		if err != nil {
			return fmt.Errorf("set order of job %d: %w", id, err)
		}
		if err := affectedOrNotFound(res.RowsAffected()); err != nil {
			return fmt.Errorf("set order of job %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.logger.Debug("job orders rewritten", "rows", len(ids))
	return nil
}

func (r *SQLiteRepo) CountJobs(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM jobs`)
}

func (r *SQLiteRepo) CountJobsByStatus(ctx context.Context, status models.JobStatus) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM jobs WHERE status = ?`, status)
}
