package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/talentflow/internal/models"
)

// CreateTimelineEntry appends e. A zero Timestamp is stamped with the current time.
func (r *SQLiteRepo) CreateTimelineEntry(ctx context.Context, e *models.TimelineEntry) (int64, error) {
	return insertTimelineEntry(ctx, r.conn.GetConn(), e)
}

func insertTimelineEntry(ctx context.Context, ex execer, e *models.TimelineEntry) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("timeline entry is nil")
	}

	meta, err := encodeJSON(e.Meta, "{}")
	if err != nil {
		return 0, fmt.Errorf("encode meta: %w", err)
	}

	ts := e.Timestamp
	if ts == 0 {
		ts = now()
	}

	var from sql.NullString
	if e.FromStage != nil {
		from = sql.NullString{String: string(*e.FromStage), Valid: true}
	}

	res, err := ex.ExecContext(ctx, `INSERT INTO timelines (candidate_id, timestamp, from_stage, to_stage, meta) VALUES (?, ?, ?, ?, ?)`,
		e.CandidateID, ts, from, e.ToStage, meta)
	if err != nil {
		return 0, translate(err)
	}

	return res.LastInsertId()
}

// ListTimelineByCandidate returns entries in timestamp order, ties broken by id.
func (r *SQLiteRepo) ListTimelineByCandidate(ctx context.Context, candidateID int64) ([]models.TimelineEntry, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, candidate_id, timestamp, from_stage, to_stage, meta FROM timelines WHERE candidate_id = ? ORDER BY timestamp ASC, id ASC`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TimelineEntry
	for rows.Next() {
		var e models.TimelineEntry
		var from sql.NullString
		var meta string
		if err := rows.Scan(&e.ID, &e.CandidateID, &e.Timestamp, &from, &e.ToStage, &meta); err != nil {
			return nil, err
		}
		if from.Valid {
			st := models.Stage(from.String)
			e.FromStage = &st
		}
		if err := decodeJSON(meta, &e.Meta); err != nil {
			return nil, fmt.Errorf("decode meta of timeline entry %d: %w", e.ID, err)
		}
		out = append(out, e)
	}

	return out, rows.Err()
}
