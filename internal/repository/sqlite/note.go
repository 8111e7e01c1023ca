package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/garnizeh/talentflow/internal/models"
)

const noteColumns = `id, candidate_id, text, mentions, timestamp, updated`

func scanNote(s scanner) (*models.Note, error) {
	var n models.Note
	var mentions string
	if err := s.Scan(&n.ID, &n.CandidateID, &n.Text, &mentions, &n.Timestamp, &n.Updated); err != nil {
		return nil, err
	}
	if err := decodeJSON(mentions, &n.Mentions); err != nil {
		return nil, fmt.Errorf("decode mentions of note %d: %w", n.ID, err)
	}
	if n.Mentions == nil {
		n.Mentions = []string{}
	}
	return &n, nil
}

func (r *SQLiteRepo) CreateNote(ctx context.Context, n *models.Note) (int64, error) {
	if n == nil {
		return 0, fmt.Errorf("note is nil")
	}

	mentions, err := encodeJSON(n.Mentions, "[]")
	if err != nil {
		return 0, fmt.Errorf("encode mentions: %w", err)
	}

	ts := n.Timestamp
	if ts == 0 {
		ts = now()
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO notes (candidate_id, text, mentions, timestamp, updated) VALUES (?, ?, ?, ?, ?)`,
		n.CandidateID, n.Text, mentions, ts, ts)
	if err != nil {
		return 0, translate(err)
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetNote(ctx context.Context, id int64) (*models.Note, error) {
	n, err := scanNote(r.conn.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return n, nil
}

// ListNotesByCandidate returns notes oldest first.
func (r *SQLiteRepo) ListNotesByCandidate(ctx context.Context, candidateID int64) ([]models.Note, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+noteColumns+` FROM notes WHERE candidate_id = ? ORDER BY timestamp ASC, id ASC`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateNote(ctx context.Context, id int64, u models.NoteUpdate) error {
	var sets []string
	var args []any
	if u.Text != nil {
		sets = append(sets, "text = ?")
		args = append(args, *u.Text)
	}
	if u.Mentions != nil {
		mentions, err := encodeJSON(*u.Mentions, "[]")
		if err != nil {
			return fmt.Errorf("encode mentions: %w", err)
		}
		sets = append(sets, "mentions = ?")
		args = append(args, mentions)
	}
	sets = append(sets, "updated = ?")
	args = append(args, now(), id)

	res, err := r.conn.Exec(ctx, `UPDATE notes SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return translate(err)
	}

	return affectedOrNotFound(res.RowsAffected())
}

func (r *SQLiteRepo) DeleteNote(ctx context.Context, id int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res.RowsAffected())
}
