package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/garnizeh/talentflow/internal/models"
	"github.com/garnizeh/talentflow/internal/query"
	"github.com/garnizeh/talentflow/internal/timeline"
	"github.com/garnizeh/talentflow/pkg/repository"
)

type ListCandidatesParams struct {
	Search string
	Stage  string
	// JobID restricts the listing to one job when > 0.
	JobID    int64
	Sort     string
	Page     int
	PageSize int
}

type CandidateInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	JobID *int64 `json:"jobId,omitempty"`
	Stage string `json:"stage,omitempty"`
}

// CandidatePatch holds the fields to change. A JobID of 0 clears the job
// reference. Note annotates the timeline entry of a stage change.
type CandidatePatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Stage *string `json:"stage,omitempty"`
	JobID *int64  `json:"jobId,omitempty"`
	Note  string  `json:"note,omitempty"`
}

type NoteInput struct {
	Text string `json:"text"`
	// Mentions are extracted from Text when nil.
	Mentions []string `json:"mentions,omitempty"`
}

type NotePatch struct {
	Text     *string   `json:"text,omitempty"`
	Mentions *[]string `json:"mentions,omitempty"`
}

func (s *Service) ListCandidates(ctx context.Context, p ListCandidatesParams) (query.Result[models.Candidate], error) {
	return read(ctx, s, "list candidates", func(ctx context.Context) (query.Result[models.Candidate], error) {
		cands, err := s.repo.Candidates.ListCandidates(ctx)
		if err != nil {
			return query.Result[models.Candidate]{}, err
		}
		filters := map[string]string{"stage": p.Stage}
		if p.JobID > 0 {
			filters["jobId"] = strconv.FormatInt(p.JobID, 10)
		}
		return query.Page(cands, query.Params{
			Search:   p.Search,
			Filters:  filters,
			Sort:     p.Sort,
			Page:     p.Page,
			PageSize: p.PageSize,
		}, s.candidateSchema), nil
	})
}

func (s *Service) GetCandidate(ctx context.Context, id int64) (*models.Candidate, error) {
	const op = "get candidate"
	return read(ctx, s, op, func(ctx context.Context) (*models.Candidate, error) {
		return s.loadCandidate(ctx, op, id)
	})
}

func (s *Service) loadCandidate(ctx context.Context, op string, id int64) (*models.Candidate, error) {
	c, err := s.repo.Candidates.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound(op, "candidate %d not found", id)
	}
	return c, nil
}

// CreateCandidate stores the candidate together with its creation entry.
func (s *Service) CreateCandidate(ctx context.Context, in CandidateInput) (*models.Candidate, error) {
	const op = "create candidate"
	return write(ctx, s, op, func(ctx context.Context) (*models.Candidate, error) {
		name := strings.TrimSpace(in.Name)
		email := strings.TrimSpace(in.Email)
		if name == "" || email == "" {
			return nil, validation(op, "name and email are required")
		}
		stage := models.StageApplied
		if strings.TrimSpace(in.Stage) != "" {
			st, ok := models.ParseStage(in.Stage)
			if !ok {
				return nil, validation(op, "unknown stage %q", in.Stage)
			}
			stage = st
		}
		jobID := in.JobID
		if jobID != nil && *jobID <= 0 {
			jobID = nil
		}

		id, err := s.repo.Candidates.CreateCandidateWithEntry(ctx,
			&models.Candidate{Name: name, Email: email, JobID: jobID, Stage: stage},
			s.timeline.Creation(stage))
		if err != nil {
			return nil, err
		}

		s.logger.Info("candidate created", "id", id, "stage", stage)
		return s.loadCandidate(ctx, op, id)
	})
}

// PatchCandidate applies p. A stage that differs from the current one is
// logged on the timeline in the same transaction as the row change.
func (s *Service) PatchCandidate(ctx context.Context, id int64, p CandidatePatch) (*models.Candidate, error) {
	const op = "patch candidate"
	return write(ctx, s, op, func(ctx context.Context) (*models.Candidate, error) {
		existing, err := s.loadCandidate(ctx, op, id)
		if err != nil {
			return nil, err
		}

		var u models.CandidateUpdate
		if p.Name != nil {
			n := strings.TrimSpace(*p.Name)
			if n == "" {
				return nil, validation(op, "name must not be empty")
			}
			u.Name = &n
		}
		if p.Email != nil {
			e := strings.TrimSpace(*p.Email)
			if e == "" {
				return nil, validation(op, "email must not be empty")
			}
			u.Email = &e
		}
		if p.JobID != nil {
			if *p.JobID <= 0 {
				u.ClearJob = true
			} else {
				u.JobID = p.JobID
			}
		}
		var next models.Stage
		if p.Stage != nil {
			st, ok := models.ParseStage(*p.Stage)
			if !ok {
				return nil, validation(op, "unknown stage %q", *p.Stage)
			}
			if timeline.StageChanged(existing.Stage, st) {
				next = st
				u.Stage = &next
			}
		}

		switch {
		case u.Stage != nil:
			entry := s.timeline.Transition(id, existing.Stage, next, p.Note)
			if err := s.repo.Candidates.UpdateCandidateWithEntry(ctx, id, u, entry); err != nil {
				return nil, err
			}
			s.logger.Info("candidate stage changed", "id", id, "from", existing.Stage, "to", next)
		case !u.Empty():
			if err := s.repo.Candidates.UpdateCandidate(ctx, id, u); err != nil {
				return nil, err
			}
		}
		return s.loadCandidate(ctx, op, id)
	})
}

// GetCandidateTimeline returns the stage history, oldest first.
func (s *Service) GetCandidateTimeline(ctx context.Context, candidateID int64) ([]models.TimelineEntry, error) {
	return read(ctx, s, "get timeline", func(ctx context.Context) ([]models.TimelineEntry, error) {
		return s.timeline.Timeline(ctx, candidateID)
	})
}

// GetCandidateNotes returns the notes of a candidate, newest first.
func (s *Service) GetCandidateNotes(ctx context.Context, candidateID int64) ([]models.Note, error) {
	return read(ctx, s, "get notes", func(ctx context.Context) ([]models.Note, error) {
		notes, err := s.repo.Notes.ListNotesByCandidate(ctx, candidateID)
		if err != nil {
			return nil, err
		}
		if notes == nil {
			notes = []models.Note{}
		}
		sort.SliceStable(notes, func(i, j int) bool {
			if notes[i].Timestamp != notes[j].Timestamp {
				return notes[i].Timestamp > notes[j].Timestamp
			}
			return notes[i].ID > notes[j].ID
		})
		return notes, nil
	})
}

func (s *Service) AddNote(ctx context.Context, candidateID int64, in NoteInput) (*models.Note, error) {
	const op = "add note"
	return write(ctx, s, op, func(ctx context.Context) (*models.Note, error) {
		if candidateID <= 0 {
			return nil, validation(op, "candidate id is required")
		}
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return nil, validation(op, "note text is required")
		}
		mentions := cleanStrings(in.Mentions)
		if in.Mentions == nil {
			mentions = Mentions(text)
		}

		id, err := s.repo.Notes.CreateNote(ctx, &models.Note{
			CandidateID: candidateID,
			Text:        text,
			Mentions:    mentions,
			Timestamp:   s.now().UnixMilli(),
		})
		if err != nil {
			return nil, err
		}
		return s.loadNote(ctx, op, id)
	})
}

func (s *Service) loadNote(ctx context.Context, op string, id int64) (*models.Note, error) {
	n, err := s.repo.Notes.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, notFound(op, "note %d not found", id)
	}
	return n, nil
}

// PatchNote edits a note. Changing the text without supplying mentions
// re-extracts them.
func (s *Service) PatchNote(ctx context.Context, id int64, p NotePatch) (*models.Note, error) {
	const op = "patch note"
	return write(ctx, s, op, func(ctx context.Context) (*models.Note, error) {
		if _, err := s.loadNote(ctx, op, id); err != nil {
			return nil, err
		}

		var u models.NoteUpdate
		if p.Text != nil {
			text := strings.TrimSpace(*p.Text)
			if text == "" {
				return nil, validation(op, "note text must not be empty")
			}
			u.Text = &text
			if p.Mentions == nil {
				m := Mentions(text)
				u.Mentions = &m
			}
		}
		if p.Mentions != nil {
			m := cleanStrings(*p.Mentions)
			u.Mentions = &m
		}

		if err := s.repo.Notes.UpdateNote(ctx, id, u); err != nil {
			return nil, err
		}
		return s.loadNote(ctx, op, id)
	})
}

func (s *Service) DeleteNote(ctx context.Context, id int64) error {
	const op = "delete note"
	_, err := write(ctx, s, op, func(ctx context.Context) (struct{}, error) {
		err := s.repo.Notes.DeleteNote(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return struct{}{}, notFound(op, "note %d not found", id)
		}
		return struct{}{}, err
	})
	return err
}
