// Package timeline builds the append-only entries of candidate stage
// transitions and reads them back in order. The entries are written by the
// candidate store together with the change they describe.
package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/garnizeh/talentflow/internal/models"
	"github.com/garnizeh/talentflow/pkg/repository"
)

const (
	NoteCreated = "Candidate created"
	NoteChanged = "Stage changed"
)

type Logger struct {
	repo   repository.TimelineRepo
	logger *slog.Logger
	clock  func() time.Time
}

type Option func(*Logger)

// WithClock replaces time.Now for entry timestamps.
func WithClock(fn func() time.Time) Option {
	return func(l *Logger) { l.clock = fn }
}

func New(repo repository.TimelineRepo, logger *slog.Logger, opts ...Option) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Logger{repo: repo, logger: logger, clock: time.Now}
	for _, o := range opts {
		o(l)
	}
	return l
}

// StageChanged reports whether moving from → to is a real transition.
func StageChanged(from, to models.Stage) bool {
	return !strings.EqualFold(string(from), string(to))
}

// Creation builds the entry for a new candidate; its FromStage is nil. The
// store assigns CandidateID when it inserts the candidate.
func (l *Logger) Creation(stage models.Stage) *models.TimelineEntry {
	return &models.TimelineEntry{
		Timestamp: l.clock().UnixMilli(),
		ToStage:   stage,
		Meta:      map[string]any{"note": NoteCreated},
	}
}

// Transition builds the entry for from → to. An empty note is stored as
// NoteChanged.
func (l *Logger) Transition(candidateID int64, from, to models.Stage, note string) *models.TimelineEntry {
	if note = strings.TrimSpace(note); note == "" {
		note = NoteChanged
	}
	return &models.TimelineEntry{
		CandidateID: candidateID,
		Timestamp:   l.clock().UnixMilli(),
		FromStage:   &from,
		ToStage:     to,
		Meta:        map[string]any{"note": note},
	}
}

// Timeline returns the entries of a candidate ascending by timestamp, ties by id.
func (l *Logger) Timeline(ctx context.Context, candidateID int64) ([]models.TimelineEntry, error) {
	entries, err := l.repo.ListTimelineByCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list timeline: %w", err)
	}
	if entries == nil {
		entries = []models.TimelineEntry{}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp != entries[j].Timestamp {
			return entries[i].Timestamp < entries[j].Timestamp
		}
		return entries[i].ID < entries[j].ID
	})
	l.logger.Debug("timeline listed", "candidate_id", candidateID, "entries", len(entries))
	return entries, nil
}
