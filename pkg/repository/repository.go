package repository

import (
	"context"
	"errors"

	"github.com/garnizeh/talentflow/internal/models"
)

// Repository interfaces for the six record collections. These are the public
// contracts the request handler depends on; the SQLite implementation lives
// under internal/repository/sqlite.
//
// Get methods return nil, nil when the record is absent. Update and delete
// methods return ErrNotFound instead.

var (
	// ErrNotFound is returned by update and delete when no row matches the id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate record")
)

type JobRepo interface {
	CreateJob(ctx context.Context, j *models.Job) (int64, error)
	GetJob(ctx context.Context, id int64) (*models.Job, error)
	GetJobBySlug(ctx context.Context, slug string) (*models.Job, error)
	// ListJobs returns every job ordered by ordinal, then id.
	ListJobs(ctx context.Context) ([]models.Job, error)
	ListJobsByStatus(ctx context.Context, status models.JobStatus) ([]models.Job, error)
	UpdateJob(ctx context.Context, id int64, u models.JobUpdate) error
	// DeleteJob removes the job and closes the gap it leaves in the ordinals.
	DeleteJob(ctx context.Context, id int64) error
	MaxJobOrder(ctx context.Context) (int, error)
	// SetJobOrders writes every id→ordinal pair in a single transaction.
	SetJobOrders(ctx context.Context, orders map[int64]int) error
	CountJobs(ctx context.Context) (int64, error)
	CountJobsByStatus(ctx context.Context, status models.JobStatus) (int64, error)
}

type CandidateRepo interface {
	CreateCandidate(ctx context.Context, c *models.Candidate) (int64, error)
	// CreateCandidateWithEntry inserts the candidate and its first timeline
	// entry atomically.
	CreateCandidateWithEntry(ctx context.Context, c *models.Candidate, e *models.TimelineEntry) (int64, error)
	GetCandidate(ctx context.Context, id int64) (*models.Candidate, error)
	// ListCandidates returns every candidate in insertion order.
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
	ListCandidatesByJob(ctx context.Context, jobID int64) ([]models.Candidate, error)
	ListCandidatesByStage(ctx context.Context, stage models.Stage) ([]models.Candidate, error)
	UpdateCandidate(ctx context.Context, id int64, u models.CandidateUpdate) error
	// UpdateCandidateWithEntry appends a timeline entry and applies the update
	// atomically; neither is kept if the other fails.
	UpdateCandidateWithEntry(ctx context.Context, id int64, u models.CandidateUpdate, e *models.TimelineEntry) error
	DeleteCandidate(ctx context.Context, id int64) error
	CountCandidates(ctx context.Context) (int64, error)
	CountCandidatesByStage(ctx context.Context, stage models.Stage) (int64, error)
}

// TimelineRepo is append-only: entries are never updated or deleted.
type TimelineRepo interface {
	CreateTimelineEntry(ctx context.Context, e *models.TimelineEntry) (int64, error)
	ListTimelineByCandidate(ctx context.Context, candidateID int64) ([]models.TimelineEntry, error)
}

type AssessmentRepo interface {
	CreateAssessment(ctx context.Context, a *models.Assessment) (int64, error)
	GetAssessment(ctx context.Context, id int64) (*models.Assessment, error)
	ListAssessments(ctx context.Context) ([]models.Assessment, error)
	ListAssessmentsByJob(ctx context.Context, jobID int64) ([]models.Assessment, error)
	UpdateAssessment(ctx context.Context, a *models.Assessment) error
	DeleteAssessment(ctx context.Context, id int64) error
	CountAssessments(ctx context.Context) (int64, error)
}

// SubmissionRepo is append-only.
type SubmissionRepo interface {
	CreateSubmission(ctx context.Context, s *models.Submission) (int64, error)
	GetSubmission(ctx context.Context, id int64) (*models.Submission, error)
	ListSubmissionsByJob(ctx context.Context, jobID int64) ([]models.Submission, error)
}

type NoteRepo interface {
	CreateNote(ctx context.Context, n *models.Note) (int64, error)
	GetNote(ctx context.Context, id int64) (*models.Note, error)
	ListNotesByCandidate(ctx context.Context, candidateID int64) ([]models.Note, error)
	UpdateNote(ctx context.Context, id int64, u models.NoteUpdate) error
	DeleteNote(ctx context.Context, id int64) error
}

// Repository groups the collections the request handler works against.
type Repository struct {
	Jobs        JobRepo
	Candidates  CandidateRepo
	Timeline    TimelineRepo
	Assessments AssessmentRepo
	Submissions SubmissionRepo
	Notes       NoteRepo
}
