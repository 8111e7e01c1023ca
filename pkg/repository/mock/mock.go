package mock

import (
	"context"
	"sync"

	"github.com/garnizeh/talentflow/internal/models"
	"github.com/garnizeh/talentflow/pkg/repository"
)

// Store wraps real collections and lets tests force errors per method name,
// e.g. Errs["CreateJob"]. Calls counts every intercepted invocation.
type Store struct {
	repository.JobRepo
	repository.CandidateRepo
	repository.TimelineRepo
	repository.AssessmentRepo
	repository.SubmissionRepo
	repository.NoteRepo

	mu    sync.Mutex
	Errs  map[string]error
	Calls map[string]int
}

// Wrap returns a Store that delegates to r unless an error is configured.
func Wrap(r *repository.Repository) *Store {
	return &Store{
		JobRepo:        r.Jobs,
		CandidateRepo:  r.Candidates,
		TimelineRepo:   r.Timeline,
		AssessmentRepo: r.Assessments,
		SubmissionRepo: r.Submissions,
		NoteRepo:       r.Notes,
		Errs:           map[string]error{},
		Calls:          map[string]int{},
	}
}

// Repository exposes the wrapper as every collection.
func (s *Store) Repository() *repository.Repository {
	return &repository.Repository{Jobs: s, Candidates: s, Timeline: s, Assessments: s, Submissions: s, Notes: s}
}

// Fail makes every later call of method return err.
func (s *Store) Fail(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errs[method] = err
}

// Count returns how many times method was invoked.
func (s *Store) Count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[method]
}

func (s *Store) hit(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls[method]++
	return s.Errs[method]
}

func (s *Store) CreateJob(ctx context.Context, j *models.Job) (int64, error) {
	if err := s.hit("CreateJob"); err != nil {
		return 0, err
	}
	return s.JobRepo.CreateJob(ctx, j)
}

func (s *Store) ListJobs(ctx context.Context) ([]models.Job, error) {
	if err := s.hit("ListJobs"); err != nil {
		return nil, err
	}
	return s.JobRepo.ListJobs(ctx)
}

func (s *Store) ListJobsByStatus(ctx context.Context, status models.JobStatus) ([]models.Job, error) {
	if err := s.hit("ListJobsByStatus"); err != nil {
		return nil, err
	}
	return s.JobRepo.ListJobsByStatus(ctx, status)
}

func (s *Store) UpdateJob(ctx context.Context, id int64, u models.JobUpdate) error {
	if err := s.hit("UpdateJob"); err != nil {
		return err
	}
	return s.JobRepo.UpdateJob(ctx, id, u)
}

func (s *Store) DeleteJob(ctx context.Context, id int64) error {
	if err := s.hit("DeleteJob"); err != nil {
		return err
	}
	return s.JobRepo.DeleteJob(ctx, id)
}

func (s *Store) SetJobOrders(ctx context.Context, orders map[int64]int) error {
	if err := s.hit("SetJobOrders"); err != nil {
		return err
	}
	return s.JobRepo.SetJobOrders(ctx, orders)
}

func (s *Store) CountJobs(ctx context.Context) (int64, error) {
	if err := s.hit("CountJobs"); err != nil {
		return 0, err
	}
	return s.JobRepo.CountJobs(ctx)
}

func (s *Store) CreateCandidate(ctx context.Context, c *models.Candidate) (int64, error) {
	if err := s.hit("CreateCandidate"); err != nil {
		return 0, err
	}
	return s.CandidateRepo.CreateCandidate(ctx, c)
}

func (s *Store) CreateCandidateWithEntry(ctx context.Context, c *models.Candidate, e *models.TimelineEntry) (int64, error) {
	if err := s.hit("CreateCandidateWithEntry"); err != nil {
		return 0, err
	}
	return s.CandidateRepo.CreateCandidateWithEntry(ctx, c, e)
}

func (s *Store) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	if err := s.hit("ListCandidates"); err != nil {
		return nil, err
	}
	return s.CandidateRepo.ListCandidates(ctx)
}

func (s *Store) UpdateCandidate(ctx context.Context, id int64, u models.CandidateUpdate) error {
	if err := s.hit("UpdateCandidate"); err != nil {
		return err
	}
	return s.CandidateRepo.UpdateCandidate(ctx, id, u)
}

func (s *Store) UpdateCandidateWithEntry(ctx context.Context, id int64, u models.CandidateUpdate, e *models.TimelineEntry) error {
	if err := s.hit("UpdateCandidateWithEntry"); err != nil {
		return err
	}
	return s.CandidateRepo.UpdateCandidateWithEntry(ctx, id, u, e)
}

func (s *Store) DeleteCandidate(ctx context.Context, id int64) error {
	if err := s.hit("DeleteCandidate"); err != nil {
		return err
	}
	return s.CandidateRepo.DeleteCandidate(ctx, id)
}

func (s *Store) CreateTimelineEntry(ctx context.Context, e *models.TimelineEntry) (int64, error) {
	if err := s.hit("CreateTimelineEntry"); err != nil {
		return 0, err
	}
	return s.TimelineRepo.CreateTimelineEntry(ctx, e)
}

func (s *Store) ListTimelineByCandidate(ctx context.Context, candidateID int64) ([]models.TimelineEntry, error) {
	if err := s.hit("ListTimelineByCandidate"); err != nil {
		return nil, err
	}
	return s.TimelineRepo.ListTimelineByCandidate(ctx, candidateID)
}

func (s *Store) CreateAssessment(ctx context.Context, a *models.Assessment) (int64, error) {
	if err := s.hit("CreateAssessment"); err != nil {
		return 0, err
	}
	return s.AssessmentRepo.CreateAssessment(ctx, a)
}

func (s *Store) UpdateAssessment(ctx context.Context, a *models.Assessment) error {
	if err := s.hit("UpdateAssessment"); err != nil {
		return err
	}
	return s.AssessmentRepo.UpdateAssessment(ctx, a)
}

func (s *Store) CreateSubmission(ctx context.Context, sub *models.Submission) (int64, error) {
	if err := s.hit("CreateSubmission"); err != nil {
		return 0, err
	}
	return s.SubmissionRepo.CreateSubmission(ctx, sub)
}

func (s *Store) CreateNote(ctx context.Context, n *models.Note) (int64, error) {
	if err := s.hit("CreateNote"); err != nil {
		return 0, err
	}
	return s.NoteRepo.CreateNote(ctx, n)
}

func (s *Store) UpdateNote(ctx context.Context, id int64, u models.NoteUpdate) error {
	if err := s.hit("UpdateNote"); err != nil {
		return err
	}
	return s.NoteRepo.UpdateNote(ctx, id, u)
}

func (s *Store) DeleteNote(ctx context.Context, id int64) error {
	if err := s.hit("DeleteNote"); err != nil {
		return err
	}
	return s.NoteRepo.DeleteNote(ctx, id)
}
