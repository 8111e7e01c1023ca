package service

import (
	"context"
	"errors"

	"github.com/garnizeh/talentflow/internal/assessment"
	"github.com/garnizeh/talentflow/internal/models"
	"github.com/garnizeh/talentflow/pkg/repository"
)

type SubmissionInput struct {
	CandidateID int64          `json:"candidateId"`
	Answers     map[string]any `json:"answers"`
}

// GetAssessmentsForJob reports NotFound when the job has no assessment.
func (s *Service) GetAssessmentsForJob(ctx context.Context, jobID int64) ([]models.Assessment, error) {
	const op = "get assessments"
	return read(ctx, s, op, func(ctx context.Context) ([]models.Assessment, error) {
		list, err := s.repo.Assessments.ListAssessmentsByJob(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, notFound(op, "no assessments found for job %d", jobID)
		}
		return list, nil
	})
}

func (s *Service) GetAssessment(ctx context.Context, id int64) (*models.Assessment, error) {
	const op = "get assessment"
	return read(ctx, s, op, func(ctx context.Context) (*models.Assessment, error) {
		return s.loadAssessment(ctx, op, id)
	})
}

func (s *Service) loadAssessment(ctx context.Context, op string, id int64) (*models.Assessment, error) {
	a, err := s.repo.Assessments.GetAssessment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, notFound(op, "assessment %d not found", id)
	}
	return a, nil
}

// SaveAssessment updates the assessment named by d.ID in place, or creates a
// new one when d.ID is zero. An update must target an assessment of jobID.
func (s *Service) SaveAssessment(ctx context.Context, jobID int64, d assessment.Draft) (*models.Assessment, error) {
	const op = "save assessment"
	return write(ctx, s, op, func(ctx context.Context) (*models.Assessment, error) {
		if jobID <= 0 {
			return nil, validation(op, "job id is required")
		}
		d, err := s.validator.Validate(ctx, d)
		if err != nil {
			var ve *assessment.Error
			if errors.As(err, &ve) {
				return nil, &Error{Kind: ErrValidation, Op: op, Err: ve}
			}
			return nil, err
		}

		rec := &models.Assessment{ID: d.ID, JobID: jobID, Title: d.Title, Sections: d.Sections}
		if d.ID > 0 {
			existing, err := s.repo.Assessments.GetAssessment(ctx, d.ID)
			if err != nil {
				return nil, err
			}
			if existing == nil || existing.JobID != jobID {
				return nil, notFound(op, "assessment %d not found for job %d", d.ID, jobID)
			}
			if err := s.repo.Assessments.UpdateAssessment(ctx, rec); err != nil {
				return nil, err
			}
			s.logger.Info("assessment updated", "id", d.ID, "job_id", jobID)
			return s.loadAssessment(ctx, op, d.ID)
		}

		id, err := s.repo.Assessments.CreateAssessment(ctx, rec)
		if err != nil {
			return nil, err
		}
		s.logger.Info("assessment created", "id", id, "job_id", jobID, "questions", rec.QuestionCount())
		return s.loadAssessment(ctx, op, id)
	})
}

func (s *Service) DeleteAssessment(ctx context.Context, id int64) error {
	const op = "delete assessment"
	_, err := write(ctx, s, op, func(ctx context.Context) (struct{}, error) {
		err := s.repo.Assessments.DeleteAssessment(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return struct{}{}, notFound(op, "assessment %d not found", id)
		}
		return struct{}{}, err
	})
	return err
}

// SubmitAssessment stores a candidate's answers for a job. Submissions are
// never changed afterwards.
func (s *Service) SubmitAssessment(ctx context.Context, jobID int64, in SubmissionInput) (*models.Submission, error) {
	const op = "submit assessment"
	return write(ctx, s, op, func(ctx context.Context) (*models.Submission, error) {
		if jobID <= 0 {
			return nil, validation(op, "job id is required")
		}
		// An empty answers object is a valid submission; only a missing one is not.
		if in.CandidateID <= 0 || in.Answers == nil {
			return nil, validation(op, "candidateId and answers are required")
		}

		id, err := s.repo.Submissions.CreateSubmission(ctx, &models.Submission{
			JobID:       jobID,
			CandidateID: in.CandidateID,
			Answers:     in.Answers,
			SubmittedAt: s.now().UnixMilli(),
		})
		if err != nil {
			return nil, err
		}
		sub, err := s.repo.Submissions.GetSubmission(ctx, id)
		if err != nil {
			return nil, err
		}
		if sub == nil {
			return nil, notFound(op, "submission %d not found", id)
		}
		s.logger.Info("assessment submitted", "id", id, "job_id", jobID, "candidate_id", in.CandidateID)
		return sub, nil
	})
}

func (s *Service) ListSubmissions(ctx context.Context, jobID int64) ([]models.Submission, error) {
	return read(ctx, s, "list submissions", func(ctx context.Context) ([]models.Submission, error) {
		subs, err := s.repo.Submissions.ListSubmissionsByJob(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if subs == nil {
			subs = []models.Submission{}
		}
		return subs, nil
	})
}
