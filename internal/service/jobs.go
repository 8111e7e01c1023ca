package service

import (
	"context"
	"errors"
	"strings"

	"github.com/garnizeh/talentflow/internal/models"
	"github.com/garnizeh/talentflow/internal/ordering"
	"github.com/garnizeh/talentflow/internal/query"
	"github.com/garnizeh/talentflow/internal/slug"
	"github.com/garnizeh/talentflow/pkg/repository"
)

// createAttempts bounds slug re-derivation when a concurrent insert wins the race.
const createAttempts = 3

type ListJobsParams struct {
	Search   string
	Status   string
	Sort     string
	Page     int
	PageSize int
}

type JobInput struct {
	Title  string   `json:"title"`
	Slug   string   `json:"slug,omitempty"`
	Status string   `json:"status,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// JobPatch holds the fields to change; nil leaves a field untouched.
type JobPatch struct {
	Title  *string   `json:"title,omitempty"`
	Slug   *string   `json:"slug,omitempty"`
	Status *string   `json:"status,omitempty"`
	Tags   *[]string `json:"tags,omitempty"`
}

type ReorderResult struct {
	ID        int64 `json:"id"`
	FromOrder int   `json:"fromOrder"`
	ToOrder   int   `json:"toOrder"`
	// Order is the ordinal the job ended up with after clamping.
	Order int `json:"order"`
}

// ListJobs pages the jobs matching p. A known status narrows the load to
// that status in the store.
func (s *Service) ListJobs(ctx context.Context, p ListJobsParams) (query.Result[models.Job], error) {
	return read(ctx, s, "list jobs", func(ctx context.Context) (query.Result[models.Job], error) {
		var jobs []models.Job
		var err error
		if st, ok := models.ParseJobStatus(p.Status); ok {
			jobs, err = s.repo.Jobs.ListJobsByStatus(ctx, st)
		} else {
			jobs, err = s.repo.Jobs.ListJobs(ctx)
		}
		if err != nil {
			return query.Result[models.Job]{}, err
		}
		return query.Page(jobs, query.Params{
			Search:   p.Search,
			Filters:  map[string]string{"status": p.Status},
			Sort:     p.Sort,
			Page:     p.Page,
			PageSize: p.PageSize,
		}, s.jobSchema), nil
	})
}

func (s *Service) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	const op = "get job"
	return read(ctx, s, op, func(ctx context.Context) (*models.Job, error) {
		return s.loadJob(ctx, op, id)
	})
}

func (s *Service) loadJob(ctx context.Context, op string, id int64) (*models.Job, error) {
	j, err := s.repo.Jobs.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, notFound(op, "job %d not found", id)
	}
	return j, nil
}

func (s *Service) slugTaken(ctx context.Context) func(string) (bool, error) {
	return func(candidate string) (bool, error) {
		j, err := s.repo.Jobs.GetJobBySlug(ctx, candidate)
		return j != nil, err
	}
}

func (s *Service) CreateJob(ctx context.Context, in JobInput) (*models.Job, error) {
	const op = "create job"
	return write(ctx, s, op, func(ctx context.Context) (*models.Job, error) {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return nil, validation(op, "title is required")
		}
		status := models.JobStatusActive
		if strings.TrimSpace(in.Status) != "" {
			st, ok := models.ParseJobStatus(in.Status)
			if !ok {
				return nil, validation(op, "unknown status %q", in.Status)
			}
			status = st
		}
		base := slug.Make(title)
		if strings.TrimSpace(in.Slug) != "" {
			base = slug.Make(in.Slug)
		}

		s.orderMu.Lock()
		defer s.orderMu.Unlock()

		var id int64
		for attempt := 1; ; attempt++ {
			sl, err := slug.Unique(base, s.slugTaken(ctx))
			if err != nil {
				return nil, err
			}
			maxOrder, err := s.repo.Jobs.MaxJobOrder(ctx)
			if err != nil {
				return nil, err
			}
			id, err = s.repo.Jobs.CreateJob(ctx, &models.Job{
				Title:  title,
				Slug:   sl,
				Status: status,
				Tags:   cleanStrings(in.Tags),
				Order:  maxOrder + 1,
			})
			if err == nil {
				break
			}
			if !errors.Is(err, repository.ErrDuplicate) || attempt == createAttempts {
				return nil, err
			}
		}

		j, err := s.loadJob(ctx, op, id)
		if err != nil {
			return nil, err
		}
		s.logger.Info("job created", "id", j.ID, "slug", j.Slug, "order", j.Order)
		return j, nil
	})
}

func (s *Service) PatchJob(ctx context.Context, id int64, p JobPatch) (*models.Job, error) {
	const op = "patch job"
	return write(ctx, s, op, func(ctx context.Context) (*models.Job, error) {
		existing, err := s.loadJob(ctx, op, id)
		if err != nil {
			return nil, err
		}

		var u models.JobUpdate
		if p.Title != nil {
			t := strings.TrimSpace(*p.Title)
			if t == "" {
				return nil, validation(op, "title must not be empty")
			}
			u.Title = &t
		}
		if p.Slug != nil {
			sl := slug.Make(*p.Slug)
			if sl == "" {
				return nil, validation(op, "slug must contain letters or digits")
			}
			if sl != existing.Slug {
				other, err := s.repo.Jobs.GetJobBySlug(ctx, sl)
				if err != nil {
					return nil, err
				}
				if other != nil && other.ID != id {
					return nil, conflict(op, "slug %q is already used by job %d", sl, other.ID)
				}
				u.Slug = &sl
			}
		}
		if p.Status != nil {
			st, ok := models.ParseJobStatus(*p.Status)
			if !ok {
				return nil, validation(op, "unknown status %q", *p.Status)
			}
			u.Status = &st
		}
		if p.Tags != nil {
			tags := cleanStrings(*p.Tags)
			u.Tags = &tags
		}

		if err := s.repo.Jobs.UpdateJob(ctx, id, u); err != nil {
			return nil, err
		}
		return s.loadJob(ctx, op, id)
	})
}

// ReorderJob moves job id to position to; from is echoed back only.
func (s *Service) ReorderJob(ctx context.Context, id int64, from, to int) (*ReorderResult, error) {
	const op = "reorder job"
	return write(ctx, s, op, func(ctx context.Context) (*ReorderResult, error) {
		s.orderMu.Lock()
		defer s.orderMu.Unlock()

		jobs, err := s.repo.Jobs.ListJobs(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]ordering.Item, len(jobs))
		for i, j := range jobs {
			items[i] = ordering.Item{ID: j.ID, Order: j.Order}
		}

		plan, err := ordering.Move(items, id, to)
		if errors.Is(err, ordering.ErrNotFound) {
			return nil, notFound(op, "job %d not found", id)
		}
		if err != nil {
			return nil, err
		}
		if err := s.repo.Jobs.SetJobOrders(ctx, plan.Orders()); err != nil {
			return nil, err
		}

		res := &ReorderResult{ID: id, FromOrder: from, ToOrder: to}
		for _, it := range plan.Sequence {
			if it.ID == id {
				res.Order = it.Order
			}
		}
		s.logger.Info("job reordered", "id", id, "order", res.Order, "rows", len(plan.Changes))
		return res, nil
	})
}

// DeleteJob removes the job. Candidates keep their reference to it.
func (s *Service) DeleteJob(ctx context.Context, id int64) error {
	const op = "delete job"
	_, err := write(ctx, s, op, func(ctx context.Context) (struct{}, error) {
		s.orderMu.Lock()
		defer s.orderMu.Unlock()

		if err := s.repo.Jobs.DeleteJob(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return struct{}{}, notFound(op, "job %d not found", id)
			}
			return struct{}{}, err
		}
		s.logger.Info("job deleted", "id", id)
		return struct{}{}, nil
	})
	return err
}
