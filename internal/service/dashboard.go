package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/garnizeh/talentflow/internal/models"
)

// GetDashboardSummary counts the collections concurrently.
func (s *Service) GetDashboardSummary(ctx context.Context) (*models.DashboardSummary, error) {
	return read(ctx, s, "dashboard summary", func(ctx context.Context) (*models.DashboardSummary, error) {
		var sum models.DashboardSummary
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			sum.TotalJobs, err = s.repo.Jobs.CountJobs(ctx)
			return err
		})
		g.Go(func() (err error) {
			sum.ActiveJobs, err = s.repo.Jobs.CountJobsByStatus(ctx, models.JobStatusActive)
			return err
		})
		g.Go(func() (err error) {
			sum.TotalCandidates, err = s.repo.Candidates.CountCandidates(ctx)
			return err
		})
		g.Go(func() (err error) {
			sum.HiredCandidates, err = s.repo.Candidates.CountCandidatesByStage(ctx, models.StageHired)
			return err
		})
		g.Go(func() (err error) {
			sum.TotalAssessments, err = s.repo.Assessments.CountAssessments(ctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return &sum, nil
	})
}

// Ping reports whether the store answers a query. It bypasses fault
// injection so health checks reflect the real store.
func (s *Service) Ping(ctx context.Context) error {
	if _, err := s.repo.Jobs.CountJobs(ctx); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}
