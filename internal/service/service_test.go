package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	dbfs "github.com/garnizeh/talentflow/db"
	dbpkg "github.com/garnizeh/talentflow/internal/db"
	"github.com/garnizeh/talentflow/internal/fault"
	"github.com/garnizeh/talentflow/internal/models"
	sqlite "github.com/garnizeh/talentflow/internal/repository/sqlite"
	"github.com/garnizeh/talentflow/internal/service"
	"github.com/garnizeh/talentflow/pkg/repository"
	"github.com/garnizeh/talentflow/pkg/repository/mock"
)

func TestMain(m *testing.M) {
	defer goleak.VerifyTestMain(m)
	os.Exit(m.Run())
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// tickClock advances one second per call so timestamps are strictly increasing.
func tickClock() func() time.Time {
	var mu sync.Mutex
	t := time.UnixMilli(1_700_000_000_000)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newRepo(t *testing.T) *repository.Repository {
	t.Helper()
	repo, _ := newRepoDB(t)
	return repo
}

// newRepoDB also returns the database so tests can install triggers.
func newRepoDB(t *testing.T) (*repository.Repository, *dbpkg.DB) {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, ":memory:", discard())
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return sqlite.New(d, discard()).Repository(), d
}

func newService(t *testing.T, repo *repository.Repository, faults *fault.Injector) *service.Service {
	t.Helper()
	svc, err := service.New(repo, service.Options{Logger: discard(), Faults: faults, Now: tickClock()})
	if err != nil {
		t.Fatalf("service.New error: %v", err)
	}
	return svc
}

func setup(t *testing.T) (*service.Service, *repository.Repository) {
	t.Helper()
	repo := newRepo(t)
	return newService(t, repo, fault.Disabled()), repo
}

func TestNewRejectsIncompleteRepository(t *testing.T) {
	if _, err := service.New(nil, service.Options{}); err == nil {
		t.Fatalf("expected error for nil repository")
	}
	if _, err := service.New(&repository.Repository{}, service.Options{}); err == nil {
		t.Fatalf("expected error for empty repository")
	}
}

func TestInjectedWriteFailureLeavesStoreUntouched(t *testing.T) {
	repo := newRepo(t)
	svc := newService(t, repo, fault.New(fault.Profile{}, fault.Profile{FailureRate: 1}))
	ctx := context.Background()

	_, err := svc.CreateJob(ctx, service.JobInput{Title: "Backend"})
	if !errors.Is(err, service.ErrTransient) || !errors.Is(err, fault.ErrInjected) {
		t.Fatalf("expected transient injected failure, got %v", err)
	}
	_, err = svc.CreateCandidate(ctx, service.CandidateInput{Name: "A", Email: "a@x.com"})
	if !errors.Is(err, service.ErrTransient) {
		t.Fatalf("expected transient failure, got %v", err)
	}
	// validation is not reached either: the draw comes first
	_, err = svc.CreateJob(ctx, service.JobInput{})
	if !errors.Is(err, service.ErrTransient) {
		t.Fatalf("expected transient failure before validation, got %v", err)
	}

	n, _ := repo.Jobs.CountJobs(ctx)
	c, _ := repo.Candidates.CountCandidates(ctx)
	if n != 0 || c != 0 {
		t.Fatalf("store mutated: jobs=%d candidates=%d", n, c)
	}

	// reads never draw failures with the default read profile
	if _, err := svc.ListJobs(ctx, service.ListJobsParams{}); err != nil {
		t.Fatalf("ListJobs error: %v", err)
	}
	if _, err := svc.GetDashboardSummary(ctx); err != nil {
		t.Fatalf("GetDashboardSummary error: %v", err)
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	store := mock.Wrap(newRepo(t))
	svc := newService(t, store.Repository(), fault.Disabled())
	ctx := context.Background()

	boom := errors.New("disk I/O error")
	store.Fail("CreateJob", boom)
	store.Fail("ListCandidates", boom)
	store.Fail("CreateCandidateWithEntry", boom)

	_, err := svc.CreateJob(ctx, service.JobInput{Title: "Backend"})
	if !errors.Is(err, boom) || !errors.Is(err, service.ErrTransient) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if store.Count("CreateJob") != 1 {
		t.Fatalf("CreateJob called %d times", store.Count("CreateJob"))
	}

	if _, err := svc.ListCandidates(ctx, service.ListCandidatesParams{}); !errors.Is(err, boom) {
		t.Fatalf("expected read error to propagate, got %v", err)
	}

	if _, err := svc.CreateCandidate(ctx, service.CandidateInput{Name: "A", Email: "a@x.com"}); !errors.Is(err, boom) {
		t.Fatalf("expected candidate store error to propagate, got %v", err)
	}
	if store.Count("CreateCandidate") != 0 || store.Count("CreateTimelineEntry") != 0 {
		t.Fatalf("candidate and timeline written separately")
	}
}

func TestCandidateWritesAreAtomic(t *testing.T) {
	repo, d := newRepoDB(t)
	svc := newService(t, repo, fault.Disabled())
	ctx := context.Background()

	c, err := svc.CreateCandidate(ctx, service.CandidateInput{Name: "A", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("CreateCandidate error: %v", err)
	}

	if _, err := d.Exec(ctx, `CREATE TRIGGER fail_update BEFORE UPDATE ON candidates BEGIN SELECT RAISE(ABORT, 'candidates locked'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}
	tech := "tech"
	if _, err := svc.PatchCandidate(ctx, c.ID, service.CandidatePatch{Stage: &tech}); err == nil {
		t.Fatalf("expected patch to fail")
	}
	tl, _ := svc.GetCandidateTimeline(ctx, c.ID)
	got, _ := svc.GetCandidate(ctx, c.ID)
	if len(tl) != 1 || got.Stage != models.StageApplied {
		t.Fatalf("partial patch: stage=%q timeline=%+v", got.Stage, tl)
	}

	if _, err := d.Exec(ctx, `CREATE TRIGGER fail_timeline BEFORE INSERT ON timelines BEGIN SELECT RAISE(ABORT, 'timeline unavailable'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}
	if _, err := svc.CreateCandidate(ctx, service.CandidateInput{Name: "B", Email: "b@x.com"}); err == nil {
		t.Fatalf("expected create to fail")
	}
	if n, _ := repo.Candidates.CountCandidates(ctx); n != 1 {
		t.Fatalf("candidate kept without its timeline entry: count=%d", n)
	}
}

func TestErrorMessage(t *testing.T) {
	svc, _ := setup(t)
	_, err := svc.CreateJob(context.Background(), service.JobInput{Title: "  "})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := service.Message(err); got != "title is required" {
		t.Fatalf("Message = %q", got)
	}
	if got := err.Error(); got != "create job: title is required" {
		t.Fatalf("Error = %q", got)
	}
}

func TestDashboardSummary(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	a, _ := svc.CreateJob(ctx, service.JobInput{Title: "A"})
	_, _ = svc.CreateJob(ctx, service.JobInput{Title: "B", Status: "draft"})
	c1, _ := svc.CreateCandidate(ctx, service.CandidateInput{Name: "X", Email: "x@x.com", JobID: &a.ID})
	_, _ = svc.CreateCandidate(ctx, service.CandidateInput{Name: "Y", Email: "y@x.com"})
	hired := "HIRED"
	if _, err := svc.PatchCandidate(ctx, c1.ID, service.CandidatePatch{Stage: &hired}); err != nil {
		t.Fatalf("PatchCandidate error: %v", err)
	}

	got, err := svc.GetDashboardSummary(ctx)
	if err != nil {
		t.Fatalf("GetDashboardSummary error: %v", err)
	}
	want := models.DashboardSummary{TotalJobs: 2, ActiveJobs: 1, TotalCandidates: 2, HiredCandidates: 1}
	if *got != want {
		t.Fatalf("summary = %+v, want %+v", *got, want)
	}
}
