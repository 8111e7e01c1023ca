package sqlite_test

import (
	"context"
	"errors"
	"testing"

	dbfs "github.com/garnizeh/talentflow/db"
	dbpkg "github.com/garnizeh/talentflow/internal/db"
	"github.com/garnizeh/talentflow/internal/models"
	sqlite "github.com/garnizeh/talentflow/internal/repository/sqlite"
	"github.com/garnizeh/talentflow/pkg/repository"
)

func setupRepo(t *testing.T) (*sqlite.SQLiteRepo, func()) {
	t.Helper()
	repo, _, cleanup := setupRepoDB(t)
	return repo, cleanup
}

// setupRepoDB also returns the underlying handle so tests can install triggers.
func setupRepoDB(t *testing.T) (*sqlite.SQLiteRepo, *dbpkg.DB, func()) {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		d.Close()
		t.Fatalf("failed to migrate: %v", err)
	}

	repo := sqlite.New(d, nil)
	return repo, d, func() { d.Close() }
}

func mustCreateJob(t *testing.T, repo *sqlite.SQLiteRepo, title, slug string, order int) int64 {
	t.Helper()
	id, err := repo.CreateJob(context.Background(), &models.Job{Title: title, Slug: slug, Status: models.JobStatusActive, Order: order})
	if err != nil {
		t.Fatalf("CreateJob(%q) error: %v", slug, err)
	}
	return id
}

func TestJobCRUD(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := repo.CreateJob(ctx, nil); err == nil {
		t.Fatalf("expected error when creating nil job")
	}

	got, err := repo.GetJob(ctx, 9999)
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for missing job, got %#v, %v", got, err)
	}

	id, err := repo.CreateJob(ctx, &models.Job{Title: "Senior Engineer", Slug: "senior-engineer", Status: models.JobStatusActive, Tags: []string{"go", "remote"}, Order: 1})
	if err != nil {
		t.Fatalf("CreateJob error: %v", err)
	}

	got, err = repo.GetJob(ctx, id)
	if err != nil || got == nil {
		t.Fatalf("GetJob error: %v", err)
	}
	if got.Title != "Senior Engineer" || got.Order != 1 || len(got.Tags) != 2 || got.Tags[1] != "remote" {
		t.Fatalf("unexpected job: %#v", got)
	}
	if got.Created == 0 || got.Updated == 0 {
		t.Fatalf("expected timestamps to be set: %#v", got)
	}

	bySlug, err := repo.GetJobBySlug(ctx, "senior-engineer")
	if err != nil || bySlug == nil || bySlug.ID != id {
		t.Fatalf("GetJobBySlug: %#v, %v", bySlug, err)
	}

	title := "Staff Engineer"
	status := models.JobStatusArchived
	if err := repo.UpdateJob(ctx, id, models.JobUpdate{Title: &title, Status: &status}); err != nil {
		t.Fatalf("UpdateJob error: %v", err)
	}
	got, _ = repo.GetJob(ctx, id)
	if got.Title != "Staff Engineer" || got.Status != models.JobStatusArchived || got.Slug != "senior-engineer" {
		t.Fatalf("unexpected job after update: %#v", got)
	}

	if err := repo.UpdateJob(ctx, 9999, models.JobUpdate{Title: &title}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing job, got %v", err)
	}
	if err := repo.UpdateJob(ctx, 9999, models.JobUpdate{}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty update of missing job, got %v", err)
	}

	n, err := repo.CountJobsByStatus(ctx, models.JobStatusArchived)
	if err != nil || n != 1 {
		t.Fatalf("CountJobsByStatus = %d, %v", n, err)
	}

	draftID := mustCreateJob(t, repo, "Designer", "designer", 2)
	draft := models.JobStatusDraft
	if err := repo.UpdateJob(ctx, draftID, models.JobUpdate{Status: &draft}); err != nil {
		t.Fatalf("UpdateJob error: %v", err)
	}
	archived, err := repo.ListJobsByStatus(ctx, models.JobStatusArchived)
	if err != nil || len(archived) != 1 || archived[0].ID != id {
		t.Fatalf("ListJobsByStatus(archived) = %#v, %v", archived, err)
	}
	active, err := repo.ListJobsByStatus(ctx, models.JobStatusActive)
	if err != nil || len(active) != 0 {
		t.Fatalf("ListJobsByStatus(active) = %#v, %v", active, err)
	}
}

func TestJobSlugUnique(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	mustCreateJob(t, repo, "A", "dup", 1)
	_, err := repo.CreateJob(ctx, &models.Job{Title: "B", Slug: "dup", Status: models.JobStatusActive, Order: 2})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	id := mustCreateJob(t, repo, "C", "other", 2)
	slug := "dup"
	if err := repo.UpdateJob(ctx, id, models.JobUpdate{Slug: &slug}); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on slug update, got %v", err)
	}
}

func TestJobOrdering(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	a := mustCreateJob(t, repo, "A", "a", 1)
	b := mustCreateJob(t, repo, "B", "b", 2)
	c := mustCreateJob(t, repo, "C", "c", 3)

	max, err := repo.MaxJobOrder(ctx)
	if err != nil || max != 3 {
		t.Fatalf("MaxJobOrder = %d, %v", max, err)
	}

	if err := repo.SetJobOrders(ctx, map[int64]int{c: 1, a: 2, b: 3}); err != nil {
		t.Fatalf("SetJobOrders error: %v", err)
	}
	jobs, err := repo.ListJobs(ctx)
	if err != nil {
		t.Fatalf("ListJobs error: %v", err)
	}
	want := []int64{c, a, b}
	for i, j := range jobs {
		if j.ID != want[i] || j.Order != i+1 {
			t.Fatalf("position %d: got id=%d order=%d, want id=%d order=%d", i, j.ID, j.Order, want[i], i+1)
		}
	}

	// a missing id rolls the whole batch back
	if err := repo.SetJobOrders(ctx, map[int64]int{a: 1, 9999: 2}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	got, _ := repo.GetJob(ctx, a)
	if got.Order != 2 {
		t.Fatalf("expected rollback to keep order 2, got %d", got.Order)
	}

	// deleting the middle job closes the gap
	if err := repo.DeleteJob(ctx, a); err != nil {
		t.Fatalf("DeleteJob error: %v", err)
	}
	jobs, _ = repo.ListJobs(ctx)
	if len(jobs) != 2 || jobs[0].ID != c || jobs[0].Order != 1 || jobs[1].ID != b || jobs[1].Order != 2 {
		t.Fatalf("unexpected jobs after delete: %#v", jobs)
	}

	if err := repo.DeleteJob(ctx, a); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestMaxJobOrderEmpty(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()

	max, err := repo.MaxJobOrder(context.Background())
	if err != nil || max != 0 {
		t.Fatalf("MaxJobOrder on empty store = %d, %v", max, err)
	}
}

func TestCandidateCRUD(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	jobID := mustCreateJob(t, repo, "A", "a", 1)

	id, err := repo.CreateCandidate(ctx, &models.Candidate{Name: "Ada", Email: "ada@example.com", JobID: &jobID, Stage: models.StageApplied})
	if err != nil {
		t.Fatalf("CreateCandidate error: %v", err)
	}
	if _, err := repo.CreateCandidate(ctx, &models.Candidate{Name: "Bob", Email: "bob@example.com", Stage: models.StageScreen}); err != nil {
		t.Fatalf("CreateCandidate error: %v", err)
	}

	got, err := repo.GetCandidate(ctx, id)
	if err != nil || got == nil || got.JobID == nil || *got.JobID != jobID {
		t.Fatalf("GetCandidate: %#v, %v", got, err)
	}

	byJob, err := repo.ListCandidatesByJob(ctx, jobID)
	if err != nil || len(byJob) != 1 {
		t.Fatalf("ListCandidatesByJob: %d, %v", len(byJob), err)
	}
	byStage, err := repo.ListCandidatesByStage(ctx, models.StageScreen)
	if err != nil || len(byStage) != 1 || byStage[0].Name != "Bob" {
		t.Fatalf("ListCandidatesByStage: %#v, %v", byStage, err)
	}

	stage := models.StageTech
	if err := repo.UpdateCandidate(ctx, id, models.CandidateUpdate{Stage: &stage, ClearJob: true}); err != nil {
		t.Fatalf("UpdateCandidate error: %v", err)
	}
	got, _ = repo.GetCandidate(ctx, id)
	if got.Stage != models.StageTech || got.JobID != nil {
		t.Fatalf("unexpected candidate after update: %#v", got)
	}

	n, _ := repo.CountCandidatesByStage(ctx, models.StageTech)
	if n != 1 {
		t.Fatalf("CountCandidatesByStage = %d", n)
	}

	if err := repo.DeleteCandidate(ctx, id); err != nil {
		t.Fatalf("DeleteCandidate error: %v", err)
	}
	if err := repo.DeleteCandidate(ctx, id); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	total, _ := repo.CountCandidates(ctx)
	if total != 1 {
		t.Fatalf("CountCandidates = %d", total)
	}
}

func TestCreateCandidateWithEntry(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	e := &models.TimelineEntry{Timestamp: 100, ToStage: models.StageApplied, Meta: map[string]any{"note": "Candidate created"}}
	id, err := repo.CreateCandidateWithEntry(ctx, &models.Candidate{Name: "Ada", Email: "ada@example.com", Stage: models.StageApplied}, e)
	if err != nil {
		t.Fatalf("CreateCandidateWithEntry error: %v", err)
	}
	if e.CandidateID != id || e.ID == 0 {
		t.Fatalf("entry not linked to candidate %d: %#v", id, e)
	}
	got, err := repo.ListTimelineByCandidate(ctx, id)
	if err != nil || len(got) != 1 || got[0].ToStage != models.StageApplied {
		t.Fatalf("ListTimelineByCandidate = %#v, %v", got, err)
	}
}

func TestCreateCandidateWithEntryRollsBack(t *testing.T) {
	repo, d, cleanup := setupRepoDB(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := d.Exec(ctx, `CREATE TRIGGER fail_timeline BEFORE INSERT ON timelines BEGIN SELECT RAISE(ABORT, 'timeline unavailable'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}

	_, err := repo.CreateCandidateWithEntry(ctx, &models.Candidate{Name: "Ada", Email: "ada@example.com", Stage: models.StageApplied},
		&models.TimelineEntry{Timestamp: 100, ToStage: models.StageApplied})
	if err == nil {
		t.Fatalf("expected error when the timeline insert fails")
	}
	n, err := repo.CountCandidates(ctx)
	if err != nil || n != 0 {
		t.Fatalf("candidate kept after failed timeline insert: count=%d, %v", n, err)
	}
}

func TestUpdateCandidateWithEntry(t *testing.T) {
	repo, d, cleanup := setupRepoDB(t)
	defer cleanup()
	ctx := context.Background()

	id, err := repo.CreateCandidate(ctx, &models.Candidate{Name: "Ada", Email: "ada@example.com", Stage: models.StageApplied})
	if err != nil {
		t.Fatalf("CreateCandidate error: %v", err)
	}

	applied := models.StageApplied
	tech := models.StageTech
	entry := func() *models.TimelineEntry {
		return &models.TimelineEntry{Timestamp: 200, FromStage: &applied, ToStage: tech}
	}

	if err := repo.UpdateCandidateWithEntry(ctx, 9999, models.CandidateUpdate{Stage: &tech}, entry()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing candidate, got %v", err)
	}
	if got, _ := repo.ListTimelineByCandidate(ctx, 9999); len(got) != 0 {
		t.Fatalf("entry kept for missing candidate: %#v", got)
	}

	if _, err := d.Exec(ctx, `CREATE TRIGGER fail_update BEFORE UPDATE ON candidates BEGIN SELECT RAISE(ABORT, 'candidates locked'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}
	if err := repo.UpdateCandidateWithEntry(ctx, id, models.CandidateUpdate{Stage: &tech}, entry()); err == nil {
		t.Fatalf("expected error when the candidate update fails")
	}
	if got, _ := repo.ListTimelineByCandidate(ctx, id); len(got) != 0 {
		t.Fatalf("entry kept after failed update: %#v", got)
	}
	c, _ := repo.GetCandidate(ctx, id)
	if c.Stage != models.StageApplied {
		t.Fatalf("stage changed after failed update: %q", c.Stage)
	}

	if _, err := d.Exec(ctx, `DROP TRIGGER fail_update`); err != nil {
		t.Fatalf("drop trigger: %v", err)
	}
	if err := repo.UpdateCandidateWithEntry(ctx, id, models.CandidateUpdate{Stage: &tech}, entry()); err != nil {
		t.Fatalf("UpdateCandidateWithEntry error: %v", err)
	}
	got, _ := repo.ListTimelineByCandidate(ctx, id)
	c, _ = repo.GetCandidate(ctx, id)
	if len(got) != 1 || c.Stage != models.StageTech {
		t.Fatalf("unexpected state: stage=%q entries=%d", c.Stage, len(got))
	}
}

func TestTimelineOrdering(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	applied := models.StageApplied
	screen := models.StageScreen
	entries := []models.TimelineEntry{
		{CandidateID: 7, Timestamp: 300, FromStage: &screen, ToStage: models.StageTech},
		{CandidateID: 7, Timestamp: 100, ToStage: models.StageApplied, Meta: map[string]any{"note": "Candidate created"}},
		{CandidateID: 7, Timestamp: 200, FromStage: &applied, ToStage: models.StageScreen},
		{CandidateID: 8, Timestamp: 50, ToStage: models.StageApplied},
	}
	for i := range entries {
		if _, err := repo.CreateTimelineEntry(ctx, &entries[i]); err != nil {
			t.Fatalf("CreateTimelineEntry error: %v", err)
		}
	}

	got, err := repo.ListTimelineByCandidate(ctx, 7)
	if err != nil {
		t.Fatalf("ListTimelineByCandidate error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for i, ts := range []int64{100, 200, 300} {
		if got[i].Timestamp != ts {
			t.Fatalf("entry %d timestamp = %d, want %d", i, got[i].Timestamp, ts)
		}
	}
	if got[0].FromStage != nil || got[0].Meta["note"] != "Candidate created" {
		t.Fatalf("unexpected creation entry: %#v", got[0])
	}
	if got[2].FromStage == nil || *got[2].FromStage != models.StageScreen {
		t.Fatalf("unexpected from stage: %#v", got[2])
	}
}

func TestAssessmentCRUD(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	a := &models.Assessment{
		JobID: 3,
		Title: "Screening",
		Sections: []models.Section{{
			Title: "Basics",
			Questions: []models.Question{
				{ID: "q1", Label: "Years of Go?", Type: models.QuestionNumeric},
				{ID: "q2", Label: "Pick one", Type: models.QuestionSingleChoice, Choices: []string{"a", "b"}},
			},
		}},
	}
	id, err := repo.CreateAssessment(ctx, a)
	if err != nil {
		t.Fatalf("CreateAssessment error: %v", err)
	}

	got, err := repo.GetAssessment(ctx, id)
	if err != nil || got == nil {
		t.Fatalf("GetAssessment: %v", err)
	}
	if got.QuestionCount() != 2 || got.Sections[0].Questions[1].Choices[1] != "b" {
		t.Fatalf("unexpected assessment: %#v", got)
	}

	got.Title = "Screening v2"
	got.Sections = got.Sections[:0]
	if err := repo.UpdateAssessment(ctx, got); err != nil {
		t.Fatalf("UpdateAssessment error: %v", err)
	}
	byJob, err := repo.ListAssessmentsByJob(ctx, 3)
	if err != nil || len(byJob) != 1 || byJob[0].Title != "Screening v2" || len(byJob[0].Sections) != 0 {
		t.Fatalf("ListAssessmentsByJob: %#v, %v", byJob, err)
	}

	if err := repo.UpdateAssessment(ctx, &models.Assessment{ID: 9999}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteAssessment(ctx, id); err != nil {
		t.Fatalf("DeleteAssessment error: %v", err)
	}
	n, _ := repo.CountAssessments(ctx)
	if n != 0 {
		t.Fatalf("CountAssessments = %d", n)
	}
}

func TestSubmissionAndNotes(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	subID, err := repo.CreateSubmission(ctx, &models.Submission{JobID: 1, CandidateID: 2, Answers: map[string]any{"q1": "yes", "q2": float64(4)}})
	if err != nil {
		t.Fatalf("CreateSubmission error: %v", err)
	}
	sub, err := repo.GetSubmission(ctx, subID)
	if err != nil || sub == nil || sub.Answers["q1"] != "yes" || sub.Answers["q2"] != float64(4) || sub.SubmittedAt == 0 {
		t.Fatalf("GetSubmission: %#v, %v", sub, err)
	}
	subs, _ := repo.ListSubmissionsByJob(ctx, 1)
	if len(subs) != 1 {
		t.Fatalf("ListSubmissionsByJob = %d", len(subs))
	}

	noteID, err := repo.CreateNote(ctx, &models.Note{CandidateID: 2, Text: "ping @ada", Mentions: []string{"ada"}})
	if err != nil {
		t.Fatalf("CreateNote error: %v", err)
	}
	text := "ping @bob"
	mentions := []string{"bob"}
	if err := repo.UpdateNote(ctx, noteID, models.NoteUpdate{Text: &text, Mentions: &mentions}); err != nil {
		t.Fatalf("UpdateNote error: %v", err)
	}
	notes, err := repo.ListNotesByCandidate(ctx, 2)
	if err != nil || len(notes) != 1 || notes[0].Text != text || notes[0].Mentions[0] != "bob" {
		t.Fatalf("ListNotesByCandidate: %#v, %v", notes, err)
	}
	if err := repo.DeleteNote(ctx, noteID); err != nil {
		t.Fatalf("DeleteNote error: %v", err)
	}
	if n, _ := repo.GetNote(ctx, noteID); n != nil {
		t.Fatalf("expected note to be gone")
	}
}
