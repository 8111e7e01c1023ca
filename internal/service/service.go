// Package service is the request handler of the simulated hiring backend. It
// composes the record store with fault injection, listing queries, job
// reordering and the stage timeline.
package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/garnizeh/talentflow/internal/assessment"
	"github.com/garnizeh/talentflow/internal/fault"
	"github.com/garnizeh/talentflow/internal/models"
	"github.com/garnizeh/talentflow/internal/query"
	"github.com/garnizeh/talentflow/internal/timeline"
	"github.com/garnizeh/talentflow/pkg/repository"
)

const (
	DefaultJobsPageSize       = 10
	DefaultCandidatesPageSize = 25
)

type Options struct {
	Logger *slog.Logger
	// Faults defaults to an injector that neither waits nor fails.
	Faults *fault.Injector
	// Now defaults to time.Now.
	Now                func() time.Time
	JobsPageSize       int
	CandidatesPageSize int
}

type Service struct {
	repo      *repository.Repository
	logger    *slog.Logger
	faults    *fault.Injector
	now       func() time.Time
	timeline  *timeline.Logger
	validator *assessment.Validator

	jobSchema       query.Schema[models.Job]
	candidateSchema query.Schema[models.Candidate]

	// orderMu serializes the writes that touch job ordinals.
	orderMu sync.Mutex
}

func New(repo *repository.Repository, opts Options) (*Service, error) {
	if repo == nil || repo.Jobs == nil || repo.Candidates == nil || repo.Timeline == nil ||
		repo.Assessments == nil || repo.Submissions == nil || repo.Notes == nil {
		return nil, errors.New("service: repository is incomplete")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Faults == nil {
		opts.Faults = fault.Disabled()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.JobsPageSize < 1 {
		opts.JobsPageSize = DefaultJobsPageSize
	}
	if opts.CandidatesPageSize < 1 {
		opts.CandidatesPageSize = DefaultCandidatesPageSize
	}

	v, err := assessment.NewValidator()
	if err != nil {
		return nil, err
	}

	return &Service{
		repo:            repo,
		logger:          opts.Logger,
		faults:          opts.Faults,
		now:             opts.Now,
		timeline:        timeline.New(repo.Timeline, opts.Logger, timeline.WithClock(opts.Now)),
		validator:       v,
		jobSchema:       jobSchema(opts.JobsPageSize),
		candidateSchema: candidateSchema(opts.CandidatesPageSize),
	}, nil
}

func jobSchema(pageSize int) query.Schema[models.Job] {
	return query.Schema[models.Job]{
		Searchable: []func(models.Job) string{
			func(j models.Job) string { return j.Title },
			func(j models.Job) string { return strings.Join(j.Tags, " ") },
		},
		Fields: map[string]func(models.Job) string{
			"status": func(j models.Job) string { return string(j.Status) },
		},
		Sorts: map[string]func(a, b models.Job) int{
			"order":  func(a, b models.Job) int { return query.Ints(a.Order, b.Order) },
			"title":  func(a, b models.Job) int { return query.Strings(a.Title, b.Title) },
			"status": func(a, b models.Job) int { return query.Strings(string(a.Status), string(b.Status)) },
			"id":     func(a, b models.Job) int { return query.Ints(a.ID, b.ID) },
		},
		DefaultPageSize: pageSize,
	}
}

func candidateSchema(pageSize int) query.Schema[models.Candidate] {
	return query.Schema[models.Candidate]{
		Searchable: []func(models.Candidate) string{
			func(c models.Candidate) string { return c.Name },
			func(c models.Candidate) string { return c.Email },
		},
		Fields: map[string]func(models.Candidate) string{
			"stage": func(c models.Candidate) string { return string(c.Stage) },
			"jobId": func(c models.Candidate) string {
				if c.JobID == nil {
					return ""
				}
				return strconv.FormatInt(*c.JobID, 10)
			},
		},
		Sorts: map[string]func(a, b models.Candidate) int{
			"name":  func(a, b models.Candidate) int { return query.Strings(a.Name, b.Name) },
			"email": func(a, b models.Candidate) int { return query.Strings(a.Email, b.Email) },
			"stage": func(a, b models.Candidate) int { return query.Strings(string(a.Stage), string(b.Stage)) },
			"id":    func(a, b models.Candidate) int { return query.Ints(a.ID, b.ID) },
		},
		DefaultPageSize: pageSize,
	}
}

// write runs fn as a mutating operation: latency, failure draw, then fn.
func write[T any](ctx context.Context, s *Service, op string, fn func(context.Context) (T, error)) (T, error) {
	v, err := fault.Do(ctx, s.faults, fault.Write, op, fn)
	if err != nil {
		err = classify(op, err)
		s.logger.Debug("operation failed", "op", op, "err", err)
	}
	return v, err
}

// read runs fn as a read-only operation.
func read[T any](ctx context.Context, s *Service, op string, fn func(context.Context) (T, error)) (T, error) {
	v, err := fault.Do(ctx, s.faults, fault.Read, op, fn)
	if err != nil {
		err = classify(op, err)
	}
	return v, err
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

var mentionRe = regexp.MustCompile(`(?:^|[^A-Za-z0-9._-])@([A-Za-z0-9._-]+)`)

// Mentions extracts the @handles of text in order of first appearance.
func Mentions(text string) []string {
	var found []string
	for _, m := range mentionRe.FindAllStringSubmatch(text, -1) {
		found = append(found, strings.TrimRight(m[1], ".-"))
	}
	return cleanStrings(found)
}
