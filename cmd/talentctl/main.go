// Command talentctl prints jobs, candidates and pipeline figures straight from
// the talentflow database, bypassing simulated latency and failures.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/garnizeh/talentflow/internal/config"
	"github.com/garnizeh/talentflow/internal/db"
	"github.com/garnizeh/talentflow/internal/models"
	sqlite "github.com/garnizeh/talentflow/internal/repository/sqlite"
	"github.com/garnizeh/talentflow/internal/service"
)

const usage = `usage: talentctl [-config file] <command> [flags]

commands:
  summary                          dashboard counters
  jobs [-search s] [-status s] [-page n]
  candidates [-search s] [-stage s] [-job id] [-page n]
  timeline <candidate-id>
`

var errUsage = errors.New("bad usage")

func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		color.Red("Env error: %v", err)
		os.Exit(1)
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		color.Red("Config error: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	database, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		color.Red("DB error: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	svc, err := service.New(sqlite.New(database, logger).Repository(), service.Options{Logger: logger})
	if err != nil {
		color.Red("Service error: %v", err)
		os.Exit(1)
	}

	if err := run(ctx, svc, flag.Args(), os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		} else {
			color.Red("%v", err)
		}
		database.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, svc *service.Service, args []string, w io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "summary":
		return summary(ctx, svc, w)
	case "jobs":
		return jobs(ctx, svc, rest, w)
	case "candidates":
		return candidates(ctx, svc, rest, w)
	case "timeline":
		return timeline(ctx, svc, rest, w)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func heading(w io.Writer, format string, a ...any) {
	color.New(color.FgYellow).Fprintf(w, "\n"+format+"\n", a...)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	return table
}

func summary(ctx context.Context, svc *service.Service, w io.Writer) error {
	sum, err := svc.GetDashboardSummary(ctx)
	if err != nil {
		return err
	}
	heading(w, "Dashboard")
	table := newTable(w, "Metric", "Value")
	table.AppendBulk([][]string{
		{"Total jobs", itoa(sum.TotalJobs)},
		{"Active jobs", itoa(sum.ActiveJobs)},
		{"Total candidates", itoa(sum.TotalCandidates)},
		{"Hired candidates", itoa(sum.HiredCandidates)},
		{"Total assessments", itoa(sum.TotalAssessments)},
	})
	table.Render()
	return nil
}

func jobs(ctx context.Context, svc *service.Service, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("jobs", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	search := fs.String("search", "", "title or tag substring")
	status := fs.String("status", "", "status filter")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	res, err := svc.ListJobs(ctx, service.ListJobsParams{Search: *search, Status: *status, Page: *page})
	if err != nil {
		return err
	}
	heading(w, "Jobs (page %d, %d total)", res.Page, res.Total)
	table := newTable(w, "Order", "ID", "Title", "Slug", "Status", "Tags")
	for _, j := range res.Items {
		table.Append([]string{
			strconv.Itoa(j.Order),
			itoa(j.ID),
			j.Title,
			j.Slug,
			string(j.Status),
			fmt.Sprint(j.Tags),
		})
	}
	table.Render()
	return nil
}

func candidates(ctx context.Context, svc *service.Service, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("candidates", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	search := fs.String("search", "", "name or email substring")
	stage := fs.String("stage", "", "stage filter")
	job := fs.Int64("job", 0, "job id filter")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	res, err := svc.ListCandidates(ctx, service.ListCandidatesParams{Search: *search, Stage: *stage, JobID: *job, Page: *page})
	if err != nil {
		return err
	}
	heading(w, "Candidates (page %d, %d total)", res.Page, res.Total)
	table := newTable(w, "ID", "Name", "Email", "Stage", "Job")
	for _, c := range res.Items {
		job := "-"
		if c.JobID != nil {
			job = itoa(*c.JobID)
		}
		table.Append([]string{itoa(c.ID), c.Name, c.Email, string(c.Stage), job})
	}
	table.Render()
	return nil
}

func timeline(ctx context.Context, svc *service.Service, args []string, w io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: timeline takes one candidate id", errUsage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("%w: invalid candidate id %q", errUsage, args[0])
	}

	entries, err := svc.GetCandidateTimeline(ctx, id)
	if err != nil {
		return err
	}
	heading(w, "Timeline for candidate %d", id)
	table := newTable(w, "When", "From", "To", "Note")
	for _, e := range entries {
		from := "-"
		if e.FromStage != nil {
			from = string(*e.FromStage)
		}
		table.Append([]string{
			time.UnixMilli(e.Timestamp).UTC().Format(time.RFC3339),
			from,
			string(e.ToStage),
			note(e),
		})
	}
	table.Render()
	return nil
}

func note(e models.TimelineEntry) string {
	if n, ok := e.Meta["note"].(string); ok {
		return n
	}
	return ""
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
