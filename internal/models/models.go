package models

import "strings"

// JobStatus is the lifecycle state of a job posting. Values are stored lower case.
type JobStatus string

const (
	JobStatusActive   JobStatus = "active"
	JobStatusDraft    JobStatus = "draft"
	JobStatusPaused   JobStatus = "paused"
	JobStatusArchived JobStatus = "archived"
	JobStatusClosed   JobStatus = "closed"
)

var jobStatuses = []JobStatus{JobStatusActive, JobStatusDraft, JobStatusPaused, JobStatusArchived, JobStatusClosed}

// ParseJobStatus normalizes s and reports whether it names a known status.
func ParseJobStatus(s string) (JobStatus, bool) {
	v := JobStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range jobStatuses {
		if v == st {
			return v, true
		}
	}
	return "", false
}

// Stage is a candidate's position in the hiring pipeline.
type Stage string

const (
	StageApplied  Stage = "applied"
	StageScreen   Stage = "screen"
	StageTech     Stage = "tech"
	StageOffer    Stage = "offer"
	StageHired    Stage = "hired"
	StageRejected Stage = "rejected"
)

// Stages lists the pipeline stages in pipeline order.
var Stages = []Stage{StageApplied, StageScreen, StageTech, StageOffer, StageHired, StageRejected}

// ParseStage normalizes s and reports whether it names a known stage.
func ParseStage(s string) (Stage, bool) {
	v := Stage(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range Stages {
		if v == st {
			return v, true
		}
	}
	return "", false
}

// QuestionType enumerates the supported assessment question kinds.
type QuestionType string

const (
	QuestionSingleChoice QuestionType = "single-choice"
	QuestionMultiChoice  QuestionType = "multi-choice"
	QuestionShortText    QuestionType = "short-text"
	QuestionLongText     QuestionType = "long-text"
	QuestionNumeric      QuestionType = "numeric"
	QuestionFile         QuestionType = "file"
)

// IsChoice reports whether answers to the question are picked from Choices.
func (t QuestionType) IsChoice() bool {
	return t == QuestionSingleChoice || t == QuestionMultiChoice
}

type Job struct {
	ID      int64     `json:"id" db:"id"`
	Title   string    `json:"title" db:"title"`
	Slug    string    `json:"slug" db:"slug"`
	Status  JobStatus `json:"status" db:"status"`
	Tags    []string  `json:"tags" db:"tags"`
	Order   int       `json:"order" db:"sort_order"`
	Created int64     `json:"created" db:"created"`
	Updated int64     `json:"updated" db:"updated"`
}

// JobUpdate carries the fields of a partial job update; nil fields are left untouched.
// The ordinal is only changed through the bulk renumbering path.
type JobUpdate struct {
	Title  *string
	Slug   *string
	Status *JobStatus
	Tags   *[]string
}

// Empty reports whether the update changes nothing.
func (u JobUpdate) Empty() bool {
	return u.Title == nil && u.Slug == nil && u.Status == nil && u.Tags == nil
}

type Candidate struct {
	ID      int64  `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Email   string `json:"email" db:"email"`
	JobID   *int64 `json:"jobId" db:"job_id"`
	Stage   Stage  `json:"stage" db:"stage"`
	Created int64  `json:"created" db:"created"`
	Updated int64  `json:"updated" db:"updated"`
}

// CandidateUpdate carries the fields of a partial candidate update. ClearJob
// sets the job reference to null and wins over JobID.
type CandidateUpdate struct {
	Name     *string
	Email    *string
	Stage    *Stage
	JobID    *int64
	ClearJob bool
}

func (u CandidateUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Stage == nil && u.JobID == nil && !u.ClearJob
}

// TimelineEntry is an immutable record of one stage change. FromStage is nil
// only for the creation event.
type TimelineEntry struct {
	ID          int64          `json:"id" db:"id"`
	CandidateID int64          `json:"candidateId" db:"candidate_id"`
	Timestamp   int64          `json:"timestamp" db:"timestamp"`
	FromStage   *Stage         `json:"fromStage" db:"from_stage"`
	ToStage     Stage          `json:"toStage" db:"to_stage"`
	Meta        map[string]any `json:"meta,omitempty" db:"meta"`
}

type Question struct {
	ID      string       `json:"id,omitempty"`
	Label   string       `json:"label"`
	Type    QuestionType `json:"type"`
	Choices []string     `json:"choices,omitempty"`
}

type Section struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

type Assessment struct {
	ID        int64     `json:"id" db:"id"`
	JobID     int64     `json:"jobId" db:"job_id"`
	Title     string    `json:"title" db:"title"`
	Sections  []Section `json:"sections" db:"sections"`
	CreatedAt int64     `json:"createdAt" db:"created"`
	UpdatedAt int64     `json:"updatedAt" db:"updated"`
}

// QuestionCount returns the number of questions across all sections.
func (a Assessment) QuestionCount() int {
	n := 0
	for _, s := range a.Sections {
		n += len(s.Questions)
	}
	return n
}

type Submission struct {
	ID          int64          `json:"id" db:"id"`
	JobID       int64          `json:"jobId" db:"job_id"`
	CandidateID int64          `json:"candidateId" db:"candidate_id"`
	Answers     map[string]any `json:"answers" db:"answers"`
	SubmittedAt int64          `json:"submittedAt" db:"submitted_at"`
}

type Note struct {
	ID          int64    `json:"id" db:"id"`
	CandidateID int64    `json:"candidateId" db:"candidate_id"`
	Text        string   `json:"text" db:"text"`
	Mentions    []string `json:"mentions" db:"mentions"`
	Timestamp   int64    `json:"timestamp" db:"timestamp"`
	Updated     int64    `json:"updated" db:"updated"`
}

type NoteUpdate struct {
	Text     *string
	Mentions *[]string
}

// DashboardSummary aggregates collection counts for the landing page.
type DashboardSummary struct {
	TotalJobs        int64 `json:"total_jobs"`
	ActiveJobs       int64 `json:"active_jobs"`
	TotalCandidates  int64 `json:"total_candidates"`
	HiredCandidates  int64 `json:"hired_candidates"`
	TotalAssessments int64 `json:"total_assessments"`
}
