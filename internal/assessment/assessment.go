// Package assessment validates assessment drafts before they are saved.
package assessment

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"

	"github.com/garnizeh/talentflow/internal/models"
)

//go:embed schema.json
var schemaJSON []byte

// Draft is the payload of a save. Questions is the older flat shape; when
// present it is folded into a single untitled section.
type Draft struct {
	ID        int64             `json:"id,omitempty"`
	Title     string            `json:"title"`
	Sections  []models.Section  `json:"sections,omitempty"`
	Questions []models.Question `json:"questions,omitempty"`
}

// Normalize trims text, folds Questions into Sections and assigns question
// ids ("q1", "q2", …) where missing. Generated ids skip the ones already
// supplied. Blank choices are dropped and only choice questions keep any.
func (d Draft) Normalize() Draft {
	out := Draft{ID: d.ID, Title: strings.TrimSpace(d.Title)}
	for _, s := range d.Sections {
		out.Sections = append(out.Sections, models.Section{Title: strings.TrimSpace(s.Title), Questions: s.Questions})
	}
	if len(d.Questions) > 0 {
		out.Sections = append(out.Sections, models.Section{Questions: d.Questions})
	}
	if out.Sections == nil {
		out.Sections = []models.Section{}
	}

	taken := make(map[string]bool)
	for _, s := range out.Sections {
		for _, q := range s.Questions {
			if id := strings.TrimSpace(q.ID); id != "" {
				taken[id] = true
			}
		}
	}

	n := 0
	for si := range out.Sections {
		qs := make([]models.Question, len(out.Sections[si].Questions))
		for qi, q := range out.Sections[si].Questions {
			q.ID = strings.TrimSpace(q.ID)
			q.Label = strings.TrimSpace(q.Label)
			q.Type = models.QuestionType(strings.ToLower(strings.TrimSpace(string(q.Type))))
			q.Choices = normalizeChoices(q.Type, q.Choices)
			if q.ID == "" {
				for {
					n++
					q.ID = fmt.Sprintf("q%d", n)
					if !taken[q.ID] {
						break
					}
				}
				taken[q.ID] = true
			}
			qs[qi] = q
		}
		out.Sections[si].Questions = qs
	}
	return out
}

func normalizeChoices(t models.QuestionType, cs []string) []string {
	if !t.IsChoice() {
		return nil
	}
	var out []string
	for _, c := range cs {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Error lists every problem found in a draft.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return "invalid assessment: " + strings.Join(e.Problems, "; ")
}

type Validator struct {
	schema *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(schemaJSON, rs); err != nil {
		return nil, fmt.Errorf("compile assessment schema: %w", err)
	}
	return &Validator{schema: rs}, nil
}

// Validate normalizes d and checks it against the schema and the rules the
// schema cannot express. It returns the normalized draft, or an *Error.
func (v *Validator) Validate(ctx context.Context, d Draft) (Draft, error) {
	d = d.Normalize()

	b, err := json.Marshal(struct {
		ID       int64            `json:"id"`
		Title    string           `json:"title"`
		Sections []models.Section `json:"sections"`
	}{d.ID, d.Title, d.Sections})
	if err != nil {
		return d, fmt.Errorf("encode draft: %w", err)
	}

	var problems []string
	verrs, err := v.schema.ValidateBytes(ctx, b)
	if err != nil {
		return d, fmt.Errorf("validate draft: %w", err)
	}
	for _, ke := range verrs {
		problems = append(problems, fmt.Sprintf("%s: %s", ke.PropertyPath, ke.Message))
	}

	problems = append(problems, check(d)...)
	if len(problems) > 0 {
		return d, &Error{Problems: problems}
	}
	return d, nil
}

func check(d Draft) []string {
	var problems []string
	if d.Title == "" {
		problems = append(problems, "title is required")
	}

	total := 0
	seen := make(map[string]bool)
	for si, s := range d.Sections {
		for qi, q := range s.Questions {
			total++
			where := fmt.Sprintf("sections[%d].questions[%d]", si, qi)
			if seen[q.ID] {
				problems = append(problems, fmt.Sprintf("%s: duplicate question id %q", where, q.ID))
			}
			seen[q.ID] = true
			if q.Label == "" {
				problems = append(problems, where+": label is required")
			}
			if q.Type.IsChoice() && len(q.Choices) == 0 {
				problems = append(problems, where+": choice questions need at least one choice")
			}
		}
	}
	if total == 0 {
		problems = append(problems, "at least one question is required")
	}
	return problems
}
