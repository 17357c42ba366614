package parser

import (
	"context"
	"errors"
	"strings"
)

// Kind selects which structured schema the parser should produce.
type Kind string

const (
	KindResume         Kind = "resume"
	KindJobDescription Kind = "job-description"
)

// ParseKind validates a raw kind string.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindResume:
		return KindResume, nil
	case KindJobDescription:
		return KindJobDescription, nil
	default:
		return "", errors.New("kind must be resume or job-description")
	}
}

// ExperienceEntry is one position in a candidate's work history.
type ExperienceEntry struct {
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Description string `json:"description,omitempty"`
}

// EducationEntry is one entry in a candidate's education history.
type EducationEntry struct {
	Institution string `json:"institution,omitempty"`
	Degree      string `json:"degree,omitempty"`
	Year        string `json:"year,omitempty"`
}

// CandidateProfile is the structured record extracted from a resume.
type CandidateProfile struct {
	Name            string            `json:"name,omitempty"`
	Email           string            `json:"email,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	Summary         string            `json:"summary,omitempty"`
	Skills          []string          `json:"skills,omitempty"`
	YearsExperience float64           `json:"yearsExperience,omitempty"`
	Experience      []ExperienceEntry `json:"experience,omitempty"`
	Education       []EducationEntry  `json:"education,omitempty"`
}

// JobProfile is the structured record extracted from a job description.
type JobProfile struct {
	Title            string   `json:"title,omitempty"`
	Seniority        string   `json:"seniority,omitempty"`
	Skills           []string `json:"skills,omitempty"`
	Requirements     []string `json:"requirements,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
}

// Result holds exactly one of the structured records, matching the requested kind.
type Result struct {
	Profile *CandidateProfile `json:"profile,omitempty"`
	Job     *JobProfile       `json:"job,omitempty"`
	// PopulatedFields lists profile fields that carried non-empty content.
	PopulatedFields []string `json:"populatedFields,omitempty"`
}

// Empty reports whether the result carries no usable content.
func (r Result) Empty() bool {
	if r.Profile != nil {
		return len(r.Profile.PopulatedFields()) == 0
	}
	if r.Job != nil {
		return r.Job.Title == "" && len(r.Job.Skills) == 0 &&
			len(r.Job.Requirements) == 0 && len(r.Job.Responsibilities) == 0
	}
	return true
}

// PopulatedFields lists the profile fields that had non-empty content.
func (p *CandidateProfile) PopulatedFields() []string {
	if p == nil {
		return nil
	}
	var out []string
	if strings.TrimSpace(p.Name) != "" {
		out = append(out, "name")
	}
	if strings.TrimSpace(p.Email) != "" {
		out = append(out, "email")
	}
	if strings.TrimSpace(p.Phone) != "" {
		out = append(out, "phone")
	}
	if strings.TrimSpace(p.Summary) != "" {
		out = append(out, "summary")
	}
	if len(p.Skills) > 0 {
		out = append(out, "skills")
	}
	if p.YearsExperience > 0 {
		out = append(out, "yearsExperience")
	}
	if len(p.Experience) > 0 {
		out = append(out, "experience")
	}
	if len(p.Education) > 0 {
		out = append(out, "education")
	}
	return out
}

// Client calls the external structured-extraction service.
type Client interface {
	Parse(ctx context.Context, text string, kind Kind) (Result, error)
}

// PlaceholderClient is used when no parser endpoint is configured.
type PlaceholderClient struct{}

// Parse implements Client.
func (PlaceholderClient) Parse(ctx context.Context, text string, kind Kind) (Result, error) {
	_ = ctx
	_ = text
	_ = kind
	return Result{}, errors.New("parser client not configured")
}
