package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/spec-kit/okta-import/internal/domain"
)

// ImportRequest is the import form. Empty credentials use the configured defaults.
type ImportRequest struct {
	EmailsList string `json:"emails_list"`
	Password   string `json:"password"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

// Validate checks the import payload.
func (r ImportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.EmailsList, validation.Required),
	)
}

// ImportDefaultsResponse pre-fills the import form.
type ImportDefaultsResponse struct {
	Password string `json:"password"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ImportRunSummary is a run without its per-email results.
type ImportRunSummary struct {
	ID         string     `json:"id"`
	AdminID    *string    `json:"admin_id,omitempty"`
	Status     string     `json:"status"`
	Total      int        `json:"total"`
	Created    int        `json:"created"`
	Failed     int        `json:"failed"`
	Skipped    int        `json:"skipped"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// ImportRunDetail is a run with its per-email results.
type ImportRunDetail struct {
	ImportRunSummary
	Results []domain.EmailResult `json:"results"`
}

// NewImportRunSummary maps a run to its summary.
func NewImportRunSummary(run *domain.ImportRun) ImportRunSummary {
	return ImportRunSummary{
		ID:         run.ID,
		AdminID:    run.AdminID,
		Status:     string(run.Status),
		Total:      run.Total,
		Created:    run.Created,
		Failed:     run.Failed,
		Skipped:    run.Skipped,
		Error:      run.Error,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
}

// NewImportRunDetail maps a run with its results.
func NewImportRunDetail(run *domain.ImportRun) ImportRunDetail {
	results := run.Results
	if results == nil {
		results = []domain.EmailResult{}
	}
	return ImportRunDetail{ImportRunSummary: NewImportRunSummary(run), Results: results}
}
