package domain

// Outcome is the per-email result of an import.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// EmailResult records what happened to one email of a batch.
type EmailResult struct {
	Position          int     `json:"position"`
	Email             string  `json:"email"`
	Outcome           Outcome `json:"outcome"`
	Reason            string  `json:"reason,omitempty"`
	UserID            string  `json:"user_id,omitempty"`
	AlreadyRegistered bool    `json:"already_registered"`
	AppAssigned       bool    `json:"app_assigned"`
}

// BatchResult summarizes a processed batch.
type BatchResult struct {
	Total   int           `json:"total"`
	Created int           `json:"created"`
	Failed  int           `json:"failed"`
	Skipped int           `json:"skipped"`
	Results []EmailResult `json:"results"`
}

// Add appends a result and updates the counters.
func (b *BatchResult) Add(r EmailResult) {
	r.Position = len(b.Results)
	b.Results = append(b.Results, r)
	b.Total++
	switch r.Outcome {
	case OutcomeCreated:
		b.Created++
	case OutcomeFailed:
		b.Failed++
	case OutcomeSkipped:
		b.Skipped++
	}
}
