package model

import "time"

// DefaultTitle is used when a summary is created without an explicit title.
const DefaultTitle = "Untitled Summary"

// Summary is the central entity: a block of source text, the instruction that
// drove generation, the generated result, and an optional human edit.
type Summary struct {
	SummaryID        string    `json:"summaryId"`
	OwnerID          string    `json:"ownerId"`
	Title            string    `json:"title"`
	OriginalText     string    `json:"originalText"`
	Instruction      string    `json:"instruction"`
	GeneratedSummary string    `json:"generatedSummary"`
	EditedSummary    string    `json:"editedSummary"`
	Tags             []string  `json:"tags,omitempty"`
	IsPublic         bool      `json:"isPublic"`
	CreationTime     time.Time `json:"creationTime"`
	UpdateTime       time.Time `json:"updateTime"`
}

// CurrentContent returns the edited summary when one exists, otherwise the
// generated summary. Display, sharing and status reporting all use this rule.
func (s *Summary) CurrentContent() string {
	if s.EditedSummary != "" {
		return s.EditedSummary
	}
	return s.GeneratedSummary
}

// Delivery is the outcome of one recipient's send attempt during a share.
type Delivery struct {
	Recipient string `json:"recipient"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

// ShareReport aggregates per-recipient outcomes of a single share call.
type ShareReport struct {
	Deliveries     []Delivery `json:"deliveries"`
	DeliveredCount int        `json:"deliveredCount"`
	FailedCount    int        `json:"failedCount"`
}
