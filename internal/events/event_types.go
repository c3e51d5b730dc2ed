package events

import (
	"time"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketSubmitted EventType = "ticket_submitted"
	EventTicketCorrected EventType = "ticket_corrected"
	EventTicketFixed     EventType = "ticket_fixed"
)

// Event represents a lifecycle event emitted by the ticket service.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticket_id"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketSubmittedPayload payload.
type TicketSubmittedPayload struct {
	Title          string                `json:"title"`
	Classification domain.Classification `json:"classification"`
	Source         string                `json:"source"`
}

// TicketCorrectedPayload payload.
type TicketCorrectedPayload struct {
	CorrectionID int64  `json:"correction_id"`
	OldCategory  string `json:"old_category"`
	NewCategory  string `json:"new_category"`
	OldPriority  string `json:"old_priority"`
	NewPriority  string `json:"new_priority"`
}

// TicketFixedPayload payload.
type TicketFixedPayload struct {
	FixedIssueID int64  `json:"fixed_issue_id"`
	Notes        string `json:"notes,omitempty"`
}
