package domain

import "time"

// Correction is an immutable audit record of an admin override of category and/or priority.
// Both old/new pairs are always recorded, even for the field that did not change.
type Correction struct {
	ID          int64
	TicketID    int64
	OldCategory string
	NewCategory string
	OldPriority string
	NewPriority string
	CorrectedBy string
	CorrectedAt time.Time
	Notes       string
}

// FixedIssue is an archival snapshot of a ticket taken when it was marked fixed.
// It owns its copy of the ticket fields; TicketID is a weak reference.
type FixedIssue struct {
	ID          int64
	TicketID    int64
	Title       string
	Description string
	Category    string
	Priority    string
	Confidence  float64
	Status      TicketStatus
	FixedBy     string
	FixedAt     time.Time
	Notes       string
}
