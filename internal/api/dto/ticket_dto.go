package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

// SubmitTicketRequest payload. Title is optional.
type SubmitTicketRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
}

// CorrectTicketRequest payload. Empty fields keep the current value.
type CorrectTicketRequest struct {
	Category    string `json:"category" form:"category"`
	Priority    string `json:"priority" form:"priority"`
	CorrectedBy string `json:"corrected_by" form:"corrected_by"`
	Notes       string `json:"notes" form:"notes"`
}

// CompleteTicketRequest payload.
type CompleteTicketRequest struct {
	FixedBy string `json:"fixed_by" form:"fixed_by"`
	Notes   string `json:"notes" form:"notes"`
}

// TicketResponse represents a ticket. Ids are strings because snowflake ids exceed
// the integer range JavaScript clients can represent.
type TicketResponse struct {
	ID          int64               `json:"id,string"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    *string             `json:"category"`
	Priority    *string             `json:"priority"`
	Confidence  float64             `json:"confidence"`
	Status      domain.TicketStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CorrectionResponse represents one correction audit record.
type CorrectionResponse struct {
	ID          int64     `json:"id,string"`
	TicketID    int64     `json:"ticket_id,string"`
	OldCategory *string   `json:"old_category"`
	NewCategory *string   `json:"new_category"`
	OldPriority *string   `json:"old_priority"`
	NewPriority *string   `json:"new_priority"`
	CorrectedBy string    `json:"corrected_by"`
	CorrectedAt time.Time `json:"corrected_at"`
	Notes       string    `json:"notes"`
}

// TicketDetailResponse is a ticket with its corrections, newest first.
type TicketDetailResponse struct {
	TicketResponse
	Corrections []CorrectionResponse `json:"corrections"`
}

// CorrectTicketResponse reports the outcome of a correction. Changed is false when the
// request matched the stored values and nothing was written.
type CorrectTicketResponse struct {
	Changed    bool                `json:"changed"`
	Ticket     TicketResponse      `json:"ticket"`
	Correction *CorrectionResponse `json:"correction,omitempty"`
}

// FixedIssueResponse represents an archived ticket snapshot.
type FixedIssueResponse struct {
	ID          int64               `json:"id,string"`
	TicketID    int64               `json:"ticket_id,string"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    *string             `json:"category"`
	Priority    *string             `json:"priority"`
	Confidence  float64             `json:"confidence"`
	Status      domain.TicketStatus `json:"status"`
	FixedBy     string              `json:"fixed_by"`
	FixedAt     time.Time           `json:"fixed_at"`
	Notes       string              `json:"notes"`
}

// PageMeta describes the page returned by a listing.
type PageMeta struct {
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// NewPageMeta builds PageMeta from a domain page.
func NewPageMeta[T any](p domain.Page[T]) PageMeta {
	return PageMeta{
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   p.Total,
		Pages:   p.Pages(),
		HasNext: p.HasNext(),
		HasPrev: p.HasPrev(),
	}
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    optional(t.Category),
		Priority:    optional(t.Priority),
		Confidence:  t.Confidence,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewCorrectionResponse maps a domain correction.
func NewCorrectionResponse(c *domain.Correction) CorrectionResponse {
	return CorrectionResponse{
		ID:          c.ID,
		TicketID:    c.TicketID,
		OldCategory: optional(c.OldCategory),
		NewCategory: optional(c.NewCategory),
		OldPriority: optional(c.OldPriority),
		NewPriority: optional(c.NewPriority),
		CorrectedBy: c.CorrectedBy,
		CorrectedAt: c.CorrectedAt,
		Notes:       c.Notes,
	}
}

// NewFixedIssueResponse maps a domain fixed issue.
func NewFixedIssueResponse(f *domain.FixedIssue) FixedIssueResponse {
	return FixedIssueResponse{
		ID:          f.ID,
		TicketID:    f.TicketID,
		Title:       f.Title,
		Description: f.Description,
		Category:    optional(f.Category),
		Priority:    optional(f.Priority),
		Confidence:  f.Confidence,
		Status:      f.Status,
		FixedBy:     f.FixedBy,
		FixedAt:     f.FixedAt,
		Notes:       f.Notes,
	}
}

// optional renders an absent (empty) value as JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
