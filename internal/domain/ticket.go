package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. Open is initial, Fixed is terminal.
type TicketStatus string

const (
	TicketStatusOpen  TicketStatus = "Open"
	TicketStatusFixed TicketStatus = "Fixed"
)

// Classification is the category/priority/confidence triple assigned to a description.
type Classification struct {
	Category   string  `json:"category"`
	Priority   string  `json:"priority"`
	Confidence float64 `json:"confidence"`
}

// Ticket is one reported issue. An empty Category or Priority means the value is absent.
type Ticket struct {
	ID          int64
	Title       string
	Description string
	Category    string
	Priority    string
	Confidence  float64
	Status      TicketStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Classification returns the ticket's current classification fields.
func (t Ticket) Classification() Classification {
	return Classification{Category: t.Category, Priority: t.Priority, Confidence: t.Confidence}
}
