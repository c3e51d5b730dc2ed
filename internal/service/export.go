package service

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

// FixedIssueCSVHeader is the column order of the fixed-issue export.
var FixedIssueCSVHeader = []string{"id", "ticket_id", "title", "category", "priority", "fixed_by", "fixed_at", "notes"}

// WriteFixedIssuesCSV writes issues as CSV with a header row. fixed_at is RFC 3339 in UTC.
func WriteFixedIssuesCSV(w io.Writer, issues []domain.FixedIssue) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(FixedIssueCSVHeader); err != nil {
		return err
	}
	for _, issue := range issues {
		record := []string{
			strconv.FormatInt(issue.ID, 10),
			strconv.FormatInt(issue.TicketID, 10),
			issue.Title,
			issue.Category,
			issue.Priority,
			issue.FixedBy,
			issue.FixedAt.UTC().Format(time.RFC3339Nano),
			issue.Notes,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
