package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-triage/internal/api/dto"
	"github.com/spec-kit/helpdesk-triage/internal/config"
	"github.com/spec-kit/helpdesk-triage/internal/service"
	apperrors "github.com/spec-kit/helpdesk-triage/pkg/util/errorutil"
)

// StaffTicketsHandler handles admin review, correction and completion endpoints.
type StaffTicketsHandler struct {
	tickets    *service.TicketService
	pagination config.PaginationConfig
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(ticketService *service.TicketService, pagination config.PaginationConfig) *StaffTicketsHandler {
	return &StaffTicketsHandler{tickets: ticketService, pagination: pagination}
}

// ListTickets GET /admin/tickets. recent_count is the number of tickets submitted today (UTC).
func (h *StaffTicketsHandler) ListTickets(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page, err := h.tickets.ListTickets(ctx, parseTicketListFilter(c, h.pagination.AdminTicketsPerPage))
	if err != nil {
		return err
	}
	recent, err := h.tickets.CountSubmittedToday(ctx)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":         ticketResponses(page.Items),
		"meta":         dto.NewPageMeta(page),
		"recent_count": recent,
		"taxonomy": fiber.Map{
			"categories": h.tickets.Taxonomy().Categories(),
			"priorities": h.tickets.Taxonomy().Priorities(),
		},
	})
}

// CorrectTicket PATCH /admin/tickets/:id.
func (h *StaffTicketsHandler) CorrectTicket(c *fiber.Ctx) error {
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.CorrectTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, correction, err := h.tickets.Correct(c.UserContext(), ticketID, service.CorrectInput{
		Category:    req.Category,
		Priority:    req.Priority,
		CorrectedBy: req.CorrectedBy,
		Notes:       req.Notes,
	})
	if err != nil {
		return err
	}

	resp := dto.CorrectTicketResponse{
		Changed: correction != nil,
		Ticket:  dto.NewTicketResponse(ticket),
	}
	if correction != nil {
		cr := dto.NewCorrectionResponse(correction)
		resp.Correction = &cr
	}
	return c.JSON(fiber.Map{"data": resp})
}

// CompleteTicket POST /admin/tickets/:id/complete.
func (h *StaffTicketsHandler) CompleteTicket(c *fiber.Ctx) error {
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	var req dto.CompleteTicketRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	issue, err := h.tickets.Complete(c.UserContext(), ticketID, service.CompleteInput{
		FixedBy: req.FixedBy,
		Notes:   req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewFixedIssueResponse(issue)})
}

// ListFixedIssues GET /admin/fixed-issues.
func (h *StaffTicketsHandler) ListFixedIssues(c *fiber.Ctx) error {
	page, err := h.tickets.ListFixedIssues(c.UserContext(), service.FixedIssueListFilter{
		Page:     parseInt(c.Query("page"), 1),
		PerPage:  parseInt(c.Query("per_page"), h.pagination.FixedPerPage),
		Category: c.Query("category"),
		Priority: c.Query("priority"),
		FixedBy:  c.Query("fixed_by"),
	})
	if err != nil {
		return err
	}
	items := make([]dto.FixedIssueResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, dto.NewFixedIssueResponse(&page.Items[i]))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": dto.NewPageMeta(page),
	})
}

// ExportFixedIssues GET /admin/fixed-issues/export.csv.
func (h *StaffTicketsHandler) ExportFixedIssues(c *fiber.Ctx) error {
	issues, err := h.tickets.ExportFixedIssues(c.UserContext())
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := service.WriteFixedIssuesCSV(&buf, issues); err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=fixed_issues.csv")
	return c.Send(buf.Bytes())
}
