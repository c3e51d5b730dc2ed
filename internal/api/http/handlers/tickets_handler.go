package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-triage/internal/api/dto"
	"github.com/spec-kit/helpdesk-triage/internal/domain"
	"github.com/spec-kit/helpdesk-triage/internal/service"
	apperrors "github.com/spec-kit/helpdesk-triage/pkg/util/errorutil"
)

// TicketsHandler manages public ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
	perPage int
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, perPage int) *TicketsHandler {
	return &TicketsHandler{service: ticketService, perPage: perPage}
}

// SubmitTicket POST /tickets.
func (h *TicketsHandler) SubmitTicket(c *fiber.Ctx) error {
	var req dto.SubmitTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Submit(c.UserContext(), service.SubmitInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	page, err := h.service.ListTickets(c.UserContext(), parseTicketListFilter(c, h.perPage))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": ticketResponses(page.Items),
		"meta": dto.NewPageMeta(page),
	})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticketID, err := ticketIDParam(c)
	if err != nil {
		return err
	}
	ticket, corrections, err := h.service.GetTicket(c.UserContext(), ticketID)
	if err != nil {
		return err
	}

	detail := dto.TicketDetailResponse{
		TicketResponse: dto.NewTicketResponse(ticket),
		Corrections:    make([]dto.CorrectionResponse, 0, len(corrections)),
	}
	for i := range corrections {
		detail.Corrections = append(detail.Corrections, dto.NewCorrectionResponse(&corrections[i]))
	}
	return c.JSON(fiber.Map{"data": detail})
}

func parseTicketListFilter(c *fiber.Ctx, perPage int) service.TicketListFilter {
	return service.TicketListFilter{
		Page:     parseInt(c.Query("page"), 1),
		PerPage:  parseInt(c.Query("per_page"), perPage),
		Status:   domain.TicketStatus(c.Query("status")),
		Category: c.Query("category"),
		Priority: c.Query("priority"),
	}
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return items
}
