package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-triage/internal/classifier"
	"github.com/spec-kit/helpdesk-triage/internal/domain"
	"github.com/spec-kit/helpdesk-triage/internal/events"
	"github.com/spec-kit/helpdesk-triage/internal/id"
	"github.com/spec-kit/helpdesk-triage/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-triage/pkg/util/errorutil"
)

const (
	// DefaultActor is recorded when an admin action names nobody.
	DefaultActor = "admin"

	titleMaxRunes  = 60
	titleEllipsis  = "..."
	defaultPerPage = 10
	maxPerPage     = 100
)

// TicketClassifier is the classification dependency of the lifecycle.
type TicketClassifier interface {
	Classify(ctx context.Context, text string) classifier.Result
}

// TicketService implements the ticket lifecycle: submission, correction and completion,
// plus the listing queries around it.
type TicketService struct {
	store      repository.Store
	classifier TicketClassifier
	taxonomy   domain.Taxonomy
	ids        id.Generator
	dispatcher events.Dispatcher
	logger     *zap.Logger
	clock      func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store      repository.Store
	Classifier TicketClassifier
	Taxonomy   domain.Taxonomy
	IDs        id.Generator
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// SubmitInput describes a new ticket.
type SubmitInput struct {
	Title       string
	Description string
}

// CorrectInput describes an admin override. Empty Category or Priority keeps the current value.
type CorrectInput struct {
	Category    string
	Priority    string
	CorrectedBy string
	Notes       string
}

// CompleteInput describes closing a ticket.
type CompleteInput struct {
	FixedBy string
	Notes   string
}

// TicketListFilter selects a page of tickets.
type TicketListFilter struct {
	Page     int
	PerPage  int
	Status   domain.TicketStatus
	Category string
	Priority string
}

// FixedIssueListFilter selects a page of fixed issues.
type FixedIssueListFilter struct {
	Page     int
	PerPage  int
	Category string
	Priority string
	FixedBy  string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	taxonomy := deps.Taxonomy
	if len(taxonomy.Categories()) == 0 {
		taxonomy = domain.DefaultTaxonomy()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		store:      deps.Store,
		classifier: deps.Classifier,
		taxonomy:   taxonomy,
		ids:        deps.IDs,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		clock:      clock,
	}
}

// Taxonomy returns the categories and priorities tickets are validated against.
func (s *TicketService) Taxonomy() domain.Taxonomy {
	return s.taxonomy
}

// Submit validates and classifies a description and stores it as an Open ticket.
func (s *TicketService) Submit(ctx context.Context, input SubmitInput) (*domain.Ticket, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperrors.NewValidationError("description is required", map[string]any{"field": "description"})
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = defaultTitle(description)
	}

	result := s.classifier.Classify(ctx, description)

	now := s.now()
	ticket := &domain.Ticket{
		ID:          s.ids.New(),
		Title:       title,
		Description: description,
		Category:    result.Category,
		Priority:    result.Priority,
		Confidence:  result.Confidence,
		Status:      domain.TicketStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Tickets().Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	s.logger.Info("ticket submitted",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("category", ticket.Category),
		zap.String("priority", ticket.Priority),
		zap.Float64("confidence", ticket.Confidence),
		zap.String("source", string(result.Source)))

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketSubmitted,
		TicketID: ticket.ID,
		Payload: events.TicketSubmittedPayload{
			Title:          ticket.Title,
			Classification: ticket.Classification(),
			Source:         string(result.Source),
		},
	})
	return ticket, nil
}

// Correct overrides category and/or priority. When nothing differs from the stored values
// it writes nothing and returns a nil Correction. Otherwise the Correction and the ticket
// update commit together.
func (s *TicketService) Correct(ctx context.Context, ticketID int64, input CorrectInput) (*domain.Ticket, *domain.Correction, error) {
	category := strings.TrimSpace(input.Category)
	priority := strings.TrimSpace(input.Priority)
	if category != "" && !s.taxonomy.HasCategory(category) {
		return nil, nil, apperrors.NewValidationError("unknown category", map[string]any{
			"field":   "category",
			"allowed": s.taxonomy.Categories(),
		})
	}
	if priority != "" && !s.taxonomy.HasPriority(priority) {
		return nil, nil, apperrors.NewValidationError("unknown priority", map[string]any{
			"field":   "priority",
			"allowed": s.taxonomy.Priorities(),
		})
	}
	correctedBy := strings.TrimSpace(input.CorrectedBy)
	if correctedBy == "" {
		correctedBy = DefaultActor
	}

	var (
		updated    *domain.Ticket
		correction *domain.Correction
	)
	err := s.store.WithTx(ctx, func(stores repository.StoreProvider) error {
		ticket, err := stores.Tickets().GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return ticketLookupError(ticketID, err)
		}

		newCategory := category
		if newCategory == "" {
			newCategory = ticket.Category
		}
		newPriority := priority
		if newPriority == "" {
			newPriority = ticket.Priority
		}

		if newCategory == ticket.Category && newPriority == ticket.Priority {
			updated = ticket
			return nil
		}

		now := s.now()
		c := &domain.Correction{
			ID:          s.ids.New(),
			TicketID:    ticket.ID,
			OldCategory: ticket.Category,
			NewCategory: newCategory,
			OldPriority: ticket.Priority,
			NewPriority: newPriority,
			CorrectedBy: correctedBy,
			CorrectedAt: now,
			Notes:       input.Notes,
		}
		if err := stores.Corrections().Create(ctx, c); err != nil {
			return fmt.Errorf("create correction: %w", err)
		}

		ticket.Category = newCategory
		ticket.Priority = newPriority
		ticket.UpdatedAt = now
		if err := stores.Tickets().Update(ctx, ticket); err != nil {
			return fmt.Errorf("update ticket: %w", err)
		}

		updated, correction = ticket, c
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if correction == nil {
		s.logger.Info("ticket correction made no changes", zap.Int64("ticket_id", ticketID))
		return updated, nil, nil
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCorrected,
		TicketID: updated.ID,
		Actor:    correction.CorrectedBy,
		Payload: events.TicketCorrectedPayload{
			CorrectionID: correction.ID,
			OldCategory:  correction.OldCategory,
			NewCategory:  correction.NewCategory,
			OldPriority:  correction.OldPriority,
			NewPriority:  correction.NewPriority,
		},
	})
	return updated, correction, nil
}

// Complete archives a snapshot of the ticket as a FixedIssue and marks the ticket Fixed.
// Completing an already Fixed ticket is allowed and archives another snapshot.
func (s *TicketService) Complete(ctx context.Context, ticketID int64, input CompleteInput) (*domain.FixedIssue, error) {
	fixedBy := strings.TrimSpace(input.FixedBy)
	if fixedBy == "" {
		fixedBy = DefaultActor
	}

	var issue *domain.FixedIssue
	err := s.store.WithTx(ctx, func(stores repository.StoreProvider) error {
		ticket, err := stores.Tickets().GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return ticketLookupError(ticketID, err)
		}

		now := s.now()
		fixed := &domain.FixedIssue{
			ID:          s.ids.New(),
			TicketID:    ticket.ID,
			Title:       ticket.Title,
			Description: ticket.Description,
			Category:    ticket.Category,
			Priority:    ticket.Priority,
			Confidence:  ticket.Confidence,
			Status:      domain.TicketStatusFixed,
			FixedBy:     fixedBy,
			FixedAt:     now,
			Notes:       input.Notes,
		}
		if err := stores.FixedIssues().Create(ctx, fixed); err != nil {
			return fmt.Errorf("create fixed issue: %w", err)
		}

		ticket.Status = domain.TicketStatusFixed
		ticket.UpdatedAt = now
		if err := stores.Tickets().Update(ctx, ticket); err != nil {
			return fmt.Errorf("update ticket: %w", err)
		}

		issue = fixed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketFixed,
		TicketID: issue.TicketID,
		Actor:    issue.FixedBy,
		Payload: events.TicketFixedPayload{
			FixedIssueID: issue.ID,
			Notes:        issue.Notes,
		},
	})
	return issue, nil
}

// ListTickets returns a page of tickets, newest first.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) (domain.Page[domain.Ticket], error) {
	page, perPage := normalizePage(filter.Page, filter.PerPage)
	tickets, total, err := s.store.Tickets().List(ctx, repository.TicketFilter{
		Status:   filter.Status,
		Category: filter.Category,
		Priority: filter.Priority,
		Limit:    perPage,
		Offset:   (page - 1) * perPage,
	})
	if err != nil {
		return domain.Page[domain.Ticket]{}, fmt.Errorf("list tickets: %w", err)
	}
	return domain.Page[domain.Ticket]{Items: tickets, Page: page, PerPage: perPage, Total: total}, nil
}

// GetTicket returns a ticket with its corrections, newest first.
func (s *TicketService) GetTicket(ctx context.Context, ticketID int64) (*domain.Ticket, []domain.Correction, error) {
	ticket, err := s.store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, ticketLookupError(ticketID, err)
	}
	corrections, err := s.store.Corrections().ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, fmt.Errorf("list corrections: %w", err)
	}
	return ticket, corrections, nil
}

// CountSubmittedSince counts tickets created at or after since.
func (s *TicketService) CountSubmittedSince(ctx context.Context, since time.Time) (int, error) {
	count, err := s.store.Tickets().CountCreatedSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	return count, nil
}

// CountSubmittedToday counts tickets created since midnight UTC.
func (s *TicketService) CountSubmittedToday(ctx context.Context) (int, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.CountSubmittedSince(ctx, midnight)
}

// ListFixedIssues returns a page of fixed issues, most recently fixed first.
func (s *TicketService) ListFixedIssues(ctx context.Context, filter FixedIssueListFilter) (domain.Page[domain.FixedIssue], error) {
	page, perPage := normalizePage(filter.Page, filter.PerPage)
	issues, total, err := s.store.FixedIssues().List(ctx, repository.FixedIssueFilter{
		Category: filter.Category,
		Priority: filter.Priority,
		FixedBy:  filter.FixedBy,
		Limit:    perPage,
		Offset:   (page - 1) * perPage,
	})
	if err != nil {
		return domain.Page[domain.FixedIssue]{}, fmt.Errorf("list fixed issues: %w", err)
	}
	return domain.Page[domain.FixedIssue]{Items: issues, Page: page, PerPage: perPage, Total: total}, nil
}

// ExportFixedIssues returns every fixed issue, most recently fixed first.
func (s *TicketService) ExportFixedIssues(ctx context.Context) ([]domain.FixedIssue, error) {
	issues, _, err := s.store.FixedIssues().List(ctx, repository.FixedIssueFilter{})
	if err != nil {
		return nil, fmt.Errorf("export fixed issues: %w", err)
	}
	return issues, nil
}

// now is UTC at microsecond precision, matching what Postgres stores.
func (s *TicketService) now() time.Time {
	return s.clock().UTC().Truncate(time.Microsecond)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func defaultTitle(description string) string {
	if utf8.RuneCountInString(description) <= titleMaxRunes {
		return description + titleEllipsis
	}
	runes := []rune(description)
	return string(runes[:titleMaxRunes]) + titleEllipsis
}

func ticketLookupError(ticketID int64, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	return fmt.Errorf("load ticket %d: %w", ticketID, err)
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}
