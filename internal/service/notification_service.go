package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-triage/internal/config"
	"github.com/spec-kit/helpdesk-triage/internal/events"
	"github.com/spec-kit/helpdesk-triage/internal/observability"
)

// NotificationService handles emitting notifications for lifecycle events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketSubmitted, n.handleTicketSubmitted)
	n.dispatcher.Subscribe(events.EventTicketCorrected, n.handleTicketCorrected)
	n.dispatcher.Subscribe(events.EventTicketFixed, n.handleTicketFixed)
}

func (n *NotificationService) handleTicketSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketSubmitted", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.metrics.RecordTicketEvent(string(event.Type))
	return n.postWebhook(ctx, event)
}

func (n *NotificationService) handleTicketCorrected(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCorrected",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("actor", event.Actor),
		zap.Any("payload", event.Payload))
	n.metrics.RecordTicketEvent(string(event.Type))
	return n.postWebhook(ctx, event)
}

func (n *NotificationService) handleTicketFixed(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketFixed",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("actor", event.Actor),
		zap.Any("payload", event.Payload))
	n.metrics.RecordTicketEvent(string(event.Type))
	return n.postWebhook(ctx, event)
}

// postWebhook delivers the event as JSON. Non-2xx answers count as failures.
func (n *NotificationService) postWebhook(ctx context.Context, event events.Event) error {
	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	agent := fiber.Post(url).
		Timeout(n.cfg.WebhookTimeout()).
		JSON(event)
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("post webhook: %w", errors.Join(errs...))
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return fmt.Errorf("post webhook: status %d: %s", code, strings.TrimSpace(string(body)))
	}

	n.logger.Debug("webhook delivered",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)),
		zap.Int("status", code))
	return nil
}
