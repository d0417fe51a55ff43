package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/config"
	"github.com/ticketflow/ticketflow/internal/events"
)

// Service turns ticket events into department mailbox emails. Delivery is
// best-effort: failures are logged by the dispatcher's retry loop and never
// reach the request that caused them.
type Service struct {
	dispatcher events.Dispatcher
	mailer     Mailer
	logger     *zap.Logger
	cfg        config.MailConfig
}

// NewService creates the service.
func NewService(dispatcher events.Dispatcher, mailer Mailer, logger *zap.Logger, cfg config.MailConfig) *Service {
	return &Service{
		dispatcher: dispatcher,
		mailer:     mailer,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to ticket events.
func (s *Service) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventTicketCreated, s.handleTicketCreated)
	s.dispatcher.Subscribe(events.EventTicketUpdated, s.handleTicketUpdated)
}

func (s *Service) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", event.Type)
	}
	if !s.cfg.Enabled || s.mailer == nil {
		s.logger.Debug("notifications disabled", zap.Int64("ticket_id", event.TicketID))
		return nil
	}

	email := TicketCreatedEmail(&payload.Ticket, &payload.Actor)
	to := s.cfg.DepartmentEmail(payload.Ticket.Department)
	if err := s.mailer.Send(ctx, []string{to}, email.Subject, email.HTMLBody, email.TextBody); err != nil {
		return fmt.Errorf("send ticket created notification: %w", err)
	}
	s.logger.Info("ticket created notification sent",
		zap.Int64("ticket_id", payload.Ticket.ID),
		zap.String("to", to))
	return nil
}

func (s *Service) handleTicketUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketUpdatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", event.Type)
	}
	if !s.cfg.Enabled || s.mailer == nil {
		s.logger.Debug("notifications disabled", zap.Int64("ticket_id", event.TicketID))
		return nil
	}

	email := TicketUpdatedEmail(&payload.Before, &payload.After, &payload.Actor)
	to := s.cfg.DepartmentEmail(payload.After.Department)
	if err := s.mailer.Send(ctx, []string{to}, email.Subject, email.HTMLBody, email.TextBody); err != nil {
		return fmt.Errorf("send ticket updated notification: %w", err)
	}
	s.logger.Info("ticket updated notification sent",
		zap.Int64("ticket_id", payload.After.ID),
		zap.String("to", to))
	return nil
}
