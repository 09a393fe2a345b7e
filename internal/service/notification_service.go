package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Zachary2562/recordables-ticketquest/internal/config"
	"github.com/Zachary2562/recordables-ticketquest/internal/events"
	"github.com/Zachary2562/recordables-ticketquest/internal/repository"
)

// MailTransport delivers a notification to a set of recipients. Delivery is
// best-effort: callers log failures and move on.
type MailTransport interface {
	Send(ctx context.Context, recipients []string, subject, body string) error
}

// LoggingMailTransport writes would-be deliveries to the log instead of
// sending anything. Stands in until a real transport is configured.
type LoggingMailTransport struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

// NewLoggingMailTransport constructs the stub transport.
func NewLoggingMailTransport(cfg config.MailConfig, logger *zap.Logger) *LoggingMailTransport {
	return &LoggingMailTransport{cfg: cfg, logger: logger}
}

func (t *LoggingMailTransport) Send(_ context.Context, recipients []string, subject, body string) error {
	if t.cfg.Disabled {
		return nil
	}
	t.logger.Info("mail notification",
		zap.String("from", t.cfg.From),
		zap.Strings("recipients", recipients),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}

// NotificationService turns ticket events into mails for the ticket's
// subscribers. The event author is excluded from their own notifications.
type NotificationService struct {
	subscriptions repository.SubscriptionRepository
	users         repository.UserRepository
	transport     MailTransport
	logger        *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(
	subscriptions repository.SubscriptionRepository,
	users repository.UserRepository,
	transport MailTransport,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		subscriptions: subscriptions,
		users:         users,
		transport:     transport,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to the ticket events that notify subscribers.
func (s *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, s.HandleTicketEvent)
	dispatcher.Subscribe(events.EventTicketReplied, s.HandleTicketEvent)
	dispatcher.Subscribe(events.EventTicketStatusChanged, s.HandleTicketEvent)
	dispatcher.Subscribe(events.EventTicketPriorityChanged, s.HandleTicketEvent)
	dispatcher.Subscribe(events.EventTicketAssigned, s.HandleTicketEvent)
}

// HandleTicketEvent fans an event out to subscriber mailboxes. Errors are
// logged and reported to the dispatcher, which swallows them.
func (s *NotificationService) HandleTicketEvent(ctx context.Context, event events.Event) error {
	subject, body := renderNotification(event)
	if subject == "" {
		return nil
	}

	subs, err := s.subscriptions.ListByTicket(ctx, event.TicketID)
	if err != nil {
		s.logger.Error("failed to load ticket subscribers",
			zap.Int64("ticket_id", event.TicketID), zap.Error(err))
		return err
	}

	ids := make([]int64, 0, len(subs))
	for _, sub := range subs {
		if sub.UserID == event.Actor.ID {
			continue
		}
		ids = append(ids, sub.UserID)
	}
	if len(ids) == 0 {
		return nil
	}

	emails, err := s.users.EmailsByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("failed to resolve subscriber emails",
			zap.Int64("ticket_id", event.TicketID), zap.Error(err))
		return err
	}
	recipients := make([]string, 0, len(emails))
	for _, email := range emails {
		if email != "" {
			recipients = append(recipients, email)
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	if err := s.transport.Send(ctx, recipients, subject, body); err != nil {
		s.logger.Error("notification delivery failed",
			zap.Int64("ticket_id", event.TicketID),
			zap.String("event", string(event.Type)),
			zap.Error(err))
		return err
	}
	return nil
}

func renderNotification(event events.Event) (subject, body string) {
	switch payload := event.Payload.(type) {
	case events.TicketRepliedPayload:
		subject = fmt.Sprintf("Flicket - new reply on ticket #%d", event.TicketID)
		body = fmt.Sprintf("%s replied: %s", event.Actor.Name, payload.BodyPreview)
		if payload.Reopened {
			body += "\nThe ticket was reopened."
		}
	case events.TicketStatusChangedPayload:
		subject = fmt.Sprintf("Flicket - ticket #%d status changed", event.TicketID)
		body = fmt.Sprintf("%s changed status from %s to %s",
			event.Actor.Name, payload.OldStatus, payload.NewStatus)
	case events.TicketPriorityChangedPayload:
		subject = fmt.Sprintf("Flicket - ticket #%d priority changed", event.TicketID)
		body = fmt.Sprintf("%s changed priority from %s to %s",
			event.Actor.Name, payload.OldPriority, payload.NewPriority)
	case events.TicketAssignedPayload:
		subject = fmt.Sprintf("Flicket - ticket #%d assignment changed", event.TicketID)
		if payload.AssignedID != nil {
			body = fmt.Sprintf("%s assigned the ticket", event.Actor.Name)
		} else {
			body = fmt.Sprintf("%s released the ticket", event.Actor.Name)
		}
	case events.TicketCreatedPayload:
		subject = fmt.Sprintf("Flicket - ticket #%d created", event.TicketID)
		body = fmt.Sprintf("%s opened: %s", event.Actor.Name, payload.Title)
	}
	return subject, body
}
