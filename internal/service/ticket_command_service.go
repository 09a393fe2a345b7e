package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Zachary2562/recordables-ticketquest/internal/config"
	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/internal/events"
	"github.com/Zachary2562/recordables-ticketquest/internal/persistence"
	"github.com/Zachary2562/recordables-ticketquest/internal/repository"
	"github.com/Zachary2562/recordables-ticketquest/internal/storage"
	"github.com/Zachary2562/recordables-ticketquest/pkg/util"
)

// CreateTicketInput carries a new ticket submission.
type CreateTicketInput struct {
	Title       string
	Content     string
	CategoryID  int64
	PriorityID  int64
	Hours       float64
	Attachments []storage.NamedStream
}

// TicketCommandService covers ticket lifecycle mutations outside the reply
// workflow: creation, assignment, and deletion.
type TicketCommandService struct {
	tickets       repository.TicketRepository
	posts         repository.PostRepository
	uploads       repository.UploadRepository
	subscriptions repository.SubscriptionRepository
	actions       repository.ActionRepository
	users         repository.UserRepository
	categories    repository.CategoryRepository
	priorities    repository.PriorityRepository
	statuses      repository.StatusRepository
	attachments   storage.AttachmentStore
	transactor    persistence.Transactor
	dispatcher    events.Dispatcher
	cfg           config.HelpdeskConfig
	now           func() time.Time
}

// NewTicketCommandService constructs the service.
func NewTicketCommandService(deps ReplyDependencies, categories repository.CategoryRepository, cfg config.HelpdeskConfig) *TicketCommandService {
	return &TicketCommandService{
		tickets:       deps.TicketRepo,
		posts:         deps.PostRepo,
		uploads:       deps.UploadRepo,
		subscriptions: deps.SubscriptionRepo,
		actions:       deps.ActionRepo,
		users:         deps.UserRepo,
		categories:    categories,
		priorities:    deps.PriorityRepo,
		statuses:      deps.StatusRepo,
		attachments:   deps.Attachments,
		transactor:    deps.Transactor,
		dispatcher:    deps.Dispatcher,
		cfg:           cfg,
		now:           time.Now,
	}
}

// CreateTicket opens a new ticket in the "Open" status, auto-subscribes the
// author, and dispatches a created event after commit.
func (s *TicketCommandService) CreateTicket(ctx context.Context, actor domain.Actor, input CreateTicketInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if len(title) < s.cfg.TitleMinLength || len(title) > s.cfg.TitleMaxLength {
		return nil, util.NewValidationError("title length out of bounds", map[string]any{
			"min": s.cfg.TitleMinLength,
			"max": s.cfg.TitleMaxLength,
		})
	}
	if len(content) < s.cfg.ContentMinLength || len(content) > s.cfg.ContentMaxLength {
		return nil, util.NewValidationError("ticket content length out of bounds", map[string]any{
			"min": s.cfg.ContentMinLength,
			"max": s.cfg.ContentMaxLength,
		})
	}
	if input.Hours < 0 {
		return nil, util.NewValidationError("hours cannot be negative", nil)
	}
	for _, att := range input.Attachments {
		if !s.attachments.AllowedExtension(att.FileName) {
			return nil, util.NewValidationError("attachment extension not allowed", map[string]any{
				"file": att.FileName,
			})
		}
	}

	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		return nil, util.MapError(err)
	}
	if _, err := s.priorities.GetByID(ctx, input.PriorityID); err != nil {
		return nil, util.MapError(err)
	}
	open, err := s.statuses.GetByName(ctx, domain.StatusOpen)
	if err != nil {
		return nil, util.MapError(err)
	}

	stored, err := s.attachments.Save(input.Attachments)
	if err != nil {
		return nil, util.NewValidationError("failed to store attachments", map[string]any{"cause": err.Error()})
	}

	now := s.now()
	ticket := &domain.Ticket{
		Title:       title,
		Content:     content,
		PriorityID:  input.PriorityID,
		StatusID:    open.ID,
		CategoryID:  input.CategoryID,
		StartedID:   actor.ID,
		Hours:       input.Hours,
		DateAdded:   now,
		LastUpdated: now,
	}

	err = s.transactor.InTx(ctx, func(txCtx context.Context) error {
		if err := s.tickets.Create(txCtx, ticket); err != nil {
			return err
		}
		// The opening description doubles as the first post so attachments
		// hang off a post row like every later reply.
		if len(stored) > 0 {
			first := &domain.Post{
				TicketID: ticket.ID,
				UserID:   actor.ID,
				Content:  content,
				Hours:    0,
			}
			if err := s.posts.Create(txCtx, first); err != nil {
				return err
			}
			for _, file := range stored {
				if err := s.uploads.Create(txCtx, &domain.Upload{
					PostID:     first.ID,
					FileName:   file.FileName,
					StorageKey: file.StorageKey,
				}); err != nil {
					return err
				}
			}
		}
		if err := s.subscriptions.Create(txCtx, &domain.Subscription{
			TicketID: ticket.ID,
			UserID:   actor.ID,
		}); err != nil {
			return err
		}
		return s.users.IncrementTotalPosts(txCtx, actor.ID)
	})
	if err != nil {
		return nil, util.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.TicketCreatedPayload{
			Title:      ticket.Title,
			CategoryID: ticket.CategoryID,
			PriorityID: ticket.PriorityID,
		},
	})
	return ticket, nil
}

// AssignTicket sets or clears the assignee. Privileged actors only; the
// change is audited and the assignee is subscribed to follow-ups.
func (s *TicketCommandService) AssignTicket(ctx context.Context, actor domain.Actor, ticketID int64, assignedID *int64) error {
	if !actor.Privileged() {
		return util.NewAccessDenied("only admins may assign tickets")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return util.MapError(err)
	}
	var assigneeName *string
	if assignedID != nil {
		assignee, err := s.users.GetByID(ctx, *assignedID)
		if err != nil {
			return util.MapError(err)
		}
		assigneeName = &assignee.Name
	}

	err = s.transactor.InTx(ctx, func(txCtx context.Context) error {
		ticket.AssignedID = assignedID
		ticket.LastUpdated = s.now()
		if err := s.tickets.Update(txCtx, ticket); err != nil {
			return err
		}
		data := map[string]any{"assigned_id": nil}
		if assignedID != nil {
			data["assigned_id"] = *assignedID
			data["assigned"] = *assigneeName
		}
		if err := s.actions.Create(txCtx, &domain.TicketAction{
			TicketID: ticket.ID,
			UserID:   actor.ID,
			Kind:     domain.ActionAssigned,
			Data:     data,
		}); err != nil {
			return err
		}
		if assignedID != nil {
			return s.subscriptions.Create(txCtx, &domain.Subscription{
				TicketID: ticket.ID,
				UserID:   *assignedID,
			})
		}
		return nil
	})
	if err != nil {
		return util.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload:  events.TicketAssignedPayload{AssignedID: assignedID},
	})
	return nil
}

// DeleteTicket removes a ticket and everything hanging off it. The schema
// cascades posts, uploads, actions, and subscriptions.
func (s *TicketCommandService) DeleteTicket(ctx context.Context, actor domain.Actor, ticketID int64) error {
	if !actor.Privileged() {
		return util.NewAccessDenied("only admins may delete tickets")
	}
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return util.MapError(err)
	}
	return util.MapError(s.tickets.Delete(ctx, ticketID))
}

func (s *TicketCommandService) publish(ctx context.Context, event events.Event) {
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
