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

// ReplyInput describes a reply submission.
type ReplyInput struct {
	Content     string
	Hours       float64
	StatusID    *int64
	PriorityID  *int64
	Attachments []storage.NamedStream
}

// ReplyDependencies bundles collaborators for the reply workflow.
type ReplyDependencies struct {
	TicketRepo       repository.TicketRepository
	PostRepo         repository.PostRepository
	UploadRepo       repository.UploadRepository
	SubscriptionRepo repository.SubscriptionRepository
	ActionRepo       repository.ActionRepository
	UserRepo         repository.UserRepository
	StatusRepo       repository.StatusRepository
	PriorityRepo     repository.PriorityRepository
	Attachments      storage.AttachmentStore
	Transactor       persistence.Transactor
	Dispatcher       events.Dispatcher
}

// ReplyService validates and applies replies to tickets, including the
// status/priority transition rules, audit trail, and subscription upkeep.
type ReplyService struct {
	tickets       repository.TicketRepository
	posts         repository.PostRepository
	uploads       repository.UploadRepository
	subscriptions repository.SubscriptionRepository
	actions       repository.ActionRepository
	users         repository.UserRepository
	statuses      repository.StatusRepository
	priorities    repository.PriorityRepository
	attachments   storage.AttachmentStore
	transactor    persistence.Transactor
	dispatcher    events.Dispatcher
	cfg           config.HelpdeskConfig
	now           func() time.Time
}

// NewReplyService constructs the service.
func NewReplyService(deps ReplyDependencies, cfg config.HelpdeskConfig) *ReplyService {
	return &ReplyService{
		tickets:       deps.TicketRepo,
		posts:         deps.PostRepo,
		uploads:       deps.UploadRepo,
		subscriptions: deps.SubscriptionRepo,
		actions:       deps.ActionRepo,
		users:         deps.UserRepo,
		statuses:      deps.StatusRepo,
		priorities:    deps.PriorityRepo,
		attachments:   deps.Attachments,
		transactor:    deps.Transactor,
		dispatcher:    deps.Dispatcher,
		cfg:           cfg,
		now:           time.Now,
	}
}

// SubmitReply appends a reply to a ticket. All persistence runs in one store
// transaction; notification events are dispatched only after commit, so a
// failed notification can never roll back the reply.
func (s *ReplyService) SubmitReply(ctx context.Context, actor domain.Actor, ticketID int64, input ReplyInput) (*domain.Post, error) {
	content := strings.TrimSpace(input.Content)
	if len(content) < s.cfg.ContentMinLength || len(content) > s.cfg.ContentMaxLength {
		return nil, util.NewValidationError("reply content length out of bounds", map[string]any{
			"min": s.cfg.ContentMinLength,
			"max": s.cfg.ContentMaxLength,
		})
	}
	if input.Hours < 0 {
		return nil, util.NewValidationError("hours cannot be negative", nil)
	}
	// Privilege check happens before any state is touched: a forged
	// status/priority from a non-privileged actor aborts the whole reply.
	if (input.StatusID != nil || input.PriorityID != nil) && !actor.Privileged() {
		return nil, util.NewAccessDenied("only admins may change status or priority")
	}
	for _, att := range input.Attachments {
		if !s.attachments.AllowedExtension(att.FileName) {
			return nil, util.NewValidationError("attachment extension not allowed", map[string]any{
				"file": att.FileName,
			})
		}
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}

	currentStatus, err := s.statuses.GetByID(ctx, ticket.StatusID)
	if err != nil {
		return nil, util.MapError(err)
	}

	stored, err := s.attachments.Save(input.Attachments)
	if err != nil {
		return nil, util.NewValidationError("failed to store attachments", map[string]any{"cause": err.Error()})
	}

	post := &domain.Post{
		TicketID: ticket.ID,
		UserID:   actor.ID,
		Content:  content,
		Hours:    input.Hours,
	}

	var (
		statusChange   *events.TicketStatusChangedPayload
		priorityChange *events.TicketPriorityChangedPayload
		reopened       bool
	)

	err = s.transactor.InTx(ctx, func(txCtx context.Context) error {
		if err := s.posts.Create(txCtx, post); err != nil {
			return err
		}
		for _, file := range stored {
			upload := &domain.Upload{
				PostID:     post.ID,
				FileName:   file.FileName,
				StorageKey: file.StorageKey,
			}
			if err := s.uploads.Create(txCtx, upload); err != nil {
				return err
			}
			post.Uploads = append(post.Uploads, *upload)
		}

		if input.StatusID != nil && *input.StatusID != ticket.StatusID {
			target, err := s.statuses.GetByID(txCtx, *input.StatusID)
			if err != nil {
				return util.MapError(err)
			}
			statusChange = &events.TicketStatusChangedPayload{
				OldStatus: currentStatus.Name,
				NewStatus: target.Name,
			}
			ticket.StatusID = target.ID
			if err := s.recordAction(txCtx, actor, ticket.ID, domain.ActionStatus, map[string]any{
				"status_id": target.ID,
				"status":    target.Name,
			}); err != nil {
				return err
			}
		}

		if input.PriorityID != nil && *input.PriorityID != ticket.PriorityID {
			oldPriority, err := s.priorities.GetByID(txCtx, ticket.PriorityID)
			if err != nil {
				return util.MapError(err)
			}
			target, err := s.priorities.GetByID(txCtx, *input.PriorityID)
			if err != nil {
				return util.MapError(err)
			}
			priorityChange = &events.TicketPriorityChangedPayload{
				OldPriority: oldPriority.Name,
				NewPriority: target.Name,
			}
			ticket.PriorityID = target.ID
			if err := s.recordAction(txCtx, actor, ticket.ID, domain.ActionPriority, map[string]any{
				"priority_id": target.ID,
				"priority":    target.Name,
			}); err != nil {
				return err
			}
		}

		// Any activity reopens a closed ticket unless the reply explicitly
		// set a status. The implicit reopen is not audited.
		if input.StatusID == nil && currentStatus.IsClosed() {
			open, err := s.statuses.GetByName(txCtx, domain.StatusOpen)
			if err != nil {
				return util.MapError(err)
			}
			ticket.StatusID = open.ID
			reopened = true
		}

		if err := s.subscriptions.Create(txCtx, &domain.Subscription{
			TicketID: ticket.ID,
			UserID:   actor.ID,
		}); err != nil {
			return err
		}
		if err := s.users.IncrementTotalPosts(txCtx, actor.ID); err != nil {
			return err
		}

		ticket.Hours += input.Hours
		ticket.LastUpdated = s.now()
		return s.tickets.Update(txCtx, ticket)
	})
	if err != nil {
		return nil, util.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketReplied,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.TicketRepliedPayload{
			PostID:      post.ID,
			BodyPreview: stringPreview(post.Content, 120),
			Reopened:    reopened,
		},
	})
	if statusChange != nil {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Actor:    actor,
			Payload:  *statusChange,
		})
	}
	if priorityChange != nil {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketPriorityChanged,
			TicketID: ticket.ID,
			Actor:    actor,
			Payload:  *priorityChange,
		})
	}

	return post, nil
}

// Subscribe adds a user subscription to a ticket; duplicates are absorbed.
func (s *ReplyService) Subscribe(ctx context.Context, actor domain.Actor, ticketID int64) error {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return util.MapError(err)
	}
	return s.subscriptions.Create(ctx, &domain.Subscription{TicketID: ticketID, UserID: actor.ID})
}

// Unsubscribe removes the actor's subscription from a ticket.
func (s *ReplyService) Unsubscribe(ctx context.Context, actor domain.Actor, ticketID int64) error {
	return s.subscriptions.Delete(ctx, ticketID, actor.ID)
}

func (s *ReplyService) recordAction(ctx context.Context, actor domain.Actor, ticketID int64, kind domain.ActionKind, data map[string]any) error {
	return s.actions.Create(ctx, &domain.TicketAction{
		TicketID: ticketID,
		UserID:   actor.ID,
		Kind:     kind,
		Data:     data,
	})
}

func (s *ReplyService) publishEvent(ctx context.Context, event events.Event) {
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

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
