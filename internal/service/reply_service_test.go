package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachary2562/recordables-ticketquest/internal/config"
	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/internal/events"
	"github.com/Zachary2562/recordables-ticketquest/internal/storage"
	"github.com/Zachary2562/recordables-ticketquest/pkg/util"
)

const (
	openStatusID   = int64(1)
	closedStatusID = int64(2)
	lowPriorityID  = int64(1)
	highPriorityID = int64(2)
)

type replyFixture struct {
	svc        *ReplyService
	tickets    *memTicketRepo
	posts      *memPostRepo
	uploads    *memUploadRepo
	subs       *memSubscriptionRepo
	actions    *memActionRepo
	users      *memUserRepo
	tx         *fakeTransactor
	dispatcher *recordingDispatcher
}

func newReplyFixture(t *testing.T, ticket domain.Ticket) *replyFixture {
	t.Helper()

	f := &replyFixture{
		tickets:    newMemTicketRepo(),
		posts:      newMemPostRepo(),
		uploads:    newMemUploadRepo(),
		subs:       newMemSubscriptionRepo(),
		actions:    newMemActionRepo(),
		users:      newMemUserRepo(domain.User{ID: 7, Username: "alice", Name: "Alice", Email: "alice@example.com"}),
		tx:         &fakeTransactor{},
		dispatcher: &recordingDispatcher{},
	}
	f.tickets.tickets[ticket.ID] = ticket
	if ticket.ID >= f.tickets.nextID {
		f.tickets.nextID = ticket.ID + 1
	}

	deps := ReplyDependencies{
		TicketRepo:       f.tickets,
		PostRepo:         f.posts,
		UploadRepo:       f.uploads,
		SubscriptionRepo: f.subs,
		ActionRepo:       f.actions,
		UserRepo:         f.users,
		StatusRepo: newMemStatusRepo(
			domain.Status{ID: openStatusID, Name: domain.StatusOpen},
			domain.Status{ID: closedStatusID, Name: domain.StatusClosed},
		),
		PriorityRepo: newMemPriorityRepo(
			domain.Priority{ID: lowPriorityID, Name: "Low"},
			domain.Priority{ID: highPriorityID, Name: "High"},
		),
		Attachments: newFakeAttachmentStore("txt", "pdf"),
		Transactor:  f.tx,
		Dispatcher:  f.dispatcher,
	}
	cfg := config.HelpdeskConfig{
		ContentMinLength: 5,
		ContentMaxLength: 5000,
	}
	f.svc = NewReplyService(deps, cfg)
	return f
}

func openTicket() domain.Ticket {
	return domain.Ticket{
		ID:         1,
		Title:      "Printer is on fire",
		Content:    "It really is",
		PriorityID: lowPriorityID,
		StatusID:   openStatusID,
		CategoryID: 1,
		StartedID:  3,
		DateAdded:  time.Now().Add(-time.Hour),
	}
}

func member() domain.Actor {
	return domain.Actor{ID: 7, Name: "Alice"}
}

func admin() domain.Actor {
	return domain.Actor{ID: 7, Name: "Alice", IsAdmin: true}
}

func TestSubmitReplyHappyPath(t *testing.T) {
	f := newReplyFixture(t, openTicket())

	post, err := f.svc.SubmitReply(context.Background(), member(), 1, ReplyInput{
		Content: "Tried turning it off and on",
		Hours:   0.5,
	})
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, int64(1), post.TicketID)
	assert.Equal(t, int64(7), post.UserID)

	assert.Equal(t, 1, f.tx.commits)
	assert.Len(t, f.posts.posts, 1)

	subscribed, _ := f.subs.Exists(context.Background(), 1, 7)
	assert.True(t, subscribed, "author auto-subscribes")

	author, _ := f.users.GetByID(context.Background(), 7)
	assert.Equal(t, 1, author.TotalPosts)

	ticket, _ := f.tickets.GetByID(context.Background(), 1)
	assert.False(t, ticket.LastUpdated.IsZero())
	assert.InDelta(t, 0.5, ticket.Hours, 1e-9)

	require.Len(t, f.dispatcher.published, 1)
	assert.Equal(t, events.EventTicketReplied, f.dispatcher.published[0].Type)
}

func TestSubmitReplyContentBounds(t *testing.T) {
	f := newReplyFixture(t, openTicket())

	_, err := f.svc.SubmitReply(context.Background(), member(), 1, ReplyInput{Content: "hi"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", util.ToDomainError(err).Code)

	_, err = f.svc.SubmitReply(context.Background(), member(), 1, ReplyInput{
		Content: strings.Repeat("x", 5001),
	})
	require.Error(t, err)

	assert.Empty(t, f.posts.posts)
	assert.Zero(t, f.tx.commits)
}

func TestSubmitReplyNegativeHours(t *testing.T) {
	f := newReplyFixture(t, openTicket())

	_, err := f.svc.SubmitReply(context.Background(), member(), 1, ReplyInput{
		Content: "valid content",
		Hours:   -1,
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", util.ToDomainError(err).Code)
}

func TestSubmitReplyDisallowedAttachment(t *testing.T) {
	f := newReplyFixture(t, openTicket())

	_, err := f.svc.SubmitReply(context.Background(), member(), 1, ReplyInput{
		Content: "see attached",
		Attachments: []storage.NamedStream{
			{FileName: "exploit.exe", Reader: strings.NewReader("nope")},
		},
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", util.ToDomainError(err).Code)
	assert.Empty(t, f.posts.posts)
}

func TestSubmitReplyStoresAttachments(t *testing.T) {
	f := newReplyFixture(t, openTicket())

	post, err := f.svc.SubmitReply(context.Background(), member(), 1, ReplyInput{
		Content: "see attached",
		Attachments: []storage.NamedStream{
			{FileName: "log.txt", Reader: strings.NewReader("contents")},
		},
	})
	require.NoError(t, err)
	require.Len(t, post.Uploads, 1)
	assert.Equal(t, "log.txt", post.Uploads[0].FileName)
	assert.Len(t, f.uploads.uploads, 1)
}

func TestSubmitReplyMissingTicket(t *testing.T) {
	f := newReplyFixture(t, openTicket())

	_, err := f.svc.SubmitReply(context.Background(), member(), 99, ReplyInput{Content: "valid content"})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)
}

func TestSubmitReplyNonPrivilegedTransitionDenied(t *testing.T) {
	f := newReplyFixture(t, openTicket())

	target := closedStatusID
	_, err := f.svc.SubmitReply(context.Background(), member(), 1, ReplyInput{
		Content:  "closing this myself",
		StatusID: &target,
	})
	require.Error(t, err)
	assert.Equal(t, "ACCESS_DENIED", util.ToDomainError(err).Code)

	// Nothing changed: no post, no commit, no events, ticket untouched.
	assert.Empty(t, f.posts.posts)
	assert.Zero(t, f.tx.commits)
	assert.Empty(t, f.dispatcher.published)
	ticket, _ := f.tickets.GetByID(context.Background(), 1)
	assert.Equal(t, openStatusID, ticket.StatusID)
}

func TestSubmitReplyAdminStatusChangeAudited(t *testing.T) {
	f := newReplyFixture(t, openTicket())

	target := closedStatusID
	_, err := f.svc.SubmitReply(context.Background(), admin(), 1, ReplyInput{
		Content:  "resolved, closing",
		StatusID: &target,
	})
	require.NoError(t, err)

	ticket, _ := f.tickets.GetByID(context.Background(), 1)
	assert.Equal(t, closedStatusID, ticket.StatusID)

	require.Len(t, f.actions.actions, 1)
	assert.Equal(t, domain.ActionStatus, f.actions.actions[0].Kind)
	assert.Equal(t, domain.StatusClosed, f.actions.actions[0].Data["status"])

	require.Len(t, f.dispatcher.published, 2)
	assert.Equal(t, events.EventTicketReplied, f.dispatcher.published[0].Type)
	assert.Equal(t, events.EventTicketStatusChanged, f.dispatcher.published[1].Type)
}

func TestSubmitReplyAdminPriorityChangeAudited(t *testing.T) {
	f := newReplyFixture(t, openTicket())

	target := highPriorityID
	_, err := f.svc.SubmitReply(context.Background(), admin(), 1, ReplyInput{
		Content:    "bumping priority",
		PriorityID: &target,
	})
	require.NoError(t, err)

	ticket, _ := f.tickets.GetByID(context.Background(), 1)
	assert.Equal(t, highPriorityID, ticket.PriorityID)

	require.Len(t, f.actions.actions, 1)
	assert.Equal(t, domain.ActionPriority, f.actions.actions[0].Kind)

	require.Len(t, f.dispatcher.published, 2)
	assert.Equal(t, events.EventTicketPriorityChanged, f.dispatcher.published[1].Type)
}

func TestSubmitReplySameValueTransitionIsNoop(t *testing.T) {
	f := newReplyFixture(t, openTicket())

	sameStatus := openStatusID
	samePriority := lowPriorityID
	_, err := f.svc.SubmitReply(context.Background(), admin(), 1, ReplyInput{
		Content:    "no actual change",
		StatusID:   &sameStatus,
		PriorityID: &samePriority,
	})
	require.NoError(t, err)

	assert.Empty(t, f.actions.actions)
	require.Len(t, f.dispatcher.published, 1)
	assert.Equal(t, events.EventTicketReplied, f.dispatcher.published[0].Type)
}

func TestSubmitReplyReopensClosedTicket(t *testing.T) {
	ticket := openTicket()
	ticket.StatusID = closedStatusID
	f := newReplyFixture(t, ticket)

	_, err := f.svc.SubmitReply(context.Background(), member(), 1, ReplyInput{
		Content: "still broken actually",
	})
	require.NoError(t, err)

	updated, _ := f.tickets.GetByID(context.Background(), 1)
	assert.Equal(t, openStatusID, updated.StatusID)

	// The implicit reopen is not audited.
	assert.Empty(t, f.actions.actions)

	require.Len(t, f.dispatcher.published, 1)
	payload, ok := f.dispatcher.published[0].Payload.(events.TicketRepliedPayload)
	require.True(t, ok)
	assert.True(t, payload.Reopened)
}

func TestSubmitReplyReopenIdempotentOnOpenTicket(t *testing.T) {
	f := newReplyFixture(t, openTicket())

	_, err := f.svc.SubmitReply(context.Background(), member(), 1, ReplyInput{Content: "checking in"})
	require.NoError(t, err)

	ticket, _ := f.tickets.GetByID(context.Background(), 1)
	assert.Equal(t, openStatusID, ticket.StatusID)

	payload := f.dispatcher.published[0].Payload.(events.TicketRepliedPayload)
	assert.False(t, payload.Reopened)
}

func TestSubmitReplyExplicitStatusSuppressesReopen(t *testing.T) {
	ticket := openTicket()
	ticket.StatusID = closedStatusID
	f := newReplyFixture(t, ticket)

	target := closedStatusID
	_, err := f.svc.SubmitReply(context.Background(), admin(), 1, ReplyInput{
		Content:  "keeping this closed",
		StatusID: &target,
	})
	require.NoError(t, err)

	updated, _ := f.tickets.GetByID(context.Background(), 1)
	assert.Equal(t, closedStatusID, updated.StatusID)

	payload := f.dispatcher.published[0].Payload.(events.TicketRepliedPayload)
	assert.False(t, payload.Reopened)
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	f := newReplyFixture(t, openTicket())
	ctx := context.Background()

	require.NoError(t, f.svc.Subscribe(ctx, member(), 1))
	subscribed, _ := f.subs.Exists(ctx, 1, 7)
	assert.True(t, subscribed)

	// Subscribing twice is absorbed.
	require.NoError(t, f.svc.Subscribe(ctx, member(), 1))

	require.NoError(t, f.svc.Unsubscribe(ctx, member(), 1))
	subscribed, _ = f.subs.Exists(ctx, 1, 7)
	assert.False(t, subscribed)
}

func TestSubscribeMissingTicket(t *testing.T) {
	f := newReplyFixture(t, openTicket())

	err := f.svc.Subscribe(context.Background(), member(), 42)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)
}
