package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachary2562/recordables-ticketquest/internal/config"
	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/internal/events"
	"github.com/Zachary2562/recordables-ticketquest/internal/storage"
)

type commandFixture struct {
	svc        *TicketCommandService
	tickets    *memTicketRepo
	posts      *memPostRepo
	uploads    *memUploadRepo
	subs       *memSubscriptionRepo
	actions    *memActionRepo
	users      *memUserRepo
	store      *fakeAttachmentStore
	tx         *fakeTransactor
	dispatcher *recordingDispatcher
}

func newCommandFixture(t *testing.T) *commandFixture {
	t.Helper()

	f := &commandFixture{
		tickets: newMemTicketRepo(),
		posts:   newMemPostRepo(),
		uploads: newMemUploadRepo(),
		subs:    newMemSubscriptionRepo(),
		actions: newMemActionRepo(),
		users: newMemUserRepo(
			domain.User{ID: 7, Username: "alice", Name: "Alice", Email: "alice@example.com"},
			domain.User{ID: 9, Username: "bob", Name: "Bob", Email: "bob@example.com"},
		),
		store:      newFakeAttachmentStore("txt", "pdf"),
		tx:         &fakeTransactor{},
		dispatcher: &recordingDispatcher{},
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
		Attachments: f.store,
		Transactor:  f.tx,
		Dispatcher:  f.dispatcher,
	}
	categories := newMemCategoryRepo(domain.Category{ID: 1, DepartmentID: 1, Name: "Hardware"})
	cfg := config.HelpdeskConfig{
		TitleMinLength:   3,
		TitleMaxLength:   128,
		ContentMinLength: 5,
		ContentMaxLength: 5000,
	}
	f.svc = NewTicketCommandService(deps, categories, cfg)
	return f
}

func validCreateInput() CreateTicketInput {
	return CreateTicketInput{
		Title:      "Printer is on fire",
		Content:    "Smoke is coming out of the tray",
		CategoryID: 1,
		PriorityID: highPriorityID,
		Hours:      0.25,
	}
}

func TestCreateTicketHappyPath(t *testing.T) {
	f := newCommandFixture(t)

	ticket, err := f.svc.CreateTicket(context.Background(), member(), validCreateInput())
	require.NoError(t, err)
	require.NotNil(t, ticket)

	assert.Equal(t, openStatusID, ticket.StatusID, "new tickets start Open")
	assert.Equal(t, int64(7), ticket.StartedID)
	assert.InDelta(t, 0.25, ticket.Hours, 1e-9)
	assert.Equal(t, 1, f.tx.commits)

	subscribed, _ := f.subs.Exists(context.Background(), ticket.ID, 7)
	assert.True(t, subscribed, "author auto-subscribes")
	author, _ := f.users.GetByID(context.Background(), 7)
	assert.Equal(t, 1, author.TotalPosts)

	// Without attachments there is no synthetic first post.
	assert.Empty(t, f.posts.posts)

	require.Len(t, f.dispatcher.published, 1)
	event := f.dispatcher.published[0]
	assert.Equal(t, events.EventTicketCreated, event.Type)
	assert.Equal(t, ticket.ID, event.TicketID)
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, ticket.Title, payload.Title)
}

func TestCreateTicketTitleBounds(t *testing.T) {
	f := newCommandFixture(t)

	for _, title := range []string{"ab", strings.Repeat("x", 129), "   "} {
		input := validCreateInput()
		input.Title = title
		_, err := f.svc.CreateTicket(context.Background(), member(), input)
		assertCode(t, err, "VALIDATION_FAILED")
	}
	assert.Zero(t, f.tx.commits)
}

func TestCreateTicketUnknownCategory(t *testing.T) {
	f := newCommandFixture(t)

	input := validCreateInput()
	input.CategoryID = 42
	_, err := f.svc.CreateTicket(context.Background(), member(), input)
	assertCode(t, err, "NOT_FOUND")
	assert.Zero(t, f.tx.commits)
}

func TestCreateTicketRejectsDisallowedAttachment(t *testing.T) {
	f := newCommandFixture(t)

	input := validCreateInput()
	input.Attachments = []storage.NamedStream{{FileName: "payload.exe", Reader: strings.NewReader("MZ")}}
	_, err := f.svc.CreateTicket(context.Background(), member(), input)
	assertCode(t, err, "VALIDATION_FAILED")
	assert.Empty(t, f.store.saved)
}

func TestCreateTicketAttachmentsHangOffFirstPost(t *testing.T) {
	f := newCommandFixture(t)

	input := validCreateInput()
	input.Attachments = []storage.NamedStream{
		{FileName: "log.txt", Reader: strings.NewReader("boot log")},
		{FileName: "photo.pdf", Reader: strings.NewReader("scan")},
	}
	ticket, err := f.svc.CreateTicket(context.Background(), member(), input)
	require.NoError(t, err)

	require.Len(t, f.posts.posts, 1)
	first := f.posts.posts[0]
	assert.Equal(t, ticket.ID, first.TicketID)
	assert.Equal(t, ticket.Content, first.Content)

	files, _ := f.uploads.ListByPost(context.Background(), first.ID)
	require.Len(t, files, 2)
	assert.Equal(t, []string{"log.txt", "photo.pdf"}, f.store.saved)
}

func TestAssignTicketRequiresPrivilege(t *testing.T) {
	f := newCommandFixture(t)
	ticket, err := f.svc.CreateTicket(context.Background(), member(), validCreateInput())
	require.NoError(t, err)

	assignee := int64(9)
	assertCode(t, f.svc.AssignTicket(context.Background(), member(), ticket.ID, &assignee), "ACCESS_DENIED")

	stored, _ := f.tickets.GetByID(context.Background(), ticket.ID)
	assert.Nil(t, stored.AssignedID)
}

func TestAssignTicketAuditsAndSubscribesAssignee(t *testing.T) {
	f := newCommandFixture(t)
	ticket, err := f.svc.CreateTicket(context.Background(), member(), validCreateInput())
	require.NoError(t, err)

	assignee := int64(9)
	require.NoError(t, f.svc.AssignTicket(context.Background(), admin(), ticket.ID, &assignee))

	stored, _ := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NotNil(t, stored.AssignedID)
	assert.Equal(t, assignee, *stored.AssignedID)

	actions, _ := f.actions.ListByTicket(context.Background(), ticket.ID)
	require.Len(t, actions, 1)
	assert.Equal(t, domain.ActionAssigned, actions[0].Kind)
	assert.Equal(t, "Bob", actions[0].Data["assigned"])

	subscribed, _ := f.subs.Exists(context.Background(), ticket.ID, assignee)
	assert.True(t, subscribed)

	last := f.dispatcher.published[len(f.dispatcher.published)-1]
	assert.Equal(t, events.EventTicketAssigned, last.Type)
}

func TestAssignTicketClearAssignee(t *testing.T) {
	f := newCommandFixture(t)
	ticket, err := f.svc.CreateTicket(context.Background(), member(), validCreateInput())
	require.NoError(t, err)
	assignee := int64(9)
	require.NoError(t, f.svc.AssignTicket(context.Background(), admin(), ticket.ID, &assignee))

	require.NoError(t, f.svc.AssignTicket(context.Background(), admin(), ticket.ID, nil))

	stored, _ := f.tickets.GetByID(context.Background(), ticket.ID)
	assert.Nil(t, stored.AssignedID)
	actions, _ := f.actions.ListByTicket(context.Background(), ticket.ID)
	assert.Len(t, actions, 2)
}

func TestAssignTicketUnknownAssignee(t *testing.T) {
	f := newCommandFixture(t)
	ticket, err := f.svc.CreateTicket(context.Background(), member(), validCreateInput())
	require.NoError(t, err)

	missing := int64(1234)
	assertCode(t, f.svc.AssignTicket(context.Background(), admin(), ticket.ID, &missing), "NOT_FOUND")
}

func TestDeleteTicket(t *testing.T) {
	f := newCommandFixture(t)
	ticket, err := f.svc.CreateTicket(context.Background(), member(), validCreateInput())
	require.NoError(t, err)

	assertCode(t, f.svc.DeleteTicket(context.Background(), member(), ticket.ID), "ACCESS_DENIED")
	require.NoError(t, f.svc.DeleteTicket(context.Background(), admin(), ticket.ID))

	_, getErr := f.tickets.GetByID(context.Background(), ticket.ID)
	assert.Error(t, getErr)

	assertCode(t, f.svc.DeleteTicket(context.Background(), admin(), ticket.ID), "NOT_FOUND")
}
