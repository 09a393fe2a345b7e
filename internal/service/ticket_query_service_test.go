package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachary2562/recordables-ticketquest/internal/config"
	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/pkg/util"
)

func queryFixture(detailed []domain.TicketDetail) (*TicketQueryService, *memTicketRepo) {
	tickets := newMemTicketRepo()
	tickets.detailed = detailed
	for _, d := range detailed {
		tickets.tickets[d.ID] = d.Ticket
		if d.ID >= tickets.nextID {
			tickets.nextID = d.ID + 1
		}
	}
	cfg := config.HelpdeskConfig{PostsPerPage: 10, CSVDumpLimit: 1000}
	svc := NewTicketQueryService(tickets, newMemPostRepo(), nil, cfg)
	return svc, tickets
}

func details(n int) []domain.TicketDetail {
	out := make([]domain.TicketDetail, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.TicketDetail{
			Ticket: domain.Ticket{
				ID:        int64(i),
				Title:     "Ticket",
				StartedID: 3,
				DateAdded: time.Now(),
			},
			SubmitterName: "Alice",
			StatusLabel:   domain.StatusOpen,
		})
	}
	return out
}

func TestListTicketsDefaultsSort(t *testing.T) {
	svc, repo := queryFixture(details(3))

	page, err := svc.ListTickets(context.Background(), domain.Actor{ID: 3, IsAdmin: true}, TicketListRequest{})
	require.NoError(t, err)

	assert.Equal(t, "priority_desc", page.Sort)
	assert.Equal(t, "priority_desc", repo.lastQuery.Sort)
}

func TestListTicketsExplicitSortWins(t *testing.T) {
	svc, repo := queryFixture(details(3))

	page, err := svc.ListTickets(context.Background(), domain.Actor{ID: 3, IsAdmin: true}, TicketListRequest{
		Filter: TicketFilter{Sort: "date_asc"},
	})
	require.NoError(t, err)

	assert.Equal(t, "date_asc", page.Sort)
	assert.Equal(t, "date_asc", repo.lastQuery.Sort)
}

func TestListTicketsPaginates(t *testing.T) {
	svc, repo := queryFixture(details(25))

	page, err := svc.ListTickets(context.Background(), domain.Actor{ID: 3, IsAdmin: true}, TicketListRequest{Page: 3})
	require.NoError(t, err)

	assert.Equal(t, 25, page.Total)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 20, repo.lastQuery.Offset)
	assert.Equal(t, 10, repo.lastQuery.Limit)
	assert.Equal(t, 3, page.Paging.Page)
	assert.False(t, page.Paging.HasNext())
}

func TestListTicketsPageBeyondLastIsEmpty(t *testing.T) {
	svc, _ := queryFixture(details(5))

	page, err := svc.ListTickets(context.Background(), domain.Actor{ID: 3, IsAdmin: true}, TicketListRequest{Page: 9})
	require.NoError(t, err)

	assert.Empty(t, page.Items)
	assert.Equal(t, 5, page.Total)
}

func TestListTicketsInvalidPage(t *testing.T) {
	svc, _ := queryFixture(details(5))

	_, err := svc.ListTickets(context.Background(), domain.Actor{ID: 3, IsAdmin: true}, TicketListRequest{Page: -1})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", util.ToDomainError(err).Code)
}

func TestListTicketsScopesNonPrivilegedActors(t *testing.T) {
	svc, repo := queryFixture(details(3))

	_, err := svc.ListTickets(context.Background(), domain.Actor{ID: 3}, TicketListRequest{})
	require.NoError(t, err)

	require.NotNil(t, repo.lastQuery.OnlyStartedBy)
	assert.Equal(t, int64(3), *repo.lastQuery.OnlyStartedBy)
}

func TestListTicketsAdminSeesEverything(t *testing.T) {
	svc, repo := queryFixture(details(3))

	_, err := svc.ListTickets(context.Background(), domain.Actor{ID: 3, IsAdmin: true}, TicketListRequest{})
	require.NoError(t, err)

	assert.Nil(t, repo.lastQuery.OnlyStartedBy)
}

func TestListTicketsMyViewScopesAdminsToo(t *testing.T) {
	svc, repo := queryFixture(details(3))

	_, err := svc.ListTickets(context.Background(), domain.Actor{ID: 3, IsAdmin: true}, TicketListRequest{MyView: true})
	require.NoError(t, err)

	require.NotNil(t, repo.lastQuery.OnlyStartedBy)
	assert.Equal(t, int64(3), *repo.lastQuery.OnlyStartedBy)
}

func TestListTicketsSubscribedView(t *testing.T) {
	svc, repo := queryFixture(details(3))

	_, err := svc.ListTickets(context.Background(), domain.Actor{ID: 3, IsAdmin: true}, TicketListRequest{Subscribed: true})
	require.NoError(t, err)

	require.NotNil(t, repo.lastQuery.SubscriberID)
	assert.Equal(t, int64(3), *repo.lastQuery.SubscriberID)
}

func TestListTicketsCreatedIDWinsOverUserID(t *testing.T) {
	svc, repo := queryFixture(details(3))
	userID := int64(4)
	createdID := int64(5)

	_, err := svc.ListTickets(context.Background(), domain.Actor{ID: 3, IsAdmin: true}, TicketListRequest{
		Filter: TicketFilter{UserID: &userID, CreatedID: &createdID},
	})
	require.NoError(t, err)

	require.NotNil(t, repo.lastQuery.StartedID)
	assert.Equal(t, createdID, *repo.lastQuery.StartedID)
}

func TestListTicketsStoreFaultSurfaces(t *testing.T) {
	svc, repo := queryFixture(details(3))
	repo.countErr = util.NewStoreUnavailable(assert.AnError)

	_, err := svc.ListTickets(context.Background(), domain.Actor{ID: 3, IsAdmin: true}, TicketListRequest{})
	require.Error(t, err)
	assert.Equal(t, "STORE_UNAVAILABLE", util.ToDomainError(err).Code)
}

func TestListForExportBoundsRows(t *testing.T) {
	svc, repo := queryFixture(details(3))

	rows, err := svc.ListForExport(context.Background(), domain.Actor{ID: 3, IsAdmin: true}, TicketFilter{})
	require.NoError(t, err)

	assert.Len(t, rows, 3)
	assert.Equal(t, 1000, repo.lastQuery.Limit)
	assert.Equal(t, "priority_desc", repo.lastQuery.Sort)
}
