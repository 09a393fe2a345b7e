package service

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Zachary2562/recordables-ticketquest/internal/domain"
	"github.com/Zachary2562/recordables-ticketquest/internal/events"
	"github.com/Zachary2562/recordables-ticketquest/internal/repository"
	"github.com/Zachary2562/recordables-ticketquest/internal/storage"
)

type memTicketRepo struct {
	tickets   map[int64]domain.Ticket
	nextID    int64
	detailed  []domain.TicketDetail
	lastQuery repository.TicketQuery
	listErr   error
	countErr  error
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: map[int64]domain.Ticket{}, nextID: 1}
}

func (m *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = m.nextID
	m.nextID++
	m.tickets[ticket.ID] = *ticket
	return nil
}

func (m *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := m.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.tickets[ticket.ID] = *ticket
	return nil
}

func (m *memTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := ticket
	return &copied, nil
}

func (m *memTicketRepo) GetDetailByID(_ context.Context, id int64) (*domain.TicketDetail, error) {
	for i := range m.detailed {
		if m.detailed[i].ID == id {
			copied := m.detailed[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memTicketRepo) ListDetailed(_ context.Context, query repository.TicketQuery) ([]domain.TicketDetail, error) {
	m.lastQuery = query
	if m.listErr != nil {
		return nil, m.listErr
	}
	start := query.Offset
	if start > len(m.detailed) {
		start = len(m.detailed)
	}
	end := len(m.detailed)
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}
	return append([]domain.TicketDetail{}, m.detailed[start:end]...), nil
}

func (m *memTicketRepo) CountDetailed(_ context.Context, query repository.TicketQuery) (int, error) {
	m.lastQuery = query
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.detailed), nil
}

func (m *memTicketRepo) Delete(_ context.Context, id int64) error {
	delete(m.tickets, id)
	return nil
}

func (m *memTicketRepo) CountByPriority(_ context.Context, priorityID int64) (int, error) {
	count := 0
	for _, t := range m.tickets {
		if t.PriorityID == priorityID {
			count++
		}
	}
	return count, nil
}

func (m *memTicketRepo) CountByStatus(_ context.Context, statusID int64) (int, error) {
	count := 0
	for _, t := range m.tickets {
		if t.StatusID == statusID {
			count++
		}
	}
	return count, nil
}

func (m *memTicketRepo) CountByCategory(_ context.Context, categoryID int64) (int, error) {
	count := 0
	for _, t := range m.tickets {
		if t.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

type memPostRepo struct {
	posts  []domain.Post
	nextID int64
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{nextID: 1}
}

func (m *memPostRepo) Create(_ context.Context, post *domain.Post) error {
	post.ID = m.nextID
	m.nextID++
	m.posts = append(m.posts, *post)
	return nil
}

func (m *memPostRepo) GetByID(_ context.Context, id int64) (*domain.Post, error) {
	for i := range m.posts {
		if m.posts[i].ID == id {
			copied := m.posts[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memPostRepo) ListByTicket(_ context.Context, ticketID int64, limit, offset int) ([]domain.Post, error) {
	var matched []domain.Post
	for _, p := range m.posts {
		if p.TicketID == ticketID {
			matched = append(matched, p)
		}
	}
	if offset > len(matched) {
		offset = len(matched)
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], nil
}

func (m *memPostRepo) CountByTicket(_ context.Context, ticketID int64) (int, error) {
	count := 0
	for _, p := range m.posts {
		if p.TicketID == ticketID {
			count++
		}
	}
	return count, nil
}

type memUploadRepo struct {
	uploads []domain.Upload
	nextID  int64
}

func newMemUploadRepo() *memUploadRepo {
	return &memUploadRepo{nextID: 1}
}

func (m *memUploadRepo) Create(_ context.Context, upload *domain.Upload) error {
	upload.ID = m.nextID
	m.nextID++
	m.uploads = append(m.uploads, *upload)
	return nil
}

func (m *memUploadRepo) GetByStorageKey(_ context.Context, storageKey string) (*domain.Upload, error) {
	for _, u := range m.uploads {
		if u.StorageKey == storageKey {
			copied := u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUploadRepo) ListByPost(_ context.Context, postID int64) ([]domain.Upload, error) {
	var matched []domain.Upload
	for _, u := range m.uploads {
		if u.PostID == postID {
			matched = append(matched, u)
		}
	}
	return matched, nil
}

type memSubscriptionRepo struct {
	subs map[[2]int64]bool
}

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{subs: map[[2]int64]bool{}}
}

func (m *memSubscriptionRepo) Create(_ context.Context, sub *domain.Subscription) error {
	m.subs[[2]int64{sub.TicketID, sub.UserID}] = true
	return nil
}

func (m *memSubscriptionRepo) Delete(_ context.Context, ticketID, userID int64) error {
	delete(m.subs, [2]int64{ticketID, userID})
	return nil
}

func (m *memSubscriptionRepo) Exists(_ context.Context, ticketID, userID int64) (bool, error) {
	return m.subs[[2]int64{ticketID, userID}], nil
}

func (m *memSubscriptionRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Subscription, error) {
	var matched []domain.Subscription
	for key := range m.subs {
		if key[0] == ticketID {
			matched = append(matched, domain.Subscription{TicketID: key[0], UserID: key[1]})
		}
	}
	return matched, nil
}

type memActionRepo struct {
	actions []domain.TicketAction
	nextID  int64
}

func newMemActionRepo() *memActionRepo {
	return &memActionRepo{nextID: 1}
}

func (m *memActionRepo) Create(_ context.Context, action *domain.TicketAction) error {
	action.ID = m.nextID
	m.nextID++
	m.actions = append(m.actions, *action)
	return nil
}

func (m *memActionRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.TicketAction, error) {
	var matched []domain.TicketAction
	for _, a := range m.actions {
		if a.TicketID == ticketID {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

type memUserRepo struct {
	users map[int64]domain.User
}

func newMemUserRepo(users ...domain.User) *memUserRepo {
	repo := &memUserRepo{users: map[int64]domain.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (m *memUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = int64(len(m.users) + 1)
	m.users[user.ID] = *user
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := user
	return &copied, nil
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			copied := u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) List(_ context.Context, _, _ int) ([]domain.User, error) {
	var out []domain.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUserRepo) IncrementTotalPosts(_ context.Context, id int64) error {
	user, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.TotalPosts++
	m.users[id] = user
	return nil
}

func (m *memUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	user, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	m.users[id] = user
	return nil
}

func (m *memUserRepo) EmailsByIDs(_ context.Context, ids []int64) (map[int64]string, error) {
	out := map[int64]string{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = u.Email
		}
	}
	return out, nil
}

type memStatusRepo struct {
	statuses map[int64]domain.Status
}

func newMemStatusRepo(statuses ...domain.Status) *memStatusRepo {
	repo := &memStatusRepo{statuses: map[int64]domain.Status{}}
	for _, s := range statuses {
		repo.statuses[s.ID] = s
	}
	return repo
}

func (m *memStatusRepo) Create(_ context.Context, status *domain.Status) error {
	status.ID = int64(len(m.statuses) + 1)
	m.statuses[status.ID] = *status
	return nil
}

func (m *memStatusRepo) Update(_ context.Context, status *domain.Status) error {
	if _, ok := m.statuses[status.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.statuses[status.ID] = *status
	return nil
}

func (m *memStatusRepo) Delete(_ context.Context, id int64) error {
	delete(m.statuses, id)
	return nil
}

func (m *memStatusRepo) GetByID(_ context.Context, id int64) (*domain.Status, error) {
	status, ok := m.statuses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := status
	return &copied, nil
}

func (m *memStatusRepo) GetByName(_ context.Context, name string) (*domain.Status, error) {
	for _, s := range m.statuses {
		if s.Name == name {
			copied := s
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memStatusRepo) List(_ context.Context) ([]domain.Status, error) {
	var out []domain.Status
	for _, s := range m.statuses {
		out = append(out, s)
	}
	return out, nil
}

type memPriorityRepo struct {
	priorities map[int64]domain.Priority
}

func newMemPriorityRepo(priorities ...domain.Priority) *memPriorityRepo {
	repo := &memPriorityRepo{priorities: map[int64]domain.Priority{}}
	for _, p := range priorities {
		repo.priorities[p.ID] = p
	}
	return repo
}

func (m *memPriorityRepo) Create(_ context.Context, priority *domain.Priority) error {
	priority.ID = int64(len(m.priorities) + 1)
	m.priorities[priority.ID] = *priority
	return nil
}

func (m *memPriorityRepo) Update(_ context.Context, priority *domain.Priority) error {
	if _, ok := m.priorities[priority.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.priorities[priority.ID] = *priority
	return nil
}

func (m *memPriorityRepo) Delete(_ context.Context, id int64) error {
	delete(m.priorities, id)
	return nil
}

func (m *memPriorityRepo) GetByID(_ context.Context, id int64) (*domain.Priority, error) {
	priority, ok := m.priorities[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := priority
	return &copied, nil
}

func (m *memPriorityRepo) List(_ context.Context) ([]domain.Priority, error) {
	var out []domain.Priority
	for _, p := range m.priorities {
		out = append(out, p)
	}
	return out, nil
}

type memDepartmentRepo struct {
	departments map[int64]domain.Department
	nextID      int64
	categories  *memCategoryRepo
}

func newMemDepartmentRepo(departments ...domain.Department) *memDepartmentRepo {
	repo := &memDepartmentRepo{departments: map[int64]domain.Department{}, nextID: 1}
	for _, d := range departments {
		repo.departments[d.ID] = d
		if d.ID >= repo.nextID {
			repo.nextID = d.ID + 1
		}
	}
	return repo
}

func (m *memDepartmentRepo) Create(_ context.Context, dept *domain.Department) error {
	dept.ID = m.nextID
	m.nextID++
	m.departments[dept.ID] = *dept
	return nil
}

func (m *memDepartmentRepo) Update(_ context.Context, dept *domain.Department) error {
	if _, ok := m.departments[dept.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.departments[dept.ID] = *dept
	return nil
}

func (m *memDepartmentRepo) Delete(_ context.Context, id int64) error {
	delete(m.departments, id)
	return nil
}

func (m *memDepartmentRepo) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	dept, ok := m.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := dept
	return &copied, nil
}

func (m *memDepartmentRepo) List(_ context.Context) ([]domain.Department, error) {
	var out []domain.Department
	for _, d := range m.departments {
		out = append(out, d)
	}
	return out, nil
}

func (m *memDepartmentRepo) CountCategories(_ context.Context, id int64) (int, error) {
	if m.categories == nil {
		return 0, nil
	}
	count := 0
	for _, c := range m.categories.categories {
		if c.DepartmentID == id {
			count++
		}
	}
	return count, nil
}

type memCategoryRepo struct {
	categories map[int64]domain.Category
	nextID     int64
}

func newMemCategoryRepo(categories ...domain.Category) *memCategoryRepo {
	repo := &memCategoryRepo{categories: map[int64]domain.Category{}, nextID: 1}
	for _, c := range categories {
		repo.categories[c.ID] = c
		if c.ID >= repo.nextID {
			repo.nextID = c.ID + 1
		}
	}
	return repo
}

func (m *memCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	category.ID = m.nextID
	m.nextID++
	m.categories[category.ID] = *category
	return nil
}

func (m *memCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	if _, ok := m.categories[category.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.categories[category.ID] = *category
	return nil
}

func (m *memCategoryRepo) Delete(_ context.Context, id int64) error {
	delete(m.categories, id)
	return nil
}

func (m *memCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	category, ok := m.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := category
	return &copied, nil
}

func (m *memCategoryRepo) ListByDepartment(_ context.Context, departmentID int64) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range m.categories {
		if c.DepartmentID == departmentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

type fakeAttachmentStore struct {
	extensions map[string]struct{}
	saved      []string
}

func newFakeAttachmentStore(exts ...string) *fakeAttachmentStore {
	store := &fakeAttachmentStore{extensions: map[string]struct{}{}}
	for _, ext := range exts {
		store.extensions[ext] = struct{}{}
	}
	return store
}

func (s *fakeAttachmentStore) AllowedExtension(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	_, ok := s.extensions[ext]
	return ok
}

func (s *fakeAttachmentStore) Save(files []storage.NamedStream) ([]storage.StoredFile, error) {
	stored := make([]storage.StoredFile, 0, len(files))
	for _, file := range files {
		_, _ = io.ReadAll(file.Reader)
		s.saved = append(s.saved, file.FileName)
		stored = append(stored, storage.StoredFile{FileName: file.FileName, StorageKey: "key-" + file.FileName})
	}
	return stored, nil
}

func (s *fakeAttachmentStore) Open(string) (*os.File, error) { return nil, os.ErrNotExist }
func (s *fakeAttachmentStore) Delete(string) error           { return nil }

type fakeTransactor struct {
	commits int
	fail    error
}

func (t *fakeTransactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.fail != nil {
		return t.fail
	}
	if err := fn(ctx); err != nil {
		return err
	}
	t.commits++
	return nil
}

type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}
