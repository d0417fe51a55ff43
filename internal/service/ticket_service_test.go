package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/authz"
	"github.com/ticketflow/ticketflow/internal/config"
	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/internal/events"
	"github.com/ticketflow/ticketflow/internal/repository"
	"github.com/ticketflow/ticketflow/internal/storage"
	apperrors "github.com/ticketflow/ticketflow/pkg/util/errorutil"
)

type mockTicketRepo struct {
	byID     map[int64]*domain.Ticket
	nextID   int64
	listOut  []domain.Ticket
	listTot  int
	statsOut domain.TicketStats
}

func newMockTicketRepo() *mockTicketRepo {
	return &mockTicketRepo{byID: map[int64]*domain.Ticket{}, nextID: 1}
}

func (m *mockTicketRepo) put(ticket *domain.Ticket) {
	cp := *ticket
	m.byID[ticket.ID] = &cp
}

func (m *mockTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = m.nextID
	m.nextID++
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	m.put(ticket)
	return nil
}

func (m *mockTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := m.byID[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	m.put(ticket)
	return nil
}

func (m *mockTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *ticket
	return &cp, nil
}

func (m *mockTicketRepo) ListWithScope(_ context.Context, _ authz.TicketScope, _ repository.TicketFilter) ([]domain.Ticket, int, error) {
	return m.listOut, m.listTot, nil
}

func (m *mockTicketRepo) CountStats(_ context.Context, _ authz.TicketScope) (domain.TicketStats, error) {
	return m.statsOut, nil
}

type mockStorage struct {
	storeCalls  int
	storeErr    error
	deletedKeys []string
	deleteErr   error
	signedErr   error
}

func (m *mockStorage) Store(_ context.Context, data []byte, fileName, _ string, _ int64) (storage.StoredObject, error) {
	m.storeCalls++
	if m.storeErr != nil {
		return storage.StoredObject{}, m.storeErr
	}
	return storage.StoredObject{
		Key:       "tickets/" + fileName,
		Location:  "https://bucket.example.com/tickets/" + fileName,
		SizeBytes: int64(len(data)),
	}, nil
}

func (m *mockStorage) Delete(_ context.Context, key string) error {
	m.deletedKeys = append(m.deletedKeys, key)
	return m.deleteErr
}

func (m *mockStorage) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if m.signedErr != nil {
		return "", m.signedErr
	}
	return "https://signed.example.com/" + key, nil
}

type mockDispatcher struct {
	published []events.Event
}

func (m *mockDispatcher) Publish(_ context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

func (m *mockDispatcher) Subscribe(events.EventType, events.EventHandler) {}
func (m *mockDispatcher) Close()                                         {}

type testDeps struct {
	repo       *mockTicketRepo
	storage    *mockStorage
	dispatcher *mockDispatcher
	service    *TicketService
}

func newTestService() testDeps {
	repo := newMockTicketRepo()
	store := &mockStorage{}
	dispatcher := &mockDispatcher{}
	svc := NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Storage:    store,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
		Upload:     config.UploadConfig{MaxFiles: 5, MaxFileSizeByte: 10 * 1024 * 1024},
	})
	return testDeps{repo: repo, storage: store, dispatcher: dispatcher, service: svc}
}

func testEmployee(id int64) *domain.User {
	dept := "Engineering"
	return &domain.User{ID: id, Username: fmt.Sprintf("user%d", id), Name: "Test User",
		Role: "Software Engineer", Department: &dept}
}

func testManager(id int64, depts ...domain.Department) *domain.User {
	return &domain.User{ID: id, Username: fmt.Sprintf("mgr%d", id), Name: "Test Manager",
		Role: "Department Manager", IsManager: true, ManagedDepartments: depts}
}

func TestCreateTicketMissingFields(t *testing.T) {
	deps := newTestService()

	_, err := deps.service.Create(context.Background(), testEmployee(1), CreateTicketInput{
		Subject: "need help",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
	if _, ok := domainErr.Details["description"]; !ok {
		t.Errorf("details should name the missing description field: %v", domainErr.Details)
	}
	if len(deps.dispatcher.published) != 0 {
		t.Error("no event should be published for a rejected create")
	}
}

func TestCreateTicketInvalidDepartment(t *testing.T) {
	deps := newTestService()

	_, err := deps.service.Create(context.Background(), testEmployee(1), CreateTicketInput{
		Subject:     "need help",
		Description: "something broke",
		Department:  "LEGAL",
		Priority:    domain.TicketPriorityLow,
	})
	if err == nil {
		t.Fatal("expected validation error for unknown department")
	}
}

func TestCreateTicket(t *testing.T) {
	deps := newTestService()
	category := "Leave & Attendance"
	subcategory := "Leave Balance Query"

	ticket, err := deps.service.Create(context.Background(), testEmployee(1), CreateTicketInput{
		Subject:     "need help",
		Description: "please check my balance",
		Department:  domain.DepartmentHR,
		Priority:    domain.TicketPriorityMedium,
		Category:    &category,
		Subcategory: &subcategory,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if want := "[Leave & Attendance - Leave Balance Query] need help"; ticket.Subject != want {
		t.Errorf("subject = %q, want %q", ticket.Subject, want)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Errorf("status = %s, want OPEN", ticket.Status)
	}
	if ticket.CreatedBy != 1 {
		t.Errorf("createdBy = %d, want 1", ticket.CreatedBy)
	}

	if len(deps.dispatcher.published) != 1 {
		t.Fatalf("published %d events, want 1", len(deps.dispatcher.published))
	}
	event := deps.dispatcher.published[0]
	if event.Type != events.EventTicketCreated {
		t.Errorf("event type = %s, want %s", event.Type, events.EventTicketCreated)
	}
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		t.Fatalf("payload type = %T", event.Payload)
	}
	if payload.Ticket.ID != ticket.ID || payload.Actor.ID != 1 {
		t.Errorf("payload = %+v", payload)
	}
}

func TestUpdateTicketNotFound(t *testing.T) {
	deps := newTestService()

	_, err := deps.service.Update(context.Background(), testEmployee(1), 42, UpdateTicketInput{})
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestUpdateTicketForbidden(t *testing.T) {
	deps := newTestService()
	deps.repo.put(&domain.Ticket{ID: 10, CreatedBy: 1, Department: domain.DepartmentHR,
		Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow})

	_, err := deps.service.Update(context.Background(), testEmployee(2), 10, UpdateTicketInput{})
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	if domainErr.Message != "Insufficient permissions" {
		t.Errorf("message = %q", domainErr.Message)
	}
}

func TestUpdateReopenedStoredAsOpen(t *testing.T) {
	deps := newTestService()
	deps.repo.put(&domain.Ticket{ID: 10, CreatedBy: 1, Department: domain.DepartmentHR,
		Status: domain.TicketStatusClosed, Priority: domain.TicketPriorityLow})

	reopened := domain.TicketStatusReopened
	ticket, err := deps.service.Update(context.Background(), testManager(9, domain.DepartmentHR), 10,
		UpdateTicketInput{Status: &reopened})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Errorf("status = %s, want OPEN (RE_OPEN is never persisted)", ticket.Status)
	}
}

func TestUpdateNotificationGating(t *testing.T) {
	deps := newTestService()
	deps.repo.put(&domain.Ticket{ID: 10, CreatedBy: 1, Department: domain.DepartmentHR,
		Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow})
	mgr := testManager(9, domain.DepartmentHR)

	// A category-only change is not notifiable.
	category := "Facilities"
	if _, err := deps.service.Update(context.Background(), mgr, 10, UpdateTicketInput{Category: &category}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(deps.dispatcher.published) != 0 {
		t.Fatalf("category change published %d events, want 0", len(deps.dispatcher.published))
	}

	priority := domain.TicketPriorityHigh
	if _, err := deps.service.Update(context.Background(), mgr, 10, UpdateTicketInput{Priority: &priority}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(deps.dispatcher.published) != 1 {
		t.Fatalf("priority change published %d events, want 1", len(deps.dispatcher.published))
	}
	payload, ok := deps.dispatcher.published[0].Payload.(events.TicketUpdatedPayload)
	if !ok {
		t.Fatalf("payload type = %T", deps.dispatcher.published[0].Payload)
	}
	if payload.Before.Priority != domain.TicketPriorityLow || payload.After.Priority != domain.TicketPriorityHigh {
		t.Errorf("payload snapshots = before %s, after %s", payload.Before.Priority, payload.After.Priority)
	}
}

func TestGetTicketVisibility(t *testing.T) {
	deps := newTestService()
	deps.repo.put(&domain.Ticket{ID: 10, CreatedBy: 1, Department: domain.DepartmentHR,
		Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow})

	if _, err := deps.service.Get(context.Background(), testEmployee(1), 10); err != nil {
		t.Fatalf("creator Get failed: %v", err)
	}

	_, err := deps.service.Get(context.Background(), testEmployee(2), 10)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN for non-creator, got %v", err)
	}

	if _, err := deps.service.Get(context.Background(), testEmployee(1), 999); !apperrors.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND for missing ticket, got %v", err)
	}
}

func TestListPagination(t *testing.T) {
	deps := newTestService()
	deps.repo.listOut = make([]domain.Ticket, 10)
	deps.repo.listTot = 25

	_, info, err := deps.service.List(context.Background(), testEmployee(1), ListTicketsInput{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := PageInfo{CurrentPage: 2, TotalPages: 3, TotalCount: 25, Limit: 10, HasNextPage: true, HasPrevPage: true}
	if info != want {
		t.Errorf("PageInfo = %+v, want %+v", info, want)
	}
}

func TestListDefaultsAndValidation(t *testing.T) {
	deps := newTestService()
	deps.repo.listTot = 0

	_, info, err := deps.service.List(context.Background(), testEmployee(1), ListTicketsInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if info.CurrentPage != 1 || info.Limit != 10 || info.TotalPages != 0 || info.HasNextPage || info.HasPrevPage {
		t.Errorf("default PageInfo = %+v", info)
	}

	bad := domain.TicketStatus("WAITING")
	if _, _, err := deps.service.List(context.Background(), testEmployee(1), ListTicketsInput{Status: &bad}); err == nil {
		t.Error("expected validation error for unknown status filter")
	}

	// The RE_OPEN alias is accepted as a filter value.
	reopened := domain.TicketStatusReopened
	if _, _, err := deps.service.List(context.Background(), testEmployee(1), ListTicketsInput{Status: &reopened}); err != nil {
		t.Errorf("RE_OPEN filter rejected: %v", err)
	}
}

func TestStatsWithoutCache(t *testing.T) {
	deps := newTestService()
	deps.repo.statsOut = domain.TicketStats{Total: 4, Open: 2, Closed: 2}

	stats, err := deps.service.Stats(context.Background(), testManager(9, domain.DepartmentHR), false)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 4 || stats.Open != 2 || stats.Closed != 2 {
		t.Errorf("stats = %+v", stats)
	}
}
