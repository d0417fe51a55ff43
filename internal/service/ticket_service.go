package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/authz"
	"github.com/ticketflow/ticketflow/internal/config"
	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/internal/events"
	"github.com/ticketflow/ticketflow/internal/repository"
	"github.com/ticketflow/ticketflow/internal/storage"
	apperrors "github.com/ticketflow/ticketflow/pkg/util/errorutil"
)

const statsVersionKey = "tickets:stats:ver"

// TicketService coordinates ticket workflows: creation, updates, listing,
// attachment handling and aggregation.
type TicketService struct {
	tickets      repository.TicketRepository
	storage      storage.ObjectStorage
	cache        *redis.Client
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	upload       config.UploadConfig
	statsTTL     time.Duration
	signedURLTTL time.Duration
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Storage    storage.ObjectStorage
	Cache      *redis.Client
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Upload     config.UploadConfig
	StatsTTL   time.Duration
	SignedTTL  time.Duration
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	if deps.Upload.MaxFiles <= 0 {
		deps.Upload.MaxFiles = 5
	}
	if deps.Upload.MaxFileSizeByte <= 0 {
		deps.Upload.MaxFileSizeByte = 10 * 1024 * 1024
	}
	if deps.StatsTTL <= 0 {
		deps.StatsTTL = 30 * time.Second
	}
	if deps.SignedTTL <= 0 {
		deps.SignedTTL = time.Hour
	}
	return &TicketService{
		tickets:      deps.TicketRepo,
		storage:      deps.Storage,
		cache:        deps.Cache,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
		upload:       deps.Upload,
		statsTTL:     deps.StatsTTL,
		signedURLTTL: deps.SignedTTL,
	}
}

// CreateTicketInput describes ticket creation payload. Files carry
// descriptors already persisted through UploadAttachments.
type CreateTicketInput struct {
	Subject     string
	Description string
	Department  domain.Department
	Priority    domain.TicketPriority
	Category    *string
	Subcategory *string
	Comment     *string
	Files       []domain.Attachment
}

// UpdateTicketInput is a partial patch; nil fields are left untouched.
type UpdateTicketInput struct {
	Subject       *string
	Description   *string
	Department    *domain.Department
	Priority      *domain.TicketPriority
	Status        *domain.TicketStatus
	Category      *string
	Subcategory   *string
	Comment       *string
	FilesToDelete []string
	NewFiles      []domain.Attachment
}

// ListTicketsInput captures listing filters and pagination.
type ListTicketsInput struct {
	Department *domain.Department
	Priority   *domain.TicketPriority
	Status     *domain.TicketStatus
	Search     *string
	MyTickets  bool
	Page       int
	Limit      int
}

// PageInfo reports offset pagination metadata.
type PageInfo struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	Limit       int  `json:"limit"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// Create validates and persists a new ticket, then dispatches the department
// notification after the row is committed.
func (s *TicketService) Create(ctx context.Context, user *domain.User, input CreateTicketInput) (*domain.Ticket, error) {
	missing := map[string]any{}
	if strings.TrimSpace(input.Subject) == "" {
		missing["subject"] = "required"
	}
	if strings.TrimSpace(input.Description) == "" {
		missing["description"] = "required"
	}
	if input.Department == "" {
		missing["department"] = "required"
	}
	if input.Priority == "" {
		missing["priority"] = "required"
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("Missing required fields", missing)
	}
	if !domain.ValidDepartment(input.Department) {
		return nil, apperrors.NewValidationError("invalid department", map[string]any{"department": input.Department})
	}
	if !domain.ValidPriority(input.Priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
	}

	ticket := &domain.Ticket{
		Subject:     StoredSubject(input.Subject, input.Category, input.Subcategory),
		Description: strings.TrimSpace(input.Description),
		Department:  input.Department,
		Priority:    input.Priority,
		Status:      domain.TicketStatusOpen,
		Category:    input.Category,
		Subcategory: input.Subcategory,
		Comment:     input.Comment,
		Attachments: input.Files,
		CreatedBy:   user.ID,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	created, err := s.tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	s.bumpStatsVersion(ctx)
	s.publish(events.Event{
		Type:     events.EventTicketCreated,
		TicketID: created.ID,
		Payload:  events.TicketCreatedPayload{Ticket: *created, Actor: *user},
	})
	return created, nil
}

// notifiableFields are the scalar fields whose change triggers an update
// notification.
func hasNotifiableChange(before, after *domain.Ticket) bool {
	return before.Status != after.Status ||
		before.Priority != after.Priority ||
		before.Department != after.Department ||
		before.Subject != after.Subject ||
		before.Description != after.Description
}

// Update applies a partial patch. Existence is checked before permission;
// attachment reconciliation runs before the scalar patch; a notification is
// dispatched only when a notifiable field actually changed.
func (s *TicketService) Update(ctx context.Context, user *domain.User, ticketID int64, input UpdateTicketInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if !authz.CanEdit(user, ticket) {
		return nil, apperrors.NewForbidden("Insufficient permissions")
	}

	before := *ticket

	if len(input.FilesToDelete) > 0 || len(input.NewFiles) > 0 {
		ticket.Attachments = s.reconcileAttachments(ctx, ticket.Attachments, input.FilesToDelete, input.NewFiles)
	}

	if input.Status != nil {
		status := domain.NormalizeStatus(*input.Status)
		if !domain.ValidStatus(status) {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
		}
		ticket.Status = status
	}
	if input.Priority != nil {
		if !domain.ValidPriority(*input.Priority) {
			return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
		}
		ticket.Priority = *input.Priority
	}
	if input.Department != nil {
		if !domain.ValidDepartment(*input.Department) {
			return nil, apperrors.NewValidationError("invalid department", map[string]any{"department": *input.Department})
		}
		ticket.Department = *input.Department
	}
	if input.Subject != nil {
		ticket.Subject = *input.Subject
	}
	if input.Description != nil {
		ticket.Description = *input.Description
	}
	if input.Category != nil {
		ticket.Category = input.Category
	}
	if input.Subcategory != nil {
		ticket.Subcategory = input.Subcategory
	}
	if input.Comment != nil {
		ticket.Comment = input.Comment
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	updated, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	s.bumpStatsVersion(ctx)
	if hasNotifiableChange(&before, updated) {
		s.publish(events.Event{
			Type:     events.EventTicketUpdated,
			TicketID: updated.ID,
			Payload:  events.TicketUpdatedPayload{Before: before, After: *updated, Actor: *user},
		})
	}
	return updated, nil
}

// Get fetches one ticket, enforcing visibility. The permission message is
// generic so a caller cannot probe which departments exist.
func (s *TicketService) Get(ctx context.Context, user *domain.User, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if !authz.CanView(user, ticket) {
		return nil, apperrors.NewForbidden("Insufficient permissions")
	}
	return ticket, nil
}

// List returns the page of tickets visible to user, newest first.
func (s *TicketService) List(ctx context.Context, user *domain.User, input ListTicketsInput) ([]domain.Ticket, PageInfo, error) {
	if input.Department != nil && !domain.ValidDepartment(*input.Department) {
		return nil, PageInfo{}, apperrors.NewValidationError("invalid department", map[string]any{"department": *input.Department})
	}
	if input.Priority != nil && !domain.ValidPriority(*input.Priority) {
		return nil, PageInfo{}, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
	}
	if input.Status != nil {
		status := domain.NormalizeStatus(*input.Status)
		if !domain.ValidStatus(status) {
			return nil, PageInfo{}, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
		}
		input.Status = &status
	}

	page := input.Page
	if page <= 0 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	scope := authz.Scope(user, input.MyTickets)
	filter := repository.TicketFilter{
		Department: input.Department,
		Priority:   input.Priority,
		Status:     input.Status,
		Search:     input.Search,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}

	tickets, total, err := s.tickets.ListWithScope(ctx, scope, filter)
	if err != nil {
		return nil, PageInfo{}, err
	}

	totalPages := (total + limit - 1) / limit
	info := PageInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		Limit:       limit,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
	return tickets, info, nil
}

// Stats aggregates counts over the same visible set as List, cached briefly
// in Redis. Cache failures degrade to a direct query.
func (s *TicketService) Stats(ctx context.Context, user *domain.User, myTicketsOnly bool) (domain.TicketStats, error) {
	scope := authz.Scope(user, myTicketsOnly)

	cacheKey := s.statsCacheKey(ctx, scope)
	if s.cache != nil && cacheKey != "" {
		if raw, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var stats domain.TicketStats
			if err := json.Unmarshal(raw, &stats); err == nil {
				return stats, nil
			}
		}
	}

	stats, err := s.tickets.CountStats(ctx, scope)
	if err != nil {
		return domain.TicketStats{}, err
	}

	if s.cache != nil && cacheKey != "" {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, s.statsTTL).Err(); err != nil {
				s.logger.Warn("stats cache write failed", zap.Error(err))
			}
		}
	}
	return stats, nil
}

// statsCacheKey derives a cache key from the scope plus a version counter
// bumped on every mutation, so stale entries age out without explicit
// invalidation. An empty key disables caching for this call.
func (s *TicketService) statsCacheKey(ctx context.Context, scope authz.TicketScope) string {
	if s.cache == nil {
		return ""
	}
	version, err := s.cache.Get(ctx, statsVersionKey).Int64()
	if err != nil && err != redis.Nil {
		return ""
	}

	var sig strings.Builder
	if scope.Empty {
		sig.WriteString("empty")
	}
	if scope.CreatedBy != nil {
		fmt.Fprintf(&sig, "u%d", *scope.CreatedBy)
	}
	if len(scope.Departments) > 0 {
		depts := make([]string, len(scope.Departments))
		for i, d := range scope.Departments {
			depts[i] = string(d)
		}
		sort.Strings(depts)
		sig.WriteString("d" + strings.Join(depts, ","))
	}
	return fmt.Sprintf("tickets:stats:v%d:%s", version, sig.String())
}

func (s *TicketService) bumpStatsVersion(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, statsVersionKey).Err(); err != nil {
		s.logger.Warn("stats version bump failed", zap.Error(err))
	}
}

func (s *TicketService) publish(event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(context.Background(), event)
}
