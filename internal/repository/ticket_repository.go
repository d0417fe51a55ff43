package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketflow/ticketflow/internal/authz"
	"github.com/ticketflow/ticketflow/internal/domain"
)

// TicketFilter narrows a listing inside an authorization scope. All fields
// combine with AND semantics.
type TicketFilter struct {
	Department *domain.Department
	Priority   *domain.TicketPriority
	Status     *domain.TicketStatus
	Search     *string
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListWithScope(ctx context.Context, scope authz.TicketScope, filter TicketFilter) ([]domain.Ticket, int, error)
	CountStats(ctx context.Context, scope authz.TicketScope) (domain.TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (subject, description, department, priority, status, category, subcategory, comment, attachments, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.Department,
		ticket.Priority,
		ticket.Status,
		ticket.Category,
		ticket.Subcategory,
		ticket.Comment,
		marshalAttachments(ticket.Attachments),
		ticket.CreatedBy,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET subject=$1, description=$2, department=$3, priority=$4, status=$5,
            category=$6, subcategory=$7, comment=$8, attachments=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.Department,
		ticket.Priority,
		ticket.Status,
		ticket.Category,
		ticket.Subcategory,
		ticket.Comment,
		marshalAttachments(ticket.Attachments),
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const ticketSelect = `
        SELECT t.id, t.subject, t.description, t.department, t.priority, t.status,
               t.category, t.subcategory, t.comment, t.attachments, t.created_by,
               t.created_at, t.updated_at,
               u.id, u.name, u.username, u.role, u.department
        FROM tickets t
        JOIN users u ON u.id = t.created_by`

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, ticketSelect+` WHERE t.id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &tickets[0], nil
}

// ListWithScope returns the page of tickets matching scope and filter plus
// the total count across all pages, ordered newest first with id as the
// tie-break.
func (r *ticketRepository) ListWithScope(ctx context.Context, scope authz.TicketScope, filter TicketFilter) ([]domain.Ticket, int, error) {
	if scope.Empty {
		return []domain.Ticket{}, 0, nil
	}

	clauses, args := scopeClauses(scope)

	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("t.department=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("t.priority=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(t.subject) LIKE %s OR LOWER(t.description) LIKE %s)", placeholder, placeholder))
	}

	where := strings.Join(clauses, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM tickets t WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.created_at DESC, t.id DESC LIMIT %d OFFSET %d`,
		ticketSelect, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

// CountStats aggregates the visible ticket set in a single pass per facet.
func (r *ticketRepository) CountStats(ctx context.Context, scope authz.TicketScope) (domain.TicketStats, error) {
	var stats domain.TicketStats
	if scope.Empty {
		return stats, nil
	}

	clauses, args := scopeClauses(scope)
	where := strings.Join(clauses, " AND ")

	query := fmt.Sprintf(`
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE t.status = 'OPEN'),
            COUNT(*) FILTER (WHERE t.status = 'IN_PROGRESS'),
            COUNT(*) FILTER (WHERE t.status = 'ON_HOLD'),
            COUNT(*) FILTER (WHERE t.status = 'CANCELLED'),
            COUNT(*) FILTER (WHERE t.status = 'CLOSED'),
            COUNT(*) FILTER (WHERE t.department = 'ADMIN'),
            COUNT(*) FILTER (WHERE t.department = 'FINANCE'),
            COUNT(*) FILTER (WHERE t.department = 'HR'),
            COUNT(*) FILTER (WHERE t.priority = 'LOW'),
            COUNT(*) FILTER (WHERE t.priority = 'MEDIUM'),
            COUNT(*) FILTER (WHERE t.priority = 'HIGH')
        FROM tickets t WHERE %s`, where)

	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&stats.Total,
		&stats.Open,
		&stats.InProgress,
		&stats.OnHold,
		&stats.Cancelled,
		&stats.Closed,
		&stats.ByDepartment.Admin,
		&stats.ByDepartment.Finance,
		&stats.ByDepartment.HR,
		&stats.ByPriority.Low,
		&stats.ByPriority.Medium,
		&stats.ByPriority.High,
	); err != nil {
		return domain.TicketStats{}, err
	}
	return stats, nil
}

func scopeClauses(scope authz.TicketScope) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if scope.CreatedBy != nil {
		args = append(args, *scope.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("t.created_by=$%d", len(args)))
	}
	if len(scope.Departments) > 0 {
		placeholders := make([]string, len(scope.Departments))
		for i, dept := range scope.Departments {
			args = append(args, dept)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.department IN (%s)", strings.Join(placeholders, ",")))
	}
	return clauses, args
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var (
			ticket  domain.Ticket
			author  domain.User
			rawAtts []byte
		)
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Subject,
			&ticket.Description,
			&ticket.Department,
			&ticket.Priority,
			&ticket.Status,
			&ticket.Category,
			&ticket.Subcategory,
			&ticket.Comment,
			&rawAtts,
			&ticket.CreatedBy,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&author.ID,
			&author.Name,
			&author.Username,
			&author.Role,
			&author.Department,
		); err != nil {
			return nil, err
		}
		ticket.Attachments = unmarshalAttachments(rawAtts)
		ticket.Author = &author
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func marshalAttachments(attachments []domain.Attachment) []byte {
	if attachments == nil {
		attachments = []domain.Attachment{}
	}
	raw, err := json.Marshal(attachments)
	if err != nil {
		return []byte("[]")
	}
	return raw
}

// unmarshalAttachments decodes the attachments column, treating malformed
// legacy values as an empty list rather than an error.
func unmarshalAttachments(raw []byte) []domain.Attachment {
	if len(raw) == 0 {
		return nil
	}
	var attachments []domain.Attachment
	if err := json.Unmarshal(raw, &attachments); err != nil {
		return nil
	}
	return attachments
}
