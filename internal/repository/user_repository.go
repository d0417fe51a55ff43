package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketflow/ticketflow/internal/domain"
)

// UserRepository defines persistence access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, username, password_hash, name, role, department, managed_departments, is_manager, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, password_hash, name, role, department, managed_departments, is_manager)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Username,
		user.PasswordHash,
		user.Name,
		user.Role,
		user.Department,
		marshalDepartments(user.ManagedDepartments),
		user.IsManager,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET username=$1, password_hash=$2, name=$3, role=$4, department=$5,
            managed_departments=$6, is_manager=$7, updated_at=NOW()
        WHERE id=$8`

	cmd, err := r.pool.Exec(ctx, query,
		user.Username,
		user.PasswordHash,
		user.Name,
		user.Role,
		user.Department,
		marshalDepartments(user.ManagedDepartments),
		user.IsManager,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var (
		user    domain.User
		rawDeps []byte
	)
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.Department,
		&rawDeps,
		&user.IsManager,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.ManagedDepartments = unmarshalDepartments(rawDeps)
	return &user, nil
}

func marshalDepartments(deps []domain.Department) []byte {
	if deps == nil {
		deps = []domain.Department{}
	}
	raw, err := json.Marshal(deps)
	if err != nil {
		return []byte("[]")
	}
	return raw
}

// unmarshalDepartments decodes the managed_departments column. Legacy rows
// may hold malformed text; those decode to an empty set rather than failing
// the whole read.
func unmarshalDepartments(raw []byte) []domain.Department {
	if len(raw) == 0 {
		return nil
	}
	var deps []domain.Department
	if err := json.Unmarshal(raw, &deps); err != nil {
		return nil
	}
	return deps
}
