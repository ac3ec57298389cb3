package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/okta-import/internal/domain"
)

// AdminRepository defines persistence access for administrators.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	GetByID(ctx context.Context, id string) (*domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
}

type adminRepository struct {
	db DBTX
}

// NewAdminRepository returns a Postgres-backed implementation.
func NewAdminRepository(db DBTX) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	const query = `
        INSERT INTO admins (name, email, password_hash, role, active_flag)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		admin.Name,
		admin.Email,
		admin.PasswordHash,
		admin.Role,
		admin.Active,
	).Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
}

func (r *adminRepository) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	const query = `
        SELECT id, name, email, password_hash, role, active_flag, created_at, updated_at
        FROM admins WHERE id=$1`

	return r.scanOne(ctx, query, id)
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	const query = `
        SELECT id, name, email, password_hash, role, active_flag, created_at, updated_at
        FROM admins WHERE email=$1`

	return r.scanOne(ctx, query, email)
}

func (r *adminRepository) scanOne(ctx context.Context, query string, arg any) (*domain.Admin, error) {
	var admin domain.Admin
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&admin.ID,
		&admin.Name,
		&admin.Email,
		&admin.PasswordHash,
		&admin.Role,
		&admin.Active,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &admin, nil
}

type memoryAdminRepository struct {
	mu     sync.RWMutex
	admins map[string]domain.Admin
	now    func() time.Time
}

// NewMemoryAdminRepository keeps admins in process memory. It backs the
// service when no database is configured.
func NewMemoryAdminRepository() AdminRepository {
	return &memoryAdminRepository{admins: make(map[string]domain.Admin), now: time.Now}
}

func (r *memoryAdminRepository) Create(_ context.Context, admin *domain.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.admins {
		if existing.Email == admin.Email {
			return fmt.Errorf("admin %s already exists", admin.Email)
		}
	}
	admin.ID = uuid.NewString()
	admin.CreatedAt = r.now()
	admin.UpdatedAt = admin.CreatedAt
	r.admins[admin.ID] = *admin
	return nil
}

func (r *memoryAdminRepository) GetByID(_ context.Context, id string) (*domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	admin, ok := r.admins[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &admin, nil
}

func (r *memoryAdminRepository) GetByEmail(_ context.Context, email string) (*domain.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, admin := range r.admins {
		if admin.Email == email {
			out := admin
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}
