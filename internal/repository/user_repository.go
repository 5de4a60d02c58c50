package repository

import (
	"context"

	"go-ticketing-platform/internal/model"
	apperrors "go-ticketing-platform/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	FindByID(ctx context.Context, id int) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindOrganizerByUserID 明確的主辦方查詢，
	// 使用者不是主辦方時回傳 ErrNotAnOrganizer
	FindOrganizerByUserID(ctx context.Context, userID int) (*model.Organizer, error)
}

type UserRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &UserRepositoryImpl{
		pool: pool,
	}
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id int) (*model.User, error) {
	query := `
		SELECT id, name, email, is_staff, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.IsStaff,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, name, email, is_staff, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.IsStaff,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *UserRepositoryImpl) FindOrganizerByUserID(ctx context.Context, userID int) (*model.Organizer, error) {
	query := `
		SELECT id, user_id, organization_name, role, created_at, updated_at
		FROM organizers
		WHERE user_id = $1
	`

	var organizer model.Organizer
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&organizer.ID,
		&organizer.UserID,
		&organizer.OrganizationName,
		&organizer.Role,
		&organizer.CreatedAt,
		&organizer.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotAnOrganizer
		}
		return nil, err
	}

	return &organizer, nil
}
