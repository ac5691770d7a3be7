package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"momentumAPI/internal/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

const userColumns = `id, clerk_id, email, username, first_name, last_name, image_url, is_verified, preferences, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.IsVerified,
		&u.Preferences,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser inserts a row for a Clerk user.created webhook event.
func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	u := &user.User{
		ID:        uuid.New().String(),
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
	INSERT INTO users (id, clerk_id, email, username, first_name, last_name, image_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(
		ctx,
		query,
		u.ID,
		u.ClerkID,
		u.Email,
		u.Username,
		u.FirstName,
		u.LastName,
		u.ImageURL,
		u.CreatedAt,
		u.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
	SELECT ` + userColumns + `
	FROM users
	WHERE clerk_id = $1
	`

	u, err := scanUser(s.db.QueryRow(ctx, query, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	query := `
	UPDATE users
	SET
		username = COALESCE($2, username),
		first_name = COALESCE($3, first_name),
		last_name = COALESCE($4, last_name),
		image_url = COALESCE($5, image_url),
		updated_at = NOW()
	WHERE clerk_id = $1
	RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, query, clerkID, req.Username, req.FirstName, req.LastName, req.ImageURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return u, nil
}

func (s *UserService) UpdatePreferences(ctx context.Context, clerkID string, req *user.UpdatePreferencesRequest) (*user.User, error) {
	query := `
	UPDATE users
	SET preferences = preferences || $2, updated_at = NOW()
	WHERE clerk_id = $1
	RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, query, clerkID, req.Preferences))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}

	return u, nil
}

func (s *UserService) UpdateEmailVerification(ctx context.Context, clerkID string, verified bool) error {
	_, err := s.db.Exec(ctx, `
	UPDATE users SET is_verified = $2, updated_at = NOW() WHERE clerk_id = $1`, clerkID, verified)
	if err != nil {
		return fmt.Errorf("failed to update verification: %w", err)
	}
	return nil
}

// DeleteUserByClerkID removes the user row and everything they own.
// Clerk already deleted the identity, so this is a hard delete.
func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"habits", "tasks", "projects", "notes", "notifications", "device_tokens"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1`, clerkID); err != nil {
			return fmt.Errorf("failed to delete user %s: %w", table, err)
		}
	}

	result, err := tx.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}
