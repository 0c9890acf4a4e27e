package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"workspace-server/internal/model"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, id uuid.UUID, login, email, hashedPassword string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, login, email, password, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, login, nullString(email), hashedPassword, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	return r.get(ctx, "login = $1", login)
}

func (r *UserRepository) GetByToken(ctx context.Context, token string) (*model.User, error) {
	return r.get(ctx, "token = $1", token)
}

func (r *UserRepository) get(ctx context.Context, where string, arg interface{}) (*model.User, error) {
	user := &model.User{}
	var email, token sql.NullString
	var tokenExpiry sql.NullTime

	err := r.db.QueryRowContext(ctx,
		"SELECT id, login, email, password, token, token_expiry, created_at FROM users WHERE "+where, arg).
		Scan(&user.ID, &user.Login, &email, &user.Password, &token, &tokenExpiry, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Email = email.String
	user.Token = token.String
	user.TokenExpiry = tokenExpiry.Time
	return user, nil
}

func (r *UserRepository) UpdateToken(ctx context.Context, userID uuid.UUID, token string, expiry time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET token = $1, token_expiry = $2 WHERE id = $3",
		nullString(token), expiry, userID)
	return err
}

func (r *UserRepository) ClearToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET token = NULL, token_expiry = NULL WHERE token = $1", token)
	return err
}
