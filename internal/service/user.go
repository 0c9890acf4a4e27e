package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"workspace-server/internal/model"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrLoginEmpty   = errors.New("login cannot be empty")
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// GetByID возвращает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetByLogin возвращает пользователя по логину
func (s *UserService) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if login == "" {
		return nil, ErrLoginEmpty
	}

	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
