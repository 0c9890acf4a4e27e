package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"workspace-server/internal/model"
)

var (
	ErrShareNotFound     = errors.New("share not found")
	ErrGranteeRequired   = errors.New("share grantee is required")
	ErrInvalidPermission = errors.New("invalid permission level")
	ErrPermissionDenied  = errors.New("permission denied")
)

// ShareStore хранилище выданных доступов
type ShareStore interface {
	Create(ctx context.Context, s *model.FileShare) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.FileShare, error)
	ListByFile(ctx context.Context, fileID uuid.UUID) ([]*model.FileShare, error)
	Revoke(ctx context.Context, id, actor uuid.UUID, at time.Time) error
}

// ShareService доступы к файлам. Отзыв всегда сильнее срока действия:
// отозванный доступ не даёт прав, даже если срок ещё не вышел.
type ShareService struct {
	shares ShareStore
	files  FileStore
}

func NewShareService(shares ShareStore, files FileStore) *ShareService {
	return &ShareService{shares: shares, files: files}
}

// Grant выдаёт доступ зарегистрированному пользователю или на голый email
func (s *ShareService) Grant(ctx context.Context, actor, fileID uuid.UUID, grantee *uuid.UUID, granteeEmail string, permission model.Permission, expiresAt *time.Time) (*model.FileShare, error) {
	// 1. Валидация
	if actor == uuid.Nil {
		return nil, ErrActorRequired
	}
	if grantee == nil && granteeEmail == "" {
		return nil, ErrGranteeRequired
	}
	if permission.Rank() == 0 {
		return nil, ErrInvalidPermission
	}

	// 2. Файл должен существовать
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file == nil || file.DeletedAt != nil {
		return nil, ErrFileNotFound
	}

	share := &model.FileShare{
		ID:          uuid.New(),
		FileID:      fileID,
		SharedWith:  grantee,
		SharedEmail: granteeEmail,
		Permission:  permission,
		ExpiresAt:   expiresAt,
		CreatedBy:   actor,
		CreatedAt:   time.Now(),
	}

	if err := s.shares.Create(ctx, share); err != nil {
		return nil, err
	}
	return share, nil
}

// Revoke отзывает доступ с фиксацией времени и исполнителя
func (s *ShareService) Revoke(ctx context.Context, shareID, actor uuid.UUID) error {
	if actor == uuid.Nil {
		return ErrActorRequired
	}

	share, err := s.shares.GetByID(ctx, shareID)
	if err != nil {
		return err
	}
	if share == nil {
		return ErrShareNotFound
	}

	return s.shares.Revoke(ctx, shareID, actor, time.Now())
}

// List доступы файла, включая отозванные и истёкшие
func (s *ShareService) List(ctx context.Context, fileID uuid.UUID) ([]*model.FileShare, error) {
	return s.shares.ListByFile(ctx, fileID)
}

// CheckAccess проверяет, покрывает ли доступ пользователя требуемый
// уровень. Создатель файла всегда admin; из выданных доступов берётся
// максимальный действующий.
func (s *ShareService) CheckAccess(ctx context.Context, fileID, userID uuid.UUID, required model.Permission) error {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if file == nil || file.DeletedAt != nil {
		return ErrFileNotFound
	}

	if file.CreatedBy == userID {
		return nil
	}

	shares, err := s.shares.ListByFile(ctx, fileID)
	if err != nil {
		return err
	}

	now := time.Now()
	best := model.Permission("")
	for _, share := range shares {
		if share.SharedWith == nil || *share.SharedWith != userID {
			continue
		}
		if !share.Active(now) {
			continue
		}
		if share.Permission.Rank() > best.Rank() {
			best = share.Permission
		}
	}

	if !best.Covers(required) {
		return ErrPermissionDenied
	}
	return nil
}
