package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"workspace-server/internal/cache"
	"workspace-server/internal/model"
)

var (
	ErrFolderNotFound     = errors.New("folder not found")
	ErrFolderNameRequired = errors.New("folder name is required")
	ErrFolderCycle        = errors.New("folder cannot be moved into its own subtree")
)

// maxFolderDepth предохранитель обхода предков на случай битых данных
const maxFolderDepth = 100

// FolderStore хранилище папок
type FolderStore interface {
	Create(ctx context.Context, f *model.Folder) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Folder, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*model.Folder, error)
	Update(ctx context.Context, f *model.Folder) error
	SoftDelete(ctx context.Context, id, actor uuid.UUID, at time.Time) error
}

// FolderService дерево папок рабочего пространства. Дерево
// самоссылающееся; перемещение с образованием цикла отклоняется.
type FolderService struct {
	folders FolderStore
	cache   *cache.MemoryCache
}

func NewFolderService(folders FolderStore, cache *cache.MemoryCache) *FolderService {
	return &FolderService{folders: folders, cache: cache}
}

func (s *FolderService) Create(ctx context.Context, actor, workspaceID uuid.UUID, name, color string, parentID *uuid.UUID, position int) (*model.Folder, error) {
	// 1. Валидация
	if actor == uuid.Nil {
		return nil, ErrActorRequired
	}
	if workspaceID == uuid.Nil {
		return nil, ErrWorkspaceRequired
	}
	if name == "" {
		return nil, ErrFolderNameRequired
	}

	// 2. Родитель должен существовать в том же рабочем пространстве
	if parentID != nil {
		parent, err := s.get(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.WorkspaceID != workspaceID {
			return nil, ErrFolderNotFound
		}
	}

	folder := &model.Folder{
		ID:          uuid.New(),
		Name:        name,
		Color:       color,
		ParentID:    parentID,
		WorkspaceID: workspaceID,
		Position:    position,
		CreatedBy:   actor,
		CreatedAt:   time.Now(),
	}

	if err := s.folders.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.cache.Delete(cache.FolderListKey(workspaceID))
	return folder, nil
}

func (s *FolderService) Get(ctx context.Context, id uuid.UUID) (*model.Folder, error) {
	return s.get(ctx, id)
}

func (s *FolderService) List(ctx context.Context, workspaceID uuid.UUID) ([]*model.Folder, error) {
	if workspaceID == uuid.Nil {
		return nil, ErrWorkspaceRequired
	}

	key := cache.FolderListKey(workspaceID)
	if cached, found := s.cache.Get(key); found {
		return cached.([]*model.Folder), nil
	}

	folders, err := s.folders.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, folders, 5*time.Minute)
	return folders, nil
}

// Rename переименовывает папку и при необходимости меняет цвет
func (s *FolderService) Rename(ctx context.Context, id uuid.UUID, name, color string) (*model.Folder, error) {
	if name == "" {
		return nil, ErrFolderNameRequired
	}

	folder, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	folder.Name = name
	if color != "" {
		folder.Color = color
	}

	if err := s.folders.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.cache.Delete(cache.FolderListKey(folder.WorkspaceID))
	return folder, nil
}

// Move переносит папку под нового родителя. Папка не может стать
// потомком самой себя: цепочка предков нового родителя проверяется
// до корня.
func (s *FolderService) Move(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID, position int) (*model.Folder, error) {
	folder, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if newParentID != nil {
		if *newParentID == id {
			return nil, ErrFolderCycle
		}

		ancestor := newParentID
		for depth := 0; ancestor != nil && depth < maxFolderDepth; depth++ {
			parent, err := s.get(ctx, *ancestor)
			if err != nil {
				return nil, err
			}
			if parent.ID == id {
				return nil, ErrFolderCycle
			}
			ancestor = parent.ParentID
		}
		if ancestor != nil {
			return nil, ErrFolderCycle
		}
	}

	folder.ParentID = newParentID
	folder.Position = position

	if err := s.folders.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.cache.Delete(cache.FolderListKey(folder.WorkspaceID))
	return folder, nil
}

func (s *FolderService) Delete(ctx context.Context, id, actor uuid.UUID) error {
	if actor == uuid.Nil {
		return ErrActorRequired
	}

	folder, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.folders.SoftDelete(ctx, id, actor, time.Now()); err != nil {
		return err
	}

	s.cache.Delete(cache.FolderListKey(folder.WorkspaceID))
	return nil
}

func (s *FolderService) get(ctx context.Context, id uuid.UUID) (*model.Folder, error) {
	folder, err := s.folders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if folder == nil || folder.DeletedAt != nil {
		return nil, ErrFolderNotFound
	}
	return folder, nil
}
