// Package servicetest содержит in-memory реализации хранилищ для тестов
// сервисного слоя и HTTP-обработчиков.
package servicetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"workspace-server/internal/model"
)

// FileStore потокобезопасное in-memory хранилище файлов
type FileStore struct {
	mu    sync.Mutex
	files map[uuid.UUID]*model.File

	// FailCreate заставляет Create вернуть ошибку — для проверки
	// очистки осиротевших файлов
	FailCreate error
}

func NewFileStore() *FileStore {
	return &FileStore{files: make(map[uuid.UUID]*model.File)}
}

func (s *FileStore) Create(_ context.Context, f *model.File) error {
	if s.FailCreate != nil {
		return s.FailCreate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *f
	s.files[f.ID] = &cp
	return nil
}

func (s *FileStore) GetByID(_ context.Context, id uuid.UUID) (*model.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (s *FileStore) ListByWorkspace(_ context.Context, workspaceID uuid.UUID, limit int) ([]*model.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var files []*model.File
	for _, f := range s.files {
		if f.WorkspaceID == workspaceID && f.DeletedAt == nil {
			cp := *f
			files = append(files, &cp)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

func (s *FileStore) UpdateContent(_ context.Context, id uuid.UUID, content, compressed string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.files[id]; ok {
		f.Content = content
		f.CompressedContent = compressed
		f.UpdatedAt = time.Now()
	}
	return nil
}

func (s *FileStore) SoftDelete(_ context.Context, id, actor uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.files[id]; ok && f.DeletedAt == nil {
		f.DeletedAt = &at
		f.DeletedBy = &actor
	}
	return nil
}

// VersionStore in-memory хранилище версий
type VersionStore struct {
	mu       sync.Mutex
	versions map[uuid.UUID]*model.FileVersion
}

func NewVersionStore() *VersionStore {
	return &VersionStore{versions: make(map[uuid.UUID]*model.FileVersion)}
}

func (s *VersionStore) Create(_ context.Context, v *model.FileVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.versions[v.ID] = &cp
	return nil
}

func (s *VersionStore) GetByID(_ context.Context, id uuid.UUID) (*model.FileVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.versions[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (s *VersionStore) MaxVersionNumber(_ context.Context, fileID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := 0
	for _, v := range s.versions {
		if v.FileID == fileID && v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	return max, nil
}

func (s *VersionStore) ListByFile(_ context.Context, fileID uuid.UUID) ([]*model.FileVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var versions []*model.FileVersion
	for _, v := range s.versions {
		if v.FileID == fileID {
			cp := *v
			versions = append(versions, &cp)
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].VersionNumber > versions[j].VersionNumber
	})
	return versions, nil
}

func (s *VersionStore) Latest(_ context.Context, fileID uuid.UUID) (*model.FileVersion, error) {
	versions, _ := s.ListByFile(nil, fileID)
	if len(versions) == 0 {
		return nil, nil
	}
	return versions[0], nil
}

// FolderStore in-memory хранилище папок
type FolderStore struct {
	mu      sync.Mutex
	folders map[uuid.UUID]*model.Folder
}

func NewFolderStore() *FolderStore {
	return &FolderStore{folders: make(map[uuid.UUID]*model.Folder)}
}

func (s *FolderStore) Create(_ context.Context, f *model.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *f
	s.folders[f.ID] = &cp
	return nil
}

func (s *FolderStore) GetByID(_ context.Context, id uuid.UUID) (*model.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.folders[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (s *FolderStore) ListByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]*model.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var folders []*model.Folder
	for _, f := range s.folders {
		if f.WorkspaceID == workspaceID && f.DeletedAt == nil {
			cp := *f
			folders = append(folders, &cp)
		}
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Position < folders[j].Position })
	return folders, nil
}

func (s *FolderStore) Update(_ context.Context, f *model.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.folders[f.ID]; ok {
		existing.Name = f.Name
		existing.Color = f.Color
		existing.ParentID = f.ParentID
		existing.Position = f.Position
	}
	return nil
}

func (s *FolderStore) SoftDelete(_ context.Context, id, actor uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.folders[id]; ok && f.DeletedAt == nil {
		f.DeletedAt = &at
		f.DeletedBy = &actor
	}
	return nil
}

// ShareStore in-memory хранилище доступов
type ShareStore struct {
	mu     sync.Mutex
	shares map[uuid.UUID]*model.FileShare
}

func NewShareStore() *ShareStore {
	return &ShareStore{shares: make(map[uuid.UUID]*model.FileShare)}
}

func (s *ShareStore) Create(_ context.Context, share *model.FileShare) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *share
	s.shares[share.ID] = &cp
	return nil
}

func (s *ShareStore) GetByID(_ context.Context, id uuid.UUID) (*model.FileShare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	share, ok := s.shares[id]
	if !ok {
		return nil, nil
	}
	cp := *share
	return &cp, nil
}

func (s *ShareStore) ListByFile(_ context.Context, fileID uuid.UUID) ([]*model.FileShare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var shares []*model.FileShare
	for _, share := range s.shares {
		if share.FileID == fileID {
			cp := *share
			shares = append(shares, &cp)
		}
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].CreatedAt.Before(shares[j].CreatedAt) })
	return shares, nil
}

func (s *ShareStore) Revoke(_ context.Context, id, actor uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if share, ok := s.shares[id]; ok && share.RevokedAt == nil {
		share.RevokedAt = &at
		share.RevokedBy = &actor
	}
	return nil
}

// UserStore in-memory хранилище пользователей
type UserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]*model.User)}
}

func (s *UserStore) Create(_ context.Context, id uuid.UUID, login, email, hashedPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = &model.User{
		ID:        id,
		Login:     login,
		Email:     email,
		Password:  hashedPassword,
		CreatedAt: time.Now(),
	}
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) GetByLogin(_ context.Context, login string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Login == login {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *UserStore) GetByToken(_ context.Context, token string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Token == token && token != "" {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *UserStore) UpdateToken(_ context.Context, userID uuid.UUID, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.Token = token
		u.TokenExpiry = expiry
	}
	return nil
}

func (s *UserStore) ClearToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Token == token {
			u.Token = ""
			u.TokenExpiry = time.Time{}
		}
	}
	return nil
}
