package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"workspace-server/internal/compress"
	"workspace-server/internal/model"
)

var (
	ErrVersionNotFound = errors.New("version not found")
)

// DefaultAutoSaveInterval период автосохранения по умолчанию
const DefaultAutoSaveInterval = 5 * time.Minute

// VersionStore хранилище версий файлов
type VersionStore interface {
	Create(ctx context.Context, v *model.FileVersion) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.FileVersion, error)
	MaxVersionNumber(ctx context.Context, fileID uuid.UUID) (int, error)
	ListByFile(ctx context.Context, fileID uuid.UUID) ([]*model.FileVersion, error)
	Latest(ctx context.Context, fileID uuid.UUID) (*model.FileVersion, error)
}

// VersionService история версий: строго растущая последовательность
// снимков контента на файл. Записи только добавляются; восстановление
// создаёт новую версию и никогда не меняет прошлые.
type VersionService struct {
	versions         VersionStore
	autoSaveInterval time.Duration
}

func NewVersionService(versions VersionStore, autoSaveInterval time.Duration) *VersionService {
	if autoSaveInterval <= 0 {
		autoSaveInterval = DefaultAutoSaveInterval
	}
	return &VersionService{
		versions:         versions,
		autoSaveInterval: autoSaveInterval,
	}
}

// AutoSaveInterval рекомендуемый период контрольных точек; клиентский
// цикл автосохранения планирует по нему следующий вызов
func (s *VersionService) AutoSaveInterval() time.Duration {
	return s.autoSaveInterval
}

// CreateVersion добавляет снимок контента. Номер версии на единицу больше
// текущего максимума файла; первый снимок получает номер 1.
func (s *VersionService) CreateVersion(ctx context.Context, fileID, actor uuid.UUID, content, description string) (*model.FileVersion, error) {
	if actor == uuid.Nil {
		return nil, ErrActorRequired
	}

	max, err := s.versions.MaxVersionNumber(ctx, fileID)
	if err != nil {
		return nil, err
	}

	v := &model.FileVersion{
		ID:            uuid.New(),
		FileID:        fileID,
		VersionNumber: max + 1,
		Description:   description,
		CreatedBy:     actor,
		CreatedAt:     time.Now(),
	}

	stored := compress.Compress(content)
	if compress.Compressed(stored) {
		v.CompressedContent = stored
	} else {
		v.Content = content
	}

	if err := s.versions.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// AutoSave создаёт контрольную точку, только если контент отличается от
// последнего снимка; иначе ничего не делает и возвращает nil-версию.
func (s *VersionService) AutoSave(ctx context.Context, fileID, actor uuid.UUID, content string) (*model.FileVersion, error) {
	latest, err := s.versions.Latest(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if latest != nil && Content(latest) == content {
		return nil, nil
	}
	return s.CreateVersion(ctx, fileID, actor, content, "Auto-save")
}

// RestoreVersion применяет контент целевой версии через apply и фиксирует
// результат новой версией со ссылкой на исходный номер
func (s *VersionService) RestoreVersion(ctx context.Context, versionID, actor uuid.UUID, apply func(content string) error) (*model.FileVersion, error) {
	target, err := s.versions.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrVersionNotFound
	}

	content := Content(target)
	if err := apply(content); err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Restored from version %d", target.VersionNumber)
	return s.CreateVersion(ctx, target.FileID, actor, content, description)
}

// ListVersions версии файла, новые первыми
func (s *VersionService) ListVersions(ctx context.Context, fileID uuid.UUID) ([]*model.FileVersion, error) {
	return s.versions.ListByFile(ctx, fileID)
}

// GetVersion одна версия по идентификатору
func (s *VersionService) GetVersion(ctx context.Context, id uuid.UUID) (*model.FileVersion, error) {
	v, err := s.versions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrVersionNotFound
	}
	return v, nil
}

// CompareVersions построчное сравнение двух версий по принадлежности
// множествам строк: строка, встречающаяся в обоих текстах, — unchanged;
// строка только из первого — removed; только из второго — added.
// Это намеренно простое множественное сравнение, не минимальный дифф.
func (s *VersionService) CompareVersions(ctx context.Context, idA, idB uuid.UUID) ([]model.DiffLine, error) {
	a, err := s.GetVersion(ctx, idA)
	if err != nil {
		return nil, err
	}
	b, err := s.GetVersion(ctx, idB)
	if err != nil {
		return nil, err
	}

	linesA := strings.Split(Content(a), "\n")
	linesB := strings.Split(Content(b), "\n")

	setA := make(map[string]bool, len(linesA))
	for _, line := range linesA {
		setA[line] = true
	}
	setB := make(map[string]bool, len(linesB))
	for _, line := range linesB {
		setB[line] = true
	}

	diff := make([]model.DiffLine, 0, len(linesA)+len(linesB))
	for _, line := range linesA {
		if setB[line] {
			diff = append(diff, model.DiffLine{Type: model.DiffUnchanged, Text: line})
		} else {
			diff = append(diff, model.DiffLine{Type: model.DiffRemoved, Text: line})
		}
	}
	for _, line := range linesB {
		if !setA[line] {
			diff = append(diff, model.DiffLine{Type: model.DiffAdded, Text: line})
		}
	}
	return diff, nil
}

// Content контент версии с учётом сжатой формы хранения
func Content(v *model.FileVersion) string {
	if v.CompressedContent != "" {
		return compress.Decompress(v.CompressedContent)
	}
	return v.Content
}
