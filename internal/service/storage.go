package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"workspace-server/internal/cache"
	"workspace-server/internal/compress"
	"workspace-server/internal/model"
)

var (
	ErrActorRequired      = errors.New("actor is required")
	ErrWorkspaceRequired  = errors.New("workspace is required")
	ErrFileNameRequired   = errors.New("file name is required")
	ErrFileTooLarge       = errors.New("file exceeds maximum upload size")
	ErrFileNotFound       = errors.New("file not found")
	ErrFileNotInline      = errors.New("file bytes are stored on disk, content cannot be edited")
	ErrFailedToCreateDir  = errors.New("failed to create upload directory")
	ErrFailedToSaveFile   = errors.New("failed to save file")
	ErrFailedToDeleteFile = errors.New("failed to delete file")
)

// MaxUploadSize предельный размер загрузки по умолчанию, проверяется
// до записи на диск
const MaxUploadSize = 100 * 1024 * 1024

// FileStore хранилище записей файлов
type FileStore interface {
	Create(ctx context.Context, f *model.File) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.File, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit int) ([]*model.File, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content, compressed string) error
	SoftDelete(ctx context.Context, id, actor uuid.UUID, at time.Time) error
}

// StorageService маршрутизатор хранения: решает для каждой загрузки,
// уходит ли контент в текстовую колонку базы или байтами на диск под
// корень загрузок.
type StorageService struct {
	files      FileStore
	cache      *cache.MemoryCache
	uploadRoot string
	maxUpload  int64
}

// Download результат выдачи файла
type Download struct {
	Name    string
	Mime    string
	Size    int64
	Path    string // путь на диске; пуст для встроенного контента
	Content string // встроенный контент; пуст для дисковых файлов
}

func NewStorageService(files FileStore, cache *cache.MemoryCache, uploadRoot string, maxUpload int64) *StorageService {
	if maxUpload <= 0 {
		maxUpload = MaxUploadSize
	}
	return &StorageService{
		files:      files,
		cache:      cache,
		uploadRoot: uploadRoot,
		maxUpload:  maxUpload,
	}
}

// Upload принимает загрузку и материализует её: текстовые типы — встроенным
// контентом в базе, остальное — байтами на диске. Запись в базе появляется
// только после успешной записи байтов; осиротевший файл на диске убирается
// при ошибке вставки.
func (s *StorageService) Upload(ctx context.Context, actor, workspaceID uuid.UUID, folderID *uuid.UUID, upload *model.UploadedFile) (*model.File, error) {
	// 1. Валидация до каких-либо побочных эффектов
	if actor == uuid.Nil {
		return nil, ErrActorRequired
	}
	if workspaceID == uuid.Nil {
		return nil, ErrWorkspaceRequired
	}
	if upload == nil || upload.Filename == "" {
		return nil, ErrFileNameRequired
	}
	if int64(len(upload.Data)) > s.maxUpload {
		return nil, ErrFileTooLarge
	}

	// 2. Определение MIME: заявленный тип, иначе сниффинг по содержимому
	mime := upload.Mime
	if mime == "" || mime == "application/octet-stream" {
		mime = mimetype.Detect(upload.Data).String()
	}
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}

	now := time.Now()
	file := &model.File{
		ID:          uuid.New(),
		Name:        upload.Filename,
		Type:        fileTypeFor(mime, upload.Filename),
		WorkspaceID: workspaceID,
		FolderID:    folderID,
		CreatedBy:   actor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// 3. Маршрутизация: текст — в базу, остальное — на диск
	if textualMime(mime) && utf8.Valid(upload.Data) {
		content := string(upload.Data)
		stored := compress.Compress(content)
		if compress.Compressed(stored) {
			file.CompressedContent = stored
		} else {
			file.Content = content
		}
	} else {
		relPath, err := s.writeToDisk(upload.Filename, upload.Data)
		if err != nil {
			return nil, err
		}
		file.StoragePath = relPath
		file.StorageSize = int64(len(upload.Data))
		file.StorageMime = mime

		if err := s.files.Create(ctx, file); err != nil {
			// Байты уже на диске: убираем сироту, ошибку вставки отдаём наверх
			if rmErr := os.Remove(filepath.Join(s.uploadRoot, relPath)); rmErr != nil {
				log.Printf("storage: failed to clean up orphaned file %s: %v", relPath, rmErr)
			}
			return nil, err
		}

		s.cache.Delete(cache.FileListKey(workspaceID))
		return file, nil
	}

	if err := s.files.Create(ctx, file); err != nil {
		return nil, err
	}

	s.cache.Delete(cache.FileListKey(workspaceID))
	return file, nil
}

// Get возвращает запись файла; удалённые и отсутствующие — ErrFileNotFound
func (s *StorageService) Get(ctx context.Context, id uuid.UUID) (*model.File, error) {
	if cached, found := s.cache.Get(cache.FileKey(id)); found {
		return cached.(*model.File), nil
	}

	file, err := s.files.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if file == nil || file.DeletedAt != nil {
		return nil, ErrFileNotFound
	}

	s.cache.Set(cache.FileKey(id), file, 10*time.Minute)
	return file, nil
}

// List возвращает файлы рабочего пространства
func (s *StorageService) List(ctx context.Context, workspaceID uuid.UUID, limit int) ([]*model.File, error) {
	if workspaceID == uuid.Nil {
		return nil, ErrWorkspaceRequired
	}

	key := cache.FileListKey(workspaceID)
	if cached, found := s.cache.Get(key); found {
		return cached.([]*model.File), nil
	}

	files, err := s.files.ListByWorkspace(ctx, workspaceID, limit)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, files, 5*time.Minute)
	return files, nil
}

// Fetch выдаёт контент файла: дисковые файлы — путём и метаданными для
// стриминга, встроенные — текстом. Отсутствие и того и другого — нарушение
// целостности, наружу уходит как not found.
func (s *StorageService) Fetch(ctx context.Context, id uuid.UUID) (*Download, error) {
	file, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if file.DiskBacked() {
		abs := filepath.Join(s.uploadRoot, file.StoragePath)
		if _, err := os.Stat(abs); err != nil {
			log.Printf("storage: file %s references missing path %s", file.ID, file.StoragePath)
			return nil, ErrFileNotFound
		}
		return &Download{
			Name: file.Name,
			Mime: file.StorageMime,
			Size: file.StorageSize,
			Path: abs,
		}, nil
	}

	if file.Inline() {
		content := file.Content
		if file.CompressedContent != "" {
			content = compress.Decompress(file.CompressedContent)
		}
		return &Download{
			Name:    file.Name,
			Mime:    "text/plain",
			Size:    int64(len(content)),
			Content: content,
		}, nil
	}

	return nil, ErrFileNotFound
}

// UpdateContent обновляет встроенный контент файла. Дисковые файлы
// отклоняются: запись не может одновременно ссылаться на байты на диске
// и нести встроенный контент.
func (s *StorageService) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	file, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if file.DiskBacked() {
		return ErrFileNotInline
	}

	stored := compress.Compress(content)
	if compress.Compressed(stored) {
		err = s.files.UpdateContent(ctx, file.ID, "", stored)
	} else {
		err = s.files.UpdateContent(ctx, file.ID, content, "")
	}
	if err != nil {
		return err
	}

	s.cache.Delete(cache.FileKey(id))
	s.cache.Delete(cache.FileListKey(file.WorkspaceID))
	return nil
}

// Delete мягко удаляет запись; байты дискового файла убираются как
// побочный эффект — их отсутствие удаление не блокирует
func (s *StorageService) Delete(ctx context.Context, id, actor uuid.UUID) error {
	if actor == uuid.Nil {
		return ErrActorRequired
	}

	file, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.files.SoftDelete(ctx, id, actor, time.Now()); err != nil {
		return err
	}

	if file.DiskBacked() {
		if err := os.Remove(filepath.Join(s.uploadRoot, file.StoragePath)); err != nil {
			log.Printf("storage: failed to remove %s from disk: %v", file.StoragePath, err)
		}
	}

	s.cache.Delete(cache.FileKey(id))
	s.cache.Delete(cache.FileListKey(file.WorkspaceID))
	return nil
}

// writeToDisk пишет байты под корень загрузок и возвращает относительный
// путь. Имя очищается, миллисекундный префикс гарантирует уникальность;
// итоговый путь не может выйти за корень.
func (s *StorageService) writeToDisk(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(s.uploadRoot, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToCreateDir, err)
	}

	stored := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), sanitizeFilename(filename))
	abs := filepath.Join(s.uploadRoot, stored)

	root, err := filepath.Abs(s.uploadRoot)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToSaveFile, err)
	}
	absPath, err := filepath.Abs(abs)
	if err != nil || !strings.HasPrefix(absPath, root+string(filepath.Separator)) {
		return "", ErrFailedToSaveFile
	}

	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToSaveFile, err)
	}
	return stored, nil
}

// sanitizeFilename очищает имя до безопасного для файловой системы вида:
// берётся только базовое имя, пробелы и спецсимволы заменяются подчёркиванием
func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	var b strings.Builder
	for _, r := range base {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case r == '/' || r == '\\' || r == ':' || r == '(' || r == ')':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "upload"
	}
	return cleaned
}

// textualMime сообщает, относится ли тип к текстовым: такие загрузки
// хранятся встроенным контентом в базе
func textualMime(mime string) bool {
	if strings.HasPrefix(mime, "text/") {
		return true
	}
	switch mime {
	case "application/json", "application/xml", "application/yaml",
		"application/x-yaml", "application/javascript", "image/svg+xml":
		return true
	}
	return false
}

// fileTypeFor тип записи по MIME и расширению имени
func fileTypeFor(mime, filename string) model.FileType {
	switch mime {
	case "application/pdf":
		return model.FileTypePDF
	case "image/png":
		return model.FileTypePNG
	case "image/jpeg":
		return model.FileTypeJPG
	case "image/gif":
		return model.FileTypeGIF
	case "application/epub+zip":
		return model.FileTypeEPUB
	case "text/markdown":
		return model.FileTypeMarkdown
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return model.FileTypeMarkdown
	case ".pdf":
		return model.FileTypePDF
	case ".png":
		return model.FileTypePNG
	case ".jpg", ".jpeg":
		return model.FileTypeJPG
	case ".gif":
		return model.FileTypeGIF
	case ".epub":
		return model.FileTypeEPUB
	}

	if textualMime(mime) {
		return model.FileTypeDoc
	}
	return model.FileTypeBinary
}
