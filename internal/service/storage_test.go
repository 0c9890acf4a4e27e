package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-server/internal/cache"
	"workspace-server/internal/model"
	"workspace-server/internal/service/servicetest"
)

func newStorageService(t *testing.T, files *servicetest.FileStore) *StorageService {
	t.Helper()
	c := cache.NewMemoryCache()
	t.Cleanup(c.Close)
	return NewStorageService(files, c, t.TempDir(), MaxUploadSize)
}

func TestUploadTextGoesInline(t *testing.T) {
	files := servicetest.NewFileStore()
	svc := newStorageService(t, files)

	actor := uuid.New()
	workspace := uuid.New()

	file, err := svc.Upload(context.Background(), actor, workspace, nil, &model.UploadedFile{
		Filename: "notes.txt",
		Mime:     "text/plain",
		Data:     []byte("привет, мир"),
	})
	require.NoError(t, err)

	// Встроенное хранение: контент в записи, дисковых полей нет
	assert.True(t, file.Inline())
	assert.False(t, file.DiskBacked())
	assert.Equal(t, "привет, мир", file.Content)
	assert.Empty(t, file.StoragePath)
}

func TestUploadBinaryGoesToDisk(t *testing.T) {
	files := servicetest.NewFileStore()
	svc := newStorageService(t, files)

	data := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x01}
	file, err := svc.Upload(context.Background(), uuid.New(), uuid.New(), nil, &model.UploadedFile{
		Filename: "logo.png",
		Mime:     "image/png",
		Data:     data,
	})
	require.NoError(t, err)

	assert.True(t, file.DiskBacked())
	assert.False(t, file.Inline())
	assert.Equal(t, model.FileTypePNG, file.Type)
	assert.Equal(t, int64(len(data)), file.StorageSize)
	assert.Empty(t, file.Content)
}

func TestUploadInvalidUTF8TextGoesToDisk(t *testing.T) {
	files := servicetest.NewFileStore()
	svc := newStorageService(t, files)

	// Заявлен текстовый тип, но байты не валидный UTF-8 — уходит на диск
	file, err := svc.Upload(context.Background(), uuid.New(), uuid.New(), nil, &model.UploadedFile{
		Filename: "broken.txt",
		Mime:     "text/plain",
		Data:     []byte{0xFF, 0xFE, 0x00},
	})
	require.NoError(t, err)
	assert.True(t, file.DiskBacked())
}

func TestUploadSanitizesFilename(t *testing.T) {
	files := servicetest.NewFileStore()
	svc := newStorageService(t, files)

	file, err := svc.Upload(context.Background(), uuid.New(), uuid.New(), nil, &model.UploadedFile{
		Filename: "my file (1).bin",
		Mime:     "application/octet-stream",
		Data:     []byte{0x00, 0x01, 0x02},
	})
	require.NoError(t, err)

	// Пробелов и скобок в имени на диске нет, есть префикс-таймштамп
	assert.NotContains(t, file.StoragePath, " ")
	assert.NotContains(t, file.StoragePath, "(")
	assert.NotContains(t, file.StoragePath, ")")
	assert.Regexp(t, `^\d+_`, file.StoragePath)
	assert.True(t, strings.HasSuffix(file.StoragePath, ".bin"))
}

func TestUploadPathTraversalStaysUnderRoot(t *testing.T) {
	files := servicetest.NewFileStore()
	svc := newStorageService(t, files)

	file, err := svc.Upload(context.Background(), uuid.New(), uuid.New(), nil, &model.UploadedFile{
		Filename: "../../etc/passwd",
		Mime:     "application/octet-stream",
		Data:     []byte{0x00},
	})
	require.NoError(t, err)

	// От имени остаётся только базовая часть
	assert.NotContains(t, file.StoragePath, "..")
	assert.NotContains(t, file.StoragePath, "/")

	abs := filepath.Join(svc.uploadRoot, file.StoragePath)
	_, statErr := os.Stat(abs)
	assert.NoError(t, statErr)
}

func TestUploadRejectsOversized(t *testing.T) {
	// Лимит приходит из конфигурации и проверяется до побочных эффектов
	files := servicetest.NewFileStore()
	c := cache.NewMemoryCache()
	t.Cleanup(c.Close)
	svc := NewStorageService(files, c, t.TempDir(), 16)

	_, err := svc.Upload(context.Background(), uuid.New(), uuid.New(), nil, &model.UploadedFile{
		Filename: "huge.bin",
		Data:     make([]byte, 17),
	})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	entries, readErr := os.ReadDir(svc.uploadRoot)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestNewStorageServiceDefaultsLimit(t *testing.T) {
	c := cache.NewMemoryCache()
	t.Cleanup(c.Close)

	svc := NewStorageService(servicetest.NewFileStore(), c, t.TempDir(), 0)
	assert.Equal(t, int64(MaxUploadSize), svc.maxUpload)
}

func TestUploadValidation(t *testing.T) {
	files := servicetest.NewFileStore()
	svc := newStorageService(t, files)
	ctx := context.Background()

	_, err := svc.Upload(ctx, uuid.Nil, uuid.New(), nil, &model.UploadedFile{Filename: "a.txt"})
	assert.ErrorIs(t, err, ErrActorRequired)

	_, err = svc.Upload(ctx, uuid.New(), uuid.Nil, nil, &model.UploadedFile{Filename: "a.txt"})
	assert.ErrorIs(t, err, ErrWorkspaceRequired)

	_, err = svc.Upload(ctx, uuid.New(), uuid.New(), nil, &model.UploadedFile{})
	assert.ErrorIs(t, err, ErrFileNameRequired)
}

func TestUploadCleansOrphanOnInsertFailure(t *testing.T) {
	files := servicetest.NewFileStore()
	files.FailCreate = errors.New("insert failed")
	svc := newStorageService(t, files)

	_, err := svc.Upload(context.Background(), uuid.New(), uuid.New(), nil, &model.UploadedFile{
		Filename: "photo.jpg",
		Mime:     "image/jpeg",
		Data:     []byte{0xFF, 0xD8, 0xFF},
	})
	require.Error(t, err)

	// Байты, записанные до неудачной вставки, убраны с диска
	entries, readErr := os.ReadDir(svc.uploadRoot)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestFetchInlineContent(t *testing.T) {
	files := servicetest.NewFileStore()
	svc := newStorageService(t, files)
	ctx := context.Background()

	file, err := svc.Upload(ctx, uuid.New(), uuid.New(), nil, &model.UploadedFile{
		Filename: "doc.md",
		Mime:     "text/markdown",
		Data:     []byte("# Заголовок"),
	})
	require.NoError(t, err)

	dl, err := svc.Fetch(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "# Заголовок", dl.Content)
	assert.Empty(t, dl.Path)
}

func TestFetchCompressedContentRoundTrip(t *testing.T) {
	files := servicetest.NewFileStore()
	svc := newStorageService(t, files)
	ctx := context.Background()

	// Хорошо сжимаемый текст крупнее порога уходит в сжатую колонку
	content := strings.Repeat("строка с повторяющимся содержимым\n", 5000)
	file, err := svc.Upload(ctx, uuid.New(), uuid.New(), nil, &model.UploadedFile{
		Filename: "big.txt",
		Mime:     "text/plain",
		Data:     []byte(content),
	})
	require.NoError(t, err)
	require.NotEmpty(t, file.CompressedContent)
	require.Empty(t, file.Content)

	dl, err := svc.Fetch(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, content, dl.Content)
}

func TestFetchDiskBacked(t *testing.T) {
	files := servicetest.NewFileStore()
	svc := newStorageService(t, files)
	ctx := context.Background()

	data := []byte{0x25, 0x50, 0x44, 0x46, 0x2D}
	file, err := svc.Upload(ctx, uuid.New(), uuid.New(), nil, &model.UploadedFile{
		Filename: "report.pdf",
		Mime:     "application/pdf",
		Data:     data,
	})
	require.NoError(t, err)

	dl, err := svc.Fetch(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", dl.Mime)
	assert.Equal(t, int64(len(data)), dl.Size)

	onDisk, readErr := os.ReadFile(dl.Path)
	require.NoError(t, readErr)
	assert.Equal(t, data, onDisk)
}

func TestFetchMissingDiskFileIsNotFound(t *testing.T) {
	files := servicetest.NewFileStore()
	svc := newStorageService(t, files)
	ctx := context.Background()

	file, err := svc.Upload(ctx, uuid.New(), uuid.New(), nil, &model.UploadedFile{
		Filename: "gone.bin",
		Mime:     "application/octet-stream",
		Data:     []byte{0x00, 0x01},
	})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(svc.uploadRoot, file.StoragePath)))

	_, err = svc.Fetch(ctx, file.ID)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestGetUnknownFile(t *testing.T) {
	svc := newStorageService(t, servicetest.NewFileStore())

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestUpdateContentSwitchesStorageForm(t *testing.T) {
	files := servicetest.NewFileStore()
	svc := newStorageService(t, files)
	ctx := context.Background()

	file, err := svc.Upload(ctx, uuid.New(), uuid.New(), nil, &model.UploadedFile{
		Filename: "plan.txt",
		Mime:     "text/plain",
		Data:     []byte("короткий план"),
	})
	require.NoError(t, err)

	big := strings.Repeat("пункт плана\n", 20000)
	require.NoError(t, svc.UpdateContent(ctx, file.ID, big))

	updated, err := files.GetByID(ctx, file.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Content)
	assert.NotEmpty(t, updated.CompressedContent)

	dl, err := svc.Fetch(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, big, dl.Content)
}

func TestUpdateContentRejectsDiskBackedFile(t *testing.T) {
	files := servicetest.NewFileStore()
	svc := newStorageService(t, files)
	ctx := context.Background()

	file, err := svc.Upload(ctx, uuid.New(), uuid.New(), nil, &model.UploadedFile{
		Filename: "logo.png",
		Mime:     "image/png",
		Data:     []byte{0x89, 0x50, 0x4E, 0x47},
	})
	require.NoError(t, err)
	require.True(t, file.DiskBacked())

	err = svc.UpdateContent(ctx, file.ID, "inline text now")
	assert.ErrorIs(t, err, ErrFileNotInline)

	// Запись осталась дисковой, встроенный контент не появился
	raw, err := files.GetByID(ctx, file.ID)
	require.NoError(t, err)
	assert.True(t, raw.DiskBacked())
	assert.False(t, raw.Inline())
}

func TestDeleteIsSoftAndRemovesDiskBytes(t *testing.T) {
	files := servicetest.NewFileStore()
	svc := newStorageService(t, files)
	ctx := context.Background()

	actor := uuid.New()
	file, err := svc.Upload(ctx, actor, uuid.New(), nil, &model.UploadedFile{
		Filename: "old.bin",
		Mime:     "application/octet-stream",
		Data:     []byte{0x01, 0x02},
	})
	require.NoError(t, err)

	abs := filepath.Join(svc.uploadRoot, file.StoragePath)
	require.NoError(t, svc.Delete(ctx, file.ID, actor))

	// Запись мягко удалена, байты с диска убраны
	_, err = svc.Get(ctx, file.ID)
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, statErr := os.Stat(abs)
	assert.True(t, os.IsNotExist(statErr))

	raw, err := files.GetByID(ctx, file.ID)
	require.NoError(t, err)
	require.NotNil(t, raw.DeletedAt)
	require.NotNil(t, raw.DeletedBy)
	assert.Equal(t, actor, *raw.DeletedBy)
}

func TestListScopedToWorkspace(t *testing.T) {
	files := servicetest.NewFileStore()
	svc := newStorageService(t, files)
	ctx := context.Background()

	wsA := uuid.New()
	wsB := uuid.New()
	actor := uuid.New()

	_, err := svc.Upload(ctx, actor, wsA, nil, &model.UploadedFile{Filename: "a.txt", Mime: "text/plain", Data: []byte("a")})
	require.NoError(t, err)
	_, err = svc.Upload(ctx, actor, wsB, nil, &model.UploadedFile{Filename: "b.txt", Mime: "text/plain", Data: []byte("b")})
	require.NoError(t, err)

	listed, err := svc.List(ctx, wsA, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "a.txt", listed[0].Name)
}

func TestListUsesCache(t *testing.T) {
	files := servicetest.NewFileStore()
	svc := newStorageService(t, files)
	ctx := context.Background()

	ws := uuid.New()
	actor := uuid.New()
	_, err := svc.Upload(ctx, actor, ws, nil, &model.UploadedFile{Filename: "a.txt", Mime: "text/plain", Data: []byte("a")})
	require.NoError(t, err)

	first, err := svc.List(ctx, ws, 0)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Запись в обход сервиса: кеш ещё отдаёт старый список
	require.NoError(t, files.Create(ctx, &model.File{
		ID:          uuid.New(),
		Name:        "sneaky.txt",
		WorkspaceID: ws,
		CreatedBy:   actor,
		CreatedAt:   time.Now(),
	}))

	second, err := svc.List(ctx, ws, 0)
	require.NoError(t, err)
	assert.Len(t, second, 1)

	// Загрузка через сервис сбрасывает кеш списка
	_, err = svc.Upload(ctx, actor, ws, nil, &model.UploadedFile{Filename: "c.txt", Mime: "text/plain", Data: []byte("c")})
	require.NoError(t, err)

	third, err := svc.List(ctx, ws, 0)
	require.NoError(t, err)
	assert.Len(t, third, 3)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"my file (1).txt", "my_file__1_.txt"},
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{"..", "upload"},
		{"", "upload"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), "input %q", tt.in)
	}
}

func TestTextualMime(t *testing.T) {
	assert.True(t, textualMime("text/plain"))
	assert.True(t, textualMime("text/markdown"))
	assert.True(t, textualMime("application/json"))
	assert.True(t, textualMime("image/svg+xml"))
	assert.False(t, textualMime("image/png"))
	assert.False(t, textualMime("application/pdf"))
	assert.False(t, textualMime("application/octet-stream"))
}
