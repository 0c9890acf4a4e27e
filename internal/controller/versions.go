package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"workspace-server/internal/model"
	"workspace-server/internal/service"
)

type VersionsController struct {
	versions *service.VersionService
	storage  *service.StorageService
	shares   *service.ShareService
}

func NewVersionsController(versions *service.VersionService, storage *service.StorageService, shares *service.ShareService) *VersionsController {
	return &VersionsController{
		versions: versions,
		storage:  storage,
		shares:   shares,
	}
}

// fileVersion версия по идентификатору с проверкой принадлежности файлу:
// чужая версия наружу выглядит как отсутствующая
func (c *VersionsController) fileVersion(ctx *fiber.Ctx, fileID, versionID uuid.UUID) (*model.FileVersion, error) {
	version, err := c.versions.GetVersion(ctx.Context(), versionID)
	if err != nil {
		return nil, err
	}
	if version.FileID != fileID {
		return nil, service.ErrVersionNotFound
	}
	return version, nil
}

// Create Создать версию файла
func (c *VersionsController) Create(ctx *fiber.Ctx) error {
	user, err := actor(ctx)
	if err != nil {
		return err
	}

	fileID, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid file id required")
	}
	if err := c.shares.CheckAccess(ctx.Context(), fileID, user.ID, model.PermissionEdit); err != nil {
		return err
	}

	type CreateRequest struct {
		Content     string `json:"content"`
		Description string `json:"description"`
		AutoSave    bool   `json:"auto_save"`
	}
	var req CreateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	// Файл должен существовать
	if _, err := c.storage.Get(ctx.Context(), fileID); err != nil {
		return err
	}

	var version *model.FileVersion
	if req.AutoSave {
		// Контрольная точка: версия создаётся только при изменившемся контенте
		version, err = c.versions.AutoSave(ctx.Context(), fileID, user.ID, req.Content)
	} else {
		version, err = c.versions.CreateVersion(ctx.Context(), fileID, user.ID, req.Content, req.Description)
	}
	if err != nil {
		return err
	}

	payload := fiber.Map{"version": version}
	if req.AutoSave {
		// Период контрольных точек для клиентского цикла автосохранения
		payload["auto_save_interval"] = c.versions.AutoSaveInterval().String()
	}

	return ctx.JSON(model.Response{Data: payload})
}

// List Список версий файла
func (c *VersionsController) List(ctx *fiber.Ctx) error {
	fileID, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid file id required")
	}
	if err := requireAccess(ctx, c.shares, fileID, model.PermissionView); err != nil {
		return err
	}

	versions, err := c.versions.ListVersions(ctx.Context(), fileID)
	if err != nil {
		return err
	}

	return ctx.JSON(model.Response{
		Data: fiber.Map{
			"versions": versions,
		},
	})
}

// Restore Восстановить контент файла из версии
func (c *VersionsController) Restore(ctx *fiber.Ctx) error {
	user, err := actor(ctx)
	if err != nil {
		return err
	}

	fileID, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid file id required")
	}
	versionID, err := uuid.Parse(ctx.Params("versionId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid version id required")
	}

	if err := c.shares.CheckAccess(ctx.Context(), fileID, user.ID, model.PermissionEdit); err != nil {
		return err
	}
	// Версия должна принадлежать файлу из пути: иначе восстановление
	// перенесло бы снимок одного файла в историю другого
	if _, err := c.fileVersion(ctx, fileID, versionID); err != nil {
		return err
	}

	version, err := c.versions.RestoreVersion(ctx.Context(), versionID, user.ID, func(content string) error {
		return c.storage.UpdateContent(ctx.Context(), fileID, content)
	})
	if err != nil {
		return err
	}

	return ctx.JSON(model.Response{
		Data: fiber.Map{
			"version": version,
		},
	})
}

// Compare Построчное сравнение двух версий
func (c *VersionsController) Compare(ctx *fiber.Ctx) error {
	fileID, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid file id required")
	}
	if err := requireAccess(ctx, c.shares, fileID, model.PermissionView); err != nil {
		return err
	}

	from, err := uuid.Parse(ctx.Query("from"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid from version id required")
	}
	to, err := uuid.Parse(ctx.Query("to"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid to version id required")
	}

	// Обе версии должны принадлежать файлу из пути
	if _, err := c.fileVersion(ctx, fileID, from); err != nil {
		return err
	}
	if _, err := c.fileVersion(ctx, fileID, to); err != nil {
		return err
	}

	diff, err := c.versions.CompareVersions(ctx.Context(), from, to)
	if err != nil {
		return err
	}

	return ctx.JSON(model.Response{
		Data: fiber.Map{
			"diff": diff,
		},
	})
}
