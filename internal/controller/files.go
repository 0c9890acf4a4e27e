package controller

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"workspace-server/internal/compress"
	"workspace-server/internal/formula"
	"workspace-server/internal/model"
	"workspace-server/internal/service"
)

type FilesController struct {
	storage *service.StorageService
	shares  *service.ShareService
	engine  formula.Engine
}

func NewFilesController(storage *service.StorageService, shares *service.ShareService) *FilesController {
	return &FilesController{
		storage: storage,
		shares:  shares,
		engine:  formula.New(),
	}
}

// Upload Метод загрузки файла
func (c *FilesController) Upload(ctx *fiber.Ctx) error {
	user, err := actor(ctx)
	if err != nil {
		return err
	}

	// 1. Идентификаторы из формы
	workspaceID, err := uuid.Parse(ctx.FormValue("workspace_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid workspace_id required")
	}

	var folderID *uuid.UUID
	if raw := ctx.FormValue("folder_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid folder_id")
		}
		folderID = &id
	}

	// 2. Файл из multipart формы
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "File required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to open file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to read file")
	}

	upload := &model.UploadedFile{
		Filename: fileHeader.Filename,
		Mime:     fileHeader.Header.Get("Content-Type"),
		Data:     data,
		Size:     fileHeader.Size,
	}

	// 3. Вызов сервиса
	file, err := c.storage.Upload(ctx.Context(), user.ID, workspaceID, folderID, upload)
	if err != nil {
		return err
	}

	payload := fiber.Map{
		"file": file,
		"size": compress.FormatSize(int64(len(data))),
	}
	if file.CompressedContent != "" {
		payload["compression_ratio"] = fmt.Sprintf("%.1f%%", compress.Ratio(len(data), len(file.CompressedContent)))
	}

	return ctx.JSON(model.Response{Data: payload})
}

// List Получить список файлов рабочего пространства
func (c *FilesController) List(ctx *fiber.Ctx) error {
	workspaceID, err := uuid.Parse(ctx.Query("workspace_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid workspace_id required")
	}
	limit := ctx.QueryInt("limit", 100)

	files, err := c.storage.List(ctx.Context(), workspaceID, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(model.Response{
		Data: fiber.Map{
			"files": files,
		},
	})
}

// Get Получить запись файла
func (c *FilesController) Get(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid file id required")
	}
	if err := requireAccess(ctx, c.shares, id, model.PermissionView); err != nil {
		return err
	}

	file, err := c.storage.Get(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(model.Response{
		Data: fiber.Map{
			"file": file,
		},
	})
}

// DownloadFile Выдать контент файла
func (c *FilesController) DownloadFile(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid file id required")
	}
	if err := requireAccess(ctx, c.shares, id, model.PermissionView); err != nil {
		return err
	}

	dl, err := c.storage.Fetch(ctx.Context(), id)
	if err != nil {
		return err
	}

	if dl.Path != "" {
		ctx.Set(fiber.HeaderContentType, dl.Mime)
		ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+dl.Name+`"`)
		return ctx.SendFile(dl.Path)
	}

	ctx.Set(fiber.HeaderContentType, dl.Mime+"; charset=utf-8")
	return ctx.SendString(dl.Content)
}

// Delete Удалить файл
func (c *FilesController) Delete(ctx *fiber.Ctx) error {
	user, err := actor(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid file id required")
	}
	if err := c.shares.CheckAccess(ctx.Context(), id, user.ID, model.PermissionAdmin); err != nil {
		return err
	}

	if err := c.storage.Delete(ctx.Context(), id, user.ID); err != nil {
		return err
	}

	return ctx.JSON(model.Response{
		Response: fiber.Map{
			id.String(): true,
		},
	})
}

// UpdateContent Обновить встроенный контент файла
func (c *FilesController) UpdateContent(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid file id required")
	}
	if err := requireAccess(ctx, c.shares, id, model.PermissionEdit); err != nil {
		return err
	}

	type ContentRequest struct {
		Content string `json:"content"`
	}
	var req ContentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := c.storage.UpdateContent(ctx.Context(), id, req.Content); err != nil {
		return err
	}

	return ctx.JSON(model.Response{
		Response: fiber.Map{
			id.String(): true,
		},
	})
}

// Evaluate Вычислить формулу над таблицей
func (c *FilesController) Evaluate(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid file id required")
	}
	if err := requireAccess(ctx, c.shares, id, model.PermissionView); err != nil {
		return err
	}

	type EvaluateRequest struct {
		Formula string     `json:"formula"`
		Grid    model.Grid `json:"grid"`
	}

	var req EvaluateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	result := c.engine.Evaluate(req.Formula, req.Grid)

	return ctx.JSON(model.Response{
		Data: fiber.Map{
			"result": result,
		},
	})
}
