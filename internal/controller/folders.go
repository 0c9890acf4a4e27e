package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"workspace-server/internal/model"
	"workspace-server/internal/service"
)

type FoldersController struct {
	folders *service.FolderService
}

func NewFoldersController(folders *service.FolderService) *FoldersController {
	return &FoldersController{folders: folders}
}

// Create Создать папку
func (c *FoldersController) Create(ctx *fiber.Ctx) error {
	user, err := actor(ctx)
	if err != nil {
		return err
	}

	type CreateRequest struct {
		WorkspaceID string `json:"workspace_id"`
		Name        string `json:"name"`
		Color       string `json:"color"`
		ParentID    string `json:"parent_id"`
		Position    int    `json:"position"`
	}
	var req CreateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	workspaceID, err := uuid.Parse(req.WorkspaceID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid workspace_id required")
	}

	parentID, err := parseOptionalID(req.ParentID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid parent_id")
	}

	folder, err := c.folders.Create(ctx.Context(), user.ID, workspaceID, req.Name, req.Color, parentID, req.Position)
	if err != nil {
		return err
	}

	return ctx.JSON(model.Response{
		Data: fiber.Map{
			"folder": folder,
		},
	})
}

// List Папки рабочего пространства
func (c *FoldersController) List(ctx *fiber.Ctx) error {
	workspaceID, err := uuid.Parse(ctx.Query("workspace_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid workspace_id required")
	}

	folders, err := c.folders.List(ctx.Context(), workspaceID)
	if err != nil {
		return err
	}

	return ctx.JSON(model.Response{
		Data: fiber.Map{
			"folders": folders,
		},
	})
}

// Update Переименовать папку или сменить цвет
func (c *FoldersController) Update(ctx *fiber.Ctx) error {
	if _, err := actor(ctx); err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid folder id required")
	}

	type UpdateRequest struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	var req UpdateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	folder, err := c.folders.Rename(ctx.Context(), id, req.Name, req.Color)
	if err != nil {
		return err
	}

	return ctx.JSON(model.Response{
		Data: fiber.Map{
			"folder": folder,
		},
	})
}

// Move Перенести папку под нового родителя
func (c *FoldersController) Move(ctx *fiber.Ctx) error {
	if _, err := actor(ctx); err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid folder id required")
	}

	type MoveRequest struct {
		ParentID string `json:"parent_id"`
		Position int    `json:"position"`
	}
	var req MoveRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	parentID, err := parseOptionalID(req.ParentID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid parent_id")
	}

	folder, err := c.folders.Move(ctx.Context(), id, parentID, req.Position)
	if err != nil {
		return err
	}

	return ctx.JSON(model.Response{
		Data: fiber.Map{
			"folder": folder,
		},
	})
}

// Delete Удалить папку
func (c *FoldersController) Delete(ctx *fiber.Ctx) error {
	user, err := actor(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid folder id required")
	}

	if err := c.folders.Delete(ctx.Context(), id, user.ID); err != nil {
		return err
	}

	return ctx.JSON(model.Response{
		Response: fiber.Map{
			id.String(): true,
		},
	})
}

func parseOptionalID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
