package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"workspace-server/internal/model"
	"workspace-server/internal/service"
)

type SharesController struct {
	shares *service.ShareService
	users  *service.UserService
}

func NewSharesController(shares *service.ShareService, users *service.UserService) *SharesController {
	return &SharesController{
		shares: shares,
		users:  users,
	}
}

// Grant Выдать доступ к файлу
func (c *SharesController) Grant(ctx *fiber.Ctx) error {
	user, err := actor(ctx)
	if err != nil {
		return err
	}

	fileID, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid file id required")
	}
	if err := c.shares.CheckAccess(ctx.Context(), fileID, user.ID, model.PermissionAdmin); err != nil {
		return err
	}

	type GrantRequest struct {
		UserID     string `json:"user_id"`
		Email      string `json:"email"`
		Permission string `json:"permission"`
		ExpiresAt  string `json:"expires_at"`
	}
	var req GrantRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	var grantee *uuid.UUID
	if req.UserID != "" {
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid user_id")
		}
		grantee = &id
	} else if req.Email != "" {
		// Email зарегистрированного пользователя превращается в обычный
		// доступ по идентификатору; незнакомый email остаётся голым
		if known, err := c.users.GetByLogin(ctx.Context(), req.Email); err == nil {
			grantee = &known.ID
			req.Email = ""
		}
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "expires_at must be RFC3339")
		}
		expiresAt = &t
	}

	share, err := c.shares.Grant(ctx.Context(), user.ID, fileID, grantee, req.Email,
		model.Permission(req.Permission), expiresAt)
	if err != nil {
		return err
	}

	return ctx.JSON(model.Response{
		Data: fiber.Map{
			"share": share,
		},
	})
}

// Revoke Отозвать доступ
func (c *SharesController) Revoke(ctx *fiber.Ctx) error {
	user, err := actor(ctx)
	if err != nil {
		return err
	}

	fileID, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid file id required")
	}
	if err := c.shares.CheckAccess(ctx.Context(), fileID, user.ID, model.PermissionAdmin); err != nil {
		return err
	}

	shareID, err := uuid.Parse(ctx.Params("shareId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid share id required")
	}

	if err := c.shares.Revoke(ctx.Context(), shareID, user.ID); err != nil {
		return err
	}

	return ctx.JSON(model.Response{
		Response: fiber.Map{
			shareID.String(): true,
		},
	})
}

// List Доступы файла
func (c *SharesController) List(ctx *fiber.Ctx) error {
	fileID, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Valid file id required")
	}
	if err := requireAccess(ctx, c.shares, fileID, model.PermissionAdmin); err != nil {
		return err
	}

	shares, err := c.shares.List(ctx.Context(), fileID)
	if err != nil {
		return err
	}

	return ctx.JSON(model.Response{
		Data: fiber.Map{
			"shares": shares,
		},
	})
}
