package controller

import (
	"github.com/gofiber/fiber/v2"

	"workspace-server/internal/model"
	"workspace-server/internal/service"
)

type AuthController struct {
	authService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

func (c *AuthController) Register(ctx *fiber.Ctx) error {
	type RegisterRequest struct {
		Token string `json:"token"`
		Login string `json:"login"`
		Email string `json:"email"`
		Pswd  string `json:"pswd"`
	}

	var req RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := c.authService.Register(ctx.Context(), req.Token, req.Login, req.Email, req.Pswd)
	if err != nil {
		return err
	}

	return ctx.JSON(model.Response{
		Response: model.UserResponse{
			ID:        user.ID.String(),
			Login:     user.Login,
			CreatedAt: user.CreatedAt,
		},
	})
}

func (c *AuthController) Authenticate(ctx *fiber.Ctx) error {
	type AuthRequest struct {
		Login string `json:"login"`
		Pswd  string `json:"pswd"`
	}

	var req AuthRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	token, err := c.authService.Authenticate(ctx.Context(), req.Login, req.Pswd)
	if err != nil {
		return err
	}

	return ctx.JSON(model.Response{
		Response: fiber.Map{
			"token": token,
		},
	})
}

func (c *AuthController) Logout(ctx *fiber.Ctx) error {
	token := ctx.Params("token")
	if token == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Token required")
	}

	if err := c.authService.Logout(ctx.Context(), token); err != nil {
		return err
	}

	return ctx.JSON(model.Response{
		Response: fiber.Map{
			token: true,
		},
	})
}
