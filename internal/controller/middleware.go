package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"workspace-server/internal/model"
	"workspace-server/internal/service"
)

// AuthMiddleware проверяет токен и кладёт пользователя в контекст запроса
func AuthMiddleware(authService *service.AuthService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		token := ctx.Get("Authorization")
		if token == "" {
			token = ctx.Query("token")
		}
		if token == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(model.Response{
				Data: fiber.Map{
					"code":    fiber.StatusUnauthorized,
					"message": "Authorization token required",
				},
			})
		}

		user, err := authService.ValidateToken(ctx.Context(), token)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, service.ErrTokenExpired) {
				message = "Token expired"
			}

			return ctx.Status(fiber.StatusUnauthorized).JSON(model.Response{
				Data: fiber.Map{
					"code":    fiber.StatusUnauthorized,
					"message": message,
				},
			})
		}

		ctx.Locals("user", user)

		return ctx.Next()
	}
}

// actor достаёт аутентифицированного пользователя из контекста запроса
func actor(ctx *fiber.Ctx) (*model.User, error) {
	user, ok := ctx.Locals("user").(*model.User)
	if !ok || user == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Authorization required")
	}
	return user, nil
}

// requireAccess проверяет, что аутентифицированный пользователь имеет
// требуемый уровень доступа к файлу
func requireAccess(ctx *fiber.Ctx, shares *service.ShareService, fileID uuid.UUID, required model.Permission) error {
	user, err := actor(ctx)
	if err != nil {
		return err
	}
	return shares.CheckAccess(ctx.Context(), fileID, user.ID, required)
}
