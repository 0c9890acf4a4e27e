package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"workspace-server/internal/model"
	"workspace-server/internal/service"
)

var ErrInternalServer = errors.New("internal server error")

// ErrorHandler универсальный обработчик ошибок для всех сервисов
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	status, message := fiber.StatusInternalServerError, ErrInternalServer.Error()

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		message = fiberErr.Message
	} else {
		switch {
		// Аутентификация
		case errors.Is(err, service.ErrInvalidAdminToken):
			status, message = fiber.StatusForbidden, err.Error()
		case errors.Is(err, service.ErrInvalidCredentials),
			errors.Is(err, service.ErrTokenExpired),
			errors.Is(err, service.ErrInvalidToken),
			errors.Is(err, service.ErrActorRequired):
			status, message = fiber.StatusUnauthorized, err.Error()

		// Файлы и загрузки
		case errors.Is(err, service.ErrWorkspaceRequired),
			errors.Is(err, service.ErrFileNameRequired),
			errors.Is(err, service.ErrFileTooLarge),
			errors.Is(err, service.ErrFileNotInline):
			status, message = fiber.StatusBadRequest, err.Error()
		case errors.Is(err, service.ErrFileNotFound):
			status, message = fiber.StatusNotFound, err.Error()
		case errors.Is(err, service.ErrFailedToCreateDir),
			errors.Is(err, service.ErrFailedToSaveFile),
			errors.Is(err, service.ErrFailedToDeleteFile):
			status, message = fiber.StatusInternalServerError, err.Error()

		// Версии
		case errors.Is(err, service.ErrVersionNotFound):
			status, message = fiber.StatusNotFound, err.Error()

		// Папки
		case errors.Is(err, service.ErrFolderNameRequired),
			errors.Is(err, service.ErrFolderCycle):
			status, message = fiber.StatusBadRequest, err.Error()
		case errors.Is(err, service.ErrFolderNotFound):
			status, message = fiber.StatusNotFound, err.Error()

		// Доступы
		case errors.Is(err, service.ErrGranteeRequired),
			errors.Is(err, service.ErrInvalidPermission):
			status, message = fiber.StatusBadRequest, err.Error()
		case errors.Is(err, service.ErrShareNotFound):
			status, message = fiber.StatusNotFound, err.Error()
		case errors.Is(err, service.ErrPermissionDenied):
			status, message = fiber.StatusForbidden, err.Error()

		// Пользователи
		case errors.Is(err, service.ErrLoginEmpty):
			status, message = fiber.StatusBadRequest, err.Error()
		case errors.Is(err, service.ErrUserNotFound):
			status, message = fiber.StatusNotFound, err.Error()
		}
	}

	return ctx.Status(status).JSON(model.Response{
		Data: fiber.Map{
			"code":    status,
			"message": message,
		},
	})
}
