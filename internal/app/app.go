package app

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"workspace-server/internal/collab"
	"workspace-server/internal/controller"
	"workspace-server/internal/service"
)

// Services собранный сервисный слой приложения
type Services struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Storage  *service.StorageService
	Versions *service.VersionService
	Folders  *service.FolderService
	Shares   *service.ShareService
	Hub      *collab.Hub
}

// NewApp создаёт fiber-приложение с маршрутами поверх сервисного слоя.
// Лимит тела запроса берётся из конфигурации с запасом под обвязку
// multipart формы.
func NewApp(cfg *Config, svc Services) *fiber.App {
	bodyLimit := int64(service.MaxUploadSize)
	if cfg != nil && cfg.Storage.MaxUploadSize > 0 {
		bodyLimit = cfg.Storage.MaxUploadSize
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: controller.ErrorHandler,
		BodyLimit:    int(bodyLimit) + 1024*1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Инициализация контроллеров
	authController := controller.NewAuthController(svc.Auth)
	filesController := controller.NewFilesController(svc.Storage, svc.Shares)
	versionsController := controller.NewVersionsController(svc.Versions, svc.Storage, svc.Shares)
	sharesController := controller.NewSharesController(svc.Shares, svc.Users)
	foldersController := controller.NewFoldersController(svc.Folders)

	// Настройка маршрутов
	api := app.Group("/api")

	// Маршруты для авторизации
	api.Post("/register", authController.Register)
	api.Post("/auth", authController.Authenticate)
	api.Delete("/auth/:token", authController.Logout)

	authed := controller.AuthMiddleware(svc.Auth)

	// Маршруты для файлов
	files := api.Group("/files", authed)
	files.Post("/", filesController.Upload)
	files.Get("/", filesController.List)
	files.Get("/:id", filesController.Get)
	files.Get("/:id/download", filesController.DownloadFile)
	files.Put("/:id/content", filesController.UpdateContent)
	files.Delete("/:id", filesController.Delete)
	files.Post("/:id/evaluate", filesController.Evaluate)

	// Маршруты для версий
	files.Post("/:id/versions", versionsController.Create)
	files.Get("/:id/versions", versionsController.List)
	files.Post("/:id/versions/:versionId/restore", versionsController.Restore)
	files.Get("/:id/versions/compare", versionsController.Compare)

	// Маршруты для доступов
	files.Post("/:id/shares", sharesController.Grant)
	files.Get("/:id/shares", sharesController.List)
	files.Delete("/:id/shares/:shareId", sharesController.Revoke)

	// Маршруты для папок
	folders := api.Group("/folders", authed)
	folders.Post("/", foldersController.Create)
	folders.Get("/", foldersController.List)
	folders.Put("/:id", foldersController.Update)
	folders.Put("/:id/move", foldersController.Move)
	folders.Delete("/:id", foldersController.Delete)

	// Канал присутствия
	ws := app.Group("/ws", authed)
	ws.Use("/files/:id", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	ws.Get("/files/:id", websocket.New(collab.ServeWS(svc.Hub)))

	return app
}
