package main

import (
	"database/sql"
	"flag"
	"log"

	_ "github.com/lib/pq"

	"workspace-server/internal/app"
	"workspace-server/internal/cache"
	"workspace-server/internal/collab"
	"workspace-server/internal/repository"
	"workspace-server/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// Инициализация конфигурации
	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Подключение к базе
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	// Инициализация репозиториев
	userRepo := repository.NewUserRepository(db)
	fileRepo := repository.NewFileRepository(db)
	folderRepo := repository.NewFolderRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	shareRepo := repository.NewShareRepository(db)

	// Инициализация кеша
	memCache := cache.NewMemoryCache()
	defer memCache.Close()

	// Инициализация сервисов
	authService := service.NewAuthService(userRepo, cfg.Auth.AdminToken, []byte(cfg.Auth.JWTSecret), memCache)
	userService := service.NewUserService(userRepo)
	storageService := service.NewStorageService(fileRepo, memCache, cfg.Storage.UploadDir, cfg.Storage.MaxUploadSize)
	versionService := service.NewVersionService(versionRepo, cfg.Versions.AutoSaveInterval)
	folderService := service.NewFolderService(folderRepo, memCache)
	shareService := service.NewShareService(shareRepo, fileRepo)

	// Создание приложения
	application := app.NewApp(cfg, app.Services{
		Auth:     authService,
		Users:    userService,
		Storage:  storageService,
		Versions: versionService,
		Folders:  folderService,
		Shares:   shareService,
		Hub:      collab.NewHub(),
	})

	// Запуск сервера
	log.Fatal(application.Listen(":" + cfg.Server.Port))
}
