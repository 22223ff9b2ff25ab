package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/hunt-api/internal/config"
	"github.com/yourusername/hunt-api/internal/domain/entity"
	"github.com/yourusername/hunt-api/internal/handler"
	"github.com/yourusername/hunt-api/internal/middleware"
	localRepo "github.com/yourusername/hunt-api/internal/repository/local"
	pgRepo "github.com/yourusername/hunt-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/hunt-api/internal/repository/redis"
	"github.com/yourusername/hunt-api/internal/service"
	"github.com/yourusername/hunt-api/internal/service/huntmanager"
	ws "github.com/yourusername/hunt-api/internal/websocket"
	"github.com/yourusername/hunt-api/pkg/auth"
	"github.com/yourusername/hunt-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции (схема + каталог точек квеста)
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Локальная SQLite-база для резервного хранилища прогресса
	localDB, err := database.NewSQLiteDB(cfg.SQLite.Path)
	if err != nil {
		log.Printf("Failed to open local fallback database: %v", err)
		os.Exit(1)
	}

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	locationRepo := pgRepo.NewLocationRepo(db)
	progressRepo := pgRepo.NewProgressRepo(db)
	contactRepo := pgRepo.NewContactRepo(db)

	localProgressRepo, err := localRepo.NewProgressRepo(localDB)
	if err != nil {
		log.Printf("Failed to initialize local progress repository: %v", err)
		os.Exit(1)
	}

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Загружаем каталог точек квеста. Каталог неизменяем после старта:
	// изменение списка точек требует миграции и перезапуска.
	locations, err := locationRepo.GetAllOrdered(context.Background())
	if err != nil {
		log.Printf("Failed to load location catalog: %v", err)
		os.Exit(1)
	}
	if len(locations) == 0 {
		log.Printf("Location catalog is empty: run migrations with seed data")
		os.Exit(1)
	}
	catalog := entity.NewCatalog(locations)
	log.Printf("Каталог квеста загружен: %d точек", catalog.Size())

	// Инициализируем JWTService
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Инициализация WebSocket Hub
	hub := ws.NewHub()
	go hub.Run()

	// Почтовый сервис: Resend либо no-op, если почта выключена
	var emailService service.EmailService
	if cfg.Email.Enabled {
		emailService, err = service.NewResendEmailService(cfg.Email.APIKey, cfg.Email.From, cfg.Email.ContactInbox)
		if err != nil {
			log.Printf("Failed to initialize email service: %v", err)
			os.Exit(1)
		}
		log.Println("Почтовый сервис Resend инициализирован")
	} else {
		emailService = &service.NoopEmailService{}
		log.Println("Почтовые уведомления выключены (no-op)")
	}

	// Инициализируем сервисы
	huntService := service.NewHuntService(
		catalog,
		progressRepo,
		localProgressRepo,
		huntmanager.AcceptAllMediaValidator{},
		hub,
		cacheRepo,
		userRepo,
		emailService,
		cfg.Hunt.AllowReset,
	)
	authService := service.NewAuthService(userRepo, jwtService)
	contactService := service.NewContactService(contactRepo, emailService)

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	huntHandler := handler.NewHuntHandler(huntService, "uploads")
	contactHandler := handler.NewContactHandler(contactService)
	adminHandler := handler.NewAdminHandler(userRepo, progressRepo, contactService, catalog)

	// Список разрешенных origin (общий для CORS и WebSocket)
	allowedOrigins := cfg.CORS.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	wsHandler := handler.NewWSHandler(hub, jwtService, allowedOrigins)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	isProduction := gin.Mode() == gin.ReleaseMode

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		// Production: не доверять прокси-заголовкам
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		// Development: доверяем localhost
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Аутентификация
		authGroup := api.Group("/auth")
		{
			strictLimit := rateLimiter.Limit(middleware.StrictAuthRateLimitConfig())
			authGroup.POST("/register", strictLimit, authHandler.Register)
			authGroup.POST("/login", strictLimit, authHandler.Login)

			authedAuth := authGroup.Group("/")
			authedAuth.Use(authMiddleware.RequireAuth())
			{
				authedAuth.GET("/me", authHandler.Me)
				authedAuth.POST("/waiver", authHandler.SignWaiver)
			}
		}

		// Контактная форма (публичный маршрут)
		api.POST("/contact", rateLimiter.LimitByIP(middleware.ContactRateLimitConfig()), contactHandler.Submit)

		// Квест: только для одобренных участников с подписанным отказом
		hunt := api.Group("/hunt")
		hunt.Use(authMiddleware.RequireAuth(), authMiddleware.ApprovedOnly())
		{
			hunt.GET("/progress", huntHandler.GetProgress)
			hunt.GET("/completion", huntHandler.GetCompletion)
			hunt.POST("/reset", huntHandler.ResetProgress)

			locationWithID := hunt.Group("/locations/:id")
			locationWithID.Use(middleware.ExtractUintParam("id", "locationID"))
			{
				locationWithID.POST("/answer", rateLimiter.Limit(middleware.AnswerRateLimitConfig()), huntHandler.SubmitAnswer)
			}
		}

		// Администрирование
		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			admin.GET("/users", adminHandler.ListUsers)

			userWithID := admin.Group("/users/:id")
			userWithID.Use(middleware.ExtractUintParam("id", "userID"))
			{
				userWithID.POST("/approve", adminHandler.ApproveUser)
			}

			admin.GET("/messages", adminHandler.ListContactMessages)
			admin.GET("/progress/export", adminHandler.ExportProgress)
		}
	}

	// WebSocket маршрут
	router.GET("/ws", wsHandler.HandleConnection)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// Ждем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Останавливаем WebSocket-хаб
	hub.Close()

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	// Закрываем соединения с хранилищами
	if sqlDB, err := database.GetSQLDB(db); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Warning: failed to close database connection: %v", err)
		}
	}
	if sqlDB, err := database.GetSQLDB(localDB); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Warning: failed to close local database connection: %v", err)
		}
	}
	if err := redisClient.Close(); err != nil {
		log.Printf("Warning: failed to close Redis connection: %v", err)
	}

	log.Println("Server exited properly")
}
