package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/artisan-backend/internal/config"
	"github.com/ignatzorin/artisan-backend/internal/db"
	httpHandlers "github.com/ignatzorin/artisan-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/artisan-backend/internal/http/router"
	"github.com/ignatzorin/artisan-backend/internal/logger"
	"github.com/ignatzorin/artisan-backend/internal/repository"
	"github.com/ignatzorin/artisan-backend/internal/service"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Redis опционален: без него кэш агрегатов просто выключен.
	redisClient, err := db.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Printf("main: redis недоступен, кэширование выключено: %v", err)
		redisClient = nil
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	requestRepo := repository.NewRequestRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	ledgerRepo := repository.NewLedgerRepository(dbConn)
	withdrawalRepo := repository.NewWithdrawalRepository(dbConn)
	categoryRepo := repository.NewCategoryRepository(dbConn)
	verificationRepo := repository.NewVerificationRepository(dbConn)

	// Сервисы.
	cacheService := service.NewCacheService(redisClient)
	notificationService := service.NewNotificationService(notificationRepo)
	authService := service.NewAuthService(userRepo, verificationRepo, notificationService, tokenManager)
	ratingService := service.NewRatingService(requestRepo, userRepo)
	ledgerService := service.NewLedgerService(ledgerRepo, cacheService, cfg.LedgerCacheTTL, cfg.LedgerMonths)
	requestService := service.NewRequestService(requestRepo, userRepo, categoryRepo, ratingService, ledgerService)
	availabilityService := service.NewAvailabilityService(userRepo)
	withdrawalService := service.NewWithdrawalService(withdrawalRepo, ledgerService, cfg.MinWithdrawal)
	categoryService := service.NewCategoryService(categoryRepo)
	verificationService := service.NewVerificationService(verificationRepo)
	statsService := service.NewStatsService(requestRepo, cacheService, cfg.LedgerCacheTTL)
	artisanService := service.NewArtisanService(userRepo)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	requestHandler := httpHandlers.NewRequestHandler(requestService)
	artisanHandler := httpHandlers.NewArtisanHandler(artisanService, availabilityService, ledgerService, ratingService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	withdrawalHandler := httpHandlers.NewWithdrawalHandler(withdrawalService)
	categoryHandler := httpHandlers.NewCategoryHandler(categoryService)
	adminHandler := httpHandlers.NewAdminHandler(statsService, verificationService, authService)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, redisClient)

	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		requestHandler,
		artisanHandler,
		notificationHandler,
		withdrawalHandler,
		categoryHandler,
		adminHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Printf("main: ошибка закрытия redis: %v", err)
			}
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		log.Printf("main: ошибка закрытия соединения с базой: %v", err)
	}
}
