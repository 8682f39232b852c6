package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habithive/internal/application/usecase"
	"habithive/internal/config"
	"habithive/internal/dateutil"
	"habithive/internal/domain"
	"habithive/internal/infrastructure/cache"
	"habithive/internal/infrastructure/pubsub"
	"habithive/internal/infrastructure/repository"
	"habithive/internal/infrastructure/security"
	handlers "habithive/internal/transport/http"
	"habithive/internal/transport/http/middleware"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// brokerAdapter сводит конкретный redis-брокер к контракту usecase
type brokerAdapter struct {
	*pubsub.SnapshotBroker
}

func (b brokerAdapter) Subscribe(ctx context.Context, userID uuid.UUID) (usecase.Notifications, error) {
	return b.SnapshotBroker.Subscribe(ctx, userID)
}

func main() {
	// 1. Конфиг
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Подключение к БД
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	// 3. Миграции
	log.Println("Running migrations...")
	if err := db.AutoMigrate(&domain.User{}, &domain.Habit{}); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// 4. Инициализация слоёв
	habitRepo := repository.NewHabitRepository(db)
	userRepo := repository.NewUserRepository(db)
	broker := pubsub.NewSnapshotBroker(rdb)
	tokenCache := cache.NewTokenCache(rdb)
	hasher := security.NewPasswordHasher()
	tokenManager := security.NewTokenManager(cfg.AccessSecret, cfg.RefreshSecret)

	authUseCase := usecase.NewAuthUseCase(userRepo, tokenCache, hasher, tokenManager)
	habitSync := usecase.NewHabitSync(habitRepo, brokerAdapter{broker}, dateutil.SystemClock{})

	authHandler := handlers.NewAuthHandler(authUseCase)
	habitHandler := handlers.NewHabitHandler(habitSync)
	limiter := middleware.NewRateLimiter(rdb)

	router := handlers.NewRouter(cfg.AllowedOrigins, authUseCase, authHandler, habitHandler, limiter)

	srv := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("HabitHive API running on %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
}
