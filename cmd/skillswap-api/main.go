package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rajivgeraev/skillswap-api/internal/auth"
	"github.com/rajivgeraev/skillswap-api/internal/blob"
	"github.com/rajivgeraev/skillswap-api/internal/config"
	"github.com/rajivgeraev/skillswap-api/internal/db"
	"github.com/rajivgeraev/skillswap-api/internal/logger"
	"github.com/rajivgeraev/skillswap-api/internal/middleware"
	"github.com/rajivgeraev/skillswap-api/internal/utils"
)

func main() {
	log := logger.New(os.Getenv("APP_ENV") == "development")

	// Загружаем конфигурацию
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Ошибка загрузки конфигурации")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализируем базу данных
	store, err := db.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Ошибка при инициализации базы данных")
	}
	defer store.Close()

	// Redis нужен только для ограничения частоты запросов
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Некорректный REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis недоступен, лимиты будут пропускать запросы")
		}
		cancel()
	} else {
		log.Info().Msg("REDIS_URL не задан, ограничение частоты запросов отключено")
	}

	blobs, err := blob.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Ошибка инициализации хранилища файлов")
	}
	if blobs == nil {
		log.Info().Msg("хранилище файлов не настроено, загрузка фото отключена")
	}

	jwtService := utils.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)

	app := newApp(deps{
		cfg:      cfg,
		store:    store,
		verifier: auth.NewVerifier(jwtService, store, log),
		hasher:   utils.NewPasswordHasher(0),
		limiter:  middleware.NewRateLimiter(redisClient, log),
		blobs:    blobs,
		log:      log,
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("остановка сервера")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("ошибка остановки сервера")
		}
	}()

	// Запускаем сервер
	log.Info().Str("port", cfg.Port).Msg("✅ Skill Swap API запущен")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("ошибка запуска сервера")
	}
}
