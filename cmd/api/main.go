package main

import (
	"context"
	"log"
	stdhttp "net/http"

	"shortlink/pkg/auth"
	"shortlink/pkg/cache"
	"shortlink/pkg/config"
	"shortlink/pkg/http"
	"shortlink/pkg/limiter"
	"shortlink/pkg/logging"
	"shortlink/pkg/middleware"
	"shortlink/pkg/service"
	"shortlink/pkg/storage"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	logger := logging.NewLogger(logging.LogLevel(cfg.LogLevel))

	// DB connection
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	// Redis connection
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal(err)
	}

	redisClient := redis.NewClient(opt)
	defer redisClient.Close()

	// Storage
	linkStorage := storage.NewPostgresLinkStorage(pool)
	userStorage := storage.NewPostgresUserStorage(pool)

	// Cache
	linkCache := cache.NewLinkCache(redisClient)

	// Services
	tokens := auth.NewTokens(cfg.JWTSecret)
	linkService := service.NewLinkService(linkStorage, linkCache, logger)
	accountService := service.NewAccountService(userStorage, tokens, logger)

	// Rate limiter
	redisLimiter, err := limiter.NewRedisLimiter(redisClient)
	if err != nil {
		log.Fatal("Failed to create rate limiter:", err)
	}
	rateLimit := middleware.NewRateLimit(redisLimiter, limiter.Limit{
		Requests: cfg.RateLimitRequests,
		Window:   cfg.RateLimitWindow,
	}, logger)

	// Middleware + handler
	authMW := middleware.NewAuth(tokens, logger)
	handler := http.NewHandler(linkService, accountService, cfg.FrontendURL, logger)

	// Router
	r := chi.NewRouter()
	http.SetupRoutes(r, handler, authMW, rateLimit.Handler)

	// Server
	log.Println("Starting API server on :" + cfg.Port)
	log.Fatal(stdhttp.ListenAndServe(":"+cfg.Port, r))
}
