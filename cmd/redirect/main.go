package main

import (
	"context"
	"log"
	stdhttp "net/http"

	"shortlink/pkg/cache"
	"shortlink/pkg/config"
	httphandler "shortlink/pkg/http"
	"shortlink/pkg/logging"
	"shortlink/pkg/service"
	"shortlink/pkg/storage"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Slim redirect-only server: one route, cache-backed, no auth surface.
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

	linkStorage := storage.NewPostgresLinkStorage(pool)
	linkCache := cache.NewLinkCache(redisClient)
	linkService := service.NewLinkService(linkStorage, linkCache, logger)

	handler := httphandler.NewHandler(linkService, nil, cfg.FrontendURL, logger)

	r := chi.NewRouter()
	r.Get("/{id}", handler.Redirect)

	log.Println("Starting redirect server on :8081")
	log.Fatal(stdhttp.ListenAndServe(":8081", r))
}
