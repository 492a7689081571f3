package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"voy.com/portfolio/internal/bootstrap"
	"voy.com/portfolio/internal/config"
	"voy.com/portfolio/internal/server"
	"voy.com/portfolio/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.Connect()

	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedPortfolio(context.Background(), db); err != nil {
			log.Fatalf("failed to seed database: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Printf("redis unreachable, query cache disabled: %v", err)
			redisClient = nil
		}
	}

	srv := server.NewServer(cfg, db, redisClient)

	log.Printf("portfolio server listening on :%s", cfg.Port)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
