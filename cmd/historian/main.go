// cmd/historian/main.go is an asynchronous historian service that pops round records from a Redis queue and persists them to a PostgreSQL database.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/baccarat/internal/cache"
	"github.com/jason-s-yu/baccarat/internal/config"
	"github.com/jason-s-yu/baccarat/internal/database"
	"github.com/jason-s-yu/baccarat/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error(err)
		os.Exit(1)
	}
	logger.Info("Historian shutdown complete.")
}

// run consumes the round queue until ctx ends, closing Redis and Postgres before it returns.
func run(ctx context.Context, cfg config.Config, logger *logrus.Logger) error {
	redisAddr := cfg.RedisAddr
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb, err := cache.Connect(ctx, redisAddr, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	pool, err := database.Connect(ctx, cfg.Postgres.ConnString())
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Infof("Connected to database at %s:%s/%s", cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.Database)

	store := database.NewRoundStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	hs := historian.New(cache.NewRoundQueue(rdb, cfg.QueueName), store, logger, historian.Config{
		BatchSize:  cfg.BatchSize,
		FlushDelay: cfg.FlushDelay,
	})
	return hs.Run(ctx)
}
