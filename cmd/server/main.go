// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/baccarat/internal/cache"
	"github.com/jason-s-yu/baccarat/internal/config"
	"github.com/jason-s-yu/baccarat/internal/game"
	"github.com/jason-s-yu/baccarat/internal/handlers"
	"github.com/jason-s-yu/baccarat/internal/ledger"
	"github.com/jason-s-yu/baccarat/internal/server"
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
		logger.Errorf("server exited: %v", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// run serves until ctx ends. Every resource it opens is released before it returns.
func run(ctx context.Context, cfg config.Config, logger *logrus.Logger) error {
	accounts := ledger.New()
	engine := game.NewEngine(accounts, logger)

	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("round history: %w", err)
		}
		defer rdb.Close()
		engine.Recorder = cache.NewRoundQueue(rdb, cfg.QueueName)
		logger.Infof("Publishing rounds to Redis list %q at %s", cfg.QueueName, cfg.RedisAddr)
	}

	dispatcher := handlers.NewDispatcher(accounts, engine, logger)

	if cfg.WSPort != "" {
		ws := &http.Server{
			Addr:    net.JoinHostPort("", cfg.WSPort),
			Handler: handlers.NewMux(logger, dispatcher, cfg.ReadTimeout),
		}
		go func() {
			logger.Infof("WebSocket gateway running on %s", ws.Addr)
			if err := ws.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("WebSocket gateway exited: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			ws.Shutdown(shutdownCtx)
		}()
	}

	srv := server.New(dispatcher, logger, server.Config{
		Workers:      cfg.Workers,
		QueueSize:    cfg.AcceptQueue,
		MaxConns:     int64(cfg.MaxConns),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	addr := net.JoinHostPort("", cfg.Port)
	logger.Infof("Running on %s", addr)
	return srv.ListenAndServe(ctx, addr)
}
