package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"pollchat/internal/config"
	"pollchat/internal/database"
	"pollchat/internal/handler"
	"pollchat/internal/service"
	"pollchat/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  .env file not found, using environment only: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	db, err := database.Init(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		logger.Info("Closing database...")
		_ = database.Close(db)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.New(db, logger)
	hub := handler.NewHub(logger, cfg.AllowedOrigins)
	svc := service.New(logger, st, hub)
	h := handler.New(logger, svc, st, hub, cfg)

	// WebSocket ブロードキャスターを開始
	go hub.Run(ctx)

	// CORS対応
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		MaxAge:           300,
		AllowCredentials: false,
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           c.Handler(h.SetupRouter()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Println("========================================")
	fmt.Println("  Poll Chat API Server")
	fmt.Println("========================================")
	fmt.Printf("  Environment: %s\n", cfg.Env)
	fmt.Printf("  Server: http://localhost:%s\n", cfg.ServerPort)
	fmt.Printf("  WebSocket: ws://localhost:%s/ws\n", cfg.ServerPort)
	if cfg.DBName != "" {
		fmt.Printf("  Database: %s@%s:%s/%s (tls=%t)\n", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSL)
	}
	fmt.Printf("  Allowed Origins: %v\n", cfg.AllowedOrigins)
	fmt.Println("========================================")

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 Server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: config.ParseLevel(cfg.LogLevel)}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
