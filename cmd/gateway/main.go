package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/gateway"
	"storefront/internal/logger"
	"storefront/internal/notify"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	configFile := flag.String("config", config.GetEnvOrDefault("STOREFRONT_CONFIG", ""), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.NewWithWriter(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	logger.SetDefault(log)

	slog.Info("Starting storefront gateway",
		"port", cfg.Server.Port,
		"backend", cfg.API.BaseURL,
		"storage", cfg.Storage.Driver,
	)

	a, err := app.New(cfg, log, app.WithNotifier(notify.NewLogNotifier(log)))
	if err != nil {
		slog.Error("Failed to build application", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	if err := a.Init(initCtx); err != nil {
		slog.Warn("Starting without a restored session", "error", err)
	}
	cancelInit()

	router := gateway.SetupRouter(a, cfg.Server.AllowOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Storefront gateway listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down storefront gateway")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Storefront gateway stopped")
}
