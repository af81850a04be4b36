package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"google.golang.org/grpc"

	"github.com/xtding233/gacha-sim/internal/banner"
	"github.com/xtding233/gacha-sim/internal/config"
	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/httpapi"
	"github.com/xtding233/gacha-sim/internal/rpc"
	"github.com/xtding233/gacha-sim/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	loader := banner.NewLoader(cfg.ConfigDir)
	// fail fast on a broken default banner
	if _, err := loader.Load(banner.DefaultName, nil); err != nil {
		logger.Error("default banner unusable", "dir", cfg.ConfigDir, "error", err)
		os.Exit(1)
	}

	var rngs func() gacha.RandomSource
	if cfg.Seed != nil {
		rngs = session.SeededRNGs(*cfg.Seed)
		logger.Info("using seeded rng", "seed", *cfg.Seed)
	}
	sessions := session.NewManager(loader, rngs, logger)

	watcher := banner.NewFileWatcher(loader.WatchPaths, cfg.WatchInterval, sessions.Reload)
	watcher.Start()
	defer watcher.Stop()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(httpapi.RequestIDMiddleware())
	e.Use(httpapi.LoggingMiddleware(logger))
	httpapi.NewHandler(sessions, loader).Register(e)

	gs := grpc.NewServer(grpc.UnaryInterceptor(rpc.LoggingInterceptor(logger)))
	rpc.Register(gs, rpc.NewServer(sessions))

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Error("grpc listen", "addr", cfg.GRPCAddr, "error", err)
		os.Exit(1)
	}
	go func() {
		logger.Info("starting grpc server", "addr", cfg.GRPCAddr)
		if err := gs.Serve(lis); err != nil {
			logger.Error("grpc server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	gs.GracefulStop()
}
