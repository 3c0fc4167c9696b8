// Bridge server - hosts the capture controller behind WebSocket, HTTP and gRPC health endpoints
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/screencapture/backend/platform/internal/bridge"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/capture"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/config"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/encoder"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/health"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/render"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/resilience"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/server"
	"github.com/GriffinCanCode/screencapture/backend/platform/internal/surface"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	renderer, err := render.New(cfg.Renderer)
	if err != nil {
		slog.Error("invalid renderer", "renderer", cfg.Renderer, "error", err)
		os.Exit(1)
	}
	if c, ok := renderer.(interface{ Close() }); ok {
		defer c.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	win := bridge.NewWindow(cfg.ViewportWidth, cfg.ViewportHeight)
	surfaces := surface.NewRegistry()

	var breakers *resilience.Set
	if cfg.UploadBreaker {
		breakers = resilience.NewSet(resilience.UploadConfig())
	}
	uploader := capture.NewUploader(capture.UploaderOptions{
		Timeout:  cfg.UploadTimeout,
		Origin:   cfg.UploadOrigin,
		Breakers: breakers,
	})

	acks := server.NewAcks()
	ctrl := capture.NewController(win, renderer, surfaces, encoder.New(), uploader, capture.Options{
		BusyPolicy: capture.BusyPolicy(cfg.BusyPolicy),
		OnResult:   acks.Deliver,
	})
	ctrl.Start(ctx)

	srv := server.New(win, ctrl, surfaces, acks, cfg)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("bridge server starting", "http", cfg.HTTPAddr, "grpc", cfg.GRPCAddr,
			"renderer", cfg.Renderer, "viewport", []int{cfg.ViewportWidth, cfg.ViewportHeight})
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.GRPCAddr != "" {
		hs := health.New(func() bool {
			w, h := win.InnerSize()
			return w > 0 && h > 0
		})
		g.Go(func() error { return hs.ListenAndServe(gctx, cfg.GRPCAddr) })
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", "error", err)
	}
	ctrl.Wait()
	slog.Info("shutdown complete", "surfaces_created", surfaces.Created())
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
