package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/striker104/QRT-meeting-in-the-middle/grpcapp"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/app"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/config"
	meettracing "github.com/striker104/QRT-meeting-in-the-middle/internal/infrastructures/db/tracing"
	grpcapi "github.com/striker104/QRT-meeting-in-the-middle/internal/transport/grpc"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/transport/http/handlers"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Log.Level)
	defer func() {
		_ = log.Sync()
	}()

	if cfg.Jaeger.Enabled {
		tp, err := meettracing.InitTracer(meettracing.Options{
			ServiceName: "meetpoint",
			Environment: cfg.Env,
			Collector:   cfg.Jaeger.Collector,
			SampleRatio: cfg.Jaeger.SampleRatio,
		})
		if err != nil {
			log.Fatal("failed to init tracer", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Warn("failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	log.Info("meetpoint starting",
		zap.String("http_addr", cfg.HTTP.Address()),
		zap.String("schedules_source", cfg.Schedules.Source),
	)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	application, err := app.New(initCtx, log, cfg, true)
	cancelInit()
	if err != nil {
		log.Fatal("failed to init application", zap.Error(err))
	}
	defer application.Close()

	plannerHandler := handlers.NewPlannerHandler(log, application.Service, cfg.HTTP.WriteTimeout)
	server := &http.Server{
		Addr:         cfg.HTTP.Address(),
		Handler:      handlers.NewRouter(log, plannerHandler),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	grpcApp := grpcapp.New(log, cfg.GRPC.Host, cfg.GRPC.Port, func(s *grpc.Server) {
		grpcapi.Register(s, log, application.Service, cfg.GRPC.Timeout)
	}, grpcapi.ServiceName)

	errCh := make(chan error, 2)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	go func() {
		errCh <- grpcApp.Run()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", zap.Error(err))
	}
	grpcApp.Stop()
}

func setupLogger(level string) *zap.Logger {
	zapLevel := parseLogLevel(level)
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	return log
}

func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
