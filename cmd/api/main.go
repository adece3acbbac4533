package main

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spinach-backend/cmd"
	"spinach-backend/internal/api"
	"spinach-backend/internal/config"
	"spinach-backend/internal/core"
	"spinach-backend/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func createServer(cfg config.Config, models *core.Models, templates *template.Template) *http.Server {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	api.NewPredictionService(models, cfg.MaxUploadBytes).AddRoutes(r)
	api.NewDashboardService(templates, config.LoadFirebaseConfig(), cfg.StaticDir).AddRoutes(r)
	r.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}
}

func main() {
	cmd.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	logging.Init(logging.ParseLevel(cfg.LogLevel))

	if err := cmd.SyncModelArtifacts(context.Background(), cfg); err != nil {
		log.Fatalf("FATAL: error syncing model artifacts: %v", err)
	}

	if err := core.InitOnnxRuntime(cfg.OnnxRuntimeDylib); err != nil {
		log.Fatalf("FATAL: could not init ONNX Runtime: %v", err)
	}
	defer func() {
		if err := core.DestroyOnnxRuntime(); err != nil {
			slog.Error("error destroying onnx env", "error", err)
		}
	}()

	models, err := core.LoadModels(core.NewModelLoaders(), cfg.CnnModelPath(), cfg.MlModelPath())
	if err != nil {
		log.Fatalf("FATAL: error loading models from %s: %v", cfg.ModelDir, err)
	}
	defer models.Release()

	templates, err := api.LoadDashboardTemplates(cfg.TemplateDir)
	if err != nil {
		log.Fatalf("FATAL: error loading dashboard template: %v", err)
	}

	server := createServer(cfg, models, templates)

	idle := make(chan struct{})
	go func() {
		defer close(idle)
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server listening", "port", cfg.Port, "model_dir", cfg.ModelDir)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("could not listen on %d: %v", cfg.Port, err)
	}
	<-idle

	slog.Info("server stopped")
}
