package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/riskwatch/platform/pkg/assessment"
	"github.com/riskwatch/platform/pkg/common/config"
	"github.com/riskwatch/platform/pkg/common/logger"
	"github.com/riskwatch/platform/pkg/gateway/middleware"
	"github.com/riskwatch/platform/pkg/gateway/routes"
	"github.com/riskwatch/platform/pkg/observability/metrics"
	"github.com/riskwatch/platform/pkg/patientapi"
)

func main() {
	logger.Init("api-gateway")
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load configuration")
	}

	// A missing key must not stop the gateway; each request reports it.
	var source assessment.PatientSource
	client, err := patientapi.New(patientapi.ConfigFrom(cfg))
	if err != nil {
		logger.Log.WithError(err).Warn("patient API client not configured, remote calls will fail")
		source = patientapi.Unconfigured{Err: err}
	} else {
		source = client
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, closeDeps, err := assessment.Setup(ctx, cfg, source)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to set up assessment service")
	}
	defer closeDeps()

	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.Metrics)
	router.Use(middleware.CORS)
	router.Use(middleware.BodyLimit(cfg.MaxRequestBody))
	router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	middleware.Preflight(router)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	routes.NewPatientsHandler(source, cfg.FetchDefaultLimit, cfg.FetchDefaultMaxPages).Register(api)
	routes.NewScoringHandler().Register(api)
	routes.NewAssessmentsHandler(svc).Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("API Gateway started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	if cfg.AssessmentStoreEnabled && cfg.AssessmentRetention > 0 {
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := svc.Cleanup(ctx); err != nil {
						logger.Log.WithError(err).Warn("cleanup job failed")
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down API Gateway...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("API Gateway stopped")
}
