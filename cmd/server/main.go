package main

import (
	"net/http"

	"advice-app/internal/api/handlers"
	"advice-app/internal/app"
	"advice-app/internal/broadcast"
	"advice-app/internal/config"
	"advice-app/internal/logger"
	"advice-app/internal/metrics"
	"advice-app/internal/repository/postgres"
	adviceService "advice-app/internal/service/advice"
	"advice-app/internal/service/quota"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// .env is optional; real deployments use the environment directly
	if err := godotenv.Load(); err == nil {
		logger.Log.Debug("Loaded .env file")
	}

	appConfig, err := config.LoadConfig()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load configuration")
	}

	database, err := postgres.NewPostgresDB(appConfig.Database)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close()

	broadcaster, err := broadcast.NewRedisBroadcaster(appConfig.Redis)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize broadcaster")
	}
	defer broadcaster.Close()

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	appCfg := app.NewConfig(database, broadcaster, appConfig)
	quotaLedger := quota.NewLedger(database, appConfig.Advice.DailyLimit)
	service := adviceService.NewService(database, appConfig, quotaLedger, broadcaster)
	adviceHandlers := handlers.NewAdviceHandlers(appCfg, service, quotaLedger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		r.Get("/models", adviceHandlers.GetModelsHandler)
		r.Get("/usage", adviceHandlers.GetUsageHandler)

		r.Route("/subjects/{subjectID}/advice", func(r chi.Router) {
			r.Post("/", adviceHandlers.SubmitAdviceHandler)
			r.Get("/", adviceHandlers.GetAdviceHandler)
			r.Delete("/", adviceHandlers.DeleteAdviceHandler)
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	addr := ":" + appConfig.Server.Port
	logger.Log.WithField("addr", addr).Info("Server starting")
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Log.WithError(err).Fatal("Server failed")
	}
}
