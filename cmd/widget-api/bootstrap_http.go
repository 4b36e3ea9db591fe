package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/goliatone/go-widget-auth"
	"github.com/goliatone/go-widget-auth/api"
	"github.com/goliatone/go-widget-auth/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

func buildHTTPApp(cfg *config.Config, logger *auth.ZapLogger, opts api.Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "widget-api",
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(api.StatusBody{Status: "fail", Message: fe.Message})
			}
			logger.Error("unhandled error", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(api.StatusBody{Status: "fail", Message: "Internal server error."})
		},
	})
	app.Use(recover.New())

	api.Register(app, opts)
	return app
}

func serveHTTP(app *fiber.App, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("http listen", zap.String("addr", cfg.HTTP.Addr()))
	return app.Listen(cfg.HTTP.Addr())
}

// buildMetricsServer exposes /metrics and /healthz, nil when metrics are disabled
func buildMetricsServer(cfg *config.Config, reg *prometheus.Registry, db *bun.DB) *http.Server {
	if !cfg.Metrics.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func serveMetrics(srv *http.Server, logger *zap.Logger) {
	logger.Info("metrics listen", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics serve", zap.Error(err))
	}
}
