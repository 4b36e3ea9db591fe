package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-widget-auth"
	"github.com/goliatone/go-widget-auth/api"
	"github.com/goliatone/go-widget-auth/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad(configPath)

	logger, err := initLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting widget-api", zap.String("env", cfg.Env))

	alog := auth.NewZapLogger(logger)

	db, err := initDB(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	store, closeStore, err := initRevocationStore(rootCtx, cfg, db)
	if err != nil {
		logger.Fatal("revocation store", zap.Error(err))
	}
	defer closeStore()
	logger.Info("revocation store ready", zap.String("backend", cfg.Revocation.Backend))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := auth.NewMetrics(reg)
	if err != nil {
		logger.Fatal("metrics", zap.Error(err))
	}

	tokens := auth.NewTokenServiceFromConfig(cfg, store,
		auth.WithTokenMetrics(metrics),
		auth.WithTokenLogger(alog.Named("tokens")),
	)

	authenticator := auth.NewAuthenticator(tokens,
		auth.WithAuthScheme(cfg.GetAuthScheme()),
		auth.WithDecisionRecorder(metrics),
		auth.WithAuthenticatorLogger(alog.Named("authenticator")),
	)

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	activity := auditSink(logger)
	provider := auth.NewUserProvider(repo.Users()).WithLogger(alog.Named("provider"))

	register := auth.NewRegisterUserHandler(repo, tokens, activity, alog.Named("register"))
	if err := bootstrapAdmin(rootCtx, cfg, register, logger); err != nil {
		logger.Fatal("bootstrap admin", zap.Error(err))
	}

	app := buildHTTPApp(cfg, alog, api.Options{
		Logger:        alog.Named("api"),
		Repo:          repo,
		Tokens:        tokens,
		Authenticator: authenticator,
		Register:      register,
		Login:         auth.NewLoginUserHandler(provider, tokens, activity, alog.Named("login")),
		Logout:        auth.NewLogoutUserHandler(tokens, activity, alog.Named("logout")),
		UseHashid:     cfg.Auth.UseHashid,
		BaseURL:       cfg.HTTP.BaseURL,
		ContextKey:    cfg.GetContextKey(),
	})

	if pruner, ok := store.(auth.RevocationPruner); ok {
		startPruner(rootCtx, pruner, logger, cfg.Revocation.PruneInterval)
	}

	metricsSrv := buildMetricsServer(cfg, reg, db)
	if metricsSrv != nil {
		go serveMetrics(metricsSrv, logger)
	}

	httpErrCh := make(chan error, 1)
	go func() { httpErrCh <- serveHTTP(app, cfg, logger) }()

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal", zap.String("reason", "context canceled"))
	case err := <-httpErrCh:
		if err != nil {
			logger.Error("http serve", zap.Error(err))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shCtx)
	}

	logger.Info("bye")
}

// startPruner periodically drops revocation entries whose token has expired
func startPruner(ctx context.Context, pruner auth.RevocationPruner, logger *zap.Logger, period time.Duration) {
	if period <= 0 {
		return
	}

	go func() {
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				n, err := pruner.Prune(ctx, time.Now())
				if err != nil {
					logger.Error("revocation prune", zap.Error(err))
					continue
				}
				if n > 0 {
					logger.Debug("revocation pruned", zap.Int("entries", n))
				}
			}
		}
	}()
}
