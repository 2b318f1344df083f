package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"homehold/internal/audit"
	audithandler "homehold/internal/audit/handler"
	auditproducer "homehold/internal/audit/producer"
	auditrepo "homehold/internal/audit/repository"
	"homehold/internal/bootstrap"
	bootstraphandler "homehold/internal/bootstrap/handler"
	bootstraprepo "homehold/internal/bootstrap/repository"
	"homehold/internal/config"
	"homehold/internal/db"
	healthhandler "homehold/internal/health/handler"
	"homehold/internal/logging"
	"homehold/internal/nettrust"
	policyrepo "homehold/internal/policy/repository"
	"homehold/internal/policy/resolver"
	"homehold/internal/security"
	"homehold/internal/server"
	"homehold/internal/server/middleware"
	sessionhandler "homehold/internal/session/handler"
	"homehold/internal/session/janitor"
	sessionrepo "homehold/internal/session/repository"
	sessionservice "homehold/internal/session/service"
	"homehold/internal/telemetry/otel"
)

const kioskRole = "kiosk"

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}
	pool, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db open", zap.Error(err))
	}
	defer pool.Close()

	providers, err := otel.NewProviders(context.Background(), cfg.OTLPEndpoint, "homehold", false)
	if err != nil {
		logger.Fatal("otel setup", zap.Error(err))
	}
	providers.SetGlobal()

	producer, err := auditproducer.NewKafkaProducer(cfg.AuditKafkaBrokersList(), cfg.AuditKafkaTopic)
	if err != nil {
		logger.Fatal("kafka producer", zap.Error(err))
	}
	auditStore := auditrepo.NewPostgresRepository(pool)
	auditLog := audit.NewLogger(auditStore, producer, logger)

	sessions := sessionservice.NewService(sessionrepo.NewPostgresRepository(pool))

	rules := resolver.New(policyrepo.NewPostgresRepository(pool), cfg.RuleCachePeriod())
	defer rules.Stop()

	// The deployment's network trust classifier plugs in here. Until a real
	// one is wired, every request is treated as non-local: local-only
	// allows and the bootstrap gate fail closed.
	trust := nettrust.Fixed(false)

	hasher := security.NewHasher(0)
	bootstrapSvc := bootstrap.NewService(
		bootstraprepo.NewPostgresRepository(pool),
		sessions, hasher, cfg.BootstrapSecretHash, "admin", cfg.SessionTTL(),
	)

	loader := middleware.NewSessionLoader(sessions, cfg.SessionCookieName, cfg.SessionTTL(), cfg.KioskSessionTTL(), logger)
	authorizer := middleware.NewAuthorizer(rules, trust, auditLog, logger)

	router := server.NewRouter(server.Deps{
		SessionLoader: loader,
		Authorizer:    authorizer,
		Sessions: sessionhandler.NewHTTP(
			sessions, auditLog, logger,
			cfg.SessionCookieName, cfg.SessionTTL(), cfg.KioskSessionTTL(), kioskRole,
		),
		Audit:     audithandler.NewHTTP(auditStore, logger),
		Bootstrap: bootstraphandler.NewHTTP(bootstrapSvc, trust, auditLog, logger, cfg.SessionCookieName),
		Health:    healthhandler.NewHTTP(pool),
		Logger:    logger,
	})

	sweep := janitor.New(sessions, cfg.JanitorPeriod(), logger)
	sweep.Start(context.Background())

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	sweep.Stop()

	// Let fire-and-forget audit emits drain before the producer closes.
	time.Sleep(audit.ShutdownDrainDuration)
	if producer != nil {
		_ = producer.Close()
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Warn("otel shutdown", zap.Error(err))
	}
	logger.Info("stopped")
}
