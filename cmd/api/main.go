package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/legacyvault/admin-trust/internal/api"
	"github.com/legacyvault/admin-trust/internal/core/service"
	"github.com/legacyvault/admin-trust/internal/infrastructure/config"
	mongodb "github.com/legacyvault/admin-trust/internal/infrastructure/db/mongo"
	redisdb "github.com/legacyvault/admin-trust/internal/infrastructure/db/redis"
	"github.com/legacyvault/admin-trust/internal/infrastructure/queue"
	"github.com/legacyvault/admin-trust/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not up yet; this is the one place stderr is used raw.
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Stores ---
	adminRepo := mongodb.NewAdminRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)
	denylist := redisdb.NewDenylist(rdb)

	// --- Core services ---
	writer := queue.NewAuditWriter(cfg.AuditWorkers, auditRepo, log)
	writer.Start(ctx)

	auditService := service.NewAuditService(auditRepo, writer, log)
	tokenService := service.NewTokenService([]byte(cfg.JWTSecret), denylist, log)
	limiter := service.NewLoginLimiter(log)
	limiter.Start(ctx)

	engine := service.NewPermissionEngine()
	authService := service.NewAuthService(adminRepo, tokenService, limiter, auditService, cfg.AllowedAdminDomains, log)
	validation := service.NewValidationService()

	e := api.NewRouter(api.Dependencies{
		DB:           db,
		Redis:        rdb,
		TokenService: tokenService,
		AuthService:  authService,
		AuditService: auditService,
		Validation:   validation,
		Engine:       engine,
		Log:          log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("admin trust service starting")
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("http server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
