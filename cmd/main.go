package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/HakiMohamed/LocationsGuard/config"
	"github.com/HakiMohamed/LocationsGuard/db"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/fingerprint"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/handler"
	repo "github.com/HakiMohamed/LocationsGuard/internal/auth/repository/postgres"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/revocation"
	"github.com/HakiMohamed/LocationsGuard/internal/auth/service"
	"github.com/HakiMohamed/LocationsGuard/internal/notify"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cfg := config.Load()

	ctx := context.Background()
	dbPool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	registry := revocation.NewRegistry(time.Duration(cfg.RevocationRetentionMin) * time.Minute)
	defer registry.Close()

	mailer, err := notify.NewSMTPMailer(cfg, logger)
	if err != nil {
		logger.Error("mailer setup failed", "error", err)
		os.Exit(1)
	}
	sms := notify.NewTwilioSender(cfg, logger)

	userRepo := repo.NewUserRepository(dbPool)
	fingerprints := fingerprint.NewEngine()
	tokenService := service.NewTokenService(cfg)
	deviceService := service.NewDeviceService(userRepo, fingerprints)
	userService := service.NewUserService(userRepo, tokenService, deviceService, registry, mailer, logger, cfg)
	verificationService := service.NewVerificationService(userRepo, tokenService, mailer, sms, logger, cfg)
	authHandler := handler.NewAuthHandler(userService, deviceService, verificationService, tokenService)

	app := fiber.New()
	handler.RegisterRoutes(app, authHandler, tokenService, registry)

	logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
