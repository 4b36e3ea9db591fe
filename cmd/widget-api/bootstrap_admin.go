package main

import (
	"context"

	"github.com/goliatone/go-widget-auth"
	"github.com/goliatone/go-widget-auth/config"
	"go.uber.org/zap"
)

// bootstrapAdmin registers the configured administrator once
func bootstrapAdmin(ctx context.Context, cfg *config.Config, register *auth.RegisterUserHandler, logger *zap.Logger) error {
	if cfg.Auth.AdminEmail == "" || cfg.Auth.AdminPassword == "" {
		return nil
	}

	err := register.Execute(ctx, auth.RegisterUserMessage{
		Email:     cfg.Auth.AdminEmail,
		Password:  cfg.Auth.AdminPassword,
		Admin:     true,
		UseHashid: cfg.Auth.UseHashid,
	})
	if auth.HasTextCode(err, auth.TextCodeEmailRegistered) {
		logger.Debug("admin already registered", zap.String("email", cfg.Auth.AdminEmail))
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("admin registered", zap.String("email", cfg.Auth.AdminEmail))
	return nil
}
