package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"it-inventory/internal/model"
	"it-inventory/internal/repository"
	"it-inventory/pkg/config"
	"it-inventory/pkg/database"
	applog "it-inventory/pkg/logger"
)

func main() {
	username := flag.String("username", "", "user to reset (defaults to ADMIN_USERNAME)")
	password := flag.String("password", "", "new password (defaults to ADMIN_PASSWORD)")
	flag.Parse()

	if err := run(*username, *password); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(username, password string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if username == "" {
		username = cfg.AdminUsername
	}
	switch {
	case password == "":
		password = cfg.AdminPassword
	case len(password) < 6:
		return fmt.Errorf("password must be at least 6 characters")
	}

	log, err := applog.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	users := repository.NewUserRepo(db)

	user, err := users.FindByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("user %s not found: %w", username, err)
	}

	var hashed model.User
	if err := hashed.SetPassword(password); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := users.UpdatePassword(ctx, user.ID, hashed.Password); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	// Existing sessions end with the old password.
	if err := users.UpdateTokenVersion(ctx, user.ID, uuid.NewString()); err != nil {
		return fmt.Errorf("rotate sessions: %w", err)
	}

	log.Info("password reset", zap.String("username", username))
	return nil
}
