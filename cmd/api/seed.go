package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"it-inventory/internal/model"
	"it-inventory/internal/repository"
	"it-inventory/pkg/config"
)

var sampleItems = []model.Item{
	{Name: "Mouse Sem Fio Logitech", Category: "Periféricos", Stock: 12, MinStock: 5},
	{Name: "Teclado Mecânico Redragon", Category: "Periféricos", Stock: 4, MinStock: 5},
	{Name: "Monitor Dell 24", Category: "Monitores", Stock: 8, MinStock: 3},
}

// seed creates the admin user, the settings row and, on an empty catalog, a few sample items.
func seed(ctx context.Context, cfg *config.Config, log *zap.Logger, users repository.UserRepository, settings repository.SettingsRepository, items repository.ItemRepository) error {
	_, err := users.FindByUsername(ctx, cfg.AdminUsername)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		admin := &model.User{Username: cfg.AdminUsername}
		if err := admin.SetPassword(cfg.AdminPassword); err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		if err := users.Create(ctx, admin); err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}
		log.Info("admin user created", zap.String("username", admin.Username))
	case err != nil:
		return fmt.Errorf("find admin user: %w", err)
	}

	if _, err := settings.Get(ctx); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	if !cfg.SeedSampleItems {
		return nil
	}
	existing, err := items.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, sample := range sampleItems {
		item := sample
		if err := items.Create(ctx, &item); err != nil {
			return fmt.Errorf("seed item %q: %w", item.Name, err)
		}
	}
	log.Info("sample items seeded", zap.Int("count", len(sampleItems)))
	return nil
}
