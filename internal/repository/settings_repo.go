package repository

import (
	"context"
	"errors"

	"it-inventory/internal/model"

	"gorm.io/gorm"
)

type SettingsRepository interface {
	// Get returns the settings row, creating it with defaults when missing.
	Get(ctx context.Context) (*model.Settings, error)
	Update(ctx context.Context, fields map[string]interface{}) (*model.Settings, error)
}

type settingsRepo struct {
	db *gorm.DB
}

func NewSettingsRepo(db *gorm.DB) SettingsRepository {
	return &settingsRepo{db}
}

func (r *settingsRepo) Get(ctx context.Context) (*model.Settings, error) {
	var settings model.Settings
	err := r.db.WithContext(ctx).Order("id ASC").First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = model.DefaultSettings()
		if err := r.db.WithContext(ctx).Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepo) Update(ctx context.Context, fields map[string]interface{}) (*model.Settings, error) {
	current, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return current, nil
	}
	if err := r.db.WithContext(ctx).Model(current).Updates(fields).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx)
}
