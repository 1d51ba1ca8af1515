package service

import (
	"context"
	"fmt"
	"strings"

	"it-inventory/internal/model"
	"it-inventory/internal/repository"
)

// UpdateSettingsRequest is a partial update; nil fields are left untouched.
// An empty string clears the optional destinations and the logo.
type UpdateSettingsRequest struct {
	AppName         *string `json:"app_name" validate:"omitnil,min=1,max=100"`
	LogoURL         *string `json:"logo_url" validate:"omitnil,url"`
	PrimaryColor    *string `json:"primary_color" validate:"omitnil,hexcolor"`
	AlertEmail      *string `json:"alert_email" validate:"omitnil,email"`
	AlertStockLevel *int    `json:"alert_stock_level" validate:"omitnil,gte=0,lte=2147483647"`
	WebhookTeams    *string `json:"webhook_teams" validate:"omitnil,url"`
	WebhookSlack    *string `json:"webhook_slack" validate:"omitnil,url"`
}

type SettingsService interface {
	// GetSettings returns the current snapshot.
	GetSettings(ctx context.Context) (*model.Settings, error)
	UpdateSettings(ctx context.Context, req *UpdateSettingsRequest) (*model.Settings, error)
}

type settingsService struct {
	repo repository.SettingsRepository
}

func NewSettingsService(repo repository.SettingsRepository) SettingsService {
	return &settingsService{repo: repo}
}

func (s *settingsService) GetSettings(ctx context.Context) (*model.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, req *UpdateSettingsRequest) (*model.Settings, error) {
	fields := map[string]interface{}{}

	// Pull out clears before validation so "" never hits the url/email rules.
	check := *req
	clearable := []struct {
		column string
		value  **string
	}{
		{"logo_url", &check.LogoURL},
		{"alert_email", &check.AlertEmail},
		{"webhook_teams", &check.WebhookTeams},
		{"webhook_slack", &check.WebhookSlack},
	}
	for _, c := range clearable {
		if *c.value != nil && strings.TrimSpace(**c.value) == "" {
			fields[c.column] = ""
			*c.value = nil
		}
	}

	if err := validate(&check); err != nil {
		return nil, err
	}

	set := func(column string, v *string) {
		if v != nil {
			fields[column] = strings.TrimSpace(*v)
		}
	}
	set("app_name", check.AppName)
	set("logo_url", check.LogoURL)
	set("primary_color", check.PrimaryColor)
	set("alert_email", check.AlertEmail)
	set("webhook_teams", check.WebhookTeams)
	set("webhook_slack", check.WebhookSlack)
	if check.AlertStockLevel != nil {
		fields["alert_stock_level"] = *check.AlertStockLevel
	}

	settings, err := s.repo.Update(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return settings, nil
}
