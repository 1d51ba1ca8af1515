package model

import "time"

// Settings is the single branding/notification configuration row.
type Settings struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	AppName         string    `gorm:"type:varchar(100);not null;default:'TI Inventory'" json:"app_name"`
	LogoURL         string    `gorm:"type:text" json:"logo_url"`
	PrimaryColor    string    `gorm:"type:varchar(7);default:'#0ea5e9'" json:"primary_color"`
	AlertEmail      string    `gorm:"type:varchar(255)" json:"alert_email"`
	AlertStockLevel int       `gorm:"not null;default:5" json:"alert_stock_level"`
	WebhookTeams    string    `gorm:"type:text" json:"webhook_teams"`
	WebhookSlack    string    `gorm:"type:text" json:"webhook_slack"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DefaultSettings returns the values a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{
		AppName:         "TI Inventory",
		PrimaryColor:    "#0ea5e9",
		AlertStockLevel: DefaultMinStock,
	}
}
