package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"it-inventory/internal/service"
	"it-inventory/internal/ws"
)

type SettingsHandler struct {
	settings service.SettingsService
	hub      service.Broadcaster
	log      *zap.Logger
}

func NewSettingsHandler(settings service.SettingsService, hub service.Broadcaster, log *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, hub: hub, log: log}
}

// GetSettings is public so the login page can render branding
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.settings.GetSettings(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(settings)
}

func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var req service.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	settings, err := h.settings.UpdateSettings(c.UserContext(), &req)
	if err != nil {
		return writeError(c, h.log, err)
	}

	a := actor(c)
	h.hub.Publish(ws.Message{
		Type:   "settings_update",
		Action: "settings_updated",
		Data:   settings,
		User:   &ws.Actor{ID: a.UserID, Username: a.Username},
	})
	return c.JSON(settings)
}
