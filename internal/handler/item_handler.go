package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"it-inventory/internal/service"
)

type ItemHandler struct {
	items    service.InventoryService
	settings service.SettingsService
	log      *zap.Logger
}

func NewItemHandler(items service.InventoryService, settings service.SettingsService, log *zap.Logger) *ItemHandler {
	return &ItemHandler{items: items, settings: settings, log: log}
}

func (h *ItemHandler) GetItems(c *fiber.Ctx) error {
	items, err := h.items.GetAllItems(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(items)
}

func (h *ItemHandler) GetLowStock(c *fiber.Ctx) error {
	items, err := h.items.GetLowStockItems(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(items)
}

func (h *ItemHandler) GetItem(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	item, err := h.items.GetItem(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(item)
}

func (h *ItemHandler) CreateItem(c *fiber.Ctx) error {
	var req service.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	settings, err := h.settings.GetSettings(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}

	item, err := h.items.CreateItem(c.UserContext(), &req, *settings, actor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *ItemHandler) UpdateItem(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var req service.UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	item, err := h.items.UpdateItem(c.UserContext(), id, &req, actor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(item)
}

func (h *ItemHandler) DeleteItem(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	if err := h.items.DeleteItem(c.UserContext(), id, actor(c)); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
