package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"it-inventory/internal/service"
)

type TransactionHandler struct {
	ledger   service.LedgerService
	settings service.SettingsService
	log      *zap.Logger
}

func NewTransactionHandler(ledger service.LedgerService, settings service.SettingsService, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{ledger: ledger, settings: settings, log: log}
}

// CreateTransaction records a stock movement
// POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var req service.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	settings, err := h.settings.GetSettings(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}

	tx, err := h.ledger.ApplyTransaction(c.UserContext(), &req, *settings, actor(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tx)
}

// GetTransactions returns the full history, newest first
// GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	transactions, err := h.ledger.ListTransactions(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(transactions)
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	tx, err := h.ledger.GetTransaction(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(tx)
}
