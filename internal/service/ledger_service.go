package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"it-inventory/internal/model"
	"it-inventory/internal/repository"
	"it-inventory/internal/ws"
	"it-inventory/pkg/config"
	"it-inventory/pkg/metrics"

	"go.uber.org/zap"
)

// Notifier delivers low-stock events. Implementations must not block the caller
// and must swallow delivery failures.
type Notifier interface {
	Notify(ctx context.Context, event model.LowStockEvent, settings model.Settings)
}

// Broadcaster pushes realtime updates to connected dashboards.
type Broadcaster interface {
	Publish(msg ws.Message)
}

// Actor is the authenticated user performing a write.
type Actor struct {
	UserID   uint
	Username string
}

func (a Actor) wsActor() *ws.Actor {
	if a.UserID == 0 && a.Username == "" {
		return nil
	}
	return &ws.Actor{ID: a.UserID, Username: a.Username}
}

// LedgerPolicy selects the behavior for the two debatable ledger cases.
type LedgerPolicy struct {
	// RejectOversell fails outbound movements larger than stock instead of clamping at zero.
	RejectOversell bool
	// RecordOrphans keeps the transaction record when the item disappears before its stock is adjusted.
	RecordOrphans bool
}

func PolicyFromConfig(cfg *config.Config) LedgerPolicy {
	return LedgerPolicy{
		RejectOversell: cfg.OversellPolicy == config.OversellReject,
		RecordOrphans:  cfg.MissingItemPolicy == config.MissingItemRecord,
	}
}

type CreateTransactionRequest struct {
	ItemID        uint                  `json:"item_id" validate:"required"`
	Quantity      int                   `json:"quantity" validate:"gte=1,lte=2147483647"`
	Type          model.TransactionType `json:"type" validate:"required,oneof=in out"`
	TicketNumber  string                `json:"ticket_number" validate:"max=255"`
	RequesterName string                `json:"requester_name" validate:"max=255"`
	Department    string                `json:"department" validate:"max=255"`
}

type LedgerService interface {
	// ApplyTransaction records a movement and adjusts the item's stock in one unit of work.
	// settings is the snapshot used for low-stock notification destinations.
	ApplyTransaction(ctx context.Context, req *CreateTransactionRequest, settings model.Settings, actor Actor) (*model.Transaction, error)
	// ListTransactions returns every transaction with its item, newest first.
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	GetTransaction(ctx context.Context, id uint) (*model.Transaction, error)
}

type ledgerService struct {
	transactor repository.Transactor
	txRepo     repository.TransactionRepository
	notifier   Notifier
	hub        Broadcaster
	policy     LedgerPolicy
	log        *zap.Logger
}

func NewLedgerService(transactor repository.Transactor, txRepo repository.TransactionRepository, notifier Notifier, hub Broadcaster, policy LedgerPolicy, log *zap.Logger) LedgerService {
	return &ledgerService{
		transactor: transactor,
		txRepo:     txRepo,
		notifier:   notifier,
		hub:        hub,
		policy:     policy,
		log:        log.Named("ledger"),
	}
}

func (s *ledgerService) ApplyTransaction(ctx context.Context, req *CreateTransactionRequest, settings model.Settings, actor Actor) (*model.Transaction, error) {
	if err := validate(req); err != nil {
		metrics.TransactionsRejectedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	record := &model.Transaction{
		ItemID:        req.ItemID,
		Quantity:      req.Quantity,
		Type:          req.Type,
		TicketNumber:  req.TicketNumber,
		RequesterName: req.RequesterName,
		Department:    req.Department,
		CreatedBy:     actor.Username,
	}
	if actor.UserID != 0 {
		uid := actor.UserID
		record.CreatedByUserID = &uid
	}

	var after *model.Item
	var clamped bool
	err := s.transactor.WithinTransaction(ctx, func(items repository.ItemRepository, txs repository.TransactionRepository) error {
		// A. Resolve the item before writing anything
		item, err := items.FindByID(ctx, req.ItemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("load item: %w", err)
		}
		record.ItemName = item.Name
		record.ItemCategory = item.Category

		// B. Persist the movement first; the row's foreign key pins the item until commit
		if err := txs.Create(ctx, record); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		// C. Atomic stock adjustment
		adjusted, wasClamped, err := items.AdjustStock(ctx, item.ID, req.Type.Delta(req.Quantity), !s.policy.RejectOversell)
		switch {
		case err == nil:
			after, clamped = adjusted, wasClamped
		case errors.Is(err, repository.ErrInsufficientStock):
			return ErrInsufficientStock
		case errors.Is(err, repository.ErrStockOverflow):
			return &ValidationError{Field: "quantity", Tag: "lte", Param: strconv.Itoa(model.MaxStock - item.Stock)}
		case errors.Is(err, repository.ErrNotFound):
			if !s.policy.RecordOrphans {
				return ErrItemNotFound
			}
			s.log.Warn("item vanished before stock adjustment, keeping transaction without effect",
				zap.Uint("item_id", req.ItemID),
				zap.Uint("transaction_id", record.ID))
		default:
			return fmt.Errorf("adjust stock: %w", err)
		}
		return nil
	})
	if err != nil {
		reason := rejectReason(err)
		metrics.TransactionsRejectedTotal.WithLabelValues(reason).Inc()
		if reason == "internal" {
			s.log.Error("apply transaction failed", zap.Uint("item_id", req.ItemID), zap.Error(err))
		}
		return nil, err
	}

	metrics.TransactionsTotal.WithLabelValues(string(req.Type)).Inc()
	if clamped {
		metrics.StockClampedTotal.Inc()
		s.log.Info("outbound quantity exceeded stock, clamped at zero",
			zap.Uint("item_id", req.ItemID),
			zap.Uint("transaction_id", record.ID),
			zap.Int("quantity", req.Quantity))
	}

	if after == nil {
		return record, nil
	}
	record.Item = after

	s.publishTransaction(record, after, actor)

	if req.Type == model.TxOut && after.IsLowStock() {
		event := model.LowStockEvent{
			ItemID:        after.ID,
			ItemName:      after.Name,
			Category:      after.Category,
			Stock:         after.Stock,
			MinStock:      after.MinStock,
			TransactionID: record.ID,
			TicketNumber:  record.TicketNumber,
			RequesterName: record.RequesterName,
			OccurredAt:    time.Now(),
		}
		metrics.LowStockEventsTotal.Inc()
		s.notifier.Notify(ctx, event, settings)
		s.hub.Publish(ws.Message{
			Type:    ws.TypeStockUpdate,
			Action:  "low_stock",
			Data:    event,
			Message: fmt.Sprintf("'%s' reached a critical level of %d units", after.Name, after.Stock),
		})
	}

	return record, nil
}

func (s *ledgerService) publishTransaction(record *model.Transaction, item *model.Item, actor Actor) {
	verb := "added"
	if record.Type == model.TxOut {
		verb = "removed"
	}
	s.hub.Publish(ws.Message{
		Type:   ws.TypeStockUpdate,
		Action: "transaction_created",
		Data: map[string]interface{}{
			"transaction": record,
			"new_stock":   item.Stock,
		},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s %s %d units of '%s' (%s)", displayName(actor), verb, record.Quantity, item.Name, record.Type),
	})
}

func rejectReason(err error) string {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return "validation"
	case errors.Is(err, ErrItemNotFound):
		return "not_found"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "internal"
	}
}

func (s *ledgerService) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	return s.txRepo.FindAll(ctx)
}

func (s *ledgerService) GetTransaction(ctx context.Context, id uint) (*model.Transaction, error) {
	tx, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}
