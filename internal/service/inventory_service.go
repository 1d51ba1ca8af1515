package service

import (
	"context"
	"errors"
	"fmt"

	"it-inventory/internal/model"
	"it-inventory/internal/repository"
	"it-inventory/internal/ws"

	"go.uber.org/zap"
)

type CreateItemRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Category string `json:"category" validate:"required,max=100"`
	Stock    int    `json:"stock" validate:"gte=0,lte=2147483647"`
	MinStock *int   `json:"min_stock" validate:"omitnil,gte=0,lte=2147483647"`
}

// UpdateItemRequest is a partial update. Stock is absent on purpose: it only moves through the ledger.
type UpdateItemRequest struct {
	Name     *string `json:"name" validate:"omitnil,min=1,max=255"`
	Category *string `json:"category" validate:"omitnil,min=1,max=100"`
	MinStock *int    `json:"min_stock" validate:"omitnil,gte=0,lte=2147483647"`
}

type InventoryService interface {
	CreateItem(ctx context.Context, req *CreateItemRequest, settings model.Settings, actor Actor) (*model.Item, error)
	UpdateItem(ctx context.Context, id uint, req *UpdateItemRequest, actor Actor) (*model.Item, error)
	DeleteItem(ctx context.Context, id uint, actor Actor) error
	GetItem(ctx context.Context, id uint) (*model.Item, error)
	GetAllItems(ctx context.Context) ([]model.Item, error)
	GetLowStockItems(ctx context.Context) ([]model.Item, error)
}

type inventoryService struct {
	itemRepo   repository.ItemRepository
	transactor repository.Transactor
	hub        Broadcaster
	log        *zap.Logger
}

func NewInventoryService(itemRepo repository.ItemRepository, transactor repository.Transactor, hub Broadcaster, log *zap.Logger) InventoryService {
	return &inventoryService{
		itemRepo:   itemRepo,
		transactor: transactor,
		hub:        hub,
		log:        log.Named("inventory"),
	}
}

func (s *inventoryService) CreateItem(ctx context.Context, req *CreateItemRequest, settings model.Settings, actor Actor) (*model.Item, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	// The install-wide alert level is only a default; each item keeps its own threshold.
	minStock := settings.AlertStockLevel
	if req.MinStock != nil {
		minStock = *req.MinStock
	}
	if minStock < 0 {
		minStock = model.DefaultMinStock
	}

	item := &model.Item{
		Name:     req.Name,
		Category: req.Category,
		Stock:    req.Stock,
		MinStock: minStock,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.hub.Publish(ws.Message{
		Type:    ws.TypeStockUpdate,
		Action:  "item_created",
		Data:    item,
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s created item '%s'", displayName(actor), item.Name),
	})

	return item, nil
}

func (s *inventoryService) UpdateItem(ctx context.Context, id uint, req *UpdateItemRequest, actor Actor) (*model.Item, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.MinStock != nil {
		fields["min_stock"] = *req.MinStock
	}
	if len(fields) == 0 {
		return s.GetItem(ctx, id)
	}

	item, err := s.itemRepo.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.hub.Publish(ws.Message{
		Type:    ws.TypeStockUpdate,
		Action:  "item_updated",
		Data:    item,
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s updated item '%s'", displayName(actor), item.Name),
	})

	return item, nil
}

func (s *inventoryService) DeleteItem(ctx context.Context, id uint, actor Actor) error {
	var deleted *model.Item
	err := s.transactor.WithinTransaction(ctx, func(items repository.ItemRepository, txs repository.TransactionRepository) error {
		item, err := items.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		count, err := txs.CountByItem(ctx, id)
		if err != nil {
			return fmt.Errorf("count transactions: %w", err)
		}
		if count > 0 {
			return ErrItemHasTransactions
		}

		if err := items.Delete(ctx, id); err != nil {
			switch {
			case errors.Is(err, repository.ErrInUse):
				return ErrItemHasTransactions
			case errors.Is(err, repository.ErrNotFound):
				return ErrItemNotFound
			}
			return fmt.Errorf("delete item: %w", err)
		}
		deleted = item
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("item deleted", zap.Uint("item_id", id), zap.String("by", actor.Username))
	s.hub.Publish(ws.Message{
		Type:    ws.TypeStockUpdate,
		Action:  "item_deleted",
		Data:    map[string]interface{}{"id": id},
		User:    actor.wsActor(),
		Message: fmt.Sprintf("%s deleted item '%s'", displayName(actor), deleted.Name),
	})
	return nil
}

func (s *inventoryService) GetItem(ctx context.Context, id uint) (*model.Item, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *inventoryService) GetAllItems(ctx context.Context) ([]model.Item, error) {
	return s.itemRepo.FindAll(ctx)
}

func (s *inventoryService) GetLowStockItems(ctx context.Context) ([]model.Item, error) {
	return s.itemRepo.FindLowStock(ctx)
}

func displayName(a Actor) string {
	if a.Username == "" {
		return "system"
	}
	return a.Username
}
