package repository

import (
	"context"
	"errors"

	"it-inventory/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	FindAll(ctx context.Context) ([]model.Item, error)
	FindByID(ctx context.Context, id uint) (*model.Item, error)
	FindLowStock(ctx context.Context) ([]model.Item, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) (*model.Item, error)
	Delete(ctx context.Context, id uint) error
	// AdjustStock applies delta in a single statement. With clamp the result is
	// floored at zero and clamped reports whether the floor was hit; without it a
	// negative result fails with ErrInsufficientStock. A result above
	// model.MaxStock fails with ErrStockOverflow.
	AdjustStock(ctx context.Context, id uint, delta int, clamp bool) (item *model.Item, clamped bool, err error)
}

type itemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) ItemRepository {
	return &itemRepo{db}
}

func (r *itemRepo) Create(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepo) FindAll(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&items).Error
	return items, err
}

func (r *itemRepo) FindByID(ctx context.Context, id uint) (*model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *itemRepo) FindLowStock(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).
		Where("stock <= min_stock").
		Order("stock ASC, name ASC").
		Find(&items).Error
	return items, err
}

func (r *itemRepo) Update(ctx context.Context, id uint, fields map[string]interface{}) (*model.Item, error) {
	var item model.Item
	res := r.db.WithContext(ctx).
		Model(&item).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (r *itemRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Item{}, "id = ?", id)
	if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
		return ErrInUse
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// adjustedItem is the row returned by AdjustStock.
type adjustedItem struct {
	model.Item
	Clamped bool
}

func (r *itemRepo) AdjustStock(ctx context.Context, id uint, delta int, clamp bool) (*model.Item, bool, error) {
	// The CTE locks the row so the pre-update stock and the update agree.
	// Arithmetic runs in bigint so the overflow guard itself cannot overflow.
	query := `
		WITH prev AS (SELECT id, stock::bigint AS stock FROM items WHERE id = @id FOR UPDATE)
		UPDATE items AS i
		SET stock = GREATEST(prev.stock + @delta, 0), updated_at = NOW()
		FROM prev
		WHERE i.id = prev.id AND prev.stock + @delta <= @max`
	if !clamp {
		query += ` AND prev.stock + @delta >= 0`
	}
	query += `
		RETURNING i.*, (prev.stock + @delta < 0) AS clamped`

	var rows []adjustedItem
	res := r.db.WithContext(ctx).Raw(query, map[string]interface{}{
		"id":    id,
		"delta": delta,
		"max":   model.MaxStock,
	}).Scan(&rows)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if len(rows) == 0 {
		// Missing row, or one of the guards rejected the update.
		if _, err := r.FindByID(ctx, id); err != nil {
			return nil, false, err
		}
		if delta > 0 {
			return nil, false, ErrStockOverflow
		}
		return nil, false, ErrInsufficientStock
	}
	item := rows[0].Item
	return &item, rows[0].Clamped, nil
}
