package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs a unit of work against repositories bound to one database transaction.
// Returning an error from fn rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(items ItemRepository, txs TransactionRepository) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db}
}

func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(items ItemRepository, txs TransactionRepository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewItemRepo(tx), NewTransactionRepo(tx))
	})
}
