package model

import "time"

type TransactionType string

const (
	TxIn  TransactionType = "in"
	TxOut TransactionType = "out"
)

// Delta returns the signed stock change for quantity.
func (t TransactionType) Delta(quantity int) int {
	if t == TxOut {
		return -quantity
	}
	return quantity
}

// Transaction is an immutable record of a stock movement.
type Transaction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ItemID        uint            `gorm:"not null;index" json:"item_id"`
	Item          *Item           `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT" json:"item,omitempty"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	Type          TransactionType `gorm:"type:varchar(10);not null" json:"type"`
	TicketNumber  string          `gorm:"type:varchar(255)" json:"ticket_number"`
	RequesterName string          `gorm:"type:varchar(255)" json:"requester_name"`
	Department    string          `gorm:"type:varchar(255)" json:"department"`

	// Snapshot of the item at creation time, kept for history views.
	ItemName     string `gorm:"type:varchar(255)" json:"item_name"`
	ItemCategory string `gorm:"type:varchar(100)" json:"item_category"`

	// User tracking
	CreatedByUserID *uint     `json:"created_by_user_id,omitempty"`
	CreatedBy       string    `gorm:"type:varchar(100)" json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}
