package model

import "time"

// LowStockEvent is raised when an outbound movement leaves an item at or below its threshold.
// It is not persisted.
type LowStockEvent struct {
	ItemID        uint      `json:"item_id"`
	ItemName      string    `json:"item_name"`
	Category      string    `json:"category"`
	Stock         int       `json:"stock"`
	MinStock      int       `json:"min_stock"`
	TransactionID uint      `json:"transaction_id"`
	TicketNumber  string    `json:"ticket_number,omitempty"`
	RequesterName string    `json:"requester_name,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
