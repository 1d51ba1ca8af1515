package model

import "math"

// DefaultMinStock is used when neither the request nor settings provide a threshold.
const DefaultMinStock = 5

// MaxStock is the largest value the INTEGER stock and quantity columns hold.
const MaxStock = math.MaxInt32

// Item is a trackable stock-keeping unit.
// Stock only changes through the ledger.
type Item struct {
	BaseModel
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Category string `gorm:"type:varchar(100);not null" json:"category"`
	Stock    int    `gorm:"not null;default:0" json:"stock"`
	MinStock int    `gorm:"not null;default:5" json:"min_stock"`
}

// IsLowStock reports whether stock is at or below the item's threshold.
func (i *Item) IsLowStock() bool {
	return i.Stock <= i.MinStock
}
