package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product catalog entry. SKU is unique per owning user via the composite
// index; unit price is stored as a fixed-precision decimal so invoice math
// never touches binary floating point.
type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"not null;index:idx_user_sku,priority:1" json:"userId"`
	User          User            `gorm:"foreignKey:UserID" json:"-"`
	Name          string          `gorm:"not null" json:"name"`
	SKU           string          `gorm:"size:40;not null;index:idx_user_sku,unique,priority:2" json:"sku"`
	Description   string          `json:"description"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	StockQuantity int             `gorm:"not null;default:0" json:"stockQuantity"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
