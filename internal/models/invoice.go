package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus enumerates the invoice lifecycle.
type InvoiceStatus string

const (
	StatusDraft   InvoiceStatus = "DRAFT"
	StatusSent    InvoiceStatus = "SENT"
	StatusPaid    InvoiceStatus = "PAID"
	StatusOverdue InvoiceStatus = "OVERDUE"
)

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// Invoicing models. TotalAmount is derived: it always equals the decimal sum
// of the items' line totals. InvoiceNumber is dense and monotonic per user,
// claimed from InvoiceSequence inside the creation transaction.
type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"not null;index:idx_user_number,priority:1" json:"userId"`
	User          User            `gorm:"foreignKey:UserID" json:"-"`
	CustomerID    uint            `gorm:"not null;index" json:"customerId"`
	Customer      Customer        `gorm:"foreignKey:CustomerID" json:"customer"`
	InvoiceNumber string          `gorm:"size:12;not null;index:idx_user_number,unique,priority:2" json:"invoiceNumber"`
	Status        InvoiceStatus   `gorm:"size:10;not null" json:"status"`
	DueDate       time.Time       `gorm:"not null" json:"dueDate"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	Items         []InvoiceItem   `gorm:"foreignKey:InvoiceID" json:"items"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// InvoiceItem is one priced row. ProductID is nil for custom/free-text rows.
// LineTotal is derived = Quantity x UnitPrice in exact decimal.
type InvoiceItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	InvoiceID   uint            `gorm:"not null;index" json:"invoiceId"`
	ProductID   *uint           `json:"productId"`
	Description string          `gorm:"not null" json:"description"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"lineTotal"`
}

// InvoiceSequence holds the next invoice number per user. Claiming a number
// increments the row atomically so concurrent creations serialize on the row
// lock instead of racing a count query.
type InvoiceSequence struct {
	UserID     uint  `gorm:"primaryKey"`
	NextNumber int64 `gorm:"not null;default:1"`
}
