package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/models"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DueDateLayout is the wire format for invoice due dates.
const DueDateLayout = "2006-01-02"

// InvoiceService encapsulates invoice business logic: item pricing, totals,
// numbering and status transitions. All queries are scoped to the owning
// user.
type InvoiceService struct {
	db *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService { return &InvoiceService{db: db} }

// ItemInput describes one requested line item. When ProductID is set,
// Description and UnitPrice default from the product unless supplied here.
type ItemInput struct {
	ProductID   *uint            `json:"productId"`
	Description string           `json:"description"`
	Quantity    int              `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unitPrice"`
}

// CreateInvoiceInput is the validated shape for invoice creation.
type CreateInvoiceInput struct {
	CustomerID uint        `json:"customerId"`
	DueDate    string      `json:"dueDate"`
	Items      []ItemInput `json:"items"`
}

// UpdateInvoiceInput mutates an existing invoice. Nil fields are left
// untouched; a non-nil Items replaces the whole item set and recomputes the
// total. The invoice number and status never change through Update.
type UpdateInvoiceInput struct {
	DueDate *string     `json:"dueDate"`
	Items   []ItemInput `json:"items"`
}

// statusTransitions is the whole state machine: DRAFT -> SENT -> PAID|OVERDUE.
// PAID and OVERDUE are terminal.
var statusTransitions = map[models.InvoiceStatus][]models.InvoiceStatus{
	models.StatusDraft:   {models.StatusSent},
	models.StatusSent:    {models.StatusPaid, models.StatusOverdue},
	models.StatusPaid:    {},
	models.StatusOverdue: {},
}

// CanTransition reports whether from -> to is an allowed status change.
func CanTransition(from, to models.InvoiceStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// buildItem validates one item input and prices it. Pure over its inputs
// plus the product lookup; prefix names the item in violation keys.
func buildItem(tx *gorm.DB, userID uint, in ItemInput, prefix string) (models.InvoiceItem, error) {
	var item models.InvoiceItem

	desc := strings.TrimSpace(in.Description)
	price := in.UnitPrice
	if in.ProductID != nil {
		var product models.Product
		if err := tx.Where("id = ? AND user_id = ?", *in.ProductID, userID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return item, &NotFoundError{Resource: "product", ID: *in.ProductID}
			}
			return item, err
		}
		if desc == "" {
			desc = product.Name
		}
		if price == nil {
			p := product.UnitPrice
			price = &p
		}
	}

	v := validation.Violations{}
	validation.Required(prefix+".description", desc, v)
	validation.MinInt(prefix+".quantity", in.Quantity, 1, v)
	if price == nil {
		v[prefix+".unitPrice"] = "required"
	} else {
		validation.NonNegativeDecimal(prefix+".unitPrice", *price, v)
	}
	if !v.Empty() {
		return item, &ValidationError{Violations: v}
	}

	item = models.InvoiceItem{
		ProductID:   in.ProductID,
		Description: desc,
		Quantity:    in.Quantity,
		UnitPrice:   *price,
		LineTotal:   price.Mul(decimal.NewFromInt(int64(in.Quantity))),
	}
	return item, nil
}

// nextInvoiceNumber claims the next per-user number inside tx. The increment
// is a single UPDATE so concurrent creations for the same user serialize on
// the sequence row instead of racing a count query.
func nextInvoiceNumber(tx *gorm.DB, userID uint) (string, error) {
	seed := models.InvoiceSequence{UserID: userID, NextNumber: 1}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return "", err
	}
	if err := tx.Model(&models.InvoiceSequence{}).
		Where("user_id = ?", userID).
		UpdateColumn("next_number", gorm.Expr("next_number + 1")).Error; err != nil {
		return "", err
	}
	var seq models.InvoiceSequence
	if err := tx.First(&seq, "user_id = ?", userID).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%04d", seq.NextNumber-1), nil
}

// Create builds an invoice atomically: items are validated and priced, the
// total is the exact decimal sum of line totals, the number is claimed from
// the per-user sequence and the initial status is always DRAFT.
func (s *InvoiceService) Create(ctx context.Context, userID uint, in CreateInvoiceInput) (*models.Invoice, error) {
	if len(in.Items) == 0 {
		return nil, invalid("items", "required")
	}
	if strings.TrimSpace(in.DueDate) == "" {
		return nil, invalid("dueDate", "required")
	}
	due, err := time.Parse(DueDateLayout, in.DueDate)
	if err != nil {
		return nil, invalid("dueDate", "invalid_date")
	}

	var customer models.Customer
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", in.CustomerID, userID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "customer", ID: in.CustomerID}
		}
		return nil, err
	}

	var created models.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := make([]models.InvoiceItem, 0, len(in.Items))
		total := decimal.Zero
		for i, itemIn := range in.Items {
			item, err := buildItem(tx, userID, itemIn, fmt.Sprintf("items[%d]", i))
			if err != nil {
				return err
			}
			total = total.Add(item.LineTotal)
			items = append(items, item)
		}

		number, err := nextInvoiceNumber(tx, userID)
		if err != nil {
			return err
		}

		created = models.Invoice{
			UserID:        userID,
			CustomerID:    customer.ID,
			InvoiceNumber: number,
			Status:        models.StatusDraft,
			DueDate:       due,
			TotalAmount:   total,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].InvoiceID = created.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		created.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	created.Customer = customer
	return &created, nil
}

// Get loads one invoice with items and customer, scoped to the user.
func (s *InvoiceService) Get(ctx context.Context, userID, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items").Preload("Customer").
		Where("id = ? AND user_id = ?", id, userID).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "invoice", ID: id}
		}
		return nil, err
	}
	return &inv, nil
}

// List returns the user's invoices, newest first.
func (s *InvoiceService) List(ctx context.Context, userID uint) ([]models.Invoice, error) {
	var invs []models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items").Preload("Customer").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&invs).Error
	return invs, err
}

// Update changes the due date and/or replaces the item set, recomputing the
// total in the same transaction.
func (s *InvoiceService) Update(ctx context.Context, userID, id uint, in UpdateInvoiceInput) (*models.Invoice, error) {
	inv, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.DueDate != nil {
		due, err := time.Parse(DueDateLayout, *in.DueDate)
		if err != nil {
			return nil, invalid("dueDate", "invalid_date")
		}
		inv.DueDate = due
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.Items != nil {
			if len(in.Items) == 0 {
				return invalid("items", "required")
			}
			items := make([]models.InvoiceItem, 0, len(in.Items))
			total := decimal.Zero
			for i, itemIn := range in.Items {
				item, err := buildItem(tx, userID, itemIn, fmt.Sprintf("items[%d]", i))
				if err != nil {
					return err
				}
				item.InvoiceID = inv.ID
				total = total.Add(item.LineTotal)
				items = append(items, item)
			}
			if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
				return err
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
			inv.Items = items
			inv.TotalAmount = total
		}
		return tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).
			Updates(map[string]any{"due_date": inv.DueDate, "total_amount": inv.TotalAmount}).Error
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Delete removes the invoice and all its items in one transaction. The
// cascade is explicit rather than delegated to the storage engine.
func (s *InvoiceService) Delete(ctx context.Context, userID, id uint) error {
	inv, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Invoice{}, inv.ID).Error
	})
}

// Transition applies an explicit user-requested status change. SENT is
// excluded here: it is reachable only through the email flow, after delivery
// is confirmed.
func (s *InvoiceService) Transition(ctx context.Context, userID, id uint, to models.InvoiceStatus) (*models.Invoice, error) {
	inv, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !to.Valid() || to == models.StatusSent || !CanTransition(inv.Status, to) {
		return nil, &InvalidTransitionError{From: inv.Status, To: to}
	}
	if err := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("id = ?", inv.ID).
		Update("status", to).Error; err != nil {
		return nil, err
	}
	inv.Status = to
	return inv, nil
}

// Revenue sums the totals of PAID invoices in exact decimal.
func (s *InvoiceService) Revenue(ctx context.Context, userID uint) (decimal.Decimal, error) {
	var totals []decimal.Decimal
	err := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("user_id = ? AND status = ?", userID, models.StatusPaid).
		Pluck("total_amount", &totals).Error
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t)
	}
	return sum, nil
}
