package services

import (
	"context"
	"strings"

	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/ai"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/mail"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/models"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/validation"
	"gorm.io/gorm"
)

// Drafter produces an email draft for an invoice. Satisfied by *ai.Client.
type Drafter interface {
	DraftInvoiceEmail(ctx context.Context, customer models.Customer, invoice models.Invoice) (ai.Draft, error)
}

// Sender delivers one email. Satisfied by *mail.Client.
type Sender interface {
	Send(ctx context.Context, msg mail.Message) error
}

// InvoiceEmailService runs the generate -> review -> send flow. The invoice
// moves to SENT only after the sender confirms delivery; a drafting or
// delivery failure leaves the invoice untouched.
type InvoiceEmailService struct {
	db       *gorm.DB
	invoices *InvoiceService
	drafter  Drafter
	sender   Sender
}

func NewInvoiceEmailService(db *gorm.DB, invoices *InvoiceService, drafter Drafter, sender Sender) *InvoiceEmailService {
	return &InvoiceEmailService{db: db, invoices: invoices, drafter: drafter, sender: sender}
}

// Draft asks the AI service for a subject/text pair the user can review and
// edit before sending. It never mutates the invoice.
func (s *InvoiceEmailService) Draft(ctx context.Context, userID, invoiceID uint) (ai.Draft, error) {
	inv, err := s.invoices.Get(ctx, userID, invoiceID)
	if err != nil {
		return ai.Draft{}, err
	}
	draft, err := s.drafter.DraftInvoiceEmail(ctx, inv.Customer, *inv)
	if err != nil {
		return ai.Draft{}, &UpstreamServiceError{Service: "ai", Err: err}
	}
	return draft, nil
}

// SendInput carries the user-reviewed email content.
type SendInput struct {
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Send delivers the reviewed email to the invoice's customer and, only on
// confirmed delivery, transitions the invoice DRAFT -> SENT.
func (s *InvoiceEmailService) Send(ctx context.Context, userID, invoiceID uint, in SendInput) (*models.Invoice, error) {
	in.Subject = strings.TrimSpace(in.Subject)
	in.Text = strings.TrimSpace(in.Text)
	v := validation.Violations{}
	validation.Required("subject", in.Subject, v)
	validation.Required("text", in.Text, v)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}

	inv, err := s.invoices.Get(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Customer.Email == "" {
		return nil, invalid("customer.email", "required")
	}
	if !CanTransition(inv.Status, models.StatusSent) {
		return nil, &InvalidTransitionError{From: inv.Status, To: models.StatusSent}
	}

	msg := mail.Message{ToEmail: inv.Customer.Email, Subject: in.Subject, TextContent: in.Text}
	if err := s.sender.Send(ctx, msg); err != nil {
		return nil, &UpstreamServiceError{Service: "mail", Err: err}
	}

	if err := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("id = ?", inv.ID).
		Update("status", models.StatusSent).Error; err != nil {
		return nil, err
	}
	inv.Status = models.StatusSent
	return inv, nil
}
