package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/models"
)

func TestCustomerCreateRequiresName(t *testing.T) {
	db := setupTestDB(t, t.Name())
	u := seedUser(t, db, "cust@test")
	svc := NewCustomerService(db)

	var vErr *ValidationError
	_, err := svc.Create(context.Background(), u.ID, CustomerInput{Email: "x@test"})
	if !errors.As(err, &vErr) || vErr.Violations["name"] != "required" {
		t.Fatalf("expected name=required got %v", err)
	}
}

func TestCustomerEmailUniquePerUser(t *testing.T) {
	db := setupTestDB(t, t.Name())
	u1 := seedUser(t, db, "c1@test")
	u2 := seedUser(t, db, "c2@test")
	svc := NewCustomerService(db)
	ctx := context.Background()

	if _, err := svc.Create(ctx, u1.ID, CustomerInput{Name: "Acme", Email: "billing@acme.test"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	var cErr *ConflictError
	_, err := svc.Create(ctx, u1.ID, CustomerInput{Name: "Acme Dup", Email: "billing@acme.test"})
	if !errors.As(err, &cErr) || cErr.Reason != "email_already_exists" {
		t.Fatalf("expected email conflict got %v", err)
	}

	// The same address is fine for a different user.
	if _, err := svc.Create(ctx, u2.ID, CustomerInput{Name: "Other", Email: "billing@acme.test"}); err != nil {
		t.Fatalf("other user create: %v", err)
	}

	// Two customers without an email are fine.
	if _, err := svc.Create(ctx, u1.ID, CustomerInput{Name: "No Mail 1"}); err != nil {
		t.Fatalf("no email 1: %v", err)
	}
	if _, err := svc.Create(ctx, u1.ID, CustomerInput{Name: "No Mail 2"}); err != nil {
		t.Fatalf("no email 2: %v", err)
	}
}

func TestCustomerUpdateEmailConflict(t *testing.T) {
	db := setupTestDB(t, t.Name())
	u := seedUser(t, db, "cu@test")
	svc := NewCustomerService(db)
	ctx := context.Background()

	a, err := svc.Create(ctx, u.ID, CustomerInput{Name: "A", Email: "a@test"})
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	if _, err := svc.Create(ctx, u.ID, CustomerInput{Name: "B", Email: "b@test"}); err != nil {
		t.Fatalf("create b: %v", err)
	}

	// Keeping the own address on update is not a conflict.
	if _, err := svc.Update(ctx, u.ID, a.ID, CustomerInput{Name: "A renamed", Email: "a@test"}); err != nil {
		t.Fatalf("self update: %v", err)
	}

	var cErr *ConflictError
	_, err = svc.Update(ctx, u.ID, a.ID, CustomerInput{Name: "A", Email: "b@test"})
	if !errors.As(err, &cErr) || cErr.Reason != "email_already_exists" {
		t.Fatalf("expected conflict on stolen email, got %v", err)
	}
}

func TestCustomerDeleteGuardedByInvoices(t *testing.T) {
	db := setupTestDB(t, t.Name())
	u := seedUser(t, db, "cd@test")
	c := seedCustomer(t, db, u.ID, "Acme", "acme@test")
	svc := NewCustomerService(db)
	invoices := NewInvoiceService(db)
	ctx := context.Background()

	inv, err := invoices.Create(ctx, u.ID, CreateInvoiceInput{CustomerID: c.ID, DueDate: "2026-10-01", Items: []ItemInput{{Description: "x", Quantity: 1, UnitPrice: dp("1.00")}}})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	var cErr *ConflictError
	err = svc.Delete(ctx, u.ID, c.ID)
	if !errors.As(err, &cErr) || cErr.Reason != "has_invoices" {
		t.Fatalf("expected has_invoices conflict got %v", err)
	}

	// After the invoice is gone the customer can be deleted.
	if err := invoices.Delete(ctx, u.ID, inv.ID); err != nil {
		t.Fatalf("delete invoice: %v", err)
	}
	if err := svc.Delete(ctx, u.ID, c.ID); err != nil {
		t.Fatalf("delete customer: %v", err)
	}
	var count int64
	db.Model(&models.Customer{}).Where("id = ?", c.ID).Count(&count)
	if count != 0 {
		t.Fatalf("customer should be gone")
	}
}

func TestCustomerScopedToOwner(t *testing.T) {
	db := setupTestDB(t, t.Name())
	owner := seedUser(t, db, "co@test")
	other := seedUser(t, db, "cx@test")
	c := seedCustomer(t, db, owner.ID, "Acme", "acme@test")
	svc := NewCustomerService(db)
	ctx := context.Background()

	var nfErr *NotFoundError
	if _, err := svc.Get(ctx, other.ID, c.ID); !errors.As(err, &nfErr) {
		t.Fatalf("foreign get must 404, got %v", err)
	}
	if err := svc.Delete(ctx, other.ID, c.ID); !errors.As(err, &nfErr) {
		t.Fatalf("foreign delete must 404, got %v", err)
	}

	list, err := svc.List(ctx, other.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("foreign list must be empty, got %d", len(list))
	}
}
