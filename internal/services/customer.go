package services

import (
	"context"
	"errors"
	"strings"

	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/models"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/validation"
	"gorm.io/gorm"
)

// CustomerService owns customer CRUD rules: per-user email uniqueness and
// the delete guard against referenced invoices.
type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService { return &CustomerService{db: db} }

type CustomerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func (in *CustomerInput) trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.Notes = strings.TrimSpace(in.Notes)
}

// emailTaken reports whether another customer of the same user already uses
// the address. excludeID skips the customer being updated.
func (s *CustomerService) emailTaken(ctx context.Context, userID uint, email string, excludeID uint) (bool, error) {
	if email == "" {
		return false, nil
	}
	var count int64
	q := s.db.WithContext(ctx).Model(&models.Customer{}).
		Where("user_id = ? AND email = ?", userID, email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *CustomerService) Create(ctx context.Context, userID uint, in CustomerInput) (*models.Customer, error) {
	in.trim()
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	taken, err := s.emailTaken(ctx, userID, in.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &ConflictError{Resource: "customer", Reason: "email_already_exists"}
	}
	customer := models.Customer{
		UserID:  userID,
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
		Notes:   in.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *CustomerService) Get(ctx context.Context, userID, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "customer", ID: id}
		}
		return nil, err
	}
	return &customer, nil
}

func (s *CustomerService) List(ctx context.Context, userID uint) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&customers).Error
	return customers, err
}

func (s *CustomerService) Update(ctx context.Context, userID, id uint, in CustomerInput) (*models.Customer, error) {
	customer, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	in.trim()
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	if in.Email != customer.Email {
		taken, err := s.emailTaken(ctx, userID, in.Email, customer.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &ConflictError{Resource: "customer", Reason: "email_already_exists"}
		}
	}
	customer.Name = in.Name
	customer.Email = in.Email
	customer.Phone = in.Phone
	customer.Address = in.Address
	customer.Notes = in.Notes
	if err := s.db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// Delete refuses to remove a customer still referenced by invoices. The
// count check gives a typed conflict instead of a driver-specific
// foreign-key error.
func (s *CustomerService) Delete(ctx context.Context, userID, id uint) error {
	customer, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	var invoiceCount int64
	if err := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("customer_id = ?", customer.ID).
		Count(&invoiceCount).Error; err != nil {
		return err
	}
	if invoiceCount > 0 {
		return &ConflictError{Resource: "customer", Reason: "has_invoices"}
	}
	return s.db.WithContext(ctx).Delete(&models.Customer{}, customer.ID).Error
}
