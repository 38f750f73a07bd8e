package services

import (
	"context"
	"errors"
	"strings"

	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/models"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductService owns catalog CRUD rules, chiefly per-user SKU uniqueness.
type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService { return &ProductService{db: db} }

type ProductInput struct {
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Description   string          `json:"description"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	StockQuantity int             `json:"stockQuantity"`
}

func (s *ProductService) validate(in *ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = strings.TrimSpace(in.SKU)
	in.Description = strings.TrimSpace(in.Description)
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Required("sku", in.SKU, v)
	validation.NonNegativeDecimal("unitPrice", in.UnitPrice, v)
	validation.MinInt("stockQuantity", in.StockQuantity, 0, v)
	if !v.Empty() {
		return &ValidationError{Violations: v}
	}
	return nil
}

func (s *ProductService) skuTaken(ctx context.Context, userID uint, sku string, excludeID uint) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("user_id = ? AND sku = ?", userID, sku)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *ProductService) Create(ctx context.Context, userID uint, in ProductInput) (*models.Product, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	taken, err := s.skuTaken(ctx, userID, in.SKU, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &ConflictError{Resource: "product", Reason: "sku_already_exists"}
	}
	product := models.Product{
		UserID:        userID,
		Name:          in.Name,
		SKU:           in.SKU,
		Description:   in.Description,
		UnitPrice:     in.UnitPrice,
		StockQuantity: in.StockQuantity,
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) Get(ctx context.Context, userID, id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "product", ID: id}
		}
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) List(ctx context.Context, userID uint) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&products).Error
	return products, err
}

func (s *ProductService) Count(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (s *ProductService) Update(ctx context.Context, userID, id uint, in ProductInput) (*models.Product, error) {
	product, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	if in.SKU != product.SKU {
		taken, err := s.skuTaken(ctx, userID, in.SKU, product.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &ConflictError{Resource: "product", Reason: "sku_already_exists"}
		}
	}
	product.Name = in.Name
	product.SKU = in.SKU
	product.Description = in.Description
	product.UnitPrice = in.UnitPrice
	product.StockQuantity = in.StockQuantity
	if err := s.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, userID, id uint) error {
	product, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&models.Product{}, product.ID).Error
}
