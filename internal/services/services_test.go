package services

import (
	"fmt"
	"testing"

	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Customer{}, &models.Product{}, &models.Invoice{}, &models.InvoiceItem{}, &models.InvoiceSequence{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Email: email, Password: "hash"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedCustomer(t *testing.T, db *gorm.DB, userID uint, name, email string) models.Customer {
	t.Helper()
	c := models.Customer{UserID: userID, Name: name, Email: email}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return c
}

func seedProduct(t *testing.T, db *gorm.DB, userID uint, name, sku, price string) models.Product {
	t.Helper()
	p := models.Product{UserID: userID, Name: name, SKU: sku, UnitPrice: decimal.RequireFromString(price)}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}
