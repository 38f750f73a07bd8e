package db

import (
	"fmt"
	"testing"

	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNormalizeDSN(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"postgres://u:p@localhost:5432/suite?sslmode=disable", "postgres://u:p@localhost:5432/suite?sslmode=disable"},
		{" \"postgresql://u:p@db/suite\" ", "postgresql://u:p@db/suite"},
		{"host=localhost user=u dbname=suite", "host=localhost user=u dbname=suite sslmode=disable"},
		{"host=localhost   user=u  sslmode=require", "host=localhost user=u sslmode=require"},
		{"file:test.db?mode=memory", "file:test.db?mode=memory"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeDSN(c.in); got != c.want {
			t.Errorf("NormalizeDSN(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsPostgres(t *testing.T) {
	if !IsPostgres("postgres://u:p@localhost/suite") {
		t.Error("url dsn should be postgres")
	}
	if !IsPostgres("host=localhost dbname=suite") {
		t.Error("key=value dsn should be postgres")
	}
	if IsPostgres("file:app.db") {
		t.Error("sqlite path should not be postgres")
	}
}

func TestSeedIdempotent(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := Seed(conn); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := Seed(conn); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var users, products, customers int64
	conn.Model(&models.User{}).Count(&users)
	conn.Model(&models.Product{}).Count(&products)
	conn.Model(&models.Customer{}).Count(&customers)
	if users != 1 || products != 3 || customers != 1 {
		t.Fatalf("seed not idempotent: users=%d products=%d customers=%d", users, products, customers)
	}
}
