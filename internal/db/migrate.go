package db

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file
	// source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// allModels is the AutoMigrate set, ordered so foreign keys resolve.
var allModels = []any{
	&models.User{},
	&models.Customer{},
	&models.Product{},
	&models.Invoice{},
	&models.InvoiceItem{},
	&models.InvoiceSequence{},
}

// ConnectAndMigrate opens the database named by DATABASE_DSN and brings the
// schema up to date. Postgres DSNs with MIGRATIONS=1 use SQL migrations via
// golang-migrate; everything else uses AutoMigrate (dev/test convenience).
func ConnectAndMigrate() (*gorm.DB, error) {
	dsn := GetNormalizedDSN()
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check environment configuration")
	}

	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var db *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = open(dsn, cfg)
		if err == nil {
			break
		}
		fmt.Println("Retrying DB connection...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	fmt.Println("[DB] Using DSN:", masked)

	if v := strings.ToLower(os.Getenv("MIGRATIONS")); IsPostgres(dsn) && (v == "1" || v == "true" || v == "yes") {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	for _, table := range []string{"users", "customers", "products", "invoices", "invoice_items", "invoice_sequences"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}

	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		if err := Seed(db); err != nil {
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}
	return db, nil
}

func open(dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	if IsPostgres(dsn) {
		return gorm.Open(postgres.Open(dsn), cfg)
	}
	return gorm.Open(sqlite.Open(dsn), cfg)
}

// AutoMigrate applies the gorm schema for every model.
func AutoMigrate(db *gorm.DB) error {
	for _, m := range allModels {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// Seed inserts a demo account with a small catalog. Idempotent: keyed on the
// demo user's email.
func Seed(db *gorm.DB) error {
	var existing models.User
	err := db.Where("email = ?", "demo@example.com").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := models.User{Email: "demo@example.com", Password: string(hash), Name: "Demo User"}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	products := []models.Product{
		{UserID: user.ID, Name: "Consulting (hourly)", SKU: "CONSULT-H", UnitPrice: dec("120.00"), StockQuantity: 0},
		{UserID: user.ID, Name: "Starter website", SKU: "WEB-START", UnitPrice: dec("1499.00"), StockQuantity: 0},
		{UserID: user.ID, Name: "Hosting (monthly)", SKU: "HOST-M", UnitPrice: dec("19.99"), StockQuantity: 100},
	}
	if err := db.Create(&products).Error; err != nil {
		return err
	}
	customer := models.Customer{UserID: user.ID, Name: "Acme Corp", Email: "billing@acme.test", Phone: "+1 555 0100"}
	return db.Create(&customer).Error
}

// runSQLMigrations executes migrations in ./migrations using the file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
