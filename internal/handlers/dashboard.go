package handlers

import (
	"net/http"

	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/httpx"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/models"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/services"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardHandler aggregates the landing-page stats.
type DashboardHandler struct {
	DB       *gorm.DB
	Invoices *services.InvoiceService
}

func NewDashboardHandler(db *gorm.DB, invoices *services.InvoiceService) *DashboardHandler {
	return &DashboardHandler{DB: db, Invoices: invoices}
}

type dashboardStats struct {
	Customers       int64           `json:"customers"`
	Products        int64           `json:"products"`
	Invoices        int64           `json:"invoices"`
	PendingInvoices int64           `json:"pendingInvoices"`
	Revenue         decimal.Decimal `json:"revenue"`
}

// Stats: GET /api/dashboard. Revenue counts PAID invoices only; pending is
// everything still SENT.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	var stats dashboardStats

	counts := []struct {
		model any
		dest  *int64
		query string
		args  []any
	}{
		{&models.Customer{}, &stats.Customers, "user_id = ?", []any{uid}},
		{&models.Product{}, &stats.Products, "user_id = ?", []any{uid}},
		{&models.Invoice{}, &stats.Invoices, "user_id = ?", []any{uid}},
		{&models.Invoice{}, &stats.PendingInvoices, "user_id = ? AND status = ?", []any{uid, models.StatusSent}},
	}
	for _, c := range counts {
		if err := h.DB.WithContext(ctx).Model(c.model).Where(c.query, c.args...).Count(c.dest).Error; err != nil {
			httpx.WriteError(w, err)
			return
		}
	}

	revenue, err := h.Invoices.Revenue(ctx, uid)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	stats.Revenue = revenue
	httpx.JSON(w, http.StatusOK, stats)
}
