package server

import (
	"context"
	"net/http"

	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/auth"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/handlers"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/httpx"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/models"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/services"
	"gorm.io/gorm"
)

// Deps carries the external clients the API needs. Both are interfaces so
// tests can swap in fakes.
type Deps struct {
	Drafter services.Drafter
	Sender  services.Sender
}

// New constructs the root http.Handler with all API routes registered.
func New(db *gorm.DB, deps Deps) http.Handler {
	mux := http.NewServeMux()

	// Sessions naming a deleted user are rejected by RequireAuth.
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var count int64
		if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	ah := handlers.NewAuthHandler(db)
	mux.HandleFunc("POST /api/auth/signup", ah.Signup)
	mux.HandleFunc("POST /api/auth/signin", ah.Signin)
	mux.HandleFunc("POST /api/auth/signout", ah.Signout)

	invSvc := services.NewInvoiceService(db)
	emailSvc := services.NewInvoiceEmailService(db, invSvc, deps.Drafter, deps.Sender)

	ch := handlers.NewCustomerHandler(services.NewCustomerService(db))
	ph := handlers.NewProductHandler(services.NewProductService(db))
	ih := handlers.NewInvoiceHandler(invSvc, emailSvc)
	dh := handlers.NewDashboardHandler(db, invSvc)

	protect := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}

	mux.Handle("GET /api/customers", protect(ch.List))
	mux.Handle("POST /api/customers", protect(ch.Create))
	mux.Handle("GET /api/customers/{id}", protect(ch.View))
	mux.Handle("PUT /api/customers/{id}", protect(ch.Update))
	mux.Handle("DELETE /api/customers/{id}", protect(ch.Delete))

	mux.Handle("GET /api/products", protect(ph.List))
	mux.Handle("GET /api/products/count", protect(ph.Count))
	mux.Handle("POST /api/products", protect(ph.Create))
	mux.Handle("GET /api/products/{id}", protect(ph.View))
	mux.Handle("PUT /api/products/{id}", protect(ph.Update))
	mux.Handle("DELETE /api/products/{id}", protect(ph.Delete))

	mux.Handle("GET /api/invoices", protect(ih.List))
	mux.Handle("POST /api/invoices", protect(ih.Create))
	mux.Handle("GET /api/invoices/{id}", protect(ih.View))
	mux.Handle("PUT /api/invoices/{id}", protect(ih.Update))
	mux.Handle("DELETE /api/invoices/{id}", protect(ih.Delete))
	mux.Handle("POST /api/invoices/{id}/status", protect(ih.UpdateStatus))
	mux.Handle("POST /api/invoices/{id}/email/draft", protect(ih.DraftEmail))
	mux.Handle("POST /api/invoices/{id}/email/send", protect(ih.SendEmail))

	mux.Handle("GET /api/dashboard", protect(dh.Stats))

	return withRecover(mux)
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
