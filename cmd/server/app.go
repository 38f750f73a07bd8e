package main

import (
	"net/http"

	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/auth"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/middleware"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/server"
	"gorm.io/gorm"
)

// NewApp assembles the full handler chain: request ids, request logging,
// session resolution, then the API router.
func NewApp(db *gorm.DB, deps server.Deps) http.Handler {
	h := server.New(db, deps)
	h = auth.Middleware(h)
	h = middleware.Logging(h)
	h = middleware.RequestID(h)
	return h
}
