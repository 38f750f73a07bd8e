package handlers

import (
	"net/http"
	"strconv"

	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/auth"
	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/httpx"
)

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// currentUser resolves the authenticated user, writing a 401 if absent.
// Routes are behind RequireAuth so the miss is only hit in tests calling
// handlers directly.
func currentUser(w http.ResponseWriter, r *http.Request) (uint, bool) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok || uid == 0 {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return 0, false
	}
	return uid, true
}
