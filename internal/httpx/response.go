package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/SohailElskhawy/ai-powered-small-business-suite/internal/services"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// WriteError maps the domain error taxonomy onto HTTP statuses. Upstream
// failures deliberately hide the wrapped cause from end users.
func WriteError(w http.ResponseWriter, err error) {
	var (
		ve *services.ValidationError
		nf *services.NotFoundError
		ce *services.ConflictError
		te *services.InvalidTransitionError
		ue *services.UpstreamServiceError
	)
	switch {
	case errors.As(err, &ve):
		JSONError(w, http.StatusBadRequest, "validation_failed", ve.Violations)
	case errors.As(err, &nf):
		JSONError(w, http.StatusNotFound, "not_found", map[string]string{"resource": nf.Resource})
	case errors.As(err, &ce):
		JSONError(w, http.StatusConflict, ce.Reason, map[string]string{"resource": ce.Resource})
	case errors.As(err, &te):
		JSONError(w, http.StatusUnprocessableEntity, "invalid_transition", map[string]string{"from": string(te.From), "to": string(te.To)})
	case errors.As(err, &ue):
		JSONError(w, http.StatusBadGateway, "upstream_failure", map[string]string{"service": ue.Service})
	default:
		JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
