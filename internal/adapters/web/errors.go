package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/AliAsger25/TFWTest/internal/app"
	"github.com/AliAsger25/TFWTest/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
// Anything outside the taxonomy (storage failures and the like) becomes a
// generic 500 with the detail kept server-side.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrProductNotFound):
		writeError(w, r, err.Error(), "PRODUCT_NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrBillNotFound):
		writeError(w, r, err.Error(), "BILL_NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrDuplicateCode):
		writeError(w, r, err.Error(), "DUPLICATE_CODE", http.StatusConflict)
	case errors.Is(err, core.ErrInsufficientStock):
		writeError(w, r, err.Error(), "INSUFFICIENT_STOCK", http.StatusConflict)
	case errors.Is(err, core.ErrInvalidQuantity):
		writeError(w, r, err.Error(), "INVALID_QUANTITY", http.StatusBadRequest)
	case errors.Is(err, app.ErrValidation):
		writeError(w, r, err.Error(), "VALIDATION_ERROR", http.StatusBadRequest)
	default:
		logrus.WithField("request_id", requestIDFromContext(r.Context())).
			WithError(err).Error("request failed")
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
