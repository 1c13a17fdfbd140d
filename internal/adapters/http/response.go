// Package http exposes the ledger over REST. Handlers decode, call the
// application service, and encode; every rule lives below this layer.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/contracts"
	"github.com/viralforge/mesh/services/financial-rails/M15-payments-ledger-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, contracts.SuccessResponse{Status: "success", Data: data})
}

func writeError(w http.ResponseWriter, r *http.Request, code int, errCode, message string) {
	writeJSON(w, code, contracts.ErrorResponse{
		Status: "error",
		Error: contracts.ErrorPayload{
			Code:      errCode,
			Message:   message,
			RequestID: requestIDFrom(r.Context()),
		},
	})
}

// mapDomainError translates the closed error taxonomy onto HTTP. Every
// handler funnels failures through here so status codes stay uniform.
func mapDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, r, http.StatusBadRequest, "INVALID_AMOUNT", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, r, http.StatusForbidden, "UNAUTHORIZED", err.Error())
	case errors.Is(err, domain.ErrPaymentNotFound):
		writeError(w, r, http.StatusNotFound, "PAYMENT_NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrPaymentAlreadyCompleted):
		writeError(w, r, http.StatusConflict, "PAYMENT_ALREADY_COMPLETED", err.Error())
	case errors.Is(err, domain.ErrIdempotencyConflict):
		writeError(w, r, http.StatusConflict, "IDEMPOTENCY_CONFLICT", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, r, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, domain.ErrPaymentExpired):
		writeError(w, r, http.StatusUnprocessableEntity, "PAYMENT_EXPIRED", err.Error())
	case errors.Is(err, domain.ErrInsufficientBalance):
		writeError(w, r, http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE", err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
