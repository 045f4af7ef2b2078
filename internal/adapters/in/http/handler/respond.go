// internal/adapters/in/http/handler/respond.go
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"remarket/internal/application/usecase"
	catalogdom "remarket/internal/domain/catalog"
	orderdom "remarket/internal/domain/order"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeDomainErr maps domain sentinels onto HTTP status codes; anything
// unmapped is treated as an infrastructure failure.
func writeDomainErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError

	switch {
	case errors.Is(err, catalogdom.ErrNotFound),
		errors.Is(err, orderdom.ErrNotFound),
		errors.Is(err, catalogdom.ErrVariantNotFound),
		errors.Is(err, catalogdom.ErrConditionNotFound):
		code = http.StatusNotFound

	case errors.Is(err, catalogdom.ErrInvalidID),
		errors.Is(err, catalogdom.ErrInvalidName),
		errors.Is(err, catalogdom.ErrInvalidStorage),
		errors.Is(err, catalogdom.ErrInvalidCondition),
		errors.Is(err, catalogdom.ErrAmbiguousCatalog),
		errors.Is(err, catalogdom.ErrSelectionRequired),
		errors.Is(err, catalogdom.ErrColorNotAvailable),
		errors.Is(err, catalogdom.ErrColorNotInCondition),
		errors.Is(err, catalogdom.ErrInvalidQuantity),
		errors.Is(err, catalogdom.ErrInvalidBestSellerOrder),
		errors.Is(err, catalogdom.ErrNotBestSeller),
		errors.Is(err, orderdom.ErrInvalidID),
		errors.Is(err, orderdom.ErrInvalidUserID),
		errors.Is(err, orderdom.ErrInvalidItems),
		errors.Is(err, orderdom.ErrInvalidItem),
		errors.Is(err, orderdom.ErrInvalidShipping),
		errors.Is(err, orderdom.ErrTotalMismatch),
		errors.Is(err, catalogdom.ErrInsufficientStock),
		errors.Is(err, catalogdom.ErrBestSellerSlotsFull),
		errors.Is(err, orderdom.ErrAlreadyPaid),
		errors.Is(err, orderdom.ErrNotPaid),
		errors.Is(err, orderdom.ErrNotPending),
		errors.Is(err, orderdom.ErrNotDeletable),
		errors.Is(err, usecase.ErrSessionNotPaid):
		code = http.StatusBadRequest

	case errors.Is(err, orderdom.ErrForbidden):
		code = http.StatusForbidden

	case errors.Is(err, catalogdom.ErrConflict):
		code = http.StatusConflict

	case errors.Is(err, usecase.ErrGateway):
		code = http.StatusBadGateway

	case errors.Is(err, usecase.ErrPaymentFlowNotConfigured),
		errors.Is(err, usecase.ErrProductUsecaseNotConfigured),
		errors.Is(err, usecase.ErrOrderUsecaseNotConfigured),
		errors.Is(err, usecase.ErrBestSellerUsecaseNotConfigured):
		code = http.StatusServiceUnavailable
	}

	if code == http.StatusInternalServerError {
		log.Printf("[http] ERROR: %v", err)
		writeError(w, code, "internal_error")
		return
	}
	writeError(w, code, err.Error())
}
