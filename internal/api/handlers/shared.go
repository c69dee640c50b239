package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/response"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into a T. Unknown fields are rejected.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	if r.Body == nil {
		return v, errors.New("request body is empty")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("failed to decode request body: %w", err)
	}
	return v, nil
}

// parseOptionalFloat parses a query parameter; an absent parameter yields nil.
func parseOptionalFloat(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return &v, nil
}

// respondValidationError sends 400 with per-field messages when available.
func respondValidationError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		response.RespondError(w, http.StatusBadRequest, "validation failed", verr.Fields)
		return
	}
	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
}

// respondServiceError maps a domain error onto an HTTP status. Errors that
// match no domain sentinel are reported as 500 with the fallback message.
func respondServiceError(w http.ResponseWriter, err error, fallback error) {
	switch {
	case errors.Is(err, apperrors.ErrInsufficientQuantity):
		response.RespondError(w, http.StatusConflict, apperrors.ErrInsufficientQuantity.Error(), err.Error())
	case errors.Is(err, apperrors.ErrPriceUnavailable):
		response.RespondError(w, http.StatusServiceUnavailable, apperrors.ErrPriceUnavailable.Error(), err.Error())
	case errors.Is(err, apperrors.ErrAssetNotFound),
		errors.Is(err, apperrors.ErrHoldingNotFound),
		errors.Is(err, apperrors.ErrSymbolNotFound):
		response.RespondError(w, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, apperrors.ErrEmptyInput),
		errors.Is(err, apperrors.ErrDegenerateWeights),
		errors.Is(err, apperrors.ErrNegativePriority),
		errors.Is(err, apperrors.ErrInvalidQuantity),
		errors.Is(err, apperrors.ErrInvalidPrice),
		errors.Is(err, apperrors.ErrInvalidTransactionKind),
		errors.Is(err, apperrors.ErrInvalidDateRange),
		errors.Is(err, apperrors.ErrEmptyID),
		errors.Is(err, validation.ErrInvalidSymbol):
		response.RespondError(w, http.StatusBadRequest, "invalid request", err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
	}
}
