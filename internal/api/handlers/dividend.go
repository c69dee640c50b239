package handlers

import (
	"errors"
	"net/http"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/request"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/response"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/service"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/validation"
)

// DividendHandler handles HTTP requests for dividend endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the dividendService.
type DividendHandler struct {
	dividendService *service.DividendService
}

// NewDividendHandler creates a new DividendHandler with the provided service dependency.
func NewDividendHandler(dividendService *service.DividendService) *DividendHandler {
	return &DividendHandler{
		dividendService: dividendService,
	}
}

// ReinvestResponse reports the outcome of a queue drain. Remaining counts
// the dividends still queued; it is non-zero when the drain stopped early.
type ReinvestResponse struct {
	Processed []model.Reinvestment `json:"processed"`
	Remaining int                  `json:"remaining"`
	Error     string               `json:"error,omitempty"`
}

// Pending returns queued dividends in arrival order.
//
// Endpoint: GET /api/dividend/pending
// Response: 200 OK with array of PendingDividend
func (h *DividendHandler) Pending(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.dividendService.GetPending())
}

// Credit queues a dividend cash amount for reinvestment into the paying asset.
//
// Endpoint: POST /api/dividend/credit
// Request Body: CreditDividendRequest (symbol, cashAmount, optional timestamp)
// Response: 201 Created with PendingDividend
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if the credit cannot be persisted
func (h *DividendHandler) Credit(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreditDividendRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreditDividend(req); err != nil {
		respondValidationError(w, err)
		return
	}

	pending, err := h.dividendService.Credit(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToCreditDividend)
		return
	}

	response.RespondJSON(w, http.StatusCreated, pending)
}

// Reinvest drains the pending queue into holdings at current prices.
// When a price is unavailable the drain stops, the failing dividend and
// everything after it stay queued, and the response is 503 with the entries
// processed so far.
//
// Endpoint: POST /api/dividend/reinvest
// Response: 200 OK with ReinvestResponse
// Error: 503 Service Unavailable with ReinvestResponse if a price is unavailable
// Error: 500 Internal Server Error if the portfolio cannot be updated
func (h *DividendHandler) Reinvest(w http.ResponseWriter, r *http.Request) {
	processed, err := h.dividendService.Reinvest(r.Context())
	resp := ReinvestResponse{
		Processed: processed,
		Remaining: len(h.dividendService.GetPending()),
	}
	if resp.Processed == nil {
		resp.Processed = []model.Reinvestment{}
	}

	if err != nil {
		resp.Error = err.Error()
		status := http.StatusInternalServerError
		if errors.Is(err, apperrors.ErrPriceUnavailable) {
			status = http.StatusServiceUnavailable
		}
		response.RespondJSON(w, status, resp)
		return
	}

	response.RespondJSON(w, http.StatusOK, resp)
}
