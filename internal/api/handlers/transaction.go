package handlers

import (
	"net/http"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/request"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/response"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/service"
)

// TransactionHandler serves the transaction ledger.
type TransactionHandler struct {
	portfolioService *service.PortfolioService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(portfolioService *service.PortfolioService) *TransactionHandler {
	return &TransactionHandler{
		portfolioService: portfolioService,
	}
}

// Transactions handles GET requests for ledger entries in insertion order.
// All query parameters are optional; from and to are inclusive.
//
// Endpoint: GET /api/transaction?asset=AAPL&from=2024-01-01&to=2024-12-31
// Response: 200 OK with array of Transaction
// Error: 400 Bad Request if a date is malformed or from is after to
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := request.ParseTransactionFilters(q.Get("asset"), q.Get("from"), q.Get("to"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	transactions, err := h.portfolioService.GetTransactions(filter)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTransactions)
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}
