package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/request"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/testutil"
)

// mustBuy buys quantity of symbol at price through the portfolio service.
func mustBuy(t *testing.T, svc *testutil.Services, symbol string, quantity, price float64) {
	t.Helper()

	if _, err := svc.PortfolioService.Buy(context.Background(), request.TradeRequest{
		Symbol:   symbol,
		Quantity: quantity,
		Price:    &price,
	}); err != nil {
		t.Fatalf("Failed to buy %s: %v", symbol, err)
	}
}

// withURLParam attaches a chi URL parameter to an existing request.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
