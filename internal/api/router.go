package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Investment-Portfolio-Tracker/internal/api/middleware"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/config"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/service"
)

// NewRouter creates and configures the HTTP router. Read endpoints are open;
// every endpoint that changes portfolio state requires the API key middleware.
func NewRouter(
	systemService *service.SystemService,
	portfolioService *service.PortfolioService,
	analyticsService *service.AnalyticsService,
	dividendService *service.DividendService,
	cfg *config.Config,
	log zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log.With().Str("component", "http").Logger()))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	systemHandler := handlers.NewSystemHandler(systemService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
	transactionHandler := handlers.NewTransactionHandler(portfolioService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, portfolioService)
	riskHandler := handlers.NewRiskHandler(analyticsService)
	priceHandler := handlers.NewPriceHandler(portfolioService, analyticsService)
	dividendHandler := handlers.NewDividendHandler(dividendService)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/holdings", portfolioHandler.Holdings)
			r.Get("/summary", portfolioHandler.Summary)
			r.Get("/allocations", portfolioHandler.Allocations)
			r.With(custommiddleware.APIKeyMiddleware).Post("/buy", portfolioHandler.Buy)
			r.With(custommiddleware.APIKeyMiddleware).Post("/sell", portfolioHandler.Sell)
		})

		r.Route("/transaction", func(r chi.Router) {
			r.Get("/", transactionHandler.Transactions)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Post("/allocation", analyticsHandler.Allocation)
			r.Get("/diversification", analyticsHandler.PortfolioDiversification)
			r.Post("/diversification", analyticsHandler.Diversification)
			r.Post("/rebalance", analyticsHandler.Rebalance)
			r.Post("/rebalance/plan", analyticsHandler.PlanRebalance)
			r.With(custommiddleware.APIKeyMiddleware).Post("/rebalance/execute", analyticsHandler.ExecuteRebalance)
		})

		r.Route("/risk", func(r chi.Router) {
			r.Get("/alerts", riskHandler.Alerts)
			r.With(custommiddleware.ValidateSymbolMiddleware).Get("/volatility/{symbol}", riskHandler.Volatility)
		})

		r.Route("/price", func(r chi.Router) {
			r.With(custommiddleware.APIKeyMiddleware).Post("/refresh", priceHandler.Refresh)

			r.Route("/{symbol}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateSymbolMiddleware)
				r.Get("/", priceHandler.Price)
				r.Get("/history", priceHandler.History)
				r.With(custommiddleware.APIKeyMiddleware).Post("/sync", priceHandler.Sync)
			})
		})

		r.Route("/dividend", func(r chi.Router) {
			r.Get("/pending", dividendHandler.Pending)
			r.With(custommiddleware.APIKeyMiddleware).Post("/credit", dividendHandler.Credit)
			r.With(custommiddleware.APIKeyMiddleware).Post("/reinvest", dividendHandler.Reinvest)
		})
	})

	return r
}
