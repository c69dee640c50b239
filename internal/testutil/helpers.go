package testutil

import (
	"context"
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/dividend"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/portfolio"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/pricehistory"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/repository"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/service"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/symbols"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/yahoo"
)

// DefaultRiskThreshold is the alert threshold test services are built with.
const DefaultRiskThreshold = 0.05

// Services bundles the services of one test application. They share a
// single portfolio and price history store, as in production.
type Services struct {
	Portfolio        *portfolio.Portfolio
	History          *pricehistory.Store
	Queue            *dividend.Queue
	PortfolioService *service.PortfolioService
	AnalyticsService *service.AnalyticsService
	DividendService  *service.DividendService
	SystemService    *service.SystemService
}

// NewTestServices wires every service against db and the given market data
// client, loading whatever state db already holds.
//
// Example usage:
//
//	db := testutil.SetupTestDB(t)
//	testutil.CreateHolding(t, db, "AAPL", "Technology", 10, 150)
//	svc := testutil.NewTestServices(t, db, testutil.NewMockYahooClient())
func NewTestServices(t *testing.T, db *sql.DB, client yahoo.Client) *Services {
	t.Helper()
	ctx := context.Background()
	log := zerolog.Nop()

	store := repository.NewPortfolioStore(db)
	p, err := portfolio.Load(ctx, store, client, log, portfolio.Options{
		PriceTimeout: time.Second,
		Concurrency:  2,
	})
	if err != nil {
		t.Fatalf("Failed to load test portfolio: %v", err)
	}

	directory := symbols.NewDirectory(store, client, log)

	history := pricehistory.NewStore()
	analyticsService := service.NewAnalyticsService(
		p,
		history,
		repository.NewPriceRepository(db),
		client,
		service.AnalyticsOptions{DefaultThreshold: DefaultRiskThreshold, Concurrency: 2},
		log,
	)
	if err := analyticsService.LoadHistory(ctx); err != nil {
		t.Fatalf("Failed to load test price history: %v", err)
	}

	queue := dividend.NewQueue(repository.NewDividendRepository(db), log)
	if err := queue.Restore(ctx); err != nil {
		t.Fatalf("Failed to restore test dividend queue: %v", err)
	}

	return &Services{
		Portfolio:        p,
		History:          history,
		Queue:            queue,
		PortfolioService: service.NewPortfolioService(p, directory, log),
		AnalyticsService: analyticsService,
		DividendService:  service.NewDividendService(queue, p, log),
		SystemService:    service.NewSystemService(db),
	}
}

// NewTestSystemService creates a SystemService over db.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol generates a ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("AAPL")
//	// Returns: "AAPL1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakeSymbolName generates a unique asset name for testing.
//
// Example usage:
//
//	name := testutil.MakeSymbolName("Tech Symbol")
//	// Returns: "Tech Symbol XYZ789"
func MakeSymbolName(base string) string {
	if base == "" {
		base = "Symbol"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

// CommonSectors contains frequently used sector names
var CommonSectors = []string{"Technology", "Energy", "Healthcare", "Financials", "Utilities"}

// RandomSector returns a random sector from CommonSectors.
func RandomSector() string {
	//nolint:gosec // G404: Using math/rand for test data generation is acceptable
	return CommonSectors[rand.Intn(len(CommonSectors))]
}
