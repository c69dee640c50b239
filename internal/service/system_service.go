package service

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/database"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth(ctx context.Context) error {
	return database.HealthCheck(ctx, s.db)
}

// CheckVersion reports application and schema versions and the features
// this build serves.
func (s *SystemService) CheckVersion(ctx context.Context) (model.VersionInfo, error) {
	dbVersion, err := database.SchemaVersion(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, err
	}
	pending, err := database.HasPendingMigrations(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, err
	}

	info := model.VersionInfo{
		AppVersion: version.Version,
		DbVersion:  strconv.FormatInt(dbVersion, 10),
		Features: map[string]bool{
			"rebalance_execution":   true,
			"dividend_reinvestment": true,
			"price_history_sync":    true,
			"risk_alerts":           true,
		},
		MigrationNeeded: pending,
	}
	if pending {
		msg := "database schema is behind the application, restart to apply migrations"
		info.MigrationMessage = &msg
	}
	return info, nil
}
