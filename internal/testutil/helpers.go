package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ymiyake/asset-dashboard-backend/internal/ledger"
	"github.com/ymiyake/asset-dashboard-backend/internal/repository"
	"github.com/ymiyake/asset-dashboard-backend/internal/service"
)

// ReportingZone is the timezone test reporters bucket years in. Pinned to
// the production default so boundary tests mean something.
var ReportingZone = mustLoadLocation("Asia/Tokyo")

// MakeID generates a fresh UUID string for test entities.
func MakeID() string {
	return uuid.New().String()
}

// NewTestReporter creates a ledger.Reporter with the default engine
// options and the pinned test reporting zone.
func NewTestReporter(t *testing.T) *ledger.Reporter {
	t.Helper()
	return ledger.NewReporter(ReportingZone, ledger.Options{})
}

// NewTestTradeService creates a TradeService backed by the given test database.
func NewTestTradeService(t *testing.T, db *sql.DB) *service.TradeService {
	t.Helper()

	tradeRepo := repository.NewTradeRepository(db)

	return service.NewTradeService(
		tradeRepo,
	)
}

// NewTestGainService creates a GainService backed by the given test database.
func NewTestGainService(t *testing.T, db *sql.DB) *service.GainService {
	t.Helper()

	tradeRepo := repository.NewTradeRepository(db)

	return service.NewGainService(
		tradeRepo,
		NewTestReporter(t),
	)
}

// NewTestAuditService creates an AuditService backed by the given test database.
func NewTestAuditService(t *testing.T, db *sql.DB) *service.AuditService {
	t.Helper()

	tradeRepo := repository.NewTradeRepository(db)

	return service.NewAuditService(
		tradeRepo,
		NewTestReporter(t),
	)
}

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("testutil: failed to load timezone " + name)
	}
	return loc
}
