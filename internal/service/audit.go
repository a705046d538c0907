package service

import (
	"fmt"
	"log"

	"github.com/ymiyake/asset-dashboard-backend/internal/apperrors"
	"github.com/ymiyake/asset-dashboard-backend/internal/ledger"
	"github.com/ymiyake/asset-dashboard-backend/internal/model"
	"github.com/ymiyake/asset-dashboard-backend/internal/repository"
)

// AuditService replays the full ledger looking for data-integrity
// problems: sells that cannot be fully matched against prior buys, which
// usually means an inherited or externally deposited coin was never
// recorded as an acquisition. It is scheduled nightly from main and can
// also be run on demand.
type AuditService struct {
	tradeRepo *repository.TradeRepository
	reporter  *ledger.Reporter
}

// NewAuditService creates a new AuditService with the provided repository
// and reporter dependencies.
func NewAuditService(
	tradeRepo *repository.TradeRepository,
	reporter *ledger.Reporter,
) *AuditService {
	return &AuditService{
		tradeRepo: tradeRepo,
		reporter:  reporter,
	}
}

// AuditFinding describes one sell that could not be fully matched.
type AuditFinding struct {
	SellID            string `json:"sellId"`
	Timestamp         string `json:"timestamp"`
	UnmatchedQuantity int64  `json:"unmatchedQuantitySat"`
}

// Audit replays every sell under FIFO and collects the incomplete ones.
// Lot availability does not depend on the method, so any method finds the
// same set of under-matched sells; FIFO is used as the canonical probe.
func (s *AuditService) Audit() ([]AuditFinding, error) {
	trades, err := s.tradeRepo.ListTrades()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveTrades, err)
	}

	reports, _, err := ledger.Replay(trades, ledger.FIFO, ledger.Options{})
	if err != nil {
		return nil, err
	}

	findings := []AuditFinding{}
	for _, report := range reports {
		if report.Incomplete {
			findings = append(findings, AuditFinding{
				SellID:            report.SellID,
				Timestamp:         report.Timestamp.In(s.reporter.Location()).Format("2006-01-02T15:04:05Z07:00"),
				UnmatchedQuantity: report.UnmatchedQuantity,
			})
		}
	}
	return findings, nil
}

// RunScheduled is the cron entry point. It logs findings instead of
// returning them; an unmatched sell is a warning for the owner to fix the
// ledger, not a server failure.
func (s *AuditService) RunScheduled() {
	findings, err := s.Audit()
	if err != nil {
		log.Printf("ledger audit failed: %v", err)
		return
	}

	if len(findings) == 0 {
		log.Printf("ledger audit: all sells fully matched")
		return
	}

	for _, f := range findings {
		log.Printf(
			"ledger audit: sell %s at %s has %s BTC unmatched against prior buys",
			f.SellID, f.Timestamp, model.SatoshiToBTC(f.UnmatchedQuantity),
		)
	}
}
