package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ymiyake/asset-dashboard-backend/internal/apperrors"
	"github.com/ymiyake/asset-dashboard-backend/internal/ledger"
	"github.com/ymiyake/asset-dashboard-backend/internal/repository"
)

// GainService orchestrates the cost-basis engine over the persisted
// ledger. Every call takes a fresh snapshot and replays it; the service
// holds no mutable state between calls.
type GainService struct {
	tradeRepo *repository.TradeRepository
	reporter  *ledger.Reporter
}

// NewGainService creates a new GainService with the provided repository
// and reporter dependencies.
func NewGainService(
	tradeRepo *repository.TradeRepository,
	reporter *ledger.Reporter,
) *GainService {
	return &GainService{
		tradeRepo: tradeRepo,
		reporter:  reporter,
	}
}

// MethodComparison holds the same year's report under both supported
// methods, for side-by-side display of the tax outcome.
type MethodComparison struct {
	Year int                 `json:"year"`
	FIFO ledger.YearlyReport `json:"fifo"`
	HIFO ledger.YearlyReport `json:"hifo"`
}

// CalculateGain computes the realized-gain report for one sell trade
// under the given method. The trade must exist and be a sell; an
// under-matched sell comes back as an incomplete report, not an error.
func (s *GainService) CalculateGain(sellID, method string) (ledger.RealizedGainReport, error) {
	m, err := ledger.ParseMethod(method)
	if err != nil {
		return ledger.RealizedGainReport{}, err
	}

	trades, err := s.tradeRepo.ListTrades()
	if err != nil {
		return ledger.RealizedGainReport{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveTrades, err)
	}

	return s.reporter.ReportForSale(trades, sellID, m)
}

// YearlyReport computes the realized-gain report for every sell in the
// given calendar year (reporting timezone) under the given method.
func (s *GainService) YearlyReport(year int, method string) (ledger.YearlyReport, error) {
	m, err := ledger.ParseMethod(method)
	if err != nil {
		return ledger.YearlyReport{}, err
	}

	trades, err := s.tradeRepo.ListTrades()
	if err != nil {
		return ledger.YearlyReport{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveTrades, err)
	}

	return s.reporter.YearlyReport(trades, year, m)
}

// CompareMethods computes a year's report under FIFO and HIFO
// concurrently. Both replays read the same snapshot and share nothing, so
// running them in parallel is safe and gives the caller the two filings
// in one round trip.
func (s *GainService) CompareMethods(ctx context.Context, year int) (MethodComparison, error) {
	trades, err := s.tradeRepo.ListTrades()
	if err != nil {
		return MethodComparison{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToRetrieveTrades, err)
	}

	comparison := MethodComparison{Year: year}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		report, err := s.reporter.YearlyReport(trades, year, ledger.FIFO)
		if err != nil {
			return err
		}
		comparison.FIFO = report
		return nil
	})
	g.Go(func() error {
		report, err := s.reporter.YearlyReport(trades, year, ledger.HIFO)
		if err != nil {
			return err
		}
		comparison.HIFO = report
		return nil
	})

	if err := g.Wait(); err != nil {
		return MethodComparison{}, err
	}
	return comparison, nil
}
