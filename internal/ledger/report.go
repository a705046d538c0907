package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ymiyake/asset-dashboard-backend/internal/apperrors"
	"github.com/ymiyake/asset-dashboard-backend/internal/model"
)

// YearlyTotals are a year's realized figures rounded to whole yen.
type YearlyTotals struct {
	Proceeds  decimal.Decimal `json:"proceedsJpy"`
	CostBasis decimal.Decimal `json:"costBasisJpy"`
	Gain      decimal.Decimal `json:"gainJpy"`
}

// YearlyReport aggregates every sell whose timestamp falls in one calendar
// year of the reporting timezone, under one method. It is computed on
// demand from a ledger snapshot and never cached.
type YearlyReport struct {
	Year            int                  `json:"year"`
	Method          Method               `json:"method"`
	Trades          []RealizedGainReport `json:"perTrade"`
	Totals          YearlyTotals         `json:"totals"`
	IncompleteSells int                  `json:"incompleteSells"`
}

// Reporter turns matching-engine output into per-sale and per-year
// reports. The reporting timezone is pinned at construction so year
// bucketing never depends on the ambient zone, and whole-yen rounding
// happens only here, at the report boundary.
type Reporter struct {
	loc  *time.Location
	opts Options
}

// NewReporter creates a Reporter bucketing years in loc with the given
// engine options.
func NewReporter(loc *time.Location, opts Options) *Reporter {
	return &Reporter{loc: loc, opts: opts}
}

// Location returns the pinned reporting timezone.
func (r *Reporter) Location() *time.Location { return r.loc }

// ReportForSale replays the full ledger under method and returns the
// report for the given sell. The whole history must be replayed: earlier
// sells decide which lots are still open for this one.
func (r *Reporter) ReportForSale(trades []model.Trade, sellID string, method Method) (RealizedGainReport, error) {
	reports, _, err := Replay(trades, method, r.opts)
	if err != nil {
		return RealizedGainReport{}, err
	}

	for _, report := range reports {
		if report.SellID == sellID {
			return report, nil
		}
	}

	for _, t := range trades {
		if t.ID == sellID {
			return RealizedGainReport{}, fmt.Errorf("%w: %s", apperrors.ErrNotSellTrade, sellID)
		}
	}
	return RealizedGainReport{}, fmt.Errorf("%w: %s", apperrors.ErrTradeNotFound, sellID)
}

// YearlyReport replays the full ledger under method and buckets every
// sell's report by the calendar year of its timestamp in the reporting
// timezone. Totals are summed over all reports of the year, complete and
// incomplete alike, then rounded to whole yen; the incomplete count tells
// the caller whether the figures can be trusted as filed.
func (r *Reporter) YearlyReport(trades []model.Trade, year int, method Method) (YearlyReport, error) {
	reports, _, err := Replay(trades, method, r.opts)
	if err != nil {
		return YearlyReport{}, err
	}

	yearly := YearlyReport{
		Year:   year,
		Method: method,
		Trades: []RealizedGainReport{},
	}

	var proceeds, costBasis, gain decimal.Decimal
	for _, report := range reports {
		if report.Timestamp.In(r.loc).Year() != year {
			continue
		}
		yearly.Trades = append(yearly.Trades, report)
		proceeds = proceeds.Add(report.TotalProceeds)
		costBasis = costBasis.Add(report.TotalCostBasis)
		gain = gain.Add(report.TotalGain)
		if report.Incomplete {
			yearly.IncompleteSells++
		}
	}

	yearly.Totals = YearlyTotals{
		Proceeds:  r.roundYen(proceeds),
		CostBasis: r.roundYen(costBasis),
		Gain:      r.roundYen(gain),
	}
	return yearly, nil
}

// roundYen rounds a fiat amount to the reporting currency's minor unit
// (whole yen) using the configured mode.
func (r *Reporter) roundYen(d decimal.Decimal) decimal.Decimal {
	if r.opts.Rounding == RoundHalfUp {
		return d.Round(0)
	}
	return d.RoundBank(0)
}
