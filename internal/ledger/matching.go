package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ymiyake/asset-dashboard-backend/internal/model"
)

// FeeApportionment controls how a sell's fiat fee is spread across the
// lots it consumes.
type FeeApportionment int

const (
	// FeeProRata apportions the net proceeds (after fee) across matches
	// in proportion to matched quantity. Default.
	FeeProRata FeeApportionment = iota

	// FeeFirstLot apportions gross proceeds pro rata and charges the
	// entire fee to the first lot the sell consumes.
	FeeFirstLot
)

// RoundingMode controls how yearly totals are rounded to whole yen.
// Rounding happens only at the report boundary, never inside matching.
type RoundingMode int

const (
	// RoundBankers rounds half to even. Default.
	RoundBankers RoundingMode = iota

	// RoundHalfUp rounds half away from zero.
	RoundHalfUp
)

// Options are the engine's explicit configuration points. The zero value
// is the auditable default: pro-rata fees, bankers rounding.
type Options struct {
	FeeApportionment FeeApportionment
	Rounding         RoundingMode
}

// Match records one (sell, lot) pairing produced during replay.
type Match struct {
	SellID        string          `json:"sellId"`
	LotID         string          `json:"lotId"`
	LotOpenedAt   time.Time       `json:"lotOpenedAt"`
	Quantity      int64           `json:"quantitySat"`
	UnitCost      decimal.Decimal `json:"unitCostJpy"`
	CostBasis     decimal.Decimal `json:"costBasisJpy"`
	ProceedsShare decimal.Decimal `json:"proceedsShareJpy"`
	Gain          decimal.Decimal `json:"gainJpy"`
}

// RealizedGainReport is the engine's result for one sell: the ordered
// matches it produced and their totals. When the sell could not be fully
// matched the report is marked incomplete and carries the exact unmatched
// satoshi quantity; totals then cover only the matched portion so figures
// are never silently wrong.
type RealizedGainReport struct {
	SellID            string          `json:"sellId"`
	Timestamp         time.Time       `json:"timestamp"`
	Method            Method          `json:"method"`
	Quantity          int64           `json:"quantitySat"`
	Matches           []Match         `json:"matches"`
	TotalProceeds     decimal.Decimal `json:"totalProceedsJpy"`
	TotalCostBasis    decimal.Decimal `json:"totalCostBasisJpy"`
	TotalGain         decimal.Decimal `json:"totalGainJpy"`
	Incomplete        bool            `json:"incomplete"`
	UnmatchedQuantity int64           `json:"unmatchedQuantitySat,omitempty"`
}

// Replay runs the matching engine over the full ledger under the given
// method. It rebuilds lots as it walks the trades in their total order;
// each sell consumes lot quantity per the method's ordering among lots
// opened at or before the sell's position in the ledger. One report is
// produced per sell, in ledger order, along with the final lot state,
// closed lots included, retained for audit.
//
// An under-matched sell yields an incomplete report rather than an error:
// a single bad sell must not abort unrelated sells or years.
func Replay(trades []model.Trade, method Method, opts Options) ([]RealizedGainReport, []Lot, error) {
	if method != FIFO && method != HIFO {
		if _, err := ParseMethod(string(method)); err != nil {
			return nil, nil, err
		}
	}

	ordered := sortTrades(trades)

	var open []Lot
	var reports []RealizedGainReport
	for _, t := range ordered {
		switch {
		case t.IsBuy():
			open = append(open, newLot(t))
		case t.IsSell():
			reports = append(reports, matchSell(t, open, method, opts))
		}
	}
	return reports, open, nil
}

// matchSell consumes lot quantity for one sell and records its report.
// The open slice holds every lot opened so far in ledger order; future
// buys are not in it yet, which is exactly the eligibility rule: you
// cannot sell coins you have not yet acquired.
func matchSell(sell model.Trade, open []Lot, method Method, opts Options) RealizedGainReport {
	report := RealizedGainReport{
		SellID:    sell.ID,
		Timestamp: sell.Timestamp,
		Method:    method,
		Quantity:  sell.Quantity,
	}

	gross := sell.CounterValue
	net := gross.Sub(sell.FeeFiat)

	// Proceeds shares are cut from the gross amount under FeeFirstLot,
	// from the net amount under FeeProRata.
	base := net
	if opts.FeeApportionment == FeeFirstLot {
		base = gross
	}
	sellBTC := sell.QuantityBTC()

	demand := sell.Quantity
	for demand > 0 {
		lot := pickLot(open, method)
		if lot == nil {
			break
		}

		take := demand
		if lot.Remaining < take {
			take = lot.Remaining
		}
		takeBTC := model.SatoshiToBTC(take)

		report.Matches = append(report.Matches, Match{
			SellID:        sell.ID,
			LotID:         lot.OpenedBy,
			LotOpenedAt:   lot.OpenedAt,
			Quantity:      take,
			UnitCost:      lot.UnitCost,
			CostBasis:     takeBTC.Mul(lot.UnitCost),
			ProceedsShare: base.Mul(takeBTC).Div(sellBTC),
		})

		lot.Remaining -= take
		demand -= take
	}

	if demand > 0 {
		report.Incomplete = true
		report.UnmatchedQuantity = demand
	}

	apportionProceeds(&report, base, sell.FeeFiat, opts)

	for i := range report.Matches {
		m := &report.Matches[i]
		m.Gain = m.ProceedsShare.Sub(m.CostBasis)
		report.TotalProceeds = report.TotalProceeds.Add(m.ProceedsShare)
		report.TotalCostBasis = report.TotalCostBasis.Add(m.CostBasis)
		report.TotalGain = report.TotalGain.Add(m.Gain)
	}

	return report
}

// apportionProceeds finalizes the per-match proceeds shares. For a fully
// matched sell the last match absorbs the division remainder so the
// shares sum to the apportionment base exactly; an incomplete sell keeps
// the pro-rata shares of its matched portion only. Under FeeFirstLot the
// whole fiat fee is then charged to the first match, so the shares of a
// complete sell always sum to the net proceeds either way.
func apportionProceeds(report *RealizedGainReport, base, fee decimal.Decimal, opts Options) {
	if len(report.Matches) == 0 {
		return
	}

	if !report.Incomplete {
		last := len(report.Matches) - 1
		remainder := base
		for i := 0; i < last; i++ {
			remainder = remainder.Sub(report.Matches[i].ProceedsShare)
		}
		report.Matches[last].ProceedsShare = remainder
	}

	if opts.FeeApportionment == FeeFirstLot {
		first := &report.Matches[0]
		first.ProceedsShare = first.ProceedsShare.Sub(fee)
	}
}

// pickLot selects the next lot to consume among open, non-exhausted lots.
// FIFO: smallest OpenedAt, tie by insertion order (the slice order).
// HIFO: largest UnitCost, ties prefer the older lot, then insertion order.
func pickLot(open []Lot, method Method) *Lot {
	var chosen *Lot
	for i := range open {
		lot := &open[i]
		if lot.Closed() {
			continue
		}
		if chosen == nil {
			chosen = lot
			if method == FIFO {
				// slice order is ledger order; first open lot wins
				return chosen
			}
			continue
		}
		if method == HIFO {
			switch {
			case lot.UnitCost.GreaterThan(chosen.UnitCost):
				chosen = lot
			case lot.UnitCost.Equal(chosen.UnitCost) && lot.OpenedAt.Before(chosen.OpenedAt):
				chosen = lot
			}
		}
	}
	return chosen
}
