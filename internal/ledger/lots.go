package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ymiyake/asset-dashboard-backend/internal/model"
)

// Lot is the still-unsold portion of one historical buy. Lots are derived
// state: they are rebuilt from the ledger on every replay and never
// persisted, so a corrected buy automatically corrects every downstream
// report.
type Lot struct {
	// OpenedBy is the ID of the buy trade that created the lot.
	OpenedBy string `json:"openedBy"`

	// OpenedAt is the buy's timestamp.
	OpenedAt time.Time `json:"openedAt"`

	// Seq is the buy's ledger insertion order, used as the stable
	// tie-break when timestamps collide.
	Seq int64 `json:"-"`

	// OriginalQuantity is the buy's full satoshi quantity.
	OriginalQuantity int64 `json:"originalQuantitySat"`

	// Remaining is the unconsumed satoshi quantity. It only decreases,
	// and never below zero. A lot with Remaining == 0 is closed: ignored
	// by matching but retained for audit.
	Remaining int64 `json:"remainingSat"`

	// UnitCost is the fiat cost per whole BTC, fixed at lot creation.
	// It folds the buy's fiat fee plus any BTC fee converted at the
	// buy's own rate into the acquisition cost.
	UnitCost decimal.Decimal `json:"unitCostJpy"`
}

// Closed reports whether the lot has been fully consumed.
func (l Lot) Closed() bool { return l.Remaining == 0 }

// unitCostFor computes the fixed per-BTC acquisition cost of a buy:
// (counter value + fiat fee + BTC fee at the trade's own rate) / quantity.
func unitCostFor(buy model.Trade) decimal.Decimal {
	cost := buy.CounterValue.Add(buy.FeeFiat)
	if buy.FeeBTC > 0 {
		cost = cost.Add(model.SatoshiToBTC(buy.FeeBTC).Mul(buy.UnitRate))
	}
	return cost.Div(buy.QuantityBTC())
}

// newLot opens a lot for a validated buy trade.
func newLot(buy model.Trade) Lot {
	return Lot{
		OpenedBy:         buy.ID,
		OpenedAt:         buy.Timestamp,
		Seq:              buy.Seq,
		OriginalQuantity: buy.Quantity,
		Remaining:        buy.Quantity,
		UnitCost:         unitCostFor(buy),
	}
}

// BuildLots reconstructs the pristine lot set from a validated ledger.
// Each buy opens exactly one lot; sells never touch the store here, so the
// result is method-independent and identical across rebuilds. Lots come
// back in ledger order (timestamp ascending, insertion order on ties).
func BuildLots(trades []model.Trade) []Lot {
	ordered := sortTrades(trades)
	lots := make([]Lot, 0, len(ordered))
	for _, t := range ordered {
		if t.IsBuy() {
			lots = append(lots, newLot(t))
		}
	}
	return lots
}

// sortTrades returns a copy of the ledger in its total order: timestamp
// ascending, insertion sequence breaking ties. The repository already
// returns trades ordered, but the engine re-establishes the order itself
// so determinism never depends on the caller.
func sortTrades(trades []model.Trade) []model.Trade {
	ordered := make([]model.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].Timestamp.Before(ordered[j].Timestamp)
		}
		return ordered[i].Seq < ordered[j].Seq
	})
	return ordered
}
