package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ymiyake/asset-dashboard-backend/internal/model"
)

// Test fixtures build trades directly; the engine is pure and never
// touches the database.

var seqCounter int64

func fixtureTrade(kind model.TradeKind, ts, amountBTC, counterJPY string) model.Trade {
	seqCounter++
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic("bad fixture timestamp: " + ts)
	}
	quantity := mustDec(amountBTC).Shift(8)
	if !quantity.IsInteger() {
		panic("fixture amount finer than satoshi precision: " + amountBTC)
	}
	counter := mustDec(counterJPY)
	return model.Trade{
		ID:           fmt.Sprintf("%s-%d", kind, seqCounter),
		Seq:          seqCounter,
		Kind:         kind,
		Timestamp:    parsed.UTC(),
		Quantity:     quantity.IntPart(),
		CounterValue: counter,
		UnitRate:     counter.Div(mustDec(amountBTC)),
	}
}

func buy(ts, amountBTC, counterJPY string) model.Trade {
	return fixtureTrade(model.TradeKindBuy, ts, amountBTC, counterJPY)
}

func sell(ts, amountBTC, counterJPY string) model.Trade {
	return fixtureTrade(model.TradeKindSell, ts, amountBTC, counterJPY)
}

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("bad fixture decimal: " + s)
	}
	return d
}

func jpy(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func sat(amountBTC string) int64 {
	return mustDec(amountBTC).Shift(8).IntPart()
}
