package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ymiyake/asset-dashboard-backend/internal/model"
)

// TradeBuilder provides a fluent interface for creating test trades.
//
// Example usage:
//
//	// Simple creation with defaults (a 1 BTC buy)
//	trade := testutil.NewTrade().Build(t, db)
//
//	// Customized trade
//	trade := testutil.NewTrade().
//	    Sell().
//	    WithAmountBTC("0.5").
//	    WithCounterValueJPY("4000000").
//	    At("2024-03-01T10:00:00Z").
//	    Build(t, db)
type TradeBuilder struct {
	ID           string
	Kind         model.TradeKind
	Timestamp    time.Time
	Quantity     int64
	CounterValue decimal.Decimal
	UnitRate     decimal.Decimal
	FeeBTC       int64
	FeeFiat      decimal.Decimal
	Exchange     string
	ExternalRef  string
	Notes        string
}

// NewTrade creates a TradeBuilder with sensible defaults: a 1 BTC buy for
// 5,000,000 JPY with no fees.
func NewTrade() *TradeBuilder {
	return &TradeBuilder{
		ID:           MakeID(),
		Kind:         model.TradeKindBuy,
		Timestamp:    time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
		Quantity:     model.SatoshisPerBTC,
		CounterValue: decimal.NewFromInt(5_000_000),
		UnitRate:     decimal.NewFromInt(5_000_000),
		FeeFiat:      decimal.Zero,
	}
}

// WithID sets a custom ID.
func (b *TradeBuilder) WithID(id string) *TradeBuilder {
	b.ID = id
	return b
}

// Buy marks the trade as a buy.
func (b *TradeBuilder) Buy() *TradeBuilder {
	b.Kind = model.TradeKindBuy
	return b
}

// Sell marks the trade as a sell.
func (b *TradeBuilder) Sell() *TradeBuilder {
	b.Kind = model.TradeKindSell
	return b
}

// At sets the trade timestamp from an RFC3339 string.
func (b *TradeBuilder) At(timestamp string) *TradeBuilder {
	parsed, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		panic("testutil: bad timestamp in TradeBuilder.At: " + timestamp)
	}
	b.Timestamp = parsed.UTC()
	return b
}

// AtTime sets the trade timestamp directly.
func (b *TradeBuilder) AtTime(timestamp time.Time) *TradeBuilder {
	b.Timestamp = timestamp.UTC()
	return b
}

// WithAmountBTC sets the trade quantity from a decimal BTC string.
func (b *TradeBuilder) WithAmountBTC(amount string) *TradeBuilder {
	b.Quantity = mustSatoshi(amount)
	return b
}

// WithQuantitySat sets the trade quantity in satoshis.
func (b *TradeBuilder) WithQuantitySat(sat int64) *TradeBuilder {
	b.Quantity = sat
	return b
}

// WithCounterValueJPY sets the fiat amount from a decimal string.
func (b *TradeBuilder) WithCounterValueJPY(value string) *TradeBuilder {
	b.CounterValue = mustDecimal(value)
	return b
}

// WithUnitRateJPY sets the informational JPY/BTC rate from a decimal string.
func (b *TradeBuilder) WithUnitRateJPY(rate string) *TradeBuilder {
	b.UnitRate = mustDecimal(rate)
	return b
}

// WithFeeBTC sets the BTC fee from a decimal BTC string.
func (b *TradeBuilder) WithFeeBTC(amount string) *TradeBuilder {
	b.FeeBTC = mustSatoshi(amount)
	return b
}

// WithFeeJPY sets the fiat fee from a decimal string.
func (b *TradeBuilder) WithFeeJPY(fee string) *TradeBuilder {
	b.FeeFiat = mustDecimal(fee)
	return b
}

// WithExchange sets the exchange name.
func (b *TradeBuilder) WithExchange(exchange string) *TradeBuilder {
	b.Exchange = exchange
	return b
}

// WithExternalRef sets the external transaction reference.
func (b *TradeBuilder) WithExternalRef(ref string) *TradeBuilder {
	b.ExternalRef = ref
	return b
}

// Model returns the trade as a model value without touching the database.
// Useful for exercising the pure ledger engine.
func (b *TradeBuilder) Model(seq int64) model.Trade {
	return model.Trade{
		ID:           b.ID,
		Seq:          seq,
		Kind:         b.Kind,
		Timestamp:    b.Timestamp,
		Quantity:     b.Quantity,
		CounterValue: b.CounterValue,
		UnitRate:     b.UnitRate,
		FeeBTC:       b.FeeBTC,
		FeeFiat:      b.FeeFiat,
		Exchange:     b.Exchange,
		ExternalRef:  b.ExternalRef,
		Notes:        b.Notes,
	}
}

// Build creates the trade in the database and returns it with its
// assigned ledger sequence.
func (b *TradeBuilder) Build(t *testing.T, db *sql.DB) model.Trade {
	t.Helper()

	query := `
		INSERT INTO btc_trade (id, kind, timestamp, quantity_sat, counter_value_jpy, unit_rate_jpy, fee_sat, fee_jpy, exchange, external_ref, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := db.Exec(query,
		b.ID,
		string(b.Kind),
		b.Timestamp.UTC().Format(time.RFC3339),
		b.Quantity,
		b.CounterValue.String(),
		b.UnitRate.String(),
		b.FeeBTC,
		b.FeeFiat.String(),
		nullIfEmpty(b.Exchange),
		nullIfEmpty(b.ExternalRef),
		nullIfEmpty(b.Notes),
	)
	if err != nil {
		t.Fatalf("Failed to create test trade: %v", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read test trade sequence: %v", err)
	}

	return b.Model(seq)
}

// Convenience functions

// CreateBuy creates a buy of the given BTC amount at the given total JPY cost.
func CreateBuy(t *testing.T, db *sql.DB, timestamp, amountBTC, counterJPY string) model.Trade {
	t.Helper()
	return NewTrade().
		Buy().
		At(timestamp).
		WithAmountBTC(amountBTC).
		WithCounterValueJPY(counterJPY).
		WithUnitRateJPY(rateFor(amountBTC, counterJPY)).
		Build(t, db)
}

// CreateSell creates a sell of the given BTC amount for the given total JPY proceeds.
func CreateSell(t *testing.T, db *sql.DB, timestamp, amountBTC, counterJPY string) model.Trade {
	t.Helper()
	return NewTrade().
		Sell().
		At(timestamp).
		WithAmountBTC(amountBTC).
		WithCounterValueJPY(counterJPY).
		WithUnitRateJPY(rateFor(amountBTC, counterJPY)).
		Build(t, db)
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("testutil: bad decimal literal: " + s)
	}
	return d
}

func mustSatoshi(s string) int64 {
	sat := mustDecimal(s).Shift(8)
	if !sat.IsInteger() {
		panic("testutil: BTC amount finer than satoshi precision: " + s)
	}
	return sat.IntPart()
}

func rateFor(amountBTC, counterJPY string) string {
	return mustDecimal(counterJPY).Div(mustDecimal(amountBTC)).String()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
