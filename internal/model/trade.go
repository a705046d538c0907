package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeKind distinguishes acquisitions from disposals in the BTC ledger.
type TradeKind string

// Allowed trade kinds.
const (
	TradeKindBuy  TradeKind = "buy"
	TradeKindSell TradeKind = "sell"
)

// SatoshisPerBTC is the number of satoshis in one whole BTC.
// All BTC quantities are stored as integer satoshi counts; fiat values
// use decimals. Floating point never touches a quantity or an amount.
const SatoshisPerBTC = 100_000_000

// Trade is one entry in the BTC trade ledger. The ledger is totally
// ordered by Timestamp ascending, with Seq (insertion order) breaking ties.
// Once recorded a trade is immutable from the engine's perspective; edits
// go through the ledger owner and force a fresh replay.
type Trade struct {
	ID           string          `json:"id"`
	Seq          int64           `json:"-"`
	Kind         TradeKind       `json:"kind"`
	Timestamp    time.Time       `json:"timestamp"`
	Quantity     int64           `json:"quantitySat"`
	CounterValue decimal.Decimal `json:"counterValueJpy"`
	UnitRate     decimal.Decimal `json:"unitRateJpy"`
	FeeBTC       int64           `json:"feeSat"`
	FeeFiat      decimal.Decimal `json:"feeJpy"`
	Exchange     string          `json:"exchange,omitempty"`
	ExternalRef  string          `json:"externalRef,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"createdAt,omitempty"`
	UpdatedAt    time.Time       `json:"updatedAt,omitempty"`
}

// IsBuy reports whether the trade is an acquisition.
func (t Trade) IsBuy() bool { return t.Kind == TradeKindBuy }

// IsSell reports whether the trade is a disposal.
func (t Trade) IsSell() bool { return t.Kind == TradeKindSell }

// QuantityBTC returns the trade quantity as a decimal number of whole BTC.
func (t Trade) QuantityBTC() decimal.Decimal {
	return SatoshiToBTC(t.Quantity)
}

// SatoshiToBTC converts an integer satoshi count to a decimal BTC amount.
// The conversion is an exponent shift, so it is always exact.
func SatoshiToBTC(sat int64) decimal.Decimal {
	return decimal.New(sat, -8)
}

// TradeResponse is the API representation of a trade. BTC quantities are
// rendered as decimal BTC strings alongside the raw satoshi counts so
// clients never have to do the conversion themselves.
type TradeResponse struct {
	ID              string          `json:"id"`
	Kind            TradeKind       `json:"kind"`
	Timestamp       time.Time       `json:"timestamp"`
	AmountBTC       decimal.Decimal `json:"amountBtc"`
	QuantitySat     int64           `json:"quantitySat"`
	CounterValueJPY decimal.Decimal `json:"counterValueJpy"`
	UnitRateJPY     decimal.Decimal `json:"unitRateJpy"`
	FeeBTC          decimal.Decimal `json:"feeBtc"`
	FeeJPY          decimal.Decimal `json:"feeJpy"`
	Exchange        string          `json:"exchange,omitempty"`
	ExternalRef     string          `json:"externalRef,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// NewTradeResponse builds the API view of a ledger trade.
func NewTradeResponse(t Trade) TradeResponse {
	return TradeResponse{
		ID:              t.ID,
		Kind:            t.Kind,
		Timestamp:       t.Timestamp,
		AmountBTC:       t.QuantityBTC(),
		QuantitySat:     t.Quantity,
		CounterValueJPY: t.CounterValue,
		UnitRateJPY:     t.UnitRate,
		FeeBTC:          SatoshiToBTC(t.FeeBTC),
		FeeJPY:          t.FeeFiat,
		Exchange:        t.Exchange,
		ExternalRef:     t.ExternalRef,
		Notes:           t.Notes,
		CreatedAt:       t.CreatedAt,
	}
}

// TradeSummary aggregates the ledger into the headline figures shown on
// the dashboard: how much was bought, sold, and is still held.
type TradeSummary struct {
	TotalBTC       decimal.Decimal `json:"totalBtc"`
	TotalBought    decimal.Decimal `json:"totalBought"`
	TotalSold      decimal.Decimal `json:"totalSold"`
	AverageBuyRate decimal.Decimal `json:"averageBuyRate"`
	LatestTrade    *TradeResponse  `json:"latestTrade,omitempty"`
}
