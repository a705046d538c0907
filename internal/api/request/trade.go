package request

// CreateTradeRequest is the payload for recording a new BTC trade.
// BTC and JPY amounts are decimal strings; quantities finer than one
// satoshi are rejected at validation.
type CreateTradeRequest struct {
	Kind            string `json:"kind"`
	Timestamp       string `json:"timestamp"`
	AmountBTC       string `json:"amountBtc"`
	CounterValueJPY string `json:"counterValueJpy"`
	UnitRateJPY     string `json:"unitRateJpy,omitempty"`
	FeeBTC          string `json:"feeBtc,omitempty"`
	FeeJPY          string `json:"feeJpy,omitempty"`
	Exchange        string `json:"exchange,omitempty"`
	ExternalRef     string `json:"externalRef,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// UpdateTradeRequest is the payload for correcting a recorded trade.
// All fields are optional; omitted fields keep their recorded values.
type UpdateTradeRequest struct {
	Kind            *string `json:"kind,omitempty"`
	Timestamp       *string `json:"timestamp,omitempty"`
	AmountBTC       *string `json:"amountBtc,omitempty"`
	CounterValueJPY *string `json:"counterValueJpy,omitempty"`
	UnitRateJPY     *string `json:"unitRateJpy,omitempty"`
	FeeBTC          *string `json:"feeBtc,omitempty"`
	FeeJPY          *string `json:"feeJpy,omitempty"`
	Exchange        *string `json:"exchange,omitempty"`
	ExternalRef     *string `json:"externalRef,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// CalculateGainRequest selects the cost-basis method for a per-sale gain
// calculation. Defaults to FIFO when the body or method is omitted.
type CalculateGainRequest struct {
	Method string `json:"method,omitempty"`
}
