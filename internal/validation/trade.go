package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ymiyake/asset-dashboard-backend/internal/api/request"
	"github.com/ymiyake/asset-dashboard-backend/internal/model"
)

// ValidTradeKind contains the allowed trade kind values.
var ValidTradeKind = map[string]bool{
	"buy": true, "sell": true,
}

// ParseBTCAmount parses a decimal BTC string into satoshis. Amounts finer
// than one satoshi are rejected; the ledger stores integer satoshi counts
// and never floats.
func ParseBTCAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not a decimal number: %s", s)
	}
	sat := d.Shift(8)
	if !sat.IsInteger() {
		return 0, fmt.Errorf("finer than satoshi precision: %s", s)
	}
	if !sat.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount out of range: %s", s)
	}
	return sat.IntPart(), nil
}

// ParseFiatAmount parses a decimal JPY string.
func ParseFiatAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("not a decimal number: %s", s)
	}
	return d, nil
}

// ValidateCreateTrade validates a trade creation request. This is the
// ingestion boundary of the ledger: a trade that passes here satisfies the
// engine's input invariants (positive quantity, non-negative values and
// fees), so the engine itself never re-validates.
//
// Required fields:
//   - kind: buy or sell
//   - timestamp: RFC3339
//   - amountBtc: positive decimal, at most 8 fractional digits
//   - counterValueJpy: non-negative decimal
//
// Optional fields (validated if provided):
//   - unitRateJpy, feeJpy: non-negative decimals
//   - feeBtc: non-negative decimal, at most 8 fractional digits
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTrade(req request.CreateTradeRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Kind) == "" {
		errors["kind"] = "kind is required"
	} else if !ValidTradeKind[req.Kind] {
		errors["kind"] = fmt.Sprintf("invalid kind: %s", req.Kind)
	}

	if strings.TrimSpace(req.Timestamp) == "" {
		errors["timestamp"] = "timestamp is required"
	} else if _, err := time.Parse(time.RFC3339, req.Timestamp); err != nil {
		errors["timestamp"] = err.Error()
	}

	if strings.TrimSpace(req.AmountBTC) == "" {
		errors["amountBtc"] = "amountBtc is required"
	} else if sat, err := ParseBTCAmount(req.AmountBTC); err != nil {
		errors["amountBtc"] = err.Error()
	} else if sat <= 0 {
		errors["amountBtc"] = "amountBtc must be positive"
	}

	if strings.TrimSpace(req.CounterValueJPY) == "" {
		errors["counterValueJpy"] = "counterValueJpy is required"
	} else if v, err := ParseFiatAmount(req.CounterValueJPY); err != nil {
		errors["counterValueJpy"] = err.Error()
	} else if v.IsNegative() {
		errors["counterValueJpy"] = "counterValueJpy cannot be negative"
	}

	if req.UnitRateJPY != "" {
		if v, err := ParseFiatAmount(req.UnitRateJPY); err != nil {
			errors["unitRateJpy"] = err.Error()
		} else if v.IsNegative() {
			errors["unitRateJpy"] = "unitRateJpy cannot be negative"
		}
	}

	if req.FeeBTC != "" {
		if sat, err := ParseBTCAmount(req.FeeBTC); err != nil {
			errors["feeBtc"] = err.Error()
		} else if sat < 0 {
			errors["feeBtc"] = "feeBtc cannot be negative"
		}
	}

	if req.FeeJPY != "" {
		if v, err := ParseFiatAmount(req.FeeJPY); err != nil {
			errors["feeJpy"] = err.Error()
		} else if v.IsNegative() {
			errors["feeJpy"] = "feeJpy cannot be negative"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateTrade validates a trade update request.
// All fields are optional, but if provided, they must meet the same constraints as create.
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateUpdateTrade(req request.UpdateTradeRequest) error {
	errors := make(map[string]string)

	if req.Kind != nil {
		if !ValidTradeKind[*req.Kind] {
			errors["kind"] = fmt.Sprintf("invalid kind: %s", *req.Kind)
		}
	}

	if req.Timestamp != nil {
		if _, err := time.Parse(time.RFC3339, *req.Timestamp); err != nil {
			errors["timestamp"] = err.Error()
		}
	}

	if req.AmountBTC != nil {
		if sat, err := ParseBTCAmount(*req.AmountBTC); err != nil {
			errors["amountBtc"] = err.Error()
		} else if sat <= 0 {
			errors["amountBtc"] = "amountBtc must be positive"
		}
	}

	if req.CounterValueJPY != nil {
		if v, err := ParseFiatAmount(*req.CounterValueJPY); err != nil {
			errors["counterValueJpy"] = err.Error()
		} else if v.IsNegative() {
			errors["counterValueJpy"] = "counterValueJpy cannot be negative"
		}
	}

	if req.UnitRateJPY != nil {
		if v, err := ParseFiatAmount(*req.UnitRateJPY); err != nil {
			errors["unitRateJpy"] = err.Error()
		} else if v.IsNegative() {
			errors["unitRateJpy"] = "unitRateJpy cannot be negative"
		}
	}

	if req.FeeBTC != nil {
		if sat, err := ParseBTCAmount(*req.FeeBTC); err != nil {
			errors["feeBtc"] = err.Error()
		} else if sat < 0 {
			errors["feeBtc"] = "feeBtc cannot be negative"
		}
	}

	if req.FeeJPY != nil {
		if v, err := ParseFiatAmount(*req.FeeJPY); err != nil {
			errors["feeJpy"] = err.Error()
		} else if v.IsNegative() {
			errors["feeJpy"] = "feeJpy cannot be negative"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// DeriveUnitRate fills in the informational unit rate when the request
// omits it, as counter value divided by quantity.
func DeriveUnitRate(counterValue decimal.Decimal, quantitySat int64) decimal.Decimal {
	if quantitySat == 0 {
		return decimal.Decimal{}
	}
	return counterValue.Div(model.SatoshiToBTC(quantitySat))
}
