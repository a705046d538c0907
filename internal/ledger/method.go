// Package ledger implements the BTC cost-basis engine: lot reconstruction
// from the trade ledger, FIFO/HIFO matching of sells against open lots, and
// realized-gain reporting suitable for tax filing.
//
// Every computation is a pure replay over an ordered, read-only trade
// snapshot. Nothing here mutates or caches ledger state, so two replays of
// the same snapshot under the same method produce identical output.
package ledger

import (
	"fmt"
	"strings"

	"github.com/ymiyake/asset-dashboard-backend/internal/apperrors"
)

// Method selects the cost-basis accounting method used to match sells
// against open lots.
type Method string

// Supported cost-basis methods.
const (
	// FIFO consumes the oldest open lot first.
	FIFO Method = "FIFO"

	// HIFO consumes the open lot with the highest unit cost first,
	// minimizing reported gain.
	HIFO Method = "HIFO"
)

// ParseMethod converts a method string (case-insensitive) into a Method.
// Unsupported values are rejected with apperrors.ErrUnknownMethod before
// any replay begins.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToUpper(strings.TrimSpace(s))) {
	case FIFO:
		return FIFO, nil
	case HIFO:
		return HIFO, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownMethod, s)
	}
}
