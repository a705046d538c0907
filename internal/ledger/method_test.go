package ledger

import (
	"errors"
	"testing"

	"github.com/ymiyake/asset-dashboard-backend/internal/apperrors"
)

func TestParseMethod(t *testing.T) {
	valid := map[string]Method{
		"FIFO":    FIFO,
		"fifo":    FIFO,
		"Fifo":    FIFO,
		"HIFO":    HIFO,
		"hifo":    HIFO,
		" hifo ":  HIFO,
		"\tFIFO ": FIFO,
	}
	for input, want := range valid {
		method, err := ParseMethod(input)
		if err != nil {
			t.Errorf("ParseMethod(%q) failed: %v", input, err)
			continue
		}
		if method != want {
			t.Errorf("ParseMethod(%q) = %s, want %s", input, method, want)
		}
	}

	for _, input := range []string{"", "LIFO", "average", "fifo hifo"} {
		if _, err := ParseMethod(input); !errors.Is(err, apperrors.ErrUnknownMethod) {
			t.Errorf("ParseMethod(%q): expected ErrUnknownMethod, got %v", input, err)
		}
	}
}
