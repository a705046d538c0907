package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ymiyake/asset-dashboard-backend/internal/ledger"
	"github.com/ymiyake/asset-dashboard-backend/internal/service"
	"github.com/ymiyake/asset-dashboard-backend/internal/testutil"
)

func TestCalculateGainHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewGainHandler(testutil.NewTestGainService(t, db))

	buy := testutil.CreateBuy(t, db, "2024-01-01T00:00:00Z", "1", "4000000")
	testutil.CreateBuy(t, db, "2024-02-01T00:00:00Z", "1", "6000000")
	sale := testutil.CreateSell(t, db, "2024-03-01T00:00:00Z", "1", "7000000")

	calculate := func(id string, body []byte) *httptest.ResponseRecorder {
		req := testutil.NewJSONRequestWithURLParams(
			http.MethodPost,
			"/api/btc-trades/"+id+"/calculate-gain",
			body,
			map[string]string{"uuid": id},
		)
		w := httptest.NewRecorder()
		handler.CalculateGain(w, req)
		return w
	}

	t.Run("empty body defaults to FIFO", func(t *testing.T) {
		w := calculate(sale.ID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var report ledger.RealizedGainReport
		if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if report.Method != ledger.FIFO {
			t.Errorf("Expected method FIFO, got %s", report.Method)
		}
		if report.Matches[0].LotID != buy.ID {
			t.Errorf("Expected the oldest lot, got %s", report.Matches[0].LotID)
		}
		if report.TotalGain.String() != "3000000" {
			t.Errorf("Expected gain 3000000, got %s", report.TotalGain)
		}
	})

	t.Run("explicit HIFO method", func(t *testing.T) {
		w := calculate(sale.ID, []byte(`{"method": "HIFO"}`))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var report ledger.RealizedGainReport
		if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if report.TotalGain.String() != "1000000" {
			t.Errorf("Expected gain 1000000, got %s", report.TotalGain)
		}
	})

	t.Run("unknown method returns 400", func(t *testing.T) {
		if w := calculate(sale.ID, []byte(`{"method": "LIFO"}`)); w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("buy trade returns 400", func(t *testing.T) {
		if w := calculate(buy.ID, nil); w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("unknown trade returns 404", func(t *testing.T) {
		if w := calculate(testutil.MakeID(), nil); w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("under-matched sell still returns 200", func(t *testing.T) {
		short := testutil.CreateSell(t, db, "2024-04-01T00:00:00Z", "2", "13000000")

		w := calculate(short.ID, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var report ledger.RealizedGainReport
		if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if !report.Incomplete {
			t.Error("Expected the report to be marked incomplete")
		}
		if report.UnmatchedQuantity != 100_000_000 {
			t.Errorf("Expected 1 BTC unmatched, got %d sat", report.UnmatchedQuantity)
		}
	})
}

func TestYearlyReportHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewGainHandler(testutil.NewTestGainService(t, db))

	testutil.CreateBuy(t, db, "2024-01-01T00:00:00Z", "1", "4000000")
	testutil.CreateSell(t, db, "2024-06-01T00:00:00Z", "0.5", "2800000")

	report := func(year, query string) *httptest.ResponseRecorder {
		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/btc-trades/report/"+year+query,
			map[string]string{"year": year},
		)
		w := httptest.NewRecorder()
		handler.YearlyReport(w, req)
		return w
	}

	t.Run("defaults to FIFO", func(t *testing.T) {
		w := report("2024", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var yearly ledger.YearlyReport
		if err := json.NewDecoder(w.Body).Decode(&yearly); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if yearly.Method != ledger.FIFO {
			t.Errorf("Expected method FIFO, got %s", yearly.Method)
		}
		if len(yearly.Trades) != 1 {
			t.Errorf("Expected 1 sell, got %d", len(yearly.Trades))
		}
		// 2,800,000 − 2,000,000, already whole yen.
		if yearly.Totals.Gain.String() != "800000" {
			t.Errorf("Expected gain 800000, got %s", yearly.Totals.Gain)
		}
	})

	t.Run("method query parameter", func(t *testing.T) {
		w := report("2024", "?method=hifo")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var yearly ledger.YearlyReport
		if err := json.NewDecoder(w.Body).Decode(&yearly); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if yearly.Method != ledger.HIFO {
			t.Errorf("Expected method HIFO, got %s", yearly.Method)
		}
	})

	t.Run("unknown method returns 400", func(t *testing.T) {
		if w := report("2024", "?method=average"); w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("invalid years return 400", func(t *testing.T) {
		for _, year := range []string{"abc", "2008", "10000"} {
			if w := report(year, ""); w.Code != http.StatusBadRequest {
				t.Errorf("Year %q: expected status 400, got %d", year, w.Code)
			}
		}
	})
}

func TestCompareMethodsHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewGainHandler(testutil.NewTestGainService(t, db))

	testutil.CreateBuy(t, db, "2024-01-01T00:00:00Z", "1", "4000000")
	testutil.CreateBuy(t, db, "2024-02-01T00:00:00Z", "1", "6000000")
	testutil.CreateSell(t, db, "2024-03-01T00:00:00Z", "1", "7000000")

	req := testutil.NewRequestWithURLParams(
		http.MethodGet,
		"/api/btc-trades/report/2024/compare",
		map[string]string{"year": "2024"},
	)
	w := httptest.NewRecorder()
	handler.CompareMethods(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var comparison service.MethodComparison
	if err := json.NewDecoder(w.Body).Decode(&comparison); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if comparison.Year != 2024 {
		t.Errorf("Expected year 2024, got %d", comparison.Year)
	}
	if comparison.FIFO.Totals.Gain.String() != "3000000" {
		t.Errorf("Expected FIFO gain 3000000, got %s", comparison.FIFO.Totals.Gain)
	}
	if comparison.HIFO.Totals.Gain.String() != "1000000" {
		t.Errorf("Expected HIFO gain 1000000, got %s", comparison.HIFO.Totals.Gain)
	}
}
