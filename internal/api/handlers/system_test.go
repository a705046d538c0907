package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ymiyake/asset-dashboard-backend/internal/service"
	"github.com/ymiyake/asset-dashboard-backend/internal/testutil"
	"github.com/ymiyake/asset-dashboard-backend/internal/version"
)

func TestHealthHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewSystemHandler(service.NewSystemService(db))

	t.Run("healthy database", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()
		handler.Health(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var resp HealthResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Status != "healthy" || resp.Database != "connected" {
			t.Errorf("Unexpected health response: %+v", resp)
		}
	})

	t.Run("closed database is unhealthy", func(t *testing.T) {
		db.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()
		handler.Health(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("Expected status 503, got %d", w.Code)
		}

		var resp HealthResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Status != "unhealthy" {
			t.Errorf("Unexpected health response: %+v", resp)
		}
	})
}

func TestVersionHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewSystemHandler(service.NewSystemService(db))

	req := httptest.NewRequest(http.MethodGet, "/api/system/version", nil)
	w := httptest.NewRecorder()
	handler.Version(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp VersionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.AppVersion != version.Version {
		t.Errorf("Expected version %s, got %s", version.Version, resp.AppVersion)
	}
}
