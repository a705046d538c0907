package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA timezone = 'UTC'",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production goose migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- BTC trade ledger
		CREATE TABLE IF NOT EXISTS btc_trade (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id VARCHAR(36) NOT NULL UNIQUE,
			kind VARCHAR(4) NOT NULL CHECK (kind IN ('buy', 'sell')),
			timestamp DATETIME NOT NULL,
			quantity_sat INTEGER NOT NULL CHECK (quantity_sat > 0),
			counter_value_jpy TEXT NOT NULL,
			unit_rate_jpy TEXT NOT NULL,
			fee_sat INTEGER NOT NULL DEFAULT 0 CHECK (fee_sat >= 0),
			fee_jpy TEXT NOT NULL DEFAULT '0',
			exchange VARCHAR(100),
			external_ref VARCHAR(100) UNIQUE,
			notes TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_btc_trade_order ON btc_trade (timestamp, seq);
	`

	_, err := db.Exec(schema)
	return err
}
