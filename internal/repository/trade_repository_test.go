package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ymiyake/asset-dashboard-backend/internal/apperrors"
	"github.com/ymiyake/asset-dashboard-backend/internal/model"
	"github.com/ymiyake/asset-dashboard-backend/internal/repository"
	"github.com/ymiyake/asset-dashboard-backend/internal/testutil"
)

func TestInsertTrade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTradeRepository(db)
	ctx := context.Background()

	t.Run("assigns the ledger sequence and round-trips", func(t *testing.T) {
		trade := model.Trade{
			ID:           testutil.MakeID(),
			Kind:         model.TradeKindBuy,
			Timestamp:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			Quantity:     50_000_000,
			CounterValue: decimal.NewFromInt(2_500_000),
			UnitRate:     decimal.NewFromInt(5_000_000),
			FeeBTC:       10_000,
			FeeFiat:      decimal.NewFromInt(500),
			Exchange:     "bitflyer",
			ExternalRef:  "ORD-1001",
			Notes:        "monthly purchase",
		}

		if err := repo.InsertTrade(ctx, &trade); err != nil {
			t.Fatalf("InsertTrade failed: %v", err)
		}
		if trade.Seq == 0 {
			t.Error("Expected the database to assign a non-zero sequence")
		}

		stored, err := repo.GetTrade(trade.ID)
		if err != nil {
			t.Fatalf("GetTrade failed: %v", err)
		}
		if stored.Seq != trade.Seq {
			t.Errorf("Expected seq %d, got %d", trade.Seq, stored.Seq)
		}
		if stored.Quantity != trade.Quantity {
			t.Errorf("Expected quantity %d sat, got %d", trade.Quantity, stored.Quantity)
		}
		if !stored.CounterValue.Equal(trade.CounterValue) {
			t.Errorf("Expected counter value %s, got %s", trade.CounterValue, stored.CounterValue)
		}
		if !stored.Timestamp.Equal(trade.Timestamp) {
			t.Errorf("Expected timestamp %s, got %s", trade.Timestamp, stored.Timestamp)
		}
		if stored.Exchange != "bitflyer" || stored.ExternalRef != "ORD-1001" || stored.Notes != "monthly purchase" {
			t.Errorf("Optional fields did not round-trip: %+v", stored)
		}
	})

	t.Run("empty optional fields stay empty", func(t *testing.T) {
		trade := model.Trade{
			ID:           testutil.MakeID(),
			Kind:         model.TradeKindSell,
			Timestamp:    time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC),
			Quantity:     10_000_000,
			CounterValue: decimal.NewFromInt(600_000),
			UnitRate:     decimal.NewFromInt(6_000_000),
			FeeFiat:      decimal.Zero,
		}

		if err := repo.InsertTrade(ctx, &trade); err != nil {
			t.Fatalf("InsertTrade failed: %v", err)
		}

		stored, err := repo.GetTrade(trade.ID)
		if err != nil {
			t.Fatalf("GetTrade failed: %v", err)
		}
		if stored.Exchange != "" || stored.ExternalRef != "" || stored.Notes != "" {
			t.Errorf("Expected empty optional fields, got %+v", stored)
		}
	})

	t.Run("duplicate external reference is rejected", func(t *testing.T) {
		first := model.Trade{
			ID:           testutil.MakeID(),
			Kind:         model.TradeKindBuy,
			Timestamp:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			Quantity:     model.SatoshisPerBTC,
			CounterValue: decimal.NewFromInt(5_000_000),
			UnitRate:     decimal.NewFromInt(5_000_000),
			FeeFiat:      decimal.Zero,
			ExternalRef:  "ORD-DUP",
		}
		if err := repo.InsertTrade(ctx, &first); err != nil {
			t.Fatalf("InsertTrade failed: %v", err)
		}

		second := first
		second.ID = testutil.MakeID()
		err := repo.InsertTrade(ctx, &second)
		if !errors.Is(err, apperrors.ErrDuplicateEntry) {
			t.Errorf("Expected ErrDuplicateEntry, got %v", err)
		}
	})
}

func TestListTrades(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTradeRepository(db)

	// Inserted out of chronological order on purpose.
	third := testutil.CreateSell(t, db, "2024-03-01T00:00:00Z", "0.5", "3000000")
	first := testutil.CreateBuy(t, db, "2024-01-01T00:00:00Z", "1", "5000000")
	second := testutil.CreateBuy(t, db, "2024-02-01T00:00:00Z", "1", "5500000")

	trades, err := repo.ListTrades()
	if err != nil {
		t.Fatalf("ListTrades failed: %v", err)
	}

	if len(trades) != 3 {
		t.Fatalf("Expected 3 trades, got %d", len(trades))
	}
	want := []string{first.ID, second.ID, third.ID}
	for i, id := range want {
		if trades[i].ID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, trades[i].ID)
		}
	}
}

func TestListTradesTimestampTies(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTradeRepository(db)

	// Same instant; insertion sequence must break the tie.
	first := testutil.CreateBuy(t, db, "2024-01-01T09:00:00Z", "1", "5000000")
	second := testutil.CreateBuy(t, db, "2024-01-01T09:00:00Z", "1", "5100000")

	trades, err := repo.ListTrades()
	if err != nil {
		t.Fatalf("ListTrades failed: %v", err)
	}

	if trades[0].ID != first.ID || trades[1].ID != second.ID {
		t.Errorf("Expected insertion order on equal timestamps, got %s then %s", trades[0].ID, trades[1].ID)
	}
	if trades[0].Seq >= trades[1].Seq {
		t.Errorf("Expected strictly increasing sequences, got %d then %d", trades[0].Seq, trades[1].Seq)
	}
}

func TestGetTradeNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTradeRepository(db)

	_, err := repo.GetTrade(testutil.MakeID())
	if !errors.Is(err, apperrors.ErrTradeNotFound) {
		t.Errorf("Expected ErrTradeNotFound, got %v", err)
	}
}

func TestUpdateTrade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTradeRepository(db)
	ctx := context.Background()

	t.Run("rewrites fields but keeps the sequence", func(t *testing.T) {
		trade := testutil.CreateBuy(t, db, "2024-01-01T00:00:00Z", "1", "5000000")

		trade.CounterValue = decimal.NewFromInt(4_900_000)
		trade.Notes = "corrected fill price"
		if err := repo.UpdateTrade(ctx, &trade); err != nil {
			t.Fatalf("UpdateTrade failed: %v", err)
		}

		stored, err := repo.GetTrade(trade.ID)
		if err != nil {
			t.Fatalf("GetTrade failed: %v", err)
		}
		if !stored.CounterValue.Equal(decimal.NewFromInt(4_900_000)) {
			t.Errorf("Expected updated counter value, got %s", stored.CounterValue)
		}
		if stored.Notes != "corrected fill price" {
			t.Errorf("Expected updated notes, got %q", stored.Notes)
		}
		if stored.Seq != trade.Seq {
			t.Errorf("Expected sequence %d to survive the update, got %d", trade.Seq, stored.Seq)
		}
	})

	t.Run("unknown trade is not found", func(t *testing.T) {
		missing := model.Trade{
			ID:           testutil.MakeID(),
			Kind:         model.TradeKindBuy,
			Timestamp:    time.Now().UTC(),
			Quantity:     model.SatoshisPerBTC,
			CounterValue: decimal.NewFromInt(5_000_000),
			UnitRate:     decimal.NewFromInt(5_000_000),
			FeeFiat:      decimal.Zero,
		}
		err := repo.UpdateTrade(ctx, &missing)
		if !errors.Is(err, apperrors.ErrTradeNotFound) {
			t.Errorf("Expected ErrTradeNotFound, got %v", err)
		}
	})
}

func TestDeleteTrade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTradeRepository(db)
	ctx := context.Background()

	t.Run("removes the trade", func(t *testing.T) {
		trade := testutil.CreateBuy(t, db, "2024-01-01T00:00:00Z", "1", "5000000")

		if err := repo.DeleteTrade(ctx, trade.ID); err != nil {
			t.Fatalf("DeleteTrade failed: %v", err)
		}
		if _, err := repo.GetTrade(trade.ID); !errors.Is(err, apperrors.ErrTradeNotFound) {
			t.Errorf("Expected the trade to be gone, got %v", err)
		}
	})

	t.Run("unknown trade is not found", func(t *testing.T) {
		err := repo.DeleteTrade(ctx, testutil.MakeID())
		if !errors.Is(err, apperrors.ErrTradeNotFound) {
			t.Errorf("Expected ErrTradeNotFound, got %v", err)
		}
	})
}
