package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ymiyake/asset-dashboard-backend/internal/apperrors"
	"github.com/ymiyake/asset-dashboard-backend/internal/model"
)

// TradeRepository provides data access methods for the btc_trade table.
// It is the durable half of the trade ledger: trades are the only state
// the application persists, lots and reports are always recomputed.
type TradeRepository struct {
	db *sql.DB
}

// NewTradeRepository creates a new TradeRepository with the provided database connection.
func NewTradeRepository(db *sql.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

const tradeColumns = `seq, id, kind, timestamp, quantity_sat, counter_value_jpy, unit_rate_jpy, fee_sat, fee_jpy, exchange, external_ref, notes, created_at, updated_at`

// ListTrades retrieves the full ledger in its total order: timestamp
// ascending, insertion sequence breaking ties. This is the ordering the
// gain engine replays, so it must be stable across calls.
func (s *TradeRepository) ListTrades() ([]model.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM btc_trade
		ORDER BY timestamp ASC, seq ASC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query btc_trade table: %w", err)
	}
	defer rows.Close()

	trades := []model.Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating btc_trade table: %w", err)
	}

	return trades, nil
}

// GetTrade retrieves a single trade by its ID.
// Returns apperrors.ErrTradeNotFound if no trade with the ID exists.
func (s *TradeRepository) GetTrade(tradeID string) (model.Trade, error) {
	query := `
		SELECT ` + tradeColumns + `
		FROM btc_trade
		WHERE id = ?
	`

	row := s.db.QueryRow(query, tradeID)
	t, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Trade{}, fmt.Errorf("%w: %s", apperrors.ErrTradeNotFound, tradeID)
		}
		return model.Trade{}, err
	}
	return t, nil
}

// InsertTrade records a new trade in the ledger. The database assigns the
// insertion sequence; it is written back into the trade.
// Returns apperrors.ErrDuplicateEntry when the external reference is
// already recorded.
func (s *TradeRepository) InsertTrade(ctx context.Context, t *model.Trade) error {
	query := `
		INSERT INTO btc_trade (id, kind, timestamp, quantity_sat, counter_value_jpy, unit_rate_jpy, fee_sat, fee_jpy, exchange, external_ref, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	res, err := s.db.ExecContext(ctx, query,
		t.ID,
		string(t.Kind),
		formatTime(t.Timestamp),
		t.Quantity,
		t.CounterValue.String(),
		t.UnitRate.String(),
		t.FeeBTC,
		t.FeeFiat.String(),
		nullable(t.Exchange),
		nullable(t.ExternalRef),
		nullable(t.Notes),
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: external reference %q", apperrors.ErrDuplicateEntry, t.ExternalRef)
		}
		return fmt.Errorf("failed to insert trade: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read trade sequence: %w", err)
	}
	t.Seq = seq

	return nil
}

// UpdateTrade rewrites the mutable fields of an existing trade. The
// insertion sequence is deliberately untouched: it records when the entry
// was first put in the ledger, and keeps replay ordering stable under
// corrections.
func (s *TradeRepository) UpdateTrade(ctx context.Context, t *model.Trade) error {
	query := `
		UPDATE btc_trade
		SET kind = ?, timestamp = ?, quantity_sat = ?, counter_value_jpy = ?, unit_rate_jpy = ?, fee_sat = ?, fee_jpy = ?, exchange = ?, external_ref = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`

	t.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, query,
		string(t.Kind),
		formatTime(t.Timestamp),
		t.Quantity,
		t.CounterValue.String(),
		t.UnitRate.String(),
		t.FeeBTC,
		t.FeeFiat.String(),
		nullable(t.Exchange),
		nullable(t.ExternalRef),
		nullable(t.Notes),
		formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: external reference %q", apperrors.ErrDuplicateEntry, t.ExternalRef)
		}
		return fmt.Errorf("failed to update trade: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrTradeNotFound, t.ID)
	}

	return nil
}

// DeleteTrade removes a trade from the ledger.
// Returns apperrors.ErrTradeNotFound if no trade with the ID exists.
func (s *TradeRepository) DeleteTrade(ctx context.Context, tradeID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM btc_trade WHERE id = ?`, tradeID)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrTradeNotFound, tradeID)
	}

	return nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(row scanner) (model.Trade, error) {
	var t model.Trade
	var kind, timestampStr, counterStr, rateStr, feeStr, createdStr, updatedStr string
	var exchange, externalRef, notes sql.NullString

	err := row.Scan(
		&t.Seq,
		&t.ID,
		&kind,
		&timestampStr,
		&t.Quantity,
		&counterStr,
		&rateStr,
		&t.FeeBTC,
		&feeStr,
		&exchange,
		&externalRef,
		&notes,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Trade{}, err
		}
		return model.Trade{}, fmt.Errorf("failed to scan btc_trade row: %w", err)
	}

	t.Kind = model.TradeKind(kind)

	if t.Timestamp, err = ParseTime(timestampStr); err != nil {
		return model.Trade{}, err
	}
	if t.CreatedAt, err = ParseTime(createdStr); err != nil {
		return model.Trade{}, err
	}
	if t.UpdatedAt, err = ParseTime(updatedStr); err != nil {
		return model.Trade{}, err
	}

	if t.CounterValue, err = decimal.NewFromString(counterStr); err != nil {
		return model.Trade{}, fmt.Errorf("failed to parse counter value: %w", err)
	}
	if t.UnitRate, err = decimal.NewFromString(rateStr); err != nil {
		return model.Trade{}, fmt.Errorf("failed to parse unit rate: %w", err)
	}
	if t.FeeFiat, err = decimal.NewFromString(feeStr); err != nil {
		return model.Trade{}, fmt.Errorf("failed to parse fiat fee: %w", err)
	}

	t.Exchange = exchange.String
	t.ExternalRef = externalRef.String
	t.Notes = notes.String

	return t, nil
}

// formatTime stores instants as RFC3339 UTC strings so lexicographic and
// chronological order agree in SQL.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
