package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ymiyake/asset-dashboard-backend/internal/api/request"
	"github.com/ymiyake/asset-dashboard-backend/internal/model"
	"github.com/ymiyake/asset-dashboard-backend/internal/repository"
	"github.com/ymiyake/asset-dashboard-backend/internal/validation"
)

// TradeService handles trade ledger business logic: ingestion-time
// validation, recording, correction, and the dashboard summary.
type TradeService struct {
	tradeRepo *repository.TradeRepository
}

// NewTradeService creates a new TradeService with the provided repository dependencies.
func NewTradeService(
	tradeRepo *repository.TradeRepository,
) *TradeService {
	return &TradeService{
		tradeRepo: tradeRepo,
	}
}

// ListTrades returns every recorded trade, newest first, as API responses.
func (s *TradeService) ListTrades() ([]model.TradeResponse, error) {
	trades, err := s.tradeRepo.ListTrades()
	if err != nil {
		return nil, err
	}

	responses := make([]model.TradeResponse, 0, len(trades))
	for i := len(trades) - 1; i >= 0; i-- {
		responses = append(responses, model.NewTradeResponse(trades[i]))
	}
	return responses, nil
}

// GetTrade retrieves a single trade by its ID.
func (s *TradeService) GetTrade(tradeID string) (model.TradeResponse, error) {
	trade, err := s.tradeRepo.GetTrade(tradeID)
	if err != nil {
		return model.TradeResponse{}, err
	}
	return model.NewTradeResponse(trade), nil
}

// CreateTrade records a new trade. The request is assumed validated at the
// handler boundary, so parsing here cannot fail on a well-formed request;
// this method still defends against malformed amounts.
func (s *TradeService) CreateTrade(ctx context.Context, req request.CreateTradeRequest) (*model.TradeResponse, error) {
	timestamp, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp: %w", err)
	}

	quantity, err := validation.ParseBTCAmount(req.AmountBTC)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}

	counterValue, err := validation.ParseFiatAmount(req.CounterValueJPY)
	if err != nil {
		return nil, fmt.Errorf("failed to parse counter value: %w", err)
	}

	trade := &model.Trade{
		ID:           uuid.New().String(),
		Kind:         model.TradeKind(req.Kind),
		Timestamp:    timestamp.UTC(),
		Quantity:     quantity,
		CounterValue: counterValue,
		Exchange:     req.Exchange,
		ExternalRef:  req.ExternalRef,
		Notes:        req.Notes,
	}

	if req.UnitRateJPY != "" {
		if trade.UnitRate, err = validation.ParseFiatAmount(req.UnitRateJPY); err != nil {
			return nil, fmt.Errorf("failed to parse unit rate: %w", err)
		}
	} else {
		// informational, re-derivable; stored because the exchange's own
		// figure may differ slightly from the quotient
		trade.UnitRate = validation.DeriveUnitRate(counterValue, quantity)
	}

	if req.FeeBTC != "" {
		if trade.FeeBTC, err = validation.ParseBTCAmount(req.FeeBTC); err != nil {
			return nil, fmt.Errorf("failed to parse BTC fee: %w", err)
		}
	}
	if req.FeeJPY != "" {
		if trade.FeeFiat, err = validation.ParseFiatAmount(req.FeeJPY); err != nil {
			return nil, fmt.Errorf("failed to parse fiat fee: %w", err)
		}
	}

	if err := s.tradeRepo.InsertTrade(ctx, trade); err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}

	resp := model.NewTradeResponse(*trade)
	return &resp, nil
}

// UpdateTrade corrects a recorded trade. Downstream gain reports need no
// invalidation: they are always recomputed from the ledger, so the next
// report request picks up the correction automatically.
func (s *TradeService) UpdateTrade(ctx context.Context, tradeID string, req request.UpdateTradeRequest) (*model.TradeResponse, error) {
	trade, err := s.tradeRepo.GetTrade(tradeID)
	if err != nil {
		return nil, err
	}

	if req.Kind != nil {
		trade.Kind = model.TradeKind(*req.Kind)
	}
	if req.Timestamp != nil {
		timestamp, err := time.Parse(time.RFC3339, *req.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		trade.Timestamp = timestamp.UTC()
	}
	if req.AmountBTC != nil {
		if trade.Quantity, err = validation.ParseBTCAmount(*req.AmountBTC); err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
	}
	if req.CounterValueJPY != nil {
		if trade.CounterValue, err = validation.ParseFiatAmount(*req.CounterValueJPY); err != nil {
			return nil, fmt.Errorf("failed to parse counter value: %w", err)
		}
	}
	if req.UnitRateJPY != nil {
		if trade.UnitRate, err = validation.ParseFiatAmount(*req.UnitRateJPY); err != nil {
			return nil, fmt.Errorf("failed to parse unit rate: %w", err)
		}
	}
	if req.FeeBTC != nil {
		if trade.FeeBTC, err = validation.ParseBTCAmount(*req.FeeBTC); err != nil {
			return nil, fmt.Errorf("failed to parse BTC fee: %w", err)
		}
	}
	if req.FeeJPY != nil {
		if trade.FeeFiat, err = validation.ParseFiatAmount(*req.FeeJPY); err != nil {
			return nil, fmt.Errorf("failed to parse fiat fee: %w", err)
		}
	}
	if req.Exchange != nil {
		trade.Exchange = *req.Exchange
	}
	if req.ExternalRef != nil {
		trade.ExternalRef = *req.ExternalRef
	}
	if req.Notes != nil {
		trade.Notes = *req.Notes
	}

	if err := s.tradeRepo.UpdateTrade(ctx, &trade); err != nil {
		return nil, err
	}

	resp := model.NewTradeResponse(trade)
	return &resp, nil
}

// DeleteTrade removes a trade from the ledger.
func (s *TradeService) DeleteTrade(ctx context.Context, tradeID string) error {
	return s.tradeRepo.DeleteTrade(ctx, tradeID)
}

// Summary aggregates the ledger into the dashboard headline figures.
// Computed from the full trade list rather than SQL aggregates so BTC
// quantities stay in exact satoshi arithmetic end to end.
func (s *TradeService) Summary() (model.TradeSummary, error) {
	trades, err := s.tradeRepo.ListTrades()
	if err != nil {
		return model.TradeSummary{}, err
	}

	var boughtSat, soldSat int64
	var rateSum decimal.Decimal
	buys := 0
	for _, t := range trades {
		switch {
		case t.IsBuy():
			boughtSat += t.Quantity
			rateSum = rateSum.Add(t.UnitRate)
			buys++
		case t.IsSell():
			soldSat += t.Quantity
		}
	}

	summary := model.TradeSummary{
		TotalBTC:    model.SatoshiToBTC(boughtSat - soldSat),
		TotalBought: model.SatoshiToBTC(boughtSat),
		TotalSold:   model.SatoshiToBTC(soldSat),
	}
	if buys > 0 {
		summary.AverageBuyRate = rateSum.Div(decimal.NewFromInt(int64(buys)))
	}
	if len(trades) > 0 {
		latest := model.NewTradeResponse(trades[len(trades)-1])
		summary.LatestTrade = &latest
	}

	return summary, nil
}
