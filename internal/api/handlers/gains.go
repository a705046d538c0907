package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ymiyake/asset-dashboard-backend/internal/api/request"
	"github.com/ymiyake/asset-dashboard-backend/internal/api/response"
	"github.com/ymiyake/asset-dashboard-backend/internal/apperrors"
	"github.com/ymiyake/asset-dashboard-backend/internal/ledger"
	"github.com/ymiyake/asset-dashboard-backend/internal/service"
)

// GainHandler handles HTTP requests for realized-gain calculations backed
// by the cost-basis engine.
type GainHandler struct {
	gainService *service.GainService
}

// NewGainHandler creates a new GainHandler with the provided service dependency.
func NewGainHandler(gainService *service.GainService) *GainHandler {
	return &GainHandler{
		gainService: gainService,
	}
}

// CalculateGain handles POST requests to compute the realized gain of one
// sell trade. The body selects the method and may be omitted entirely, in
// which case FIFO is used. An under-matched sell still returns 200: the
// report is marked incomplete with the unmatched quantity explicit, and
// the caller decides whether that blocks its tax filing.
//
// Endpoint: POST /api/btc-trades/{uuid}/calculate-gain
// Request Body: CalculateGainRequest {"method": "FIFO"|"HIFO"} (optional)
// Response: 200 OK with RealizedGainReport
// Error: 400 Bad Request if the trade is not a sell or the method is unknown
// Error: 404 Not Found if trade not found
// Error: 500 Internal Server Error if computation fails
func (h *GainHandler) CalculateGain(w http.ResponseWriter, r *http.Request) {
	sellID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.CalculateGainRequest](r)
	if err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Method == "" {
		req.Method = string(ledger.FIFO)
	}

	report, err := h.gainService.CalculateGain(sellID, req.Method)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTradeNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTradeNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrNotSellTrade):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrNotSellTrade.Error(), err.Error())
		case errors.Is(err, apperrors.ErrUnknownMethod):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrUnknownMethod.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToComputeReport.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// YearlyReport handles GET requests for a calendar year's realized-gain
// report under one method.
//
// Endpoint: GET /api/btc-trades/report/{year}?method=FIFO|HIFO
// Response: 200 OK with YearlyReport
// Error: 400 Bad Request if the year or method is invalid
// Error: 500 Internal Server Error if computation fails
func (h *GainHandler) YearlyReport(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	method := r.URL.Query().Get("method")
	if method == "" {
		method = string(ledger.FIFO)
	}

	report, err := h.gainService.YearlyReport(year, method)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownMethod) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrUnknownMethod.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToComputeReport.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// CompareMethods handles GET requests for a year's report under both
// methods side by side, computed concurrently over one ledger snapshot.
//
// Endpoint: GET /api/btc-trades/report/{year}/compare
// Response: 200 OK with MethodComparison
// Error: 400 Bad Request if the year is invalid
// Error: 500 Internal Server Error if computation fails
func (h *GainHandler) CompareMethods(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	comparison, err := h.gainService.CompareMethods(r.Context(), year)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToComputeReport.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, comparison)
}

// parseYear extracts and bounds-checks the year URL parameter, writing the
// error response itself when the parameter is unusable.
func parseYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	yearStr := chi.URLParam(r, "year")
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidYear.Error(), err.Error())
		return 0, false
	}
	// Bitcoin's genesis block is 2009; nothing earlier can hold a trade.
	if year < 2009 || year > 9999 {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidYear.Error(), yearStr)
		return 0, false
	}
	return year, true
}
