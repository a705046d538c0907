package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ymiyake/asset-dashboard-backend/internal/api/handlers"
	custommiddleware "github.com/ymiyake/asset-dashboard-backend/internal/api/middleware"
	"github.com/ymiyake/asset-dashboard-backend/internal/config"
	"github.com/ymiyake/asset-dashboard-backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(systemService *service.SystemService, tradeService *service.TradeService, gainService *service.GainService, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/btc-trades", func(r chi.Router) {
			tradeHandler := handlers.NewTradeHandler(tradeService)
			gainHandler := handlers.NewGainHandler(gainService)

			r.Get("/", tradeHandler.AllTrades)
			r.Post("/", tradeHandler.CreateTrade)
			r.Get("/summary", tradeHandler.Summary)

			r.Route("/report/{year}", func(r chi.Router) {
				r.Get("/", gainHandler.YearlyReport)
				r.Get("/compare", gainHandler.CompareMethods)
			})

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", tradeHandler.GetTrade)
				r.Put("/", tradeHandler.UpdateTrade)
				r.Delete("/", tradeHandler.DeleteTrade)
				r.Post("/calculate-gain", gainHandler.CalculateGain)
			})
		})
	})

	return r
}
