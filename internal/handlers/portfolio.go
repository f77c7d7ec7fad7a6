package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tuanng17/coinfolio/internal/services"
)

type PortfolioHandler struct {
	refresh *services.RefreshService
}

func NewPortfolioHandler(refresh *services.RefreshService) *PortfolioHandler {
	return &PortfolioHandler{refresh: refresh}
}

// HandlePortfolio handles GET /api/portfolio
// @Summary Get portfolio state
// @Description Get the current aggregated snapshot plus loading/refreshing/cached flags
// @Tags portfolio
// @Produce json
// @Success 200 {object} services.ViewState
// @Router /portfolio [get]
func (h *PortfolioHandler) HandlePortfolio(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	json.NewEncoder(w).Encode(h.refresh.State())
}

// HandleHoldings handles GET /api/portfolio/holdings
// @Summary Get segment holdings
// @Description Get the normalized spot/margin/futures holding lists
// @Tags portfolio
// @Produce json
// @Success 200 {object} models.SegmentHoldings
// @Router /portfolio/holdings [get]
func (h *PortfolioHandler) HandleHoldings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	json.NewEncoder(w).Encode(h.refresh.Holdings())
}

// HandleHoldingsTable handles GET /api/portfolio/holdings/table
// @Summary Get display-ready holding rows
// @Description Get the segment holding lists rendered as formatted table rows
// @Tags portfolio
// @Produce json
// @Success 200 {object} map[string][]handlers.holdingRow
// @Router /portfolio/holdings/table [get]
func (h *PortfolioHandler) HandleHoldingsTable(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	holdings := h.refresh.Holdings()
	json.NewEncoder(w).Encode(map[string][]holdingRow{
		"spot":    toRows(holdings.Spot),
		"margin":  toRows(holdings.Margin),
		"futures": toRows(holdings.Futures),
	})
}

// HandleRefresh handles POST /api/portfolio/refresh
// @Summary Trigger a refresh
// @Description Run one background refresh cycle immediately and return the resulting state
// @Tags portfolio
// @Produce json
// @Success 200 {object} services.ViewState
// @Router /portfolio/refresh [post]
func (h *PortfolioHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.refresh.ForceRefresh(r.Context())
	json.NewEncoder(w).Encode(h.refresh.State())
}
