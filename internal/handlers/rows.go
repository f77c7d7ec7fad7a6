package handlers

import (
	"math"

	"github.com/tuanng17/coinfolio/internal/format"
	"github.com/tuanng17/coinfolio/internal/models"
)

// holdingRow is the display-ready projection of one holding: the primary row
// carries value/change/PnL, the secondary row unit price, PnL% and average
// buy price, and the buy dates feed the hover tooltip.
type holdingRow struct {
	Symbol       string `json:"symbol"`
	Segment      string `json:"segment"`
	Quantity     string `json:"quantity"`
	Value        string `json:"value"`
	Change24h    string `json:"change_24h"`
	PnL          string `json:"pnl"`
	UnitPrice    string `json:"unit_price"`
	PnLPercent   string `json:"pnl_percentage"`
	AvgBuyPrice  string `json:"avg_buy_price"`
	FirstBuyDate string `json:"first_buy_date,omitempty"`
	LastBuyDate  string `json:"last_buy_date,omitempty"`
}

func toRow(h models.Holding) holdingRow {
	row := holdingRow{
		Symbol:     h.Symbol,
		Segment:    string(h.Segment),
		Quantity:   format.Quantity(h.Amount),
		Value:      format.Currency(h.TotalUSD),
		UnitPrice:  format.Currency(h.PriceUSD),
		Change24h:  format.SignedPercent(derefOr(h.Change24h, math.NaN())),
		PnLPercent: format.SignedPercent(derefOr(h.PnLPercentage, math.NaN())),
	}

	// Absent PnL and cost basis render as the UI's dash placeholder rather
	// than a misleading zero dollar figure.
	row.PnL = "-"
	if h.PnL != nil {
		row.PnL = format.Currency(*h.PnL)
	}
	row.AvgBuyPrice = "-"
	if h.AvgBuyPrice != nil {
		row.AvgBuyPrice = format.Currency(*h.AvgBuyPrice)
	}

	if h.FirstBuyTime != nil {
		row.FirstBuyDate = format.DateMillis(float64(*h.FirstBuyTime))
	}
	if h.LastBuyTime != nil {
		row.LastBuyDate = format.DateMillis(float64(*h.LastBuyTime))
	}
	return row
}

func toRows(list []models.Holding) []holdingRow {
	rows := make([]holdingRow, 0, len(list))
	for _, h := range list {
		rows = append(rows, toRow(h))
	}
	return rows
}

func derefOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}
