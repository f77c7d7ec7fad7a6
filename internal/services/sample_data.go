package services

import (
	"time"

	"github.com/tuanng17/coinfolio/internal/format"
	"github.com/tuanng17/coinfolio/internal/models"
)

// SampleSnapshot returns the hardcoded demo snapshot installed when a
// foreground fetch fails before any data exists, so the dashboard is never
// empty. The figures are fixed demo values, not derived from SampleHoldings.
func SampleSnapshot(now time.Time) *models.PortfolioSnapshot {
	return &models.PortfolioSnapshot{
		TotalValue:    34567.89,
		Change24h:     2.34,
		HoldingsCount: 5,
		SpotValue:     29000,
		MarginValue:   3200,
		FuturesValue:  2367.89,
		AssetAllocation: []models.AllocationEntry{
			{Asset: "BTC", Value: 25000, Percentage: 72.32},
			{Asset: "ETH", Value: 4000, Percentage: 11.57},
			{Asset: "BNB", Value: 3200, Percentage: 9.26},
			{Asset: "SOL", Value: 1500, Percentage: 4.34},
			{Asset: "ADA", Value: 867.89, Percentage: 2.51},
		},
		SectorAllocation: []models.AllocationEntry{
			{Asset: "Currency", Value: 25000, Percentage: 72.32},
			{Asset: "Smart Contract Platform", Value: 6367.89, Percentage: 18.42},
			{Asset: "Exchange Token", Value: 3200, Percentage: 9.26},
		},
		LastUpdated: format.Timestamp(now) + " (sample)",
	}
}

// SampleHoldings returns demo segment lists matching SampleSnapshot's mix.
func SampleHoldings() *models.SegmentHoldings {
	return &models.SegmentHoldings{
		Spot: []models.Holding{
			{
				Symbol: "BTC", Segment: models.SegmentSpot,
				Amount: 0.5, PriceUSD: 50000, TotalUSD: 25000,
				Change24h:   ptr(2.5),
				AvgBuyPrice: ptr(45000.0), PnL: ptr(2500.0), PnLPercentage: ptr(11.11),
				FirstBuyTime: ptrInt64(1609459200000), LastBuyTime: ptrInt64(1625097600000),
			},
			{
				Symbol: "ETH", Segment: models.SegmentSpot,
				Amount: 2, PriceUSD: 2000, TotalUSD: 4000,
				Change24h:   ptr(1.8),
				AvgBuyPrice: ptr(1800.0), PnL: ptr(400.0), PnLPercentage: ptr(11.11),
				FirstBuyTime: ptrInt64(1609459200000), LastBuyTime: ptrInt64(1625097600000),
			},
		},
		Margin: []models.Holding{
			{
				Symbol: "BNB", Segment: models.SegmentMargin,
				Amount: 10, PriceUSD: 320, TotalUSD: 3200,
				Change24h:   ptr(-0.5),
				AvgBuyPrice: ptr(290.0), PnL: ptr(300.0), PnLPercentage: ptr(10.34),
			},
		},
		Futures: []models.Holding{
			{
				Symbol: "SOL", Segment: models.SegmentFutures,
				Amount: 10, PriceUSD: 150, TotalUSD: 1500,
				Change24h:   ptr(5.8),
				AvgBuyPrice: ptr(120.0), PnL: ptr(300.0), PnLPercentage: ptr(25.0),
			},
			{
				Symbol: "ADA", Segment: models.SegmentFutures,
				Amount: 2000, PriceUSD: 0.43, TotalUSD: 867.89,
				Change24h:   ptr(-1.2),
				AvgBuyPrice: ptr(0.4), PnL: ptr(60.0), PnLPercentage: ptr(7.5),
			},
		},
	}
}

func ptr(v float64) *float64 { return &v }

func ptrInt64(v int64) *int64 { return &v }
