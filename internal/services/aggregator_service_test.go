package services

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tuanng17/coinfolio/internal/models"
)

func flex(v float64) models.Flex { return models.Flex(v) }

func flexPtr(v float64) *models.Flex {
	f := models.Flex(v)
	return &f
}

func newTestAggregator(t *testing.T) *aggregatorService {
	t.Helper()
	agg, ok := NewAggregatorService(nil, zap.NewNop()).(*aggregatorService)
	require.True(t, ok)
	return agg
}

func TestAggregateWeightedChangeAndAllocation(t *testing.T) {
	agg := newTestAggregator(t)

	raw := &models.RawSegments{
		Spot: map[string]models.RawHolding{
			"BTC_spot": {Total: flex(1), PriceUSD: flex(50000), TotalUSD: flex(50000), Change24h: flexPtr(10)},
			"ETH_spot": {Total: flex(2), PriceUSD: flex(2000), TotalUSD: flex(4000), Change24h: flexPtr(-5)},
		},
	}

	snapshot, holdings := agg.Aggregate(raw)

	assert.Equal(t, 54000.0, snapshot.TotalValue)
	assert.Equal(t, 54000.0, snapshot.SpotValue)
	assert.Equal(t, 2, snapshot.HoldingsCount)
	assert.InDelta(t, 8.89, snapshot.Change24h, 0.01)

	require.Len(t, snapshot.AssetAllocation, 2)
	assert.Equal(t, "BTC", snapshot.AssetAllocation[0].Asset)
	assert.InDelta(t, 92.59, snapshot.AssetAllocation[0].Percentage, 0.01)
	assert.Equal(t, "ETH", snapshot.AssetAllocation[1].Asset)
	assert.InDelta(t, 7.41, snapshot.AssetAllocation[1].Percentage, 0.01)

	require.Len(t, holdings.Spot, 2)
	assert.Empty(t, holdings.Margin)
	assert.Empty(t, holdings.Futures)
}

func TestAggregateMalformedRecordDropped(t *testing.T) {
	agg := newTestAggregator(t)

	raw := &models.RawSegments{
		Spot: map[string]models.RawHolding{
			"BTC_spot": {Total: flex(1), PriceUSD: flex(50000), TotalUSD: flex(50000)},
			"BAD_spot": {Total: flex(-1), PriceUSD: flex(100), TotalUSD: flex(-100)},
		},
	}

	snapshot, holdings := agg.Aggregate(raw)

	assert.Equal(t, 50000.0, snapshot.TotalValue)
	assert.Equal(t, 1, snapshot.HoldingsCount)
	require.Len(t, holdings.Spot, 1)
	assert.Equal(t, "BTC", holdings.Spot[0].Symbol)

	assertNoNaN(t, snapshot)
}

func TestAggregateZeroAmountExcluded(t *testing.T) {
	agg := newTestAggregator(t)

	raw := &models.RawSegments{
		Spot: map[string]models.RawHolding{
			"BTC_spot": {Total: flex(0), PriceUSD: flex(50000), TotalUSD: flex(50000)},
		},
	}

	snapshot, holdings := agg.Aggregate(raw)

	assert.Equal(t, 0.0, snapshot.TotalValue)
	assert.Empty(t, holdings.Spot)
	assert.Empty(t, snapshot.AssetAllocation)
	assert.Empty(t, snapshot.SectorAllocation)
}

func TestAggregateNonFiniteValuesDropped(t *testing.T) {
	agg := newTestAggregator(t)

	raw := &models.RawSegments{
		Spot: map[string]models.RawHolding{
			"NAN_spot": {Total: flex(math.NaN()), PriceUSD: flex(100), TotalUSD: flex(100)},
			"INF_spot": {Total: flex(1), PriceUSD: flex(math.Inf(1)), TotalUSD: flex(100)},
			"BTC_spot": {Total: flex(1), PriceUSD: flex(100), TotalUSD: flex(100), Change24h: flexPtr(math.NaN())},
		},
	}

	snapshot, holdings := agg.Aggregate(raw)

	require.Len(t, holdings.Spot, 1)
	assert.Equal(t, "BTC", holdings.Spot[0].Symbol)
	// A non-finite change is treated as absent, not poured into the mean.
	assert.Nil(t, holdings.Spot[0].Change24h)
	assertNoNaN(t, snapshot)
}

func TestAggregateExplicitTotalWins(t *testing.T) {
	agg := newTestAggregator(t)

	raw := &models.RawSegments{
		Spot: map[string]models.RawHolding{
			// amount*price disagrees with the supplied total; the explicit total wins.
			"BTC_spot": {Total: flex(1), PriceUSD: flex(50000), TotalUSD: flex(48000)},
			// no explicit total: derived from amount*price.
			"ETH_spot": {Total: flex(2), PriceUSD: flex(2000)},
		},
	}

	snapshot, holdings := agg.Aggregate(raw)

	require.Len(t, holdings.Spot, 2)
	assert.Equal(t, 48000.0, holdings.Spot[0].TotalUSD)
	assert.Equal(t, 4000.0, holdings.Spot[1].TotalUSD)
	assert.Equal(t, 52000.0, snapshot.TotalValue)
}

func TestAggregateSymbolMergedAcrossSegments(t *testing.T) {
	agg := newTestAggregator(t)

	raw := &models.RawSegments{
		Spot: map[string]models.RawHolding{
			"BTC_spot": {Total: flex(1), PriceUSD: flex(50000), TotalUSD: flex(50000)},
		},
		Margin: map[string]models.RawHolding{
			"BTC_margin": {NetAsset: flex(0.5), PriceUSD: flex(50000), NetAssetUSD: flex(25000)},
		},
		Futures: map[string]models.RawHolding{
			"BTCUSDT_futures": {Amount: flex(0.1), CurrentPrice: flex(50000), USDValue: flex(5000)},
		},
	}

	snapshot, _ := agg.Aggregate(raw)

	// One allocation entry per distinct symbol, not per record.
	require.Len(t, snapshot.AssetAllocation, 1)
	assert.Equal(t, "BTC", snapshot.AssetAllocation[0].Asset)
	assert.Equal(t, 80000.0, snapshot.AssetAllocation[0].Value)
	assert.InDelta(t, 100, snapshot.AssetAllocation[0].Percentage, 1e-9)
	assert.Equal(t, 1, snapshot.HoldingsCount)

	assert.Equal(t, 50000.0, snapshot.SpotValue)
	assert.Equal(t, 25000.0, snapshot.MarginValue)
	assert.Equal(t, 5000.0, snapshot.FuturesValue)
}

func TestAggregateSectorAllocation(t *testing.T) {
	agg := newTestAggregator(t)

	raw := &models.RawSegments{
		Spot: map[string]models.RawHolding{
			"BTC_spot":  {Total: flex(1), PriceUSD: flex(60000), TotalUSD: flex(60000)},
			"ETH_spot":  {Total: flex(10), PriceUSD: flex(2000), TotalUSD: flex(20000)},
			"SOL_spot":  {Total: flex(100), PriceUSD: flex(100), TotalUSD: flex(10000)},
			"WEIRD_spot": {Total: flex(10), PriceUSD: flex(1000), TotalUSD: flex(10000)},
		},
	}

	snapshot, _ := agg.Aggregate(raw)

	require.Len(t, snapshot.SectorAllocation, 3)
	assert.Equal(t, "Currency", snapshot.SectorAllocation[0].Asset)
	assert.Equal(t, 60000.0, snapshot.SectorAllocation[0].Value)
	assert.Equal(t, "Smart Contract Platform", snapshot.SectorAllocation[1].Asset)
	assert.Equal(t, 30000.0, snapshot.SectorAllocation[1].Value)
	assert.Equal(t, models.DefaultSector, snapshot.SectorAllocation[2].Asset)
	assert.Equal(t, 10000.0, snapshot.SectorAllocation[2].Value)

	var sum float64
	for _, e := range snapshot.SectorAllocation {
		sum += e.Percentage
	}
	assert.InDelta(t, 100, sum, 1e-9)
}

func TestAggregateChangeFallbacks(t *testing.T) {
	agg := newTestAggregator(t)

	t.Run("top-level fallback when no holding carries change", func(t *testing.T) {
		raw := &models.RawSegments{
			Spot: map[string]models.RawHolding{
				"BTC_spot": {Total: flex(1), PriceUSD: flex(100), TotalUSD: flex(100)},
			},
			Change24h: flex(3.7),
		}
		snapshot, _ := agg.Aggregate(raw)
		assert.Equal(t, 3.7, snapshot.Change24h)
	})

	t.Run("weighted value preferred over top-level", func(t *testing.T) {
		raw := &models.RawSegments{
			Spot: map[string]models.RawHolding{
				"BTC_spot": {Total: flex(1), PriceUSD: flex(100), TotalUSD: flex(100), Change24h: flexPtr(5)},
			},
			Change24h: flex(-99),
		}
		snapshot, _ := agg.Aggregate(raw)
		assert.Equal(t, 5.0, snapshot.Change24h)
	})

	t.Run("defaults to zero when both absent", func(t *testing.T) {
		raw := &models.RawSegments{
			Spot: map[string]models.RawHolding{
				"BTC_spot": {Total: flex(1), PriceUSD: flex(100), TotalUSD: flex(100)},
			},
		}
		snapshot, _ := agg.Aggregate(raw)
		assert.Equal(t, 0.0, snapshot.Change24h)
	})
}

func TestAggregateHoldingsCountFallback(t *testing.T) {
	agg := newTestAggregator(t)

	// Every record is malformed, so the filtered count is zero and the raw
	// record counts are reported instead.
	raw := &models.RawSegments{
		Spot: map[string]models.RawHolding{
			"BAD_spot": {Total: flex(-1), PriceUSD: flex(100), TotalUSD: flex(-100)},
		},
		Margin: map[string]models.RawHolding{
			"ALSO_margin": {NetAsset: flex(0)},
		},
	}

	snapshot, _ := agg.Aggregate(raw)
	assert.Equal(t, 2, snapshot.HoldingsCount)
	assert.Equal(t, 0.0, snapshot.TotalValue)
	assert.Empty(t, snapshot.AssetAllocation)
}

func TestAggregatePnLDerivation(t *testing.T) {
	agg := newTestAggregator(t)

	raw := &models.RawSegments{
		Spot: map[string]models.RawHolding{
			"BTC_spot": {Total: flex(2), PriceUSD: flex(50000), TotalUSD: flex(100000), AvgBuyPrice: flexPtr(45000)},
		},
		Futures: map[string]models.RawHolding{
			"SOLUSDT_futures": {Amount: flex(100), EntryPrice: flex(100), CurrentPrice: flex(120), USDValue: flex(12000), UnrealizedPnL: flex(2000)},
		},
	}

	_, holdings := agg.Aggregate(raw)

	require.Len(t, holdings.Spot, 1)
	btc := holdings.Spot[0]
	require.NotNil(t, btc.PnL)
	assert.InDelta(t, 10000, *btc.PnL, 1e-9)
	require.NotNil(t, btc.PnLPercentage)
	assert.InDelta(t, 11.11, *btc.PnLPercentage, 0.01)

	require.Len(t, holdings.Futures, 1)
	sol := holdings.Futures[0]
	require.NotNil(t, sol.AvgBuyPrice)
	assert.Equal(t, 100.0, *sol.AvgBuyPrice)
	require.NotNil(t, sol.PnL)
	assert.Equal(t, 2000.0, *sol.PnL)
}

func TestAggregateIdempotent(t *testing.T) {
	agg := newTestAggregator(t)
	fixed := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)
	agg.now = func() time.Time { return fixed }

	raw := &models.RawSegments{
		Spot: map[string]models.RawHolding{
			"BTC_spot": {Total: flex(1), PriceUSD: flex(50000), TotalUSD: flex(50000), Change24h: flexPtr(10)},
			"ETH_spot": {Total: flex(2), PriceUSD: flex(2000), TotalUSD: flex(4000), Change24h: flexPtr(-5)},
			"ADA_spot": {Total: flex(1000), PriceUSD: flex(0.4), TotalUSD: flex(400)},
		},
		Futures: map[string]models.RawHolding{
			"SOLUSDT_futures": {Amount: flex(10), CurrentPrice: flex(150), USDValue: flex(1500)},
		},
	}

	first, firstHoldings := agg.Aggregate(raw)
	second, secondHoldings := agg.Aggregate(raw)

	assert.Equal(t, first, second)
	assert.Equal(t, firstHoldings, secondHoldings)
}

func TestAggregateNilInput(t *testing.T) {
	agg := newTestAggregator(t)

	snapshot, holdings := agg.Aggregate(nil)

	assert.Equal(t, 0.0, snapshot.TotalValue)
	assert.Equal(t, 0, snapshot.HoldingsCount)
	assert.Empty(t, snapshot.AssetAllocation)
	assert.NotNil(t, holdings)
}

// assertNoNaN walks every numeric field of a snapshot.
func assertNoNaN(t *testing.T, s *models.PortfolioSnapshot) {
	t.Helper()
	for name, v := range map[string]float64{
		"total_value":   s.TotalValue,
		"change_24h":    s.Change24h,
		"spot_value":    s.SpotValue,
		"margin_value":  s.MarginValue,
		"futures_value": s.FuturesValue,
	} {
		assert.Falsef(t, math.IsNaN(v) || math.IsInf(v, 0), "field %s is non-finite: %v", name, v)
	}
	for _, e := range append(append([]models.AllocationEntry{}, s.AssetAllocation...), s.SectorAllocation...) {
		assert.Falsef(t, math.IsNaN(e.Value) || math.IsNaN(e.Percentage), "allocation %s carries NaN", e.Asset)
	}
}
