package services

import (
	"fmt"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"

	"github.com/tuanng17/coinfolio/internal/models"
)

type pbtHolding struct {
	Symbol string
	Amount float64
	Price  float64
	Change float64
}

func genPBTHolding() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf("BTC", "ETH", "SOL", "BNB", "ADA", "XYZ"),
		gen.Float64Range(0.000001, 10000),
		gen.Float64Range(0.01, 100000),
		gen.Float64Range(-50, 50),
	).Map(func(vals []interface{}) pbtHolding {
		return pbtHolding{
			Symbol: vals[0].(string),
			Amount: vals[1].(float64),
			Price:  vals[2].(float64),
			Change: vals[3].(float64),
		}
	})
}

// rawFromPBT spreads generated holdings across the three segments.
func rawFromPBT(hs []pbtHolding, change *float64) *models.RawSegments {
	raw := &models.RawSegments{
		Spot:    map[string]models.RawHolding{},
		Margin:  map[string]models.RawHolding{},
		Futures: map[string]models.RawHolding{},
	}
	for i, h := range hs {
		var changePtr *models.Flex
		if change != nil {
			f := models.Flex(*change)
			changePtr = &f
		} else {
			f := models.Flex(h.Change)
			changePtr = &f
		}
		switch i % 3 {
		case 0:
			raw.Spot[fmt.Sprintf("%s_spot", h.Symbol)] = models.RawHolding{
				Total:     models.Flex(h.Amount),
				PriceUSD:  models.Flex(h.Price),
				TotalUSD:  models.Flex(h.Amount * h.Price),
				Change24h: changePtr,
			}
		case 1:
			raw.Margin[fmt.Sprintf("%s_margin", h.Symbol)] = models.RawHolding{
				NetAsset:    models.Flex(h.Amount),
				PriceUSD:    models.Flex(h.Price),
				NetAssetUSD: models.Flex(h.Amount * h.Price),
				Change24h:   changePtr,
			}
		default:
			raw.Futures[fmt.Sprintf("%sUSDT_futures", h.Symbol)] = models.RawHolding{
				Amount:       models.Flex(h.Amount),
				CurrentPrice: models.Flex(h.Price),
				USDValue:     models.Flex(h.Amount * h.Price),
				Change24h:    changePtr,
			}
		}
	}
	return raw
}

func TestAggregateProperties(t *testing.T) {
	agg := NewAggregatorService(nil, zap.NewNop())

	properties := gopter.NewProperties(nil)

	properties.Property("asset allocation percentages sum to 100 when total is positive", prop.ForAll(
		func(hs []pbtHolding) bool {
			snapshot, _ := agg.Aggregate(rawFromPBT(hs, nil))
			if snapshot.TotalValue == 0 {
				return len(snapshot.AssetAllocation) == 0
			}
			var sum float64
			for _, e := range snapshot.AssetAllocation {
				sum += e.Percentage
			}
			return math.Abs(sum-100) < 1e-6
		},
		gen.SliceOf(genPBTHolding()),
	))

	properties.Property("sector allocation percentages sum to 100 when total is positive", prop.ForAll(
		func(hs []pbtHolding) bool {
			snapshot, _ := agg.Aggregate(rawFromPBT(hs, nil))
			if snapshot.TotalValue == 0 {
				return len(snapshot.SectorAllocation) == 0
			}
			var sum float64
			for _, e := range snapshot.SectorAllocation {
				sum += e.Percentage
			}
			return math.Abs(sum-100) < 1e-6
		},
		gen.SliceOf(genPBTHolding()),
	))

	properties.Property("uniform per-holding change yields that change regardless of weights", prop.ForAll(
		func(hs []pbtHolding, c float64) bool {
			if len(hs) == 0 {
				return true
			}
			snapshot, _ := agg.Aggregate(rawFromPBT(hs, &c))
			return math.Abs(snapshot.Change24h-c) < 1e-6
		},
		gen.SliceOf(genPBTHolding()),
		gen.Float64Range(-30, 30),
	))

	properties.Property("no NaN escapes aggregation even for hostile numerics", prop.ForAll(
		func(amount, price float64) bool {
			raw := &models.RawSegments{
				Spot: map[string]models.RawHolding{
					"XYZ_spot": {
						Total:    models.Flex(amount),
						PriceUSD: models.Flex(price),
						TotalUSD: models.Flex(amount * price),
					},
				},
			}
			snapshot, _ := agg.Aggregate(raw)
			return !math.IsNaN(snapshot.TotalValue) &&
				!math.IsNaN(snapshot.Change24h) &&
				!math.IsInf(snapshot.TotalValue, 0)
		},
		gen.OneGenOf(
			gen.Float64Range(-1e12, 1e12),
			gen.OneConstOf(math.NaN(), math.Inf(1), math.Inf(-1), 0.0),
		),
		gen.OneGenOf(
			gen.Float64Range(-1e12, 1e12),
			gen.OneConstOf(math.NaN(), math.Inf(1), math.Inf(-1), 0.0),
		),
	))

	properties.TestingRun(t)
}
