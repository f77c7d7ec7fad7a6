package services

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tuanng17/coinfolio/internal/format"
	"github.com/tuanng17/coinfolio/internal/models"
)

type aggregatorService struct {
	sectors models.SectorMap
	logger  *zap.Logger
	now     func() time.Time
}

// NewAggregatorService creates a new aggregator service. The sector map is
// plain configuration; nil falls back to the built-in table.
func NewAggregatorService(sectors models.SectorMap, logger *zap.Logger) AggregatorService {
	if sectors == nil {
		sectors = models.DefaultSectorMap()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &aggregatorService{
		sectors: sectors,
		logger:  logger,
		now:     time.Now,
	}
}

// Aggregate normalizes the three raw segments and recomputes the snapshot in
// full. For fixed input the output is reproducible except for the
// last_updated timestamp: map iteration is fixed by sorting record keys and
// allocation ties break by symbol.
func (s *aggregatorService) Aggregate(raw *models.RawSegments) (*models.PortfolioSnapshot, *models.SegmentHoldings) {
	if raw == nil {
		raw = &models.RawSegments{}
	}

	holdings := &models.SegmentHoldings{
		Spot:    s.normalizeSegment(raw.Spot, models.SegmentSpot),
		Margin:  s.normalizeSegment(raw.Margin, models.SegmentMargin),
		Futures: s.normalizeSegment(raw.Futures, models.SegmentFutures),
	}

	assetValues := make(map[string]float64)
	var spotValue, marginValue, futuresValue float64
	var changeNum, changeDen float64

	accumulate := func(list []models.Holding, segmentTotal *float64) {
		for _, h := range list {
			assetValues[h.Symbol] += h.TotalUSD
			*segmentTotal += h.TotalUSD
			if h.Change24h != nil {
				changeNum += *h.Change24h * h.TotalUSD
				changeDen += h.TotalUSD
			}
		}
	}
	accumulate(holdings.Spot, &spotValue)
	accumulate(holdings.Margin, &marginValue)
	accumulate(holdings.Futures, &futuresValue)

	totalValue := spotValue + marginValue + futuresValue

	// Weighted 24h change, falling back to the upstream's top-level figure
	// only when no holding carried a per-holding change.
	change24h := 0.0
	switch {
	case changeDen > 0:
		change24h = changeNum / changeDen
	default:
		if v := raw.Change24h.Float64(); isFinite(v) {
			change24h = v
		}
	}

	holdingsCount := len(assetValues)
	if holdingsCount == 0 {
		holdingsCount = raw.RecordCount()
	}

	assetAllocation := allocate(assetValues, totalValue)

	sectorValues := make(map[string]float64, len(assetValues))
	for symbol, value := range assetValues {
		sectorValues[s.sectors.Sector(symbol)] += value
	}
	sectorAllocation := allocate(sectorValues, totalValue)

	snapshot := &models.PortfolioSnapshot{
		TotalValue:       totalValue,
		Change24h:        change24h,
		HoldingsCount:    holdingsCount,
		SpotValue:        spotValue,
		MarginValue:      marginValue,
		FuturesValue:     futuresValue,
		AssetAllocation:  assetAllocation,
		SectorAllocation: sectorAllocation,
		LastUpdated:      format.Timestamp(s.now()),
	}
	return snapshot, holdings
}

// normalizeSegment maps segment-specific raw records onto the unified
// Holding shape. Records that fail the acceptance rules are dropped and
// logged, never treated as errors.
func (s *aggregatorService) normalizeSegment(records map[string]models.RawHolding, seg models.Segment) []models.Holding {
	keys := make([]string, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	holdings := make([]models.Holding, 0, len(records))
	for _, key := range keys {
		record := records[key]
		symbol := models.SymbolFromKey(key, seg)

		amount := record.AmountIn(seg)
		price := record.PriceIn(seg)
		total := record.ValueIn(seg)
		if total == 0 && isFinite(amount) && isFinite(price) && amount > 0 && price > 0 {
			total = amount * price
		}

		// Acceptance rules: positive finite amount, finite price,
		// positive value. Everything else is a malformed record.
		if !(amount > 0) || !isFinite(amount) || !isFinite(price) || !(total > 0) || !isFinite(total) {
			s.logger.Warn("dropping malformed holding record",
				zap.String("key", key),
				zap.String("segment", string(seg)),
				zap.Float64("amount", amount),
				zap.Float64("price_usd", price),
				zap.Float64("total_usd", total))
			continue
		}

		h := models.Holding{
			Symbol:       symbol,
			Segment:      seg,
			Amount:       amount,
			PriceUSD:     price,
			TotalUSD:     total,
			Change24h:    finitePtr(record.Change24h),
			AvgBuyPrice:  finitePtr(record.AvgBuyPrice),
			FirstBuyTime: record.FirstBuyTime,
			LastBuyTime:  record.LastBuyTime,
		}

		// Futures positions quote their cost basis as entry_price and
		// their gain as unrealized_pnl.
		if seg == models.SegmentFutures {
			if h.AvgBuyPrice == nil {
				if entry := record.EntryPrice.Float64(); isFinite(entry) && entry > 0 {
					h.AvgBuyPrice = &entry
				}
			}
			if pnl := record.UnrealizedPnL.Float64(); isFinite(pnl) && pnl != 0 {
				h.PnL = &pnl
			}
		}

		if h.PnL == nil {
			h.PnL = finitePtr(record.PnL)
		}
		h.PnLPercentage = finitePtr(record.PnLPercentage)

		// Derive PnL from the average buy price when the provider did not
		// supply it.
		if h.AvgBuyPrice != nil && *h.AvgBuyPrice > 0 {
			if h.PnL == nil {
				pnl := (h.PriceUSD - *h.AvgBuyPrice) * h.Amount
				h.PnL = &pnl
			}
			if h.PnLPercentage == nil {
				pct := (h.PriceUSD / *h.AvgBuyPrice * 100) - 100
				h.PnLPercentage = &pct
			}
		}

		holdings = append(holdings, h)
	}
	return holdings
}

// allocate turns a name->value map into percentage-of-total entries sorted
// descending by value, ties broken by name. Empty when the total is zero.
func allocate(values map[string]float64, total float64) []models.AllocationEntry {
	if total <= 0 {
		return []models.AllocationEntry{}
	}

	entries := make([]models.AllocationEntry, 0, len(values))
	for name, value := range values {
		if value <= 0 {
			continue
		}
		entries = append(entries, models.AllocationEntry{
			Asset:      name,
			Value:      value,
			Percentage: value / total * 100,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Asset < entries[j].Asset
	})
	return entries
}

// finitePtr converts an optional raw number into *float64, treating
// non-finite values as absent so NaN can never leak downstream.
func finitePtr(f *models.Flex) *float64 {
	if f == nil {
		return nil
	}
	v := f.Float64()
	if !isFinite(v) {
		return nil
	}
	return &v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
