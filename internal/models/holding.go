package models

import "strings"

// Segment identifies one of the account buckets a holding can live in.
type Segment string

const (
	SegmentSpot    Segment = "spot"
	SegmentMargin  Segment = "margin"
	SegmentFutures Segment = "futures"
)

// RawHolding is a single provider record as the upstream backend emits it.
// Field names differ per segment: spot records carry total/total_usd, margin
// records net_asset/net_asset_usd, futures records amount/usd_value.
type RawHolding struct {
	// Spot fields
	Free     Flex `json:"free,omitempty"`
	Locked   Flex `json:"locked,omitempty"`
	Total    Flex `json:"total,omitempty"`
	TotalUSD Flex `json:"total_usd,omitempty"`

	// Margin fields
	NetAsset    Flex `json:"net_asset,omitempty"`
	NetAssetUSD Flex `json:"net_asset_usd,omitempty"`
	Borrowed    Flex `json:"borrowed,omitempty"`

	// Futures fields
	Amount        Flex `json:"amount,omitempty"`
	EntryPrice    Flex `json:"entry_price,omitempty"`
	CurrentPrice  Flex `json:"current_price,omitempty"`
	UnrealizedPnL Flex `json:"unrealized_pnl,omitempty"`
	Leverage      Flex `json:"leverage,omitempty"`
	USDValue      Flex `json:"usd_value,omitempty"`

	// Shared fields
	PriceUSD      Flex   `json:"price_usd,omitempty"`
	Change24h     *Flex  `json:"change_24h,omitempty"`
	AvgBuyPrice   *Flex  `json:"avg_buy_price,omitempty"`
	PnL           *Flex  `json:"pnl,omitempty"`
	PnLPercentage *Flex  `json:"pnl_percentage,omitempty"`
	FirstBuyTime  *int64 `json:"first_buy_time,omitempty"`
	LastBuyTime   *int64 `json:"last_buy_time,omitempty"`
	Type          string `json:"type,omitempty"`
}

// AmountIn returns the position size in the field that segment uses.
func (r RawHolding) AmountIn(seg Segment) float64 {
	switch seg {
	case SegmentMargin:
		return r.NetAsset.Float64()
	case SegmentFutures:
		return r.Amount.Float64()
	default:
		return r.Total.Float64()
	}
}

// ValueIn returns the USD value in the field that segment uses.
func (r RawHolding) ValueIn(seg Segment) float64 {
	switch seg {
	case SegmentMargin:
		return r.NetAssetUSD.Float64()
	case SegmentFutures:
		return r.USDValue.Float64()
	default:
		return r.TotalUSD.Float64()
	}
}

// PriceIn returns the unit price in USD. Futures records quote the mark price
// as current_price; everything else uses price_usd.
func (r RawHolding) PriceIn(seg Segment) float64 {
	if seg == SegmentFutures {
		if p := r.CurrentPrice.Float64(); p != 0 {
			return p
		}
	}
	return r.PriceUSD.Float64()
}

// RawSegments is the upstream "get holdings" payload: three maps of provider
// records keyed by composite strings such as "BTC_spot", plus the upstream's
// own top-level aggregates, kept only as fallbacks.
type RawSegments struct {
	Spot    map[string]RawHolding `json:"spot_holdings"`
	Margin  map[string]RawHolding `json:"margin_holdings"`
	Futures map[string]RawHolding `json:"futures_holdings"`

	TotalValue    Flex `json:"total_value,omitempty"`
	Change24h     Flex `json:"change_24h,omitempty"`
	HoldingsCount Flex `json:"holdings_count,omitempty"`
}

// RecordCount returns the number of raw records across all segments,
// before any filtering.
func (r *RawSegments) RecordCount() int {
	if r == nil {
		return 0
	}
	return len(r.Spot) + len(r.Margin) + len(r.Futures)
}

// SymbolFromKey extracts the asset symbol from a composite record key:
// the substring before the first underscore. Futures keys additionally
// carry the quote currency ("SOLUSDT_futures"), so a trailing USDT suffix
// is stripped for that segment.
func SymbolFromKey(key string, seg Segment) string {
	symbol := key
	if i := strings.Index(key, "_"); i >= 0 {
		symbol = key[:i]
	}
	if seg == SegmentFutures {
		if trimmed := strings.TrimSuffix(symbol, "USDT"); trimmed != "" {
			symbol = trimmed
		}
	}
	return symbol
}

// Holding is a normalized position after segment-specific fields have been
// mapped onto a single shape and defensive coercion has been applied.
type Holding struct {
	Symbol        string   `json:"symbol"`
	Segment       Segment  `json:"segment"`
	Amount        float64  `json:"amount"`
	PriceUSD      float64  `json:"price_usd"`
	TotalUSD      float64  `json:"total_usd"`
	Change24h     *float64 `json:"change_24h,omitempty"`
	AvgBuyPrice   *float64 `json:"avg_buy_price,omitempty"`
	PnL           *float64 `json:"pnl,omitempty"`
	PnLPercentage *float64 `json:"pnl_percentage,omitempty"`
	FirstBuyTime  *int64   `json:"first_buy_time,omitempty"`
	LastBuyTime   *int64   `json:"last_buy_time,omitempty"`
}

// SegmentHoldings groups the three normalized per-segment lists that are
// rebuilt wholesale on every fetch cycle.
type SegmentHoldings struct {
	Spot    []Holding `json:"spot_holdings"`
	Margin  []Holding `json:"margin_holdings"`
	Futures []Holding `json:"futures_holdings"`
}
