package models

// AllocationEntry is one slice of a percentage breakdown, used for both
// per-asset and per-sector allocation.
type AllocationEntry struct {
	Asset      string  `json:"asset"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// PortfolioSnapshot is the complete aggregated portfolio state for one
// refresh cycle. A snapshot is never partially mutated: every successful
// fetch produces a full replacement.
type PortfolioSnapshot struct {
	TotalValue       float64           `json:"total_value"`
	Change24h        float64           `json:"change_24h"`
	HoldingsCount    int               `json:"holdings_count"`
	SpotValue        float64           `json:"spot_value"`
	MarginValue      float64           `json:"margin_value"`
	FuturesValue     float64           `json:"futures_value"`
	AssetAllocation  []AllocationEntry `json:"asset_allocation"`
	SectorAllocation []AllocationEntry `json:"sector_allocation"`
	LastUpdated      string            `json:"last_updated"`
}
