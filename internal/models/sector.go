package models

// DefaultSector is the catch-all bucket for symbols without a mapping.
const DefaultSector = "Other"

// SectorMap classifies asset symbols into market sectors. It is plain
// configuration so the table can later be replaced by an external
// classification service without touching aggregation logic.
type SectorMap map[string]string

// Sector returns the sector for a symbol, falling back to DefaultSector.
func (m SectorMap) Sector(symbol string) string {
	if s, ok := m[symbol]; ok && s != "" {
		return s
	}
	return DefaultSector
}

// DefaultSectorMap returns the built-in symbol classification table.
func DefaultSectorMap() SectorMap {
	return SectorMap{
		"BTC":   "Currency",
		"LTC":   "Currency",
		"BCH":   "Currency",
		"XMR":   "Currency",
		"ETH":   "Smart Contract Platform",
		"SOL":   "Smart Contract Platform",
		"ADA":   "Smart Contract Platform",
		"AVAX":  "Smart Contract Platform",
		"NEAR":  "Smart Contract Platform",
		"TRX":   "Smart Contract Platform",
		"BNB":   "Exchange Token",
		"OKB":   "Exchange Token",
		"DOT":   "Infrastructure",
		"ATOM":  "Infrastructure",
		"LINK":  "Oracle",
		"UNI":   "DeFi",
		"AAVE":  "DeFi",
		"MKR":   "DeFi",
		"USDT":  "Stablecoin",
		"USDC":  "Stablecoin",
		"DAI":   "Stablecoin",
		"DOGE":  "Meme",
		"SHIB":  "Meme",
		"MATIC": "Scaling",
		"ARB":   "Scaling",
		"OP":    "Scaling",
	}
}
