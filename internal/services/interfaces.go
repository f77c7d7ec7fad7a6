package services

import (
	"context"

	"github.com/tuanng17/coinfolio/internal/models"
)

// AggregatorService derives a complete portfolio snapshot and normalized
// per-segment holding lists from raw upstream records.
type AggregatorService interface {
	Aggregate(raw *models.RawSegments) (*models.PortfolioSnapshot, *models.SegmentHoldings)
}

// SnapshotCacheService persists the last-known snapshot and segment lists so
// the UI can paint immediately on the next start. Both operations degrade to
// no-ops on storage failure; they never propagate errors.
type SnapshotCacheService interface {
	Save(ctx context.Context, snapshot *models.PortfolioSnapshot, holdings *models.SegmentHoldings)
	Load(ctx context.Context) CachedState
}

// DataSource is the external portfolio backend: the holdings feed and the
// natural-language query endpoint. Implementations normalize any non-success
// status to a displayable error.
type DataSource interface {
	FetchHoldings(ctx context.Context) (*models.RawSegments, error)
	Query(ctx context.Context, text string) (string, error)
}

// QueryService forwards free-text portfolio questions to the upstream
// backend and returns the textual answer.
type QueryService interface {
	ProcessQuery(ctx context.Context, text string) (string, error)
}

// CachedState is the result of a cache load. Each field is independent: a
// missing key leaves its field nil without failing the whole load.
type CachedState struct {
	Snapshot *models.PortfolioSnapshot
	Holdings *models.SegmentHoldings

	// AnyLoaded reports whether at least one payload was found.
	AnyLoaded bool
}
