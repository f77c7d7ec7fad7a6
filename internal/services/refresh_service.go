package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tuanng17/coinfolio/internal/models"
)

// ViewState is the UI-facing portfolio state for one moment in time.
// Loading marks a foreground fetch (no data on screen yet); Refreshing marks
// a background fetch that must not hide already-rendered content.
type ViewState struct {
	Snapshot   *models.PortfolioSnapshot `json:"snapshot,omitempty"`
	Loading    bool                      `json:"loading"`
	Refreshing bool                      `json:"refreshing"`
	Cached     bool                      `json:"cached"`
	Error      string                    `json:"error,omitempty"`
}

// RefreshService orchestrates the fetch-and-aggregate cycle: cache-first
// paint on start, a foreground or background initial fetch, then periodic
// background polling until Stop. It is the sole writer of the snapshot and
// segment lists; every successful cycle replaces them wholesale.
type RefreshService struct {
	source   DataSource
	agg      AggregatorService
	cache    SnapshotCacheService
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time

	mu         sync.Mutex
	snapshot   *models.PortfolioSnapshot
	holdings   *models.SegmentHoldings
	loading    bool
	refreshing bool
	cached     bool
	errMsg     string

	stopOnce sync.Once
	stop     chan struct{}
}

// NewRefreshService creates a refresh controller polling at interval
// (default 30s).
func NewRefreshService(source DataSource, agg AggregatorService, cache SnapshotCacheService, interval time.Duration, logger *zap.Logger) *RefreshService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshService{
		source:   source,
		agg:      agg,
		cache:    cache,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// Start paints any cached state, kicks off the initial fetch (foreground on
// a cache miss, background on a cache hit) and begins polling. It returns
// immediately; the polling goroutine runs until Stop or ctx cancellation.
func (s *RefreshService) Start(ctx context.Context) {
	cached := s.cache.Load(ctx)
	foreground := true
	if cached.AnyLoaded {
		s.mu.Lock()
		s.snapshot = cached.Snapshot
		s.holdings = cached.Holdings
		s.cached = true
		s.mu.Unlock()
		foreground = false
		s.logger.Info("painted cached portfolio state")
	}

	go s.run(ctx, foreground)
}

func (s *RefreshService) run(ctx context.Context, foreground bool) {
	s.refreshOnce(ctx, foreground)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refreshOnce(ctx, false)
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop tears the polling timer down. Safe to call more than once.
func (s *RefreshService) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// ForceRefresh runs one background refresh cycle synchronously.
func (s *RefreshService) ForceRefresh(ctx context.Context) {
	s.refreshOnce(ctx, false)
}

// State returns the current UI-facing state. Snapshots are replaced, never
// mutated, so sharing the pointer with callers is safe.
func (s *RefreshService) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ViewState{
		Snapshot:   s.snapshot,
		Loading:    s.loading,
		Refreshing: s.refreshing,
		Cached:     s.cached,
		Error:      s.errMsg,
	}
}

// Holdings returns the current normalized segment lists.
func (s *RefreshService) Holdings() models.SegmentHoldings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.holdings == nil {
		return models.SegmentHoldings{}
	}
	return *s.holdings
}

// refreshOnce runs one fetch-and-aggregate cycle. Overlapping cycles are
// tolerated: the last response to resolve wins.
func (s *RefreshService) refreshOnce(ctx context.Context, foreground bool) {
	log := s.logger.With(
		zap.String("cycle", uuid.NewString()),
		zap.Bool("foreground", foreground))

	s.mu.Lock()
	if foreground {
		s.loading = true
	} else {
		s.refreshing = true
	}
	s.mu.Unlock()

	raw, err := s.source.FetchHoldings(ctx)
	if err != nil {
		s.handleFailure(foreground, err, log)
		return
	}

	snapshot, holdings := s.agg.Aggregate(raw)
	s.cache.Save(ctx, snapshot, holdings)

	s.mu.Lock()
	s.snapshot = snapshot
	s.holdings = holdings
	s.cached = false
	s.errMsg = ""
	s.loading = false
	s.refreshing = false
	s.mu.Unlock()

	log.Info("portfolio refreshed",
		zap.Float64("total_value", snapshot.TotalValue),
		zap.Int("holdings_count", snapshot.HoldingsCount))
}

// handleFailure applies the error policy: background failures only log and
// keep whatever state is on screen; foreground failures surface the error
// and, when no data exists at all, install the sample snapshot so the view
// is never empty.
func (s *RefreshService) handleFailure(foreground bool, err error, log *zap.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	s.refreshing = false

	if !foreground {
		log.Error("background refresh failed, keeping previous state", zap.Error(err))
		return
	}

	s.errMsg = err.Error()
	log.Error("portfolio fetch failed", zap.Error(err))

	if s.snapshot == nil || (s.snapshot.TotalValue == 0 && !s.cached) {
		s.snapshot = SampleSnapshot(s.now())
		s.holdings = SampleHoldings()
		log.Warn("no portfolio data available, installed sample data")
	}
}
