// Package snapshot caches normalized board data in memory.
//
// Each board has one immutable snapshot at a time. Readers inside the
// freshness window get the cached pointer with no I/O; past the window the
// caller refreshes synchronously and the new snapshot replaces the old one
// wholesale. Concurrent refreshes of the same board coalesce into a single
// upstream fetch.
package snapshot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/meridianbi/boardpulse/boardapi"
	"github.com/meridianbi/boardpulse/normalize"
)

// Source fetches all items of one board. *boardapi.Client satisfies it.
type Source interface {
	FetchAll(ctx context.Context, boardID string) ([]boardapi.RawItem, error)
}

// DealSnapshot is one immutable view of the Deals board.
type DealSnapshot struct {
	Records   []normalize.Deal
	FetchedAt time.Time
	Dropped   int // header-duplicate rows excluded during normalization
}

// WorkOrderSnapshot is one immutable view of the Work Orders board.
type WorkOrderSnapshot struct {
	Records   []normalize.WorkOrder
	FetchedAt time.Time
	Dropped   int
}

// RefreshOutcome describes one upstream refresh attempt. On failure only
// Board, Duration and Err are set.
type RefreshOutcome struct {
	Board        normalize.BoardKind
	Duration     time.Duration
	Records      int
	QualityFlags int
	DroppedRows  int
	Err          error
}

// Config carries cache tunables.
type Config struct {
	Freshness time.Duration
	// OnRefresh, when set, observes every upstream refresh. Called outside
	// the cache lock, at most once per coalesced fetch.
	OnRefresh func(RefreshOutcome)
}

func (c *Config) defaults() {
	if c.Freshness <= 0 {
		c.Freshness = 5 * time.Minute
	}
}

// Cache serves fresh-enough snapshots of both boards.
type Cache struct {
	source  Source
	dealsID string
	workID  string
	config  Config
	logger  *slog.Logger
	now     func() time.Time

	group singleflight.Group

	mu         sync.RWMutex
	deals      *DealSnapshot
	work       *WorkOrderSnapshot
	dealsStale bool
	workStale  bool
}

// New builds a cache over source for the two configured boards.
func New(source Source, dealsID, workID string, config Config, logger *slog.Logger) *Cache {
	config.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		source:  source,
		dealsID: dealsID,
		workID:  workID,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// Deals returns the current Deals snapshot, refreshing first when the cached
// one is stale or absent.
func (c *Cache) Deals(ctx context.Context) (*DealSnapshot, error) {
	c.mu.RLock()
	snap, stale := c.deals, c.dealsStale
	c.mu.RUnlock()
	if snap != nil && !stale && c.now().Sub(snap.FetchedAt) < c.config.Freshness {
		return snap, nil
	}

	v, err, _ := c.group.Do(string(normalize.KindDeals), func() (any, error) {
		return c.refreshDeals(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*DealSnapshot), nil
}

// WorkOrders returns the current Work Orders snapshot, refreshing first when
// the cached one is stale or absent.
func (c *Cache) WorkOrders(ctx context.Context) (*WorkOrderSnapshot, error) {
	c.mu.RLock()
	snap, stale := c.work, c.workStale
	c.mu.RUnlock()
	if snap != nil && !stale && c.now().Sub(snap.FetchedAt) < c.config.Freshness {
		return snap, nil
	}

	v, err, _ := c.group.Do(string(normalize.KindWorkOrders), func() (any, error) {
		return c.refreshWork(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*WorkOrderSnapshot), nil
}

// Refresh ensures both boards are fresh, fetching them in parallel. Used by
// request paths that need both snapshots at once.
func (c *Cache) Refresh(ctx context.Context) (*DealSnapshot, *WorkOrderSnapshot, error) {
	var (
		g     errgroup.Group
		deals *DealSnapshot
		work  *WorkOrderSnapshot
	)
	g.Go(func() error {
		var err error
		deals, err = c.Deals(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		work, err = c.WorkOrders(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return deals, work, nil
}

// Invalidate marks both snapshots stale. Cached data stays available to the
// refresh path but the next read bypasses the freshness window.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.dealsStale = true
	c.workStale = true
	c.mu.Unlock()
	c.logger.Info("snapshot cache invalidated")
}

// Ages reports how old each cached snapshot is. Boards never fetched are
// absent from the map.
func (c *Cache) Ages() map[normalize.BoardKind]time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ages := make(map[normalize.BoardKind]time.Duration, 2)
	if c.deals != nil {
		ages[normalize.KindDeals] = c.now().Sub(c.deals.FetchedAt)
	}
	if c.work != nil {
		ages[normalize.KindWorkOrders] = c.now().Sub(c.work.FetchedAt)
	}
	return ages
}

// refreshDeals fetches and normalizes the Deals board, then swaps the
// snapshot in. The fetch is detached from the caller's cancellation so an
// aborted request still populates the cache for the next one.
func (c *Cache) refreshDeals(ctx context.Context) (*DealSnapshot, error) {
	start := time.Now()
	items, err := c.source.FetchAll(context.WithoutCancel(ctx), c.dealsID)
	if err != nil {
		c.observeRefresh(RefreshOutcome{Board: normalize.KindDeals, Duration: time.Since(start), Err: err})
		return nil, err
	}
	records, dropped := normalize.Deals(items)
	flags := normalize.FlagCount(records)
	snap := &DealSnapshot{Records: records, FetchedAt: c.now(), Dropped: dropped}

	c.mu.Lock()
	c.deals = snap
	c.dealsStale = false
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "deals snapshot refreshed",
		"records", len(records), "dropped_header_rows", dropped,
		"quality_flags", flags)
	c.observeRefresh(RefreshOutcome{
		Board:        normalize.KindDeals,
		Duration:     time.Since(start),
		Records:      len(records),
		QualityFlags: flags,
		DroppedRows:  dropped,
	})
	return snap, nil
}

func (c *Cache) refreshWork(ctx context.Context) (*WorkOrderSnapshot, error) {
	start := time.Now()
	items, err := c.source.FetchAll(context.WithoutCancel(ctx), c.workID)
	if err != nil {
		c.observeRefresh(RefreshOutcome{Board: normalize.KindWorkOrders, Duration: time.Since(start), Err: err})
		return nil, err
	}
	records, dropped := normalize.WorkOrders(items)
	flags := normalize.FlagCount(records)
	snap := &WorkOrderSnapshot{Records: records, FetchedAt: c.now(), Dropped: dropped}

	c.mu.Lock()
	c.work = snap
	c.workStale = false
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "work orders snapshot refreshed",
		"records", len(records), "dropped_header_rows", dropped,
		"quality_flags", flags)
	c.observeRefresh(RefreshOutcome{
		Board:        normalize.KindWorkOrders,
		Duration:     time.Since(start),
		Records:      len(records),
		QualityFlags: flags,
		DroppedRows:  dropped,
	})
	return snap, nil
}

func (c *Cache) observeRefresh(o RefreshOutcome) {
	if c.config.OnRefresh != nil {
		c.config.OnRefresh(o)
	}
}
