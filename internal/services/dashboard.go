package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"carteira/internal/cache"
	"carteira/internal/core"
	"carteira/internal/log"
	"carteira/internal/ports"
)

type dashboardStore interface {
	ports.SummaryReader
	ports.TransactionStore
}

// DashboardService computes month summaries and keeps them cached until the
// household writes again.
type DashboardService struct {
	store  dashboardStore
	cache  cache.Cache[core.MonthSummary]
	group  singleflight.Group
	logger *log.Logger

	// generations counts invalidations per household. A summary is only
	// cached if no write landed while it was computed.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewDashboardService caches up to maxEntries summaries for ttl. A zero ttl
// disables caching.
func NewDashboardService(store dashboardStore, maxEntries int, ttl time.Duration, logger *log.Logger) *DashboardService {
	if logger == nil {
		logger = log.Discard()
	}
	s := &DashboardService{
		store:       store,
		logger:      logger.WithComponent(log.ComponentDashboard),
		generations: make(map[string]uint64),
	}
	if ttl > 0 {
		s.cache = cache.NewLRU[core.MonthSummary](maxEntries, ttl)
	}
	return s
}

// Cache exposes the summary cache so it can be registered for sweeping.
func (s *DashboardService) Cache() cache.Sweeper {
	if sw, ok := s.cache.(cache.Sweeper); ok {
		return sw
	}
	return nil
}

func cacheKey(householdID string, year, month int) string {
	return fmt.Sprintf("%s:%04d-%02d", householdID, year, month)
}

func (s *DashboardService) generation(householdID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[householdID]
}

// fill caches summary unless the household was invalidated after gen was
// read.
func (s *DashboardService) fill(key, householdID string, gen uint64, summary core.MonthSummary) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[householdID] != gen {
		return false
	}
	s.cache.Set(key, summary)
	return true
}

// Invalidate drops every cached month of the household. Computations
// already running when it is called neither fill the cache nor serve
// requests that arrive afterwards.
func (s *DashboardService) Invalidate(householdID string) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	s.generations[householdID]++
	n := s.cache.DeletePrefix(householdID + ":")
	s.mu.Unlock()

	if n > 0 {
		s.logger.Debug("Invalidated dashboard cache", log.FieldHouseholdID, householdID, log.FieldCount, n)
	}
}

// Month returns income, expense, balance, expenses by category and the most
// recent transactions billed in the given month.
func (s *DashboardService) Month(ctx context.Context, householdID string, year, month int) (core.MonthSummary, error) {
	if month < 1 || month > 12 {
		return core.MonthSummary{}, core.Invalid("month", core.ErrInvalidDate)
	}
	if year < 1 || year > 9999 {
		return core.MonthSummary{}, core.Invalid("year", core.ErrInvalidDate)
	}
	if s.cache == nil {
		return s.compute(ctx, householdID, year, month)
	}

	key := cacheKey(householdID, year, month)
	if summary, ok := s.cache.Get(key); ok {
		return summary, nil
	}

	gen := s.generation(householdID)
	flight := fmt.Sprintf("%s#%d", key, gen)
	v, err, shared := s.group.Do(flight, func() (any, error) {
		summary, err := s.compute(ctx, householdID, year, month)
		if err != nil {
			return nil, err
		}
		if !s.fill(key, householdID, gen, summary) {
			s.logger.DebugContext(ctx, "Discarded dashboard computed before a write",
				log.FieldHouseholdID, householdID, log.FieldYear, year, log.FieldMonth, month)
		}
		return summary, nil
	})
	if err != nil {
		return core.MonthSummary{}, err
	}
	if shared {
		s.logger.DebugContext(ctx, "Shared dashboard computation", log.FieldHouseholdID, householdID)
	}
	return v.(core.MonthSummary), nil
}

func (s *DashboardService) compute(ctx context.Context, householdID string, year, month int) (core.MonthSummary, error) {
	period := core.MonthPeriod(year, month)
	summary := core.MonthSummary{Year: year, Month: month}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		income, expense, err := s.store.Totals(gctx, householdID, period)
		if err != nil {
			return fmt.Errorf("totals: %w", err)
		}
		summary.Income, summary.Expense = income, expense
		return nil
	})
	g.Go(func() error {
		totals, err := s.store.ExpenseByCategory(gctx, householdID, period)
		if err != nil {
			return fmt.Errorf("expense by category: %w", err)
		}
		for i := range totals {
			totals[i] = core.LabelCategoryTotal(totals[i])
		}
		summary.ByCategory = totals
		return nil
	})
	g.Go(func() error {
		recent, err := s.store.ListTransactions(gctx, ports.TransactionFilter{
			HouseholdID: householdID,
			Period:      period,
			Limit:       core.RecentLimit,
		})
		if err != nil {
			return fmt.Errorf("recent transactions: %w", err)
		}
		summary.Recent = recent
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.MonthSummary{}, fmt.Errorf("dashboard %04d-%02d: %w", year, month, err)
	}

	summary.Balance = summary.Income.Sub(summary.Expense)
	if summary.ByCategory == nil {
		summary.ByCategory = []core.CategoryTotal{}
	}
	if summary.Recent == nil {
		summary.Recent = []core.Transaction{}
	}
	return summary, nil
}
