package service

import (
	"context"
	"fmt"

	"github.com/shopkpi/shopkpi/internal/cache"
	"github.com/shopkpi/shopkpi/internal/clock"
	"github.com/shopkpi/shopkpi/internal/config"
	"github.com/shopkpi/shopkpi/internal/dashboard/domain"
	"github.com/shopkpi/shopkpi/internal/kpimetrics"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	clock clock.Clock
	cache cache.Cache[string, domain.Data]
	cfg   config.Config
}

func New(log *zap.Logger, repo domain.Repository, clk clock.Clock, c cache.Cache[string, domain.Data], cfg config.Config) domain.Service {
	return &Service{
		log:   log.Named("dashboard.service"),
		repo:  repo,
		clock: clk,
		cache: c,
		cfg:   cfg,
	}
}

func (s *Service) GetDashboard(ctx context.Context, req domain.GetDashboardRequest) (domain.Data, error) {
	key := "all"
	if req.UserID != nil {
		key = req.UserID.String()
	}
	if data, ok := s.cache.Get(key); ok {
		return data, nil
	}

	now := s.clock.Now().UTC()
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)
	weekStart := now.AddDate(0, 0, -7).Format(dateLayout)

	todayTotals, err := s.repo.SumWindow(ctx, domain.WindowFilter{UserID: req.UserID, Date: today})
	if err != nil {
		return domain.Data{}, s.unavailable(err)
	}
	yesterdayTotals, err := s.repo.SumWindow(ctx, domain.WindowFilter{UserID: req.UserID, Date: yesterday})
	if err != nil {
		return domain.Data{}, s.unavailable(err)
	}
	weekAverages, err := s.repo.AvgWindow(ctx, domain.WindowFilter{UserID: req.UserID, From: weekStart})
	if err != nil {
		return domain.Data{}, s.unavailable(err)
	}

	data := assemble(todayTotals, yesterdayTotals, weekAverages)
	s.cache.Set(key, data, s.cfg.CacheTTL)
	return data, nil
}

func (s *Service) InvalidateCache() {
	s.cache.Purge()
}

func (s *Service) InvalidateCacheKey(key string) {
	s.cache.Delete(key)
}

func (s *Service) unavailable(err error) error {
	s.log.Error("dashboard aggregation failed", zap.Error(err))
	return fmt.Errorf("%w: %v", domain.ErrDashboardUnavailable, err)
}

// assemble builds the payload from the three window aggregates. Order
// accuracy is recomputed per window from that window's totals, so high
// volume days weigh more than low volume days; the derived ratios come
// from today's totals only.
func assemble(today, yesterday, week kpimetrics.Totals) domain.Data {
	return domain.Data{
		PrintsCompleted: stats(today.PrintsCompleted, yesterday.PrintsCompleted, week.PrintsCompleted),
		JobsCompleted:   stats(today.JobsCompleted, yesterday.JobsCompleted, week.JobsCompleted),
		Misprints:       stats(today.Misprints, yesterday.Misprints, week.Misprints),
		OrderAccuracy: stats(
			kpimetrics.OrderAccuracy(today.PrintsCompleted, today.Misprints),
			kpimetrics.OrderAccuracy(yesterday.PrintsCompleted, yesterday.Misprints),
			kpimetrics.OrderAccuracy(week.PrintsCompleted, week.Misprints),
		),
		ScreensUsed:       stats(today.ScreensUsed, yesterday.ScreensUsed, week.ScreensUsed),
		HoursWorked:       stats(today.HoursWorked, yesterday.HoursWorked, week.HoursWorked),
		CalculatedMetrics: kpimetrics.Calculate(today),
	}
}

func stats(today, yesterday, average float64) domain.Stats {
	return domain.Stats{
		Today:       today,
		Yesterday:   yesterday,
		Change:      kpimetrics.Change(today, yesterday),
		Average7Day: average,
	}
}
