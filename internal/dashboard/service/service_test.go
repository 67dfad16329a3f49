package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopkpi/shopkpi/internal/cache"
	"github.com/shopkpi/shopkpi/internal/clock"
	"github.com/shopkpi/shopkpi/internal/config"
	"github.com/shopkpi/shopkpi/internal/dashboard/domain"
	"github.com/shopkpi/shopkpi/internal/kpimetrics"
	"go.uber.org/zap"
)

// fakeRepo serves canned totals keyed by window filter.
type fakeRepo struct {
	sums  map[string]kpimetrics.Totals
	avgs  map[string]kpimetrics.Totals
	err   error
	calls int
}

func (f *fakeRepo) SumWindow(_ context.Context, filter domain.WindowFilter) (kpimetrics.Totals, error) {
	f.calls++
	if f.err != nil {
		return kpimetrics.Totals{}, f.err
	}
	return f.sums[filter.Date], nil
}

func (f *fakeRepo) AvgWindow(_ context.Context, filter domain.WindowFilter) (kpimetrics.Totals, error) {
	f.calls++
	if f.err != nil {
		return kpimetrics.Totals{}, f.err
	}
	return f.avgs[filter.From], nil
}

func newTestService(repo domain.Repository, ttl time.Duration) domain.Service {
	clk := clock.NewFakeClock(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC))
	return New(zap.NewNop(), repo, clk, cache.NewTTLCache[string, domain.Data](), config.Config{CacheTTL: ttl})
}

func TestGetDashboardAssemblesWindows(t *testing.T) {
	repo := &fakeRepo{
		sums: map[string]kpimetrics.Totals{
			"2026-08-31": {PrintsCompleted: 100, Misprints: 5, ScreensUsed: 10, HoursWorked: 10},
			"2026-08-30": {PrintsCompleted: 50, Misprints: 0, ScreensUsed: 5, HoursWorked: 5},
		},
		avgs: map[string]kpimetrics.Totals{
			"2026-08-24": {PrintsCompleted: 75, Misprints: 2.5, ScreensUsed: 7.5, HoursWorked: 7.5},
		},
	}

	data, err := newTestService(repo, 0).GetDashboard(context.Background(), domain.GetDashboardRequest{})
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}

	if data.PrintsCompleted.Today != 100 || data.PrintsCompleted.Yesterday != 50 {
		t.Fatalf("prints window totals wrong: %+v", data.PrintsCompleted)
	}
	if data.PrintsCompleted.Change != 100 {
		t.Fatalf("prints change = %v, want 100", data.PrintsCompleted.Change)
	}
	if data.PrintsCompleted.Average7Day != 75 {
		t.Fatalf("prints average = %v, want 75", data.PrintsCompleted.Average7Day)
	}
	if data.OrderAccuracy.Today != 95 || data.OrderAccuracy.Yesterday != 100 {
		t.Fatalf("accuracy windows wrong: %+v", data.OrderAccuracy)
	}
	if data.CalculatedMetrics.PrintsPerHour != 10 || data.CalculatedMetrics.DefectRate != 5 {
		t.Fatalf("calculated metrics wrong: %+v", data.CalculatedMetrics)
	}
}

func TestGetDashboardEmptyWindows(t *testing.T) {
	repo := &fakeRepo{sums: map[string]kpimetrics.Totals{}, avgs: map[string]kpimetrics.Totals{}}

	data, err := newTestService(repo, 0).GetDashboard(context.Background(), domain.GetDashboardRequest{})
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}

	zero := domain.Stats{}
	for name, got := range map[string]domain.Stats{
		"printsCompleted": data.PrintsCompleted,
		"jobsCompleted":   data.JobsCompleted,
		"misprints":       data.Misprints,
		"orderAccuracy":   data.OrderAccuracy,
		"screensUsed":     data.ScreensUsed,
		"hoursWorked":     data.HoursWorked,
	} {
		if got != zero {
			t.Fatalf("%s = %+v, want all zero", name, got)
		}
	}
	if data.CalculatedMetrics != (kpimetrics.Calculated{}) {
		t.Fatalf("calculated metrics = %+v, want all zero", data.CalculatedMetrics)
	}
}

func TestGetDashboardIdempotent(t *testing.T) {
	repo := &fakeRepo{
		sums: map[string]kpimetrics.Totals{"2026-08-31": {PrintsCompleted: 10}},
		avgs: map[string]kpimetrics.Totals{},
	}
	svc := newTestService(repo, 0)

	first, err := svc.GetDashboard(context.Background(), domain.GetDashboardRequest{})
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	second, err := svc.GetDashboard(context.Background(), domain.GetDashboardRequest{})
	if err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical payloads, got %+v vs %+v", first, second)
	}
}

func TestGetDashboardQueryErrorIsOpaque(t *testing.T) {
	repo := &fakeRepo{err: errors.New("connection reset")}

	_, err := newTestService(repo, 0).GetDashboard(context.Background(), domain.GetDashboardRequest{})
	if !errors.Is(err, domain.ErrDashboardUnavailable) {
		t.Fatalf("expected ErrDashboardUnavailable, got %v", err)
	}
}

func TestGetDashboardCaching(t *testing.T) {
	repo := &fakeRepo{
		sums: map[string]kpimetrics.Totals{"2026-08-31": {PrintsCompleted: 10}},
		avgs: map[string]kpimetrics.Totals{},
	}
	svc := newTestService(repo, time.Minute)

	if _, err := svc.GetDashboard(context.Background(), domain.GetDashboardRequest{}); err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	queries := repo.calls
	if _, err := svc.GetDashboard(context.Background(), domain.GetDashboardRequest{}); err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if repo.calls != queries {
		t.Fatalf("expected cached response, repo queried %d more times", repo.calls-queries)
	}

	svc.InvalidateCache()
	if _, err := svc.GetDashboard(context.Background(), domain.GetDashboardRequest{}); err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if repo.calls == queries {
		t.Fatal("expected invalidation to force fresh queries")
	}
}

func TestGetDashboardScopedCacheKeys(t *testing.T) {
	repo := &fakeRepo{
		sums: map[string]kpimetrics.Totals{"2026-08-31": {PrintsCompleted: 10}},
		avgs: map[string]kpimetrics.Totals{},
	}
	svc := newTestService(repo, time.Minute)

	if _, err := svc.GetDashboard(context.Background(), domain.GetDashboardRequest{}); err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	queries := repo.calls

	userID := snowflake.ID(42)
	if _, err := svc.GetDashboard(context.Background(), domain.GetDashboardRequest{UserID: &userID}); err != nil {
		t.Fatalf("GetDashboard: %v", err)
	}
	if repo.calls == queries {
		t.Fatal("expected user-scoped request to bypass the all-users cache entry")
	}
}
