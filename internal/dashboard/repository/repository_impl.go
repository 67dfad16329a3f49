package repository

import (
	"context"

	"github.com/shopkpi/shopkpi/internal/dashboard/domain"
	"github.com/shopkpi/shopkpi/internal/kpimetrics"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) SumWindow(ctx context.Context, filter domain.WindowFilter) (kpimetrics.Totals, error) {
	return r.aggregate(ctx, "SUM", filter)
}

func (r *repo) AvgWindow(ctx context.Context, filter domain.WindowFilter) (kpimetrics.Totals, error) {
	return r.aggregate(ctx, "AVG", filter)
}

func (r *repo) aggregate(ctx context.Context, fn string, filter domain.WindowFilter) (kpimetrics.Totals, error) {
	query := r.db.WithContext(ctx).
		Table("kpi_reports").
		Select(fn + "(COALESCE(prints_completed, 0)) AS prints_completed, " +
			fn + "(COALESCE(jobs_completed, 0)) AS jobs_completed, " +
			fn + "(COALESCE(misprints, 0)) AS misprints, " +
			fn + "(COALESCE(screens_used, 0)) AS screens_used, " +
			fn + "(COALESCE(hours_worked, 0)) AS hours_worked")

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Date != "" {
		query = query.Where("report_date = ?", filter.Date)
	}
	if filter.From != "" {
		query = query.Where("report_date >= ?", filter.From)
	}

	var row struct {
		PrintsCompleted *float64
		JobsCompleted   *float64
		Misprints       *float64
		ScreensUsed     *float64
		HoursWorked     *float64
	}
	if err := query.Scan(&row).Error; err != nil {
		return kpimetrics.Totals{}, err
	}

	// SUM/AVG over zero rows returns NULL regardless of COALESCE on the
	// column; treat it as an empty window.
	return kpimetrics.Totals{
		PrintsCompleted: deref(row.PrintsCompleted),
		JobsCompleted:   deref(row.JobsCompleted),
		Misprints:       deref(row.Misprints),
		ScreensUsed:     deref(row.ScreensUsed),
		HoursWorked:     deref(row.HoursWorked),
	}, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
