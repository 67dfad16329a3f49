package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopkpi/shopkpi/internal/report/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, report *domain.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *repo) List(ctx context.Context, req domain.ListReportsRequest) ([]domain.ReportRow, error) {
	query := r.db.WithContext(ctx).
		Table("kpi_reports").
		Select("kpi_reports.*, users.name AS user_name").
		Joins("LEFT JOIN users ON users.id = kpi_reports.user_id")

	if req.UserID != nil {
		query = query.Where("kpi_reports.user_id = ?", *req.UserID)
	}
	if req.From != nil {
		query = query.Where("kpi_reports.report_date >= ?", *req.From)
	}
	if req.To != nil {
		query = query.Where("kpi_reports.report_date <= ?", *req.To)
	}

	var rows []domain.ReportRow
	err := query.
		Order("kpi_reports.report_date DESC").
		Order("kpi_reports.created_at DESC").
		Order("kpi_reports.id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) FindByUserAndDate(ctx context.Context, userID snowflake.ID, date string) ([]domain.Report, error) {
	var reports []domain.Report
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND report_date = ?", userID, date).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}
