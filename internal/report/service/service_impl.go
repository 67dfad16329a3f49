package service

import (
	"context"
	"regexp"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopkpi/shopkpi/internal/kpimetrics"
	"github.com/shopkpi/shopkpi/internal/report/domain"
	"go.uber.org/zap"
)

// Validation bounds for submitted counters.
const (
	maxPrints   = 10000
	maxCounters = 1000
	maxHours    = 24
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &Service{
		log:   log.Named("report.service"),
		repo:  repo,
		genID: genID,
	}
}

func (s *Service) Create(ctx context.Context, userID snowflake.ID, req domain.CreateReportRequest) (*domain.Report, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	report := &domain.Report{
		ID:              s.genID.Generate(),
		UserID:          userID,
		ReportDate:      req.ReportDate,
		PrintsCompleted: req.PrintsCompleted,
		JobsCompleted:   req.JobsCompleted,
		Misprints:       req.Misprints,
		ScreensUsed:     req.ScreensUsed,
		HoursWorked:     req.HoursWorked,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	s.log.Info("report created",
		zap.String("user_id", userID.String()),
		zap.String("report_date", report.ReportDate),
	)
	return report, nil
}

func (s *Service) List(ctx context.Context, req domain.ListReportsRequest) ([]domain.ReportWithCalculated, error) {
	rows, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	enriched := make([]domain.ReportWithCalculated, 0, len(rows))
	for _, row := range rows {
		enriched = append(enriched, domain.ReportWithCalculated{
			Report:     row.Report,
			UserName:   row.UserName,
			Calculated: kpimetrics.Calculate(row.Totals()),
		})
	}
	return enriched, nil
}

func (s *Service) GetByUserAndDate(ctx context.Context, userID snowflake.ID, date string) ([]domain.Report, error) {
	if !datePattern.MatchString(date) {
		return nil, domain.ErrInvalidReportDate
	}
	reports, err := s.repo.FindByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, domain.ErrReportNotFound
	}
	return reports, nil
}

func validate(req domain.CreateReportRequest) error {
	if !datePattern.MatchString(req.ReportDate) {
		return domain.ErrInvalidReportDate
	}
	if _, err := time.Parse("2006-01-02", req.ReportDate); err != nil {
		return domain.ErrInvalidReportDate
	}
	if req.PrintsCompleted < 0 || req.PrintsCompleted > maxPrints {
		return domain.ErrValueOutOfRange
	}
	for _, v := range []int{req.JobsCompleted, req.Misprints, req.ScreensUsed} {
		if v < 0 || v > maxCounters {
			return domain.ErrValueOutOfRange
		}
	}
	if req.HoursWorked < 0 || req.HoursWorked > maxHours {
		return domain.ErrValueOutOfRange
	}
	return nil
}
