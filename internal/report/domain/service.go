package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, userID snowflake.ID, req CreateReportRequest) (*Report, error)
	List(ctx context.Context, req ListReportsRequest) ([]ReportWithCalculated, error)
	GetByUserAndDate(ctx context.Context, userID snowflake.ID, date string) ([]Report, error)
}

type CreateReportRequest struct {
	ReportDate      string  `json:"reportDate"`
	PrintsCompleted int     `json:"printsCompleted"`
	JobsCompleted   int     `json:"jobsCompleted"`
	Misprints       int     `json:"misprints"`
	ScreensUsed     int     `json:"screensUsed"`
	HoursWorked     float64 `json:"hoursWorked"`
}

// ListReportsRequest filters the enriched listing. Nil fields are
// unbounded; From and To are inclusive.
type ListReportsRequest struct {
	UserID *snowflake.ID
	From   *string
	To     *string
}
