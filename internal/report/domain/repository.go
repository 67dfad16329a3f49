package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, report *Report) error
	List(ctx context.Context, req ListReportsRequest) ([]ReportRow, error)
	FindByUserAndDate(ctx context.Context, userID snowflake.ID, date string) ([]Report, error)
}

// ReportRow is a report joined with the owning user's display name.
type ReportRow struct {
	Report
	UserName string
}
