// Package domain contains core types for KPI production reports.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopkpi/shopkpi/internal/kpimetrics"
)

// Report is one day of production counts submitted by a user. Rows are
// immutable after creation; the dashboard aggregates over them by
// report_date.
type Report struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID          snowflake.ID `gorm:"column:user_id;not null;index" json:"userId"`
	ReportDate      string       `gorm:"column:report_date;type:date;not null;index" json:"reportDate"`
	PrintsCompleted int          `gorm:"column:prints_completed;not null" json:"printsCompleted"`
	JobsCompleted   int          `gorm:"column:jobs_completed;not null" json:"jobsCompleted"`
	Misprints       int          `gorm:"column:misprints;not null" json:"misprints"`
	ScreensUsed     int          `gorm:"column:screens_used;not null" json:"screensUsed"`
	HoursWorked     float64      `gorm:"column:hours_worked;not null" json:"hoursWorked"`
	CreatedAt       time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName sets the database table name.
func (Report) TableName() string { return "kpi_reports" }

// Totals converts the row's counters for ratio calculation.
func (r Report) Totals() kpimetrics.Totals {
	return kpimetrics.Totals{
		PrintsCompleted: float64(r.PrintsCompleted),
		JobsCompleted:   float64(r.JobsCompleted),
		Misprints:       float64(r.Misprints),
		ScreensUsed:     float64(r.ScreensUsed),
		HoursWorked:     r.HoursWorked,
	}
}

// ReportWithCalculated is a report row enriched with the owner's display
// name and the derived ratios computed from that row's own counters.
type ReportWithCalculated struct {
	Report
	UserName   string                `json:"userName"`
	Calculated kpimetrics.Calculated `json:"calculated"`
}
