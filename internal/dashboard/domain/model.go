// Package domain contains the dashboard aggregation types.
package domain

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopkpi/shopkpi/internal/kpimetrics"
)

// Stats is one tracked metric across the comparison windows. A pure
// computed projection, rebuilt on every request.
type Stats struct {
	Today       float64 `json:"today"`
	Yesterday   float64 `json:"yesterday"`
	Change      float64 `json:"change"`
	Average7Day float64 `json:"average7Day"`
}

// Data is the assembled dashboard payload.
type Data struct {
	PrintsCompleted   Stats                 `json:"printsCompleted"`
	JobsCompleted     Stats                 `json:"jobsCompleted"`
	Misprints         Stats                 `json:"misprints"`
	OrderAccuracy     Stats                 `json:"orderAccuracy"`
	ScreensUsed       Stats                 `json:"screensUsed"`
	HoursWorked       Stats                 `json:"hoursWorked"`
	CalculatedMetrics kpimetrics.Calculated `json:"calculatedMetrics"`
}

// GetDashboardRequest scopes the aggregation. A nil UserID aggregates
// across all users.
type GetDashboardRequest struct {
	UserID *snowflake.ID
}
