package domain

import "errors"

// ErrDashboardUnavailable wraps any window query failure. Callers never
// receive partial results.
var ErrDashboardUnavailable = errors.New("failed to fetch dashboard data")
