package domain

import "context"

type Service interface {
	GetDashboard(ctx context.Context, req GetDashboardRequest) (Data, error)
	// InvalidateCache drops cached dashboard payloads. Called after
	// report submission so the next read reflects the new row.
	InvalidateCache()
	// InvalidateCacheKey drops one cached scope: "all" or a user ID.
	InvalidateCacheKey(key string)
}
