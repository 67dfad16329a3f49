package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopkpi/shopkpi/internal/kpimetrics"
)

// WindowFilter selects the report rows feeding one aggregate. Date takes
// an exact report_date; From takes an inclusive lower bound. At most one
// of the two is set.
type WindowFilter struct {
	UserID *snowflake.ID
	Date   string
	From   string
}

// Repository aggregates raw counters over a window. Empty windows yield
// zero totals, never an error.
type Repository interface {
	SumWindow(ctx context.Context, filter WindowFilter) (kpimetrics.Totals, error)
	AvgWindow(ctx context.Context, filter WindowFilter) (kpimetrics.Totals, error)
}
