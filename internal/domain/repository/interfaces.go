package repository

import (
	"context"

	"FundFlow/internal/domain/models"
)

// MarketDataSource provides read access to daily market history and the
// disclosure tables. Implementations fetch from ClickHouse or from an HTTP
// data gateway.
type MarketDataSource interface {
	// History returns up to limit daily rows for symbol, most recent first.
	History(ctx context.Context, symbol string, limit int) ([]models.DataRow, error)

	// DailyHistory returns OHLC rows for symbol within [start,end], dates
	// in YYYYMMDD form, oldest first.
	DailyHistory(ctx context.Context, symbol, start, end string) ([]models.OHLCRow, error)

	// DisclosureSummary returns every statistical summary row published for
	// the given date (YYYYMMDD).
	DisclosureSummary(ctx context.Context, date string) ([]models.SummaryRow, error)

	// BranchDetail returns the branch-level rows for one symbol, date and
	// side of the book.
	BranchDetail(ctx context.Context, symbol, date string, side models.TradeSide) ([]models.BranchRow, error)

	// DisclosureDates returns the dates (YYYYMMDD) on which symbol appeared
	// on the disclosure list, ascending.
	DisclosureDates(ctx context.Context, symbol string) ([]string, error)
}

// SignalPublisher emits triggered composite signals to downstream consumers.
type SignalPublisher interface {
	Publish(ctx context.Context, c *models.Composite) error
	Close() error
}

type Metrics interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
	RecordFetch(kind string)
	RecordFetchError(kind string)
	RecordRuleTrigger(rule string)
	RecordLatency(op string, seconds float64)
}
