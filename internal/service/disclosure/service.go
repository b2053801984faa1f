package disclosure

import (
	"context"
	"time"

	"FundFlow/internal/domain/models"
	"FundFlow/internal/domain/repository"
	"FundFlow/internal/service/cache"
	"FundFlow/pkg/logger"
)

// Service aggregates disclosure data for one market data source. Day tables
// are cached with a TTL; per-(symbol,date) flow amounts are memoized in a
// bounded FIFO map. Every public operation is total: upstream failures
// degrade to "no data" and are logged, never returned.
type Service struct {
	source  repository.MarketDataSource
	log     *logger.Logger
	metrics repository.Metrics

	tableTTL  time.Duration
	dayTables *cache.TTLCache
	flowMemo  *cache.FIFOCache
}

type Options struct {
	TableTTL     time.Duration
	FlowMemoSize int
}

func NewService(source repository.MarketDataSource, log *logger.Logger, metrics repository.Metrics, opts Options) *Service {
	if opts.TableTTL == 0 {
		opts.TableTTL = time.Hour
	}
	if opts.FlowMemoSize == 0 {
		opts.FlowMemoSize = 1024
	}
	return &Service{
		source:    source,
		log:       log,
		metrics:   metrics,
		tableTTL:  opts.TableTTL,
		dayTables: cache.NewTTLCache(),
		flowMemo:  cache.NewFIFOCache(opts.FlowMemoSize),
	}
}

// bucket accumulates one actor's buy/sell flow.
type bucket struct {
	buyCount   float64
	sellCount  float64
	buyAmount  float64
	sellAmount float64
}

func (b bucket) net() float64 { return b.buyAmount - b.sellAmount }

func (b bucket) toModel(netAmount, netRatio float64) models.BucketFlow {
	return models.BucketFlow{
		BuyCount:   b.buyCount,
		SellCount:  b.sellCount,
		BuyAmount:  b.buyAmount,
		SellAmount: b.sellAmount,
		NetAmount:  netAmount,
		NetRatio:   netRatio,
	}
}

// branchFlows is the classified branch-level detail for one (symbol, date).
type branchFlows struct {
	inst   bucket
	hot    bucket
	retail bucket
}

func (f branchFlows) totals() bucket {
	return bucket{
		buyCount:   f.inst.buyCount + f.hot.buyCount + f.retail.buyCount,
		sellCount:  f.inst.sellCount + f.hot.sellCount + f.retail.sellCount,
		buyAmount:  f.inst.buyAmount + f.hot.buyAmount + f.retail.buyAmount,
		sellAmount: f.inst.sellAmount + f.hot.sellAmount + f.retail.sellAmount,
	}
}

// totalNet treats retail flow as a contrary indicator.
func (f branchFlows) totalNet() float64 {
	return f.inst.net() + f.hot.net() - f.retail.net()
}

// volume is the ratio denominator: total traded both ways, floored at 1,
// doubled.
func (f branchFlows) volume() float64 {
	t := f.totals()
	v := t.buyAmount + t.sellAmount
	if v < 1 {
		v = 1
	}
	return v * 2
}

func ratio(net, volume float64) float64 {
	if volume <= 0 {
		return 0
	}
	return net / volume * 100
}

// daySummary returns the statistical summary table for one date, keyed by
// symbol. Failed fetches are not cached so the next call retries.
func (s *Service) daySummary(ctx context.Context, date string) map[string]models.SummaryRow {
	if v, ok := s.dayTables.Get(date); ok {
		s.metrics.RecordCacheHit("disclosure_day")
		return v.(map[string]models.SummaryRow)
	}
	s.metrics.RecordCacheMiss("disclosure_day")

	rows, err := s.source.DisclosureSummary(ctx, date)
	if err != nil {
		s.metrics.RecordFetchError("disclosure_summary")
		s.log.Warn("disclosure summary fetch failed",
			logger.String("date", date), logger.Error(err))
		return nil
	}
	s.metrics.RecordFetch("disclosure_summary")

	table := make(map[string]models.SummaryRow, len(rows))
	for _, row := range rows {
		table[row.Symbol] = row
	}
	s.dayTables.Set(date, table, s.tableTTL)
	return table
}

func (s *Service) summaryFor(ctx context.Context, symbol, date string) (models.SummaryRow, bool) {
	table := s.daySummary(ctx, date)
	row, ok := table[symbol]
	return row, ok
}

// branchFor fetches and classifies both sides of the branch detail for one
// (symbol, date). Fetch failures yield an empty flow set.
func (s *Service) branchFor(ctx context.Context, symbol, date string) branchFlows {
	var flows branchFlows

	buys, err := s.source.BranchDetail(ctx, symbol, date, models.SideBuy)
	if err != nil {
		s.metrics.RecordFetchError("branch_detail")
		s.log.Warn("branch buy detail fetch failed",
			logger.String("symbol", symbol), logger.String("date", date), logger.Error(err))
		buys = nil
	}
	sells, err := s.source.BranchDetail(ctx, symbol, date, models.SideSell)
	if err != nil {
		s.metrics.RecordFetchError("branch_detail")
		s.log.Warn("branch sell detail fetch failed",
			logger.String("symbol", symbol), logger.String("date", date), logger.Error(err))
		sells = nil
	}

	for _, row := range buys {
		switch Classify(row.Branch) {
		case models.ActorInstitution:
			flows.inst.buyCount++
			flows.inst.buyAmount += row.Amount
		case models.ActorRetail:
			flows.retail.buyCount++
			flows.retail.buyAmount += row.Amount
		default:
			flows.hot.buyCount++
			flows.hot.buyAmount += row.Amount
		}
	}
	for _, row := range sells {
		switch Classify(row.Branch) {
		case models.ActorInstitution:
			flows.inst.sellCount++
			flows.inst.sellAmount += row.Amount
		case models.ActorRetail:
			flows.retail.sellCount++
			flows.retail.sellAmount += row.Amount
		default:
			flows.hot.sellCount++
			flows.hot.sellAmount += row.Amount
		}
	}
	return flows
}

// Aggregate merges the statistical institution summary with the classified
// branch detail for one (symbol, date). The institution bucket sums both
// sources rather than preferring one; when no institution flow exists the
// combined branch net decides. Nil means the symbol was not on the list.
func (s *Service) Aggregate(ctx context.Context, symbol, date string) *models.FundFlowRecord {
	summary, hasSummary := s.summaryFor(ctx, symbol, date)
	flows := s.branchFor(ctx, symbol, date)

	statNet := 0.0
	if hasSummary {
		statNet = summary.NetAmount
	}
	totalInstNet := statNet + flows.inst.net()

	vol := flows.volume()
	branchTotals := flows.totals()
	branchNet := flows.totalNet()
	branchRatio := ratio(branchNet, vol)

	var (
		chosen     bucket
		netAmount  float64
		netRatio   float64
		reason     string
		signalType models.SignalType
	)
	switch {
	case totalInstNet != 0:
		signalType = models.SignalInstitution
		netAmount = totalInstNet
		chosen = bucket{
			buyCount:   flows.inst.buyCount,
			sellCount:  flows.inst.sellCount,
			buyAmount:  flows.inst.buyAmount,
			sellAmount: flows.inst.sellAmount,
		}
		if hasSummary {
			chosen.buyCount += summary.BuyCount
			chosen.sellCount += summary.SellCount
			chosen.buyAmount += summary.BuyAmount
			chosen.sellAmount += summary.SellAmount
		}
		mergedVol := chosen.buyAmount + chosen.sellAmount
		if mergedVol < 1 {
			mergedVol = 1
		}
		netRatio = ratio(netAmount, mergedVol*2)
		if netAmount > 0 {
			reason = "Institution Buy"
		} else {
			reason = "Institution Sell"
		}
	case branchNet != 0:
		signalType = models.SignalBranchAggregate
		netAmount = branchNet
		netRatio = branchRatio
		chosen = branchTotals
		if netAmount > 0 {
			reason = "Branch Buy"
		} else {
			reason = "Branch Sell"
		}
	default:
		return nil
	}

	rec := &models.FundFlowRecord{
		Date:        date,
		Symbol:      symbol,
		Institution: chosen.toModel(totalInstNet, netRatio),
		HotMoney:    flows.hot.toModel(flows.hot.net(), ratio(flows.hot.net(), vol)),
		Retail:      flows.retail.toModel(flows.retail.net(), ratio(flows.retail.net(), vol)),
		Branch:      branchTotals.toModel(branchNet, branchRatio),
		NetAmount:   netAmount,
		NetRatio:    netRatio,
		Reason:      reason,
		SignalType:  signalType,
	}
	if hasSummary {
		rec.ChangePct = summary.ChangePct
	}
	return rec
}

// ClearCache drops the day tables and the flow memo.
func (s *Service) ClearCache() {
	s.dayTables.Clear()
	s.flowMemo.Clear()
	s.log.Info("disclosure caches cleared")
}
