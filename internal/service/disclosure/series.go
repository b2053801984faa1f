package disclosure

import (
	"context"
	"sort"

	"FundFlow/internal/domain/models"
	"FundFlow/pkg/logger"
	"FundFlow/pkg/util"
)

// flowNet is the memoized three-actor net for one (symbol, date).
type flowNet struct {
	inst   float64
	hot    float64
	retail float64
}

func (s *Service) flowFor(ctx context.Context, symbol, date string) flowNet {
	key := "flow/" + symbol + "/" + date
	if v, ok := s.flowMemo.Get(key); ok {
		s.metrics.RecordCacheHit("flow_memo")
		return v.(flowNet)
	}
	s.metrics.RecordCacheMiss("flow_memo")

	summary, hasSummary := s.summaryFor(ctx, symbol, date)
	flows := s.branchFor(ctx, symbol, date)

	statNet := 0.0
	if hasSummary {
		statNet = summary.NetAmount
	}
	net := flowNet{
		inst:   statNet + flows.inst.net(),
		hot:    flows.hot.net(),
		retail: flows.retail.net(),
	}
	s.flowMemo.Set(key, net)
	return net
}

// datesInRange returns the symbol's disclosure dates inside [start, end],
// sorted ascending and deduplicated.
func (s *Service) datesInRange(ctx context.Context, symbol, start, end string) []string {
	dates, err := s.source.DisclosureDates(ctx, symbol)
	if err != nil {
		s.metrics.RecordFetchError("disclosure_dates")
		s.log.Warn("disclosure dates fetch failed",
			logger.String("symbol", symbol), logger.Error(err))
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, d := range dates {
		ds, ok := util.NormalizeDate(d)
		if !ok {
			continue
		}
		if ds < start || ds > end {
			continue
		}
		if _, dup := seen[ds]; dup {
			continue
		}
		seen[ds] = struct{}{}
		out = append(out, ds)
	}
	sort.Strings(out)
	return out
}

// estimatePrice derives a usable per-day price: turnover amount over volume
// first, then the OHLC mean, then the close. Each candidate must land in
// (0, 1000); everything else reads as feed noise. Zero means no estimate.
func estimatePrice(row models.OHLCRow) float64 {
	usable := func(p float64) bool { return p > 0 && p < 1000 }

	if row.TurnoverVolume > 0 && row.TurnoverAmount > 0 {
		if p := row.TurnoverAmount / row.TurnoverVolume; usable(p) {
			return p
		}
	}
	if mean := (row.Open + row.Close + row.High + row.Low) / 4; usable(mean) {
		return mean
	}
	if usable(row.Close) {
		return row.Close
	}
	return 0
}

// dailyPrices maps YYYYMMDD to the estimated average price for each trading
// day in [start, end].
func (s *Service) dailyPrices(ctx context.Context, symbol, start, end string) map[string]float64 {
	rows, err := s.source.DailyHistory(ctx, symbol, start, end)
	if err != nil {
		s.metrics.RecordFetchError("daily_history")
		s.log.Warn("daily history fetch failed",
			logger.String("symbol", symbol), logger.Error(err))
		return nil
	}
	prices := make(map[string]float64, len(rows))
	for _, row := range rows {
		if p := estimatePrice(row); p > 0 {
			prices[row.Date.Format(util.DateLayout)] = p
		}
	}
	return prices
}

// FundFlowSeries builds the date-indexed three-actor net series for a
// symbol. Share counts convert each day's net amount at that day's price;
// days without a price estimate report zero shares.
func (s *Service) FundFlowSeries(ctx context.Context, symbol, start, end string) []models.FlowPoint {
	start, end, ok := util.OrderRange(start, end)
	if !ok {
		return nil
	}
	dates := s.datesInRange(ctx, symbol, start, end)
	if len(dates) == 0 {
		return nil
	}
	prices := s.dailyPrices(ctx, symbol, start, end)

	points := make([]models.FlowPoint, 0, len(dates))
	for _, ds := range dates {
		net := s.flowFor(ctx, symbol, ds)
		t, _ := util.ParseDate(ds)
		pt := models.FlowPoint{
			Date:           t,
			InstitutionNet: net.inst,
			HotNet:         net.hot,
			RetailNet:      net.retail,
		}
		if p := prices[ds]; p > 0 {
			pt.InstitutionShares = net.inst / p
			pt.HotShares = net.hot / p
			pt.RetailShares = net.retail / p
		}
		points = append(points, pt)
	}
	return points
}

type branchAccum struct {
	bucket
	dailyTrades map[string]models.DailyTrade
}

// BranchReport accumulates every branch's flow over the range, grouped by
// actor and ranked by absolute net amount. Without any usable price the
// report is empty rather than partially share-less.
func (s *Service) BranchReport(ctx context.Context, symbol, start, end string) models.BranchReport {
	var report models.BranchReport
	start, end, ok := util.OrderRange(start, end)
	if !ok {
		return report
	}
	dates := s.datesInRange(ctx, symbol, start, end)
	if len(dates) == 0 {
		return report
	}

	accums := map[models.Actor]map[string]*branchAccum{
		models.ActorInstitution: {},
		models.ActorHotMoney:    {},
		models.ActorRetail:      {},
	}
	get := func(actor models.Actor, branch string) *branchAccum {
		a, ok := accums[actor][branch]
		if !ok {
			a = &branchAccum{dailyTrades: make(map[string]models.DailyTrade)}
			accums[actor][branch] = a
		}
		return a
	}

	for _, ds := range dates {
		buys, err := s.source.BranchDetail(ctx, symbol, ds, models.SideBuy)
		if err != nil {
			s.log.Warn("branch buy detail fetch failed",
				logger.String("symbol", symbol), logger.String("date", ds), logger.Error(err))
			buys = nil
		}
		sells, err := s.source.BranchDetail(ctx, symbol, ds, models.SideSell)
		if err != nil {
			s.log.Warn("branch sell detail fetch failed",
				logger.String("symbol", symbol), logger.String("date", ds), logger.Error(err))
			sells = nil
		}
		for _, row := range buys {
			a := get(Classify(row.Branch), row.Branch)
			a.buyAmount += row.Amount
			a.buyCount++
			t := a.dailyTrades[ds]
			t.Buy += row.Amount
			a.dailyTrades[ds] = t
		}
		for _, row := range sells {
			a := get(Classify(row.Branch), row.Branch)
			a.sellAmount += row.Amount
			a.sellCount++
			t := a.dailyTrades[ds]
			t.Sell += row.Amount
			a.dailyTrades[ds] = t
		}
	}

	prices := s.dailyPrices(ctx, symbol, start, end)
	if len(prices) == 0 {
		s.log.Warn("no usable prices for branch report",
			logger.String("symbol", symbol), logger.String("start", start), logger.String("end", end))
		return report
	}

	summarize := func(branches map[string]*branchAccum) []models.BranchSummary {
		out := make([]models.BranchSummary, 0, len(branches))
		for branch, a := range branches {
			netShares := 0.0
			for ds, t := range a.dailyTrades {
				if p := prices[ds]; p > 0 {
					netShares += (t.Buy - t.Sell) / p
				}
			}
			out = append(out, models.BranchSummary{
				DisplayName: SimplifyBranchName(branch),
				Branch:      branch,
				BuyAmount:   a.buyAmount,
				SellAmount:  a.sellAmount,
				NetAmount:   a.net(),
				NetShares:   netShares,
				DailyTrades: a.dailyTrades,
			})
		}
		sort.SliceStable(out, func(i, j int) bool {
			return abs(out[i].NetAmount) > abs(out[j].NetAmount)
		})
		return out
	}

	report.Institution = summarize(accums[models.ActorInstitution])
	report.HotMoney = summarize(accums[models.ActorHotMoney])
	report.Retail = summarize(accums[models.ActorRetail])
	return report
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
