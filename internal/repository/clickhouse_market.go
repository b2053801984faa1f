package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"FundFlow/internal/domain/models"
	pkgch "FundFlow/pkg/clickhouse"
	applogger "FundFlow/pkg/logger"
)

// CHMarketSource implements MarketDataSource backed by ClickHouse tables
// populated by the ingestion jobs: daily bars with indicator columns, the
// disclosure summary and branch detail.
type CHMarketSource struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHMarketSource(ch *pkgch.Client) *CHMarketSource {
	return &CHMarketSource{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHMarketSource) SetLogger(l *applogger.Logger) { s.l = l }

// nf converts a nullable column to the NaN sentinel the rules expect.
func nf(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func (s *CHMarketSource) History(ctx context.Context, symbol string, limit int) ([]models.DataRow, error) {
	start := time.Now()
	const q = `
        SELECT date, symbol, name,
               open, high, low, close, change_pct,
               turnover_amount, turnover_volume,
               ma5, ma10, ma20,
               avg_cost, cost70_low, cost70_high, cost90_low, cost90_high, concentration90,
               bbw, bbw_drop, bbw_rise, bbw_peak_date, bbw_valley_date,
               k, j
        FROM fundflow.daily_bars
        WHERE symbol = ?
        ORDER BY date DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, limit)
	if err != nil {
		s.logErr("history query error", symbol, err)
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	out := make([]models.DataRow, 0, limit)
	for rows.Next() {
		r := models.NewDataRow()
		var (
			open, high, low, closeP, changePct       sql.NullFloat64
			amt, vol                                 sql.NullFloat64
			ma5, ma10, ma20                          sql.NullFloat64
			cost, c70l, c70h, c90l, c90h, conc90     sql.NullFloat64
			bbw, bbwDrop, bbwRise                    sql.NullFloat64
			peakDate, valleyDate                     sql.NullTime
			k, j                                     sql.NullFloat64
		)
		if err := rows.Scan(&r.Date, &r.Symbol, &r.Name,
			&open, &high, &low, &closeP, &changePct,
			&amt, &vol,
			&ma5, &ma10, &ma20,
			&cost, &c70l, &c70h, &c90l, &c90h, &conc90,
			&bbw, &bbwDrop, &bbwRise, &peakDate, &valleyDate,
			&k, &j); err != nil {
			// A malformed row is skipped, not fatal.
			s.logErr("history scan error", symbol, err)
			continue
		}
		r.Open, r.High, r.Low, r.Close, r.ChangePct = nf(open), nf(high), nf(low), nf(closeP), nf(changePct)
		r.TurnoverAmount, r.TurnoverVolume = nf(amt), nf(vol)
		r.MA5, r.MA10, r.MA20 = nf(ma5), nf(ma10), nf(ma20)
		r.AvgCost = nf(cost)
		r.Cost70Low, r.Cost70High = nf(c70l), nf(c70h)
		r.Cost90Low, r.Cost90High = nf(c90l), nf(c90h)
		r.Concentration90 = nf(conc90)
		r.BBW, r.BBWDrop, r.BBWRise = nf(bbw), nf(bbwDrop), nf(bbwRise)
		if peakDate.Valid {
			r.BBWPeakDate = peakDate.Time
		}
		if valleyDate.Valid {
			r.BBWValleyDate = valleyDate.Time
		}
		r.K, r.J = nf(k), nf(j)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		s.logErr("history rows error", symbol, err)
		return nil, fmt.Errorf("history rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse history ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHMarketSource) DailyHistory(ctx context.Context, symbol, start, end string) ([]models.OHLCRow, error) {
	const q = `
        SELECT date, open, high, low, close, turnover_amount, turnover_volume
        FROM fundflow.daily_bars
        WHERE symbol = ? AND date >= parseDateTimeBestEffort(?) AND date <= parseDateTimeBestEffort(?)
        ORDER BY date ASC
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, start, end)
	if err != nil {
		s.logErr("daily history query error", symbol, err)
		return nil, fmt.Errorf("daily history: %w", err)
	}
	defer rows.Close()

	var out []models.OHLCRow
	for rows.Next() {
		var r models.OHLCRow
		var open, high, low, closeP, amt, vol sql.NullFloat64
		if err := rows.Scan(&r.Date, &open, &high, &low, &closeP, &amt, &vol); err != nil {
			s.logErr("daily history scan error", symbol, err)
			continue
		}
		r.Open, r.High, r.Low, r.Close = open.Float64, high.Float64, low.Float64, closeP.Float64
		r.TurnoverAmount, r.TurnoverVolume = amt.Float64, vol.Float64
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("daily history rows: %w", err)
	}
	return out, nil
}

func (s *CHMarketSource) DisclosureSummary(ctx context.Context, date string) ([]models.SummaryRow, error) {
	const q = `
        SELECT date, symbol, name, close, change_pct,
               buy_count, sell_count, buy_amount, sell_amount,
               net_amount, net_ratio, turnover_rate, market_cap, reason
        FROM fundflow.lhb_summary
        WHERE date = ?
    `
	rows, err := s.db.QueryContext(ctx, q, date)
	if err != nil {
		s.logErr("disclosure summary query error", date, err)
		return nil, fmt.Errorf("disclosure summary: %w", err)
	}
	defer rows.Close()

	var out []models.SummaryRow
	for rows.Next() {
		var r models.SummaryRow
		var close_, changePct, buyCount, sellCount, buyAmt, sellAmt, net, ratio, turnover, mcap sql.NullFloat64
		if err := rows.Scan(&r.Date, &r.Symbol, &r.Name, &close_, &changePct,
			&buyCount, &sellCount, &buyAmt, &sellAmt,
			&net, &ratio, &turnover, &mcap, &r.Reason); err != nil {
			s.logErr("disclosure summary scan error", date, err)
			continue
		}
		r.Close, r.ChangePct = close_.Float64, changePct.Float64
		r.BuyCount, r.SellCount = buyCount.Float64, sellCount.Float64
		r.BuyAmount, r.SellAmount = buyAmt.Float64, sellAmt.Float64
		r.NetAmount, r.NetRatio = net.Float64, ratio.Float64
		r.TurnoverRate, r.MarketCap = turnover.Float64, mcap.Float64
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("disclosure summary rows: %w", err)
	}
	return out, nil
}

func (s *CHMarketSource) BranchDetail(ctx context.Context, symbol, date string, side models.TradeSide) ([]models.BranchRow, error) {
	const q = `
        SELECT branch, amount
        FROM fundflow.lhb_branch
        WHERE symbol = ? AND date = ? AND side = ?
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, date, string(side))
	if err != nil {
		s.logErr("branch detail query error", symbol, err)
		return nil, fmt.Errorf("branch detail: %w", err)
	}
	defer rows.Close()

	var out []models.BranchRow
	for rows.Next() {
		var r models.BranchRow
		var amount sql.NullFloat64
		if err := rows.Scan(&r.Branch, &amount); err != nil {
			s.logErr("branch detail scan error", symbol, err)
			continue
		}
		r.Amount = amount.Float64
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("branch detail rows: %w", err)
	}
	return out, nil
}

func (s *CHMarketSource) DisclosureDates(ctx context.Context, symbol string) ([]string, error) {
	const q = `
        SELECT DISTINCT date
        FROM fundflow.lhb_branch
        WHERE symbol = ?
        ORDER BY date ASC
    `
	rows, err := s.db.QueryContext(ctx, q, symbol)
	if err != nil {
		s.logErr("disclosure dates query error", symbol, err)
		return nil, fmt.Errorf("disclosure dates: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			s.logErr("disclosure dates scan error", symbol, err)
			continue
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("disclosure dates rows: %w", err)
	}
	return out, nil
}

func (s *CHMarketSource) logErr(msg, key string, err error) {
	if s.l == nil {
		return
	}
	s.l.Error("clickhouse "+msg,
		applogger.String("key", key),
		applogger.Error(err),
	)
}
