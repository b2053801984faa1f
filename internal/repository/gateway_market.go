package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"FundFlow/internal/domain/models"
	xhttp "FundFlow/pkg/http"
	applogger "FundFlow/pkg/logger"
	"FundFlow/pkg/util"
)

// GatewayMarketSource reads market and disclosure data from an HTTP data
// gateway. The gateway speaks plain JSON; numeric fields may be null for
// indicators the gateway has not computed.
type GatewayMarketSource struct {
	baseURL string
	client  *xhttp.Client
	l       *applogger.Logger
}

func NewGatewayMarketSource(baseURL string, timeout time.Duration) *GatewayMarketSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GatewayMarketSource{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (g *GatewayMarketSource) SetLogger(l *applogger.Logger) { g.l = l }

type gatewayBar struct {
	Date            string   `json:"date"`
	Symbol          string   `json:"symbol"`
	Name            string   `json:"name"`
	Open            *float64 `json:"open"`
	High            *float64 `json:"high"`
	Low             *float64 `json:"low"`
	Close           *float64 `json:"close"`
	ChangePct       *float64 `json:"change_pct"`
	TurnoverAmount  *float64 `json:"turnover_amount"`
	TurnoverVolume  *float64 `json:"turnover_volume"`
	MA5             *float64 `json:"ma5"`
	MA10            *float64 `json:"ma10"`
	MA20            *float64 `json:"ma20"`
	AvgCost         *float64 `json:"avg_cost"`
	Cost70Low       *float64 `json:"cost70_low"`
	Cost70High      *float64 `json:"cost70_high"`
	Cost90Low       *float64 `json:"cost90_low"`
	Cost90High      *float64 `json:"cost90_high"`
	Concentration90 *float64 `json:"concentration90"`
	BBW             *float64 `json:"bbw"`
	BBWDrop         *float64 `json:"bbw_drop"`
	BBWRise         *float64 `json:"bbw_rise"`
	BBWPeakDate     string   `json:"bbw_peak_date"`
	BBWValleyDate   string   `json:"bbw_valley_date"`
	K               *float64 `json:"k"`
	J               *float64 `json:"j"`
}

// pf maps an absent JSON number to the NaN sentinel the rules expect.
func pf(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// zf maps an absent JSON number to zero for the disclosure tables.
func zf(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func gatewayDate(raw string) time.Time {
	canon, ok := util.NormalizeDate(raw)
	if !ok {
		return time.Time{}
	}
	t, _ := util.ParseDate(canon)
	return t
}

// History returns up to limit indicator rows for symbol, most recent first.
func (g *GatewayMarketSource) History(ctx context.Context, symbol string, limit int) ([]models.DataRow, error) {
	var bars []gatewayBar
	err := g.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    g.baseURL + "/market/history",
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"limit":  {fmt.Sprintf("%d", limit)},
		},
	}, &bars)
	if err != nil {
		return nil, fmt.Errorf("gateway history %s: %w", symbol, err)
	}

	rows := make([]models.DataRow, 0, len(bars))
	for _, b := range bars {
		row := models.NewDataRow()
		row.Date = gatewayDate(b.Date)
		row.Symbol = b.Symbol
		if row.Symbol == "" {
			row.Symbol = symbol
		}
		row.Name = b.Name
		row.Open = pf(b.Open)
		row.High = pf(b.High)
		row.Low = pf(b.Low)
		row.Close = pf(b.Close)
		row.ChangePct = pf(b.ChangePct)
		row.TurnoverAmount = pf(b.TurnoverAmount)
		row.TurnoverVolume = pf(b.TurnoverVolume)
		row.MA5 = pf(b.MA5)
		row.MA10 = pf(b.MA10)
		row.MA20 = pf(b.MA20)
		row.AvgCost = pf(b.AvgCost)
		row.Cost70Low = pf(b.Cost70Low)
		row.Cost70High = pf(b.Cost70High)
		row.Cost90Low = pf(b.Cost90Low)
		row.Cost90High = pf(b.Cost90High)
		row.Concentration90 = pf(b.Concentration90)
		row.BBW = pf(b.BBW)
		row.BBWDrop = pf(b.BBWDrop)
		row.BBWRise = pf(b.BBWRise)
		row.BBWPeakDate = gatewayDate(b.BBWPeakDate)
		row.BBWValleyDate = gatewayDate(b.BBWValleyDate)
		row.K = pf(b.K)
		row.J = pf(b.J)
		rows = append(rows, row)
	}
	if g.l != nil {
		g.l.Debug("gateway history fetched",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(rows)))
	}
	return rows, nil
}

type gatewayOHLC struct {
	Date           string   `json:"date"`
	Open           *float64 `json:"open"`
	High           *float64 `json:"high"`
	Low            *float64 `json:"low"`
	Close          *float64 `json:"close"`
	TurnoverAmount *float64 `json:"turnover_amount"`
	TurnoverVolume *float64 `json:"turnover_volume"`
}

// DailyHistory returns raw OHLC bars over [start, end], oldest first.
func (g *GatewayMarketSource) DailyHistory(ctx context.Context, symbol, start, end string) ([]models.OHLCRow, error) {
	var bars []gatewayOHLC
	err := g.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    g.baseURL + "/market/daily",
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"start":  {start},
			"end":    {end},
		},
	}, &bars)
	if err != nil {
		return nil, fmt.Errorf("gateway daily %s: %w", symbol, err)
	}

	rows := make([]models.OHLCRow, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, models.OHLCRow{
			Date:           gatewayDate(b.Date),
			Open:           zf(b.Open),
			High:           zf(b.High),
			Low:            zf(b.Low),
			Close:          zf(b.Close),
			TurnoverAmount: zf(b.TurnoverAmount),
			TurnoverVolume: zf(b.TurnoverVolume),
		})
	}
	return rows, nil
}

type gatewaySummary struct {
	Date         string   `json:"date"`
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	Close        *float64 `json:"close"`
	ChangePct    *float64 `json:"change_pct"`
	BuyCount     *float64 `json:"buy_count"`
	SellCount    *float64 `json:"sell_count"`
	BuyAmount    *float64 `json:"buy_amount"`
	SellAmount   *float64 `json:"sell_amount"`
	NetAmount    *float64 `json:"net_amount"`
	NetRatio     *float64 `json:"net_ratio"`
	TurnoverRate *float64 `json:"turnover_rate"`
	MarketCap    *float64 `json:"market_cap"`
	Reason       string   `json:"reason"`
}

// DisclosureSummary returns the per-symbol disclosure table for one day.
func (g *GatewayMarketSource) DisclosureSummary(ctx context.Context, date string) ([]models.SummaryRow, error) {
	var raw []gatewaySummary
	err := g.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         g.baseURL + "/disclosure/summary",
		QueryParams: map[string][]string{"date": {date}},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("gateway disclosure summary %s: %w", date, err)
	}

	rows := make([]models.SummaryRow, 0, len(raw))
	for _, r := range raw {
		ds := r.Date
		if canon, ok := util.NormalizeDate(ds); ok {
			ds = canon
		}
		rows = append(rows, models.SummaryRow{
			Date:         ds,
			Symbol:       util.PadSymbol(r.Symbol),
			Name:         r.Name,
			Close:        zf(r.Close),
			ChangePct:    zf(r.ChangePct),
			BuyCount:     zf(r.BuyCount),
			SellCount:    zf(r.SellCount),
			BuyAmount:    zf(r.BuyAmount),
			SellAmount:   zf(r.SellAmount),
			NetAmount:    zf(r.NetAmount),
			NetRatio:     zf(r.NetRatio),
			TurnoverRate: zf(r.TurnoverRate),
			MarketCap:    zf(r.MarketCap),
			Reason:       r.Reason,
		})
	}
	return rows, nil
}

type gatewayBranch struct {
	Branch string   `json:"branch"`
	Amount *float64 `json:"amount"`
}

// BranchDetail returns branch rows for one symbol, date and trade side.
func (g *GatewayMarketSource) BranchDetail(ctx context.Context, symbol, date string, side models.TradeSide) ([]models.BranchRow, error) {
	var raw []gatewayBranch
	err := g.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    g.baseURL + "/disclosure/branches",
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"date":   {date},
			"side":   {string(side)},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("gateway branch detail %s/%s: %w", symbol, date, err)
	}

	rows := make([]models.BranchRow, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, models.BranchRow{Branch: r.Branch, Amount: zf(r.Amount)})
	}
	return rows, nil
}

// DisclosureDates returns every date on which symbol appeared on the list.
func (g *GatewayMarketSource) DisclosureDates(ctx context.Context, symbol string) ([]string, error) {
	var dates []string
	err := g.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         g.baseURL + "/disclosure/dates",
		QueryParams: map[string][]string{"symbol": {symbol}},
	}, &dates)
	if err != nil {
		return nil, fmt.Errorf("gateway disclosure dates %s: %w", symbol, err)
	}
	return dates, nil
}
