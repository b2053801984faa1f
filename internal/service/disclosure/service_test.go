package disclosure

import (
	"context"
	"errors"
	"testing"
	"time"

	"FundFlow/internal/domain/models"
	"FundFlow/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordCacheHit(string)         {}
func (nopMetrics) RecordCacheMiss(string)        {}
func (nopMetrics) RecordFetch(string)            {}
func (nopMetrics) RecordFetchError(string)       {}
func (nopMetrics) RecordRuleTrigger(string)      {}
func (nopMetrics) RecordLatency(string, float64) {}

type stubSource struct {
	summaries    map[string][]models.SummaryRow
	summaryErr   error
	summaryCalls int

	branches map[string][]models.BranchRow
	dates    []string
	daily    []models.OHLCRow
}

func (s *stubSource) History(ctx context.Context, symbol string, limit int) ([]models.DataRow, error) {
	return nil, nil
}

func (s *stubSource) DailyHistory(ctx context.Context, symbol, start, end string) ([]models.OHLCRow, error) {
	return s.daily, nil
}

func (s *stubSource) DisclosureSummary(ctx context.Context, date string) ([]models.SummaryRow, error) {
	s.summaryCalls++
	if s.summaryErr != nil {
		return nil, s.summaryErr
	}
	return s.summaries[date], nil
}

func (s *stubSource) BranchDetail(ctx context.Context, symbol, date string, side models.TradeSide) ([]models.BranchRow, error) {
	return s.branches[symbol+"/"+date+"/"+string(side)], nil
}

func (s *stubSource) DisclosureDates(ctx context.Context, symbol string) ([]string, error) {
	return s.dates, nil
}

func newTestService(t *testing.T, src *stubSource) *Service {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewService(src, l, nopMetrics{}, Options{})
}

func TestClassify(t *testing.T) {
	cases := []struct {
		branch string
		want   models.Actor
	}{
		{"机构专用", models.ActorInstitution},
		{"沪股通专用", models.ActorInstitution},
		{"qfii席位", models.ActorInstitution},
		{"某某基金管理有限公司", models.ActorInstitution},
		{"拉萨团结路第二证券营业部", models.ActorRetail},
		{"华泰证券深圳益田路证券营业部", models.ActorHotMoney},
		{"", models.ActorHotMoney},
	}
	for _, tc := range cases {
		if got := Classify(tc.branch); got != tc.want {
			t.Fatalf("Classify(%q) = %q, want %q", tc.branch, got, tc.want)
		}
	}
}

func TestSimplifyBranchName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"中信证券股份有限公司北京总部证券营业部", "中信北京总部"},
		{"华泰证券股份有限公司深圳益田路荣超商务中心证券营业部", "圳益田路荣超"},
		{"机构专用", "机构专用"},
	}
	for _, tc := range cases {
		if got := SimplifyBranchName(tc.in); got != tc.want {
			t.Fatalf("SimplifyBranchName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAggregateInstitution(t *testing.T) {
	src := &stubSource{
		summaries: map[string][]models.SummaryRow{
			"20240105": {{
				Date: "20240105", Symbol: "600000", Name: "Test Co",
				ChangePct: 2.5, BuyCount: 1,
				BuyAmount: 3000, SellAmount: 1000, NetAmount: 1000,
			}},
		},
		branches: map[string][]models.BranchRow{
			"600000/20240105/buy": {
				{Branch: "机构专用", Amount: 500},
				{Branch: "某某营业部", Amount: 200},
			},
			"600000/20240105/sell": {
				{Branch: "拉萨团结路第二营业部", Amount: 300},
			},
		},
	}
	svc := newTestService(t, src)

	rec := svc.Aggregate(context.Background(), "600000", "20240105")
	if rec == nil {
		t.Fatalf("expected record")
	}
	if rec.SignalType != models.SignalInstitution {
		t.Fatalf("signal type = %q", rec.SignalType)
	}
	if rec.Reason != "Institution Buy" {
		t.Fatalf("reason = %q", rec.Reason)
	}
	// Statistical net plus the branch-level institution net.
	if rec.NetAmount != 1500 {
		t.Fatalf("net = %v, want 1500", rec.NetAmount)
	}
	if rec.Retail.NetAmount != -300 {
		t.Fatalf("retail net = %v, want -300", rec.Retail.NetAmount)
	}
	if rec.ChangePct != 2.5 {
		t.Fatalf("change pct = %v", rec.ChangePct)
	}
	// The merged institution bucket rates against its own volume.
	mergedVol := (3000 + 500 + 1000) * 2.0
	want := 1500 / mergedVol * 100
	if diff := rec.NetRatio - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("net ratio = %v, want %v", rec.NetRatio, want)
	}
}

func TestAggregateBranchFallback(t *testing.T) {
	src := &stubSource{
		branches: map[string][]models.BranchRow{
			"600000/20240105/buy":  {{Branch: "某某营业部", Amount: 200}},
			"600000/20240105/sell": {{Branch: "拉萨团结路营业部", Amount: 50}},
		},
	}
	svc := newTestService(t, src)

	rec := svc.Aggregate(context.Background(), "600000", "20240105")
	if rec == nil {
		t.Fatalf("expected record")
	}
	if rec.SignalType != models.SignalBranchAggregate {
		t.Fatalf("signal type = %q", rec.SignalType)
	}
	// Retail selling counts as contrary, so it adds to the branch net.
	if rec.NetAmount != 250 {
		t.Fatalf("net = %v, want 250", rec.NetAmount)
	}
	if rec.Reason != "Branch Buy" {
		t.Fatalf("reason = %q", rec.Reason)
	}
}

func TestAggregateBalancedFlowsNil(t *testing.T) {
	src := &stubSource{
		branches: map[string][]models.BranchRow{
			"600000/20240105/buy": {
				{Branch: "机构专用", Amount: 300},
				{Branch: "某某营业部", Amount: 100},
			},
			"600000/20240105/sell": {
				{Branch: "机构专用", Amount: 300},
				{Branch: "某某营业部", Amount: 100},
			},
		},
	}
	svc := newTestService(t, src)

	// Every bucket nets to zero, so neither evidence type applies.
	if rec := svc.Aggregate(context.Background(), "600000", "20240105"); rec != nil {
		t.Fatalf("balanced flows must yield nil, got %+v", rec)
	}
}

func TestAggregateNotOnList(t *testing.T) {
	svc := newTestService(t, &stubSource{})
	if rec := svc.Aggregate(context.Background(), "600000", "20240105"); rec != nil {
		t.Fatalf("expected nil, got %+v", rec)
	}
}

func TestDaySummaryFetchedOnce(t *testing.T) {
	src := &stubSource{
		summaries: map[string][]models.SummaryRow{
			"20240105": {{Date: "20240105", Symbol: "600000", NetAmount: 100}},
		},
	}
	svc := newTestService(t, src)

	svc.Aggregate(context.Background(), "600000", "20240105")
	svc.Aggregate(context.Background(), "000001", "20240105")
	if src.summaryCalls != 1 {
		t.Fatalf("day table must be fetched once, got %d", src.summaryCalls)
	}
}

func TestDaySummaryFailureNotCached(t *testing.T) {
	src := &stubSource{summaryErr: errors.New("upstream down")}
	svc := newTestService(t, src)

	svc.Aggregate(context.Background(), "600000", "20240105")
	svc.Aggregate(context.Background(), "600000", "20240105")
	if src.summaryCalls != 2 {
		t.Fatalf("failed fetches must retry, got %d calls", src.summaryCalls)
	}
}

func TestEstimatePriceFallbacks(t *testing.T) {
	// Turnover-derived price wins.
	row := models.OHLCRow{TurnoverAmount: 10000, TurnoverVolume: 1000, Open: 1, High: 1, Low: 1, Close: 1}
	if p := estimatePrice(row); p != 10 {
		t.Fatalf("price = %v, want 10", p)
	}
	// Out-of-range turnover price falls back to the OHLC mean.
	row = models.OHLCRow{TurnoverAmount: 2e6, TurnoverVolume: 1000, Open: 8, High: 12, Low: 8, Close: 12}
	if p := estimatePrice(row); p != 10 {
		t.Fatalf("price = %v, want OHLC mean 10", p)
	}
	// Bare close as the last resort when the mean is noise too.
	row = models.OHLCRow{Open: 2000, High: 2000, Low: 0, Close: 7}
	if p := estimatePrice(row); p != 7 {
		t.Fatalf("price = %v, want 7", p)
	}
	// Nothing usable.
	row = models.OHLCRow{Close: 4000}
	if p := estimatePrice(row); p != 0 {
		t.Fatalf("price = %v, want 0", p)
	}
}

func TestFundFlowSeries(t *testing.T) {
	day1 := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	src := &stubSource{
		dates: []string{"20240105", "20240103", "20240103", "20231201"},
		branches: map[string][]models.BranchRow{
			"600000/20240103/buy":  {{Branch: "机构专用", Amount: 1000}},
			"600000/20240105/sell": {{Branch: "某某营业部", Amount: 400}},
		},
		daily: []models.OHLCRow{
			{Date: day1, TurnoverAmount: 10000, TurnoverVolume: 1000},
		},
	}
	svc := newTestService(t, src)

	pts := svc.FundFlowSeries(context.Background(), "600000", "20240101", "20240131")
	if len(pts) != 2 {
		t.Fatalf("expected 2 deduped in-range points, got %d", len(pts))
	}
	if !pts[0].Date.Equal(day1) {
		t.Fatalf("series must be oldest first")
	}
	if pts[0].InstitutionNet != 1000 {
		t.Fatalf("institution net = %v", pts[0].InstitutionNet)
	}
	if pts[0].InstitutionShares != 100 {
		t.Fatalf("shares = %v, want 100 at price 10", pts[0].InstitutionShares)
	}
	// No price estimate for the second day: net survives, shares stay zero.
	if pts[1].HotNet != -400 {
		t.Fatalf("hot net = %v, want -400", pts[1].HotNet)
	}
	if pts[1].HotShares != 0 {
		t.Fatalf("shares without a price must be zero, got %v", pts[1].HotShares)
	}
}

func TestBranchReportEmptyWithoutPrices(t *testing.T) {
	src := &stubSource{
		dates: []string{"20240103"},
		branches: map[string][]models.BranchRow{
			"600000/20240103/buy": {{Branch: "某某营业部", Amount: 100}},
		},
	}
	svc := newTestService(t, src)

	rep := svc.BranchReport(context.Background(), "600000", "20240101", "20240131")
	if len(rep.Institution) != 0 || len(rep.HotMoney) != 0 || len(rep.Retail) != 0 {
		t.Fatalf("report without prices must be empty, got %+v", rep)
	}
}

func TestBranchReportRanking(t *testing.T) {
	day := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	src := &stubSource{
		dates: []string{"20240103"},
		branches: map[string][]models.BranchRow{
			"600000/20240103/buy":  {{Branch: "甲营业部", Amount: 100}},
			"600000/20240103/sell": {{Branch: "乙营业部", Amount: 500}},
		},
		daily: []models.OHLCRow{{Date: day, TurnoverAmount: 10000, TurnoverVolume: 1000}},
	}
	svc := newTestService(t, src)

	rep := svc.BranchReport(context.Background(), "600000", "20240101", "20240131")
	if len(rep.HotMoney) != 2 {
		t.Fatalf("expected 2 hot money branches, got %d", len(rep.HotMoney))
	}
	if rep.HotMoney[0].Branch != "乙营业部" {
		t.Fatalf("largest absolute net must rank first, got %q", rep.HotMoney[0].Branch)
	}
	if rep.HotMoney[0].NetShares != -50 {
		t.Fatalf("net shares = %v, want -50", rep.HotMoney[0].NetShares)
	}
}
