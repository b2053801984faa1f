package rules

import (
	"context"
	"strings"
	"testing"
	"time"

	"FundFlow/internal/domain/models"
)

type stubFlows struct {
	rec   *models.FundFlowRecord
	calls int
}

func (s *stubFlows) Aggregate(ctx context.Context, symbol, date string) *models.FundFlowRecord {
	s.calls++
	return s.rec
}

func bar(day int, close float64) models.DataRow {
	r := models.NewDataRow()
	r.Date = time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)
	r.Symbol = "600000"
	r.Close = close
	return r
}

// deadCrossWindow builds a window where a >20% surge two sessions back is
// followed by a KDJ dead cross on the current session.
func deadCrossWindow() models.Window {
	w := models.Window{bar(10, 30), bar(9, 30), bar(8, 20), bar(7, 20)}
	w[0].K, w[0].J = 50, 40
	w[0].ChangePct = 0
	w[1].K, w[1].J = 40, 50
	w[1].ChangePct = 50
	return w
}

func TestEvaluateEmptyWindow(t *testing.T) {
	p := NewPipeline(&stubFlows{}, nil)
	comp := p.Evaluate(context.Background(), nil)
	if comp.Triggered {
		t.Fatalf("empty window must not trigger")
	}
	if comp.Level != models.LevelNeutral {
		t.Fatalf("expected neutral, got %s", comp.Level)
	}
}

func TestEvaluateDeadCross(t *testing.T) {
	p := NewPipeline(&stubFlows{}, nil)
	comp := p.Evaluate(context.Background(), deadCrossWindow())
	if !comp.Triggered {
		t.Fatalf("expected trigger")
	}
	if comp.Level != models.LevelBearish || comp.Mark != models.MarkGreenDot {
		t.Fatalf("unexpected level/mark %s/%s", comp.Level, comp.Mark)
	}
	if comp.Change != "+50.00" {
		t.Fatalf("change must come from the surge day, got %q", comp.Change)
	}
	if !strings.Contains(comp.Message, "KDJ dead cross") {
		t.Fatalf("unexpected message %q", comp.Message)
	}
}

func TestEvaluateShortWindowUntriggered(t *testing.T) {
	p := NewPipeline(&stubFlows{}, nil)
	w := deadCrossWindow()[:3]
	comp := p.Evaluate(context.Background(), w)
	if comp.Triggered {
		t.Fatalf("three rows cannot satisfy the dead cross lookback")
	}
}

func TestArbitrationPrefersFundSource(t *testing.T) {
	flows := &stubFlows{rec: &models.FundFlowRecord{
		ChangePct:   3,
		Institution: models.BucketFlow{NetRatio: 5},
	}}
	p := NewPipeline(flows, nil)

	comp := p.Evaluate(context.Background(), deadCrossWindow())
	if !comp.Triggered {
		t.Fatalf("expected trigger")
	}
	// Fund source outranks the dead cross for display.
	if comp.Level != models.LevelBuy || comp.Mark != models.MarkRedDot {
		t.Fatalf("display must follow the fund source rule, got %s/%s", comp.Level, comp.Mark)
	}
	// But the message concatenates both, fund source first.
	lines := strings.Split(comp.Message, "\n")
	if !strings.HasPrefix(lines[0], "institution net buy") {
		t.Fatalf("fund source reason must lead: %q", comp.Message)
	}
	if !strings.Contains(comp.Message, "KDJ dead cross") {
		t.Fatalf("dead cross reason must survive arbitration: %q", comp.Message)
	}
}

func TestFundSourceMemoizesResult(t *testing.T) {
	flows := &stubFlows{rec: &models.FundFlowRecord{Institution: models.BucketFlow{NetRatio: 5}}}
	r := NewFundSource(flows)
	w := models.Window{bar(10, 30)}

	first := r.Check(context.Background(), w)
	second := r.Check(context.Background(), w)
	if flows.calls != 1 {
		t.Fatalf("expected one aggregation, got %d", flows.calls)
	}
	if first != second {
		t.Fatalf("memoized result differs")
	}
	if !first.Triggered || first.ID != "fund_source_buy" {
		t.Fatalf("unexpected signal %+v", first)
	}
}

func TestFundSourceMemoizesAbsence(t *testing.T) {
	flows := &stubFlows{}
	r := NewFundSource(flows)
	w := models.Window{bar(10, 30)}

	r.Check(context.Background(), w)
	sig := r.Check(context.Background(), w)
	if flows.calls != 1 {
		t.Fatalf("off-list dates must also be memoized, got %d calls", flows.calls)
	}
	if sig.Triggered {
		t.Fatalf("nil record must stay untriggered")
	}
}

func TestSignalFromFlowPairing(t *testing.T) {
	cases := []struct {
		name              string
		inst, hot, retail float64
		wantID            string
		wantMark          models.SignalMark
	}{
		{"institution vs retail", 5, 1, -3, "fund_source_buy", models.MarkRedDot},
		{"institution vs hot", -5, 2, 0, "fund_source_sell", models.MarkGreenDot},
		{"hot vs retail", 0, 4, 6, "fund_source_sell", models.MarkGreenDot},
		{"hot alone", 0, -2, 0, "fund_source_sell", models.MarkYellowDot},
	}
	for _, tc := range cases {
		rec := &models.FundFlowRecord{
			Institution: models.BucketFlow{NetRatio: tc.inst},
			HotMoney:    models.BucketFlow{NetRatio: tc.hot},
			Retail:      models.BucketFlow{NetRatio: tc.retail},
		}
		sig := signalFromFlow(rec)
		if sig.ID != tc.wantID {
			t.Fatalf("%s: id = %q, want %q", tc.name, sig.ID, tc.wantID)
		}
		if sig.Mark != tc.wantMark {
			t.Fatalf("%s: mark = %q, want %q", tc.name, sig.Mark, tc.wantMark)
		}
	}
}

func TestScanOldestFirst(t *testing.T) {
	p := NewPipeline(&stubFlows{}, nil)
	w := models.Window{bar(14, 10), bar(13, 10), bar(12, 10), bar(11, 10), bar(10, 10)}

	out := p.Scan(context.Background(), w, 3)
	if len(out) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(out))
	}
	if !out[0].Date.Before(out[1].Date) || !out[1].Date.Before(out[2].Date) {
		t.Fatalf("scan must be oldest first: %v %v %v", out[0].Date, out[1].Date, out[2].Date)
	}
	if !out[2].Date.Equal(w[0].Date) {
		t.Fatalf("last step must be the newest row")
	}
}

func TestScanClampsSteps(t *testing.T) {
	p := NewPipeline(&stubFlows{}, nil)
	w := models.Window{bar(10, 10), bar(9, 10)}
	out := p.Scan(context.Background(), w, 10)
	if len(out) != 2 {
		t.Fatalf("steps must clamp to window length, got %d", len(out))
	}
}
