package rules

import (
	"context"
	"testing"
	"time"

	"FundFlow/internal/domain/models"
)

func TestBelowMA5Triggers(t *testing.T) {
	w := models.Window{
		bar(15, 9), bar(14, 9.5), bar(13, 11), bar(12, 11), bar(11, 11), bar(10, 11), bar(9, 11),
	}
	w[0].Name = "Test Co"
	w[0].ChangePct = -5
	w[0].Cost90Low = 5

	sig := NewBelowMA5().Check(context.Background(), w)
	if !sig.Triggered {
		t.Fatalf("expected trigger")
	}
	if sig.ID != "price_below_ma5_2days" || sig.Level != models.LevelSell {
		t.Fatalf("unexpected signal %+v", sig)
	}
}

func TestBelowMA5SuppressedOnLimitUp(t *testing.T) {
	w := models.Window{
		bar(15, 9), bar(14, 9.5), bar(13, 11), bar(12, 11), bar(11, 11), bar(10, 11), bar(9, 11),
	}
	w[0].Name = "Test Co"
	w[0].ChangePct = 9.6
	w[0].Cost90Low = 5

	if sig := NewBelowMA5().Check(context.Background(), w); sig.Triggered {
		t.Fatalf("limit-up day must be suppressed")
	}
}

func TestBelowMA5SuppressedUnderCostBand(t *testing.T) {
	w := models.Window{
		bar(15, 9), bar(14, 9.5), bar(13, 11), bar(12, 11), bar(11, 11), bar(10, 11), bar(9, 11),
	}
	w[0].Name = "Test Co"
	w[0].ChangePct = -5
	w[0].Cost90Low = 9.5 // close already under the band floor

	if sig := NewBelowMA5().Check(context.Background(), w); sig.Triggered {
		t.Fatalf("close under the 90%% band floor must be suppressed")
	}
}

func TestMA5FallbackAnnotatesRow(t *testing.T) {
	w := models.Window{bar(15, 10), bar(14, 11), bar(13, 12), bar(12, 13), bar(11, 14)}
	ma, ok := ma5At(w, 0)
	if !ok {
		t.Fatalf("expected fallback computation")
	}
	if ma != 12 {
		t.Fatalf("ma5 = %v, want 12", ma)
	}
	if w[0].MA5 != 12 {
		t.Fatalf("fallback must be written back onto the row")
	}
}

func TestOversold(t *testing.T) {
	w := make(models.Window, 250)
	for i := range w {
		w[i] = bar(1, 10)
	}
	w[0].Cost90High = 9

	sig := NewOversold().Check(context.Background(), w)
	if !sig.Triggered || sig.ID != "oversold" {
		t.Fatalf("expected oversold trigger, got %+v", sig)
	}

	if sig := NewOversold().Check(context.Background(), w[:249]); sig.Triggered {
		t.Fatalf("under 250 rows must stay untriggered")
	}

	w[0].Cost90High = 11
	if sig := NewOversold().Check(context.Background(), w); sig.Triggered {
		t.Fatalf("band above MA250 must stay untriggered")
	}
}

func TestCostSurge(t *testing.T) {
	w := models.Window{bar(10, 30), bar(9, 30)}
	w[0].AvgCost = 12
	w[0].Concentration90 = 0.3
	w[1].AvgCost = 10

	sig := NewCostSurge().Check(context.Background(), w)
	if !sig.Triggered || sig.Mark != models.MarkYellowDot {
		t.Fatalf("expected yellow surge warning, got %+v", sig)
	}

	// Tight concentration keeps it quiet.
	w[0].Concentration90 = 0.1
	if sig := NewCostSurge().Check(context.Background(), w); sig.Triggered {
		t.Fatalf("tight concentration must not trigger")
	}
}

func TestBandwidthSwingStateSuppression(t *testing.T) {
	r := NewBandwidthSwing()

	drop := models.Window{bar(10, 30), bar(9, 30)}
	drop[0].BBW, drop[0].BBWDrop, drop[0].BBWRise = 0.3, 20, 0
	drop[0].BBWPeakDate = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	if sig := r.Check(context.Background(), drop); !sig.Triggered || sig.ID != "bbw_drop_over_15" {
		t.Fatalf("expected drop trigger, got %+v", sig)
	}

	// A rise whose valley predates the recorded drop is an echo, not news.
	rise := models.Window{bar(12, 30), bar(11, 30)}
	rise[0].BBW, rise[0].BBWDrop, rise[0].BBWRise = 0.1, 0, 20
	rise[0].BBWValleyDate = time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	if sig := r.Check(context.Background(), rise); sig.Triggered {
		t.Fatalf("stale valley must be suppressed")
	}

	rise[0].BBWValleyDate = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	if sig := r.Check(context.Background(), rise); !sig.Triggered || sig.ID != "bbw_rise_over_15" {
		t.Fatalf("fresh valley must trigger, got %+v", sig)
	}
}
