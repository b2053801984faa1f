package rules

import (
	"context"
	"fmt"
	"time"

	"FundFlow/internal/domain/models"
)

type swingEvent struct {
	at      time.Time
	extreme time.Time
}

// BandwidthSwing flags rapid Bollinger bandwidth contraction or expansion.
// It is stateful: the last emitted drop/rise events suppress repeats until
// the opposing extreme moves past them. State belongs to one pipeline and
// therefore one symbol; instances must not be shared across symbols.
type BandwidthSwing struct {
	lastDrop swingEvent
	lastRise swingEvent
}

func NewBandwidthSwing() *BandwidthSwing { return &BandwidthSwing{} }

func (r *BandwidthSwing) Priority() int       { return 95 }
func (r *BandwidthSwing) Description() string { return "bandwidth swing" }

func (r *BandwidthSwing) Check(ctx context.Context, window models.Window) models.Signal {
	if len(window) < 2 {
		return models.Untriggered()
	}
	curr := window[0]
	if !models.HasValues(curr.BBW, curr.BBWDrop, curr.BBWRise) {
		return models.Untriggered()
	}

	if curr.BBWDrop >= 15 {
		if curr.BBWPeakDate.IsZero() || (!r.lastRise.at.IsZero() && r.lastRise.at.After(curr.BBWPeakDate)) {
			return models.Untriggered()
		}
		r.lastDrop = swingEvent{at: curr.Date, extreme: curr.BBWPeakDate}
		return models.Signal{
			ID:          "bbw_drop_over_15",
			Triggered:   true,
			Level:       models.LevelSell,
			Mark:        models.MarkGreenDot,
			Description: fmt.Sprintf("BBW top down %.1f%%\nvolatility contracting", curr.BBWDrop),
			Change:      models.FormatChange(curr.ChangePct),
			Score:       0.8,
		}
	}

	if curr.BBWRise >= 15 && curr.BBW < 0.2 {
		if curr.BBWValleyDate.IsZero() || (!r.lastDrop.at.IsZero() && r.lastDrop.at.After(curr.BBWValleyDate)) {
			return models.Untriggered()
		}
		r.lastRise = swingEvent{at: curr.Date, extreme: curr.BBWValleyDate}
		return models.Signal{
			ID:          "bbw_rise_over_15",
			Triggered:   true,
			Level:       models.LevelBuy,
			Mark:        models.MarkRedDot,
			Description: fmt.Sprintf("BBW bottom up %.1f%%\nvolatility expanding", curr.BBWRise),
			Change:      models.FormatChange(curr.ChangePct),
			Score:       0.7,
		}
	}

	return models.Untriggered()
}
