package rules

import (
	"context"
	"math"

	"FundFlow/internal/domain/models"
)

// DeadCross flags a KDJ dead cross that follows a sharp single-day gain
// within the last few sessions. The cross itself is only compared against
// the immediately previous session.
type DeadCross struct {
	NDays int
}

func NewDeadCross() *DeadCross {
	return &DeadCross{NDays: 3}
}

func (r *DeadCross) Priority() int       { return 100 }
func (r *DeadCross) Description() string { return "KDJ dead cross\nrecent surge" }

func (r *DeadCross) Check(ctx context.Context, window models.Window) models.Signal {
	if len(window) < r.NDays+1 {
		return models.Untriggered()
	}

	// Any day in the lookback with a >20% close-over-close gain qualifies.
	surgeChange := math.NaN()
	for i := 0; i < r.NDays; i++ {
		if i >= len(window)-1 {
			continue
		}
		curr, prev := window[i], window[i+1]
		if !models.HasValues(curr.Close, prev.Close) || prev.Close == 0 {
			continue
		}
		if (curr.Close-prev.Close)/prev.Close*100 > 20 {
			surgeChange = curr.ChangePct
			break
		}
	}
	if math.IsNaN(surgeChange) {
		return models.Untriggered()
	}

	curr, prev := window[0], window[1]
	if !models.HasValues(curr.J, curr.K, prev.J, prev.K) {
		return models.Untriggered()
	}
	crossed := (prev.J > prev.K && curr.J <= curr.K) || math.Abs(curr.J-curr.K) < 10
	if !crossed {
		return models.Untriggered()
	}

	return models.Signal{
		ID:          "kdj_dead_cross_over_20_percent",
		Triggered:   true,
		Level:       models.LevelBearish,
		Mark:        models.MarkGreenDot,
		Description: "KDJ dead cross\nrecent surge",
		Change:      models.FormatChange(surgeChange),
		Score:       0.8,
	}
}
