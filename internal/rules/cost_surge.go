package rules

import (
	"context"

	"FundFlow/internal/domain/models"
)

// CostSurge warns when the crowd's average holding cost jumps day over day
// while the 90% concentration stays wide, a distribution pattern.
type CostSurge struct {
	CostThreshold          float64
	ConcentrationThreshold float64
}

func NewCostSurge() *CostSurge {
	return &CostSurge{CostThreshold: 10, ConcentrationThreshold: 0.2}
}

func (r *CostSurge) Priority() int       { return 90 }
func (r *CostSurge) Description() string { return "chips dispersing\ncost surging" }

func (r *CostSurge) Check(ctx context.Context, window models.Window) models.Signal {
	if len(window) < 2 {
		return models.Untriggered()
	}
	curr, prev := window[0], window[1]
	if !models.HasValues(curr.AvgCost, curr.Concentration90, prev.AvgCost) {
		return models.Untriggered()
	}
	if prev.AvgCost == 0 {
		return models.Untriggered()
	}

	costChange := (curr.AvgCost - prev.AvgCost) / prev.AvgCost * 100
	if costChange <= r.CostThreshold || curr.Concentration90 <= r.ConcentrationThreshold {
		return models.Untriggered()
	}

	return models.Signal{
		ID:          "cost_up_10_and_90c_over_0.2",
		Triggered:   true,
		Level:       models.LevelBearish,
		Mark:        models.MarkYellowDot,
		Description: "chips dispersing\ncost surging",
		Change:      models.FormatChange(curr.ChangePct),
		Score:       0.7,
	}
}
