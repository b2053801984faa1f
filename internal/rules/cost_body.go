package rules

import (
	"context"
	"math"

	"FundFlow/internal/domain/models"
)

// CostBodyPierce classifies the cost line piercing today's open/close body:
// lower half reads bullish, upper half bearish.
type CostBodyPierce struct{}

func NewCostBodyPierce() *CostBodyPierce { return &CostBodyPierce{} }

func (r *CostBodyPierce) Priority() int       { return 82 }
func (r *CostBodyPierce) Description() string { return "cost through price body" }

func (r *CostBodyPierce) Check(ctx context.Context, window models.Window) models.Signal {
	if len(window) < 2 {
		return models.Untriggered()
	}
	curr, prev := window[0], window[1]
	if !models.HasValues(curr.AvgCost, curr.Open, curr.Close) {
		return models.Untriggered()
	}
	if !models.HasValues(prev.Close) || prev.Close == 0 {
		return models.Untriggered()
	}

	bodyLow := math.Min(curr.Open, curr.Close)
	bodyHigh := math.Max(curr.Open, curr.Close)
	midPoint := (bodyLow + bodyHigh) / 2

	if bodyLow <= curr.AvgCost && curr.AvgCost <= midPoint {
		return models.Signal{
			ID:          "cost_cross_down_price_body",
			Triggered:   true,
			Level:       models.LevelBullish,
			Mark:        models.MarkOrangeDot,
			Description: "cost in lower body\ngolden pierce",
			Change:      models.FormatChange(curr.ChangePct),
			Score:       0.75,
		}
	}

	if midPoint < curr.AvgCost && curr.AvgCost <= bodyHigh {
		return models.Signal{
			ID:          "cost_cross_up_price_body",
			Triggered:   true,
			Level:       models.LevelBearish,
			Mark:        models.MarkYellowDot,
			Description: "cost in upper body\ndeath pierce",
			Change:      models.FormatChange(curr.ChangePct),
			Score:       0.7,
		}
	}

	return models.Untriggered()
}
