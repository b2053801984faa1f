package rules

import (
	"context"
	"fmt"

	"FundFlow/internal/domain/models"
)

// CostCrossMA detects the cost line crossing a moving average, classified
// by relative slope. Four mutually exclusive cases per period; the first
// matching period wins.
type CostCrossMA struct {
	Periods []int
}

func NewCostCrossMA() *CostCrossMA {
	return &CostCrossMA{Periods: []int{5, 10, 20}}
}

func (r *CostCrossMA) Priority() int       { return 80 }
func (r *CostCrossMA) Description() string { return "cost crossing MA" }

func maForPeriod(row models.DataRow, period int) float64 {
	switch period {
	case 5:
		return row.MA5
	case 10:
		return row.MA10
	default:
		return row.MA20
	}
}

func (r *CostCrossMA) Check(ctx context.Context, window models.Window) models.Signal {
	if len(window) < 2 {
		return models.Untriggered()
	}
	curr, prev := window[0], window[1]
	if !models.HasValues(curr.AvgCost, prev.AvgCost) {
		return models.Untriggered()
	}

	costSlope := curr.AvgCost - prev.AvgCost

	for _, period := range r.Periods {
		currMA := maForPeriod(curr, period)
		prevMA := maForPeriod(prev, period)
		if !models.HasValues(currMA, prevMA) {
			continue
		}
		maSlope := currMA - prevMA

		// Cost falling faster and dropping below the MA: weak hands selling out.
		if costSlope > maSlope && prev.AvgCost > prevMA && curr.AvgCost <= currMA {
			return models.Signal{
				ID:          fmt.Sprintf("cost_cross_down_ma%02d", period),
				Triggered:   true,
				Level:       models.LevelBuy,
				Mark:        models.MarkRedDot,
				Description: fmt.Sprintf("cost below MA%02d\nretail capitulation", period),
				Change:      models.FormatChange(curr.ChangePct),
				Score:       0.7,
			}
		}

		// MA overtaking the cost line from below: markup phase.
		if costSlope < maSlope && prevMA < prev.AvgCost && currMA >= curr.AvgCost {
			return models.Signal{
				ID:          fmt.Sprintf("ma%02d_cross_up_cost", period),
				Triggered:   true,
				Level:       models.LevelBuy,
				Mark:        models.MarkRedDot,
				Description: fmt.Sprintf("MA%02d above cost\nmarkup", period),
				Change:      models.FormatChange(curr.ChangePct),
				Score:       0.8,
			}
		}

		// MA falling through the cost line: late buyers trapped.
		if costSlope < maSlope && prevMA > prev.AvgCost && currMA <= curr.AvgCost {
			return models.Signal{
				ID:          fmt.Sprintf("ma%02d_cross_down_cost", period),
				Triggered:   true,
				Level:       models.LevelSell,
				Mark:        models.MarkGreenDot,
				Description: fmt.Sprintf("MA%02d below cost\nretail trapped", period),
				Change:      models.FormatChange(curr.ChangePct),
				Score:       0.6,
			}
		}

		// Cost rising up through the MA: distribution.
		if costSlope > maSlope && prev.AvgCost < prevMA && curr.AvgCost >= currMA {
			return models.Signal{
				ID:          fmt.Sprintf("cost_cross_up_ma%02d", period),
				Triggered:   true,
				Level:       models.LevelSell,
				Mark:        models.MarkGreenDot,
				Description: fmt.Sprintf("cost above MA%02d\ndistribution", period),
				Change:      models.FormatChange(curr.ChangePct),
				Score:       0.7,
			}
		}
	}

	return models.Untriggered()
}
