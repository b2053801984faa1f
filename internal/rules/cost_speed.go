package rules

import (
	"context"
	"fmt"

	"FundFlow/internal/domain/models"
)

// CostSpeed compares how fast the average cost moves relative to the close.
// Checks run in a fixed order and the first satisfied one wins; order, not
// magnitude, decides.
type CostSpeed struct{}

func NewCostSpeed() *CostSpeed { return &CostSpeed{} }

func (r *CostSpeed) Priority() int       { return 85 }
func (r *CostSpeed) Description() string { return "cost change\noutpacing price" }

func (r *CostSpeed) Check(ctx context.Context, window models.Window) models.Signal {
	if len(window) < 2 {
		return models.Untriggered()
	}
	curr, prev := window[0], window[1]
	if !models.HasValues(curr.AvgCost, curr.Close, prev.AvgCost, prev.Close) {
		return models.Untriggered()
	}
	if prev.AvgCost == 0 || prev.Close == 0 {
		return models.Untriggered()
	}

	costRate := (curr.AvgCost - prev.AvgCost) / prev.AvgCost * 100
	priceRate := (curr.Close - prev.Close) / prev.Close * 100

	if costRate > 20 {
		return models.Signal{
			ID:          "cost_up_20_per",
			Triggered:   true,
			Level:       models.LevelSell,
			Mark:        models.MarkGreenDot,
			Description: "cost up over 20%\nheavy unloading",
			Change:      models.FormatChange(curr.ChangePct),
			Score:       0.85,
		}
	}

	currRatio := curr.AvgCost / curr.Close
	prevRatio := prev.AvgCost / prev.Close
	ratioChange := (currRatio - prevRatio) / prevRatio * 100

	if currRatio > 1 && ratioChange > 5 {
		return models.Signal{
			ID:          "cost_price_ratio_up_5_per",
			Triggered:   true,
			Level:       models.LevelSell,
			Mark:        models.MarkGreenDot,
			Description: fmt.Sprintf("cost/price %.2f%%\nheavy unloading", ratioChange),
			Change:      models.FormatChange(curr.ChangePct),
			Score:       0.8,
		}
	}

	if currRatio < 1 && ratioChange < -5 {
		return models.Signal{
			ID:          "cost_price_ratio_down_5_per",
			Triggered:   true,
			Level:       models.LevelBuy,
			Mark:        models.MarkRedDot,
			Description: fmt.Sprintf("cost/price %.2f%%\nheavy accumulation", ratioChange),
			Change:      models.FormatChange(curr.ChangePct),
			Score:       0.8,
		}
	}

	if costRate > priceRate && costRate > 0 {
		return models.Signal{
			ID:          "cost_up_speed_over_price",
			Triggered:   true,
			Level:       models.LevelBearish,
			Mark:        models.MarkYellowDot,
			Description: "cost rising faster than price\ndistribution",
			Change:      models.FormatChange(curr.ChangePct),
			Score:       0.65,
		}
	}

	if costRate < priceRate && costRate < 0 {
		return models.Signal{
			ID:          "cost_down_speed_over_price",
			Triggered:   true,
			Level:       models.LevelBearish,
			Mark:        models.MarkOrangeDot,
			Description: "cost falling faster than price\nretail capitulation",
			Change:      models.FormatChange(curr.ChangePct),
			Score:       0.6,
		}
	}

	return models.Untriggered()
}
