package rules

import (
	"context"

	"FundFlow/internal/domain/models"
)

// MA5Deviation never triggers. It annotates the current row with how far
// today's high and low stray from the 5-day line, for downstream display.
type MA5Deviation struct{}

func NewMA5Deviation() *MA5Deviation { return &MA5Deviation{} }

func (r *MA5Deviation) Priority() int       { return 75 }
func (r *MA5Deviation) Description() string { return "MA5 deviation" }

func (r *MA5Deviation) Check(ctx context.Context, window models.Window) models.Signal {
	if len(window) < 5 {
		return models.Untriggered()
	}
	curr := window[0]
	if !models.HasValues(curr.High, curr.Low, curr.Close) {
		return models.Untriggered()
	}

	sum := 0.0
	for i := 0; i < 5; i++ {
		if !models.HasValues(window[i].Close) {
			return models.Untriggered()
		}
		sum += window[i].Close
	}
	ma5 := sum / 5

	up, down := 0.0, 0.0
	if curr.High > ma5 {
		up = (curr.High - ma5) / ma5 * 100
	}
	if curr.Low < ma5 {
		down = (curr.Low - ma5) / ma5 * 100
	}
	window[0].MA5UpDev = up
	window[0].MA5DownDev = down

	return models.Untriggered()
}
