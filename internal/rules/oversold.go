package rules

import (
	"context"
	"fmt"

	"FundFlow/internal/domain/models"
)

const oversoldLookback = 250

// Oversold triggers when the top of the 90% cost band has fallen below the
// yearly moving average of the close. Needs the full history, not a short
// window; anything under 250 rows stays untriggered.
type Oversold struct{}

func NewOversold() *Oversold { return &Oversold{} }

func (r *Oversold) Priority() int       { return 95 }
func (r *Oversold) Description() string { return "oversold" }

func (r *Oversold) Check(ctx context.Context, window models.Window) models.Signal {
	if len(window) < oversoldLookback {
		return models.Untriggered()
	}

	sum := 0.0
	for i := 0; i < oversoldLookback; i++ {
		c := window[i].Close
		if !models.HasValues(c) {
			return models.Untriggered()
		}
		sum += c
	}
	ma250 := sum / oversoldLookback

	curr := window[0]
	if !models.HasValues(curr.Cost90High) {
		return models.Untriggered()
	}
	if curr.Cost90High >= ma250 {
		return models.Untriggered()
	}

	return models.Signal{
		ID:          "oversold",
		Triggered:   true,
		Level:       models.LevelBuy,
		Mark:        models.MarkRedDot,
		Description: fmt.Sprintf("oversold: 90%% band %.2f < MA250(%.2f)", curr.Cost90High, ma250),
		Score:       0.8,
	}
}
