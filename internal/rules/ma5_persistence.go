package rules

import (
	"context"
	"fmt"

	"FundFlow/internal/domain/models"
)

// ma5At returns the 5-day close average for the row at offset i, preferring
// a precomputed MA5 column. Computed values are written back onto the row
// so later rules see them.
func ma5At(window models.Window, i int) (float64, bool) {
	if models.HasValues(window[i].MA5) {
		return window[i].MA5, true
	}
	if i+5 > len(window) {
		return 0, false
	}
	sum := 0.0
	for j := i; j < i+5; j++ {
		if !models.HasValues(window[j].Close) {
			return 0, false
		}
		sum += window[j].Close
	}
	ma := sum / 5
	window[i].MA5 = ma
	return ma, true
}

// BelowMA5 fires when the close held the 5-day line two days ago and has
// now spent two consecutive sessions under it. Limit-up days and prices
// already under the 90% cost band floor are suppressed.
type BelowMA5 struct{}

func NewBelowMA5() *BelowMA5 { return &BelowMA5{} }

func (r *BelowMA5) Priority() int       { return 88 }
func (r *BelowMA5) Description() string { return "price below MA5" }

func (r *BelowMA5) Check(ctx context.Context, window models.Window) models.Signal {
	if len(window) < 5 {
		return models.Untriggered()
	}
	curr, prev, prev2 := window[0], window[1], window[2]
	if !models.HasValues(curr.Close, curr.ChangePct, curr.Cost90Low, prev.Close, prev2.Close) {
		return models.Untriggered()
	}
	if curr.Name == "" {
		return models.Untriggered()
	}

	board := models.ClassifyBoard(curr.Symbol, curr.Name)
	if curr.ChangePct >= board.LimitThreshold() {
		return models.Untriggered()
	}

	currMA5, ok := ma5At(window, 0)
	if !ok {
		return models.Untriggered()
	}
	prevMA5, ok := ma5At(window, 1)
	if !ok {
		return models.Untriggered()
	}
	prev2MA5, ok := ma5At(window, 2)
	if !ok {
		return models.Untriggered()
	}

	if !(prev2.Close >= prev2MA5 && prev.Close < prevMA5 && curr.Close < currMA5) {
		return models.Untriggered()
	}
	if curr.Close < curr.Cost90Low {
		return models.Untriggered()
	}

	deviation := (currMA5 - curr.Close) / currMA5 * 100
	return models.Signal{
		ID:          "price_below_ma5_2days",
		Triggered:   true,
		Level:       models.LevelSell,
		Mark:        models.MarkGreenDot,
		Description: fmt.Sprintf("losing the 5-day line\ndeviation %.1f%%", deviation),
		Change:      models.FormatChange(curr.ChangePct),
		Score:       0.85,
	}
}

// AboveMA5 is the mirror case: the close reclaimed the 5-day line and held
// it for two sessions. Suppressed past the 90% cost band ceiling.
type AboveMA5 struct{}

func NewAboveMA5() *AboveMA5 { return &AboveMA5{} }

func (r *AboveMA5) Priority() int       { return 88 }
func (r *AboveMA5) Description() string { return "price above MA5" }

func (r *AboveMA5) Check(ctx context.Context, window models.Window) models.Signal {
	if len(window) < 5 {
		return models.Untriggered()
	}
	curr, prev, prev2 := window[0], window[1], window[2]
	if !models.HasValues(curr.Close, curr.ChangePct, curr.Cost90High, prev.Close, prev2.Close) {
		return models.Untriggered()
	}
	if curr.Name == "" {
		return models.Untriggered()
	}

	board := models.ClassifyBoard(curr.Symbol, curr.Name)
	if curr.ChangePct >= board.LimitThreshold() {
		return models.Untriggered()
	}

	currMA5, ok := ma5At(window, 0)
	if !ok {
		return models.Untriggered()
	}
	prevMA5, ok := ma5At(window, 1)
	if !ok {
		return models.Untriggered()
	}
	prev2MA5, ok := ma5At(window, 2)
	if !ok {
		return models.Untriggered()
	}

	if !(prev2.Close <= prev2MA5 && prev.Close > prevMA5 && curr.Close > currMA5) {
		return models.Untriggered()
	}
	if curr.Close > curr.Cost90High {
		return models.Untriggered()
	}

	deviation := (curr.Close - currMA5) / currMA5 * 100
	return models.Signal{
		ID:          "price_above_ma5_2days",
		Triggered:   true,
		Level:       models.LevelBuy,
		Mark:        models.MarkRedDot,
		Description: fmt.Sprintf("holding the 5-day line\ndeviation %.1f%%", deviation),
		Change:      models.FormatChange(curr.ChangePct),
		Score:       0.85,
	}
}
