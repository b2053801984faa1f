package rules

import (
	"context"
	"strings"

	"FundFlow/internal/domain/models"
	"FundFlow/internal/domain/repository"
)

// Pipeline evaluates a fixed set of rules against a window and arbitrates
// the results. Every rule runs on every step. The displayed level, mark and
// score come from the triggered rule with the highest declared priority, but
// the composite message joins every triggered description in registration
// order. The mixed ordering is intentional and load-bearing for consumers.
//
// A pipeline owns rule state (the bandwidth swing events) and must serve a
// single symbol.
type Pipeline struct {
	rules   []Rule
	metrics repository.Metrics
}

// NewPipeline builds the standard rule set. flows feeds the fund source
// rule; metrics may be nil.
func NewPipeline(flows FlowAggregator, metrics repository.Metrics) *Pipeline {
	return &Pipeline{
		rules: []Rule{
			NewFundSource(flows),
			NewDeadCross(),
			NewBandwidthSwing(),
			NewOversold(),
			NewCostSurge(),
			NewBelowMA5(),
			NewAboveMA5(),
			NewCostSpeed(),
			NewCostBodyPierce(),
			NewCostCrossMA(),
			NewMA5Deviation(),
		},
		metrics: metrics,
	}
}

// Evaluate runs every rule against the window and arbitrates one composite.
func (p *Pipeline) Evaluate(ctx context.Context, window models.Window) models.Composite {
	comp := models.Composite{Level: models.LevelNeutral}
	if len(window) == 0 {
		return comp
	}
	comp.Symbol = window[0].Symbol
	comp.Date = window[0].Date

	var (
		best      models.Signal
		bestPrio  int
		reasons   []string
		triggered bool
	)
	for _, rule := range p.rules {
		sig := rule.Check(ctx, window)
		if !sig.Triggered {
			continue
		}
		if p.metrics != nil {
			p.metrics.RecordRuleTrigger(sig.ID)
		}
		reasons = append(reasons, sig.Description)
		if !triggered || rule.Priority() > bestPrio {
			best = sig
			bestPrio = rule.Priority()
		}
		triggered = true
	}

	if !triggered {
		return comp
	}
	comp.Triggered = true
	comp.Level = best.Level
	comp.Mark = best.Mark
	comp.Score = best.Score
	comp.Change = best.Change
	comp.Message = strings.Join(reasons, "\n")
	return comp
}

// Scan evaluates the most recent steps chronologically, oldest first. Each
// step sees the full remaining history so long-lookback rules and stateful
// rules observe events in order.
func (p *Pipeline) Scan(ctx context.Context, window models.Window, steps int) []models.Composite {
	if steps > len(window) {
		steps = len(window)
	}
	out := make([]models.Composite, 0, steps)
	for i := steps - 1; i >= 0; i-- {
		out = append(out, p.Evaluate(ctx, window[i:]))
	}
	return out
}
