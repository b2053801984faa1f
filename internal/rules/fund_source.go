package rules

import (
	"context"
	"fmt"
	"math"
	"strings"

	"FundFlow/internal/domain/models"
	"FundFlow/internal/service/cache"
)

// FlowAggregator resolves the classified disclosure aggregation for one
// (symbol, date). A nil record means the symbol was not on the list.
type FlowAggregator interface {
	Aggregate(ctx context.Context, symbol, date string) *models.FundFlowRecord
}

const fundSourceMemoSize = 256

// FundSource reads the disclosure aggregation for the current row's date and
// derives a buy/sell signal from which actor dominates the flow. Results,
// including "not on the list", are memoized per (symbol, date) so repeated
// scans do not refetch.
type FundSource struct {
	flows FlowAggregator
	memo  *cache.FIFOCache
}

func NewFundSource(flows FlowAggregator) *FundSource {
	return &FundSource{flows: flows, memo: cache.NewFIFOCache(fundSourceMemoSize)}
}

func (r *FundSource) Priority() int       { return 110 }
func (r *FundSource) Description() string { return "fund source" }

func (r *FundSource) Check(ctx context.Context, window models.Window) models.Signal {
	if len(window) == 0 {
		return models.Untriggered()
	}
	curr := window[0]
	if curr.Symbol == "" || curr.Date.IsZero() {
		return models.Untriggered()
	}
	date := curr.Date.Format("20060102")
	key := curr.Symbol + "/" + date

	if v, ok := r.memo.Get(key); ok {
		return v.(models.Signal)
	}

	rec := r.flows.Aggregate(ctx, curr.Symbol, date)
	if rec == nil {
		// Negative entries stop repeat lookups for dates off the list.
		sig := models.Untriggered()
		r.memo.Set(key, sig)
		return sig
	}

	sig := signalFromFlow(rec)
	r.memo.Set(key, sig)
	return sig
}

func signalFromFlow(rec *models.FundFlowRecord) models.Signal {
	instRatio := rec.Institution.NetRatio
	hotRatio := rec.HotMoney.NetRatio
	retailRatio := rec.Retail.NetRatio

	hasInst := math.Abs(instRatio) > 0.01
	hasHot := math.Abs(hotRatio) > 0.01
	hasRetail := math.Abs(retailRatio) > 0.01

	// Pair the dominant opposing actors into one net ratio.
	var netRatio float64
	switch {
	case hasInst && hasRetail:
		// Hot money observes from the sidelines even when present.
		netRatio = instRatio - retailRatio
	case hasInst && !hasRetail:
		netRatio = instRatio - hotRatio
	case !hasInst && hasRetail:
		netRatio = hotRatio - retailRatio
	default:
		netRatio = hotRatio
	}

	score := math.Min(1.0, math.Abs(netRatio)/10.0)
	mark := selectFlowMark(instRatio, hotRatio, retailRatio)

	var (
		id    string
		level models.SignalLevel
		parts []string
	)
	if netRatio > 0 {
		id, level = "fund_source_buy", models.LevelBuy
		parts = flowBreakdown(instRatio, hotRatio, retailRatio, hasInst, hasHot, hasRetail, true)
	} else {
		id, level = "fund_source_sell", models.LevelSell
		parts = flowBreakdown(instRatio, hotRatio, retailRatio, hasInst, hasHot, hasRetail, false)
	}

	return models.Signal{
		ID:          id,
		Triggered:   true,
		Level:       level,
		Mark:        mark,
		Description: strings.Join(parts, "\n"),
		Change:      models.FormatChange(rec.ChangePct),
		Score:       score,
	}
}

// selectFlowMark picks the color of the actor with the largest absolute
// ratio: institution red/green, hot money orange/yellow, retail inverted.
func selectFlowMark(inst, hot, retail float64) models.SignalMark {
	type candidate struct {
		actor models.Actor
		ratio float64
	}
	var cands []candidate
	if math.Abs(inst) > 0.01 {
		cands = append(cands, candidate{models.ActorInstitution, inst})
	}
	if math.Abs(hot) > 0.01 {
		cands = append(cands, candidate{models.ActorHotMoney, hot})
	}
	if math.Abs(retail) > 0.01 {
		cands = append(cands, candidate{models.ActorRetail, retail})
	}
	if len(cands) == 0 {
		return models.MarkNone
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if math.Abs(c.ratio) > math.Abs(best.ratio) {
			best = c
		}
	}
	switch best.actor {
	case models.ActorInstitution:
		if best.ratio > 0 {
			return models.MarkRedDot
		}
		return models.MarkGreenDot
	case models.ActorHotMoney:
		if best.ratio > 0 {
			return models.MarkOrangeDot
		}
		return models.MarkYellowDot
	default:
		if best.ratio > 0 {
			return models.MarkGreenDot
		}
		return models.MarkRedDot
	}
}

func instBuy(r float64) string    { return fmt.Sprintf("institution net buy: %.2f%%", r) }
func instSell(r float64) string   { return fmt.Sprintf("institution net sell: %.2f%%", math.Abs(r)) }
func hotBuy(r float64) string     { return fmt.Sprintf("hot money net buy: %.2f%%", r) }
func hotSell(r float64) string    { return fmt.Sprintf("hot money net sell: %.2f%%", math.Abs(r)) }
func retailBuy(r float64) string  { return fmt.Sprintf("retail net buy: %.2f%%", r) }
func retailSell(r float64) string { return fmt.Sprintf("retail net sell: %.2f%%", math.Abs(r)) }

// flowBreakdown lists the per-actor ratios, confirming evidence first, then
// whatever cuts against the signal direction.
func flowBreakdown(inst, hot, retail float64, hasInst, hasHot, hasRetail, positive bool) []string {
	var parts []string
	switch {
	case hasInst && hasRetail && !hasHot:
		if positive {
			if inst > 0 {
				parts = append(parts, instBuy(inst))
			}
			if retail < 0 {
				parts = append(parts, retailSell(retail))
			}
			if inst < 0 {
				parts = append(parts, instSell(inst))
			}
			if retail > 0 {
				parts = append(parts, retailBuy(retail))
			}
		} else {
			if inst < 0 {
				parts = append(parts, instSell(inst))
			}
			if retail > 0 {
				parts = append(parts, retailBuy(retail))
			}
			if inst > 0 {
				parts = append(parts, instBuy(inst))
			}
			if retail < 0 {
				parts = append(parts, retailSell(retail))
			}
		}
	case hasInst && hasRetail:
		if positive {
			if inst > 0 {
				parts = append(parts, instBuy(inst))
			}
			if retail < 0 {
				parts = append(parts, retailSell(retail))
			}
			if hot > 0 {
				parts = append(parts, hotBuy(hot))
			} else if hot < 0 {
				parts = append(parts, hotSell(hot))
			}
			if inst < 0 {
				parts = append(parts, instSell(inst))
			}
			if retail > 0 {
				parts = append(parts, retailBuy(retail))
			}
		} else {
			if inst < 0 {
				parts = append(parts, instSell(inst))
			}
			if retail > 0 {
				parts = append(parts, retailBuy(retail))
			}
			if hot < 0 {
				parts = append(parts, hotSell(hot))
			} else if hot > 0 {
				parts = append(parts, hotBuy(hot))
			}
			if inst > 0 {
				parts = append(parts, instBuy(inst))
			}
			if retail < 0 {
				parts = append(parts, retailSell(retail))
			}
		}
	case hasInst && !hasRetail:
		if positive {
			if inst > 0 {
				parts = append(parts, instBuy(inst))
			}
			if hot < 0 {
				parts = append(parts, hotSell(hot))
			}
			if inst < 0 {
				parts = append(parts, instSell(inst))
			}
			if hot > 0 {
				parts = append(parts, hotBuy(hot))
			}
		} else {
			if inst < 0 {
				parts = append(parts, instSell(inst))
			}
			if hot > 0 {
				parts = append(parts, hotBuy(hot))
			}
			if inst > 0 {
				parts = append(parts, instBuy(inst))
			}
			if hot < 0 {
				parts = append(parts, hotSell(hot))
			}
		}
	case !hasInst && hasRetail:
		if positive {
			if hot > 0 {
				parts = append(parts, hotBuy(hot))
			}
			if retail < 0 {
				parts = append(parts, retailSell(retail))
			}
			if hot < 0 {
				parts = append(parts, hotSell(hot))
			}
			if retail > 0 {
				parts = append(parts, retailBuy(retail))
			}
		} else {
			if hot < 0 {
				parts = append(parts, hotSell(hot))
			}
			if retail > 0 {
				parts = append(parts, retailBuy(retail))
			}
			if hot > 0 {
				parts = append(parts, hotBuy(hot))
			}
			if retail < 0 {
				parts = append(parts, retailSell(retail))
			}
		}
	default:
		if positive {
			if hot > 0 {
				parts = append(parts, hotBuy(hot))
			} else {
				parts = append(parts, hotSell(hot))
			}
		} else {
			if hot < 0 {
				parts = append(parts, hotSell(hot))
			} else {
				parts = append(parts, hotBuy(hot))
			}
		}
	}
	return parts
}
