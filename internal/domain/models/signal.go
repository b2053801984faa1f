package models

import (
	"fmt"
	"time"
)

// SignalLevel is the directional reading of a rule evaluation.
type SignalLevel string

const (
	LevelBuy     SignalLevel = "buy"
	LevelBullish SignalLevel = "bullish"
	LevelSell    SignalLevel = "sell"
	LevelBearish SignalLevel = "bearish"
	LevelNeutral SignalLevel = "neutral"
)

// SignalMark is the visual tag attached to a triggered signal. Marks carry a
// total priority order used for tie-break when several rules trigger on the
// same step.
type SignalMark string

const (
	MarkRedDot     SignalMark = "ro"
	MarkMagentaDot SignalMark = "mo"
	MarkGreenDot   SignalMark = "go"
	MarkYellowDot  SignalMark = "yo"
	MarkBlueDot    SignalMark = "bo"
	MarkOrangeDot  SignalMark = "o"
	MarkNone       SignalMark = ""
)

var markPriority = map[SignalMark]int{
	MarkRedDot:     100,
	MarkGreenDot:   90,
	MarkMagentaDot: 80,
	MarkYellowDot:  70,
	MarkBlueDot:    60,
	MarkNone:       0,
}

// Priority returns the mark's rank; higher outranks lower. Marks without an
// assigned rank (the orange dot) rank lowest.
func (m SignalMark) Priority() int { return markPriority[m] }

// Outranks reports whether m has strictly higher priority than other.
func (m SignalMark) Outranks(other SignalMark) bool { return m.Priority() > other.Priority() }

// Signal is the immutable result of one rule evaluation. The zero-equivalent
// untriggered value is produced by Untriggered.
type Signal struct {
	ID          string      `json:"id"`
	Triggered   bool        `json:"triggered"`
	Level       SignalLevel `json:"level"`
	Mark        SignalMark  `json:"mark"`
	Description string      `json:"description"`
	Score       float64     `json:"score"`
	Change      string      `json:"change"`
}

// Untriggered returns the neutral no-signal value.
func Untriggered() Signal {
	return Signal{Level: LevelNeutral, Mark: MarkNone}
}

// FormatChange renders a percent change as a signed display string.
func FormatChange(pct float64) string {
	return fmt.Sprintf("%+.2f", pct)
}

// Composite is the arbitrated result of evaluating every registered rule
// against one window step. Mark, level and score come from the triggered rule
// with the highest declared priority; Message joins every triggered
// description in registration order.
type Composite struct {
	Symbol    string      `json:"symbol"`
	Date      time.Time   `json:"date"`
	Triggered bool        `json:"triggered"`
	Level     SignalLevel `json:"level"`
	Mark      SignalMark  `json:"mark"`
	Score     float64     `json:"score"`
	Change    string      `json:"change"`
	Message   string      `json:"message"`
}
