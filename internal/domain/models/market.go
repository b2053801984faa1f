package models

import (
	"math"
	"strings"
	"time"
)

// DataRow is one point-in-time record of a symbol's daily bar plus the
// indicator columns the rules read. Numeric fields default to NaN so rules
// can distinguish "absent" from a genuine zero; HasValues tests presence.
type DataRow struct {
	Date   time.Time
	Symbol string
	Name   string

	Open      float64
	High      float64
	Low       float64
	Close     float64
	ChangePct float64

	TurnoverAmount float64
	TurnoverVolume float64

	MA5  float64
	MA10 float64
	MA20 float64

	AvgCost         float64
	Cost70Low       float64
	Cost70High      float64
	Cost90Low       float64
	Cost90High      float64
	Concentration90 float64

	BBW           float64
	BBWDrop       float64
	BBWRise       float64
	BBWPeakDate   time.Time
	BBWValleyDate time.Time

	K float64
	J float64

	// Derived by the MA5 deviation rule for downstream consumers.
	MA5UpDev   float64
	MA5DownDev float64
}

// NewDataRow returns a row with every numeric field set to NaN.
func NewDataRow() DataRow {
	nan := math.NaN()
	return DataRow{
		Open: nan, High: nan, Low: nan, Close: nan, ChangePct: nan,
		TurnoverAmount: nan, TurnoverVolume: nan,
		MA5: nan, MA10: nan, MA20: nan,
		AvgCost: nan, Cost70Low: nan, Cost70High: nan,
		Cost90Low: nan, Cost90High: nan, Concentration90: nan,
		BBW: nan, BBWDrop: nan, BBWRise: nan,
		K: nan, J: nan,
		MA5UpDev: nan, MA5DownDev: nan,
	}
}

// HasValues reports whether every given field is present (not NaN).
func HasValues(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

// Window is an ordered sequence of rows, most recent first: index 0 is the
// step under evaluation and higher indexes reach back in time.
type Window []DataRow

// OHLCRow is one daily price bar used by the amount-to-share conversion.
type OHLCRow struct {
	Date           time.Time
	Open           float64
	High           float64
	Low            float64
	Close          float64
	TurnoverAmount float64
	TurnoverVolume float64
}

// BoardType partitions symbols by listing board, which decides the daily
// limit-up ceiling.
type BoardType int

const (
	BoardNormal BoardType = iota
	BoardGrowth
	BoardST
)

// LimitThreshold returns the percent change at which a day counts as
// limit-up for the board.
func (b BoardType) LimitThreshold() float64 {
	switch b {
	case BoardGrowth:
		return 19.0
	case BoardST:
		return 4.5
	default:
		return 9.5
	}
}

// ClassifyBoard derives the board type from symbol code and display name.
// Growth-board codes win over an ST name marker.
func ClassifyBoard(code, name string) BoardType {
	if strings.HasPrefix(code, "300") {
		return BoardGrowth
	}
	if strings.Contains(name, "ST") {
		return BoardST
	}
	return BoardNormal
}
