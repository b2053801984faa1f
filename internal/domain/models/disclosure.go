package models

import "time"

// Actor is the classified owner of disclosed branch-level order flow.
type Actor string

const (
	ActorInstitution Actor = "institution"
	ActorHotMoney    Actor = "hot"
	ActorRetail      Actor = "retail"
)

// TradeSide selects the buy-side or sell-side branch detail table.
type TradeSide string

const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

// SignalType names the evidence an aggregated disclosure signal rests on.
type SignalType string

const (
	SignalNone            SignalType = ""
	SignalInstitution     SignalType = "institution"
	SignalBranchAggregate SignalType = "branch"
)

// SummaryRow is the per-(date,symbol) statistical summary published with the
// disclosure list.
type SummaryRow struct {
	Date      string
	Symbol    string
	Name      string
	Close     float64
	ChangePct float64

	BuyCount     float64
	SellCount    float64
	BuyAmount    float64
	SellAmount   float64
	NetAmount    float64
	NetRatio     float64
	TurnoverRate float64
	MarketCap    float64
	Reason       string
}

// BranchRow is one branch-level detail entry: a branch name and the traded
// amount on one side.
type BranchRow struct {
	Branch string
	Amount float64
}

// BucketFlow aggregates one actor bucket's disclosed flow for a single day.
type BucketFlow struct {
	BuyCount   float64 `json:"buy_count"`
	SellCount  float64 `json:"sell_count"`
	BuyAmount  float64 `json:"buy_amount"`
	SellAmount float64 `json:"sell_amount"`
	NetAmount  float64 `json:"net_amount"`
	NetRatio   float64 `json:"net_ratio"`
}

// FundFlowRecord is the classified aggregation of one (symbol,date)
// disclosure: per-actor buckets, the combined branch totals, and the decided
// signal basis. Institution merges the statistical summary with the
// branch-level institution rows.
type FundFlowRecord struct {
	Date      string  `json:"date"`
	Symbol    string  `json:"symbol"`
	ChangePct float64 `json:"change_pct"`

	Institution BucketFlow `json:"institution"`
	HotMoney    BucketFlow `json:"hot"`
	Retail      BucketFlow `json:"retail"`
	Branch      BucketFlow `json:"branch"`

	NetAmount  float64    `json:"net_amount"`
	NetRatio   float64    `json:"net_ratio"`
	Reason     string     `json:"reason"`
	SignalType SignalType `json:"signal_type"`
}

// FlowPoint is one date of the three-actor net flow series. Share counts are
// zero when no usable price estimate exists for the date.
type FlowPoint struct {
	Date              time.Time `json:"date"`
	InstitutionNet    float64   `json:"institution_net"`
	HotNet            float64   `json:"hot_net"`
	RetailNet         float64   `json:"retail_net"`
	InstitutionShares float64   `json:"institution_shares"`
	HotShares         float64   `json:"hot_shares"`
	RetailShares      float64   `json:"retail_shares"`
}

// DailyTrade is one day's buy/sell amounts within a branch ledger.
type DailyTrade struct {
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
}

// BranchSummary is one branch's accumulated flow over a date range.
type BranchSummary struct {
	DisplayName string                `json:"display_name"`
	Branch      string                `json:"branch"`
	BuyAmount   float64               `json:"buy_amount"`
	SellAmount  float64               `json:"sell_amount"`
	NetAmount   float64               `json:"net_amount"`
	NetShares   float64               `json:"net_shares"`
	DailyTrades map[string]DailyTrade `json:"daily_trades"`
}

// BranchReport groups ranked branch summaries by actor, each list sorted by
// absolute net amount descending.
type BranchReport struct {
	Institution []BranchSummary `json:"institution"`
	HotMoney    []BranchSummary `json:"hot"`
	Retail      []BranchSummary `json:"retail"`
}
