package models

type SignalRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	Lookback int    `query:"lookback" json:"lookback" default:"120" validate:"gte=30,lte=2000"`
}

type ScanRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	Lookback int    `query:"lookback" json:"lookback" default:"250" validate:"gte=30,lte=2000"`
	Steps    int    `query:"steps" json:"steps" default:"30" validate:"gte=1,lte=500"`
}

type SeriesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Start  string `query:"start" json:"start" validate:"required"`
	End    string `query:"end" json:"end" validate:"required"`
}

type BranchesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Start  string `query:"start" json:"start" validate:"required"`
	End    string `query:"end" json:"end" validate:"required"`
}

type RecordRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Date   string `query:"date" json:"date" validate:"required"`
}
