package usecase

import (
	"context"
	"time"

	"FundFlow/internal/domain/models"
	"FundFlow/internal/service/disclosure"
)

// FundFlowUseCase exposes the disclosure aggregation layer: per-day records,
// the net-flow series, the branch report and cache administration.
type FundFlowUseCase struct {
	svc     *disclosure.Service
	timeout time.Duration
}

func NewFundFlowUseCase(svc *disclosure.Service) *FundFlowUseCase {
	return &FundFlowUseCase{svc: svc, timeout: 30 * time.Second}
}

// Record returns the classified aggregation for one (symbol, date), or nil
// when the symbol was not on the disclosure list.
func (uc *FundFlowUseCase) Record(ctx context.Context, symbol, date string) *models.FundFlowRecord {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return uc.svc.Aggregate(ctx, symbol, date)
}

// Series returns the three-actor net flow series for a date range.
func (uc *FundFlowUseCase) Series(ctx context.Context, symbol, start, end string) []models.FlowPoint {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return uc.svc.FundFlowSeries(ctx, symbol, start, end)
}

// Branches returns the ranked per-actor branch report for a date range.
func (uc *FundFlowUseCase) Branches(ctx context.Context, symbol, start, end string) models.BranchReport {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	return uc.svc.BranchReport(ctx, symbol, start, end)
}

// ClearCache drops every disclosure-layer cache.
func (uc *FundFlowUseCase) ClearCache() {
	uc.svc.ClearCache()
}
