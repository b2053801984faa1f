package usecase

import (
	"context"
	"sync"
	"time"

	"FundFlow/internal/domain/models"
	"FundFlow/internal/domain/repository"
	"FundFlow/internal/rules"
	"FundFlow/pkg/logger"
)

// SignalsUseCase serves composite signal evaluation over market history.
// Pipelines carry per-symbol rule state, so one pipeline is kept per symbol
// for the life of the process.
type SignalsUseCase struct {
	source    repository.MarketDataSource
	flows     rules.FlowAggregator
	publisher repository.SignalPublisher
	metrics   repository.Metrics
	log       *logger.Logger
	timeout   time.Duration

	mu        sync.Mutex
	pipelines map[string]*rules.Pipeline
}

func NewSignalsUseCase(
	source repository.MarketDataSource,
	flows rules.FlowAggregator,
	publisher repository.SignalPublisher,
	metrics repository.Metrics,
	log *logger.Logger,
) *SignalsUseCase {
	return &SignalsUseCase{
		source:    source,
		flows:     flows,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		timeout:   15 * time.Second,
		pipelines: make(map[string]*rules.Pipeline),
	}
}

func (uc *SignalsUseCase) pipelineFor(symbol string) *rules.Pipeline {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	p, ok := uc.pipelines[symbol]
	if !ok {
		p = rules.NewPipeline(uc.flows, uc.metrics)
		uc.pipelines[symbol] = p
	}
	return p
}

// history fetches the symbol's window; a failed fetch degrades to nil so
// callers render "no signal" instead of an error.
func (uc *SignalsUseCase) history(ctx context.Context, symbol string, lookback int) models.Window {
	start := time.Now()
	rows, err := uc.source.History(ctx, symbol, lookback)
	uc.metrics.RecordLatency("history_fetch", time.Since(start).Seconds())
	if err != nil {
		uc.metrics.RecordFetchError("history")
		uc.log.Warn("history fetch failed",
			logger.String("symbol", symbol), logger.Error(err))
		return nil
	}
	uc.metrics.RecordFetch("history")
	return models.Window(rows)
}

// Latest evaluates the most recent step for a symbol. Triggered composites
// are published downstream when a publisher is wired.
func (uc *SignalsUseCase) Latest(ctx context.Context, symbol string, lookback int) models.Composite {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	window := uc.history(ctx, symbol, lookback)
	if len(window) == 0 {
		return models.Composite{Symbol: symbol, Level: models.LevelNeutral}
	}

	comp := uc.pipelineFor(symbol).Evaluate(ctx, window)
	uc.publish(ctx, comp)
	return comp
}

// Scan evaluates the last steps chronologically, oldest first.
func (uc *SignalsUseCase) Scan(ctx context.Context, symbol string, lookback, steps int) []models.Composite {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	window := uc.history(ctx, symbol, lookback)
	if len(window) == 0 {
		return nil
	}

	comps := uc.pipelineFor(symbol).Scan(ctx, window, steps)
	for _, comp := range comps {
		uc.publish(ctx, comp)
	}
	return comps
}

func (uc *SignalsUseCase) publish(ctx context.Context, comp models.Composite) {
	if uc.publisher == nil || !comp.Triggered {
		return
	}
	if err := uc.publisher.Publish(ctx, &comp); err != nil {
		uc.log.Warn("signal publish failed",
			logger.String("symbol", comp.Symbol), logger.Error(err))
	}
}
