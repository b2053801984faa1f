package di

import (
	"context"
	"fmt"
	"time"

	"FundFlow/internal/domain/repository"
	"FundFlow/internal/handler/api"
	internalrepo "FundFlow/internal/repository"
	"FundFlow/internal/service/cache"
	"FundFlow/internal/service/disclosure"
	"FundFlow/internal/usecase"
	pkgch "FundFlow/pkg/clickhouse"
	"FundFlow/pkg/config"
	xhttp "FundFlow/pkg/http"
	applogger "FundFlow/pkg/logger"
	"FundFlow/pkg/metrics"
	"FundFlow/pkg/server"
)

// ProvideLogger creates the app logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS fundflow",
		`CREATE TABLE IF NOT EXISTS fundflow.daily_bars (
			date Date, symbol String, name String,
			open Nullable(Float64), high Nullable(Float64), low Nullable(Float64), close Nullable(Float64),
			change_pct Nullable(Float64),
			turnover_amount Nullable(Float64), turnover_volume Nullable(Float64),
			ma5 Nullable(Float64), ma10 Nullable(Float64), ma20 Nullable(Float64),
			avg_cost Nullable(Float64),
			cost70_low Nullable(Float64), cost70_high Nullable(Float64),
			cost90_low Nullable(Float64), cost90_high Nullable(Float64),
			concentration90 Nullable(Float64),
			bbw Nullable(Float64), bbw_drop Nullable(Float64), bbw_rise Nullable(Float64),
			bbw_peak_date Nullable(Date), bbw_valley_date Nullable(Date),
			k Nullable(Float64), j Nullable(Float64)
		) ENGINE=ReplacingMergeTree ORDER BY (symbol, date)`,
		`CREATE TABLE IF NOT EXISTS fundflow.lhb_summary (
			date String, symbol String, name String,
			close Nullable(Float64), change_pct Nullable(Float64),
			buy_count Nullable(Float64), sell_count Nullable(Float64),
			buy_amount Nullable(Float64), sell_amount Nullable(Float64),
			net_amount Nullable(Float64), net_ratio Nullable(Float64),
			turnover_rate Nullable(Float64), market_cap Nullable(Float64),
			reason String
		) ENGINE=ReplacingMergeTree ORDER BY (date, symbol)`,
		`CREATE TABLE IF NOT EXISTS fundflow.lhb_branch (
			date String, symbol String, side String,
			branch String, amount Nullable(Float64)
		) ENGINE=ReplacingMergeTree ORDER BY (date, symbol, side, branch)`,
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideMarketSource selects the market data source from config.
func ProvideMarketSource(cfg *config.Config, l *applogger.Logger) (repository.MarketDataSource, func(), error) {
	if cfg.Market.Source == "gateway" {
		src := internalrepo.NewGatewayMarketSource(cfg.Market.GatewayURL, cfg.Market.Timeout)
		src.SetLogger(l)
		return src, func() {}, nil
	}

	client, err := ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	src := internalrepo.NewCHMarketSource(client)
	src.SetLogger(l)
	cleanup := func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	return src, cleanup, nil
}

// ProvideSignalPublisher creates the Kafka publisher, or a no-op when disabled.
func ProvideSignalPublisher(cfg *config.Config, l *applogger.Logger) (repository.SignalPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopSignalPublisher{}, func() {}, nil
	}

	pub, err := internalrepo.NewKafkaSignalPublisher(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka publisher: %w", err)
	}
	cleanup := func() {
		if err := pub.Close(); err != nil {
			l.Warn("kafka publisher close error", applogger.Error(err))
		}
	}
	return pub, cleanup, nil
}

// ProvideResponseCache selects the API response cache backend.
func ProvideResponseCache(cfg *config.Config, l *applogger.Logger) (cache.BytesCache, func()) {
	if cfg.API.Redis.Enabled {
		rc := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.API.Redis.Addr,
			Password: cfg.API.Redis.Password,
			DB:       cfg.API.Redis.DB,
		})
		return rc, func() {
			if err := rc.Close(); err != nil {
				l.Warn("redis close error", applogger.Error(err))
			}
		}
	}
	return cache.NewTTLCache(), func() {}
}

// ProvideFlowService creates the disclosure aggregation service.
func ProvideFlowService(
	source repository.MarketDataSource,
	l *applogger.Logger,
	m repository.Metrics,
	cfg *config.Config,
) *disclosure.Service {
	return disclosure.NewService(source, l, m, disclosure.Options{
		TableTTL:     cfg.Disclosure.TableTTL,
		FlowMemoSize: cfg.Disclosure.FlowMemoSize,
	})
}

// ProvideSignalsUseCase creates the signal evaluation use case.
func ProvideSignalsUseCase(
	source repository.MarketDataSource,
	flows *disclosure.Service,
	publisher repository.SignalPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.SignalsUseCase {
	return usecase.NewSignalsUseCase(source, flows, publisher, m, l)
}

// ProvideFundFlowUseCase creates the fund flow use case.
func ProvideFundFlowUseCase(svc *disclosure.Service) *usecase.FundFlowUseCase {
	return usecase.NewFundFlowUseCase(svc)
}

// ProvideAPIHandler creates the Echo handler with routes.
func ProvideAPIHandler(
	l *applogger.Logger,
	signals *usecase.SignalsUseCase,
	flows *usecase.FundFlowUseCase,
	respCache cache.BytesCache,
	cfg *config.Config,
) xhttp.Handler {
	return api.NewHandler(l, signals, flows, api.Options{
		ResponseCache: respCache,
		CacheTTL:      cfg.API.CacheTTL,
		RateRPS:       cfg.API.RateLimit.RPS,
		RateBurst:     cfg.API.RateLimit.Burst,
	})
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, handler xhttp.Handler) *server.App {
	return server.New(cfg, l, handler)
}
