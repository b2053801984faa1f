//go:build wireinject
// +build wireinject

package di

import (
	"FundFlow/pkg/config"
	"FundFlow/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideMarketSource,
		ProvideSignalPublisher,
		ProvideResponseCache,

		// Services
		ProvideFlowService,

		// Use cases
		ProvideSignalsUseCase,
		ProvideFundFlowUseCase,

		// HTTP
		ProvideAPIHandler,
		ProvideApp,
	)
	return &server.App{}, nil, nil
}
