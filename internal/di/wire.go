//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"CryptoBrain/pkg/config"
)

var infraSet = wire.NewSet(
	ProvideLogger,
	ProvideKafkaProducer,
	ProvideMetrics,
	ProvideClickHouseClient,
	ProvideCache,
	ProvideEventPublisher,
	ProvideKafkaConsumer,
)

var repositorySet = wire.NewSet(
	ProvideCandleStore,
	ProvidePatternStore,
	ProvideParamsStore,
)

var usecaseSet = wire.NewSet(
	ProvideMiner,
	ProvideAnalysisUseCase,
	ProvideRegimeUseCase,
	ProvideMiningUseCase,
	ProvideBrainUseCase,
)

// InitializeContainer wires every dependency from cfg.
func InitializeContainer(cfg *config.Config) (*Container, error) {
	wire.Build(
		infraSet,
		repositorySet,
		usecaseSet,
		ProvideHTTPServer,
		ProvideClosers,
		ProvideApp,
		ProvideContainer,
	)
	return nil, nil
}
