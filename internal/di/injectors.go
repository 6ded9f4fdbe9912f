//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"lifewrapped/internal"
	"lifewrapped/internal/controllers"
	"lifewrapped/internal/pipeline"
	"lifewrapped/internal/providers"
	"lifewrapped/internal/services"
	"lifewrapped/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewSecretsProvider,

		ProvideStore,
		ProvideCache,
		ProvideTranscriptionEngine,
		ProvideWorker,
		ProvideRecorder,
		ProvideSummarizeCoordinator,
		ProvideInsightService,
		ProvideBackup,

		services.NewJournalService,
		services.NewRollupService,
		services.NewExportService,

		pipeline.NewCoordinator,
		pipeline.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
