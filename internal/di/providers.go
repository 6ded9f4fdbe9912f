package di

import (
	"lifewrapped/internal/pipeline"
	"lifewrapped/internal/providers"
	"lifewrapped/internal/recorder"
	"lifewrapped/internal/services"
	"lifewrapped/internal/storage"
	"lifewrapped/internal/structures"
	"lifewrapped/internal/summarize"
	"lifewrapped/internal/transcription"
)

func ProvideStore(conf *structures.Config) (*storage.Store, error) {
	return storage.Open(conf.Storage.Dir)
}

// ProvideCache composes the cache with its metrics decorator so wire
// sees a single CacheProviderInterface binding.
func ProvideCache(conf *structures.Config, logger providers.Logger,
	metrics providers.MetricsProviderInterface) providers.CacheProviderInterface {
	return providers.NewCacheWithMetrics(providers.NewCacheProvider(conf, logger), metrics)
}

func ProvideTranscriptionEngine(conf *structures.Config) transcription.Engine {
	return transcription.NewCommandEngine(conf.Transcription.Command)
}

func ProvideWorker(conf *structures.Config, engine transcription.Engine, store *storage.Store,
	logger providers.Logger, metrics providers.MetricsProviderInterface) *transcription.Worker {
	language := ""
	if len(conf.Transcription.Languages) > 0 {
		language = conf.Transcription.Languages[0]
	}
	return transcription.NewWorker(engine, store, logger, metrics, language,
		conf.Transcription.MaxConcurrent, conf.Transcription.FinalTimeout)
}

func ProvideRecorder(conf *structures.Config, logger providers.Logger) *recorder.Recorder {
	return recorder.New(conf.Recording.AudioDir, conf.Recording.ChunkDuration, logger)
}

func ProvideSummarizeCoordinator(conf *structures.Config, secrets providers.SecretsProviderInterface,
	logger providers.Logger, metrics providers.MetricsProviderInterface) *summarize.Coordinator {
	s := conf.Summarization
	engines := []summarize.Engine{
		summarize.NewExternalEngine(s.Provider, s.Model, s.MaxTokens, secrets, logger),
		summarize.NewLocalEngine(s.LocalModelPath, s.LocalLibraryDir, s.MaxTokens, logger),
		summarize.NewPlatformEngine(),
		summarize.NewBasicEngine(conf.Insights.ExcludedWords),
	}
	return summarize.NewCoordinator(summarize.Tier(s.PreferredEngine), engines, logger, metrics)
}

func ProvideInsightService(conf *structures.Config, store *storage.Store) *services.InsightService {
	return services.NewInsightService(store, conf.Insights.ExcludedWords,
		conf.Insights.WordCloudLimit, conf.Insights.MinWordLength)
}

func ProvideBackup(conf *structures.Config, export *services.ExportService,
	logger providers.Logger, metrics providers.MetricsProviderInterface) *pipeline.Backup {
	return pipeline.NewBackup(export, conf.Backup.Dir, logger, metrics)
}
