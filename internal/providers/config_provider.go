package providers

import (
	"fmt"
	"lifewrapped/internal/structures"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "LIFEWRAPPED_LOG_LEVEL")
	viper.BindEnv("recording.chunkDuration", "LIFEWRAPPED_CHUNK_DURATION")
	viper.BindEnv("summarization.preferredEngine", "LIFEWRAPPED_ENGINE")
	viper.BindEnv("summarization.provider", "LIFEWRAPPED_PROVIDER")
	viper.BindEnv("summarization.model", "LIFEWRAPPED_MODEL")
	viper.BindEnv("cache.enabled", "LIFEWRAPPED_CACHE_ENABLED")
	viper.BindEnv("cache.size", "LIFEWRAPPED_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "LifeWrapped"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	applyDefaults(&conf)

	return &conf, nil
}

func applyDefaults(conf *structures.Config) {
	if conf.Recording.ChunkDuration < structures.MinChunkDuration {
		conf.Recording.ChunkDuration = structures.MinChunkDuration
	}
	if conf.Recording.ChunkDuration > structures.MaxChunkDuration {
		conf.Recording.ChunkDuration = structures.MaxChunkDuration
	}
	if conf.Recording.SampleRate <= 0 {
		conf.Recording.SampleRate = 16000
	}
	if conf.Recording.Device == "" {
		conf.Recording.Device = "/tmp/lifewrapped-capture.pcm"
	}
	if conf.Transcription.MaxConcurrent <= 0 {
		conf.Transcription.MaxConcurrent = 3
	}
	if len(conf.Transcription.Languages) == 0 {
		conf.Transcription.Languages = []string{"en-US"}
	}
	if conf.Summarization.PreferredEngine == "" {
		conf.Summarization.PreferredEngine = "basic"
	}
	if conf.Summarization.MaxTokens <= 0 {
		conf.Summarization.MaxTokens = 1024
	}
	if conf.Insights.WordCloudLimit <= 0 {
		conf.Insights.WordCloudLimit = 50
	}
	if conf.Insights.MinWordLength <= 0 {
		conf.Insights.MinWordLength = 3
	}
}
