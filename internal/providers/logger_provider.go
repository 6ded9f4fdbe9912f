package providers

import (
	"fmt"
	"io"
	"lifewrapped/internal/structures"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// TypeEnum categorizes log lines by subsystem.
type TypeEnum uint8

const (
	TypeApp TypeEnum = iota
	TypeHttp
	TypePipeline
	TypeAi
)

func (t TypeEnum) String() string {
	switch t {
	case TypeHttp:
		return "http"
	case TypePipeline:
		return "pipeline"
	case TypeAi:
		return "ai"
	default:
		return "app"
	}
}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type LogProvider struct {
	logger zerolog.Logger
	file   *os.File
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	if _, err := os.Stat(conf.Logger.Dir); err != nil {
		return nil, fmt.Errorf("log directory unavailable: %w", err)
	}

	path := filepath.Join(conf.Logger.Dir, "lifewrapped.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, os.FileMode(conf.Logger.Mode))
	if err != nil {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}

	var out io.Writer = file
	if conf.Debug {
		out = zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{Out: os.Stderr})
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()

	return &LogProvider{logger: logger, file: file}, nil
}

func (l *LogProvider) log(level zerolog.Level, t TypeEnum, format string, args ...interface{}) {
	l.logger.WithLevel(level).Str("type", t.String()).Msgf(format, args...)
}

func (l *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	l.log(zerolog.ErrorLevel, t, format, args...)
}

func (l *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	l.log(zerolog.WarnLevel, t, format, args...)
}

func (l *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	l.log(zerolog.InfoLevel, t, format, args...)
}

func (l *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	l.log(zerolog.DebugLevel, t, format, args...)
}

func (l *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	l.log(zerolog.FatalLevel, t, format, args...)
	l.Close()
	os.Exit(1)
}

func (l *LogProvider) Close() {
	if l.file != nil {
		_ = l.file.Close()
	}
}
