package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type StorageConfig struct {
	Dir string `yaml:"dir" validate:"required|unixPath"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type RecordingConfig struct {
	ChunkDuration time.Duration `yaml:"chunkDuration" validate:"required"`
	AudioDir      string        `yaml:"audioDir" validate:"required|unixPath"`
	SampleRate    int           `yaml:"sampleRate"`
	// Device is the path the capture process writes raw PCM into,
	// typically a FIFO fed by arecord or similar.
	Device string `yaml:"device"`
}

type TranscriptionConfig struct {
	MaxConcurrent int           `yaml:"maxConcurrent"`
	Languages     []string      `yaml:"languages"`
	FinalTimeout  time.Duration `yaml:"finalTimeout"`
	// Command is the external speech recognizer invocation. The
	// placeholders {file} and {lang} expand per chunk; line-buffered
	// stdout is treated as partial results, the last line as final.
	Command []string `yaml:"command"`
}

type SummarizationConfig struct {
	PreferredEngine string `yaml:"preferredEngine" validate:"in:external,local,platform,basic"`
	Provider        string `yaml:"provider" validate:"in:openai,anthropic"`
	Model           string `yaml:"model"`
	LocalModelPath  string `yaml:"localModelPath"`
	LocalLibraryDir string `yaml:"localLibraryDir"`
	MaxTokens       int    `yaml:"maxTokens"`
}

type InsightsConfig struct {
	WordCloudLimit int      `yaml:"wordCloudLimit"`
	ExcludedWords  []string `yaml:"excludedWords"`
	MinWordLength  int      `yaml:"minWordLength"`
}

type BackupConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Dir      string        `yaml:"dir"`
	Interval time.Duration `yaml:"interval"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName       string
	Debug         bool
	Path          string
	WebServer     Server              `yaml:"webServer"`
	Storage       StorageConfig       `yaml:"storage"`
	Logger        LoggerConfig        `yaml:"logger"`
	Recording     RecordingConfig     `yaml:"recording"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Summarization SummarizationConfig `yaml:"summarization"`
	Insights      InsightsConfig      `yaml:"insights"`
	Backup        BackupConfig        `yaml:"backup"`
	Cache         CacheConfig         `yaml:"cache"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

// Chunk duration bounds are a product constraint, enforced on top of the
// struct validation rules.
const (
	MinChunkDuration = 30 * time.Second
	MaxChunkDuration = 300 * time.Second
)
