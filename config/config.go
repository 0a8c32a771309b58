package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Audio       AudioConfig       `yaml:"audio"`
	HTTP        HTTPConfig        `yaml:"http"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Transcriber TranscriberConfig `yaml:"transcriber"`
	Captions    CaptionsConfig    `yaml:"captions"`
	Output      OutputConfig      `yaml:"output"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Tracing     TracingConfig     `yaml:"tracing"`
	Log         LogConfig         `yaml:"log"`
}

type AudioConfig struct {
	Source         string `yaml:"source"`
	FileDir        string `yaml:"file_dir"`
	SampleRate     int    `yaml:"sample_rate"`
	PauseThreshold string `yaml:"pause_threshold"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
	// RateLimit is recordings per client IP per minute. An explicit 0
	// disables the limiter; leaving it out keeps the default.
	RateLimit *int `yaml:"rate_limit"`
}

type OpenAIConfig struct {
	APIKey             string `yaml:"api_key"`
	BaseURL            string `yaml:"base_url"`
	Language           string `yaml:"language"`
	TranscriptionModel string `yaml:"transcription_model"`
	ChatModel          string `yaml:"chat_model"`
}

type TranscriberConfig struct {
	Denylist          []string `yaml:"denylist"`
	NoSpeechThreshold float64  `yaml:"no_speech_threshold"`
}

// CaptionsConfig holds the user-facing strings. Each stage caption reads as
// "From -> Via -> To" on screen.
type CaptionsConfig struct {
	Title      string       `yaml:"title"`
	Record     string       `yaml:"record"`
	Retry      string       `yaml:"retry"`
	Transcribe StageCaption `yaml:"transcribe"`
	Extract    StageCaption `yaml:"extract"`
	Render     StageCaption `yaml:"render"`
}

type StageCaption struct {
	From string `yaml:"from"`
	Via  string `yaml:"via"`
	To   string `yaml:"to"`
}

func (s StageCaption) String() string {
	return fmt.Sprintf("%s → %s → %s", s.From, s.Via, s.To)
}

// Overview chains all stages into one banner, e.g. "audio → Whisper → text → ...".
func (c CaptionsConfig) Overview() string {
	var b strings.Builder
	b.WriteString(c.Transcribe.From)
	for _, s := range []StageCaption{c.Transcribe, c.Extract, c.Render} {
		fmt.Fprintf(&b, " → %s → %s", s.Via, s.To)
	}
	return b.String()
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint"`
	Insecure   bool    `yaml:"insecure"`
	SampleRate float64 `yaml:"sample_rate"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const DefaultRateLimit = 30

// DefaultDenylist lists caption boilerplate Whisper tends to produce on
// near-silent Japanese input.
var DefaultDenylist = []string{"視聴", "字幕", "by H", "見てくれて"}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Audio.Source == "" {
		c.Audio.Source = "http"
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./audio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.PauseThreshold == "" {
		c.Audio.PauseThreshold = "10s"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.RateLimit == nil {
		limit := DefaultRateLimit
		c.HTTP.RateLimit = &limit
	}
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "ja"
	}
	if c.OpenAI.TranscriptionModel == "" {
		c.OpenAI.TranscriptionModel = "whisper-1"
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = "gpt-3.5-turbo-1106"
	}
	if c.Transcriber.Denylist == nil {
		c.Transcriber.Denylist = DefaultDenylist
	}
	c.Captions.setDefaults()
	if c.Output.Dir == "" {
		c.Output.Dir = "./output"
	}
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = "localhost:4318"
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1.0
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *CaptionsConfig) setDefaults() {
	if c.Title == "" {
		c.Title = "音声認識デモ"
	}
	if c.Record == "" {
		c.Record = "録音　開始／終了"
	}
	if c.Retry == "" {
		c.Retry = "もう一度、録音して下さい。"
	}
	c.Transcribe.fill(StageCaption{From: "音声", Via: "Whisper", To: "文字"})
	c.Extract.fill(StageCaption{From: "文字", Via: "ChatGPT", To: "データ"})
	c.Render.fill(StageCaption{From: "データ", Via: "PC", To: "出力"})
}

func (s *StageCaption) fill(def StageCaption) {
	if s.From == "" {
		s.From = def.From
	}
	if s.Via == "" {
		s.Via = def.Via
	}
	if s.To == "" {
		s.To = def.To
	}
}
