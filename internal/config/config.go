// Package config loads application settings, the character definition and
// API credentials.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/petasbytes/rpg-agent/internal/provider"
)

const (
	SummarizerOpenAI    = "openai"
	SummarizerAnthropic = "anthropic"
)

// Config holds application settings. Zero values in a loaded file keep the
// defaults.
type Config struct {
	Model          string `yaml:"model,omitempty" json:"model,omitempty" jsonschema:"description=Hosted assistant model"`
	SummaryModel   string `yaml:"summary_model,omitempty" json:"summary_model,omitempty" jsonschema:"description=OpenAI model used for memory updates"`
	Summarizer     string `yaml:"summarizer,omitempty" json:"summarizer,omitempty" jsonschema:"enum=openai,enum=anthropic"`
	AnthropicModel string `yaml:"anthropic_model,omitempty" json:"anthropic_model,omitempty"`

	PollInterval time.Duration `yaml:"poll_interval,omitempty" json:"poll_interval,omitempty" jsonschema:"description=Run status poll interval in nanoseconds (YAML accepts 500ms)"`
	MaxPolls     int           `yaml:"max_polls,omitempty" json:"max_polls,omitempty"`

	DataDir       string `yaml:"data_dir,omitempty" json:"data_dir,omitempty" jsonschema:"description=Directory holding memory artifacts"`
	CharacterDir  string `yaml:"character_dir,omitempty" json:"character_dir,omitempty"`
	SourceDir     string `yaml:"source_dir,omitempty" json:"source_dir,omitempty" jsonschema:"description=Reference material (.txt .cs .pdf), searched recursively"`
	KeyDir        string `yaml:"key_dir,omitempty" json:"key_dir,omitempty"`
	TranscriptDir string `yaml:"transcript_dir,omitempty" json:"transcript_dir,omitempty" jsonschema:"description=Defaults to <data_dir>/transcripts"`

	SummaryFile         string `yaml:"summary_file,omitempty" json:"summary_file,omitempty" jsonschema:"description=Relative to data_dir unless absolute"`
	PreferencesFile     string `yaml:"preferences_file,omitempty" json:"preferences_file,omitempty" jsonschema:"description=Relative to data_dir unless absolute"`
	PreferenceEvery     int    `yaml:"preference_every,omitempty" json:"preference_every,omitempty" jsonschema:"minimum=1"`
	SummaryPromptBudget int    `yaml:"summary_prompt_budget,omitempty" json:"summary_prompt_budget,omitempty" jsonschema:"description=Rune budget of the conversation excerpt sent to the summarizer; 0 sends everything"`

	LogLevel  string `yaml:"log_level,omitempty" json:"log_level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	LogFormat string `yaml:"log_format,omitempty" json:"log_format,omitempty" jsonschema:"enum=text,enum=json"`

	// FileSearch uploads the reference material for hosted retrieval.
	FileSearch *bool `yaml:"file_search,omitempty" json:"file_search,omitempty"`
}

// DefaultConfig returns a Config with defaults for every setting.
func DefaultConfig() Config {
	fileSearch := true
	return Config{
		Model:           provider.DefaultModel,
		SummaryModel:    provider.DefaultSummaryModel,
		Summarizer:      SummarizerOpenAI,
		AnthropicModel:  string(provider.DefaultAnthropicModel),
		PollInterval:    500 * time.Millisecond,
		MaxPolls:        600,
		DataDir:         "data",
		CharacterDir:    "character",
		SourceDir:       "source",
		KeyDir:          "key",
		SummaryFile:     "conversation_summary.txt",
		PreferencesFile: "user_preferences.txt",
		PreferenceEvery: 10,
		LogLevel:        "info",
		LogFormat:       "text",
		FileSearch:      &fileSearch,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	mergeString(&c.Model, source.Model)
	mergeString(&c.SummaryModel, source.SummaryModel)
	mergeString(&c.Summarizer, source.Summarizer)
	mergeString(&c.AnthropicModel, source.AnthropicModel)
	mergeString(&c.DataDir, source.DataDir)
	mergeString(&c.CharacterDir, source.CharacterDir)
	mergeString(&c.SourceDir, source.SourceDir)
	mergeString(&c.KeyDir, source.KeyDir)
	mergeString(&c.TranscriptDir, source.TranscriptDir)
	mergeString(&c.SummaryFile, source.SummaryFile)
	mergeString(&c.PreferencesFile, source.PreferencesFile)
	mergeString(&c.LogLevel, source.LogLevel)
	mergeString(&c.LogFormat, source.LogFormat)

	if source.PollInterval > 0 {
		c.PollInterval = source.PollInterval
	}
	if source.MaxPolls > 0 {
		c.MaxPolls = source.MaxPolls
	}
	if source.PreferenceEvery > 0 {
		c.PreferenceEvery = source.PreferenceEvery
	}
	if source.SummaryPromptBudget > 0 {
		c.SummaryPromptBudget = source.SummaryPromptBudget
	}
	if source.FileSearch != nil {
		v := *source.FileSearch
		c.FileSearch = &v
	}
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Summarizer {
	case SummarizerOpenAI, SummarizerAnthropic:
	default:
		return fmt.Errorf("unknown summarizer %q (want %s or %s)", c.Summarizer, SummarizerOpenAI, SummarizerAnthropic)
	}
	if c.PreferenceEvery < 1 {
		return fmt.Errorf("preference_every must be at least 1, got %d", c.PreferenceEvery)
	}
	return nil
}

// FileSearchEnabled reports whether reference files are uploaded for retrieval.
func (c *Config) FileSearchEnabled() bool {
	return c.FileSearch == nil || *c.FileSearch
}

// TranscriptPath returns TranscriptDir, defaulting to <data_dir>/transcripts.
func (c *Config) TranscriptPath() string {
	if c.TranscriptDir != "" {
		return c.TranscriptDir
	}
	return filepath.Join(c.DataDir, "transcripts")
}

// LoadConfig reads a YAML config file and merges it over the defaults. A
// missing file yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()
	if filename == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
