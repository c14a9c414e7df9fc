package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/petems/recmeet/internal/summarize"
)

type Config struct {
	Audio         AudioConfig         `yaml:"audio"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Summary       SummaryConfig       `yaml:"summary"`
	Diarization   DiarizationConfig   `yaml:"diarization"`
	Output        OutputConfig        `yaml:"output"`
	Notes         NotesConfig         `yaml:"notes"`
	General       GeneralConfig       `yaml:"general"`
}

type AudioConfig struct {
	MicSource     string  `yaml:"mic_source"`
	MonitorSource string  `yaml:"monitor_source"`
	DevicePattern string  `yaml:"device_pattern"`
	MicOnly       bool    `yaml:"mic_only"`
	MinDuration   float64 `yaml:"min_duration"` // seconds
}

type TranscriptionConfig struct {
	URL      string `yaml:"url"`
	Model    string `yaml:"model"` // "base", "small", etc.
	Language string `yaml:"language"`
	APIKey   string `yaml:"api_key"`
}

type SummaryConfig struct {
	Provider string `yaml:"provider"` // "xai", "openai", "anthropic"
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	URL      string `yaml:"url"` // overrides the provider endpoint
}

type DiarizationConfig struct {
	Enabled          bool    `yaml:"enabled"`
	URL              string  `yaml:"url"`
	NumSpeakers      int     `yaml:"num_speakers"` // 0 = auto
	ClusterThreshold float64 `yaml:"cluster_threshold"`
}

type OutputConfig struct {
	Dir     string `yaml:"dir"`
	KeepRaw bool   `yaml:"keep_raw"`
}

type NotesConfig struct {
	Domain string   `yaml:"domain"`
	Tags   []string `yaml:"tags"`
}

type GeneralConfig struct {
	LogLevel      string `yaml:"log_level"`
	Notifications bool   `yaml:"notifications"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			MinDuration: 1.0,
		},
		Transcription: TranscriptionConfig{
			URL:   "http://127.0.0.1:8080/inference",
			Model: "base",
		},
		Summary: SummaryConfig{
			Provider: "xai",
		},
		Diarization: DiarizationConfig{
			Enabled:          true,
			ClusterThreshold: 1.18,
		},
		Output: OutputConfig{
			Dir: "./meetings",
		},
		General: GeneralConfig{
			LogLevel:      "info",
			Notifications: true,
		},
	}
}

// Load reads the config from disk, layering it over the defaults. A
// missing file is not an error.
func Load() (*Config, error) {
	cfg := Default()
	path := Path()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := Path()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Provider resolves the configured summary provider. Unknown names
// fall back to the first entry in the table.
func (c *Config) Provider() *summarize.Provider {
	if p := summarize.FindProvider(c.Summary.Provider); p != nil {
		return p
	}
	return &summarize.Providers[0]
}

// SummaryURL is the chat completions endpoint, honoring a URL
// override.
func (c *Config) SummaryURL() string {
	if c.Summary.URL != "" {
		return c.Summary.URL
	}
	return c.Provider().ChatCompletionsURL()
}

// SummaryModel is the configured model or the provider default.
func (c *Config) SummaryModel() string {
	if c.Summary.Model != "" {
		return c.Summary.Model
	}
	return c.Provider().DefaultModel
}

// SummaryAPIKey prefers the provider's environment variable over the
// key stored in the config file.
func (c *Config) SummaryAPIKey() string {
	return c.Provider().ResolveAPIKey(c.Summary.APIKey)
}

// Path returns the platform-specific config file path
func Path() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ConfigDir returns the platform-specific config directory
func ConfigDir() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "recmeet")
}

// DataDir returns the platform-specific data directory
func DataDir() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.local/share"
		}
	}

	return filepath.Join(base, "recmeet")
}
