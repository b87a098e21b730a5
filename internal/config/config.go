package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/Brownie44l1/image-classifier/internal/classifier"
)

// EnvPrefix prefixes every environment variable read by Load. Nested fields
// join with underscores, so Server.Port is IMGCLS_SERVER_PORT.
const EnvPrefix = "IMGCLS"

// Config holds the application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Model  ModelConfig  `yaml:"model"`
	Video  VideoConfig  `yaml:"video"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release or test
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"` // stdout (default) or stderr
}

// ModelConfig selects the model and where its files live. Zero Version,
// Alpha and TopK use the model's defaults.
type ModelConfig struct {
	Name              string  `yaml:"name"`
	Dir               string  `yaml:"dir"`
	SharedLibraryPath string  `yaml:"ort_library" envconfig:"ORT_LIBRARY"`
	Version           float64 `yaml:"version"`
	Alpha             float64 `yaml:"alpha"`
	TopK              int     `yaml:"topk" envconfig:"TOPK"`
}

// Options returns the classifier overrides described by the config.
func (m ModelConfig) Options() classifier.Options {
	return classifier.Options{Version: m.Version, Alpha: m.Alpha, TopK: m.TopK}
}

// VideoConfig selects an optional live video source. An empty device means
// no video is bound.
type VideoConfig struct {
	Device string `yaml:"device"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080, Mode: "release"},
		Log:    LogConfig{Level: "info", Format: "json"},
		Model:  ModelConfig{Name: string(classifier.MobileNet), Dir: "models"},
	}
}

// Load reads the YAML file at path, if path is non-empty, over the defaults
// and then applies IMGCLS_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode %q, use debug, release or test", c.Server.Mode)
	}
	return nil
}
