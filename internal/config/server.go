package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
	apperrors "voice-interview/internal/app/errors"
)

// Config represents the complete server configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port" validate:"gte=1,lte=65535"`
	Environment    string        `yaml:"environment" validate:"oneof=development production test"`
	PublicDir      string        `yaml:"public_dir" validate:"required"`
	TempDir        string        `yaml:"temp_dir"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" validate:"gt=0"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

// TranscriptionConfig selects and tunes the transcription capability. An
// empty Model uses the provider's default.
type TranscriptionConfig struct {
	Provider string `yaml:"provider" validate:"oneof=openai gemini"`
	Model    string `yaml:"model"`
	Language string `yaml:"language" validate:"required"`
	BaseURL  string `yaml:"base_url" validate:"omitempty,url"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// DefaultMaxUploadBytes caps a single answer upload.
const DefaultMaxUploadBytes int64 = 50 * 1024 * 1024

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "",
			Port:           3000,
			Environment:    "development",
			PublicDir:      "public",
			TempDir:        os.TempDir(),
			MaxUploadBytes: DefaultMaxUploadBytes,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   5 * time.Minute,
			IdleTimeout:    2 * time.Minute,
		},
		Transcription: TranscriptionConfig{
			Provider: "openai",
			Language: "en",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the configuration file at path on top of the defaults.
// An empty path yields the defaults. PORT overrides server.port.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.Server.Port = p
	}
	if cfg.Server.TempDir == "" {
		cfg.Server.TempDir = os.TempDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate performs validation of the configuration. Failures match
// apperrors.ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.Wrapf(apperrors.ErrInvalidConfig, "%v", err)
	}

	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{"read", c.Server.ReadTimeout},
		{"write", c.Server.WriteTimeout},
		{"idle", c.Server.IdleTimeout},
	}
	for _, timeout := range timeouts {
		if err := ValidateTimeout(timeout.value, timeout.name); err != nil {
			return apperrors.Wrapf(apperrors.ErrInvalidConfig, "server config: %v", err)
		}
	}

	return nil
}

// Address returns the listen address
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
