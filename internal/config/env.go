package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	apperrors "voice-interview/internal/app/errors"
)

// APIKeys holds the transcription credentials loaded from environment
type APIKeys struct {
	OpenAI string
	Gemini string
}

// LoadEnv loads environment variables from the first .env file it finds.
// A missing file is not an error; variables may be set system-wide.
func LoadEnv() (string, error) {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
		"../../.env",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return "", fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			return envPath, nil
		}
	}

	return "", nil
}

// keyFormat describes what a provider's credential looks like
type keyFormat struct {
	env    string
	prefix string
	minLen int
}

var keyFormats = map[string]keyFormat{
	"openai": {env: "OPENAI_API_KEY", prefix: "sk-", minLen: 20},
	"gemini": {env: "GEMINI_API_KEY", prefix: "AIza", minLen: 30},
}

// lookupKey reads and validates one provider's credential. An empty key is
// returned without error.
func lookupKey(format keyFormat) (string, error) {
	key := strings.TrimSpace(os.Getenv(format.env))
	if key == "" {
		return "", nil
	}
	if !strings.HasPrefix(key, format.prefix) {
		return "", apperrors.Wrapf(apperrors.ErrInvalidAPIKey, "%s must start with '%s'", format.env, format.prefix)
	}
	if len(key) < format.minLen {
		return "", apperrors.Wrapf(apperrors.ErrInvalidAPIKey, "%s too short", format.env)
	}
	return key, nil
}

// GetAPIKeys retrieves and validates API keys from environment variables.
// Empty keys are allowed here; RequireAPIKey decides per provider.
func GetAPIKeys() (*APIKeys, error) {
	openaiKey, err := lookupKey(keyFormats["openai"])
	if err != nil {
		return nil, err
	}
	geminiKey, err := lookupKey(keyFormats["gemini"])
	if err != nil {
		return nil, err
	}
	return &APIKeys{OpenAI: openaiKey, Gemini: geminiKey}, nil
}

// Available lists the providers that have a credential configured.
func (k *APIKeys) Available() []string {
	var available []string
	if k.OpenAI != "" {
		available = append(available, "openai")
	}
	if k.Gemini != "" {
		available = append(available, "gemini")
	}
	return available
}

// RequireAPIKey returns the credential for the given provider, or
// ErrMissingAPIKey when it is not configured. Only that provider's variable
// is read.
func RequireAPIKey(provider string) (string, error) {
	format, ok := keyFormats[provider]
	if !ok {
		return "", apperrors.Wrapf(apperrors.ErrProviderNotFound, "unknown provider %q", provider)
	}

	key, err := lookupKey(format)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", apperrors.Wrapf(apperrors.ErrMissingAPIKey, "%s credential not set (%s)", provider, format.env)
	}
	return key, nil
}

// EnvKeyFor names the environment variable holding a provider's credential.
func EnvKeyFor(provider string) string {
	if format, ok := keyFormats[provider]; ok {
		return format.env
	}
	return keyFormats["openai"].env
}
