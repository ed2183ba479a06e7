package provider

import (
	"context"
	"fmt"
)

// KeyLookup resolves the credential for a provider type
type KeyLookup func(providerType string) (string, error)

// Factory builds the provider used for a request. The credential is read on
// every call so a key added to the environment takes effect without restart.
type Factory interface {
	Create(ctx context.Context) (TranscriptionProvider, error)
}

// FactoryFunc adapts a function to Factory
type FactoryFunc func(ctx context.Context) (TranscriptionProvider, error)

// Create implements Factory
func (f FactoryFunc) Create(ctx context.Context) (TranscriptionProvider, error) {
	return f(ctx)
}

// EnvFactory creates registered providers with a credential from lookup
type EnvFactory struct {
	providerType string
	settings     Settings
	lookup       KeyLookup
}

// NewEnvFactory creates a factory for providerType. settings.APIKey is
// ignored; the key always comes from lookup.
func NewEnvFactory(providerType string, settings Settings, lookup KeyLookup) *EnvFactory {
	return &EnvFactory{
		providerType: providerType,
		settings:     settings,
		lookup:       lookup,
	}
}

// Create implements Factory. Configuration problems are reported as a
// misconfigured *TranscriptionServiceError.
func (f *EnvFactory) Create(ctx context.Context) (TranscriptionProvider, error) {
	creator, err := GetProviderCreator(f.providerType)
	if err != nil {
		return nil, NewMisconfiguredError(f.providerType, err)
	}

	key, err := f.lookup(f.providerType)
	if err != nil {
		return nil, NewMisconfiguredError(f.providerType, err)
	}

	settings := f.settings
	settings.APIKey = key

	p, err := creator(ctx, settings)
	if err != nil {
		return nil, NewMisconfiguredError(f.providerType, fmt.Errorf("create %s provider: %w", f.providerType, err))
	}
	return p, nil
}

// ProviderType returns the configured provider type
func (f *EnvFactory) ProviderType() string {
	return f.providerType
}
