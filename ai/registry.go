package ai

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrProviderNotFound      = errors.New("provider not found")
	ErrProviderAlreadyExists = errors.New("provider already registered")
	ErrEmptyProviderName     = errors.New("provider name cannot be empty")
	ErrEmptyModelName        = errors.New("model name cannot be empty")
)

type ModelFactoryFunc func(modelName, apiKey, baseURL string) *Model

// ProviderInfo describes an OpenAI-compatible (or other) endpoint a Model can be built for.
type ProviderInfo struct {
	Name        string
	DisplayName string // used in user-facing error messages
	BaseURL     string
	APIKeyName  string // environment variable conventionally holding the key
	NewModel    ModelFactoryFunc
}

type providerRegistry struct {
	mu        sync.RWMutex
	providers map[string]ProviderInfo
}

var defaultRegistry *providerRegistry

func init() {
	defaultRegistry = &providerRegistry{
		providers: make(map[string]ProviderInfo),
	}
}

func RegisterProvider(info ProviderInfo) error {
	if info.Name == "" {
		return ErrEmptyProviderName
	}
	if info.NewModel == nil {
		return fmt.Errorf("provider %s: missing model factory", info.Name)
	}

	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()

	if _, exists := defaultRegistry.providers[info.Name]; exists {
		return fmt.Errorf("%w: %s", ErrProviderAlreadyExists, info.Name)
	}

	defaultRegistry.providers[info.Name] = info
	return nil
}

// LookupProvider returns the registered provider info.
func LookupProvider(name string) (ProviderInfo, error) {
	defaultRegistry.mu.RLock()
	info, exists := defaultRegistry.providers[name]
	defaultRegistry.mu.RUnlock()

	if !exists {
		return ProviderInfo{}, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return info, nil
}

// New builds a model for provider. An empty baseURL selects the provider default.
func New(provider, modelName, apiKey, baseURL string) (*Model, error) {
	if provider == "" {
		return nil, ErrEmptyProviderName
	}
	if modelName == "" {
		return nil, ErrEmptyModelName
	}

	info, err := LookupProvider(provider)
	if err != nil {
		return nil, err
	}

	if baseURL == "" {
		baseURL = info.BaseURL
	}
	return info.NewModel(modelName, apiKey, baseURL), nil
}

// Providers returns the registered providers sorted by name.
func Providers() []ProviderInfo {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()

	result := make([]ProviderInfo, 0, len(defaultRegistry.providers))
	for _, info := range defaultRegistry.providers {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result
}
