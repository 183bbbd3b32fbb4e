package parser

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"invoicerecon/internal/config"
	"invoicerecon/internal/port"
)

// ProviderFactory creates an Extractor from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.Extractor, error)

// registry of provider factories, populated by init() in each provider package.
var (
	providersMu sync.RWMutex
	providers   = map[string]ProviderFactory{}
)

// RegisterProvider registers an extraction provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = factory
}

// Providers lists the registered provider names.
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewExtractor creates an Extractor from a provider config using the registered factory.
func NewExtractor(cfg *config.ParserProviderConfig) (port.Extractor, error) {
	providersMu.RLock()
	factory, ok := providers[cfg.Provider]
	providersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown parser provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewChain builds the extractor used by the server and batch runner: the
// primary provider, a fallback to the secondary when one is configured, and
// retries with backoff around both.
func NewChain(cfg *config.ParserConfig, retry config.RetryConfig, log zerolog.Logger) (port.Extractor, error) {
	primary, err := NewExtractor(cfg.PrimaryConfig())
	if err != nil {
		return nil, fmt.Errorf("primary parser: %w", err)
	}

	ex := primary
	if secondaryCfg := cfg.SecondaryConfig(); secondaryCfg != nil {
		secondary, err := NewExtractor(secondaryCfg)
		if err != nil {
			return nil, fmt.Errorf("secondary parser: %w", err)
		}
		ex = NewFallbackExtractor(
			[]port.Extractor{primary, secondary},
			[]string{cfg.Primary.Provider, secondaryCfg.Provider},
			log,
		)
	}

	return NewRetryingExtractor(ex, PolicyFromConfig(retry), log), nil
}
