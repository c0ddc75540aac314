// Package ai talks to language-model backends.
//
//   - Factory builds one HTTP provider per configured backend
//   - httpProvider sends a single completion request and classifies failures
//   - Analyzer renders the mode instruction, retries once and parses the reply
package ai

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

// Factory creates providers. It shares one HTTP client and keeps one rate
// limiter per provider name.
type Factory struct {
	httpClient *http.Client
	logger     ports.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewFactory creates a factory whose HTTP client gives up after requestTimeout.
func NewFactory(requestTimeout time.Duration, logger ports.Logger) *Factory {
	if requestTimeout <= 0 {
		requestTimeout = domain.DefaultRequestTimeout
	}
	return NewFactoryWithClient(&http.Client{Timeout: requestTimeout}, logger)
}

// NewFactoryWithClient uses the given HTTP client.
func NewFactoryWithClient(client *http.Client, logger ports.Logger) *Factory {
	return &Factory{
		httpClient: client,
		logger:     logger,
		limiters:   make(map[string]*rate.Limiter),
	}
}

// ForProvider implements ports.ProviderFactory.
func (f *Factory) ForProvider(def domain.ProviderDefinition) (ports.Provider, error) {
	if strings.TrimSpace(def.Endpoint) == "" {
		return nil, fmt.Errorf("provider %s has no endpoint", def.Name)
	}

	var adapter providerAdapter
	switch def.APIStyle {
	case domain.APIStyleOpenAI, "":
		adapter = openaiAdapter()
	case domain.APIStyleAnthropic:
		adapter = anthropicAdapter()
	default:
		return nil, fmt.Errorf("provider %s: unsupported api_style %q", def.Name, def.APIStyle)
	}

	return &httpProvider{
		def:        def,
		httpClient: f.httpClient,
		adapter:    adapter,
		limiter:    f.limiterFor(def),
		logger:     f.logger,
	}, nil
}

func (f *Factory) limiterFor(def domain.ProviderDefinition) *rate.Limiter {
	if def.RequestsPerMinute <= 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if limiter, ok := f.limiters[def.Name]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(def.RequestsPerMinute)), 1)
	f.limiters[def.Name] = limiter
	return limiter
}

var _ ports.ProviderFactory = (*Factory)(nil)
