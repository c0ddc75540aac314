package domain

import (
	"fmt"
	"strings"
	"time"
)

// FindProvider searches for a provider by name (case-insensitive).
func (c *Config) FindProvider(name string) (ProviderDefinition, bool) {
	for _, provider := range c.Providers {
		if strings.EqualFold(provider.Name, name) {
			return provider, true
		}
	}
	return ProviderDefinition{}, false
}

// HasProvider checks if a provider with the given name exists in the configuration.
func (c *Config) HasProvider(name string) bool {
	_, exists := c.FindProvider(name)
	return exists
}

// ResolveProvider returns the override provider when set, otherwise the default one.
func (c *Config) ResolveProvider(override string) (ProviderDefinition, error) {
	name := strings.TrimSpace(override)
	if name == "" {
		name = c.DefaultProvider
	}
	if name == "" {
		return ProviderDefinition{}, &UsageError{Message: "no default provider configured"}
	}
	provider, ok := c.FindProvider(name)
	if !ok {
		return ProviderDefinition{}, &UsageError{
			Message: fmt.Sprintf("unsupported provider %q (configured: %s)", name, strings.Join(c.ProviderNames(), ", ")),
		}
	}
	return provider, nil
}

// ProviderNames lists configured provider names in declaration order.
func (c *Config) ProviderNames() []string {
	names := make([]string, 0, len(c.Providers))
	for _, provider := range c.Providers {
		names = append(names, provider.Name)
	}
	return names
}

// AddProvider adds a new provider to the configuration.
// Returns an error if a provider with the same name already exists.
func (c *Config) AddProvider(provider ProviderDefinition) error {
	if c.HasProvider(provider.Name) {
		return fmt.Errorf("provider with name %s already exists", provider.Name)
	}
	c.Providers = append(c.Providers, provider)
	return nil
}

// RuntimeTimeout is the wall-clock budget for the runtime check.
func (c *Config) RuntimeTimeout() time.Duration {
	return secondsOr(c.Python.RuntimeTimeoutSeconds, DefaultRuntimeTimeout)
}

// RequestTimeout is the HTTP timeout for a single model request.
func (c *Config) RequestTimeout() time.Duration {
	return secondsOr(c.Backend.RequestTimeoutSeconds, DefaultRequestTimeout)
}

// RetryDelay is the wait before the single retry when the backend gives no Retry-After.
func (c *Config) RetryDelay() time.Duration {
	return secondsOr(c.Backend.RetryDelaySeconds, DefaultRetryDelay)
}

// MaxRetryDelay caps a server-provided Retry-After.
func (c *Config) MaxRetryDelay() time.Duration {
	return secondsOr(c.Backend.MaxRetryDelaySeconds, DefaultMaxRetryDelay)
}

// InstallTimeout is the per-package budget for the installer.
func (c *Config) InstallTimeout() time.Duration {
	return secondsOr(c.Dependencies.InstallTimeoutSeconds, DefaultInstallTimeout)
}

// Interpreter returns the configured Python interpreter command.
func (c *Config) Interpreter() string {
	if c.Python.Interpreter == "" {
		return DefaultInterpreter
	}
	return c.Python.Interpreter
}

func secondsOr(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
