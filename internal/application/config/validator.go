package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if len(cfg.Providers) == 0 {
		return errors.New("at least one provider must be configured")
	}
	seen := make(map[string]struct{}, len(cfg.Providers))
	for _, provider := range cfg.Providers {
		if err := validateProvider(provider); err != nil {
			return err
		}
		key := strings.ToLower(provider.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("provider %s is declared twice", provider.Name)
		}
		seen[key] = struct{}{}
	}
	if !cfg.HasProvider(cfg.DefaultProvider) {
		return fmt.Errorf("default provider %s not found in providers list", cfg.DefaultProvider)
	}
	if err := validatePython(cfg.Python); err != nil {
		return err
	}
	if err := validateBackend(cfg.Backend); err != nil {
		return err
	}
	if err := validateDependencies(cfg.Dependencies); err != nil {
		return err
	}
	return nil
}

func validateProvider(p domain.ProviderDefinition) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("providers[].name must be set")
	}
	switch p.APIStyle {
	case domain.APIStyleOpenAI, domain.APIStyleAnthropic, "":
	default:
		return fmt.Errorf("provider %s: api_style must be openai|anthropic, got %s", p.Name, p.APIStyle)
	}
	u, err := url.Parse(p.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("provider %s: endpoint %q is not an absolute URL", p.Name, p.Endpoint)
	}
	if p.Models.Fast == "" && p.Models.Strong == "" {
		return fmt.Errorf("provider %s: models.fast or models.strong must be set", p.Name)
	}
	if p.MaxTokens < 0 {
		return fmt.Errorf("provider %s: max_tokens must be >= 0", p.Name)
	}
	if p.RequestsPerMinute < 0 {
		return fmt.Errorf("provider %s: requests_per_minute must be >= 0", p.Name)
	}
	return nil
}

func validatePython(py domain.PythonSettings) error {
	if py.RuntimeTimeoutSeconds < 0 {
		return fmt.Errorf("python.runtime_timeout_seconds must be >= 0")
	}
	if py.MaxOutputBytes < 0 {
		return fmt.Errorf("python.max_output_bytes must be >= 0")
	}
	return nil
}

func validateBackend(b domain.BackendSettings) error {
	if b.RequestTimeoutSeconds < 0 || b.RetryDelaySeconds < 0 || b.MaxRetryDelaySeconds < 0 {
		return fmt.Errorf("backend timeouts must be >= 0")
	}
	return nil
}

func validateDependencies(d domain.DependencySettings) error {
	if d.InstallTimeoutSeconds < 0 {
		return fmt.Errorf("dependencies.install_timeout_seconds must be >= 0")
	}
	for module, pkg := range d.Aliases {
		if strings.TrimSpace(module) == "" || strings.TrimSpace(pkg) == "" {
			return fmt.Errorf("dependencies.aliases entries must have a module and a package")
		}
	}
	return nil
}
