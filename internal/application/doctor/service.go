package doctor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

// InterpreterProbe reports what the configured Python provides.
type InterpreterProbe interface {
	Version(ctx context.Context) (string, error)
	PipVersion(ctx context.Context) (string, error)
}

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Interpreter    InterpreterProbe
	Policy         ports.PackagePolicy
	History        ports.HistoryRepository

	// LookupEnv defaults to os.Getenv.
	LookupEnv func(string) string
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded %s", cfg.ConfigFormatVersion)))

	if s.Interpreter != nil {
		if version, err := s.Interpreter.Version(ctx); err != nil {
			checks = append(checks, fail("Python", err.Error()))
		} else {
			checks = append(checks, ok("Python", version))
		}
		if version, err := s.Interpreter.PipVersion(ctx); err != nil {
			checks = append(checks, warn("pip", "unavailable; missing packages cannot be installed"))
		} else {
			checks = append(checks, ok("pip", firstField(version, 2)))
		}
	} else {
		checks = append(checks, warn("Python", "interpreter probe not initialized"))
	}

	if s.Policy != nil {
		if v := s.Policy.Evaluate("git+https://example.invalid/pkg.git"); v.Allowed {
			checks = append(checks, warn("Package policy", "VCS references are not blocked"))
		} else {
			checks = append(checks, ok("Package policy", "rules loaded"))
		}
	}

	checks = append(checks, s.credentialChecks(cfg)...)

	if s.History != nil {
		if _, err := s.History.Recent(ctx, 1); err != nil {
			checks = append(checks, warn("History", err.Error()))
		} else {
			checks = append(checks, ok("History", "store readable"))
		}
	} else {
		checks = append(checks, warn("History", "disabled"))
	}

	return domain.HealthReport{Checks: checks}, nil
}

// credentialChecks fails on the default provider's key and only warns on the others.
func (s *Service) credentialChecks(cfg domain.Config) []domain.HealthCheck {
	lookup := s.LookupEnv
	if lookup == nil {
		lookup = os.Getenv
	}
	var checks []domain.HealthCheck
	for _, provider := range cfg.Providers {
		name := "Provider " + provider.Name
		isDefault := strings.EqualFold(provider.Name, cfg.DefaultProvider)
		switch {
		case !provider.RequiresCredential():
			checks = append(checks, ok(name, "no credential required"))
		case lookup(provider.AuthEnvVar) != "":
			checks = append(checks, ok(name, provider.AuthEnvVar+" set"))
		case isDefault:
			checks = append(checks, fail(name, provider.AuthEnvVar+" missing (default provider)"))
		default:
			checks = append(checks, warn(name, provider.AuthEnvVar+" missing"))
		}
	}
	return checks
}

func firstField(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) < n {
		return s
	}
	return strings.Join(fields[:n], " ")
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
