// Package dependency finds third-party imports that the current environment
// cannot resolve.
package dependency

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/infrastructure/python"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

// ModuleResolver extracts imports and asks the interpreter what is importable.
// *python.Probe implements it.
type ModuleResolver interface {
	Imports(ctx context.Context, code string) ([]python.Import, error)
	Resolve(ctx context.Context, names []string) (python.Resolution, error)
}

// Scanner implements ports.DependencyScanner.
type Scanner struct {
	resolver ModuleResolver
	aliases  map[string]string
	ignore   map[string]struct{}
	logger   ports.Logger
}

// NewScanner creates a scanner. aliases map an import name to the package that
// provides it; ignore lists import names never reported as missing.
func NewScanner(resolver ModuleResolver, settings domain.DependencySettings, logger ports.Logger) *Scanner {
	ignore := make(map[string]struct{}, len(settings.Ignore))
	for _, name := range settings.Ignore {
		ignore[name] = struct{}{}
	}
	return &Scanner{
		resolver: resolver,
		aliases:  settings.Aliases,
		ignore:   ignore,
		logger:   logger,
	}
}

// Scan returns the missing third-party modules referenced by code, mapped to
// installable package names. Local modules found in baseDirs are excluded.
func (s *Scanner) Scan(ctx context.Context, code string, baseDirs ...string) (domain.DependencySet, error) {
	missing := domain.DependencySet{}

	imports, err := s.resolver.Imports(ctx, code)
	if err != nil {
		return missing, fmt.Errorf("extract imports: %w", err)
	}

	candidates := s.candidates(imports, baseDirs)
	if len(candidates) == 0 {
		return missing, nil
	}

	resolution, err := s.resolver.Resolve(ctx, candidates)
	if err != nil {
		return missing, fmt.Errorf("resolve modules: %w", err)
	}
	known := make(map[string]struct{}, len(resolution.Stdlib)+len(resolution.Installed))
	for _, name := range resolution.Stdlib {
		known[name] = struct{}{}
	}
	for _, name := range resolution.Installed {
		known[name] = struct{}{}
	}

	for _, module := range candidates {
		if _, ok := known[module]; ok {
			continue
		}
		missing.Add(module, s.packageFor(module))
	}

	if s.logger != nil {
		s.logger.Debug("dependency scan finished", map[string]interface{}{
			"imports": len(imports),
			"missing": missing.Modules(),
		})
	}
	return missing, nil
}

// candidates filters imports down to sorted, distinct top-level names that
// could be third-party packages.
func (s *Scanner) candidates(imports []python.Import, baseDirs []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, imp := range imports {
		if imp.Relative() {
			continue
		}
		name := imp.TopLevel()
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		if python.IsStdlib(name) {
			continue
		}
		if _, ignored := s.ignore[name]; ignored {
			continue
		}
		if isLocalModule(name, baseDirs) {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *Scanner) packageFor(module string) string {
	if pkg, ok := s.aliases[module]; ok && pkg != "" {
		return pkg
	}
	return module
}

// isLocalModule reports whether name is a module or package living in one of dirs.
func isLocalModule(name string, dirs []string) bool {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		for _, candidate := range []string{name + ".py", name} {
			info, err := os.Stat(filepath.Join(dir, candidate))
			if err != nil {
				continue
			}
			if candidate == name && !info.IsDir() {
				continue
			}
			return true
		}
	}
	return false
}

var _ ports.DependencyScanner = (*Scanner)(nil)
