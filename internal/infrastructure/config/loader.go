package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Endromia-9027/CodeRefactorGPT/assets"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/pkg/filesystem"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "CODEREFACTOR_CONFIG"

// FileLoader loads YAML configuration from ~/.coderefactor/config.yaml
// (overridable via CODEREFACTOR_CONFIG or an explicit path).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is created from the
// embedded defaults.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	cfg, exists, err := l.read()
	if err != nil {
		return domain.Config{}, err
	}
	if !exists {
		if err := writeDefault(l.Path()); err != nil {
			return domain.Config{}, err
		}
	}
	return cfg, nil
}

// Peek loads the configuration like Load but never touches the filesystem
// beyond reading; a missing file yields the embedded defaults.
func (l *FileLoader) Peek(context.Context) (domain.Config, error) {
	cfg, _, err := l.read()
	return cfg, err
}

func (l *FileLoader) read() (domain.Config, bool, error) {
	path := l.Path()
	defaults, err := DefaultConfig()
	if err != nil {
		return domain.Config{}, false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return domain.Config{}, false, fmt.Errorf("read config %s: %w", path, err)
		}
		return hydrateDefaults(defaults, defaults), false, nil
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, true, fmt.Errorf("parse config %s: %w", path, err)
	}
	return hydrateDefaults(cfg, defaults), true, nil
}

// Path returns the file Load reads.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.AppDir(), "config.yaml")
}

// DefaultConfig parses the embedded default configuration.
func DefaultConfig() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse default config: %w", err)
	}
	return cfg, nil
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// hydrateDefaults fills sections the user left empty.
func hydrateDefaults(cfg, defaults domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = defaults.ConfigFormatVersion
	}
	if len(cfg.Providers) == 0 {
		cfg.Providers = defaults.Providers
	}
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = defaults.DefaultProvider
		if !cfg.HasProvider(cfg.DefaultProvider) && len(cfg.Providers) > 0 {
			cfg.DefaultProvider = cfg.Providers[0].Name
		}
	}
	if cfg.Python.Interpreter == "" {
		cfg.Python.Interpreter = defaults.Python.Interpreter
	}
	if cfg.Python.RuntimeTimeoutSeconds == 0 {
		cfg.Python.RuntimeTimeoutSeconds = defaults.Python.RuntimeTimeoutSeconds
	}
	if cfg.Python.MaxOutputBytes == 0 {
		cfg.Python.MaxOutputBytes = defaults.Python.MaxOutputBytes
	}
	if cfg.Backend == (domain.BackendSettings{}) {
		cfg.Backend = defaults.Backend
	}
	if cfg.Dependencies.InstallTimeoutSeconds == 0 {
		cfg.Dependencies.InstallTimeoutSeconds = defaults.Dependencies.InstallTimeoutSeconds
	}
	if cfg.Dependencies.Aliases == nil {
		cfg.Dependencies.Aliases = defaults.Dependencies.Aliases
	}
	if cfg.Security.RulesFile == "" {
		cfg.Security.RulesFile = defaults.Security.RulesFile
	}
	if cfg.History.Path == "" {
		cfg.History.Path = defaults.History.Path
	}
	cfg.Security.RulesFile = filesystem.ExpandPath(cfg.Security.RulesFile)
	cfg.History.Path = filesystem.ExpandPath(cfg.History.Path)
	cfg.Report.Dir = filesystem.ExpandPath(cfg.Report.Dir)
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
