package domain

// Config mirrors ~/.coderefactor/config.yaml.
type Config struct {
	ConfigFormatVersion string               `yaml:"config_format_version"`
	DefaultProvider     string               `yaml:"default_provider"`
	Providers           []ProviderDefinition `yaml:"providers"`
	Python              PythonSettings       `yaml:"python"`
	Backend             BackendSettings      `yaml:"backend"`
	Dependencies        DependencySettings   `yaml:"dependencies"`
	Security            SecuritySettings     `yaml:"security"`
	History             HistorySettings      `yaml:"history"`
	Report              ReportSettings       `yaml:"report"`
}

// PythonSettings configures the interpreter used for syntax, runtime and import checks.
type PythonSettings struct {
	Interpreter           string `yaml:"interpreter"`
	RuntimeTimeoutSeconds int    `yaml:"runtime_timeout_seconds"`
	MaxOutputBytes        int64  `yaml:"max_output_bytes"`
}

// BackendSettings controls model request behaviour.
type BackendSettings struct {
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
	RetryDelaySeconds     int `yaml:"retry_delay_seconds"`
	MaxRetryDelaySeconds  int `yaml:"max_retry_delay_seconds"`
}

// DependencySettings configures the dependency scanner and installer.
type DependencySettings struct {
	InstallCommand        []string          `yaml:"install_command"`
	InstallTimeoutSeconds int               `yaml:"install_timeout_seconds"`
	Aliases               map[string]string `yaml:"aliases"`
	Ignore                []string          `yaml:"ignore"`
}

// SecuritySettings points at the package policy rules.
type SecuritySettings struct {
	RulesFile string `yaml:"rules_file"`
}

// HistorySettings configures the run history database.
type HistorySettings struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Path    string `yaml:"path"`
}

// IsEnabled reports whether runs are recorded. History is on unless disabled explicitly.
func (h HistorySettings) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// ReportSettings configures where report files go.
type ReportSettings struct {
	Dir string `yaml:"dir"`
}
