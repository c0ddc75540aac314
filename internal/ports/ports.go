// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The analysis pipeline in internal/application depends only on these
// contracts. Concrete adapters (Python probe, sandboxed runner, pip installer,
// HTTP model providers, report and history stores) live under
// internal/infrastructure and are wired together in internal/app.
package ports

import (
	"context"
	"time"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.coderefactor/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// SyntaxChecker parses Python source with the language's own grammar.
// A parse failure is returned as data; the error is reserved for an
// unusable interpreter.
type SyntaxChecker interface {
	Check(ctx context.Context, src domain.SourceFile) (domain.SyntaxResult, error)
}

// RuntimeChecker executes the source in a subordinate process with a hard timeout.
type RuntimeChecker interface {
	Check(ctx context.Context, src domain.SourceFile, timeout time.Duration) domain.RuntimeResult
}

// DependencyScanner returns third-party imports in code that are not resolvable
// in the current environment. baseDirs are searched for local modules.
type DependencyScanner interface {
	Scan(ctx context.Context, code string, baseDirs ...string) (domain.DependencySet, error)
}

// PackageInstaller installs packages one at a time behind a confirmation gate.
// The outcome always covers every requested name.
type PackageInstaller interface {
	Install(ctx context.Context, names []string) domain.InstallOutcome
}

// ConfirmationPrompter asks the user before the host environment is changed.
type ConfirmationPrompter interface {
	ConfirmInstall(packages []string) (bool, error)
	Enabled() bool
}

// PackagePolicy vets a package name before an installer process is spawned.
type PackagePolicy interface {
	Evaluate(name string) domain.PackageVerdict
}

// SemanticAnalyzer asks a model backend for analysis and optional refactored code.
type SemanticAnalyzer interface {
	Analyze(ctx context.Context, req domain.SemanticRequest) (domain.SemanticResult, error)
}

// ProviderFactory builds model providers from provider definitions.
type ProviderFactory interface {
	ForProvider(domain.ProviderDefinition) (Provider, error)
}

// Provider sends one completion request to a model backend.
// Errors are *domain.BackendError.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// CompletionRequest is the minimal provider contract: instructions plus code.
type CompletionRequest struct {
	Model  string
	System string
	User   string
}

// CompletionResponse carries the raw reply text.
type CompletionResponse struct {
	Text  string
	Model string
}

// ReportWriter persists the final report and returns the written path.
type ReportWriter interface {
	Write(report domain.AnalysisReport, dir string) (string, error)
}

// HistoryRepository stores one record per pipeline run.
type HistoryRepository interface {
	Record(ctx context.Context, rec domain.RunRecord) error
	Recent(ctx context.Context, limit int) ([]domain.RunRecord, error)
	Clear(ctx context.Context) error
}

// Progress shows that a long stage is running.
type Progress interface {
	Start(message string)
	Stop()
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
