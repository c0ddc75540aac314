package app

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/application/analysis"
	configapp "github.com/Endromia-9027/CodeRefactorGPT/internal/application/config"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/application/doctor"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/infrastructure/ai"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/infrastructure/config"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/infrastructure/dependency"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/infrastructure/history"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/infrastructure/installer"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/infrastructure/python"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/infrastructure/report"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/infrastructure/sandbox"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/infrastructure/security"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/pkg/logger"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

// Settings carries the CLI-level choices that shape the dependency graph.
type Settings struct {
	ConfigPath string
	Verbose    bool
	NoHistory  bool
	LogWriter  io.Writer

	// Prompter and Progress are presentation adapters owned by the CLI.
	Prompter ports.ConfirmationPrompter
	Progress ports.Progress
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config          domain.Config
	ConfigLoader    *config.FileLoader
	Logger          ports.Logger
	AnalysisService *analysis.Service
	DoctorService   *doctor.Service
	HistoryStore    ports.HistoryRepository
}

// LoadConfig reads and validates configuration without creating any file, so
// callers can reject a run before the first write.
func LoadConfig(ctx context.Context, settings Settings) (domain.Config, error) {
	loader := config.NewFileLoader(settings.ConfigPath)
	cfg, err := loader.Peek(ctx)
	if err != nil {
		return domain.Config{}, err
	}
	if err := configapp.Validate(cfg); err != nil {
		return domain.Config{}, fmt.Errorf("invalid config %s: %w", loader.Path(), err)
	}
	return cfg, nil
}

// BuildContainer loads and validates configuration, then constructs the dependency graph.
func BuildContainer(ctx context.Context, settings Settings) (*Container, error) {
	log := logger.FromEnv(settings.LogWriter, settings.Verbose)

	cfgLoader := config.NewFileLoader(settings.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := configapp.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgLoader.Path(), err)
	}

	guard, err := security.NewPackageGuard(cfg.Security.RulesFile)
	if err != nil {
		log.Warn("package policy unreadable, using built-in rules", map[string]interface{}{
			"path":  cfg.Security.RulesFile,
			"error": err.Error(),
		})
		guard, err = security.NewPackageGuard("")
		if err != nil {
			return nil, err
		}
	}

	var historyStore ports.HistoryRepository
	if cfg.History.IsEnabled() && !settings.NoHistory {
		historyStore = history.Open(cfg.History.Path, log)
	}

	probe := python.NewProbe(cfg.Interpreter(), log)
	factory := ai.NewFactory(cfg.RequestTimeout(), log)

	analysisService := &analysis.Service{
		Syntax:   python.NewSyntaxChecker(probe),
		Runtime:  sandbox.NewRunner(cfg.Interpreter(), cfg.Python.MaxOutputBytes, log),
		Semantic: ai.NewAnalyzer(cfg, factory, log),
		Scanner:  dependency.NewScanner(probe, cfg.Dependencies, log),
		Installer: installer.NewPipInstaller(installer.Options{
			Command:     cfg.Dependencies.InstallCommand,
			Interpreter: cfg.Interpreter(),
			Timeout:     cfg.InstallTimeout(),
			Prompter:    settings.Prompter,
			Policy:      guard,
			Logger:      log,
		}),
		Reports:  report.NewTextWriter(),
		History:  historyStore,
		Progress: settings.Progress,
		Logger:   log,
		NewRunID: uuid.NewString,
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Interpreter:    probe,
		Policy:         guard,
		History:        historyStore,
	}

	return &Container{
		Config:          cfg,
		ConfigLoader:    cfgLoader,
		Logger:          log,
		AnalysisService: analysisService,
		DoctorService:   doctorService,
		HistoryStore:    historyStore,
	}, nil
}

// Close releases the history database, if one was opened.
func (c *Container) Close() error {
	if closer, ok := c.HistoryStore.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
