package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/app"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/pkg/filesystem"
)

// Options holds CLI-level I/O. Nil fields default to the process streams.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (o Options) withDefaults() Options {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	return o
}

// lookupEnv is replaced in tests.
var lookupEnv = os.Getenv

type globalFlags struct {
	configPath string
	verbose    bool
}

type analyzeFlags struct {
	refactorOutput string
	basic          bool
	expert         bool
	model          string
	provider       string
	timeout        time.Duration
	yes            bool
	failOnRuntime  bool
	reportDir      string
	noHistory      bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(opts Options) *cobra.Command {
	opts = opts.withDefaults()
	global := &globalFlags{}
	flags := &analyzeFlags{}

	root := &cobra.Command{
		Use:   "coderefactor <file.py>",
		Short: "Analyze a Python program and optionally refactor it",
		Long: "coderefactor checks a Python file for syntax errors, runs it with a timeout, " +
			"asks a language model for a review and, with --basic or --expert, writes a refactored version.",
		Args: func(cmd *cobra.Command, args []string) error {
			switch len(args) {
			case 1:
				return nil
			case 0:
				fmt.Fprint(opts.Stderr, cmd.UsageString())
				return &domain.UsageError{Message: "missing input file"}
			default:
				return &domain.UsageError{Message: fmt.Sprintf("expected one input file, got %d arguments", len(args))}
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), opts, global, flags, args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(opts.Stdin)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &domain.UsageError{Message: err.Error()}
	})

	root.PersistentFlags().StringVar(&global.configPath, "config", "", "Config file (default ~/.coderefactor/config.yaml)")
	root.PersistentFlags().BoolVarP(&global.verbose, "verbose", "v", false, "Enable debug logging")

	f := root.Flags()
	f.StringVar(&flags.refactorOutput, "refactor-output", "", "Write refactored code to this path (requires --basic or --expert)")
	f.BoolVar(&flags.basic, "basic", false, "Beginner-friendly analysis with a minimal refactor")
	f.BoolVar(&flags.expert, "expert", false, "In-depth analysis with a performance-oriented refactor")
	f.StringVar(&flags.model, "llm", "", "Model name (default from the provider's per-mode table)")
	f.StringVar(&flags.provider, "llm-provider", "", "Provider name from the config file")
	f.DurationVar(&flags.timeout, "timeout", 0, "Runtime check timeout (default from config, 10s)")
	f.BoolVarP(&flags.yes, "yes", "y", false, "Install missing packages without asking")
	f.BoolVar(&flags.failOnRuntime, "fail-on-runtime-error", false, "Exit with status 1 when the program fails at runtime")
	f.StringVar(&flags.reportDir, "report-dir", "", "Directory for the report file (default: current directory)")
	f.BoolVar(&flags.noHistory, "no-history", false, "Do not record this run in history")

	root.AddCommand(newHistoryCommand(opts, global))
	root.AddCommand(newDoctorCommand(opts, global))
	root.AddCommand(newConfigCommand(opts, global))
	root.AddCommand(newVersionCommand())
	return root
}

func runAnalyze(ctx context.Context, opts Options, global *globalFlags, flags *analyzeFlags, path string) error {
	mode, err := domain.ModeFromFlags(flags.basic, flags.expert)
	if err != nil {
		return err
	}

	settings := app.Settings{
		ConfigPath: global.configPath,
		Verbose:    global.verbose,
		NoHistory:  flags.noHistory,
		LogWriter:  opts.Stderr,
		Prompter:   NewPrompter(opts.Stdin, opts.Stdout, flags.yes),
		Progress:   NewSpinner(opts.Stderr),
	}

	// Credential and input are checked before anything is written to disk.
	cfg, err := app.LoadConfig(ctx, settings)
	if err != nil {
		return err
	}
	provider, err := cfg.ResolveProvider(flags.provider)
	if err != nil {
		return err
	}
	if provider.RequiresCredential() && lookupEnv(provider.AuthEnvVar) == "" {
		return &domain.CredentialError{Provider: provider.Name, EnvVar: provider.AuthEnvVar}
	}

	src, err := readSource(path)
	if err != nil {
		return err
	}

	container, err := app.BuildContainer(ctx, settings)
	if err != nil {
		return err
	}
	defer container.Close()
	cfg = container.Config

	timeout := flags.timeout
	if timeout <= 0 {
		timeout = cfg.RuntimeTimeout()
	}
	reportDir := flags.reportDir
	if reportDir == "" {
		reportDir = cfg.Report.Dir
	}

	req := domain.AnalysisRequest{
		Source:             src,
		Mode:               mode,
		ModelID:            provider.ModelFor(mode, flags.model),
		ProviderID:         provider.Name,
		RefactorOutput:     filesystem.ExpandPath(flags.refactorOutput),
		RuntimeTimeout:     timeout,
		FailOnRuntimeError: flags.failOnRuntime,
		ReportDir:          filesystem.ExpandPath(reportDir),
	}

	report, err := container.AnalysisService.Run(ctx, req)
	if err != nil {
		return err
	}
	RenderReport(opts.Stdout, report)
	if report.ExitCode != domain.ExitOK {
		return &domain.ExitError{Code: report.ExitCode}
	}
	return nil
}

func readSource(path string) (domain.SourceFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.SourceFile{}, &domain.InputError{Path: path, Err: err}
	}
	if info.IsDir() {
		return domain.SourceFile{}, &domain.InputError{Path: path, Err: errors.New("is a directory")}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SourceFile{}, &domain.InputError{Path: path, Err: err}
	}
	return domain.SourceFile{Path: path, Text: string(data)}, nil
}
