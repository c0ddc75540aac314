package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/app"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
)

const (
	outputHuman = "human"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

var errHistoryDisabled = errors.New("history is disabled (history.enabled: false)")

func buildContainer(cmd *cobra.Command, opts Options, global *globalFlags) (*app.Container, error) {
	return app.BuildContainer(cmd.Context(), app.Settings{
		ConfigPath: global.configPath,
		Verbose:    global.verbose,
		LogWriter:  opts.Stderr,
	})
}

func newHistoryCommand(opts Options, global *globalFlags) *cobra.Command {
	var (
		limit  int
		output string
	)

	list := func(cmd *cobra.Command, args []string) error {
		container, err := buildContainer(cmd, opts, global)
		if err != nil {
			return err
		}
		defer container.Close()
		if container.HistoryStore == nil {
			return errHistoryDisabled
		}
		records, err := container.HistoryStore.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return renderHistory(cmd.OutOrStdout(), records, output)
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past runs",
		Args:  cobra.NoArgs,
		RunE:  list,
	}
	historyCmd.PersistentFlags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show")
	historyCmd.PersistentFlags().StringVarP(&output, "output", "o", outputHuman, "Output format: human|json|yaml")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE:  list,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer(cmd, opts, global)
			if err != nil {
				return err
			}
			defer container.Close()
			if container.HistoryStore == nil {
				return errHistoryDisabled
			}
			if err := container.HistoryStore.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}

	historyCmd.AddCommand(listCmd, clearCmd)
	return historyCmd
}

func renderHistory(out io.Writer, records []domain.RunRecord, format string) error {
	switch strings.ToLower(format) {
	case outputJSON:
		if records == nil {
			records = []domain.RunRecord{}
		}
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case outputYAML:
		data, err := yaml.Marshal(records)
		if err != nil {
			return err
		}
		fmt.Fprint(out, string(data))
	case outputHuman, "":
		if len(records) == 0 {
			fmt.Fprintln(out, "No history recorded yet.")
			return nil
		}
		for _, rec := range records {
			exit := okColor.Sprintf("%d", rec.ExitCode)
			if rec.ExitCode != domain.ExitOK {
				exit = failColor.Sprintf("%d", rec.ExitCode)
			}
			fmt.Fprintf(out, "%s | %s | %s | %s | exit %s | %s\n",
				rec.Timestamp.Local().Format(time.RFC3339),
				rec.Mode,
				rec.Model,
				rec.Stage,
				exit,
				rec.SourcePath)
		}
	default:
		return &domain.UsageError{Message: fmt.Sprintf("unknown output format %q (expected human, json or yaml)", format)}
	}
	return nil
}

func newConfigCommand(opts Options, global *globalFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer(cmd, opts, global)
			if err != nil {
				return err
			}
			defer container.Close()
			data, err := yaml.Marshal(container.Config)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer(cmd, opts, global)
			if err != nil {
				return err
			}
			defer container.Close()
			fmt.Fprintln(cmd.OutOrStdout(), container.ConfigLoader.Path())
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := buildContainer(cmd, opts, global)
			if err != nil {
				return err
			}
			defer container.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration valid")
			return nil
		},
	}

	configCmd.AddCommand(showCmd, pathCmd, validateCmd)
	return configCmd
}
