package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
)

// isolate points config and history at a temp home.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("CODEREFACTOR_CONFIG", filepath.Join(home, ".coderefactor", "config.yaml"))
	return home
}

func execute(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	prev := lookupEnv
	lookupEnv = func(key string) string { return env[key] }
	t.Cleanup(func() { lookupEnv = prev })

	var stdout, stderr bytes.Buffer
	root := NewRootCmd(Options{Stdin: strings.NewReader(""), Stdout: &stdout, Stderr: &stderr})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestRootExitCodes(t *testing.T) {
	home := isolate(t)
	existing := filepath.Join(home, "prog.py")
	require.NoError(t, os.WriteFile(existing, []byte("print(1)\n"), 0o644))

	tests := []struct {
		name   string
		env    map[string]string
		args   []string
		expect int
	}{
		{name: "missing file argument", args: []string{}, expect: domain.ExitUsage},
		{name: "two files", args: []string{"a.py", "b.py"}, expect: domain.ExitUsage},
		{name: "unknown flag", args: []string{"--nope", existing}, expect: domain.ExitUsage},
		{name: "basic with expert", args: []string{"--basic", "--expert", existing}, expect: domain.ExitUsage},
		{name: "unknown provider", env: map[string]string{"OPENAI_API_KEY": "k"}, args: []string{"--llm-provider", "nope", existing}, expect: domain.ExitUsage},
		{name: "missing credential wins over missing input", args: []string{filepath.Join(home, "absent.py")}, expect: domain.ExitMissingCredential},
		{name: "missing input", env: map[string]string{"OPENAI_API_KEY": "k"}, args: []string{filepath.Join(home, "absent.py")}, expect: domain.ExitInputNotFound},
		{name: "directory input", env: map[string]string{"OPENAI_API_KEY": "k"}, args: []string{home}, expect: domain.ExitInputNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.env, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.expect, domain.ExitCodeOf(err))
		})
	}
}

func TestRejectedRunLeavesNoFiles(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		expect int
	}{
		{name: "missing credential", expect: domain.ExitMissingCredential},
		{name: "missing input", env: map[string]string{"OPENAI_API_KEY": "k"}, expect: domain.ExitInputNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := isolate(t)
			_, err := execute(t, tt.env, filepath.Join(home, "absent.py"))
			require.Error(t, err)
			assert.Equal(t, tt.expect, domain.ExitCodeOf(err))

			appDir := filepath.Join(home, ".coderefactor")
			assert.NoFileExists(t, filepath.Join(appDir, "config.yaml"))
			assert.NoFileExists(t, filepath.Join(appDir, "history.db"))
			assert.NoDirExists(t, appDir)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "coderefactor version")
}

func TestConfigPathCommand(t *testing.T) {
	home := isolate(t)
	out, err := execute(t, nil, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".coderefactor", "config.yaml"), strings.TrimSpace(out))
}

func TestHistoryCommandEmpty(t *testing.T) {
	isolate(t)
	out, err := execute(t, nil, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No history recorded yet.")

	out, err = execute(t, nil, "history", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(out))

	_, err = execute(t, nil, "history", "-o", "xml")
	require.Error(t, err)
	assert.Equal(t, domain.ExitUsage, domain.ExitCodeOf(err))
}

func TestRenderHistoryFormats(t *testing.T) {
	records := []domain.RunRecord{{
		ID:         "abc",
		Timestamp:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		SourcePath: "main.py",
		Mode:       "expert",
		Model:      "gpt-5",
		Stage:      "done",
		ExitCode:   6,
	}}

	var human bytes.Buffer
	require.NoError(t, renderHistory(&human, records, outputHuman))
	assert.Contains(t, human.String(), "main.py")
	assert.Contains(t, human.String(), "gpt-5")

	var js bytes.Buffer
	require.NoError(t, renderHistory(&js, records, outputJSON))
	assert.Contains(t, js.String(), `"abc"`)

	var ym bytes.Buffer
	require.NoError(t, renderHistory(&ym, records, outputYAML))
	assert.Contains(t, ym.String(), "abc")
}

func TestPrompter(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		autoConfirm bool
		expect      bool
		enabled     bool
	}{
		{name: "yes", input: "y\n", expect: true},
		{name: "full yes", input: "YES\n", expect: true},
		{name: "no", input: "n\n", expect: false},
		{name: "empty", input: "\n", expect: false},
		{name: "eof", input: "", expect: false},
		{name: "auto confirm", input: "", autoConfirm: true, expect: true, enabled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out, tt.autoConfirm)

			ok, err := p.ConfirmInstall([]string{"requests", "numpy"})
			require.NoError(t, err)
			assert.Equal(t, tt.expect, ok)
			assert.Equal(t, tt.enabled, p.Enabled())
			assert.Contains(t, out.String(), " - requests")
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestPrompterReadError(t *testing.T) {
	p := NewPrompter(failingReader{}, &bytes.Buffer{}, false)
	_, err := p.ConfirmInstall([]string{"x"})
	assert.Error(t, err)
}

func TestRenderReport(t *testing.T) {
	var out bytes.Buffer
	RenderReport(&out, domain.AnalysisReport{
		SourcePath:      "main.py",
		Mode:            domain.ModeBasic,
		Provider:        "openai",
		Model:           "gpt-5-mini",
		Trail:           []domain.Stage{domain.StageDependencyResolved},
		Syntax:          domain.SyntaxResult{OK: true},
		Runtime:         &domain.RuntimeResult{OK: false, ErrorMessage: "ZeroDivisionError: division by zero"},
		Semantic:        &domain.SemanticResult{AnalysisText: "Division by zero on line 1."},
		Installs:        domain.InstallOutcome{"requests": {Status: domain.InstallFailed, Detail: "no network"}},
		Notes:           []string{"refactored code was not written"},
		ReportPath:      "main_report.txt",
		Elapsed:         61500 * time.Millisecond,
		RefactorPath:    "out.py",
		RefactorWritten: false,
	})

	text := out.String()
	assert.Contains(t, text, "Basic analysis of main.py")
	assert.Contains(t, text, "Runtime check: FAILED: ZeroDivisionError: division by zero")
	assert.Contains(t, text, "Division by zero on line 1.")
	assert.Contains(t, text, "Package requests: failed: no network")
	assert.Contains(t, text, "Report saved to main_report.txt")
	assert.Contains(t, text, "1 minutes and 1.50 seconds")
	assert.NotContains(t, text, "written to out.py")
}
