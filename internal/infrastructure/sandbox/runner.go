// Package sandbox executes the checked program in a child process with a hard
// wall-clock timeout.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/pkg/process"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

// Runner implements ports.RuntimeChecker.
type Runner struct {
	interpreter    string
	maxOutputBytes int64
	logger         ports.Logger
}

// NewRunner creates a runner. maxOutputBytes caps each captured stream (0 means the default).
func NewRunner(interpreter string, maxOutputBytes int64, logger ports.Logger) *Runner {
	if interpreter == "" {
		interpreter = domain.DefaultInterpreter
	}
	if maxOutputBytes <= 0 {
		maxOutputBytes = domain.DefaultMaxOutputBytes
	}
	return &Runner{interpreter: interpreter, maxOutputBytes: maxOutputBytes, logger: logger}
}

// Check runs src and classifies the outcome. It never returns an error; every
// failure is recorded in the result.
func (r *Runner) Check(ctx context.Context, src domain.SourceFile, timeout time.Duration) domain.RuntimeResult {
	if timeout <= 0 {
		timeout = domain.DefaultRuntimeTimeout
	}

	tmpDir, err := os.MkdirTemp("", "coderefactor-run-*")
	if err != nil {
		return domain.RuntimeResult{OK: false, ExitCode: -1, ErrorMessage: fmt.Sprintf("create temp dir: %v", err)}
	}
	defer os.RemoveAll(tmpDir)

	script := filepath.Join(tmpDir, src.BaseName())
	if err := os.WriteFile(script, []byte(src.Text), domain.SecureFilePermissions); err != nil {
		return domain.RuntimeResult{OK: false, ExitCode: -1, ErrorMessage: fmt.Sprintf("write temp source: %v", err)}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	workDir := workingDir(src)
	cmd := exec.CommandContext(runCtx, r.interpreter, script)
	cmd.Dir = workDir
	cmd.Env = childEnv(workDir)
	stdout := &process.LimitedBuffer{Max: r.maxOutputBytes}
	stderr := &process.TailBuffer{Max: r.maxOutputBytes}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Stdin stays nil, which binds it to the null device.
	process.Isolate(cmd)

	start := time.Now()
	runErr := cmd.Run()
	result := domain.RuntimeResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	switch {
	case runErr == nil:
		result.OK = true
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		result.TimedOut = true
		result.ErrorMessage = fmt.Sprintf("execution timed out after %s", timeout)
	case ctx.Err() != nil:
		result.ErrorMessage = fmt.Sprintf("execution cancelled: %v", ctx.Err())
	case cmd.ProcessState == nil:
		result.ExitCode = -1
		result.ErrorMessage = fmt.Sprintf("start interpreter: %v", runErr)
	default:
		result.ErrorMessage = failureMessage(result.Stderr, result.ExitCode)
	}

	if r.logger != nil {
		r.logger.Debug("runtime check finished", map[string]interface{}{
			"ok":        result.OK,
			"exit_code": result.ExitCode,
			"timed_out": result.TimedOut,
			"duration":  result.Duration.String(),
		})
	}
	return result
}

func workingDir(src domain.SourceFile) string {
	dir := src.Dir()
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return os.TempDir()
	}
	return dir
}

func childEnv(sourceDir string) []string {
	env := os.Environ()
	pythonPath := sourceDir
	if existing := os.Getenv("PYTHONPATH"); existing != "" {
		pythonPath = sourceDir + string(os.PathListSeparator) + existing
	}
	return append(env,
		"PYTHONPATH="+pythonPath,
		"PYTHONUNBUFFERED=1",
		"PYTHONDONTWRITEBYTECODE=1",
	)
}

// failureMessage picks the final exception line of a traceback, else the
// last stderr line, else the exit status.
func failureMessage(stderr string, exitCode int) string {
	lines := strings.Split(strings.TrimRight(stderr, "\r\n"), "\n")
	inTraceback := false
	exception, last := "", ""
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		last = trimmed
		if strings.HasPrefix(line, "Traceback (most recent call last):") {
			inTraceback = true
			continue
		}
		if !inTraceback || strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			continue
		}
		if strings.HasPrefix(trimmed, "During handling of") || strings.HasPrefix(trimmed, "The above exception") {
			continue
		}
		exception = trimmed
	}
	switch {
	case exception != "":
		return exception
	case last != "":
		return last
	default:
		return fmt.Sprintf("exit status %d", exitCode)
	}
}

var _ ports.RuntimeChecker = (*Runner)(nil)
