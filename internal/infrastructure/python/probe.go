// Package python talks to the configured Python interpreter through the
// embedded probe script: syntax checks, import extraction and module resolution.
package python

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/Endromia-9027/CodeRefactorGPT/assets"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/pkg/process"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

// Probe modes understood by assets/python/probe.py.
const (
	modeSyntax  = "syntax"
	modeImports = "imports"
	modeResolve = "resolve"
)

// Probe runs the embedded helper script with an interpreter.
type Probe struct {
	interpreter string
	script      string
	timeout     time.Duration
	logger      ports.Logger
}

// NewProbe creates a probe for interpreter (python3 when empty).
func NewProbe(interpreter string, logger ports.Logger) *Probe {
	if interpreter == "" {
		interpreter = domain.DefaultInterpreter
	}
	return &Probe{
		interpreter: interpreter,
		script:      string(assets.ProbeScript),
		timeout:     domain.DefaultProbeTimeout,
		logger:      logger,
	}
}

// Interpreter returns the interpreter command.
func (p *Probe) Interpreter() string {
	return p.interpreter
}

// Version returns the interpreter's "Python X.Y.Z" banner.
func (p *Probe) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, p.interpreter, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("run %s --version: %w", p.interpreter, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// PipVersion returns the banner of the interpreter's pip module.
func (p *Probe) PipVersion(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, p.interpreter, "-m", "pip", "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("run %s -m pip --version: %w", p.interpreter, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// run executes the probe in mode with input on stdin and decodes its JSON output into v.
func (p *Probe) run(ctx context.Context, mode, input string, v interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// With -c, sys.path[0] is the working directory. An empty private
	// directory keeps stray modules in the caller's cwd or the shared temp
	// dir from resolving as installed packages.
	workDir, err := os.MkdirTemp("", "coderefactor-probe-*")
	if err != nil {
		return fmt.Errorf("python probe %s: create work dir: %w", mode, err)
	}
	defer os.RemoveAll(workDir)

	cmd := exec.CommandContext(ctx, p.interpreter, "-c", p.script, mode)
	cmd.Stdin = strings.NewReader(input)
	cmd.Dir = workDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	process.Isolate(cmd)

	start := time.Now()
	err = cmd.Run()
	if p.logger != nil {
		p.logger.Debug("python probe finished", map[string]interface{}{
			"mode":     mode,
			"duration": time.Since(start).String(),
		})
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("python probe %s: %w", mode, err)
		}
		return fmt.Errorf("python probe %s: %w: %s", mode, err, msg)
	}
	if err := json.Unmarshal(stdout.Bytes(), v); err != nil {
		return fmt.Errorf("decode python probe %s output: %w", mode, err)
	}
	return nil
}
