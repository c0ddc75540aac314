// Package installer installs missing packages with the platform package
// manager, one child process per package.
package installer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/pkg/process"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

// PipInstaller implements ports.PackageInstaller.
type PipInstaller struct {
	command  []string
	timeout  time.Duration
	prompter ports.ConfirmationPrompter
	policy   ports.PackagePolicy
	logger   ports.Logger
}

// Options configures a PipInstaller.
type Options struct {
	// Command is the argv prefix; the package name is appended.
	// Empty means "<interpreter> -m pip install".
	Command     []string
	Interpreter string
	Timeout     time.Duration
	Prompter    ports.ConfirmationPrompter
	Policy      ports.PackagePolicy
	Logger      ports.Logger
}

// NewPipInstaller builds an installer.
func NewPipInstaller(opts Options) *PipInstaller {
	command := opts.Command
	if len(command) == 0 {
		interpreter := opts.Interpreter
		if interpreter == "" {
			interpreter = domain.DefaultInterpreter
		}
		command = []string{interpreter, "-m", "pip", "install"}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultInstallTimeout
	}
	return &PipInstaller{
		command:  command,
		timeout:  timeout,
		prompter: opts.Prompter,
		policy:   opts.Policy,
		logger:   opts.Logger,
	}
}

// Install asks for confirmation once, then installs each package in turn.
// A failure never stops the remaining packages.
func (p *PipInstaller) Install(ctx context.Context, names []string) domain.InstallOutcome {
	outcome := domain.InstallOutcome{}
	pkgs := dedupeSorted(names)
	if len(pkgs) == 0 {
		return outcome
	}

	if ok, reason := p.confirm(pkgs); !ok {
		for _, name := range pkgs {
			outcome[name] = domain.InstallResult{Status: domain.InstallSkipped, Detail: reason}
		}
		return outcome
	}

	for _, name := range pkgs {
		if p.policy != nil {
			if verdict := p.policy.Evaluate(name); !verdict.Allowed {
				outcome[name] = domain.InstallResult{Status: domain.InstallFailed, Detail: "blocked: " + verdict.Reason}
				p.warn("package blocked by policy", name, nil)
				continue
			}
		}
		outcome[name] = p.installOne(ctx, name)
	}
	return outcome
}

func (p *PipInstaller) confirm(pkgs []string) (bool, string) {
	if p.prompter == nil || !p.prompter.Enabled() {
		return false, "confirmation unavailable"
	}
	ok, err := p.prompter.ConfirmInstall(pkgs)
	if err != nil {
		p.warn("install confirmation failed", strings.Join(pkgs, ","), err)
		return false, "confirmation failed"
	}
	if !ok {
		return false, "declined"
	}
	return true, ""
}

func (p *PipInstaller) installOne(ctx context.Context, name string) domain.InstallResult {
	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := append(append([]string{}, p.command[1:]...), name)
	cmd := exec.CommandContext(runCtx, p.command[0], args...)
	stdout := &process.LimitedBuffer{Max: domain.DefaultMaxOutputBytes}
	stderr := &process.LimitedBuffer{Max: domain.DefaultMaxOutputBytes}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	process.Isolate(cmd)

	start := time.Now()
	err := cmd.Run()
	if err == nil {
		if p.logger != nil {
			p.logger.Info("package installed", map[string]interface{}{
				"package":  name,
				"duration": time.Since(start).String(),
			})
		}
		return domain.InstallResult{Status: domain.InstallInstalled}
	}

	detail := lastLine(stderr.String())
	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		detail = fmt.Sprintf("timed out after %s", p.timeout)
	case detail == "":
		detail = err.Error()
	}
	p.warn("package install failed", name, err)
	return domain.InstallResult{Status: domain.InstallFailed, Detail: detail}
}

func (p *PipInstaller) warn(msg, name string, err error) {
	if p.logger == nil {
		return
	}
	fields := map[string]interface{}{"package": name}
	if err != nil {
		fields["error"] = err.Error()
	}
	p.logger.Warn(msg, fields)
}

func dedupeSorted(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

var _ ports.PackageInstaller = (*PipInstaller)(nil)
