package domain

import (
	"sort"
	"strconv"
	"time"
)

// SyntaxResult is the outcome of parsing the source.
type SyntaxResult struct {
	OK      bool
	Message string
	Line    *int
	Column  *int
}

// Location renders "line L, column C" when known.
func (r SyntaxResult) Location() string {
	switch {
	case r.Line != nil && r.Column != nil:
		return "line " + strconv.Itoa(*r.Line) + ", column " + strconv.Itoa(*r.Column)
	case r.Line != nil:
		return "line " + strconv.Itoa(*r.Line)
	default:
		return ""
	}
}

// RuntimeResult is the outcome of executing the source in a child process.
type RuntimeResult struct {
	OK           bool
	ErrorMessage string
	Stdout       string
	Stderr       string
	ExitCode     int
	TimedOut     bool
	Duration     time.Duration
}

// SemanticResult is the parsed model reply.
type SemanticResult struct {
	AnalysisText   string
	RefactoredCode string
	Provider       string
	Model          string
	Attempts       int
}

// HasRefactor reports whether the model returned refactored code.
func (r SemanticResult) HasRefactor() bool {
	return r.RefactoredCode != ""
}

// DependencySet maps an imported top-level module to the package name used to install it.
type DependencySet map[string]string

// Add records module, installing it as pkg (or module itself when pkg is empty).
func (s DependencySet) Add(module, pkg string) {
	if pkg == "" {
		pkg = module
	}
	s[module] = pkg
}

// Modules returns the imported module names, sorted.
func (s DependencySet) Modules() []string {
	out := make([]string, 0, len(s))
	for module := range s {
		out = append(out, module)
	}
	sort.Strings(out)
	return out
}

// Packages returns the distinct package names, sorted.
func (s DependencySet) Packages() []string {
	seen := make(map[string]struct{}, len(s))
	out := make([]string, 0, len(s))
	for _, pkg := range s {
		if _, ok := seen[pkg]; ok {
			continue
		}
		seen[pkg] = struct{}{}
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}

// InstallStatus is the per-package install verdict.
type InstallStatus string

const (
	InstallInstalled InstallStatus = "installed"
	InstallFailed    InstallStatus = "failed"
	InstallSkipped   InstallStatus = "skipped"
)

// InstallResult describes what happened to one package.
type InstallResult struct {
	Status InstallStatus
	Detail string
}

// InstallOutcome covers every package that was requested for installation.
type InstallOutcome map[string]InstallResult

// Names returns the package names, sorted.
func (o InstallOutcome) Names() []string {
	out := make([]string, 0, len(o))
	for name := range o {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// AllInstalled is true when every entry was installed (vacuously true when empty).
func (o InstallOutcome) AllInstalled() bool {
	for _, res := range o {
		if res.Status != InstallInstalled {
			return false
		}
	}
	return true
}

// WithStatus returns the sorted names carrying status.
func (o InstallOutcome) WithStatus(status InstallStatus) []string {
	var out []string
	for _, name := range o.Names() {
		if o[name].Status == status {
			out = append(out, name)
		}
	}
	return out
}

// Failed returns the sorted names that were attempted and did not install.
func (o InstallOutcome) Failed() []string {
	return o.WithStatus(InstallFailed)
}
