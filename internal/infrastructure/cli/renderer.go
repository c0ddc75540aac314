package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/infrastructure/report"
)

var (
	okColor    = color.New(color.FgGreen, color.Bold)
	failColor  = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	titleColor = color.New(color.FgCyan, color.Bold)
)

// RenderReport prints the run summary. The full text lives in the report file.
func RenderReport(out io.Writer, r domain.AnalysisReport) {
	fmt.Fprintln(out)
	titleColor.Fprintf(out, "%s analysis of %s\n", r.Mode.Profile().Label, r.SourcePath)
	if r.Model != "" {
		fmt.Fprintf(out, "Used model: %s (%s)\n", r.Model, r.Provider)
	}

	statusLine(out, "Syntax check", r.Syntax.OK, report.SyntaxLine(r.Syntax))
	if r.Runtime != nil {
		statusLine(out, "Runtime check", r.Runtime.OK, report.RuntimeLine(r.Runtime))
	}

	switch {
	case r.Semantic != nil:
		fmt.Fprintln(out)
		titleColor.Fprintln(out, "Semantic analysis:")
		fmt.Fprintln(out, strings.TrimSpace(r.Semantic.AnalysisText))
	case r.SemanticError != "":
		statusLine(out, "Semantic analysis", false, "FAILED: "+r.SemanticError)
	}

	if r.Reached(domain.StageDependencyResolved) && len(r.Installs) > 0 {
		fmt.Fprintln(out)
		for _, name := range r.Installs.Names() {
			res := r.Installs[name]
			detail := string(res.Status)
			if res.Detail != "" {
				detail += ": " + res.Detail
			}
			statusLine(out, "Package "+name, res.Status == domain.InstallInstalled, detail)
		}
	}

	if r.RefactorWritten {
		okColor.Fprintf(out, "\nRefactored code written to %s\n", r.RefactorPath)
	}
	for _, note := range r.Notes {
		warnColor.Fprint(out, "Note: ")
		fmt.Fprintln(out, note)
	}

	fmt.Fprintln(out)
	if r.ReportPath != "" {
		fmt.Fprintf(out, "Report saved to %s\n", r.ReportPath)
	}
	fmt.Fprintf(out, "Analysis completed in %s\n", report.FormatElapsed(r.Elapsed))
}

func statusLine(out io.Writer, label string, ok bool, detail string) {
	mark := okColor.Sprint("✓")
	if !ok {
		mark = failColor.Sprint("✗")
	}
	fmt.Fprintf(out, "%s %s: %s\n", mark, label, detail)
}

// renderDoctorReport prints one line per check.
func renderDoctorReport(out io.Writer, r domain.HealthReport) {
	for _, check := range r.Checks {
		var c *color.Color
		switch check.Status {
		case domain.HealthOK:
			c = okColor
		case domain.HealthWarn:
			c = warnColor
		default:
			c = failColor
		}
		fmt.Fprintf(out, "[%s] %s - %s\n", c.Sprint(strings.ToUpper(string(check.Status))), check.Name, check.Details)
	}
}
