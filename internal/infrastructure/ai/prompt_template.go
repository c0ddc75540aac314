package ai

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
)

const replyFormat = `Reply with a single JSON object and nothing else:
{"analysis": "<your analysis as plain text or markdown>", "code": "<the complete refactored program, or an empty string>"}`

// systemTemplates holds one instruction per mode.
var systemTemplates = map[domain.Mode]string{
	domain.ModeBasic: `You are a patient Python code reviewer helping a beginner.
Explain what the program does, point out bugs and unclear parts in simple words, and suggest small fixes.
{{if .Refactor}}Also return a minimally refactored version of the whole program: fix bugs and improve readability, keep the original logic and structure, keep print-based output as it is.{{else}}Do not return refactored code; leave "code" empty.{{end}}
` + replyFormat,

	domain.ModeExpert: `You are a professional Python code analyzer in expert mode.
Deeply analyze the program for logical errors, security issues, performance bottlenecks and overall quality, with a primary focus on minimizing runtime and memory consumption.
Discuss what the code is doing and give detailed, prioritized recommendations.
{{if .Refactor}}Also return the complete refactored program optimized for the lowest runtime and memory use. Keep the program's behavior, add comments only where they help, and prefer print over the logging module unless the code already uses logging.{{else}}Do not return refactored code; leave "code" empty.{{end}}
` + replyFormat,

	domain.ModeAnalysisOnly: `You are a professional Python code reviewer.
Review the program for logical errors, potential improvements, security issues, performance problems and code quality.
Describe what the code does and give concrete recommendations. Short illustrative snippets are fine, but do not rewrite the whole program; leave "code" empty.
` + replyFormat,
}

const userTemplate = `{{if .SyntaxError}}The program failed to parse: {{.SyntaxError}}

{{end}}{{if .RuntimeError}}Running the program failed with: {{.RuntimeError}}
Explain the cause and how to fix it.

{{end}}File: {{.FileName}}
` + "```python\n{{.Code}}\n```"

type promptData struct {
	Refactor     bool
	FileName     string
	Code         string
	SyntaxError  string
	RuntimeError string
}

// renderPrompts builds the system and user messages for req.
func renderPrompts(req domain.SemanticRequest) (string, string, error) {
	raw, ok := systemTemplates[req.Mode]
	if !ok {
		raw = systemTemplates[domain.ModeAnalysisOnly]
	}
	data := promptData{
		Refactor:     req.WantsCode(),
		FileName:     req.Source.BaseName(),
		Code:         strings.TrimRight(req.Source.Text, "\n"),
		SyntaxError:  req.SyntaxError,
		RuntimeError: req.RuntimeError,
	}

	system, err := executeTemplate("system", raw, data)
	if err != nil {
		return "", "", err
	}
	user, err := executeTemplate("user", userTemplate, data)
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(system), user, nil
}

func executeTemplate(name, raw string, data promptData) (string, error) {
	tmpl, err := template.New(name).Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse %s prompt: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", name, err)
	}
	return buf.String(), nil
}
