package python

import (
	"context"
	"strings"
)

// Import is one import statement found in source.
type Import struct {
	Module string `json:"module"`
	Level  int    `json:"level"`
	Line   int    `json:"line"`
}

// Relative reports whether the import is package-relative ("from . import x").
func (i Import) Relative() bool {
	return i.Level > 0
}

// TopLevel returns the first dotted component of the module.
func (i Import) TopLevel() string {
	name, _, _ := strings.Cut(i.Module, ".")
	return name
}

type importsPayload struct {
	OK      bool     `json:"ok"`
	Imports []Import `json:"imports"`
}

// Imports lists every import statement in code. Code that does not parse
// yields no imports.
func (p *Probe) Imports(ctx context.Context, code string) ([]Import, error) {
	var payload importsPayload
	if err := p.run(ctx, modeImports, code, &payload); err != nil {
		return nil, err
	}
	if !payload.OK {
		return nil, nil
	}
	return payload.Imports, nil
}

// Resolution is what the interpreter knows about a set of module names.
type Resolution struct {
	Stdlib    []string `json:"stdlib"`
	Installed []string `json:"installed"`
}

// Resolve asks the interpreter which of names are importable, and for its
// own list of standard-library modules.
func (p *Probe) Resolve(ctx context.Context, names []string) (Resolution, error) {
	var res Resolution
	if err := p.run(ctx, modeResolve, strings.Join(names, "\n"), &res); err != nil {
		return Resolution{}, err
	}
	return res, nil
}
