package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// DefaultPolicyYAML contains the embedded default package policy rules.
//
//go:embed defaults/package_policy.yaml
var DefaultPolicyYAML []byte

// ProbeScript is run by the configured interpreter to parse, list imports
// and resolve modules. The mode is passed as the first argument.
//
//go:embed python/probe.py
var ProbeScript []byte
