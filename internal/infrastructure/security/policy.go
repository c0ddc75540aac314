// Package security vets package names before the installer spawns a process.
package security

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/Endromia-9027/CodeRefactorGPT/assets"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/pkg/filesystem"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

// distributionName is the PEP 508 project name grammar.
var distributionName = regexp.MustCompile(`(?i)^([a-z0-9]|[a-z0-9][a-z0-9._-]*[a-z0-9])$`)

// PackageGuard implements ports.PackagePolicy.
type PackageGuard struct {
	rules []compiledRule
}

type compiledRule struct {
	re   *regexp.Regexp
	rule DenyRule
}

// DenyRule rejects package names matching Pattern.
type DenyRule struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Reason  string `yaml:"reason"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules []DenyRule `yaml:"rules"`
}

// NewPackageGuard loads deny rules from path, or the embedded defaults when
// the file is absent or empty.
func NewPackageGuard(path string) (*PackageGuard, error) {
	rules, err := loadRules(path)
	if err != nil {
		return nil, err
	}

	compiled := make([]compiledRule, 0, len(rules.Rules))
	for _, rule := range rules.Rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile package rule %q: %w", rule.Name, err)
		}
		compiled = append(compiled, compiledRule{re: re, rule: rule})
	}
	return &PackageGuard{rules: compiled}, nil
}

// Evaluate implements ports.PackagePolicy.
func (g *PackageGuard) Evaluate(name string) domain.PackageVerdict {
	for _, rule := range g.rules {
		if rule.re.MatchString(name) {
			return domain.PackageVerdict{Allowed: false, Reason: rule.rule.Reason, Rule: rule.rule.Name}
		}
	}
	if !distributionName.MatchString(name) {
		return domain.PackageVerdict{Allowed: false, Reason: "not a valid package name", Rule: "pep508_name"}
	}
	return domain.PackageVerdict{Allowed: true}
}

// RuleCount is the number of deny rules in effect.
func (g *PackageGuard) RuleCount() int {
	return len(g.rules)
}

func loadRules(path string) (RulesFile, error) {
	var rules RulesFile
	if path != "" {
		data, err := os.ReadFile(filesystem.ExpandPath(path))
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &rules); err != nil {
				return RulesFile{}, fmt.Errorf("parse package rules %s: %w", path, err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return RulesFile{}, fmt.Errorf("read package rules %s: %w", path, err)
		}
	}
	if len(rules.Rules) == 0 {
		return DefaultRules()
	}
	return rules, nil
}

// DefaultRules returns the embedded rule set.
func DefaultRules() (RulesFile, error) {
	var rules RulesFile
	if err := yaml.Unmarshal(assets.DefaultPolicyYAML, &rules); err != nil {
		return RulesFile{}, fmt.Errorf("parse default package rules: %w", err)
	}
	return rules, nil
}

var _ ports.PackagePolicy = (*PackageGuard)(nil)
