package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/dgallion1/codelines/internal/codeblock"
	"github.com/dgallion1/codelines/internal/hast"
	"gopkg.in/yaml.v3"
)

// ErrRuleVeto is returned (wrapped) by the replacement of a rule marked
// fail when its pattern matches.
var ErrRuleVeto = errors.New("redaction rule rejected input")

// RuleFile is the on-disk layout of a redaction rules file:
//
//	rules:
//	  - name: api-key
//	    patterns: ['sk-live-[0-9a-z]+']
//	    replace: "<your key>"
//	  - name: private-key
//	    patterns: ['-----BEGIN [A-Z ]*PRIVATE KEY-----']
//	    fail: true
type RuleFile struct {
	Rules []RuleSpec `yaml:"rules"`
}

// RuleSpec describes one rule. Replace is a regexp template ($1, ${name}).
type RuleSpec struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
	Replace  string   `yaml:"replace"`
	Fail     bool     `yaml:"fail"`
}

// LoadRules reads and compiles a YAML rules file.
func LoadRules(path string) ([]codeblock.RedactionRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	rules, err := LoadRulesFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	return rules, nil
}

// LoadRulesFromBytes parses and compiles YAML rules.
func LoadRulesFromBytes(data []byte) ([]codeblock.RedactionRule, error) {
	var f RuleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return f.Compile()
}

// Compile validates the rule entries and turns them into redaction rules.
func (f RuleFile) Compile() ([]codeblock.RedactionRule, error) {
	seen := make(map[string]bool, len(f.Rules))
	rules := make([]codeblock.RedactionRule, 0, len(f.Rules))
	for i, spec := range f.Rules {
		if spec.Name == "" {
			return nil, fmt.Errorf("rule %d: name is required", i)
		}
		if seen[spec.Name] {
			return nil, fmt.Errorf("rule %s: duplicate name", spec.Name)
		}
		seen[spec.Name] = true
		if len(spec.Patterns) == 0 {
			return nil, fmt.Errorf("rule %s: at least one pattern is required", spec.Name)
		}

		rule := codeblock.RedactionRule{Name: spec.Name}
		for _, p := range spec.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", spec.Name, err)
			}
			rule.Patterns = append(rule.Patterns, re)
		}
		rule.Replace = spec.replaceFunc()
		rules = append(rules, rule)
	}
	return rules, nil
}

func (s RuleSpec) replaceFunc() codeblock.ReplaceFunc {
	if s.Fail {
		name := s.Name
		return func(m codeblock.Match) ([]hast.Node, error) {
			return nil, fmt.Errorf("%w: %s matched %q", ErrRuleVeto, name, m.Text)
		}
	}
	if s.Replace == "" {
		return nil
	}
	tmpl := s.Replace
	return codeblock.ReplaceText(func(m codeblock.Match) string {
		return m.Expand(tmpl)
	})
}
