// Package validation applies externally supplied field rules to posting payloads and
// turns them into typed, normalized domain commands.
package validation

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"classifieds/internal/domain/posting"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

type Rule struct {
	Required  bool     `yaml:"required"`
	MinLength int      `yaml:"min_length"`
	MaxLength int      `yaml:"max_length"`
	Pattern   string   `yaml:"pattern"`
	Min       *float64 `yaml:"min"`
	Max       *float64 `yaml:"max"`
	Enum      []string `yaml:"enum"`
	MaxItems  int      `yaml:"max_items"`

	re *regexp.Regexp
}

type ruleFile struct {
	Common map[string]Rule            `yaml:"common"`
	Kinds  map[string]map[string]Rule `yaml:"kinds"`
}

// RuleSet is the resolved rules per kind and field.
type RuleSet map[posting.Kind]map[string]Rule

// Load reads rules from path, or the built-in set when path is empty.
func Load(path string) (RuleSet, error) {
	raw := defaultRules
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read validation rules: %w", err)
		}
		raw = b
	}
	return Parse(raw)
}

func Parse(raw []byte) (RuleSet, error) {
	var f ruleFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse validation rules: %w", err)
	}

	out := RuleSet{}
	for _, kind := range posting.Kinds {
		merged := map[string]Rule{}
		for name, r := range f.Common {
			merged[name] = r
		}
		for name, r := range f.Kinds[string(kind)] {
			merged[name] = r
		}
		for name, r := range merged {
			if r.Pattern != "" {
				re, err := regexp.Compile(r.Pattern)
				if err != nil {
					return nil, fmt.Errorf("rule %s.%s: invalid pattern: %w", kind, name, err)
				}
				r.re = re
			}
			merged[name] = r
		}
		out[kind] = merged
	}
	for name := range f.Kinds {
		if _, ok := posting.ParseKind(name); !ok {
			return nil, fmt.Errorf("rules for unknown kind %q", name)
		}
	}
	return out, nil
}

// check validates one present value against r and returns a message, or "" when valid.
func (r Rule) check(v any) string {
	switch t := v.(type) {
	case string:
		if t == "" {
			if r.Required {
				return "is required"
			}
			return ""
		}
		n := len([]rune(t))
		if r.MinLength > 0 && n < r.MinLength {
			return fmt.Sprintf("must be at least %d characters", r.MinLength)
		}
		if r.MaxLength > 0 && n > r.MaxLength {
			return fmt.Sprintf("must be at most %d characters", r.MaxLength)
		}
		if len(r.Enum) > 0 && !slices.Contains(r.Enum, t) {
			return "must be one of " + strings.Join(r.Enum, ", ")
		}
		if r.re != nil && !r.re.MatchString(t) {
			return "has an invalid format"
		}
	case float64:
		if r.Min != nil && t < *r.Min {
			return fmt.Sprintf("must be at least %g", *r.Min)
		}
		if r.Max != nil && t > *r.Max {
			return fmt.Sprintf("must be at most %g", *r.Max)
		}
	case int:
		return r.check(float64(t))
	case []string:
		if r.MaxItems > 0 && len(t) > r.MaxItems {
			return fmt.Sprintf("must have at most %d items", r.MaxItems)
		}
		for _, item := range t {
			if r.MaxLength > 0 && len([]rune(item)) > r.MaxLength {
				return fmt.Sprintf("items must be at most %d characters", r.MaxLength)
			}
		}
	}
	return ""
}
