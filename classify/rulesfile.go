package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ftahirops/xtimeline/model"
)

// RulesFile is the YAML document accepted by LoadRulesFile:
//
//	rules:
//	  - name: IngressDown
//	    category: Disruption
//	    color: "#ff00ff"
//	    match:
//	      source: [Disruption]
//	      locator_keys_match: {backend-disruption-name: ingress-to-console}
type RulesFile struct {
	Rules []RuleSpec `yaml:"rules"`
}

// RuleSpec is one user-defined rule.
type RuleSpec struct {
	Name     string  `yaml:"name"`
	Category string  `yaml:"category"`
	Color    string  `yaml:"color"`    // hex, defaults to gray
	Timeline string  `yaml:"timeline"` // optional timeline differentiator
	Match    Matcher `yaml:"match"`
}

// Rule validates s and converts it to a Rule.
func (s RuleSpec) Rule() (Rule, error) {
	if s.Name == "" {
		return Rule{}, fmt.Errorf("rule without name")
	}
	cat, err := model.ParseCategory(s.Category)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s: %w", s.Name, err)
	}
	color := model.Gray
	if s.Color != "" {
		if color, err = model.ParseHexColor(s.Color); err != nil {
			return Rule{}, fmt.Errorf("rule %s: %w", s.Name, err)
		}
	}
	return Rule{
		Classification: model.Classification{
			Name:                   s.Name,
			Category:               cat,
			Color:                  color,
			TimelineDifferentiator: s.Timeline,
		},
		Matcher: s.Match,
	}, nil
}

// ParseRules decodes a YAML rules document.
func ParseRules(data []byte) ([]Rule, error) {
	var f RulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	rules := make([]Rule, 0, len(f.Rules))
	for _, spec := range f.Rules {
		r, err := spec.Rule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// LoadRulesFile reads rules from a YAML file. They are meant to be passed
// to Default so they are evaluated ahead of the built-in table.
func LoadRulesFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data)
}
