// Package compliance implements the rule-pack-driven compliance
// validator (C6): declarative per-framework rules evaluated against a
// flat fact table, yielding typed violations and a severity-weighted
// score per framework.
package compliance

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
)

// Comparator is one of the six operators a rule may use.
type Comparator string

const (
	LessThan     Comparator = "<"
	LessOrEqual  Comparator = "<="
	Equal        Comparator = "=="
	GreaterEqual Comparator = ">="
	GreaterThan  Comparator = ">"
	In           Comparator = "in"
	NotIn        Comparator = "not_in"
)

// MissingValuePolicy governs what happens when field_path resolves to
// nothing in the fact table. A rule without on_missing is treated as
// skip. Skip ignores the rule and records nothing; downgrade_confidence
// only logs a warning, since the assessment carries no confidence value.
type MissingValuePolicy string

const (
	PolicySkip               MissingValuePolicy = "skip"
	PolicyViolate            MissingValuePolicy = "violate"
	PolicyDowngradeConfidence MissingValuePolicy = "downgrade_confidence"
)

// Rule is one declarative compliance check within a framework.
type Rule struct {
	ID          string             `yaml:"id"`
	Framework   domain.Framework   `yaml:"framework"`
	Description string             `yaml:"description"`
	FieldPath   string             `yaml:"field_path"`
	Comparator  Comparator         `yaml:"comparator"`
	Threshold   float64            `yaml:"threshold"`
	ThresholdSet []string          `yaml:"threshold_set"` // for in / not_in
	Severity    domain.Severity    `yaml:"severity"`
	Reference   string             `yaml:"reference"`
	OnMissing   MissingValuePolicy `yaml:"on_missing"`
}

func (r Rule) missingPolicy() MissingValuePolicy {
	if r.OnMissing == "" {
		return PolicySkip
	}
	return r.OnMissing
}

// RulePack is the loaded document: {frameworks: {<FrameworkName>: [rule, ...]}}.
type RulePack struct {
	Frameworks map[domain.Framework][]Rule `yaml:"frameworks"`
}

// LoadRulePack reads and parses a rule pack document from path.
func LoadRulePack(path string) (*RulePack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule pack %s: %w", path, err)
	}
	var pack RulePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse rule pack %s: %w", path, err)
	}
	return &pack, nil
}

// severityWeight is the fixed weighting used by the per-framework score
// formula in spec.md §4.6.
func severityWeight(s domain.Severity) float64 {
	switch s {
	case domain.SeverityCritical:
		return 1.0
	case domain.SeverityHigh:
		return 0.6
	case domain.SeverityMedium:
		return 0.3
	default:
		return 0.1
	}
}
