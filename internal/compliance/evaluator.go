package compliance

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
)

// Facts is the flat fact table compliance rules are evaluated against —
// field_path -> numeric value. BuildFacts assembles one from a forensic
// result; callers may also construct it directly for testing.
type Facts map[string]float64

// StringFacts holds values for in / not_in rules, keyed the same way as
// Facts but categorical rather than numeric.
type StringFacts map[string]string

// BuildFacts flattens the latest-period ratios, Altman, and Beneish
// results into the dotted field paths a rule pack references.
func BuildFacts(forensic *domain.ForensicResult, latestPeriod string) Facts {
	facts := Facts{}
	if forensic == nil {
		return facts
	}
	if byName, ok := forensic.Ratios[latestPeriod]; ok {
		for name, v := range byName {
			if v != nil {
				facts["ratios."+string(name)] = *v
			}
		}
	}
	if forensic.Altman.Current != nil {
		facts["altman.z_score"] = forensic.Altman.Current.Z
	}
	if forensic.Beneish.Current != nil {
		facts["beneish.m_score"] = forensic.Beneish.Current.M
	}
	if forensic.Benford.Success {
		facts["benford.chi_square"] = forensic.Benford.ChiSquare
	}
	return facts
}

// Evaluator runs a loaded rule pack against a fact table.
type Evaluator struct {
	pack *RulePack
}

func NewEvaluator(pack *RulePack) *Evaluator {
	return &Evaluator{pack: pack}
}

// Evaluate scores every framework in the pack and fuses them into a
// ComplianceAssessment, per spec.md §4.6.
func (e *Evaluator) Evaluate(companyID string, facts Facts, strings StringFacts, assessmentDate time.Time) domain.ComplianceAssessment {
	frameworkScores := make(map[domain.Framework]float64, len(e.pack.Frameworks))
	var allViolations []domain.Violation

	for framework, rules := range e.pack.Frameworks {
		violations, impact := evaluateFramework(rules, facts, strings)
		allViolations = append(allViolations, violations...)
		score := 100 * (1 - impact)
		if score < 0 {
			score = 0
		}
		frameworkScores[framework] = score
	}

	overall := 0.0
	if len(frameworkScores) > 0 {
		for _, s := range frameworkScores {
			overall += s
		}
		overall /= float64(len(frameworkScores))
	}

	status := domain.ClassifyComplianceStatus(overall)
	reviewDays := 90
	if status != domain.Compliant {
		reviewDays = 30
	}

	log.Info().Str("company", companyID).Float64("overall_score", overall).Str("status", string(status)).Msg("compliance assessment computed")

	return domain.ComplianceAssessment{
		CompanyID:       companyID,
		OverallScore:    overall,
		Status:          status,
		FrameworkScores: frameworkScores,
		Violations:      allViolations,
		Recommendations: recommendationsFor(allViolations),
		NextReviewDate:  assessmentDate.AddDate(0, 0, reviewDays),
	}
}

// evaluateFramework returns the violations found plus the weighted
// violation impact fraction (0..1) used by the scoring formula.
func evaluateFramework(rules []Rule, facts Facts, strs StringFacts) ([]domain.Violation, float64) {
	if len(rules) == 0 {
		return nil, 0
	}
	var violations []domain.Violation
	impact := 0.0

	for _, rule := range rules {
		violated, detected, ok := evaluateRule(rule, facts, strs)
		if !ok {
			switch rule.missingPolicy() {
			case PolicyViolate:
				violations = append(violations, domain.Violation{
					Framework:           rule.Framework,
					Severity:            rule.Severity,
					Description:         rule.Description + " (value missing, treated as violation)",
					RegulatoryReference: rule.Reference,
					Threshold:           rule.Threshold,
				})
				impact += severityWeight(rule.Severity) / float64(len(rules))
			case PolicyDowngradeConfidence:
				log.Warn().Str("rule", rule.ID).Msg("compliance field missing; confidence downgraded")
			case PolicySkip:
				// no-op
			}
			continue
		}
		if violated {
			violations = append(violations, domain.Violation{
				Framework:           rule.Framework,
				Severity:            rule.Severity,
				Description:         rule.Description,
				RegulatoryReference: rule.Reference,
				DetectedValue:       detected,
				Threshold:           rule.Threshold,
			})
			impact += severityWeight(rule.Severity) / float64(len(rules))
		}
	}

	if impact > 1 {
		impact = 1
	}
	return violations, impact
}

// evaluateRule returns (violated, detectedValue, found). found is false
// when field_path resolves to nothing in either fact table. A rule's
// comparator expresses the violation condition directly: "< 1.0" means
// "violated when the field is below 1.0", and "in" means "violated when
// the field's value is a member of threshold_set".
func evaluateRule(rule Rule, facts Facts, strs StringFacts) (bool, float64, bool) {
	switch rule.Comparator {
	case In, NotIn:
		v, ok := strs[rule.FieldPath]
		if !ok {
			return false, 0, false
		}
		member := false
		for _, candidate := range rule.ThresholdSet {
			if candidate == v {
				member = true
				break
			}
		}
		if rule.Comparator == In {
			return member, 0, true
		}
		return !member, 0, true
	default:
		v, ok := facts[rule.FieldPath]
		if !ok {
			return false, 0, false
		}
		switch rule.Comparator {
		case LessThan:
			return v < rule.Threshold, v, true
		case LessOrEqual:
			return v <= rule.Threshold, v, true
		case Equal:
			return v == rule.Threshold, v, true
		case GreaterEqual:
			return v >= rule.Threshold, v, true
		case GreaterThan:
			return v > rule.Threshold, v, true
		default:
			return false, v, true
		}
	}
}

func recommendationsFor(violations []domain.Violation) []string {
	if len(violations) == 0 {
		return []string{"no violations detected; maintain current reporting practices"}
	}
	hasCritical := false
	for _, v := range violations {
		if v.Severity == domain.SeverityCritical {
			hasCritical = true
			break
		}
	}
	if hasCritical {
		return []string{"address critical regulatory violations before next filing"}
	}
	return []string{"review flagged violations and remediate within the next reporting cycle"}
}
