package usecase

import (
	"slices"

	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
)

func matches(selected, value string) bool {
	return selected == "" || selected == model.SelectAll || selected == value
}

// FilterRequirements keeps the requirements matching every selected field,
// preserving order
func FilterRequirements(all []model.Requirement, sel model.Selection) []model.Requirement {
	result := make([]model.Requirement, 0, len(all))
	for _, req := range all {
		if matches(sel.Framework, req.Framework) &&
			matches(sel.RiskLevel, req.RiskLevel.String()) &&
			matches(sel.Domain, req.Domain) {
			result = append(result, req)
		}
	}
	return result
}

func unique(reqs []model.Requirement, field func(*model.Requirement) string) []string {
	seen := make(map[string]struct{})
	result := []string{}
	for i := range reqs {
		v := field(&reqs[i])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	slices.Sort(result)
	return result
}

// UniqueFrameworks returns the sorted distinct frameworks
func UniqueFrameworks(reqs []model.Requirement) []string {
	return unique(reqs, func(r *model.Requirement) string { return r.Framework })
}

// UniqueRiskLevels returns the sorted distinct risk levels
func UniqueRiskLevels(reqs []model.Requirement) []string {
	return unique(reqs, func(r *model.Requirement) string { return r.RiskLevel.String() })
}

// UniqueDomains returns the sorted distinct domains
func UniqueDomains(reqs []model.Requirement) []string {
	return unique(reqs, func(r *model.Requirement) string { return r.Domain })
}

// Facets bundles the distinct filter values of reqs
func Facets(reqs []model.Requirement) model.Facets {
	return model.Facets{
		Frameworks: UniqueFrameworks(reqs),
		RiskLevels: UniqueRiskLevels(reqs),
		Domains:    UniqueDomains(reqs),
	}
}

// Summarize counts reqs per risk level. Known levels are always present.
func Summarize(reqs []model.Requirement) model.Summary {
	summary := model.Summary{
		Total:       len(reqs),
		ByRiskLevel: make(map[types.RiskLevel]int),
	}
	for _, level := range types.AllRiskLevels() {
		summary.ByRiskLevel[level] = 0
	}
	for _, req := range reqs {
		summary.ByRiskLevel[req.RiskLevel]++
	}
	return summary
}
