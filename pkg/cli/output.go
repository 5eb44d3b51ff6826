package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
)

var (
	headColor  = color.New(color.Bold)
	labelColor = color.New(color.FgCyan)
	warnColor  = color.New(color.FgYellow)
	mutedColor = color.New(color.Faint)
)

func riskColor(level types.RiskLevel) *color.Color {
	switch level {
	case types.RiskLevelHigh:
		return color.New(color.FgRed, color.Bold)
	case types.RiskLevelMedium:
		return color.New(color.FgYellow)
	case types.RiskLevelLow:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgWhite)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to encode JSON output")
	}
	return nil
}

func orDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

func printJurisdictions(w io.Writer, list []*model.Jurisdiction) {
	for _, j := range list {
		headColor.Fprintf(w, "%s %s", j.Flag, j.Name)
		mutedColor.Fprintf(w, " (%s)\n", j.ID)
		fmt.Fprintf(w, "  %s %s  %s %s\n",
			labelColor.Sprint("Timezone:"), j.Timezone,
			labelColor.Sprint("Currency:"), j.Currency)
		fmt.Fprintf(w, "  %s %s\n", labelColor.Sprint("Frameworks:"), orDash(j.Frameworks))
		fmt.Fprintf(w, "  %s %s\n", labelColor.Sprint("Application types:"), orDash(j.ApplicationTypes))
	}
}

func printLookupResult(w io.Writer, result *model.LookupResult) {
	j := result.Jurisdiction
	headColor.Fprintf(w, "%s %s", j.Flag, j.Name)
	fmt.Fprintf(w, "  %d of %d requirements\n", len(result.Requirements), result.Total)

	if result.Degraded {
		warnColor.Fprintf(w, "Showing sample data: %s\n", result.Error)
	}

	fmt.Fprintf(w, "%s %s\n", labelColor.Sprint("Frameworks:"), orDash(result.Facets.Frameworks))
	fmt.Fprintf(w, "%s %s\n", labelColor.Sprint("Domains:"), orDash(result.Facets.Domains))

	levels := make([]string, 0, len(result.Summary.ByRiskLevel))
	for _, level := range types.AllRiskLevels() {
		levels = append(levels, riskColor(level).Sprintf("%s %d", level, result.Summary.ByRiskLevel[level]))
	}
	var others []string
	for level, n := range result.Summary.ByRiskLevel {
		if !level.IsKnown() {
			others = append(others, riskColor(level).Sprintf("%s %d", level, n))
		}
	}
	sort.Strings(others)
	fmt.Fprintf(w, "%s %s\n", labelColor.Sprint("Risk:"), strings.Join(append(levels, others...), "  "))

	for _, req := range result.Requirements {
		fmt.Fprintln(w)
		printRequirement(w, &req)
	}
}

func printRequirement(w io.Writer, req *model.Requirement) {
	headColor.Fprintf(w, "[%s] %s ", req.ControlID, req.Title)
	riskColor(req.RiskLevel).Fprintf(w, "(%s)\n", req.RiskLevel)
	fmt.Fprintf(w, "  %s %s  %s %s\n",
		labelColor.Sprint("Framework:"), req.Framework,
		labelColor.Sprint("Domain:"), req.Domain)
	if req.Description != "" {
		fmt.Fprintf(w, "  %s\n", req.Description)
	}
	if len(req.ApplicableTo) > 0 {
		fmt.Fprintf(w, "  %s %s\n", labelColor.Sprint("Applies to:"), strings.Join(req.ApplicableTo, ", "))
	}
	if req.LegalReference != "" {
		fmt.Fprintf(w, "  %s %s\n", labelColor.Sprint("Reference:"), req.LegalReference)
	}
	mutedColor.Fprintf(w, "  Last updated %s\n", req.LastUpdated)
}

func printGuidance(w io.Writer, controlID string, g *model.Guidance) {
	headColor.Fprintf(w, "Guidance for %s\n", controlID)
	mutedColor.Fprintf(w, "%s\n", g.Source)

	printList(w, "Services", g.AWSServices)
	printList(w, "Implementation steps", g.ImplementationSteps)
	printList(w, "Cost considerations", g.CostConsiderations)
}

func printList(w io.Writer, label string, items []string) {
	fmt.Fprintln(w)
	labelColor.Fprintf(w, "%s:\n", label)
	if len(items) == 0 {
		mutedColor.Fprintln(w, "  none")
		return
	}
	for i, item := range items {
		fmt.Fprintf(w, "  %d. %s\n", i+1, item)
	}
}

func printPrefetch(w io.Writer, result model.PrefetchResult) {
	ids := make([]string, 0, len(result))
	for id := range result {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		n := result[id]
		if n == 0 {
			warnColor.Fprintf(w, "%-16s no requirements loaded\n", id)
			continue
		}
		fmt.Fprintf(w, "%-16s %d requirements\n", id, n)
	}
}
