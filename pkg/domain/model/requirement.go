package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
)

// Source field names shared by the CSV header row and the record API
const (
	FieldControlID              = "Control_ID"
	FieldTitle                  = "Title"
	FieldFramework              = "Framework"
	FieldDomain                 = "Domain"
	FieldRiskLevel              = "Risk_Level"
	FieldDescription            = "Description"
	FieldApplicableTo           = "Applicable_To"
	FieldImplementationGuidance = "Implementation_Guidance"
	FieldLegalReference         = "Legal_Reference"
	FieldLastUpdated            = "Last_Updated"
)

// Defaults applied during normalization
const (
	DefaultFramework = "Unknown"
	DefaultDomain    = "General"
)

// DateLayout is the ISO date format of LastUpdated
const DateLayout = "2006-01-02"

// RawRow is one record as returned by a source, before normalization. Values
// are string, int64, float64, bool, []string or []any.
type RawRow map[string]any

// Requirement is one compliance control or obligation
type Requirement struct {
	ID                     string          `json:"id"`
	ControlID              string          `json:"controlId"`
	Title                  string          `json:"title"`
	Framework              string          `json:"framework"`
	Domain                 string          `json:"domain"`
	RiskLevel              types.RiskLevel `json:"riskLevel"`
	Description            string          `json:"description"`
	ApplicableTo           []string        `json:"applicableTo"`
	ImplementationGuidance string          `json:"implementationGuidance"`
	LegalReference         string          `json:"legalReference"`
	LastUpdated            string          `json:"lastUpdated"`
}

// NormalizeRows converts raw rows into Requirements. Rows without a control
// ID or title are dropped and counted. Unknown fields are discarded. Row order
// is preserved and IDs are unique within the result.
func NormalizeRows(jurisdiction types.JurisdictionID, rows []RawRow, now time.Time) ([]Requirement, int) {
	today := now.UTC().Format(DateLayout)
	seen := make(map[string]int, len(rows))
	result := make([]Requirement, 0, len(rows))
	dropped := 0

	for index, row := range rows {
		controlID := Stringify(row[FieldControlID])
		title := Stringify(row[FieldTitle])
		if controlID == "" || title == "" {
			dropped++
			continue
		}

		base := requirementID(jurisdiction, controlID, index)
		id := base
		if n, ok := seen[base]; ok {
			// a suffixed id may already be taken by a literal control ID
			for {
				n++
				id = fmt.Sprintf("%s-%d", base, n)
				if _, taken := seen[id]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[id] = 1

		result = append(result, Requirement{
			ID:                     id,
			ControlID:              controlID,
			Title:                  title,
			Framework:              withDefault(Stringify(row[FieldFramework]), DefaultFramework),
			Domain:                 withDefault(Stringify(row[FieldDomain]), DefaultDomain),
			RiskLevel:              types.RiskLevel(Stringify(row[FieldRiskLevel])).Normalize(),
			Description:            Stringify(row[FieldDescription]),
			ApplicableTo:           NormalizeApplicableTo(row[FieldApplicableTo]),
			ImplementationGuidance: Stringify(row[FieldImplementationGuidance]),
			LegalReference:         Stringify(row[FieldLegalReference]),
			LastUpdated:            withDefault(Stringify(row[FieldLastUpdated]), today),
		})
	}

	return result, dropped
}

func requirementID(jurisdiction types.JurisdictionID, controlID string, index int) string {
	if controlID == "" {
		return fmt.Sprintf("%s-%d", jurisdiction, index)
	}
	return jurisdiction.String() + "-" + controlID
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

var applicableToSeparator = regexp.MustCompile(`[,;|]`)

// NormalizeApplicableTo converts a delimited string or a sequence into a
// trimmed list without empty items. It never returns nil.
func NormalizeApplicableTo(v any) []string {
	result := []string{}

	switch value := v.(type) {
	case nil:
		return result
	case string:
		for _, item := range applicableToSeparator.Split(value, -1) {
			if item = strings.TrimSpace(item); item != "" {
				result = append(result, item)
			}
		}
	case []string:
		for _, item := range value {
			if item = strings.TrimSpace(item); item != "" {
				result = append(result, item)
			}
		}
	case []any:
		for _, item := range value {
			if s := Stringify(item); s != "" {
				result = append(result, s)
			}
		}
	default:
		if s := Stringify(value); s != "" {
			result = append(result, s)
		}
	}

	return result
}

// Stringify converts an inferred cell value back to its trimmed string form
func Stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return strings.TrimSpace(fmt.Sprint(value))
	}
}
