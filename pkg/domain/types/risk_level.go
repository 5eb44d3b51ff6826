package types

// RiskLevel is the risk rating of a requirement. Values outside the known
// set are kept as-is.
type RiskLevel string

const (
	RiskLevelHigh   RiskLevel = "High"
	RiskLevelMedium RiskLevel = "Medium"
	RiskLevelLow    RiskLevel = "Low"
)

// DefaultRiskLevel is applied when a source row has no risk level
const DefaultRiskLevel = RiskLevelMedium

// AllRiskLevels returns the known risk levels, highest first
func AllRiskLevels() []RiskLevel {
	return []RiskLevel{
		RiskLevelHigh,
		RiskLevelMedium,
		RiskLevelLow,
	}
}

// IsKnown reports whether the level is one of High, Medium, Low
func (r RiskLevel) IsKnown() bool {
	switch r {
	case RiskLevelHigh, RiskLevelMedium, RiskLevelLow:
		return true
	default:
		return false
	}
}

// Normalize returns the level, treating empty as DefaultRiskLevel
func (r RiskLevel) Normalize() RiskLevel {
	if r == "" {
		return DefaultRiskLevel
	}
	return r
}

// String returns the string representation of the risk level
func (r RiskLevel) String() string {
	return string(r)
}
