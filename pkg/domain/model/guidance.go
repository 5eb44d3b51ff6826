package model

import "time"

// Guidance is implementation advice for a requirement, taken either from the
// knowledge-search service or from the static fallback table.
type Guidance struct {
	AWSServices         []string  `json:"awsServices"`
	ImplementationSteps []string  `json:"implementationSteps"`
	CostConsiderations  []string  `json:"costConsiderations"`
	LastUpdated         time.Time `json:"lastUpdated"`
	Source              string    `json:"source"`
}

// Guidance sources
const (
	GuidanceSourceRemote   = "AWS Knowledge MCP Server (Remote)"
	GuidanceSourceFallback = "Enhanced Fallback Guidance (AWS MCP Server Offline)"
)
