package model

import "github.com/secmon-lab/grc-lookup/pkg/domain/types"

// SelectAll matches every value of a filter field
const SelectAll = "all"

// Selection holds the active filter values. Empty fields mean SelectAll.
type Selection struct {
	Framework string `json:"framework"`
	RiskLevel string `json:"riskLevel"`
	Domain    string `json:"domain"`
}

// Facets are the distinct filterable values of a requirement set
type Facets struct {
	Frameworks []string `json:"frameworks"`
	RiskLevels []string `json:"riskLevels"`
	Domains    []string `json:"domains"`
}

// Summary counts requirements per risk level
type Summary struct {
	Total       int                     `json:"total"`
	ByRiskLevel map[types.RiskLevel]int `json:"byRiskLevel"`
}
