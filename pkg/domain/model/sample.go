package model

import "github.com/secmon-lab/grc-lookup/pkg/domain/types"

var sampleRows = map[types.JurisdictionID][]RawRow{
	"california": {
		{
			FieldControlID:              "CCPA-001",
			FieldFramework:              "CCPA",
			FieldDomain:                 "Data Privacy",
			FieldTitle:                  "Consumer Right to Know",
			FieldDescription:            "Disclose the categories and specific pieces of personal information collected about a consumer on request.",
			FieldApplicableTo:           "Web Application, Mobile App, E-commerce",
			FieldRiskLevel:              "High",
			FieldImplementationGuidance: "Provide a verifiable request workflow and respond within 45 days.",
			FieldLegalReference:         "Cal. Civ. Code § 1798.110",
		},
		{
			FieldControlID:              "CPRA-002",
			FieldFramework:              "CPRA",
			FieldDomain:                 "Data Privacy",
			FieldTitle:                  "Sensitive Personal Information Limitation",
			FieldDescription:            "Allow consumers to limit the use and disclosure of sensitive personal information.",
			FieldApplicableTo:           "Web Application; Mobile App; Healthcare",
			FieldRiskLevel:              "High",
			FieldImplementationGuidance: "Add a 'Limit the Use of My Sensitive Personal Information' link.",
			FieldLegalReference:         "Cal. Civ. Code § 1798.121",
		},
		{
			FieldControlID:              "SB327-001",
			FieldFramework:              "SB-327",
			FieldDomain:                 "IoT Security",
			FieldTitle:                  "Reasonable Security Features for Connected Devices",
			FieldDescription:            "Connected devices must ship with unique preprogrammed passwords or force a new credential on first use.",
			FieldApplicableTo:           "Web Application",
			FieldRiskLevel:              "Medium",
			FieldImplementationGuidance: "Generate per-device credentials during manufacturing.",
			FieldLegalReference:         "Cal. Civ. Code § 1798.91.04",
		},
	},
	"indonesia": {
		{
			FieldControlID:              "UUPDP-001",
			FieldFramework:              "UU PDP",
			FieldDomain:                 "Data Privacy",
			FieldTitle:                  "Lawful Basis for Processing",
			FieldDescription:            "Personal data processing requires explicit consent or another lawful basis.",
			FieldApplicableTo:           "Web Application | Mobile App",
			FieldRiskLevel:              "High",
			FieldImplementationGuidance: "Record consent with timestamp and purpose.",
			FieldLegalReference:         "UU No. 27 Tahun 2022 Pasal 20",
		},
		{
			FieldControlID:              "OJK-001",
			FieldFramework:              "OJK",
			FieldDomain:                 "Financial Services",
			FieldTitle:                  "IT Risk Management for Financial Institutions",
			FieldDescription:            "Financial service providers must maintain an IT risk management framework.",
			FieldApplicableTo:           "Financial Services",
			FieldRiskLevel:              "Medium",
			FieldImplementationGuidance: "Establish an IT steering committee and annual risk assessment.",
			FieldLegalReference:         "POJK No. 11/POJK.03/2022",
		},
		{
			FieldControlID:              "KOMINFO-001",
			FieldFramework:              "Kominfo",
			FieldDomain:                 "Cybersecurity",
			FieldTitle:                  "Electronic System Operator Registration",
			FieldDescription:            "Private electronic system operators must register with the ministry.",
			FieldApplicableTo:           "Web Application, Mobile App",
			FieldRiskLevel:              "Low",
			FieldImplementationGuidance: "Register through the OSS-RBA portal before launch.",
			FieldLegalReference:         "Permenkominfo No. 5 Tahun 2020",
		},
	},
}

// SampleRows returns the static fallback rows for a jurisdiction, or nil
func SampleRows(id types.JurisdictionID) []RawRow {
	return sampleRows[id]
}
