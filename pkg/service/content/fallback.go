package content

import "github.com/secmon-lab/grc-lookup/pkg/domain/model"

const fallbackAbout = `# About GRC Compliance Lookup

*Content temporarily unavailable. Please check back later.*

Our GRC Compliance Lookup platform helps organizations navigate complex regulatory requirements across multiple jurisdictions.

## Current Status
- Service is running normally
- Content is being updated
- Please refresh the page in a few moments`

const fallbackMembers = `# Team Members

*Team information temporarily unavailable.*

Our team consists of experienced professionals in compliance, technology, and regulatory affairs.

Please check back shortly for detailed team member information.`

const fallbackGeneric = "# Content Unavailable\n\nPlease check back later."

// Fallback returns the built-in markdown for a page file
func Fallback(filename string) string {
	switch filename {
	case AboutFile:
		return fallbackAbout
	case MembersFile:
		return fallbackMembers
	default:
		return fallbackGeneric
	}
}

// FallbackMembers is the placeholder member list served when the members
// page cannot be fetched
func FallbackMembers() []model.Member {
	return []model.Member{
		{
			Name:     "Team Information",
			Role:     "Loading...",
			Bio:      "Team member information is being loaded.",
			LinkedIn: "#",
			Email:    "team@grccompliance.com",
		},
	}
}
