package content

import (
	"strings"

	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
)

// ExtractMembers reads "### Name - Role" sections from the members page.
// Lines starting with **LinkedIn:**, **Email:**, **Location:** and **Role:**
// fill the matching fields; the first plain text lines up to **Expertise:**
// become the bio.
func ExtractMembers(markdown string) []model.Member {
	members := []model.Member{}

	blocks := strings.Split(markdown, "###")
	for _, block := range blocks[1:] {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}

		name, role, ok := strings.Cut(strings.TrimSpace(lines[0]), " - ")
		if !ok {
			continue
		}
		member := model.Member{
			Name: strings.TrimSpace(name),
			Role: strings.TrimSpace(role),
		}

		bioStart, expertiseStart := -1, -1
		for i, line := range lines[1:] {
			line = strings.TrimRight(line, "\r")
			switch {
			case strings.HasPrefix(line, "**LinkedIn:**"):
				member.LinkedIn = fieldValue(line, "**LinkedIn:**")
			case strings.HasPrefix(line, "**Email:**"):
				member.Email = fieldValue(line, "**Email:**")
			case strings.HasPrefix(line, "**Location:**"):
				member.Location = fieldValue(line, "**Location:**")
			case strings.HasPrefix(line, "**Role:**"):
				member.FullRole = fieldValue(line, "**Role:**")
			case strings.HasPrefix(line, "**Expertise:**"):
				if expertiseStart == -1 {
					expertiseStart = i + 1
				}
			case strings.TrimSpace(line) != "" && !strings.HasPrefix(line, "**"):
				if bioStart == -1 {
					bioStart = i + 1
				}
			}
		}

		if bioStart != -1 && expertiseStart > bioStart {
			member.Bio = strings.TrimSpace(strings.Join(lines[bioStart:expertiseStart], "\n"))
		}
		members = append(members, member)
	}

	return members
}

func fieldValue(line, label string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, label))
}
