package guidance

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
)

const (
	maxServices = 8
	maxSteps    = 5
)

var domainQueries = map[string]string{
	"data privacy":       "AWS data privacy encryption KMS CloudTrail GDPR CCPA compliance",
	"iot security":       "AWS IoT Core device security certificates authentication",
	"financial services": "AWS financial services compliance regulations banking",
	"cybersecurity":      "AWS security GuardDuty Security Hub WAF Shield cybersecurity",
	"access control":     "AWS IAM access control authentication authorization",
	"data protection":    "AWS data protection encryption S3 KMS at rest in transit",
}

// BuildQuery turns a requirement into a documentation search query
func BuildQuery(req *model.Requirement) string {
	domain := strings.ToLower(req.Domain)
	framework := strings.ToLower(req.Framework)

	query, ok := domainQueries[domain]
	if !ok {
		query = fmt.Sprintf("AWS %s %s compliance best practices", domain, framework)
	}
	if len(req.ApplicableTo) > 0 {
		query += " " + strings.ToLower(strings.Join(req.ApplicableTo, " "))
	}
	return query
}

var (
	prefixedService = regexp.MustCompile(`\b(Amazon|AWS)\s+([A-Z][a-zA-Z]+)(?:[\s,.]|$)`)
	knownService    = regexp.MustCompile(`(?i)(GuardDuty|CloudTrail|CloudWatch|KMS|S3|EC2|Lambda|IAM|Shield|WAF|Config|Systems Manager|Macie|Inspector|Certificate Manager)`)
	sentenceEnd     = regexp.MustCompile(`[.!?]+`)
)

var actionWords = []string{"implement", "configure", "enable", "use", "set up", "deploy", "create", "establish", "activate", "install"}

// Extract derives guidance from search result text: service names, up to
// five actionable sentences and cost notes
func Extract(text string) *model.Guidance {
	g := &model.Guidance{
		AWSServices:         extractServices(text),
		ImplementationSteps: extractSteps(text),
	}

	lower := strings.ToLower(text)
	if strings.Contains(lower, "cost") || strings.Contains(lower, "pricing") {
		g.CostConsiderations = []string{
			"Review AWS pricing calculator for detailed cost estimates",
			"Consider using AWS Cost Explorer for ongoing cost monitoring",
		}
	} else {
		g.CostConsiderations = []string{"Use AWS Cost Calculator to estimate implementation costs"}
	}
	return g
}

func extractServices(text string) []string {
	seen := make(map[string]struct{})
	services := []string{}
	add := func(name string) {
		name = strings.TrimSpace(name)
		if n := utf8.RuneCountInString(name); n <= 2 || n >= 35 {
			return
		}
		lower := strings.ToLower(name)
		if strings.Contains(lower, "documentation") || strings.Contains(lower, "guide") || strings.Contains(lower, "tutorial") {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		services = append(services, name)
	}

	for _, m := range prefixedService.FindAllStringSubmatch(text, -1) {
		add(m[1] + " " + m[2])
	}
	for _, m := range knownService.FindAllString(text, -1) {
		add(m)
	}

	if len(services) > maxServices {
		services = services[:maxServices]
	}
	return services
}

func extractSteps(text string) []string {
	steps := []string{}
	for _, sentence := range sentenceEnd.Split(text, -1) {
		if len(steps) >= maxSteps {
			break
		}
		sentence = strings.TrimSpace(sentence)
		if len(sentence) <= 20 || len(sentence) >= 200 {
			continue
		}
		if !containsAction(strings.ToLower(sentence)) {
			continue
		}
		steps = append(steps, capitalize(sentence))
	}
	return steps
}

func containsAction(s string) bool {
	for _, word := range actionWords {
		if strings.Contains(s, word) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
