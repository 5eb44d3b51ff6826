package guidance

import (
	"slices"
	"strings"

	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
)

type fallbackEntry struct {
	services []string
	steps    []string
	costs    []string
}

var fallbackTable = map[string]fallbackEntry{
	"data privacy": {
		services: []string{"Amazon S3", "AWS KMS", "AWS CloudTrail", "Amazon Macie", "AWS Config", "Amazon GuardDuty"},
		steps: []string{
			"Enable encryption at rest using AWS KMS for all data storage systems",
			"Configure CloudTrail for comprehensive audit logging and compliance tracking",
			"Use Amazon Macie for automated data discovery and classification",
			"Implement S3 bucket policies with least privilege access controls",
			"Set up AWS Config rules for continuous compliance monitoring",
			"Deploy data loss prevention policies using Amazon Macie",
		},
		costs: []string{
			"KMS key usage charges apply per encryption/decryption operation",
			"CloudTrail charges for events logged and S3 storage costs",
			"Macie pricing based on data processed and classification jobs",
		},
	},
	"iot security": {
		services: []string{"AWS IoT Core", "AWS IoT Device Management", "AWS Certificate Manager", "AWS IoT Device Defender", "Amazon CloudWatch"},
		steps: []string{
			"Use X.509 certificates for secure device authentication and identity",
			"Implement fine-grained device policies in IoT Core with minimal permissions",
			"Enable IoT Device Defender for continuous security monitoring and threat detection",
			"Configure over-the-air updates for security patches and firmware updates",
			"Set up device fleet management with automated compliance reporting",
			"Implement device shadows for offline device state management",
		},
		costs: []string{
			"IoT Core charges per message published/delivered",
			"Certificate Manager provides free SSL/TLS certificates",
			"Device Defender charges per device monitored monthly",
		},
	},
	"cybersecurity": {
		services: []string{"Amazon GuardDuty", "AWS Security Hub", "AWS WAF", "AWS Shield", "Amazon Inspector", "AWS Config"},
		steps: []string{
			"Enable GuardDuty for intelligent threat detection across your AWS environment",
			"Configure Security Hub for centralized security findings management",
			"Implement WAF rules for application layer protection against common attacks",
			"Set up automated incident response workflows using Lambda and SNS",
			"Deploy Inspector for automated security assessments of applications and infrastructure",
			"Use AWS Config for continuous security compliance monitoring",
		},
		costs: []string{
			"GuardDuty charges per GB of logs analyzed and per million DNS queries",
			"Security Hub charges per security check per region",
			"WAF charges per web ACL, rule, and request processed",
		},
	},
	"financial services": {
		services: []string{"AWS Config", "Amazon CloudWatch", "AWS Systems Manager", "AWS CloudFormation", "AWS CloudTrail", "Amazon Inspector"},
		steps: []string{
			"Use AWS Config for continuous compliance monitoring and configuration management",
			"Implement comprehensive logging and monitoring with CloudWatch",
			"Deploy Systems Manager for automated patch management and compliance",
			"Establish Infrastructure as Code practices with CloudFormation templates",
			"Set up automated compliance reporting and audit trail documentation",
			"Implement security scanning with Amazon Inspector for regulatory compliance",
		},
		costs: []string{
			"Config charges per configuration item recorded per region",
			"CloudWatch charges for metrics, logs storage, and dashboard usage",
			"Systems Manager Patch Manager is free but EC2 usage charges apply",
		},
	},
	"access control": {
		services: []string{"AWS IAM", "Amazon Cognito", "AWS Single Sign-On", "AWS Directory Service", "AWS CloudTrail"},
		steps: []string{
			"Implement least privilege access using IAM roles and policies",
			"Use Amazon Cognito for user authentication and authorization",
			"Set up multi-factor authentication (MFA) for all user accounts",
			"Configure AWS Single Sign-On for centralized access management",
			"Enable CloudTrail for comprehensive access logging and audit trails",
			"Implement regular access reviews and automated policy validation",
		},
		costs: []string{
			"IAM is free for AWS account users and roles",
			"Cognito charges per monthly active user",
			"AWS SSO is free for up to 5 users, then charges per user per month",
		},
	},
}

var defaultFallback = fallbackEntry{
	services: []string{"AWS Config", "AWS CloudFormation", "AWS Systems Manager", "Amazon CloudWatch", "AWS CloudTrail"},
	steps: []string{
		"Use AWS Config for compliance monitoring and configuration management",
		"Implement Infrastructure as Code with CloudFormation templates",
		"Enable Systems Manager for centralized configuration and patch management",
		"Set up CloudWatch for comprehensive monitoring and alerting",
		"Establish automated compliance reporting workflows",
		"Configure CloudTrail for complete audit logging and governance",
	},
	costs: []string{
		"Contact AWS sales for detailed pricing information based on your usage patterns",
		"Use AWS Cost Calculator to estimate implementation costs",
		"Consider AWS savings plans for predictable workloads",
	},
}

// Fallback returns the static guidance for the requirement's domain, matched
// case-insensitively, or the generic entry. LastUpdated is left zero.
func Fallback(req *model.Requirement) *model.Guidance {
	entry, ok := fallbackTable[strings.ToLower(strings.TrimSpace(req.Domain))]
	if !ok {
		entry = defaultFallback
	}

	return &model.Guidance{
		AWSServices:         slices.Clone(entry.services),
		ImplementationSteps: slices.Clone(entry.steps),
		CostConsiderations:  slices.Clone(entry.costs),
		Source:              model.GuidanceSourceFallback,
	}
}
