package classifier

import (
	"strings"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

type keywordRule struct {
	keywords []string
	result   domain.Classification
}

// fallbackRules are checked in order; the first rule with a matching keyword wins.
var fallbackRules = []keywordRule{
	{
		keywords: []string{"password", "login", "mfa"},
		result:   domain.Classification{Category: domain.CategoryMicrosoft365, Priority: domain.PriorityHigh, Confidence: 0.5},
	},
	{
		keywords: []string{"printer", "hard drive", "keyboard", "mouse"},
		result:   domain.Classification{Category: domain.CategoryHardware, Priority: domain.PriorityMedium, Confidence: 0.35},
	},
	{
		keywords: []string{"vpn", "network", "internet"},
		result:   domain.Classification{Category: domain.CategoryNetworking, Priority: domain.PriorityHigh, Confidence: 0.5},
	},
	{
		keywords: []string{"phish", "malware", "ransom"},
		result:   domain.Classification{Category: domain.CategorySecurity, Priority: domain.PriorityCritical, Confidence: 0.6},
	},
}

var defaultFallback = domain.Classification{Category: domain.CategorySoftware, Priority: domain.PriorityMedium, Confidence: 0.25}

// Heuristic classifies text with the local keyword rules. It never calls out.
func Heuristic(text string) domain.Classification {
	lowered := strings.ToLower(text)
	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule.result
			}
		}
	}
	return defaultFallback
}
