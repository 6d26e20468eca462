package gemini

import "strings"

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"Food & Drinks", []string{"food", "restaurant", "coffee", "starbucks"}},
	{"Office Supplies", []string{"office", "supplies"}},
	{"Travel", []string{"travel", "uber", "gas"}},
	{"Software", []string{"software", "subscription"}},
	{"Shopping", []string{"amazon", "target", "walmart"}},
}

// inferCategory guesses a category from free text. Unknown text is "Other".
func inferCategory(description string) string {
	desc := strings.ToLower(description)
	for _, rule := range categoryKeywords {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				return rule.category
			}
		}
	}
	return "Other"
}
