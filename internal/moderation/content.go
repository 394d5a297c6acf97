package moderation

import (
	"fmt"
	"regexp"
	"strings"
)

// ModerationResult is a synchronous gate; it is never persisted.
type ModerationResult struct {
	IsAllowed bool   `json:"is_allowed"`
	Message   string `json:"message,omitempty"`
}

type keywordCategory struct {
	name     string
	keywords []string
}

// Categories are scanned in order; the first category with a whole-word match
// blocks the submission. Matching is case-insensitive on word boundaries, so
// "hate" blocks "I hate you" but not "Chateau".
var bannedCategories = []keywordCategory{
	{
		name: "prohibited goods",
		keywords: []string{
			"weapon", "firearm", "ammunition", "narcotics", "cocaine",
			"heroin", "counterfeit", "stolen",
		},
	},
	{
		name: "hate or violence",
		keywords: []string{
			"hate", "kill", "murder", "terrorist", "nazi",
		},
	},
	{
		name: "adult content",
		keywords: []string{
			"escort", "porn", "xxx", "nude",
		},
	},
	{
		name: "scam",
		keywords: []string{
			"pyramid", "ponzi", "mlm", "quick money", "guaranteed profit",
		},
	},
}

var keywordPatterns = compilePatterns()

func compilePatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp)
	for _, cat := range bannedCategories {
		for _, kw := range cat.keywords {
			patterns[kw] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
		}
	}
	return patterns
}

// CheckContent scans text against the banned keyword list. The first category
// containing a matched word determines the result; all matched words of that
// category are reported back.
func CheckContent(text string) ModerationResult {
	for _, cat := range bannedCategories {
		var matched []string
		for _, kw := range cat.keywords {
			if keywordPatterns[kw].MatchString(text) {
				matched = append(matched, kw)
			}
		}
		if len(matched) > 0 {
			return ModerationResult{
				IsAllowed: false,
				Message:   fmt.Sprintf("content blocked (%s): %s", cat.name, strings.Join(matched, ", ")),
			}
		}
	}
	return ModerationResult{IsAllowed: true}
}

// ModerateListing checks the title first and short-circuits on a title
// rejection before the description is ever examined.
func ModerateListing(title, description string) ModerationResult {
	if res := CheckContent(title); !res.IsAllowed {
		return res
	}
	return CheckContent(description)
}
