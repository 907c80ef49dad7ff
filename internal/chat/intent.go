package chat

import "strings"

type Intent int

const (
	IntentNone Intent = iota
	IntentProjectList
	IntentProjectFilter
	IntentTechStack
	IntentSelfIntro
	IntentGreeting
)

func (i Intent) String() string {
	switch i {
	case IntentProjectList:
		return "project-list"
	case IntentProjectFilter:
		return "project-list-filtered"
	case IntentTechStack:
		return "tech-stack-info"
	case IntentSelfIntro:
		return "self-intro"
	case IntentGreeting:
		return "greeting"
	default:
		return "none"
	}
}

// projectListMarker is the simplified history text stored for project
// listings. Its presence in the previous AI turn marks a technology-naming
// follow-up as a filter on that listing.
const projectListMarker = "[project_list]"

type Classifier struct {
	rules   *Rules
	matcher *TechMatcher
}

func NewClassifier(rules *Rules, matcher *TechMatcher) *Classifier {
	return &Classifier{rules: rules, matcher: matcher}
}

func containsAny(message string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(message, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Classify decides exactly one intent for the lowercase-trimmed message.
// Keyword sets are checked in fixed priority order, first match wins, no
// scoring. The returned tag is non-empty only for IntentProjectFilter. An
// empty message runs the same matching and falls through to IntentNone.
func (c *Classifier) Classify(message, lastAIText string) (Intent, string) {
	if containsAny(message, c.rules.Intents.Project.Keywords) {
		if tag, ok := c.matcher.MatchOne(message); ok {
			return IntentProjectFilter, tag
		}
		return IntentProjectList, ""
	}

	// A technology name right after a project listing narrows that listing
	// rather than starting a fresh request.
	if strings.Contains(lastAIText, projectListMarker) {
		if tag, ok := c.matcher.MatchOne(message); ok {
			return IntentProjectFilter, tag
		}
	}

	if containsAny(message, c.rules.Intents.TechStack.Keywords) {
		return IntentTechStack, ""
	}
	if containsAny(message, c.rules.Intents.SelfIntro.Keywords) {
		return IntentSelfIntro, ""
	}
	if containsAny(message, c.rules.Intents.Greeting.Keywords) {
		return IntentGreeting, ""
	}

	return IntentNone, ""
}
