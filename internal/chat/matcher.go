package chat

import (
	"sort"
	"strings"
	"unicode/utf8"
)

type surfaceEntry struct {
	surface string
	tag     string
	order   int // declaration order in the rules file
}

// TechMatcher maps free-text technology mentions (bilingual synonyms) to
// canonical tags. Matching is substring containment over the lowercased
// message. Surfaces are tried longest-first, ties broken by declaration
// order, and a matched span is claimed so that shorter surfaces cannot
// re-match inside it ("javascript" must not also produce "java"). This makes
// the result order fully deterministic.
type TechMatcher struct {
	surfaces []surfaceEntry
}

func NewTechMatcher(rules *Rules) *TechMatcher {
	var entries []surfaceEntry
	for i, tech := range rules.Technologies {
		for _, surface := range tech.Surfaces {
			entries = append(entries, surfaceEntry{
				surface: strings.ToLower(surface),
				tag:     tech.Tag,
				order:   i,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		li := utf8.RuneCountInString(entries[i].surface)
		lj := utf8.RuneCountInString(entries[j].surface)
		if li != lj {
			return li > lj
		}
		return entries[i].order < entries[j].order
	})

	return &TechMatcher{surfaces: entries}
}

type span struct{ start, end int }

func overlaps(claimed []span, start, end int) bool {
	for _, s := range claimed {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}

// Match returns the canonical tags named in text, deduplicated, in
// longest-surface-first match order.
func (m *TechMatcher) Match(text string) []string {
	lowered := strings.ToLower(text)

	var claimed []span
	var tags []string
	seen := make(map[string]bool)

	for _, entry := range m.surfaces {
		offset := 0
		for {
			idx := strings.Index(lowered[offset:], entry.surface)
			if idx < 0 {
				break
			}
			start := offset + idx
			end := start + len(entry.surface)
			offset = end

			if overlaps(claimed, start, end) {
				continue
			}
			claimed = append(claimed, span{start, end})

			if !seen[entry.tag] {
				seen[entry.tag] = true
				tags = append(tags, entry.tag)
			}
		}
	}

	return tags
}

// MatchOne returns the single highest-priority tag named in text.
func (m *TechMatcher) MatchOne(text string) (string, bool) {
	tags := m.Match(text)
	if len(tags) == 0 {
		return "", false
	}
	return tags[0], true
}
