package llm

import (
	"regexp"
	"strconv"
	"strings"
)

// Suggestion is one parsed group proposal from a topic-clustering
// completion.
type Suggestion struct {
	Name   string
	TabIDs []int
}

var (
	groupHeadingRe = regexp.MustCompile(`(?mi)^\s*group\s+\d+\s+name:\s*`)
	ordinalRe      = regexp.MustCompile(`(?i)tab\s+(\d+)`)
	numberRe       = regexp.MustCompile(`\d+`)
)

// ParseGroupSuggestions parses free-text topic suggestions of the form the
// clustering prompt asks for:
//
//	Group 1 Name: <name>
//	Tabs: <id or "Tab N" list>
//
// Ids are validated against batchIDs; "Tab N" ordinals resolve against the
// batch order (1-based). Groups with fewer than two valid ids are dropped.
// Free-text parsing is brittle by construction: a non-conforming completion
// yields fewer or no suggestions, never an error.
func ParseGroupSuggestions(completion string, batchIDs []int) []Suggestion {
	sections := groupHeadingRe.Split(completion, -1)
	if len(sections) < 2 {
		return nil
	}

	known := make(map[int]bool, len(batchIDs))
	for _, id := range batchIDs {
		known[id] = true
	}

	var out []Suggestion
	for _, section := range sections[1:] {
		lines := strings.SplitN(section, "\n", 2)
		name := strings.TrimSpace(lines[0])
		if name == "" {
			continue
		}
		rest := ""
		if len(lines) > 1 {
			rest = lines[1]
		}

		ids := extractTabIDs(rest, batchIDs, known)
		if len(ids) < 2 {
			continue
		}
		out = append(out, Suggestion{Name: name, TabIDs: ids})
	}
	return out
}

// extractTabIDs pulls tab ids out of a section body. "Tab N" ordinals are
// resolved first and masked out so their digits are not re-read as literal
// ids; remaining bare numbers must match a known batch id.
func extractTabIDs(text string, batchIDs []int, known map[int]bool) []int {
	var ids []int
	seen := make(map[int]bool)

	add := func(id int) {
		if known[id] && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, m := range ordinalRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > len(batchIDs) {
			continue
		}
		add(batchIDs[n-1])
	}
	masked := ordinalRe.ReplaceAllString(text, " ")

	for _, m := range numberRe.FindAllString(masked, -1) {
		id, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		add(id)
	}
	return ids
}

// ParseIDList extracts numeric tab ids from a free-text reply and
// intersects them with the known-eligible set, defending against
// hallucinated ids. Order follows the reply; duplicates collapse.
func ParseIDList(completion string, known []int) []int {
	knownSet := make(map[int]bool, len(known))
	for _, id := range known {
		knownSet[id] = true
	}

	var ids []int
	seen := make(map[int]bool)
	for _, m := range numberRe.FindAllString(completion, -1) {
		id, err := strconv.Atoi(m)
		if err != nil || !knownSet[id] || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
