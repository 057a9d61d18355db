package llm

import (
	"reflect"
	"testing"
)

func TestParseGroupSuggestionsTwoGroups(t *testing.T) {
	completion := `Here are the groups:

Group 1 Name: Shopping
Tabs: 3, 7

Group 2 Name: Research Papers
Tabs: 12, 15, 18
`
	batch := []int{3, 7, 12, 15, 18}
	got := ParseGroupSuggestions(completion, batch)
	if len(got) != 2 {
		t.Fatalf("got %d suggestions, want 2: %+v", len(got), got)
	}
	if got[0].Name != "Shopping" || !reflect.DeepEqual(got[0].TabIDs, []int{3, 7}) {
		t.Fatalf("suggestion 0 = %+v", got[0])
	}
	if got[1].Name != "Research Papers" || !reflect.DeepEqual(got[1].TabIDs, []int{12, 15, 18}) {
		t.Fatalf("suggestion 1 = %+v", got[1])
	}
}

func TestParseGroupSuggestionsOrdinals(t *testing.T) {
	completion := `Group 1 Name: News
Tabs: Tab 1, Tab 3
`
	batch := []int{101, 102, 103}
	got := ParseGroupSuggestions(completion, batch)
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(got))
	}
	if !reflect.DeepEqual(got[0].TabIDs, []int{101, 103}) {
		t.Fatalf("ordinals resolved to %v, want [101 103]", got[0].TabIDs)
	}
}

func TestParseGroupSuggestionsDropsSingletons(t *testing.T) {
	completion := `Group 1 Name: Lonely
Tabs: 3

Group 2 Name: Pair
Tabs: 3, 7
`
	got := ParseGroupSuggestions(completion, []int{3, 7})
	if len(got) != 1 || got[0].Name != "Pair" {
		t.Fatalf("singleton group should be dropped, got %+v", got)
	}
}

func TestParseGroupSuggestionsDropsUnknownIDsBeforeSizeCheck(t *testing.T) {
	// 99 and 100 are hallucinated; only one valid id remains, so the group
	// fails the size check.
	completion := `Group 1 Name: Mixed
Tabs: 3, 99, 100
`
	got := ParseGroupSuggestions(completion, []int{3, 7})
	if len(got) != 0 {
		t.Fatalf("group with one valid id should be dropped, got %+v", got)
	}
}

func TestParseGroupSuggestionsNonConformingText(t *testing.T) {
	if got := ParseGroupSuggestions("I could not group these tabs.", []int{1, 2}); got != nil {
		t.Fatalf("non-conforming completion should yield nothing, got %+v", got)
	}
}

func TestParseIDList(t *testing.T) {
	got := ParseIDList("Group these with it: 4, 9, 4, and maybe 77.", []int{4, 9, 11})
	if !reflect.DeepEqual(got, []int{4, 9}) {
		t.Fatalf("ParseIDList = %v, want [4 9]", got)
	}
}

func TestParseIDListEmptyReply(t *testing.T) {
	if got := ParseIDList("none of these belong together", []int{1, 2}); len(got) != 0 {
		t.Fatalf("expected no ids, got %v", got)
	}
}
