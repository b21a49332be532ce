package completion

import (
	"sort"
	"strings"
)

// completionSet is an ordered, case-insensitive deduplicating container of
// (kind, text) pairs for a single completion kind. It mirrors the
// std::set<pair<int,string>, CompareAcEntries> used by the original
// mysql-code-completion.cpp: insertion order doesn't matter, only the
// final case-insensitive lexicographic order does.
type completionSet struct {
	kind    CompletionKind
	seen    map[string]struct{} // lower(text) -> present
	entries []string
}

func newCompletionSet(kind CompletionKind) *completionSet {
	return &completionSet{kind: kind, seen: map[string]struct{}{}}
}

// add inserts text if no case-insensitive duplicate is already present.
// Idempotent: adding the same text (in any case) twice is a no-op the
// second time.
func (s *completionSet) add(text string) {
	if text == "" {
		return
	}
	key := strings.ToLower(text)
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.entries = append(s.entries, text)
}

func (s *completionSet) addAll(texts []string) {
	for _, t := range texts {
		s.add(t)
	}
}

func (s *completionSet) len() int {
	return len(s.entries)
}

// entriesSorted returns the set's contents sorted case-insensitively,
// ties broken by the original (stable) case-sensitive text.
func (s *completionSet) entriesSorted() []CompletionEntry {
	sorted := make([]string, len(s.entries))
	copy(sorted, s.entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		li, lj := strings.ToLower(sorted[i]), strings.ToLower(sorted[j])
		if li == lj {
			return sorted[i] < sorted[j]
		}
		return li < lj
	})

	result := make([]CompletionEntry, len(sorted))
	for i, text := range sorted {
		result[i] = CompletionEntry{Kind: s.kind, Text: text}
	}
	return result
}
