package dataprocessing

import "sort"

// ResolveOrder resolves the display order of a label set against an optional
// declared ordering. Labels named by the declared order keep that relative
// order and come first; observed labels outside it are appended sorted
// lexically. With no declared order every observed label is sorted lexically.
// Resolution is idempotent and never emits a declared label that was not
// observed.
func ResolveOrder(observed, declared []string) []string {
	present := toSet(observed)

	if len(declared) == 0 {
		all := keys(present)
		sort.Strings(all)
		return all
	}

	ordered := declaredHits(declared, present)

	inOrder := toSet(ordered)
	var rest []string
	for label := range present {
		if !inOrder[label] {
			rest = append(rest, label)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

// ResolveOrderStrict is the sample-row variant of ResolveOrder: observed
// labels absent from the declared order are discarded rather than appended.
// With no declared order it behaves exactly like ResolveOrder.
func ResolveOrderStrict(observed, declared []string) []string {
	if len(declared) == 0 {
		return ResolveOrder(observed, nil)
	}
	return declaredHits(declared, toSet(observed))
}

// declaredHits walks the declared order and keeps entries that were observed,
// dropping repeats.
func declaredHits(declared []string, present map[string]bool) []string {
	var out []string
	taken := make(map[string]bool, len(declared))
	for _, label := range declared {
		if present[label] && !taken[label] {
			taken[label] = true
			out = append(out, label)
		}
	}
	return out
}

func toSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return set
}

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
