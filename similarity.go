package xmldiff

import (
	"sort"
	"strings"
)

// LeafRatio scores two nodes without considering children (spec.md
// §4.2). uniqueAttrs are qualified attribute names treated as identity
// keys: if either node carries one, it decides the score outright
// (1.0 if both carry it with an equal value, 0.0 otherwise), checked in
// the order given and short-circuiting on the first attribute present.
func LeafRatio(a, b *Node, uniqueAttrs []QName) float64 {
	if a.tag != b.tag {
		return 0
	}
	for _, key := range uniqueAttrs {
		av, aok := a.attrs.Get(key)
		bv, bok := b.attrs.Get(key)
		if aok || bok {
			if aok && bok && av == bv {
				return 1
			}
			return 0
		}
	}
	return sequenceRatio(nodeText(a), nodeText(b))
}

// nodeText builds the "node text" leaf_ratio compares: sorted
// "name:value" attribute strings, then stripped leading text, then
// stripped tail text, space-joined.
func nodeText(n *Node) string {
	names := n.attrs.SortedNames()
	parts := make([]string, 0, len(names)+2)
	for _, name := range names {
		v, _ := n.attrs.Get(name)
		parts = append(parts, name.String()+":"+v)
	}
	if t := strings.TrimSpace(n.text); t != "" {
		parts = append(parts, t)
	}
	if t := strings.TrimSpace(n.tail); t != "" {
		parts = append(parts, t)
	}
	return strings.Join(parts, " ")
}

// ChildRatio is the fraction of a's children already matched to a child
// of b, per the matchOf lookup (spec.md §4.2). matchOf should return the
// current match of a node in the opposite tree, or nil.
func ChildRatio(a, b *Node, matchOf func(*Node) *Node) float64 {
	bChildren := make(map[*Node]bool, b.ChildCount())
	for _, c := range b.children {
		bChildren[c] = true
	}

	matched := 0
	for _, c := range a.children {
		if m := matchOf(c); m != nil && bChildren[m] {
			matched++
		}
	}

	n := len(a.children)
	if len(b.children) > n {
		n = len(b.children)
	}
	if n == 0 {
		return 1
	}
	return float64(matched) / float64(n)
}

// sequenceRatio is a from-scratch Ratcliff/Obershelp "matching blocks
// over total length" ratio in [0,1]: 1.0 on equality, 0.0 on disjoint
// alphabets, monotone in the length of the longest common substring
// (spec.md §9's acceptance criteria for any string-similarity metric).
// No pack dependency implements this exact metric (see DESIGN.md), so
// it's hand-rolled, following the classic recursive algorithm: find the
// single longest matching block, then recurse on the substrings to its
// left and right.
func sequenceRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	matching := matchingBlockLen(a, b)
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	return 2 * float64(matching) / float64(total)
}

// matchingBlockLen sums the lengths of all matching blocks between a and
// b, recursively splitting around the single longest match at each
// level (same recursion Python's difflib.SequenceMatcher.ratio uses).
func matchingBlockLen(a, b string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, length := longestMatch(a, b)
	if length == 0 {
		return 0
	}
	total := length
	total += matchingBlockLen(a[:ai], b[:bi])
	total += matchingBlockLen(a[ai+length:], b[bi+length:])
	return total
}

// longestMatch finds the longest common contiguous substring of a and b,
// returning its start index in each and its length. Ties are broken in
// favor of the earliest match in a, then in b, matching the
// deterministic behavior spec.md §9 requires of the chosen metric.
func longestMatch(a, b string) (ai, bi, length int) {
	// index b's byte positions by byte value for an O(len(a)*len(b))
	// scan; inputs here are short node-text strings, not document bodies.
	positions := make(map[byte][]int, 256)
	for i := 0; i < len(b); i++ {
		positions[b[i]] = append(positions[b[i]], i)
	}

	// best[j] = length of the match ending at b-index j-1 for the a-index
	// currently being scanned, reused across the outer loop per the
	// standard O(n*m) dynamic-programming formulation.
	best := make([]int, len(b)+1)
	bestLen := 0
	for i := 0; i < len(a); i++ {
		newBest := make([]int, len(b)+1)
		for _, j := range positions[a[i]] {
			run := best[j] + 1
			newBest[j+1] = run
			if run > bestLen {
				bestLen = run
				ai = i - run + 1
				bi = j - run + 1
			}
		}
		best = newBest
	}
	return ai, bi, bestLen
}

// sortQNames returns names sorted by their String() form. It backs
// Attrs.SortedNames, the deterministic order the spec's attribute
// reconciliation needs (update_node step 3, RenameAttrib matching).
func sortQNames(names []QName) []QName {
	out := append([]QName(nil), names...)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
