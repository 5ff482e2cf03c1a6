package xmldiff

// Match is one element of the matcher's output: a correspondence
// between a left node and a right node at the recorded score. Matches
// satisfy the invariants of spec.md §3: every left node appears in at
// most one Match, every right node in at most one, and Score is always
// >= the configured acceptance threshold F.
type Match struct {
	Left  *Node
	Right *Node
	Score float64
}

// Matcher establishes a partial correspondence between the nodes of two
// trees, following spec.md §4.3. A Matcher is stateful but not
// reentrant: SetTrees resets everything SetTrees/Match previously
// computed, and Match returns a UsageOrder error before the first
// SetTrees call.
type Matcher struct {
	cfg Config

	left, right *Node
	matches     []Match
	haveTrees   bool
}

// NewMatcher builds a Matcher from the given options, applied over
// defaultConfig.
func NewMatcher(opts ...Option) *Matcher {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Matcher{cfg: cfg}
}

// SetTrees installs the left and right roots to match, clearing any
// state from a previous run (spec.md §4.3's "State" paragraph).
func (m *Matcher) SetTrees(left, right *Node) {
	m.left = left
	m.right = right
	m.matches = nil
	m.haveTrees = true
	for _, n := range PostOrder(left) {
		n.SetMatch(nil, 0)
	}
	for _, n := range PostOrder(right) {
		n.SetMatch(nil, 0)
	}
}

// Match computes (or, on repeated calls, returns the already-computed)
// match set. The result is stable and ordered by the left tree's post
// order; it only changes across a call to SetTrees (spec.md §4.3's
// contract). Calling Match before SetTrees is a UsageOrder error.
func (m *Matcher) Match() ([]Match, error) {
	if !m.haveTrees {
		return nil, &Error{Kind: UsageOrder, Op: "Matcher.Match", Err: errf("sequences not set")}
	}
	if m.matches != nil {
		return m.matches, nil
	}

	leftPost := PostOrder(m.left)
	rightPost := PostOrder(m.right)
	matchedRight := make(map[*Node]bool, len(rightPost))

	m.matchUniqueAttrs(leftPost, rightPost, matchedRight)

	for _, ln := range leftPost {
		if ln.Match() != nil || ln == m.left {
			continue
		}
		lxpath := CanonicalXPath(ln)

		// A parent paired by matchUniqueAttrs is already known before this
		// node is ever considered (post-order visits children first, so
		// nothing else can have set it yet), which lets its own match
		// narrow the search to that parent's children instead of the
		// whole tree -- otherwise a structurally closer but unrelated
		// node elsewhere could claim this one first.
		candidates := rightPost
		if ln.parent != nil {
			if pm := ln.parent.Match(); pm != nil {
				candidates = pm.children
			}
		}

		var best *Node
		bestScore := -1.0
	scan:
		for _, rn := range candidates {
			if matchedRight[rn] || rn == m.right {
				continue
			}
			score := LeafRatio(ln, rn, m.cfg.UniqueAttrs) * ChildRatio(ln, rn, func(c *Node) *Node { return c.Match() })
			rxpath := CanonicalXPath(rn)

			switch {
			case score > bestScore:
				bestScore, best = score, rn
			case score == bestScore && best != nil:
				if rxpath == lxpath && CanonicalXPath(best) != lxpath {
					best = rn
				}
			}

			if score == 1.0 && rxpath == lxpath {
				bestScore, best = score, rn
				break scan
			}
		}

		if best != nil && bestScore >= m.cfg.F {
			ln.SetMatch(best, bestScore)
			best.SetMatch(ln, bestScore)
			matchedRight[best] = true
		}
	}

	// The two roots always correspond (Generator.Generate relies on it):
	// they are kept out of the scan above and paired here.
	if m.left.Match() == nil && !matchedRight[m.right] {
		m.left.SetMatch(m.right, 1.0)
		m.right.SetMatch(m.left, 1.0)
	}

	// Report in left post order, whichever pass recorded the match.
	matches := make([]Match, 0, len(leftPost))
	for _, ln := range leftPost {
		if rn := ln.Match(); rn != nil {
			matches = append(matches, Match{Left: ln, Right: rn, Score: ln.MatchScore()})
		}
	}
	m.matches = matches
	return matches, nil
}

// matchUniqueAttrs pairs left/right nodes sharing a value for one of
// cfg.UniqueAttrs (xml:id by default), before the general post-order
// greedy scan runs. Without this pass, the greedy scan visits children
// before parents and can let an unrelated, structurally closer node claim
// a uniqueattrs-bearing node's child before the parent pairing is ever
// considered, so the dominance spec.md §4.3 requires never actually
// takes effect. Attributes are checked in the configured order, the
// first one present on a node decides its pairing (or its absence of
// one), matching LeafRatio's own short-circuit rule.
func (m *Matcher) matchUniqueAttrs(leftPost, rightPost []*Node, matchedRight map[*Node]bool) []Match {
	if len(m.cfg.UniqueAttrs) == 0 {
		return nil
	}

	type key struct {
		attr QName
		val  string
	}
	byKey := make(map[key]*Node, len(rightPost))
	for _, rn := range rightPost {
		for _, attr := range m.cfg.UniqueAttrs {
			if v, ok := rn.attrs.Get(attr); ok {
				byKey[key{attr, v}] = rn
				break
			}
		}
	}

	var matches []Match
	for _, ln := range leftPost {
		for _, attr := range m.cfg.UniqueAttrs {
			v, ok := ln.attrs.Get(attr)
			if !ok {
				continue
			}
			if rn, found := byKey[key{attr, v}]; found && !matchedRight[rn] && rn.tag == ln.tag {
				ln.SetMatch(rn, 1.0)
				rn.SetMatch(ln, 1.0)
				matchedRight[rn] = true
				matches = append(matches, Match{Left: ln, Right: rn, Score: 1.0})
			}
			break
		}
	}
	return matches
}

// LeftToRight returns n's matched counterpart in the right tree, or nil
// if n is unmatched or belongs to the right tree.
func (m *Matcher) LeftToRight(n *Node) *Node { return n.Match() }

// RightToLeft returns n's matched counterpart in the left tree, or nil
// if n is unmatched or belongs to the left tree.
func (m *Matcher) RightToLeft(n *Node) *Node { return n.Match() }
