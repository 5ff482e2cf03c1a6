package xmldiff

// Generator walks a matched (left, right) pair of trees and emits the
// ordered edit script that transforms left into right, per spec.md
// §4.4. It mutates the left tree as it emits -- the invariant it
// maintains throughout is that applying operations 1..k to a faithful
// copy of the *original* left tree reproduces the *current* internal
// left tree after emitting operation k. The one exception is the
// same-parent MoveNode operations alignChildren emits: they leave the
// left tree's child order unchanged.
type Generator struct {
	cfg      Config
	leftTree *Tree
	left     *Node
	right    *Node

	// inOrder is the subset of matched children (on both sides) whose
	// relative order is already consistent with the current alignment,
	// and which therefore need no MoveNode (spec.md's in-order set).
	inOrder map[*Node]bool
}

// NewGenerator builds a Generator over a left tree (already matched
// against right via a Matcher) that the generator will mutate in
// place, and the right tree it reconciles left against.
func NewGenerator(leftTree *Tree, right *Node, opts ...Option) *Generator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Generator{
		cfg:      cfg,
		leftTree: leftTree,
		left:     leftTree.Root(),
		right:    right,
		inOrder:  map[*Node]bool{},
	}
}

// Generate produces the full edit script: pass 1 (insert/update/move/
// align, breadth-first over right), then pass 2 (delete, post-order
// over left).
func (g *Generator) Generate() Script {
	var script Script

	for _, r := range BreadthFirst(g.right) {
		if r.Parent() == nil {
			// The document roots correspond to each other directly; there
			// is nowhere to insert or move a second root to, so only
			// content reconciliation and child alignment apply.
			if ln := r.Match(); ln != nil {
				script = append(script, g.updateNode(ln, r)...)
				script = append(script, g.alignChildren(ln, r)...)
			}
			continue
		}

		ltarget := r.Parent().Match()

		if m := r.Match(); m != nil && !g.cfg.MoveDeltas && m.Parent() != ltarget {
			// Reparenting without move detection: describe as a delete of
			// the old node (pass 2 picks it up once unmatched) plus an
			// insert of the new one, instead of a single MoveNode.
			m.SetMatch(nil, 0)
			r.SetMatch(nil, 0)
		}

		var ln *Node
		if r.Match() == nil {
			pos := g.findPosition(r)
			script = append(script, Op{
				Type:     OpInsertNode,
				Target:   CanonicalXPath(ltarget),
				Tag:      r.Tag(),
				Position: pos,
			})
			ln = g.leftTree.NewNode(r.Tag())
			ln.SetMatch(r, 1.0)
			r.SetMatch(ln, 1.0)
			ltarget.InsertChildAt(ln, pos)
			script = append(script, g.updateNode(ln, r)...)
		} else {
			ln = r.Match()
			script = append(script, g.updateNode(ln, r)...)
			if ln.Parent() != ltarget {
				pos := g.findPosition(r)
				script = append(script, Op{
					Type:     OpMoveNode,
					Node:     CanonicalXPath(ln),
					Target:   CanonicalXPath(ltarget),
					Position: pos,
				})
				ltarget.InsertChildAt(ln, pos)
			}
		}

		script = append(script, g.alignChildren(ln, r)...)
	}

	for _, ln := range PostOrder(g.left) {
		if ln.Match() != nil {
			continue
		}
		script = append(script, Op{Type: OpDeleteNode, Node: CanonicalXPath(ln)})
		if p := ln.Parent(); p != nil {
			p.DetachChild(ln)
		}
	}

	return script
}

// updateNode reconciles the content of a matched pair: text, tail, then
// attributes, exactly the steps of spec.md §4.4's update_node.
func (g *Generator) updateNode(ln, rn *Node) Script {
	var script Script
	xpath := CanonicalXPath(ln)

	if ln.Text() != rn.Text() {
		script = append(script, Op{Type: OpUpdateTextIn, Node: xpath, Text: rn.Text()})
		ln.SetText(rn.Text())
	}
	if ln.Tail() != rn.Tail() {
		script = append(script, Op{Type: OpUpdateTextAfter, Node: xpath, Text: rn.Tail()})
		ln.SetTail(rn.Tail())
	}

	script = append(script, g.reconcileAttrs(ln, rn, xpath)...)
	return script
}

// reconcileAttrs implements update_node step 3: common keys with
// differing values become UpdateAttrib; a ln-only key whose value
// matches an rn-only key's value becomes RenameAttrib; the rest of the
// rn-only keys become InsertAttrib; the rest of the ln-only keys become
// DeleteAttrib. All sorted by attribute name for determinism.
func (g *Generator) reconcileAttrs(ln, rn *Node, xpath string) Script {
	var script Script

	lnNames := ln.Attrs().SortedNames()
	rnNames := rn.Attrs().SortedNames()
	lnSet := make(map[QName]bool, len(lnNames))
	for _, n := range lnNames {
		lnSet[n] = true
	}
	rnSet := make(map[QName]bool, len(rnNames))
	for _, n := range rnNames {
		rnSet[n] = true
	}

	// Step 1: common keys, differing values.
	for _, name := range lnNames {
		if !rnSet[name] {
			continue
		}
		lv, _ := ln.Attrs().Get(name)
		rv, _ := rn.Attrs().Get(name)
		if lv != rv {
			script = append(script, Op{Type: OpUpdateAttrib, Node: xpath, AttrName: name, AttrValue: rv})
			ln.Attrs().Set(name, rv)
		}
	}

	// Step 2: renames, by matching values of ln-only keys against
	// rn-only keys.
	newByValue := map[string]QName{}
	rnOnlyRemaining := map[QName]bool{}
	for _, name := range rnNames {
		if rnSet[name] && !lnSet[name] {
			v, _ := rn.Attrs().Get(name)
			newByValue[v] = name
			rnOnlyRemaining[name] = true
		}
	}
	renamedAway := map[QName]bool{}
	for _, name := range lnNames {
		if rnSet[name] {
			continue
		}
		lv, _ := ln.Attrs().Get(name)
		kPrime, ok := newByValue[lv]
		if !ok {
			continue
		}
		script = append(script, Op{Type: OpRenameAttrib, Node: xpath, AttrOld: name, AttrName: kPrime})
		ln.Attrs().Rename(name, kPrime)
		renamedAway[name] = true
		delete(newByValue, lv)
		delete(rnOnlyRemaining, kPrime)
	}

	// Step 3: remaining rn-only keys become inserts.
	for _, name := range rnNames {
		if rnOnlyRemaining[name] {
			v, _ := rn.Attrs().Get(name)
			script = append(script, Op{Type: OpInsertAttrib, Node: xpath, AttrName: name, AttrValue: v})
			ln.Attrs().Set(name, v)
		}
	}

	// Step 4: remaining ln-only keys (not renamed away) become deletes.
	for _, name := range lnNames {
		if rnSet[name] || renamedAway[name] {
			continue
		}
		script = append(script, Op{Type: OpDeleteAttrib, Node: xpath, AttrName: name})
		ln.Attrs().Delete(name)
	}

	return script
}

// findPosition computes the insertion index, in the left parent, of the
// matched-or-to-be-inserted counterpart of right node r, counting the
// parent's other children only (spec.md
// §4.4's find_position). The open question on the no-in-order-sibling
// fall-through is resolved as spec.md §9 directs: return 0.
func (g *Generator) findPosition(r *Node) int {
	parent := r.Parent()
	siblings := parent.Children()

	var firstInOrder *Node
	for _, s := range siblings {
		if g.inOrder[s] {
			firstInOrder = s
			break
		}
	}
	if firstInOrder == r {
		return 0
	}

	idx := -1
	for i, s := range siblings {
		if s == r {
			idx = i
			break
		}
	}
	for i := idx - 1; i >= 0; i-- {
		s := siblings[i]
		if !g.inOrder[s] {
			continue
		}
		if u := s.Match(); u != nil {
			// Position just after u, not counting r's own counterpart
			// if it already sits among u's siblings.
			self := r.Match()
			pos := 0
			for _, c := range u.Parent().Children() {
				if c == self {
					continue
				}
				pos++
				if c == u {
					break
				}
			}
			return pos
		}
	}
	return 0
}

// alignChildren decides, for the matched pair (ln, rn), which of their
// already-matched children are consistently ordered (added to the
// in-order set) and which need a MoveNode within the same parent
// (spec.md §4.4's align_children). Per spec.md §9's open question, the
// left children are not physically reordered here: after these MoveNode
// operations the left tree keeps its old child order, and later
// operations compute their canonical XPaths against that unreordered
// tree.
func (g *Generator) alignChildren(ln, rn *Node) Script {
	var script Script

	L := matchedChildrenUnder(ln, rn)
	R := matchedChildrenUnder(rn, ln)
	if len(L) == 0 || len(R) == 0 {
		return script
	}

	pairs := LCS(len(L), len(R), func(i, j int) bool { return L[i].Match() == R[j] })
	for _, p := range pairs {
		g.inOrder[L[p.I]] = true
		g.inOrder[R[p.J]] = true
	}

	if !g.cfg.MoveDeltas {
		return script
	}

	for _, lc := range L {
		if g.inOrder[lc] {
			continue
		}
		rPrime := lc.Match()
		pos := g.findPosition(rPrime)
		script = append(script, Op{Type: OpMoveNode, Node: CanonicalXPath(lc), Target: CanonicalXPath(ln), Position: pos})
	}

	return script
}

// matchedChildrenUnder returns parent's children whose match is a child
// of other.
func matchedChildrenUnder(parent, other *Node) []*Node {
	var out []*Node
	for _, c := range parent.Children() {
		if m := c.Match(); m != nil && m.Parent() == other {
			out = append(out, c)
		}
	}
	return out
}
