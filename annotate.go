package xmldiff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Formatter turns an edit script into a rendered result. Prepare is a
// pre-diff mutation hook run on both trees before matching (placeholder
// substitution, for the formatters that use it); Format is run after
// the edit script has been generated, against a snapshot of the left
// tree taken right after Prepare but before the generator mutated it
// further (spec.md §4.6, §6).
type Formatter interface {
	Prepare(left, right *Node) error
	Format(script Script, preDiffLeft *Node) (*Node, error)
}

// DiffFormatter is the annotating formatter: it clones the left tree,
// applies every operation as diff namespace markup, and returns the
// single annotated tree (spec.md §4.6).
type DiffFormatter struct {
	cfg Config
	ph  *Placeholders
}

// NewDiffFormatter builds an annotating formatter from the given
// options. Placeholder substitution runs during Prepare only if TextTags
// is non-empty.
func NewDiffFormatter(opts ...Option) *DiffFormatter {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &DiffFormatter{cfg: cfg}
}

// Prepare runs the placeholder forward pass over both trees, if text
// tags are configured. A DiffFormatter is not reentrant: a fresh
// Placeholders allocator is built per Prepare call (spec.md §5).
func (f *DiffFormatter) Prepare(left, right *Node) error {
	if len(f.cfg.TextTags) == 0 {
		return nil
	}
	f.ph = NewPlaceholders()
	f.ph.Substitute(left, f.cfg.TextTags, f.cfg.FormattingTags)
	f.ph.Substitute(right, f.cfg.TextTags, f.cfg.FormattingTags)
	return nil
}

// Format applies script to a clone of preDiffLeft and returns the
// annotated result. Non-text operations apply immediately, in script
// order; UpdateTextIn/UpdateTextAfter are deferred and applied last, in
// reverse script order (spec.md §4.6). If Prepare ran the placeholder
// pass, the reverse pass runs last to restore ordinary elements.
func (f *DiffFormatter) Format(script Script, preDiffLeft *Node) (*Node, error) {
	root := preDiffLeft.Clone(nil)

	var textOps []Op
	for _, op := range script {
		switch op.Type {
		case OpUpdateTextIn, OpUpdateTextAfter:
			textOps = append(textOps, op)
			continue
		}
		if err := f.applyStructural(root, op); err != nil {
			return nil, err
		}
	}
	for i := len(textOps) - 1; i >= 0; i-- {
		if err := f.applyText(root, textOps[i]); err != nil {
			return nil, err
		}
	}

	if f.ph != nil {
		expandPlaceholders(root, f.ph)
	}
	return root, nil
}

func (f *DiffFormatter) applyStructural(root *Node, op Op) error {
	switch op.Type {
	case OpDeleteAttrib:
		n, err := ResolveXPath(root, op.Node)
		if err != nil {
			return err
		}
		n.Attrs().Delete(op.AttrName)
		appendMarker(n, diffDeleteAttrAttr, op.AttrName.String())

	case OpDeleteNode:
		n, err := ResolveXPath(root, op.Node)
		if err != nil {
			return err
		}
		n.Attrs().Set(diffDeleteMarker, "")

	case OpInsertAttrib:
		n, err := ResolveXPath(root, op.Node)
		if err != nil {
			return err
		}
		n.Attrs().Set(op.AttrName, op.AttrValue)
		appendMarker(n, diffAddAttrAttr, op.AttrName.String())

	case OpInsertNode:
		target, err := ResolveXPath(root, op.Target)
		if err != nil {
			return err
		}
		n := &Node{tag: op.Tag, attrs: NewAttrs()}
		n.Attrs().Set(diffInsertMarker, "")
		target.InsertChildAt(n, effectiveIndex(target, op.Position))

	case OpRenameAttrib:
		n, err := ResolveXPath(root, op.Node)
		if err != nil {
			return err
		}
		n.Attrs().Rename(op.AttrOld, op.AttrName)
		appendMarker(n, diffRenameAttrAttr, op.AttrOld.String()+":"+op.AttrName.String())

	case OpMoveNode:
		src, err := ResolveXPath(root, op.Node)
		if err != nil {
			return err
		}
		target, err := ResolveXPath(root, op.Target)
		if err != nil {
			return err
		}
		clone := src.Clone(nil)
		clone.Attrs().Set(diffInsertMarker, "")
		src.Attrs().Set(diffDeleteMarker, "")
		target.InsertChildAt(clone, effectiveIndex(target, op.Position))

	case OpUpdateAttrib:
		n, err := ResolveXPath(root, op.Node)
		if err != nil {
			return err
		}
		old, _ := n.Attrs().Get(op.AttrName)
		appendMarker(n, diffUpdateAttrAttr, op.AttrName.String()+":"+old)
		n.Attrs().Set(op.AttrName, op.AttrValue)
	}
	return nil
}

func (f *DiffFormatter) applyText(root *Node, op Op) error {
	n, err := ResolveXPath(root, op.Node)
	if err != nil {
		return err
	}
	switch op.Type {
	case OpUpdateTextIn:
		lead, kids := f.diffSpan(n.Text(), op.Text)
		existing := n.Children()
		for _, c := range existing {
			n.DetachChild(c)
		}
		n.SetText(lead)
		for _, c := range kids {
			n.AppendChild(c)
		}
		for _, c := range existing {
			n.AppendChild(c)
		}
	case OpUpdateTextAfter:
		lead, kids := f.diffSpan(n.Tail(), op.Text)
		n.SetTail(lead)
		parent := n.Parent()
		idx := n.IndexInParent()
		for i, c := range kids {
			parent.InsertChildAt(c, idx+1+i)
		}
	}
	return nil
}

// appendMarker sets attr on n, appending to a prior value with ";" the
// way spec.md §6 describes for the accumulating diff:*-attr markers.
func appendMarker(n *Node, attr QName, value string) {
	if existing, ok := n.Attrs().Get(attr); ok && existing != "" {
		n.Attrs().Set(attr, existing+";"+value)
		return
	}
	n.Attrs().Set(attr, value)
}

// effectiveIndex translates a generator-assigned child position (which
// assumes already-deleted left children are gone) into an index in
// target's current children, which still carries delete-marked nodes
// for legibility: it skips over them while counting toward pos (spec.md
// §4.6's InsertNode rule).
func effectiveIndex(target *Node, pos int) int {
	children := target.Children()
	seen := 0
	for i, c := range children {
		if seen == pos {
			return i
		}
		if _, deleted := c.Attrs().Get(diffDeleteMarker); !deleted {
			seen++
		}
	}
	return len(children)
}

// span is one top-level placeholder occurrence found while tokenizing a
// text/tail string for diffSpan: either a whole collapsed subtree
// (spanSingle) or a formatting element's open...close run (spanPair).
type spanKind uint8

const (
	spanSingle spanKind = iota
	spanPair
)

type span struct {
	kind  spanKind
	node  *Node  // template element (spanSingle: whole subtree; spanPair: the formatting element, pre-collapsed, no children)
	inner string // spanPair only: text between open and close
	full  string // the exact source run this span occupies, used to detect "content identical" reuse
}

// tokenItem is one element of a tokenized text/tail string: either a
// literal rune or a reference into the parallel spans slice.
type tokenItem struct {
	plain   rune
	isSpan  bool
	spanIdx int
}

// tokenize splits s into literal runes and top-level placeholder spans,
// matching nested OPEN/CLOSE runs by rune identity (a formatting span's
// own nested placeholders, from deeper recursive substitution, stay
// folded into its "inner" text untouched).
func tokenize(s string, entries map[rune]phEntry) ([]tokenItem, []span) {
	runes := []rune(s)
	var items []tokenItem
	var spans []span

	i := 0
	for i < len(runes) {
		r := runes[i]
		entry, ok := entries[r]
		if !ok {
			items = append(items, tokenItem{plain: r})
			i++
			continue
		}
		switch entry.kind {
		case phSingle:
			spans = append(spans, span{kind: spanSingle, node: entry.node, full: string(r)})
			items = append(items, tokenItem{isSpan: true, spanIdx: len(spans) - 1})
			i++
		case phOpen:
			openRune, closeRune := r, entry.pair
			depth := 1
			j := i + 1
			for j < len(runes) {
				if runes[j] == openRune {
					depth++
				} else if runes[j] == closeRune {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			if j >= len(runes) {
				// Unbalanced; treat the open char as a literal rather than
				// panic on malformed input.
				items = append(items, tokenItem{plain: r})
				i++
				continue
			}
			inner := string(runes[i+1 : j])
			spans = append(spans, span{kind: spanPair, node: entry.node, inner: inner, full: string(runes[i : j+1])})
			items = append(items, tokenItem{isSpan: true, spanIdx: len(spans) - 1})
			i = j + 1
		case phClose:
			// A top-level close with no matching open at this level;
			// shouldn't occur in well-formed substituted text, but treat
			// literally rather than fail.
			items = append(items, tokenItem{plain: r})
			i++
		}
	}
	return items, spans
}

// diffSpan character-diffs old against new, recognizing placeholder
// spans so that a formatting element present (by tag) on both sides
// stays the same preserved element with only its inner text re-diffed,
// rather than a wholesale delete-then-insert (spec.md §4.5's intent for
// the realign pass, achieved here by tokenizing spans as atomic units
// before the character diff runs instead of patching op boundaries
// after the fact -- see DESIGN.md).
func (f *DiffFormatter) diffSpan(oldText, newText string) (string, []*Node) {
	dmp := diffmatchpatch.New()

	if f.ph == nil || (!f.ph.HasPlaceholder(oldText) && !f.ph.HasPlaceholder(newText)) {
		diffs := dmp.DiffMain(oldText, newText, false)
		diffs = dmp.DiffCleanupSemantic(diffs)
		return f.buildFromDiffs(diffs, nil, nil, nil, nil)
	}

	oldItems, oldSpans := tokenize(oldText, f.ph.byChar)
	newItems, newSpans := tokenize(newText, f.ph.byChar)

	oldPairIdx, newPairIdx := filterKind(oldSpans, spanPair), filterKind(newSpans, spanPair)
	lcsPairs := LCS(len(oldPairIdx), len(newPairIdx), func(i, j int) bool {
		return oldSpans[oldPairIdx[i]].node.Tag() == newSpans[newPairIdx[j]].node.Tag()
	})

	next := rune(0x100000)
	oldRune := make(map[int]rune, len(oldSpans))
	newRune := make(map[int]rune, len(newSpans))
	for _, p := range lcsPairs {
		r := next
		next++
		oldRune[oldPairIdx[p.I]] = r
		newRune[newPairIdx[p.J]] = r
	}

	singleByContent := map[string]rune{}
	for idx, sp := range oldSpans {
		if sp.kind != spanSingle {
			continue
		}
		if _, ok := singleByContent[sp.full]; !ok {
			singleByContent[sp.full] = next
			next++
		}
		oldRune[idx] = singleByContent[sp.full]
	}
	for idx, sp := range newSpans {
		if sp.kind != spanSingle {
			continue
		}
		r, ok := singleByContent[sp.full]
		if !ok {
			r = next
			next++
			singleByContent[sp.full] = r
		}
		newRune[idx] = r
	}
	for idx := range oldSpans {
		if _, ok := oldRune[idx]; !ok {
			oldRune[idx] = next
			next++
		}
	}
	for idx := range newSpans {
		if _, ok := newRune[idx]; !ok {
			newRune[idx] = next
			next++
		}
	}

	oldTok := renderTokens(oldItems, oldRune)
	newTok := renderTokens(newItems, newRune)

	oldRuneToIdx := invert(oldRune)
	newRuneToIdx := invert(newRune)

	diffs := dmp.DiffMain(oldTok, newTok, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return f.buildFromDiffs(diffs, oldRuneToIdx, newRuneToIdx, oldSpans, newSpans)
}

func filterKind(spans []span, kind spanKind) []int {
	var out []int
	for i, sp := range spans {
		if sp.kind == kind {
			out = append(out, i)
		}
	}
	return out
}

func renderTokens(items []tokenItem, runeOf map[int]rune) string {
	var b strings.Builder
	for _, it := range items {
		if it.isSpan {
			b.WriteRune(runeOf[it.spanIdx])
		} else {
			b.WriteRune(it.plain)
		}
	}
	return b.String()
}

func invert(m map[int]rune) map[rune]int {
	out := make(map[rune]int, len(m))
	for idx, r := range m {
		out[r] = idx
	}
	return out
}

// buildFromDiffs turns a character-level diff over (possibly tokenized)
// text into a leading text string plus the sequence of nodes that
// follow it, coalescing consecutive plain runs of the same verdict into
// one diff:insert/diff:delete wrapper each (spec.md §4.6's "for each
// segment" rule).
func (f *DiffFormatter) buildFromDiffs(diffs []diffmatchpatch.Diff, oldRuneToIdx, newRuneToIdx map[rune]int, oldSpans, newSpans []span) (string, []*Node) {
	var lead strings.Builder
	var nodes []*Node

	flushText := func(s string) {
		if s == "" {
			return
		}
		if len(nodes) == 0 {
			lead.WriteString(s)
		} else {
			nodes[len(nodes)-1].tail += s
		}
	}

	for _, d := range diffs {
		var plain strings.Builder
		flushPlain := func() {
			if plain.Len() == 0 {
				return
			}
			text := plain.String()
			plain.Reset()
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				flushText(text)
			case diffmatchpatch.DiffDelete:
				nodes = append(nodes, &Node{tag: diffDeleteTag, attrs: NewAttrs(), text: text})
			case diffmatchpatch.DiffInsert:
				nodes = append(nodes, &Node{tag: diffInsertTag, attrs: NewAttrs(), text: text})
			}
		}

		for _, r := range d.Text {
			var spanNodes []*Node
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				if oi, ok := oldRuneToIdx[r]; ok {
					spanNodes = f.renderEqualSpan(oldSpans[oi], newSpans[newRuneToIdx[r]])
				}
			case diffmatchpatch.DiffDelete:
				if oi, ok := oldRuneToIdx[r]; ok {
					spanNodes = []*Node{f.renderMarkedSpan(oldSpans[oi], true)}
				}
			case diffmatchpatch.DiffInsert:
				if ni, ok := newRuneToIdx[r]; ok {
					spanNodes = []*Node{f.renderMarkedSpan(newSpans[ni], false)}
				}
			}
			if spanNodes != nil {
				flushPlain()
				nodes = append(nodes, spanNodes...)
				continue
			}
			plain.WriteRune(r)
		}
		flushPlain()
	}
	return lead.String(), nodes
}

// renderEqualSpan renders a span that a token-level diff called equal:
// identical content reproduces the original element verbatim; a
// formatting span (spanPair) with changed inner content keeps the same
// element and recurses diffSpan over just its inner text; a spanSingle
// pairing with changed content has no recursive path in spec.md §4.5, so
// it falls back to delete-old/insert-new.
func (f *DiffFormatter) renderEqualSpan(oldSp, newSp span) []*Node {
	if oldSp.full == newSp.full {
		return []*Node{oldSp.node.Clone(nil)}
	}
	if oldSp.kind == spanPair {
		n := oldSp.node.Clone(nil)
		lead, kids := f.diffSpan(oldSp.inner, newSp.inner)
		n.SetText(lead)
		for _, k := range kids {
			n.AppendChild(k)
		}
		return []*Node{n}
	}
	// spanSingle, content changed: spec.md §4.5 gives no recursive path
	// for a non-formatting collapsed element, so it is a straight
	// delete-old/insert-new pair of marked spans.
	return []*Node{
		f.renderMarkedSpan(oldSp, true),
		f.renderMarkedSpan(newSp, false),
	}
}

// renderMarkedSpan implements mark_diff (spec.md §4.5) for a span being
// wholly deleted or inserted: a formatting element gets a
// diff:insert-formatting/diff:delete-formatting marker attribute; any
// other collapsed element gets its text wrapped with the pre-allocated
// insert/delete placeholder pair, left for the final reverse pass to
// expand into a nested diff:insert/diff:delete wrapper.
func (f *DiffFormatter) renderMarkedSpan(sp span, isDelete bool) *Node {
	n := sp.node.Clone(nil)
	if sp.kind == spanPair {
		if isDelete {
			n.Attrs().Set(diffDeleteFormatting, "")
		} else {
			n.Attrs().Set(diffInsertFormatting, "")
		}
		return n
	}
	openCh, closeCh := f.ph.insertOpen, f.ph.insertClose
	if isDelete {
		openCh, closeCh = f.ph.deleteOpen, f.ph.deleteClose
	}
	n.SetText(string(openCh) + n.Text() + string(closeCh))
	return n
}

// expandPlaceholders runs the placeholder reverse pass (spec.md §4.5)
// over every node in the tree, to a fixpoint: reconstructed nodes can
// themselves carry placeholder text (nested formatting spans, or the
// insert/delete wrapping renderMarkedSpan applied to a spanSingle), so
// each newly spliced node is queued for the same treatment.
func expandPlaceholders(root *Node, ph *Placeholders) {
	queue := []*Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		if ph.HasPlaceholder(n.Text()) {
			lead, kids := ph.Expand(n.Text())
			existing := n.Children()
			for _, c := range existing {
				n.DetachChild(c)
			}
			n.SetText(lead)
			for _, c := range kids {
				n.AppendChild(c)
			}
			for _, c := range existing {
				n.AppendChild(c)
			}
		}
		for _, c := range n.Children() {
			if ph.HasPlaceholder(c.Tail()) {
				lead, kids := ph.Expand(c.Tail())
				c.SetTail(lead)
				parent := c.Parent()
				idx := c.IndexInParent()
				for i, k := range kids {
					parent.InsertChildAt(k, idx+1+i)
				}
			}
		}
		queue = append(queue, n.Children()...)
	}
}
