package xmldiff

import "strings"

// phKind is the shape of one placeholder entry (spec.md §4.5).
type phKind uint8

const (
	phSingle phKind = iota // stands in for one whole collapsed subtree
	phOpen                 // opens an inline formatting span
	phClose                // closes the span opened by phOpen
)

// phEntry is a placeholder allocator's record of what a single
// private-use code point stands for: a frozen template node (cloned out
// fresh whenever expanded) plus, for OPEN/CLOSE, the rune of its pair.
type phEntry struct {
	kind phKind
	node *Node
	pair rune
}

// phKey is the de-duplication key the allocator reuses a placeholder by:
// identical subtrees (by serialization) of the same shape reuse the same
// code point or pair, per spec.md §4.5's allocation rule.
type phKey struct {
	serialized string
	pairKind   bool // true for an OPEN/CLOSE pair, false for SINGLE
}

// placeholderStart is the private-use code point the allocator counts
// up from (spec.md §4.5, and the Node Model's Placeholder entry).
const placeholderStart = rune(0xF0001)

// Placeholders is one formatting-substitution run's allocator and
// lookup table. It is stateful and, per spec.md §5, must not be shared
// across concurrent diffs -- callers own one per Formatter instance.
type Placeholders struct {
	byChar map[rune]phEntry
	byKey  map[phKey]rune
	next   rune

	insertOpen, insertClose rune
	deleteOpen, deleteClose rune
}

// NewPlaceholders builds an allocator with the diff:insert/diff:delete
// wrapper pairs pre-allocated, as spec.md §4.5 requires so mark_diff
// never needs to allocate on the fly.
func NewPlaceholders() *Placeholders {
	p := &Placeholders{
		byChar: map[rune]phEntry{},
		byKey:  map[phKey]rune{},
		next:   placeholderStart,
	}
	p.insertOpen, p.insertClose = p.newPair(&Node{tag: diffInsertTag, attrs: NewAttrs()})
	p.deleteOpen, p.deleteClose = p.newPair(&Node{tag: diffDeleteTag, attrs: NewAttrs()})
	return p
}

func (p *Placeholders) newPair(node *Node) (open, close rune) {
	open, close = p.next, p.next+1
	p.next += 2
	p.byChar[open] = phEntry{kind: phOpen, node: node, pair: close}
	p.byChar[close] = phEntry{kind: phClose, node: node, pair: open}
	return open, close
}

func (p *Placeholders) allocateSingle(node *Node) rune {
	key := phKey{serialized: serializeNode(node), pairKind: false}
	if ch, ok := p.byKey[key]; ok {
		return ch
	}
	ch := p.next
	p.next++
	p.byChar[ch] = phEntry{kind: phSingle, node: node}
	p.byKey[key] = ch
	return ch
}

func (p *Placeholders) allocatePair(node *Node) (open, close rune) {
	key := phKey{serialized: serializeNode(node), pairKind: true}
	if ch, ok := p.byKey[key]; ok {
		return ch, p.byChar[ch].pair
	}
	open, close = p.newPair(node)
	p.byKey[key] = open
	return open, close
}

// serializeNode renders n deterministically enough to de-duplicate
// placeholder allocations; it is not meant to be valid, re-parseable
// XML on its own.
func serializeNode(n *Node) string {
	var b strings.Builder
	writeSerializedNode(&b, n)
	return b.String()
}

func writeSerializedNode(b *strings.Builder, n *Node) {
	b.WriteByte('<')
	b.WriteString(n.Tag().String())
	for _, name := range n.Attrs().Names() {
		v, _ := n.Attrs().Get(name)
		b.WriteByte(' ')
		b.WriteString(name.String())
		b.WriteString(`="`)
		b.WriteString(v)
		b.WriteByte('"')
	}
	b.WriteByte('>')
	b.WriteString(n.Text())
	for _, c := range n.Children() {
		writeSerializedNode(b, c)
		b.WriteString(c.Tail())
	}
	b.WriteString("</")
	b.WriteString(n.Tag().String())
	b.WriteByte('>')
}

// tagSet builds a membership set from a tag list, for fast formatting/
// text-tag lookups.
func tagSet(tags []QName) map[QName]bool {
	set := make(map[QName]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return set
}

// Substitute runs the forward pass (spec.md §4.5) over root: every
// text-tag element's children are collapsed into its own Text, with
// formatting-tag subtrees becoming OPEN...CLOSE placeholder pairs and
// everything else becoming a single SINGLE placeholder.
func (p *Placeholders) Substitute(root *Node, textTags, formattingTags []QName) {
	isText := tagSet(textTags)
	isFormatting := tagSet(formattingTags)
	if len(isText) == 0 {
		return
	}

	var walk func(n *Node)
	walk = func(n *Node) {
		if isText[n.Tag()] {
			p.collapseChildren(n, isFormatting)
			return
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(root)
}

// collapseChildren implements the forward pass's per-text-tag-subtree
// walk, splicing every child of n into n's own text as a placeholder.
func (p *Placeholders) collapseChildren(n *Node, isFormatting map[QName]bool) {
	var buf strings.Builder
	buf.WriteString(n.Text())

	for _, c := range n.Children() {
		if isFormatting[c.Tag()] {
			p.collapseChildren(c, isFormatting)
			// The template carries no tail: the tail text is spliced into
			// the surrounding run below, and Expand restores it from there.
			tmpl := c.Clone(nil)
			tmpl.SetTail("")
			open, close := p.allocatePair(tmpl)
			buf.WriteRune(open)
			buf.WriteString(c.Text())
			buf.WriteRune(close)
			buf.WriteString(c.Tail())
		} else {
			tmpl := c.Clone(nil)
			tmpl.SetTail("")
			ch := p.allocateSingle(tmpl)
			buf.WriteRune(ch)
			buf.WriteString(c.Tail())
		}
	}

	for _, c := range n.Children() {
		n.DetachChild(c)
	}
	n.SetText(buf.String())
}

// HasPlaceholder reports whether s contains any code point this
// allocator has handed out.
func (p *Placeholders) HasPlaceholder(s string) bool {
	for _, r := range s {
		if _, ok := p.byChar[r]; ok {
			return true
		}
	}
	return false
}

// phBuildFrame is one level of the bracket-matching reconstruction Expand
// performs: the node being rebuilt (nil at the outermost level, where
// rebuilt children attach to the caller-supplied slice instead), a
// pending-text buffer for whichever of node.Text/lastChild.Tail is
// currently being accumulated, and the last child appended at this level.
type phBuildFrame struct {
	node *Node
	buf  strings.Builder
	last *Node
}

func (f *phBuildFrame) flushText(s string) {
	if s == "" {
		return
	}
	if f.last != nil {
		f.last.tail += s
	} else {
		f.buf.WriteString(s)
	}
}

func (f *phBuildFrame) appendChild(n *Node) {
	if f.node != nil {
		f.node.AppendChild(n)
	}
	f.last = n
}

// Expand runs the reverse pass (spec.md §4.5) over s, a text or tail
// string that may contain placeholder code points, and returns the
// leading text plus any reconstructed child nodes (still detached; the
// caller splices them in and sets their tail appropriately). Nested
// OPEN/CLOSE pairs are resolved with a bracket-matching stack, since a
// text-tag's collapsed text can itself contain deeper nested spans.
func (p *Placeholders) Expand(s string) (leadText string, children []*Node) {
	top := &phBuildFrame{}
	var stack []*phBuildFrame
	var run strings.Builder
	var topLevelChildren []*Node

	flushRun := func() {
		if run.Len() == 0 {
			return
		}
		top.flushText(run.String())
		run.Reset()
	}

	for _, r := range s {
		entry, ok := p.byChar[r]
		if !ok {
			run.WriteRune(r)
			continue
		}
		flushRun()
		switch entry.kind {
		case phSingle:
			n := entry.node.Clone(nil)
			if top.node == nil {
				topLevelChildren = append(topLevelChildren, n)
			}
			top.appendChild(n)
		case phOpen:
			n := entry.node.Clone(nil)
			stack = append(stack, top)
			top = &phBuildFrame{node: n}
		case phClose:
			n := top.node
			if n == nil {
				// Unbalanced close with no open on the stack; treat the
				// character literally rather than panic on malformed input.
				run.WriteRune(r)
				continue
			}
			n.SetText(top.buf.String())
			if len(stack) > 0 {
				top = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
			} else {
				top = &phBuildFrame{}
			}
			if top.node == nil {
				topLevelChildren = append(topLevelChildren, n)
			}
			top.appendChild(n)
		}
	}
	flushRun()

	return top.buf.String(), topLevelChildren
}
