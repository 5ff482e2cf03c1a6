package xmldiff

import (
	"io"
	"strings"
)

// Differ is a configured diff pipeline: Matcher -> Generator, with an
// optional Formatter stage. Build once with Options and reuse across
// many tree pairs, mirroring the teacher's DeepDiff/New shape.
type Differ struct {
	cfg  Config
	opts []Option
}

// New builds a Differ from the given options, applied over
// defaultConfig.
func New(opts ...Option) *Differ {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Differ{cfg: cfg, opts: opts}
}

// Diff computes the edit script that transforms left into right. left
// is mutated in place as the Generator emits operations against it
// (script.go's documented invariant); pass a clone first if the
// caller needs the original afterward.
func (d *Differ) Diff(left, right *Node) (Script, error) {
	if left == nil || right == nil {
		return nil, &Error{Kind: InputShape, Op: "Differ.Diff", Err: errf("left and right must both be non-nil elements")}
	}
	d.normalize(left)
	d.normalize(right)

	m := NewMatcher(d.opts...)
	m.SetTrees(left, right)
	if _, err := m.Match(); err != nil {
		return nil, err
	}

	gen := NewGenerator(NewTree(left), right, d.opts...)
	return gen.Generate(), nil
}

// DiffAndFormat computes the edit script and renders it through f. It
// runs f.Prepare before matching, so formatters needing a pre-diff
// mutation hook (placeholder substitution) see the trees before
// whitespace normalization, matching, or generation touch them, and
// passes f.Format a snapshot of left taken right after Prepare.
func (d *Differ) DiffAndFormat(left, right *Node, f Formatter) (*Node, Script, error) {
	if left == nil || right == nil {
		return nil, nil, &Error{Kind: InputShape, Op: "Differ.DiffAndFormat", Err: errf("left and right must both be non-nil elements")}
	}
	if err := f.Prepare(left, right); err != nil {
		return nil, nil, err
	}
	preDiffLeft := left.Clone(nil)

	script, err := d.Diff(left, right)
	if err != nil {
		return nil, nil, err
	}
	out, err := f.Format(script, preDiffLeft)
	if err != nil {
		return nil, nil, err
	}
	return out, script, nil
}

// Stat computes Stats for the diff between left and right, measuring
// element counts and weight against left as it was before diffing.
func (d *Differ) Stat(left, right *Node) (Stats, error) {
	original := left.Clone(nil)
	script, err := d.Diff(left, right)
	if err != nil {
		return Stats{}, err
	}
	return StatsFromScript(original, right, script), nil
}

// normalize applies the Differ's configured whitespace policy to root
// in place (spec.md §4.1, §6).
func (d *Differ) normalize(root *Node) {
	switch d.cfg.Whitespace {
	case WhitespaceNone:
	case WhitespaceTags:
		stripIgnorableWhitespace(root)
	case WhitespaceText:
		collapseTextTagWhitespace(root, d.cfg.TextTags)
	case WhitespaceBoth:
		stripIgnorableWhitespace(root)
		collapseTextTagWhitespace(root, d.cfg.TextTags)
	}
}

func isAllWhitespace(s string) bool {
	return strings.TrimSpace(s) == ""
}

// stripIgnorableWhitespace blanks a node's leading text, or a child's
// tail, when it is pure whitespace sitting only between element tags
// (WhitespaceMode TAGS).
func stripIgnorableWhitespace(n *Node) {
	children := n.Children()
	if len(children) > 0 && isAllWhitespace(n.Text()) {
		n.SetText("")
	}
	for i, c := range children {
		if i < len(children)-1 && isAllWhitespace(c.Tail()) {
			c.SetTail("")
		}
		stripIgnorableWhitespace(c)
	}
}

// collapseTextTagWhitespace runs CleanupWhitespace over the text and
// tails inside every TextTags subtree (WhitespaceMode TEXT).
func collapseTextTagWhitespace(root *Node, textTags []QName) {
	isText := tagSet(textTags)
	var collapse func(*Node)
	collapse = func(n *Node) {
		n.SetText(CleanupWhitespace(n.Text()))
		for _, c := range n.Children() {
			c.SetTail(CleanupWhitespace(c.Tail()))
			collapse(c)
		}
	}
	var walk func(*Node)
	walk = func(n *Node) {
		if isText[n.Tag()] {
			collapse(n)
			return
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(root)
}

// DiffTrees diffs two already-parsed trees, spec.md §6's diff_trees.
func DiffTrees(left, right *Node, opts ...Option) (Script, error) {
	return New(opts...).Diff(left, right)
}

// DiffTreesFormatted diffs two already-parsed trees and renders the
// result through f.
func DiffTreesFormatted(left, right *Node, f Formatter, opts ...Option) (*Node, error) {
	out, _, err := New(opts...).DiffAndFormat(left, right, f)
	return out, err
}

// DiffTexts parses leftXML and rightXML as XML, then diffs them
// (spec.md §6's diff_texts).
func DiffTexts(leftXML, rightXML string, opts ...Option) (Script, error) {
	left, right, err := parseTreePair(leftXML, rightXML)
	if err != nil {
		return nil, err
	}
	return DiffTrees(left.Root(), right.Root(), opts...)
}

// DiffTextsFormatted parses leftXML and rightXML, diffs them, and
// renders the result through f.
func DiffTextsFormatted(leftXML, rightXML string, f Formatter, opts ...Option) (*Node, error) {
	left, right, err := parseTreePair(leftXML, rightXML)
	if err != nil {
		return nil, err
	}
	return DiffTreesFormatted(left.Root(), right.Root(), f, opts...)
}

func parseTreePair(leftXML, rightXML string) (*Tree, *Tree, error) {
	left, err := ParseTreeString(leftXML)
	if err != nil {
		return nil, nil, err
	}
	right, err := ParseTreeString(rightXML)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// DiffFiles parses leftPath and rightPath from the filesystem and
// diffs them (spec.md §6's diff_files).
func DiffFiles(leftPath, rightPath string, opts ...Option) (Script, error) {
	left, err := ParseTreeFile(leftPath)
	if err != nil {
		return nil, err
	}
	right, err := ParseTreeFile(rightPath)
	if err != nil {
		return nil, err
	}
	return DiffTrees(left.Root(), right.Root(), opts...)
}

// DiffFilesFormatted parses leftPath and rightPath, diffs them, and
// renders the result through f.
func DiffFilesFormatted(leftPath, rightPath string, f Formatter, opts ...Option) (*Node, error) {
	left, err := ParseTreeFile(leftPath)
	if err != nil {
		return nil, err
	}
	right, err := ParseTreeFile(rightPath)
	if err != nil {
		return nil, err
	}
	return DiffTreesFormatted(left.Root(), right.Root(), f, opts...)
}

// DiffReaders parses left and right from already-open byte streams and
// diffs them (spec.md §6's diff_files, stream form).
func DiffReaders(left, right io.Reader, opts ...Option) (Script, error) {
	lt, err := ParseTree(left)
	if err != nil {
		return nil, err
	}
	rt, err := ParseTree(right)
	if err != nil {
		return nil, err
	}
	return DiffTrees(lt.Root(), rt.Root(), opts...)
}
