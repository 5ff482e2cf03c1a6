package xmldiff

import "testing"

func TestLeafRatioIdentity(t *testing.T) {
	n := &Node{tag: QName{Local: "p"}, attrs: NewAttrs(), text: "hello world"}
	if r := LeafRatio(n, n, nil); r != 1.0 {
		t.Errorf("leaf_ratio(x, x) = %v, want 1.0", r)
	}
}

func TestLeafRatioSymmetric(t *testing.T) {
	a := &Node{tag: QName{Local: "p"}, attrs: NewAttrs(), text: "hello world"}
	b := &Node{tag: QName{Local: "p"}, attrs: NewAttrs(), text: "hello there"}
	if LeafRatio(a, b, nil) != LeafRatio(b, a, nil) {
		t.Errorf("leaf_ratio not symmetric: %v vs %v", LeafRatio(a, b, nil), LeafRatio(b, a, nil))
	}
}

func TestLeafRatioDifferentTags(t *testing.T) {
	a := &Node{tag: QName{Local: "p"}, attrs: NewAttrs()}
	b := &Node{tag: QName{Local: "div"}, attrs: NewAttrs()}
	if r := LeafRatio(a, b, nil); r != 0 {
		t.Errorf("differing tags: want 0, got %v", r)
	}
}

func TestLeafRatioUniqueAttrDominates(t *testing.T) {
	idAttr := QName{Space: xmlNamespaceURI, Local: "id"}
	a := &Node{tag: QName{Local: "section"}, attrs: NewAttrs(), text: "completely different text"}
	b := &Node{tag: QName{Local: "section"}, attrs: NewAttrs(), text: "totally unrelated content"}
	a.attrs.Set(idAttr, "A")
	b.attrs.Set(idAttr, "A")

	if r := LeafRatio(a, b, []QName{idAttr}); r != 1.0 {
		t.Errorf("matching unique attr: want 1.0 regardless of text, got %v", r)
	}

	b.attrs.Set(idAttr, "B")
	if r := LeafRatio(a, b, []QName{idAttr}); r != 0.0 {
		t.Errorf("mismatched unique attr: want 0.0, got %v", r)
	}
}

func TestChildRatioNoChildren(t *testing.T) {
	a := &Node{tag: QName{Local: "p"}, attrs: NewAttrs()}
	b := &Node{tag: QName{Local: "p"}, attrs: NewAttrs()}
	if r := ChildRatio(a, b, func(*Node) *Node { return nil }); r != 1.0 {
		t.Errorf("no children on either side: want 1.0, got %v", r)
	}
}

func TestChildRatioPartialMatch(t *testing.T) {
	a := &Node{tag: QName{Local: "p"}, attrs: NewAttrs()}
	b := &Node{tag: QName{Local: "p"}, attrs: NewAttrs()}
	ac1 := &Node{tag: QName{Local: "x"}, attrs: NewAttrs()}
	ac2 := &Node{tag: QName{Local: "x"}, attrs: NewAttrs()}
	bc1 := &Node{tag: QName{Local: "x"}, attrs: NewAttrs()}
	a.AppendChild(ac1)
	a.AppendChild(ac2)
	b.AppendChild(bc1)
	ac1.SetMatch(bc1, 1.0)

	got := ChildRatio(a, b, func(n *Node) *Node { return n.Match() })
	if got != 0.5 {
		t.Errorf("one of two a-children matched into b (len 1 < len 2): want 0.5, got %v", got)
	}
}
