package xmldiff

import "testing"

func mustParse(t *testing.T, xmlStr string) *Node {
	t.Helper()
	tree, err := ParseTreeString(xmlStr)
	if err != nil {
		t.Fatalf("parsing %q: %v", xmlStr, err)
	}
	return tree.Root()
}

func opsOfType(script Script, op Operation) []Op {
	var out []Op
	for _, o := range script {
		if o.Type == op {
			out = append(out, o)
		}
	}
	return out
}

// Scenario 1 -- attribute update only.
func TestScenario1AttributeUpdate(t *testing.T) {
	left := mustParse(t, `<r><n a="v"/></r>`)
	right := mustParse(t, `<r><n a="w"/></r>`)

	script, err := DiffTrees(left, right)
	if err != nil {
		t.Fatal(err)
	}
	if len(script) != 1 {
		t.Fatalf("want exactly 1 op, got %d: %+v", len(script), script)
	}
	op := script[0]
	if op.Type != OpUpdateAttrib || op.Node != "/r[1]/n[1]" || op.AttrName.Local != "a" || op.AttrValue != "w" {
		t.Errorf("want UpdateAttrib(/r/n[1], a, w), got %+v", op)
	}
}

// Scenario 2 -- sibling reorder.
func TestScenario2SiblingReorder(t *testing.T) {
	left := mustParse(t, `<r><a/><b/><c/></r>`)
	right := mustParse(t, `<r><b/><c/><a/></r>`)

	script, err := DiffTrees(left, right, WithMoves(true))
	if err != nil {
		t.Fatal(err)
	}

	if ins := opsOfType(script, OpInsertNode); len(ins) != 0 {
		t.Errorf("want no inserts, got %+v", ins)
	}
	if del := opsOfType(script, OpDeleteNode); len(del) != 0 {
		t.Errorf("want no deletes, got %+v", del)
	}
	moves := opsOfType(script, OpMoveNode)
	if len(moves) != 1 {
		t.Fatalf("want exactly 1 move, got %d: %+v", len(moves), script)
	}
	if moves[0].Node != "/r[1]/a[1]" || moves[0].Position != 2 {
		t.Errorf("want move of /r/a[1] to position 2, got %+v", moves[0])
	}
}

// Scenario 3 -- paragraph split.
func TestScenario3ParagraphSplit(t *testing.T) {
	left := mustParse(t, `<d><s><p>First</p><p>Second</p></s><s><p>Last</p></s></d>`)
	right := mustParse(t, `<d><s><p>First</p></s><s><p>Second</p><p>Last</p></s></d>`)

	script, err := DiffTrees(left, right)
	if err != nil {
		t.Fatal(err)
	}

	moves := opsOfType(script, OpMoveNode)
	found := false
	for _, mv := range moves {
		if mv.Target == "/d[1]/s[2]" && mv.Position == 0 {
			found = true
		}
	}
	if !found {
		t.Errorf("want a MoveNode of the second paragraph into /d/s[2] at position 0, got %+v", moves)
	}
}

// Scenario 5 -- attribute rename.
func TestScenario5AttributeRename(t *testing.T) {
	left := mustParse(t, `<r><n attr1="x" attr2="y"/></r>`)
	right := mustParse(t, `<r><n attr4="x" attr2="y"/></r>`)

	script, err := DiffTrees(left, right)
	if err != nil {
		t.Fatal(err)
	}

	renames := opsOfType(script, OpRenameAttrib)
	if len(renames) != 1 {
		t.Fatalf("want exactly 1 rename, got %d: %+v", len(renames), script)
	}
	if renames[0].AttrOld.Local != "attr1" || renames[0].AttrName.Local != "attr4" {
		t.Errorf("want RenameAttrib(attr1, attr4), got %+v", renames[0])
	}
	if ins := opsOfType(script, OpInsertAttrib); len(ins) != 0 {
		t.Errorf("want no InsertAttrib for attr1/attr4, got %+v", ins)
	}
	if del := opsOfType(script, OpDeleteAttrib); len(del) != 0 {
		t.Errorf("want no DeleteAttrib for attr1/attr4, got %+v", del)
	}
}

// Round-trip / idempotence: diffing a tree against itself yields an
// empty edit script.
func TestDiffSelfIsEmpty(t *testing.T) {
	xmlStr := `<doc><para a="1">hello <b>world</b></para><para>second</para></doc>`
	left := mustParse(t, xmlStr)
	right := mustParse(t, xmlStr)

	script, err := DiffTrees(left, right)
	if err != nil {
		t.Fatal(err)
	}
	if len(script) != 0 {
		t.Errorf("want empty script diffing a tree against itself, got %+v", script)
	}
}

// After applying the full edit script to a clone of the left tree
// (here: reading the generator's own mutated working tree, which by
// invariant tracks exactly what the script describes), the result is
// structurally equal to the right tree.
func TestGeneratorLeftConvergesToRight(t *testing.T) {
	// Deliberately avoids a same-parent sibling reorder: alignChildren
	// emits a MoveNode for that case but, per spec.md §9's documented
	// open question, doesn't physically reorder the left tree's
	// children, so this particular convergence check isn't meaningful
	// across a MoveNode within the same parent (see DESIGN.md).
	leftXML := `<r><a x="1"/><b/><c/></r>`
	rightXML := `<r><a x="2"/><c/><d/></r>`

	leftTree, err := ParseTreeString(leftXML)
	if err != nil {
		t.Fatal(err)
	}
	rightTree, err := ParseTreeString(rightXML)
	if err != nil {
		t.Fatal(err)
	}

	m := NewMatcher()
	m.SetTrees(leftTree.Root(), rightTree.Root())
	if _, err := m.Match(); err != nil {
		t.Fatal(err)
	}
	gen := NewGenerator(leftTree, rightTree.Root())
	gen.Generate()

	if !structurallyEqual(leftTree.Root(), rightTree.Root()) {
		t.Errorf("left tree after generation not structurally equal to right:\nleft:  %s\nright: %s",
			serializeNode(leftTree.Root()), serializeNode(rightTree.Root()))
	}
}

func structurallyEqual(a, b *Node) bool {
	if a.Tag() != b.Tag() || a.Text() != b.Text() || a.Tail() != b.Tail() {
		return false
	}
	if a.Attrs().Len() != b.Attrs().Len() {
		return false
	}
	for _, name := range a.Attrs().Names() {
		av, _ := a.Attrs().Get(name)
		bv, bok := b.Attrs().Get(name)
		if !bok || av != bv {
			return false
		}
	}
	ac, bc := a.Children(), b.Children()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !structurallyEqual(ac[i], bc[i]) {
			return false
		}
	}
	return true
}
