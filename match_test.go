package xmldiff

import "testing"

func TestMatcherBeforeSetTreesIsUsageOrder(t *testing.T) {
	m := NewMatcher()
	if _, err := m.Match(); err == nil {
		t.Fatal("want UsageOrder error calling Match before SetTrees")
	} else if xerr, ok := err.(*Error); !ok || xerr.Kind != UsageOrder {
		t.Errorf("want *Error{Kind: UsageOrder}, got %v", err)
	}
}

func TestMatcherInvariants(t *testing.T) {
	left, err := ParseTreeString(`<r><a/><b/><c/></r>`)
	if err != nil {
		t.Fatal(err)
	}
	right, err := ParseTreeString(`<r><b/><c/><a/></r>`)
	if err != nil {
		t.Fatal(err)
	}

	m := NewMatcher(WithThreshold(0.5))
	m.SetTrees(left.Root(), right.Root())
	matches, err := m.Match()
	if err != nil {
		t.Fatal(err)
	}

	seenLeft := map[*Node]bool{}
	seenRight := map[*Node]bool{}
	for _, mt := range matches {
		if mt.Score < 0.5 {
			t.Errorf("match score %v below threshold", mt.Score)
		}
		if seenLeft[mt.Left] {
			t.Error("left node matched more than once")
		}
		seenLeft[mt.Left] = true
		if seenRight[mt.Right] {
			t.Error("right node matched more than once")
		}
		seenRight[mt.Right] = true
	}
}

func TestMatcherIsDeterministic(t *testing.T) {
	leftXML := `<d><s><p>First</p><p>Second</p></s><s><p>Last</p></s></d>`
	rightXML := `<d><s><p>First</p></s><s><p>Second</p><p>Last</p></s></d>`

	var prev []Match
	for i := 0; i < 25; i++ {
		left, err := ParseTreeString(leftXML)
		if err != nil {
			t.Fatal(err)
		}
		right, err := ParseTreeString(rightXML)
		if err != nil {
			t.Fatal(err)
		}
		m := NewMatcher()
		m.SetTrees(left.Root(), right.Root())
		matches, err := m.Match()
		if err != nil {
			t.Fatal(err)
		}
		if prev != nil {
			if len(matches) != len(prev) {
				t.Fatalf("run %d: match count changed, %d vs %d", i, len(matches), len(prev))
			}
			for j := range matches {
				if CanonicalXPath(matches[j].Left) != CanonicalXPath(prev[j].Left) ||
					CanonicalXPath(matches[j].Right) != CanonicalXPath(prev[j].Right) {
					t.Fatalf("run %d: match set order/content changed at %d", i, j)
				}
			}
		}
		prev = matches
	}
}

// Scenario 4 -- unique-id dominance: the matcher must pair the two
// xml:id-bearing sections even though a structurally identical twin
// has higher textual similarity.
func TestMatcherUniqueIDDominance(t *testing.T) {
	leftXML := `<doc><section xml:id="A"><body>X</body></section></doc>`
	rightXML := `<doc>` +
		`<section xml:id="A"><body>Y</body></section>` +
		`<section><body>X</body></section>` +
		`</doc>`

	left, err := ParseTreeString(leftXML)
	if err != nil {
		t.Fatal(err)
	}
	right, err := ParseTreeString(rightXML)
	if err != nil {
		t.Fatal(err)
	}

	m := NewMatcher()
	m.SetTrees(left.Root(), right.Root())
	if _, err := m.Match(); err != nil {
		t.Fatal(err)
	}

	leftSection := left.Root().ChildAt(0)
	idSection := right.Root().ChildAt(0)
	if leftSection.Match() != idSection {
		t.Errorf("left section should match the xml:id=A section, matched %v instead", leftSection.Match())
	}
}
