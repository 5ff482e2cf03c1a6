package xmldiff

import "testing"

func TestLCSMonotonic(t *testing.T) {
	a := []string{"a", "b", "c", "d", "e"}
	b := []string{"b", "a", "c", "e", "d"}
	eq := func(i, j int) bool { return a[i] == b[j] }

	pairs := LCS(len(a), len(b), eq)
	if len(pairs) == 0 {
		t.Fatal("expected a non-empty common subsequence")
	}

	for _, p := range pairs {
		if !eq(p.I, p.J) {
			t.Errorf("pair (%d,%d): %q != %q", p.I, p.J, a[p.I], b[p.J])
		}
	}
	for k := 1; k < len(pairs); k++ {
		if pairs[k].I <= pairs[k-1].I || pairs[k].J <= pairs[k-1].J {
			t.Errorf("pairs not strictly increasing at %d: %v then %v", k, pairs[k-1], pairs[k])
		}
	}
}

func TestLCSIdentical(t *testing.T) {
	a := []string{"x", "y", "z"}
	eq := func(i, j int) bool { return a[i] == a[j] }
	pairs := LCS(len(a), len(a), eq)
	if len(pairs) != len(a) {
		t.Fatalf("identical sequences: want %d pairs, got %d", len(a), len(pairs))
	}
	for i, p := range pairs {
		if p.I != i || p.J != i {
			t.Errorf("pair %d: want (%d,%d), got (%d,%d)", i, i, i, p.I, p.J)
		}
	}
}

func TestLCSDisjoint(t *testing.T) {
	a := []string{"a", "b"}
	b := []string{"c", "d"}
	eq := func(i, j int) bool { return a[i] == b[j] }
	if pairs := LCS(len(a), len(b), eq); len(pairs) != 0 {
		t.Errorf("disjoint sequences: want no pairs, got %v", pairs)
	}
}

func TestLCSEmpty(t *testing.T) {
	eq := func(i, j int) bool { return true }
	if pairs := LCS(0, 0, eq); pairs != nil {
		t.Errorf("want nil for two empty sequences, got %v", pairs)
	}
	if pairs := LCS(3, 0, eq); pairs != nil {
		t.Errorf("want nil when one side is empty, got %v", pairs)
	}
}

func TestLCSMaximal(t *testing.T) {
	// No legal pair can be added beyond what's returned: every element of
	// a that isn't already consumed by a returned pair has no remaining
	// equal counterpart in b that would keep the alignment monotonic.
	a := []string{"a", "b", "a", "b"}
	b := []string{"b", "a", "b", "a"}
	eq := func(i, j int) bool { return a[i] == b[j] }
	pairs := LCS(len(a), len(b), eq)
	if len(pairs) != 3 {
		t.Fatalf("want longest common subsequence length 3, got %d (%v)", len(pairs), pairs)
	}
}
