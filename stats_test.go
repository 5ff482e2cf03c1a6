package xmldiff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStatFromScript(t *testing.T) {
	left := mustParse(t, `<r><a x="1"/><b/><c/></r>`)
	right := mustParse(t, `<r><a x="2"/><c/><d/></r>`)

	want := Stats{
		Left:        4,
		Right:       4,
		LeftWeight:  0,
		RightWeight: 0,
		Inserts:     1,
		Updates:     1,
		Deletes:     1,
		Moves:       0,
	}

	got, err := New().Stat(left, right)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Stat mismatch (-want +got):\n%s", diff)
	}
	if got.NodeChange() != 0 {
		t.Errorf("NodeChange: want 0, got %d", got.NodeChange())
	}
	if got.PctWeightChange() != 0 {
		t.Errorf("PctWeightChange with zero RightWeight: want 0, got %v", got.PctWeightChange())
	}
}

func TestPctWeightChangeNonZero(t *testing.T) {
	s := Stats{LeftWeight: 50, RightWeight: 100}
	if got := s.PctWeightChange(); got != 0.5 {
		t.Errorf("PctWeightChange: want 0.5, got %v", got)
	}
}

func TestTreeWeightSumsTextAndTail(t *testing.T) {
	root := mustParse(t, `<r>a<b>bb</b>ccc</r>`)
	// root.Text() = "a" (1), b.Text() = "bb" (2), b.Tail() = "ccc" (3).
	if w := treeWeight(root); w != 6 {
		t.Errorf("treeWeight: want 6, got %d", w)
	}
}
