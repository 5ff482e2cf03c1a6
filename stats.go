package xmldiff

// Stats holds statistical metadata about a diff.
type Stats struct {
	Left  int `json:"leftNodes"`  // count of elements in the left tree
	Right int `json:"rightNodes"` // count of elements in the right tree

	LeftWeight  int `json:"leftWeight"`  // combined text+tail byte count of the left tree
	RightWeight int `json:"rightWeight"` // combined text+tail byte count of the right tree

	Inserts int `json:"inserts,omitempty"` // InsertNode operations
	Updates int `json:"updates,omitempty"` // attribute and text operations combined
	Deletes int `json:"deletes,omitempty"` // DeleteNode operations
	Moves   int `json:"moves,omitempty"`   // MoveNode operations
}

// NodeChange returns a count of the shift between left & right trees.
func (s Stats) NodeChange() int {
	return s.Right - s.Left
}

// PctWeightChange returns the ratio of left weight to right weight, the
// same shape as the element-count shift but for body size.
func (s Stats) PctWeightChange() float64 {
	if s.RightWeight == 0 {
		return 0
	}
	return float64(s.LeftWeight) / float64(s.RightWeight)
}

// treeWeight sums the byte length of every node's text and tail in the
// subtree rooted at n, used as a cheap proxy for document size.
func treeWeight(n *Node) int {
	w := 0
	for _, node := range PostOrder(n) {
		w += len(node.Text()) + len(node.Tail())
	}
	return w
}

// StatsFromScript tallies a Stats from the trees diffed and the script
// produced against them. left and right should be the original,
// pre-diff roots -- the generator mutates its left working copy in
// place, so measure element counts and weight before diffing, not after.
func StatsFromScript(left, right *Node, script Script) Stats {
	s := Stats{
		Left:        len(PostOrder(left)),
		Right:       len(PostOrder(right)),
		LeftWeight:  treeWeight(left),
		RightWeight: treeWeight(right),
	}
	for _, op := range script {
		switch op.Type {
		case OpInsertNode:
			s.Inserts++
		case OpDeleteNode:
			s.Deletes++
		case OpMoveNode:
			s.Moves++
		case OpInsertAttrib, OpDeleteAttrib, OpRenameAttrib, OpUpdateAttrib, OpUpdateTextIn, OpUpdateTextAfter:
			s.Updates++
		}
	}
	return s
}
