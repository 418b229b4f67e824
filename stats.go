package jsondelta

// Stats holds statistical metadata about a diff
type Stats struct {
	Left  int `json:"leftLeaves"`  // count of leaves in the left tree
	Right int `json:"rightLeaves"` // count of leaves in the right tree

	LeftWeight  int `json:"leftWeight"`  // rendered byte count of left leaves
	RightWeight int `json:"rightWeight"` // rendered byte count of right leaves

	Adds    int `json:"adds,omitempty"`    // number of leaves added
	Changes int `json:"changes,omitempty"` // number of leaves changed
	Deletes int `json:"deletes,omitempty"` // number of leaves deleted
}

// LeafChange returns a count of the shift between left & right trees
func (s Stats) LeafChange() int {
	return s.Right - s.Left
}

// PctWeightChange returns a value from -1.0 to max(float64) representing the size shift
// between left & right trees
func (s Stats) PctWeightChange() float64 {
	if s.RightWeight == 0 {
		return 0
	}
	return float64(s.LeftWeight) / float64(s.RightWeight)
}

// Total is the number of deltas the diff produced
func (s Stats) Total() int {
	return s.Adds + s.Changes + s.Deletes
}
