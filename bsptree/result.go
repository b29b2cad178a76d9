package bsptree

// Result is a successful point query result. A Result's fields locate
// the matched box in the box slice the Index was built from.
type Result struct {
	// Index is the position of the matched box in the box slice.
	Index int
	// Data is the matched box's payload.
	Data int64
}

// scan returns the first box, in leaf order, among the referenced
// boxes which contains the point (x, y).
func scan(boxes []Box, refs []uint16, x, y float64) (Result, bool) {
	for _, ref := range refs {
		b := &boxes[ref]
		if b.Contains(x, y) {
			return Result{Index: int(ref), Data: b.Data}, true
		}
	}
	return Result{}, false
}
