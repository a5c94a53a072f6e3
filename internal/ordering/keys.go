// Package ordering computes the sparse sort keys that order place
// attachments within an itinerary day. Keys are allocated in multiples of
// Step so that most single insertions fit between two existing keys without
// touching the rest of the list; a full renumber at standard spacing is the
// fallback when no integer gap remains.
//
// All functions are pure over the key set passed in. There is no stored
// counter, so concurrent requests never share mutable ordering state.
package ordering

// Step is the standard spacing between freshly issued sort keys.
const Step int64 = 100

// NextAppendKey returns the key for a new attachment appended to the end of
// a day: max existing key plus Step, or Step for an empty day.
func NextAppendKey(keys []int64) int64 {
	max := int64(0)
	for _, k := range keys {
		if k > max {
			max = k
		}
	}
	return max + Step
}

// InsertBetween returns the key for an attachment placed between two
// neighbors. A nil before means "insert at the head", a nil after means
// "insert at the tail". The second return value is false when the neighbors
// leave no usable integer key, in which case the caller must renumber the
// day at standard spacing and call again with the fresh neighbors.
func InsertBetween(before, after *int64) (int64, bool) {
	switch {
	case before == nil && after == nil:
		return Step, true
	case before == nil:
		key := *after - Step
		if key < 1 {
			key = 1
		}
		if key >= *after {
			return 0, false
		}
		return key, true
	case after == nil:
		return *before + Step, true
	default:
		if *after-*before < 2 {
			// Adjacent integers: no midpoint exists.
			return 0, false
		}
		return *before + (*after-*before)/2, true
	}
}

// ReassignKeys issues keys at standard spacing for n attachments kept in
// their current display order. Position p maps to (p+1)*Step; this is both
// the renumber fallback and the authoritative bulk-reorder assignment.
func ReassignKeys(n int) []int64 {
	keys := make([]int64, n)
	for i := range keys {
		keys[i] = int64(i+1) * Step
	}
	return keys
}

// NeighborsAt returns the keys bracketing an insertion at position within an
// ascending key list. Position 0 inserts at the head, positions at or past
// the end append.
func NeighborsAt(keys []int64, position int) (before, after *int64) {
	if position < 0 {
		position = 0
	}
	if position > len(keys) {
		position = len(keys)
	}
	if position > 0 {
		b := keys[position-1]
		before = &b
	}
	if position < len(keys) {
		a := keys[position]
		after = &a
	}
	return before, after
}
