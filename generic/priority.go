package generic

// =============================================================================
// PRIORITY SELECTION - (priority desc, definition order asc)
// =============================================================================

// SelectByPriority returns the index of the matching item with the highest priority.
// Items earlier in the slice win ties, so the result never depends on sort stability.
// ok is false if nothing matches.
func SelectByPriority[T any](items []T, matches func(T) bool, priority func(T) int) (index int, ok bool) {
	index = -1
	best := 0
	for i, item := range items {
		if !matches(item) {
			continue
		}
		p := priority(item)
		if index == -1 || p > best {
			index, best = i, p
		}
	}
	return index, index != -1
}
