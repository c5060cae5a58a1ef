package schedule

// GenerateSlots returns the ordered sequence of bookable start times
// between start and end, spaced step minutes apart. The first slot equals
// start and the last emitted slot is <= end; a slot exactly equal to end
// is included when the arithmetic lands on it. start > end yields an
// empty sequence, start == end yields just [start].
func GenerateSlots(start, end TimeOfDay, step int) []TimeOfDay {
	if step <= 0 || start > end {
		return nil
	}

	var slots []TimeOfDay
	for t := start; t <= end; t += TimeOfDay(step) {
		slots = append(slots, t)
	}
	return slots
}
