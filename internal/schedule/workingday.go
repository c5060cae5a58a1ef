package schedule

import "sort"

// Break is a window within a working day during which no slot is bookable.
// Containment is half-open: a slot starting exactly at End is bookable,
// one starting exactly at Start is not.
type Break struct {
	Start TimeOfDay `json:"startTime"`
	End   TimeOfDay `json:"endTime"`
}

func (b Break) contains(t TimeOfDay) bool {
	return t >= b.Start && t < b.End
}

// WorkingDay is the admin-configured availability window for one calendar
// date. Slots is the stored slot cache: generated from Start/End and
// break-adjusted at write time. Booked times are subtracted at query time,
// never stored.
type WorkingDay struct {
	Date    string      `json:"date"`
	Start   TimeOfDay   `json:"startTime"`
	End     TimeOfDay   `json:"endTime"`
	Slots   []TimeOfDay `json:"availableTimeSlots"`
	Breaks  []Break     `json:"breaks"`
	Holiday bool        `json:"isHoliday"`
}

// NewWorkingDay builds a working day for date with slots generated from
// the given window at step minutes.
func NewWorkingDay(date string, start, end TimeOfDay, step int) *WorkingDay {
	return &WorkingDay{
		Date:  date,
		Start: start,
		End:   end,
		Slots: GenerateSlots(start, end, step),
	}
}

// MergeWindow unions the slots of a new start/end window into the day.
// Adding hours to a date that already has them extends the existing window
// rather than replacing it: the union is deduplicated, current breaks are
// re-subtracted, and Start/End become the min/max of the resulting slots.
// Merging the same window twice is a no-op.
func (d *WorkingDay) MergeWindow(start, end TimeOfDay, step int) {
	merged := append(GenerateSlots(start, end, step), d.Slots...)
	merged = dedupSlots(merged)
	merged = subtractBreaks(merged, d.Breaks)
	sortSlots(merged)

	d.Slots = merged
	if len(merged) > 0 {
		d.Start = merged[0]
		d.End = merged[len(merged)-1]
	}
}

// AddBreak appends a break window and removes the slots it covers.
func (d *WorkingDay) AddBreak(b Break) {
	d.Breaks = append(d.Breaks, b)
	d.Slots = subtractBreaks(d.Slots, []Break{b})
}

// SetWindow replaces the day's slots with a freshly generated sequence for
// the given window, minus the given breaks.
func (d *WorkingDay) SetWindow(start, end TimeOfDay, breaks []Break, step int) {
	d.Start = start
	d.End = end
	d.Breaks = breaks
	d.Slots = subtractBreaks(GenerateSlots(start, end, step), breaks)
}

// RemoveSlot deletes a single slot and recomputes Start/End from what
// remains. It reports whether the day is now empty; a day with zero slots
// is equivalent to having no working hours, so the caller should delete
// the record.
func (d *WorkingDay) RemoveSlot(t TimeOfDay) (empty bool) {
	kept := d.Slots[:0]
	for _, s := range d.Slots {
		if s != t {
			kept = append(kept, s)
		}
	}
	d.Slots = kept

	if len(kept) == 0 {
		return true
	}

	sortSlots(d.Slots)
	d.Start = d.Slots[0]
	d.End = d.Slots[len(d.Slots)-1]
	return false
}

func dedupSlots(slots []TimeOfDay) []TimeOfDay {
	seen := make(map[TimeOfDay]struct{}, len(slots))
	out := slots[:0]
	for _, s := range slots {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func onBreak(breaks []Break, t TimeOfDay) bool {
	for _, b := range breaks {
		if b.contains(t) {
			return true
		}
	}
	return false
}

// subtractBreaks filters slots in place; write paths only.
func subtractBreaks(slots []TimeOfDay, breaks []Break) []TimeOfDay {
	if len(breaks) == 0 {
		return slots
	}
	out := slots[:0]
	for _, s := range slots {
		if !onBreak(breaks, s) {
			out = append(out, s)
		}
	}
	return out
}

func sortSlots(slots []TimeOfDay) {
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
}
