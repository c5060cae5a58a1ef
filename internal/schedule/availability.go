package schedule

// Reason explains why a slot is not bookable.
type Reason string

const (
	ReasonOK            Reason = ""
	ReasonClosed        Reason = "closed"
	ReasonOnBreak       Reason = "on_break"
	ReasonAlreadyBooked Reason = "already_booked"
)

// Result is the outcome of an availability check. It is a structured
// rejection, not an error: callers prompt the user for another slot.
type Result struct {
	Available bool
	Reason    Reason
}

// AvailableSlots returns the open slots for a day after subtracting break
// windows and already-booked times, in chronological order. A nil day or a
// holiday yields no slots. Merged windows can leave the stored slot cache
// unsorted, so the result is always re-sorted here.
func AvailableSlots(day *WorkingDay, booked []TimeOfDay) []TimeOfDay {
	if day == nil || day.Holiday {
		return nil
	}

	taken := make(map[TimeOfDay]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}

	var open []TimeOfDay
	for _, s := range day.Slots {
		if _, ok := taken[s]; ok {
			continue
		}
		if onBreak(day.Breaks, s) {
			continue
		}
		open = append(open, s)
	}
	sortSlots(open)
	return open
}

// Check validates a proposed booking time against the day's schedule and
// the times already booked on that date. The same check runs for new
// bookings and reschedules; for a reschedule the caller excludes the
// appointment's own current time from booked.
func Check(day *WorkingDay, booked []TimeOfDay, t TimeOfDay) Result {
	if day == nil || day.Holiday {
		return Result{Reason: ReasonClosed}
	}

	for _, b := range day.Breaks {
		if b.contains(t) {
			return Result{Reason: ReasonOnBreak}
		}
	}

	for _, bt := range booked {
		if bt == t {
			return Result{Reason: ReasonAlreadyBooked}
		}
	}

	return Result{Available: true, Reason: ReasonOK}
}
