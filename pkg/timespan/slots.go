package timespan

// Slots slices window into duration-minute spans starting every step minutes,
// dropping any that overlap a busy span. Busy spans on other dates are ignored.
func Slots(window Span, duration, step int, busy []Span) []Span {
	if duration <= 0 || step <= 0 || window.Validate() != nil {
		return nil
	}
	var out []Span
	for start := window.Start; int(start)+duration <= int(window.End); start += Clock(step) {
		candidate := Span{Date: window.Date, Start: start, End: start + Clock(duration)}
		if !overlapsAny(candidate, busy) {
			out = append(out, candidate)
		}
	}
	return out
}

// FreeSlots runs Slots over several windows and returns the union ordered by
// start time. Slots produced by overlapping windows are reported once.
func FreeSlots(windows []Span, duration, step int, busy []Span) []Span {
	seen := make(map[Span]struct{})
	var out []Span
	for _, w := range windows {
		for _, s := range Slots(w, duration, step, busy) {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	SortSpans(out)
	return out
}

func overlapsAny(candidate Span, busy []Span) bool {
	for _, b := range busy {
		if Overlaps(candidate, b) {
			return true
		}
	}
	return false
}
