package schedule

// IsDue reports whether t lies in the inclusive window [start, end]. A window
// with start after end crosses midnight.
func IsDue(t, start, end TimeOfDay) bool {
	if start <= end {
		return t >= start && t <= end
	}
	return t >= start || t <= end
}
