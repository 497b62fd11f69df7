package schedule

// Conflicts reports whether two canonical slots overlap: their day
// sets intersect and their time intervals overlap (half-open). A nil
// slot cannot prove a conflict, so it never conflicts with anything.
func Conflicts(a, b *TimeSlot) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Days&b.Days == 0 {
		return false
	}
	return !(a.EndMin <= b.StartMin || b.EndMin <= a.StartMin)
}

// ConflictsAny reports whether any slot pair across the two lists
// conflicts. Courses with multiple weekly meetings conflict when any
// of their meetings do.
func ConflictsAny(a, b []*TimeSlot) bool {
	for _, sa := range a {
		for _, sb := range b {
			if Conflicts(sa, sb) {
				return true
			}
		}
	}
	return false
}
