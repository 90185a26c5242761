package services

import "time"

// DueBoundary is the last editable second of the due date's calendar day in
// the office location. Due dates are calendar dates; only their year, month
// and day are read. A task due "on" a date stays editable through 23:59:59.
func DueBoundary(dueDate time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := dueDate.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, loc)
}

func IsOverdue(dueDate time.Time, now time.Time, loc *time.Location) bool {
	if dueDate.IsZero() {
		return false
	}
	return now.After(DueBoundary(dueDate, loc))
}

// IsLocked decides whether a status transition is frozen for the actor.
// privileged is the actor's CanEditAnyTask capability; privileged actors are
// never locked out. The lock only guards status transitions.
func IsLocked(dueDate time.Time, now time.Time, loc *time.Location, privileged bool) bool {
	if privileged {
		return false
	}
	return IsOverdue(dueDate, now, loc)
}
