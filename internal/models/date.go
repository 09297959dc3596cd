package models

import "time"

// DateOf returns the calendar date of t as midnight UTC. Effective dates are
// stored in this form so that range predicates compare consistently across
// drivers.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date as midnight UTC.
func Today() time.Time {
	return DateOf(time.Now())
}
