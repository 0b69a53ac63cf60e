// Package overlap is the single source of truth for reservation interval
// math. Every booking path (lodging, rentcar, experience) must call it
// rather than re-deriving interval comparisons inline.
package overlap

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("invalid range: end must be after start")

// ValidateRange rejects zero-length and inverted intervals before they
// reach any conflict check.
func ValidateRange(start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidRange
	}
	return nil
}

// Overlaps reports whether the half-open candidate [candidateStart,
// candidateEnd) collides with an existing reservation [existingStart,
// existingEnd) whose end is extended by buffer. The buffer applies only to
// the existing side: it models turnaround time after the existing booking,
// not before the candidate.
func Overlaps(candidateStart, candidateEnd, existingStart, existingEnd time.Time, buffer time.Duration) bool {
	extendedEnd := existingEnd.Add(buffer)
	return !(candidateEnd.Compare(existingStart) <= 0 || candidateStart.Compare(extendedEnd) >= 0)
}
