package overlap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func at(d, h, m int) time.Time {
	return time.Date(2025, 3, d, h, m, 0, 0, time.UTC)
}

func TestOverlaps_DateRanges(t *testing.T) {
	tests := []struct {
		name                   string
		candStart, candEnd     time.Time
		existStart, existEnd   time.Time
		buffer                 time.Duration
		want                   bool
	}{
		{"partial overlap", day(11), day(13), day(10), day(12), 0, true},
		{"candidate touches existing end", day(12), day(14), day(10), day(12), 0, false},
		{"candidate touches existing start", day(8), day(10), day(10), day(12), 0, false},
		{"candidate inside existing", day(10), day(11), day(9), day(13), 0, true},
		{"existing inside candidate", day(9), day(13), day(10), day(11), 0, true},
		{"identical ranges", day(10), day(12), day(10), day(12), 0, true},
		{"disjoint before", day(1), day(5), day(10), day(12), 0, false},
		{"disjoint after", day(13), day(15), day(10), day(12), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tt.candStart, tt.candEnd, tt.existStart, tt.existEnd, tt.buffer)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Rentcar turnaround: dropoff 14:00 with a 60-minute buffer blocks a 14:30
// pickup but not a 15:01 one.
func TestOverlaps_Buffer(t *testing.T) {
	existStart := at(5, 10, 0)
	existEnd := at(5, 14, 0)
	buffer := 60 * time.Minute

	assert.True(t, Overlaps(at(5, 14, 30), at(5, 18, 0), existStart, existEnd, buffer))
	assert.False(t, Overlaps(at(5, 15, 1), at(5, 18, 0), existStart, existEnd, buffer))
	// Half-open: a pickup exactly at the end of the buffer does not collide.
	assert.False(t, Overlaps(at(5, 15, 0), at(5, 18, 0), existStart, existEnd, buffer))
}

// The buffer belongs to the existing side only: swapping candidate and
// existing changes the answer near the boundary.
func TestOverlaps_BufferAsymmetry(t *testing.T) {
	a1, a2 := at(5, 10, 0), at(5, 14, 0)
	b1, b2 := at(5, 14, 30), at(5, 18, 0)
	buffer := 60 * time.Minute

	assert.True(t, Overlaps(b1, b2, a1, a2, buffer))
	assert.False(t, Overlaps(a1, a2, b1, b2, buffer))
}

func TestValidateRange(t *testing.T) {
	assert.NoError(t, ValidateRange(day(10), day(12)))
	assert.ErrorIs(t, ValidateRange(day(10), day(10)), ErrInvalidRange)
	assert.ErrorIs(t, ValidateRange(day(12), day(10)), ErrInvalidRange)
}
