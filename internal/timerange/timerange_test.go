package timerange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 1, hour, minute, 0, 0, time.UTC)
}

func mustRange(t *testing.T, start, end time.Time) Range {
	t.Helper()
	r, err := New(start, end)
	require.NoError(t, err)
	return r
}

func TestNewRejectsEmptyAndInvertedRanges(t *testing.T) {
	_, err := New(at(10, 0), at(10, 0))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(at(11, 0), at(10, 0))
	assert.ErrorIs(t, err, ErrInvalidRange)

	r, err := New(at(10, 0), at(10, 1))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, r.Duration())
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Range
		want bool
	}{
		{"partial overlap", mustRange(t, at(10, 0), at(12, 0)), mustRange(t, at(11, 0), at(13, 0)), true},
		{"touching boundary", mustRange(t, at(10, 0), at(11, 0)), mustRange(t, at(11, 0), at(12, 0)), false},
		{"touching boundary reversed", mustRange(t, at(11, 0), at(12, 0)), mustRange(t, at(10, 0), at(11, 0)), false},
		{"nested", mustRange(t, at(10, 0), at(14, 0)), mustRange(t, at(11, 0), at(12, 0)), true},
		{"nested reversed", mustRange(t, at(11, 0), at(12, 0)), mustRange(t, at(10, 0), at(14, 0)), true},
		{"identical", mustRange(t, at(10, 0), at(12, 0)), mustRange(t, at(10, 0), at(12, 0)), true},
		{"disjoint", mustRange(t, at(8, 0), at(9, 0)), mustRange(t, at(10, 0), at(11, 0)), false},
		{"same start", mustRange(t, at(10, 0), at(11, 0)), mustRange(t, at(10, 0), at(10, 30)), true},
		{"same end", mustRange(t, at(10, 0), at(11, 0)), mustRange(t, at(10, 59), at(11, 0)), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(tc.a), "overlap must be symmetric")
		})
	}
}

func TestContainsIsHalfOpen(t *testing.T) {
	r := mustRange(t, at(10, 0), at(11, 0))
	assert.True(t, r.Contains(at(10, 0)))
	assert.True(t, r.Contains(at(10, 59)))
	assert.False(t, r.Contains(at(11, 0)))
	assert.False(t, r.Contains(at(9, 59)))
}

func TestParse(t *testing.T) {
	r, err := Parse("2025-06-01T14:00:00Z", "2025-06-01T16:00:00+00:00")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, r.Duration())

	_, err = Parse("yesterday", "2025-06-01T16:00:00Z")
	assert.Error(t, err)

	_, err = Parse("2025-06-01T16:00:00Z", "2025-06-01T14:00:00Z")
	assert.ErrorIs(t, err, ErrInvalidRange)
}
