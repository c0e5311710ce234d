package timerange

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidRange = errors.New("end time must be after start time")

// Range is a half-open interval [Start, End).
type Range struct {
	Start time.Time `json:"startTime"`
	End   time.Time `json:"endTime"`
}

// New builds a Range and enforces End > Start. Both instants are normalized to UTC.
func New(start, end time.Time) (Range, error) {
	if !end.After(start) {
		return Range{}, ErrInvalidRange
	}
	return Range{Start: start.UTC(), End: end.UTC()}, nil
}

// Parse reads two RFC3339 timestamps.
func Parse(start, end string) (Range, error) {
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return Range{}, fmt.Errorf("invalid start time %q: %w", start, err)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return Range{}, fmt.Errorf("invalid end time %q: %w", end, err)
	}
	return New(s, e)
}

// Overlaps is the one overlap test used everywhere: s1 < e2 && s2 < e1.
// Touching ranges ([10,11) and [11,12)) do not overlap.
func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether t falls inside [Start, End).
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

func (r Range) Valid() bool {
	return r.End.After(r.Start)
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}

// Clock abstracts "now" so sweeps and cancellations can be tested.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns T. Set replaces it.
type FixedClock struct {
	T time.Time
}

func (c *FixedClock) Now() time.Time { return c.T }

func (c *FixedClock) Set(t time.Time) { c.T = t }
