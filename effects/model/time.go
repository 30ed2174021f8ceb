package effectmodel

import (
	"time"

	"github.com/rickb777/date/v2/timespan"
)

// TimeSpan is a window of wall-clock time.
type TimeSpan = timespan.TimeSpan

// clockResolution is how far an observed instant may be off either way.
const clockResolution = time.Millisecond

// InstantAt is the window an observation made at t falls in.
func InstantAt(t time.Time) TimeSpan {
	return timespan.BetweenTimes(t.Add(-clockResolution), t.Add(clockResolution))
}

// SpanBetween is the window from from up to to.
func SpanBetween(from, to time.Time) TimeSpan {
	return timespan.BetweenTimes(from, to)
}

// TimeBounded values know the window they hold for.
type TimeBounded interface {
	TimeSpan() TimeSpan
}
