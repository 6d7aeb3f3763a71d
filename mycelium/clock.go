package mycelium

import (
	"fmt"
	"math"
	"time"
)

// Moment is a timestamp in nanoseconds since the UNIX epoch.
//
// Its hash encoding is the 16-byte big-endian u128 form. The in-memory uint64
// is narrower than that encoding and only reaches the year 2554.
type Moment uint64

// Time converts m back to a UTC time.Time.
func (m Moment) Time() time.Time {
	return time.Unix(int64(m/1e9), int64(m%1e9)).UTC()
}

// MomentOf converts t to a Moment. Times before the epoch, or too far in the
// future to fit, are rejected.
func MomentOf(t time.Time) (Moment, error) {
	secs := t.Unix()
	if secs < 0 {
		return 0, fmt.Errorf("time %s is before the UNIX epoch", t.Format(time.RFC3339Nano))
	}
	if uint64(secs) > (math.MaxUint64-uint64(t.Nanosecond()))/1e9 {
		return 0, fmt.Errorf("time %s overflows a nanosecond moment", t.Format(time.RFC3339Nano))
	}
	return Moment(uint64(secs)*1e9 + uint64(t.Nanosecond())), nil
}

// Clock is the time source used to stamp origin and update moments.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

func (n *Node) now() (Moment, error) {
	c := n.clock
	if c == nil {
		c = SystemClock{}
	}
	m, err := MomentOf(c.Now())
	if err != nil {
		return 0, wrapError(KindTiming, "MYC-TIME-001", "clock unavailable", err)
	}
	return m, nil
}
