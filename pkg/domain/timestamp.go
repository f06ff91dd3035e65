package domain

import "time"

// TimestampLayout is the wall-clock layout used for order timestamps. It has
// microsecond precision and no zone, matching documents written before this
// module existed.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Timestamp is an order timestamp kept as its exact persisted text so that a
// save/load round trip reproduces it byte for byte.
type Timestamp string

// NewTimestamp formats t in local wall-clock time.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.Local().Format(TimestampLayout))
}

// Time parses the timestamp. Any fractional-second precision is accepted.
func (t Timestamp) Time() (time.Time, error) {
	return time.ParseInLocation("2006-01-02T15:04:05", string(t), time.Local)
}

func (t Timestamp) String() string { return string(t) }
