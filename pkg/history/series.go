// Package history implements the bounded aggregate time series the
// sweep job appends to: 24 hours of 10-minute samples per series,
// serialized as JSON into settings rows.
package history

import (
	"encoding/json"
	"time"
)

// Capacity is the point bound per series (24h at 10-minute intervals).
const Capacity = 144

// Bucket is the sampling granularity; at most one point is kept per
// bucket so overlapping sweep runs self-dedupe.
const Bucket = 10 * time.Minute

// Point is one sample.
type Point struct {
	Value float64   `json:"value"`
	Time  time.Time `json:"time"`
}

// Series is an append-only FIFO sequence of points.
type Series struct {
	Points []Point `json:"points"`
}

// Append records value at the given instant. A point landing in the
// same 10-minute bucket as the latest one overwrites it instead of
// growing the series; otherwise the oldest point is evicted once the
// series is at capacity.
func (s *Series) Append(value float64, at time.Time) {
	at = at.UTC()
	bucket := at.Truncate(Bucket)
	if n := len(s.Points); n > 0 && s.Points[n-1].Time.Truncate(Bucket).Equal(bucket) {
		s.Points[n-1] = Point{Value: value, Time: at}
		return
	}
	s.Points = append(s.Points, Point{Value: value, Time: at})
	if len(s.Points) > Capacity {
		s.Points = s.Points[len(s.Points)-Capacity:]
	}
}

// Latest returns the most recent point, if any.
func (s *Series) Latest() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Marshal serializes the series for storage in a settings row.
func (s *Series) Marshal() (string, error) {
	b, err := json.Marshal(s.Points)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Unmarshal restores a series from its settings-row value. An empty
// value yields an empty series.
func Unmarshal(value string) (*Series, error) {
	s := &Series{}
	if value == "" {
		return s, nil
	}
	if err := json.Unmarshal([]byte(value), &s.Points); err != nil {
		return nil, err
	}
	return s, nil
}
