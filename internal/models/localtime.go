package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// LocalTimeLayout is the zone-less date-time layout used by the events API.
const LocalTimeLayout = "2006-01-02T15:04:05"

// LocalTime is a wall-clock date-time without zone information.
// Values are interpreted in the process's local time zone.
type LocalTime struct {
	time.Time
}

// NewLocalTime wraps t, dropping sub-second precision.
func NewLocalTime(t time.Time) LocalTime {
	return LocalTime{Time: t.Truncate(time.Second)}
}

// ParseLocalTime parses the API layout (optionally with fractional seconds
// or a trailing zone) and falls back to RFC 3339.
func ParseLocalTime(s string) (LocalTime, error) {
	layouts := []string{
		LocalTimeLayout,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return LocalTime{Time: t}, nil
		}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return LocalTime{}, fmt.Errorf("parse date %q: expected %s", s, LocalTimeLayout)
	}
	return LocalTime{Time: t.In(time.Local)}, nil
}

// String formats the value in the API layout.
func (t LocalTime) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(LocalTimeLayout)
}

// MarshalJSON encodes the value in the API layout, or null when zero.
func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(LocalTimeLayout))
}

// UnmarshalJSON accepts a string in any layout understood by ParseLocalTime.
func (t *LocalTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = LocalTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	if s == "" {
		*t = LocalTime{}
		return nil
	}
	parsed, err := ParseLocalTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
