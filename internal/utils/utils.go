package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	// MaxLookbackMinutes caps how far back a single query may reach.
	MaxLookbackMinutes = 1440
	// MaxRangeHours caps the span of an explicit time range.
	MaxRangeHours = 24

	legacyTimeLayout = "2006-01-02 15:04:05"
)

// GetTimeRange resolves a tool's time parameters into a concrete UTC range.
// Accepted params: "start_time_iso" and "end_time_iso" (RFC3339 or legacy
// "YYYY-MM-DD hh:mm:ss", both read as UTC) and "lookback_minutes". When only
// one endpoint is given the other is derived using the lookback; when none
// is given the range ends now.
func GetTimeRange(params map[string]interface{}, defaultLookbackMinutes int) (time.Time, time.Time, error) {
	lookback := defaultLookbackMinutes
	if v, ok := params["lookback_minutes"]; ok {
		minutes, ok := toInt(v)
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid lookback_minutes: %v", v)
		}
		if minutes < 1 || minutes > MaxLookbackMinutes {
			return time.Time{}, time.Time{}, fmt.Errorf("lookback_minutes must be between 1 and %d", MaxLookbackMinutes)
		}
		lookback = minutes
	}
	lookbackDur := time.Duration(lookback) * time.Minute

	var start, end time.Time
	var haveStart, haveEnd bool

	if raw, ok := params["start_time_iso"].(string); ok && raw != "" {
		parsed, err := parseTime(raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_time_iso: %w", err)
		}
		start, haveStart = parsed, true
	}
	if raw, ok := params["end_time_iso"].(string); ok && raw != "" {
		parsed, err := parseTime(raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_time_iso: %w", err)
		}
		end, haveEnd = parsed, true
	}

	switch {
	case haveStart && haveEnd:
		// Use both as given.
	case haveStart:
		end = start.Add(lookbackDur)
	case haveEnd:
		start = end.Add(-lookbackDur)
	default:
		end = time.Now().UTC()
		start = end.Add(-lookbackDur)
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, errors.New("start time must be before end time")
	}
	if end.Sub(start) > MaxRangeHours*time.Hour {
		return time.Time{}, time.Time{}, errors.New("time range cannot exceed 24 hours")
	}

	return start.UTC(), end.UTC(), nil
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(legacyTimeLayout, raw, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time format %q", raw)
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

// ConvertTimestamp renders a raw timestamp value (epoch seconds, millis,
// nanos, or string) as RFC3339. Unrecognized values are echoed as strings.
func ConvertTimestamp(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return epochToRFC3339(int64(t))
	case int64:
		return epochToRFC3339(t)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func epochToRFC3339(n int64) string {
	switch {
	case n > 1e17: // nanoseconds
		return time.Unix(0, n).UTC().Format(time.RFC3339)
	case n > 1e12: // milliseconds
		return time.UnixMilli(n).UTC().Format(time.RFC3339)
	default: // seconds
		return time.Unix(n, 0).UTC().Format(time.RFC3339)
	}
}

// FormatJSON pretty-prints a value for tool output.
func FormatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}
