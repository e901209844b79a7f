package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// All booking math is anchored to this zone, independent of the host zone.
const ZoneName = "Europe/Bucharest"

// DateLayout is the canonical display form for booking dates.
const DateLayout = "02/01/2006"

const isoDateLayout = "2006-01-02"

var bucharest *time.Location

func init() {
	loc, err := time.LoadLocation(ZoneName)
	if err != nil {
		// EET without DST data, better than silently using the host zone
		loc = time.FixedZone("EET", 2*60*60)
	}
	bucharest = loc
}

// Location returns the canonical timezone.
func Location() *time.Location {
	return bucharest
}

// Now returns the current instant in the canonical timezone.
func Now() time.Time {
	return time.Now().In(bucharest)
}

// Timestamp mirrors the store-native {seconds, nanoseconds} pair.
type Timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

// Normalize converts heterogeneous date/time representations into a single
// Europe/Bucharest instant. Accepted shapes: time.Time, epoch milliseconds,
// Timestamp pairs (including the underscore-prefixed legacy map form),
// ISO-8601 strings, DD/MM/YYYY and YYYY-MM-DD strings. Unrecognized input
// falls through to a best-effort parse; failure returns ok=false, never a
// panic.
func Normalize(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return v.In(bucharest), true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return Normalize(*v)
	case Timestamp:
		return time.Unix(v.Seconds, v.Nanoseconds).In(bucharest), true
	case *Timestamp:
		if v == nil {
			return time.Time{}, false
		}
		return Normalize(*v)
	case int64:
		return fromEpochMillis(v), true
	case int:
		return fromEpochMillis(int64(v)), true
	case float64:
		return fromEpochMillis(int64(v)), true
	case map[string]interface{}:
		return fromTimestampMap(v)
	case string:
		return normalizeString(v)
	default:
		return normalizeString(fmt.Sprint(value))
	}
}

func fromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).In(bucharest)
}

// fromTimestampMap handles JSON-decoded {seconds,nanoseconds} pairs and the
// underscore-prefixed legacy variant ({_seconds,_nanoseconds}).
func fromTimestampMap(m map[string]interface{}) (time.Time, bool) {
	for _, keys := range [][2]string{{"seconds", "nanoseconds"}, {"_seconds", "_nanoseconds"}} {
		secVal, ok := m[keys[0]]
		if !ok {
			continue
		}
		sec, ok := toInt64(secVal)
		if !ok {
			continue
		}
		var nsec int64
		if nsecVal, present := m[keys[1]]; present {
			nsec, _ = toInt64(nsecVal)
		}
		return time.Unix(sec, nsec).In(bucharest), true
	}
	return time.Time{}, false
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func normalizeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if strings.Contains(s, "T") {
		// ISO strings are parsed as UTC then moved into the canonical zone
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t.In(bucharest), true
			}
		}
		return time.Time{}, false
	}

	if strings.Contains(s, "/") {
		if t, err := time.ParseInLocation(DateLayout, s, bucharest); err == nil {
			return t, true
		}
		return time.Time{}, false
	}

	if strings.Contains(s, "-") {
		if t, err := time.ParseInLocation(isoDateLayout, s, bucharest); err == nil {
			return t, true
		}
		return time.Time{}, false
	}

	for _, layout := range []string{time.RFC1123, time.ANSIC, "02.01.2006"} {
		if t, err := time.ParseInLocation(layout, s, bucharest); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Format renders any accepted input shape with the given layout, or "" when
// the input does not normalize.
func Format(value interface{}, layout string) string {
	t, ok := Normalize(value)
	if !ok {
		return ""
	}
	return t.Format(layout)
}

// FormatDate renders any accepted input shape as canonical DD/MM/YYYY.
func FormatDate(value interface{}) string {
	return Format(value, DateLayout)
}

// MinutesOfDay parses an HH:mm clock string into minutes since midnight.
// The whole string must be the clock: trailing characters, signs or a
// one-digit minute field are rejected.
func MinutesOfDay(clock string) (int, bool) {
	hh, mm, found := strings.Cut(clock, ":")
	if !found || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return 0, false
	}
	if !allDigits(hh) || !allDigits(mm) {
		return 0, false
	}
	hours, err := strconv.Atoi(hh)
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil {
		return 0, false
	}
	if hours > 23 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ClockFromMinutes renders minutes since midnight as HH:mm.
func ClockFromMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// At combines a canonical DD/MM/YYYY date and an HH:mm clock into a single
// Bucharest instant.
func At(date string, clock string) (time.Time, bool) {
	day, ok := Normalize(date)
	if !ok {
		return time.Time{}, false
	}
	minutes, ok := MinutesOfDay(clock)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, bucharest), true
}

// StartOfDay truncates an instant to midnight in the canonical timezone.
func StartOfDay(t time.Time) time.Time {
	t = t.In(bucharest)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, bucharest)
}

// EndOfDay returns the last nanosecond of the instant's day in the canonical
// timezone.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
