package timeutil

import (
	"testing"
	"time"
)

func TestNormalize_AcceptedShapes(t *testing.T) {
	// 01/06/2024 in Bucharest, expressed every way the API accepts it
	want := "01/06/2024"
	local := time.Date(2024, 6, 1, 10, 0, 0, 0, Location())

	cases := []struct {
		name  string
		input interface{}
	}{
		{"time.Time", local},
		{"epoch millis", local.UnixMilli()},
		{"epoch millis float", float64(local.UnixMilli())},
		{"timestamp pair", Timestamp{Seconds: local.Unix()}},
		{"timestamp map", map[string]interface{}{"seconds": float64(local.Unix()), "nanoseconds": float64(0)}},
		{"legacy timestamp map", map[string]interface{}{"_seconds": float64(local.Unix()), "_nanoseconds": float64(0)}},
		{"iso string", local.UTC().Format(time.RFC3339)},
		{"slash date", "01/06/2024"},
		{"hyphen date", "2024-06-01"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Normalize(tc.input)
			if !ok {
				t.Fatalf("Normalize(%v) reported invalid", tc.input)
			}
			if got.Location().String() != Location().String() {
				t.Fatalf("expected %s location, got %s", Location(), got.Location())
			}
			if FormatDate(tc.input) != want {
				t.Fatalf("round-trip: expected %s, got %s", want, FormatDate(tc.input))
			}
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	for _, input := range []interface{}{nil, "", "not a date", "99/99/9999", map[string]interface{}{"foo": 1}} {
		if _, ok := Normalize(input); ok {
			t.Fatalf("Normalize(%v) should be invalid", input)
		}
		if got := FormatDate(input); got != "" {
			t.Fatalf("FormatDate(%v) should be empty, got %q", input, got)
		}
	}
}

func TestNormalize_ISOConvertsToBucharest(t *testing.T) {
	// 23:30 UTC on May 31 is already June 1 in Bucharest (UTC+3 in summer)
	got, ok := Normalize("2024-05-31T23:30:00Z")
	if !ok {
		t.Fatal("expected valid instant")
	}
	if FormatDate(got) != "01/06/2024" {
		t.Fatalf("expected 01/06/2024, got %s", FormatDate(got))
	}
}

func TestMinutesOfDay(t *testing.T) {
	cases := []struct {
		clock   string
		minutes int
		ok      bool
	}{
		{"00:00", 0, true},
		{"10:30", 630, true},
		{"9:30", 570, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"10:60", 0, false},
		{"abc", 0, false},
		{"10:30garbage", 0, false},
		{"1:2", 0, false},
		{"+1:30", 0, false},
		{"10:3a", 0, false},
		{"10:30:00", 0, false},
		{":30", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := MinutesOfDay(tc.clock)
		if ok != tc.ok || got != tc.minutes {
			t.Fatalf("MinutesOfDay(%q) = %d,%v; want %d,%v", tc.clock, got, ok, tc.minutes, tc.ok)
		}
	}
}

func TestClockFromMinutes(t *testing.T) {
	if got := ClockFromMinutes(630); got != "10:30" {
		t.Fatalf("expected 10:30, got %s", got)
	}
	if got := ClockFromMinutes(5); got != "00:05" {
		t.Fatalf("expected 00:05, got %s", got)
	}
}

func TestAt(t *testing.T) {
	instant, ok := At("01/06/2024", "10:30")
	if !ok {
		t.Fatal("expected valid instant")
	}
	if instant.Hour() != 10 || instant.Minute() != 30 {
		t.Fatalf("expected 10:30 local, got %02d:%02d", instant.Hour(), instant.Minute())
	}
	if instant.Location().String() != ZoneName {
		t.Fatalf("expected %s, got %s", ZoneName, instant.Location())
	}
	if _, ok := At("bad", "10:30"); ok {
		t.Fatal("expected invalid date to fail")
	}
	if _, ok := At("01/06/2024", "bad"); ok {
		t.Fatal("expected invalid clock to fail")
	}
}
