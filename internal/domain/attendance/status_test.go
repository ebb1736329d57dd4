package attendance

import (
	"testing"
	"time"

	"hrms/internal/domain/shift"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 8, 24, hour, minute, 0, 0, time.UTC)
}

func TestClassify(t *testing.T) {
	sh := shift.Default()

	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"before start", at(8, 59), PunctualityBeforeTime},
		{"exactly start", at(9, 0), PunctualityOnTime},
		{"exactly late cutoff", at(9, 30), PunctualityOnTime},
		{"after cutoff", at(9, 31), PunctualityLate},
		{"midnight", at(0, 0), PunctualityBeforeTime},
		{"end of day", at(23, 59), PunctualityLate},
	}

	for _, tc := range cases {
		got, err := Classify(tc.at, sh)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: Classify = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestClassifyBadShiftTimes(t *testing.T) {
	sh := shift.Default()
	sh.StartTime = "nope"
	if _, err := Classify(at(9, 0), sh); err == nil {
		t.Fatal("expected error for malformed start time")
	}
}

func TestDayOf(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	ts := time.Date(2026, 8, 24, 23, 45, 0, 0, loc)

	day := DayOf(ts)
	if day.Hour() != 0 || day.Minute() != 0 || day.Day() != 24 {
		t.Fatalf("DayOf = %v, want midnight of the 24th", day)
	}
	if day.Location() != loc {
		t.Fatalf("DayOf changed location to %v", day.Location())
	}
}
