package core

import (
	"errors"
	"testing"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		minutes int
		ok      bool
	}{
		{"00:00", 0, true},
		{"08:30", 510, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"9:30", 0, false},
		{"09-30", 0, false},
		{"ab:cd", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.ok {
			if err != nil {
				t.Errorf("ParseClock(%q) unexpected error: %v", tc.in, err)
			} else if got != tc.minutes {
				t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.minutes)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidTimeFormat) {
			t.Errorf("ParseClock(%q) error = %v, want ErrInvalidTimeFormat", tc.in, err)
		}
	}
}

func TestWorkMinutes(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
		brk        int
		want       int
	}{
		{"regular day", "08:00", "16:00", 30, 450},
		{"no break", "09:00", "17:00", 0, 480},
		{"overnight", "22:00", "06:00", 0, 480},
		{"overnight with break", "23:00", "07:30", 45, 465},
		{"break exceeds span", "09:00", "09:10", 30, 0},
		{"zero span", "12:00", "12:00", 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := WorkMinutes(tc.start, tc.end, tc.brk)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("WorkMinutes(%q, %q, %d) = %d, want %d", tc.start, tc.end, tc.brk, got, tc.want)
			}
			if got < 0 {
				t.Errorf("WorkMinutes must never be negative, got %d", got)
			}
		})
	}

	if _, err := WorkMinutes("8am", "16:00", 0); !errors.Is(err, ErrInvalidTimeFormat) {
		t.Errorf("bad start time error = %v, want ErrInvalidTimeFormat", err)
	}
	if _, err := WorkMinutes("08:00", "4pm", 0); !errors.Is(err, ErrInvalidTimeFormat) {
		t.Errorf("bad end time error = %v, want ErrInvalidTimeFormat", err)
	}
}

func TestOvertimeMinutes(t *testing.T) {
	got, err := OvertimeMinutes("08:00", "16:00", 30, "08:00", "17:30", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 90 {
		t.Errorf("OvertimeMinutes = %d, want 90", got)
	}

	// Definitional round-trip: overtime equals actual minus planned.
	planned, _ := WorkMinutes("22:00", "06:00", 45)
	actual, _ := WorkMinutes("21:30", "06:00", 45)
	ot, err := OvertimeMinutes("22:00", "06:00", 45, "21:30", "06:00", 45)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ot != actual-planned {
		t.Errorf("OvertimeMinutes = %d, want %d", ot, actual-planned)
	}
}

func TestFormatSigned(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "+0:00 h"},
		{-15, "-0:15 h"},
		{150, "+2:30 h"},
		{-125, "-2:05 h"},
		{60, "+1:00 h"},
	}
	for _, tc := range cases {
		if got := FormatSigned(tc.minutes); got != tc.want {
			t.Errorf("FormatSigned(%d) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}

func TestFormatDecimal(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{150, "2.50 h"},
		{-15, "-0.25 h"},
		{0, "0.00 h"},
	}
	for _, tc := range cases {
		if got := FormatDecimal(tc.minutes); got != tc.want {
			t.Errorf("FormatDecimal(%d) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}
