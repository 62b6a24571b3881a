package dateutil

import (
	"errors"
	"testing"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		input string
		want  Weekday
	}{
		{"Monday", Monday},
		{"monday", Monday},
		{"  FRIDAY ", Friday},
		{"sun", Sunday},
		{"Wed", Wednesday},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseWeekday(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ParseWeekday(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseWeekday("someday")
		if !errors.Is(err, ErrInvalidWeekday) {
			t.Errorf("got error %v, want %v", err, ErrInvalidWeekday)
		}
	})
}

func TestWeekdayNames(t *testing.T) {
	if Friday.String() != "Friday" {
		t.Errorf("got %q, want Friday", Friday.String())
	}
	if Sunday.ShortName() != "Sun" {
		t.Errorf("got %q, want Sun", Sunday.ShortName())
	}
	if Weekday(9).ShortName() != "" {
		t.Errorf("expected empty short name for invalid weekday")
	}
	if len(Weekdays()) != DaysPerWeek {
		t.Errorf("expected %d weekdays, got %d", DaysPerWeek, len(Weekdays()))
	}
}

func TestWeekdayText(t *testing.T) {
	text, err := Tuesday.MarshalText()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(text) != "Tuesday" {
		t.Errorf("got %q, want Tuesday", text)
	}

	var d Weekday
	if err := d.UnmarshalText([]byte("thu")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != Thursday {
		t.Errorf("got %v, want Thursday", d)
	}
}

func TestClockToMinutes(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"17:00", 1020, false},
		{"24:00", 1440, false},
		{"24:30", 0, true},
		{"9:30", 0, true},
		{"09-30", 0, true},
		{"09:61", 0, true},
		{"ab:cd", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ClockToMinutes(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidClockFormat) {
					t.Errorf("got error %v, want %v", err, ErrInvalidClockFormat)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ClockToMinutes(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestMinutesToClock(t *testing.T) {
	tests := []struct {
		input int
		want  string
	}{
		{0, "00:00"},
		{570, "09:30"},
		{1440, "24:00"},
		{-5, "00:00"},
		{2000, "24:00"},
	}

	for _, tc := range tests {
		if got := MinutesToClock(tc.input); got != tc.want {
			t.Errorf("MinutesToClock(%d) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
