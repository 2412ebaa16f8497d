package datefmt

import (
	"errors"
	"testing"
	"time"
)

func TestParseDateTime_ValidInputs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  EventDateTime
	}{
		{
			name:  "秒付きの日時",
			input: "2024-01-15T19:05:00",
			want:  EventDateTime{Year: 2024, Month: 1, Day: 15, Hour: 19, Minute: 5, HasTime: true},
		},
		{
			name:  "秒なしの日時",
			input: "2024-11-25T12:00",
			want:  EventDateTime{Year: 2024, Month: 11, Day: 25, Hour: 12, Minute: 0, HasTime: true},
		},
		{
			name:  "小数秒付き",
			input: "2024-11-25T23:59:59.123",
			want:  EventDateTime{Year: 2024, Month: 11, Day: 25, Hour: 23, Minute: 59, HasTime: true},
		},
		{
			name:  "日付のみ",
			input: "2024-02-29",
			want:  EventDateTime{Year: 2024, Month: 2, Day: 29},
		},
		{
			name:  "時刻部が空",
			input: "2024-03-01T",
			want:  EventDateTime{Year: 2024, Month: 3, Day: 1},
		},
		{
			name:  "ゼロ埋めなし",
			input: "2024-1-5T9:30:00",
			want:  EventDateTime{Year: 2024, Month: 1, Day: 5, Hour: 9, Minute: 30, HasTime: true},
		},
		{
			name:  "深夜0時",
			input: "2024-12-31T00:00:00",
			want:  EventDateTime{Year: 2024, Month: 12, Day: 31, Hour: 0, Minute: 0, HasTime: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateTime(tt.input)
			if err != nil {
				t.Fatalf("ParseDateTime(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDateTime(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDateTime_Unparseable(t *testing.T) {
	inputs := []string{
		"",
		"not-a-date",
		"T19:00:00",
		"2024-01",
		"2024-01-15-01",
		"0000-01-15T10:00:00",
		"2024-00-15T10:00:00",
		"2024-13-15T10:00:00",
		"2024-01-00T10:00:00",
		"2023-02-29T10:00:00",
		"2024-04-31",
		"2024-+1-15",
		"2024-01-15T24:00:00",
		"2024-01-15T10:60:00",
		"2024-01-15T10",
		"2024-01-15Tab:cd:00",
		"2024-01-15T10:00:00Z",
		"2024-01-15T10:00:00+04:00",
		"2024-01-15T10:00:00-05:00",
		"2024-01-15T10:00Z",
		" 2024-01-15",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got, err := ParseDateTime(input)
			if !errors.Is(err, ErrUnparseable) {
				t.Fatalf("ParseDateTime(%q) error = %v, want ErrUnparseable", input, err)
			}
			if got != (EventDateTime{}) {
				t.Errorf("ParseDateTime(%q) = %+v, want zero value", input, got)
			}
		})
	}
}

func TestParseDateTime_IndependentOfLocalTimezone(t *testing.T) {
	orig := time.Local
	t.Cleanup(func() { time.Local = orig })

	for _, zone := range []string{"UTC", "Asia/Tokyo", "America/Los_Angeles", "Pacific/Kiritimati"} {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			t.Skipf("timezone %s not available: %v", zone, err)
		}
		time.Local = loc

		got, err := ParseDateTime("2024-03-10T02:30:00")
		if err != nil {
			t.Fatalf("[%s] unexpected error: %v", zone, err)
		}
		if got.Year != 2024 || got.Month != 3 || got.Day != 10 || got.Hour != 2 || got.Minute != 30 {
			t.Errorf("[%s] fields = %+v, want 2024-03-10 02:30", zone, got)
		}
	}
}

func TestEventDateTime_DayKey(t *testing.T) {
	d, err := ParseDateTime("2024-1-5T09:00:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := d.DayKey(); got != "2024-01-05" {
		t.Errorf("DayKey() = %q, want %q", got, "2024-01-05")
	}
}

func TestEventDateTime_Weekday(t *testing.T) {
	d, _ := ParseDateTime("2024-01-15")
	if d.Weekday() != time.Monday {
		t.Errorf("Weekday() = %v, want Monday", d.Weekday())
	}
}

func TestEventDateTime_In(t *testing.T) {
	loc := time.FixedZone("AMT", 4*60*60)
	d, _ := ParseDateTime("2024-06-01T19:30:00")

	got := d.In(loc)
	want := time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("In() = %v, want %v", got, want)
	}
	if got.Hour() != 19 {
		t.Errorf("wall clock hour = %d, want 19", got.Hour())
	}
}
