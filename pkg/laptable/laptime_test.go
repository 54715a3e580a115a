package laptable

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

type parseLapTimeTest struct {
	name     string
	input    string
	expected time.Duration
	err      bool
}

func TestParseLapTime(t *testing.T) {
	tests := []parseLapTimeTest{
		{name: "timedelta", input: "0 days 00:01:31.456000", expected: time.Minute + 31456*time.Millisecond},
		{name: "minutes and seconds", input: "1:31.456", expected: time.Minute + 31456*time.Millisecond},
		{name: "hours", input: "1:01:31.5", expected: time.Hour + time.Minute + 31500*time.Millisecond},
		{name: "go duration", input: "1m31.456s", expected: time.Minute + 31456*time.Millisecond},
		{name: "garbage", input: "FP1", err: true},
		{name: "empty", input: "  ", err: true},
		{name: "too many parts", input: "1:2:3:4", err: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d, err := ParseLapTime(test.input)

			if test.err {
				if !errors.Is(err, ErrInvalidLapTime) {
					t.Errorf("expected ErrInvalidLapTime, got: %v", err)
				}

				return
			}

			if err != nil {
				t.Fatal(err)
			}

			if d != test.expected {
				t.Errorf("expected %s, got %s", test.expected, d)
			}
		})
	}
}

func TestFormatLapTime(t *testing.T) {
	if s := FormatLapTime(time.Minute + 31456*time.Millisecond); s != "1:31.456" {
		t.Errorf("unexpected format: %s", s)
	}

	if s := FormatLapTime(time.Hour + 2*time.Second); s != "1:00:02.000" {
		t.Errorf("unexpected format: %s", s)
	}
}

func TestWithLapTimeSeconds(t *testing.T) {
	t.Run("Derived from LapTime", func(t *testing.T) {
		in := FromRecords([]string{ColumnLapNumber, ColumnLapTime},
			Record{ColumnLapNumber: Int(1), ColumnLapTime: Duration(90*time.Second + 123456*time.Microsecond)},
			Record{ColumnLapNumber: Int(2)},
			Record{ColumnLapNumber: Int(3), ColumnLapTime: String("1:32.000")},
		)

		out, err := WithLapTimeSeconds(in)

		if err != nil {
			t.Fatal(err)
		}

		if in.Has(ColumnLapTimeS) {
			t.Error("input table was modified")
		}

		seconds, ok, err := LapTimeSeconds(out)

		if err != nil {
			t.Fatal(err)
		}

		if !ok[0] || math.Abs(seconds[0]-90.123456) > 1e-9 {
			t.Errorf("expected 90.123456, got %f", seconds[0])
		}

		if ok[1] {
			t.Error("expected missing lap time to stay missing")
		}

		if !ok[2] || seconds[2] != 92 {
			t.Errorf("expected 92, got %f", seconds[2])
		}
	})

	t.Run("Existing column is copied", func(t *testing.T) {
		in := FromRecords([]string{ColumnLapTimeS}, Record{ColumnLapTimeS: Float(90.1)})

		out, err := WithLapTimeSeconds(in)

		if err != nil {
			t.Fatal(err)
		}

		if out == in {
			t.Error("expected a new table")
		}

		_ = out.SetColumn(ColumnLapTimeS, []Value{Float(1)})

		if v, _ := in.Value(0, ColumnLapTimeS).Float64(); v != 90.1 {
			t.Errorf("input aliased by output, got %f", v)
		}
	})

	t.Run("No time columns", func(t *testing.T) {
		_, err := WithLapTimeSeconds(New(ColumnLapNumber))

		if !errors.Is(err, ErrMissingField) {
			t.Errorf("expected ErrMissingField, got: %v", err)
		}
	})

	t.Run("Unconvertible lap time", func(t *testing.T) {
		in := FromRecords([]string{ColumnLapTime}, Record{ColumnLapTime: String("slow")})

		_, err := WithLapTimeSeconds(in)

		if !errors.Is(err, ErrInvalidLapTime) || !strings.Contains(err.Error(), "row 0") {
			t.Errorf("expected ErrInvalidLapTime for row 0, got: %v", err)
		}
	})
}
