package laptable

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var timedeltaRegexp = regexp.MustCompile(`^(-?\d+) days? (\d+):(\d{1,2}):(\d{1,2}(?:\.\d+)?)$`)

// ParseLapTime parses a lap time written as a timedelta ("0 days 00:01:31.456000"),
// a clock ("1:31.456" or "1:01:31.456") or a Go duration ("1m31.456s").
func ParseLapTime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return 0, errors.Wrap(ErrInvalidLapTime, "empty lap time")
	}

	if m := timedeltaRegexp.FindStringSubmatch(s); m != nil {
		days, _ := strconv.Atoi(m[1])

		clock, err := parseClock([]string{m[2], m[3], m[4]})

		if err != nil {
			return 0, errors.Wrap(err, s)
		}

		return time.Duration(days)*24*time.Hour + clock, nil
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")

		if len(parts) > 3 {
			return 0, errors.Wrap(ErrInvalidLapTime, s)
		}

		d, err := parseClock(parts)

		if err != nil {
			return 0, errors.Wrap(err, s)
		}

		return d, nil
	}

	d, err := time.ParseDuration(s)

	if err != nil {
		return 0, errors.Wrap(ErrInvalidLapTime, s)
	}

	return d, nil
}

// parseClock reads [[hours, ]minutes, ]seconds where seconds may be fractional.
func parseClock(parts []string) (time.Duration, error) {
	var d time.Duration

	units := []time.Duration{time.Hour, time.Minute}[3-len(parts):]

	for i, part := range parts[:len(parts)-1] {
		n, err := strconv.Atoi(part)

		if err != nil || n < 0 {
			return 0, ErrInvalidLapTime
		}

		d += time.Duration(n) * units[i]
	}

	seconds, err := strconv.ParseFloat(parts[len(parts)-1], 64)

	if err != nil || seconds < 0 {
		return 0, ErrInvalidLapTime
	}

	return d + time.Duration(seconds*float64(time.Second)+0.5), nil
}

// FormatLapTime renders d as m:ss.fff, or h:mm:ss.fff past the hour.
func FormatLapTime(d time.Duration) string {
	sign := ""

	if d < 0 {
		sign = "-"
		d = -d
	}

	d = d.Round(time.Millisecond)

	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	ms := (d % time.Second) / time.Millisecond

	if h > 0 {
		return fmt.Sprintf("%s%d:%02d:%02d.%03d", sign, h, m, s, ms)
	}

	return fmt.Sprintf("%s%d:%02d.%03d", sign, m, s, ms)
}

// WithLapTimeSeconds returns a copy of t guaranteed to carry a LapTime_s column.
// When the column is absent it is derived from LapTime, keeping sub-second precision.
func WithLapTimeSeconds(t *Table) (*Table, error) {
	if t.Has(ColumnLapTimeS) {
		return t.Clone(), nil
	}

	lapTimes, err := t.Column(ColumnLapTime)

	if err != nil {
		return nil, errors.Wrapf(ErrMissingField, "need %s or %s", ColumnLapTimeS, ColumnLapTime)
	}

	seconds := make([]Value, len(lapTimes))

	for row, lapTime := range lapTimes {
		switch lapTime.Kind() {
		case KindMissing:
			continue
		case KindDuration:
			d, _ := lapTime.Duration()
			seconds[row] = Float(d.Seconds())
		case KindString:
			s, _ := lapTime.Str()

			d, err := ParseLapTime(s)

			if err != nil {
				return nil, errors.Wrapf(err, "row %d", row)
			}

			seconds[row] = Float(d.Seconds())
		default:
			return nil, errors.Wrapf(ErrInvalidLapTime, "row %d: %s value %s", row, lapTime.Kind(), lapTime)
		}
	}

	return t.WithColumn(ColumnLapTimeS, seconds)
}

// LapTimeSeconds reads LapTime_s as floats. ok[i] is false where the lap time is missing.
func LapTimeSeconds(t *Table) (seconds []float64, ok []bool, err error) {
	values, err := t.Column(ColumnLapTimeS)

	if err != nil {
		return nil, nil, errors.Wrap(ErrMissingField, ColumnLapTimeS)
	}

	seconds = make([]float64, len(values))
	ok = make([]bool, len(values))

	for row, value := range values {
		if value.IsMissing() {
			continue
		}

		f, isNumeric := value.Float64()

		if !isNumeric {
			return nil, nil, errors.Wrapf(ErrInvalidLapTime, "row %d: %s value %s", row, value.Kind(), value)
		}

		seconds[row], ok[row] = f, true
	}

	return seconds, ok, nil
}
