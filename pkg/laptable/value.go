package laptable

import (
	"math"
	"strconv"
	"time"
)

type Kind uint8

const (
	KindMissing Kind = iota
	KindString
	KindInt
	KindFloat
	KindDuration
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDuration:
		return "duration"
	default:
		return "missing"
	}
}

// Value is a single cell of a Table. The zero Value is missing.
type Value struct {
	kind Kind
	str  string
	num  int64
	flt  float64
}

func Missing() Value {
	return Value{}
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func Int(i int64) Value {
	return Value{kind: KindInt, num: i}
}

// Float returns a float Value. NaN is stored as missing.
func Float(f float64) Value {
	if math.IsNaN(f) {
		return Missing()
	}

	return Value{kind: KindFloat, flt: f}
}

func Duration(d time.Duration) Value {
	return Value{kind: KindDuration, num: int64(d)}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsMissing() bool {
	return v.kind == KindMissing
}

// Float64 returns the numeric value of ints and floats, and total seconds for durations.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.num), true
	case KindFloat:
		return v.flt, true
	case KindDuration:
		return time.Duration(v.num).Seconds(), true
	default:
		return 0, false
	}
}

func (v Value) Int64() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.num, true
	case KindFloat:
		if v.flt != math.Trunc(v.flt) {
			return 0, false
		}

		return int64(v.flt), true
	default:
		return 0, false
	}
}

func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}

	return v.str, true
}

func (v Value) Duration() (time.Duration, bool) {
	if v.kind != KindDuration {
		return 0, false
	}

	return time.Duration(v.num), true
}

// Equal reports exact equality, kind included. Two missing values are equal.
func (v Value) Equal(o Value) bool {
	return v == o
}

// String renders the value the way the CSV codec writes it. Missing renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.flt, 'f', -1, 64)
	case KindDuration:
		return FormatLapTime(time.Duration(v.num))
	default:
		return ""
	}
}

// Interface returns the value as a plain Go value, nil when missing.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindFloat:
		return v.flt
	case KindDuration:
		return FormatLapTime(time.Duration(v.num))
	default:
		return nil
	}
}
