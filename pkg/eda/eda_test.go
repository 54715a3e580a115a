package eda

import (
	"errors"
	"math"
	"testing"

	"justapengu.in/lapeda/pkg/laptable"
)

func edaTable() *laptable.Table {
	columns := []string{laptable.ColumnStint, laptable.ColumnCompound, laptable.ColumnTrackStatus, laptable.ColumnLapTimeS}

	return laptable.FromRecords(columns,
		laptable.Record{laptable.ColumnStint: laptable.Int(1), laptable.ColumnCompound: laptable.String("SOFT"), laptable.ColumnTrackStatus: laptable.String("1"), laptable.ColumnLapTimeS: laptable.Float(92)},
		laptable.Record{laptable.ColumnStint: laptable.Int(1), laptable.ColumnCompound: laptable.String("SOFT"), laptable.ColumnTrackStatus: laptable.String("4"), laptable.ColumnLapTimeS: laptable.Float(90)},
		laptable.Record{laptable.ColumnStint: laptable.Int(2), laptable.ColumnCompound: laptable.String("MEDIUM"), laptable.ColumnTrackStatus: laptable.String("1"), laptable.ColumnLapTimeS: laptable.Float(94)},
		laptable.Record{laptable.ColumnStint: laptable.Int(2), laptable.ColumnTrackStatus: laptable.String("12")},
	)
}

func TestSummarize(t *testing.T) {
	summaries, err := Summarize(edaTable(), laptable.ColumnStint)

	if err != nil {
		t.Fatal(err)
	}

	expected := []GroupSummary{
		{Key: "1", Laps: 2, Best: 90, Mean: 91, Worst: 92},
		{Key: "2", Laps: 1, Best: 94, Mean: 94, Worst: 94},
	}

	if len(summaries) != len(expected) {
		t.Fatalf("expected %d groups, got %d", len(expected), len(summaries))
	}

	for i := range expected {
		if summaries[i] != expected[i] {
			t.Errorf("group %d: expected %+v, got %+v", i, expected[i], summaries[i])
		}
	}

	if _, err := Summarize(edaTable(), "Driver"); !errors.Is(err, laptable.ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got: %v", err)
	}
}

func TestDescribe(t *testing.T) {
	d, err := Describe(edaTable())

	if err != nil {
		t.Fatal(err)
	}

	if d.Laps != 4 || d.Timed != 3 {
		t.Errorf("expected 4 laps with 3 timed, got %d and %d", d.Laps, d.Timed)
	}

	if d.Best != 90 || d.Worst != 94 || d.Median != 92 || d.Mean != 92 {
		t.Errorf("unexpected description: %+v", d)
	}

	if math.Abs(d.StdDev-2) > 1e-9 {
		t.Errorf("expected std dev 2, got %f", d.StdDev)
	}
}

func TestCategoryCodes(t *testing.T) {
	codes, order, err := CategoryCodes(edaTable(), laptable.ColumnTrackStatus)

	if err != nil {
		t.Fatal(err)
	}

	if len(order) != 3 || order[0] != "1" || order[1] != "4" || order[2] != "12" {
		t.Errorf("unexpected order: %v", order)
	}

	if codes["1"] != 0 || codes["4"] != 1 || codes["12"] != 2 {
		t.Errorf("unexpected codes: %v", codes)
	}
}
