package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"justapengu.in/lapeda/pkg/laptable"
)

const practiceCSV = `Session,Stint,LapNumber,LapTime,TyreLife,Compound,TrackStatus
FP2,1,1,0 days 00:01:30.100000,1,SOFT,1
FP2,1,2,0 days 00:01:31.000000,2,SOFT,1
FP2,2,3,0 days 00:01:35.500000,1,MEDIUM,4
`

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(ioutil.Discard)

	return logger
}

func TestRunPrepare(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "fp2.csv")
	output := filepath.Join(dir, "features.csv")

	if err := ioutil.WriteFile(input, []byte(practiceCSV), 0644); err != nil {
		t.Fatal(err)
	}

	args := []string{"-c", filepath.Join(dir, "missing.yml"), "-i", input, "-o", output, "-delta-from-best", "2"}

	if err := runPrepare(quietLogger(), args); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(output)

	if err != nil {
		t.Fatal(err)
	}

	defer f.Close()

	table, err := laptable.ReadCSV(f)

	if err != nil {
		t.Fatal(err)
	}

	if table.Len() != 2 {
		t.Errorf("expected 2 laps, got %d", table.Len())
	}

	for _, column := range []string{laptable.ColumnLapTimeS, "stint_len", "compound_order", "is_race"} {
		if !table.Has(column) {
			t.Errorf("expected column %s", column)
		}
	}
}

func TestRunPrepareRequiresCutoff(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "fp2.csv")

	if err := ioutil.WriteFile(input, []byte(practiceCSV), 0644); err != nil {
		t.Fatal(err)
	}

	args := []string{"-c", filepath.Join(dir, "missing.yml"), "-i", input, "-o", filepath.Join(dir, "out.csv")}

	if err := runPrepare(quietLogger(), args); err == nil {
		t.Error("expected an error without a cutoff strategy")
	}
}

func TestWriteSummary(t *testing.T) {
	table, err := laptable.ReadCSV(strings.NewReader(practiceCSV))

	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder

	if err := writeSummary(&sb, table, laptable.ColumnCompound); err != nil {
		t.Fatal(err)
	}

	out := sb.String()

	for _, expected := range []string{"3 laps, 3 timed", "SOFT", "MEDIUM", "1:30.100", "1:35.500"} {
		if !strings.Contains(out, expected) {
			t.Errorf("expected %q in summary:\n%s", expected, out)
		}
	}
}

func TestConfigPathFromArgs(t *testing.T) {
	tests := map[string][]string{
		"./lapeda.yml": {"-i", "laps.csv"},
		"a.yml":        {"-i", "laps.csv", "-c", "a.yml"},
		"b.yml":        {"-c=b.yml"},
		"c.yml":        {"--c", "c.yml", "-verbose"},
	}

	for expected, args := range tests {
		if path := configPathFromArgs(args); path != expected {
			t.Errorf("%v: expected %s, got %s", args, expected, path)
		}
	}
}
