package laptable

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var missingMarkers = map[string]bool{
	"":     true,
	"NaN":  true,
	"nan":  true,
	"NaT":  true,
	"None": true,
	"null": true,
}

// ReadCSV reads a lap table whose first row names the columns. Each column
// takes the narrowest kind all of its cells parse as: int, float, duration,
// then string.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()

	if err == io.EOF {
		return New(), nil
	} else if err != nil {
		return nil, errors.Wrap(err, "laptable: could not read csv header")
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	raw := make([][]string, len(header))

	for {
		record, err := reader.Read()

		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrap(err, "laptable: could not read csv record")
		}

		for i := range header {
			raw[i] = append(raw[i], record[i])
		}
	}

	t := New(header...)

	if len(t.columns) != len(header) {
		return nil, errors.New("laptable: csv header has duplicate columns")
	}

	for i, column := range header {
		values, err := parseColumn(raw[i])

		if err != nil {
			return nil, errors.Wrapf(err, "column %s", column)
		}

		t.data[i] = values
	}

	if len(header) > 0 {
		t.numRows = len(raw[0])
	}

	return t, nil
}

func parseColumn(cells []string) ([]Value, error) {
	kind := inferKind(cells)
	values := make([]Value, len(cells))

	for row, cell := range cells {
		cell = strings.TrimSpace(cell)

		if missingMarkers[cell] {
			continue
		}

		switch kind {
		case KindInt:
			i, _ := strconv.ParseInt(cell, 10, 64)
			values[row] = Int(i)
		case KindFloat:
			f, _ := strconv.ParseFloat(cell, 64)
			values[row] = Float(f)
		case KindDuration:
			d, err := ParseLapTime(cell)

			if err != nil {
				return nil, err
			}

			values[row] = Duration(d)
		default:
			values[row] = String(cell)
		}
	}

	return values, nil
}

func inferKind(cells []string) Kind {
	isInt, isFloat, isDuration := true, true, true
	seen := false

	for _, cell := range cells {
		cell = strings.TrimSpace(cell)

		if missingMarkers[cell] {
			continue
		}

		seen = true

		if isInt {
			if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				isInt = false
			}
		}

		if isFloat {
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				isFloat = false
			}
		}

		if isDuration {
			if _, err := ParseLapTime(cell); err != nil {
				isDuration = false
			}
		}
	}

	switch {
	case !seen:
		return KindMissing
	case isInt:
		return KindInt
	case isFloat:
		return KindFloat
	case isDuration:
		return KindDuration
	default:
		return KindString
	}
}

// WriteCSV writes the header row followed by one record per lap.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.columns); err != nil {
		return err
	}

	record := make([]string, len(t.columns))

	for row := 0; row < t.numRows; row++ {
		for i := range t.columns {
			record[i] = t.data[i][row].String()
		}

		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}
