package export

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"justapengu.in/lapeda/pkg/laptable"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

const SheetName = "laps"

var ErrUnknownFormat = errors.New("export: unknown output format")

// FormatFor resolves an explicit format name, falling back to the extension of path.
func FormatFor(name, path string) (Format, error) {
	if name == "" {
		name = strings.TrimPrefix(filepath.Ext(path), ".")
	}

	if name == "" {
		return FormatCSV, nil
	}

	switch f := Format(strings.ToLower(name)); f {
	case FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	default:
		return "", pkgerrors.Wrap(ErrUnknownFormat, name)
	}
}

func Write(w io.Writer, format Format, table *laptable.Table) error {
	switch format {
	case FormatCSV:
		return laptable.WriteCSV(w, table)
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "\t")

		return encoder.Encode(table)
	case FormatXLSX:
		f, err := Workbook(table)

		if err != nil {
			return err
		}

		defer f.Close()

		return f.Write(w)
	default:
		return pkgerrors.Wrap(ErrUnknownFormat, string(format))
	}
}

// WriteFile writes table to path, or to stdout when path is "" or "-".
func WriteFile(path string, format Format, table *laptable.Table) error {
	if path == "" || path == "-" {
		return Write(os.Stdout, format, table)
	}

	f, err := os.Create(path)

	if err != nil {
		return err
	}

	defer f.Close()

	if err := Write(f, format, table); err != nil {
		return err
	}

	return f.Close()
}

// Workbook lays the table out on a single sheet with a header row.
func Workbook(table *laptable.Table) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	for col, column := range table.Columns() {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)

		if err != nil {
			return nil, err
		}

		if err := f.SetCellValue(SheetName, cell, column); err != nil {
			return nil, err
		}

		for row := 0; row < table.Len(); row++ {
			value := table.Value(row, column).Interface()

			if value == nil {
				continue
			}

			cell, err := excelize.CoordinatesToCellName(col+1, row+2)

			if err != nil {
				return nil, err
			}

			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}
