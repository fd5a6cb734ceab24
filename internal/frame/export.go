package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{"device_id", "sample_t", "x", "y", "z", "sr", "device_t", "cloud_t"}

// WriteCSV writes the frame as CSV with a header row. NaN axis values
// render as empty cells.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, row := range f.Rows {
		rec := []string{
			row.DeviceID,
			formatFloat(row.SampleT),
			formatFloat(row.X),
			formatFloat(row.Y),
			formatFloat(row.Z),
			formatFloat(row.SR),
			formatFloat(row.DeviceT),
			formatFloat(row.CloudT),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the frame as a single-sheet xlsx workbook.
func (f *Frame) WriteXLSX(w io.Writer) error {
	x := excelize.NewFile()
	defer x.Close()

	const sheet = "records"
	x.SetSheetName("Sheet1", sheet)

	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := x.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range f.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name for row %d: %w", i, err)
		}
		values := []any{
			row.DeviceID,
			row.SampleT,
			cellValue(row.X),
			cellValue(row.Y),
			cellValue(row.Z),
			row.SR,
			row.DeviceT,
			row.CloudT,
		}
		if err := x.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	if err := x.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func cellValue(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
