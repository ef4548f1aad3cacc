package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Companies"

// XLSXWriter streams rows into a spreadsheet artifact via the stream
// writer, so memory stays bounded regardless of result size.
type XLSXWriter struct {
	file *excelize.File
	sw   *excelize.StreamWriter
	path string
	row  int
}

// NewXLSXWriter opens a stream writer and emits the header row. The
// artifact is not written to disk until Close.
func NewXLSXWriter(path string, header []string) (*XLSXWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open stream writer: %w", err)
	}

	w := &XLSXWriter{file: f, sw: sw, path: path, row: 1}
	if err := w.setRow(header); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func (w *XLSXWriter) setRow(record []string) error {
	cells := make([]any, len(record))
	for i, v := range record {
		cells[i] = v
	}
	ref, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return fmt.Errorf("cell reference for row %d: %w", w.row, err)
	}
	if err := w.sw.SetRow(ref, cells); err != nil {
		return fmt.Errorf("write spreadsheet row %d: %w", w.row, err)
	}
	w.row++
	return nil
}

// WriteRow appends one record. Writing past the sheet row ceiling is an
// error; callers are expected to downgrade the format before that point.
func (w *XLSXWriter) WriteRow(record []string) error {
	if w.row > SheetRowCeiling {
		return fmt.Errorf("spreadsheet row ceiling %d exceeded", SheetRowCeiling)
	}
	return w.setRow(record)
}

// Close flushes the stream and saves the artifact to disk.
func (w *XLSXWriter) Close() error {
	if err := w.sw.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("flush spreadsheet: %w", err)
	}
	if err := w.file.SaveAs(w.path); err != nil {
		w.file.Close()
		return fmt.Errorf("save spreadsheet artifact: %w", err)
	}
	return w.file.Close()
}
