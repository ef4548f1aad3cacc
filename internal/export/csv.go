package export

import (
	"encoding/csv"
	"fmt"
	"os"
)

// CSVWriter streams rows to a delimited-text artifact, one row at a time.
type CSVWriter struct {
	f *os.File
	w *csv.Writer
}

// NewCSVWriter creates the artifact at path and writes the header row.
func NewCSVWriter(path string, header []string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv artifact: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	return &CSVWriter{f: f, w: w}, nil
}

// WriteRow appends one record.
func (c *CSVWriter) WriteRow(record []string) error {
	if err := c.w.Write(record); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	return nil
}

// Close flushes and closes the artifact.
func (c *CSVWriter) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.f.Close()
		return fmt.Errorf("flush csv artifact: %w", err)
	}
	return c.f.Close()
}
