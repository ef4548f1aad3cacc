// Package export writes search results to delimited-text or spreadsheet
// artifacts.
package export

// RowWriter is the common surface of the artifact writers. Rows arrive
// already projected and ordered; writers only serialize.
type RowWriter interface {
	// WriteRow appends one projected result row.
	WriteRow(record []string) error

	// Close flushes buffered rows and finalizes the artifact. Must be
	// called exactly once; the artifact is incomplete without it.
	Close() error
}

const (
	// SheetRowCeiling is the spreadsheet format's hard row limit,
	// header included. Results projected to exceed it are downgraded
	// to delimited text before any row is written.
	SheetRowCeiling = 1_048_576

	// SheetBatchSize is the number of rows fetched per page during
	// spreadsheet export, bounding peak memory.
	SheetBatchSize = 10_000
)
