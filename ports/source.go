package ports

import (
	"context"

	"panelmap/domain/frame"
)

// SheetSource provides read access to the input workbook. Implementations
// must return sheets in file order and must not mutate returned values.
type SheetSource interface {
	// SheetNames lists the workbook's sheets in file order.
	SheetNames(ctx context.Context) ([]string, error)

	// ReadSheet loads one sheet as raw string columns; cells are trimmed,
	// trailing blank rows and columns are dropped.
	ReadSheet(ctx context.Context, name string) (*frame.Sheet, error)

	// ReadAll loads every sheet in file order.
	ReadAll(ctx context.Context) ([]*frame.Sheet, error)

	// Close releases the underlying file handle.
	Close() error
}
