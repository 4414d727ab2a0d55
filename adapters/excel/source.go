// Package excel reads .xlsx workbooks into raw sheets.
package excel

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"panelmap/domain/frame"
	"panelmap/internal"
	"panelmap/internal/errors"
	"panelmap/ports"
)

var _ ports.SheetSource = (*Source)(nil)

// Source implements ports.SheetSource over an open workbook.
type Source struct {
	filePath string
	file     *excelize.File
	logger   *internal.Logger
}

// OpenSource opens the workbook for reading. The caller owns Close.
func OpenSource(filePath string, logger *internal.Logger) (*Source, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, errors.ReadFailed(fmt.Sprintf("workbook not found: %s", filePath))
	}

	start := time.Now()
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, errors.WithCode(errors.CodeReadFailed, fmt.Errorf("failed to open workbook %s: %w", filePath, err))
	}
	logger.Debug("[SheetSource] workbook %s opened in %.2fms",
		filePath, float64(time.Since(start).Nanoseconds())/1e6)

	return &Source{filePath: filePath, file: f, logger: logger}, nil
}

// SheetNames lists the workbook's sheets in file order.
func (s *Source) SheetNames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.file.GetSheetList(), nil
}

// ReadSheet loads one sheet as raw string columns.
func (s *Source) ReadSheet(ctx context.Context, name string) (*frame.Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	readStart := time.Now()
	rows, err := s.file.GetRows(name)
	if err != nil {
		return nil, errors.WithCode(errors.CodeReadFailed, fmt.Errorf("failed to read sheet %s: %w", name, err))
	}
	sheet := sheetFromRows(name, rows)
	s.logger.Debug("[SheetSource] sheet %s read in %.2fms (%d rows, %d columns)",
		name, float64(time.Since(readStart).Nanoseconds())/1e6, sheet.RowCount(), sheet.ColumnCount())

	return sheet, nil
}

// ReadAll loads every sheet in file order.
func (s *Source) ReadAll(ctx context.Context) ([]*frame.Sheet, error) {
	names := s.file.GetSheetList()
	sheets := make([]*frame.Sheet, 0, len(names))
	for _, name := range names {
		sheet, err := s.ReadSheet(ctx, name)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

// Close releases the workbook file handle.
func (s *Source) Close() error {
	return s.file.Close()
}

// sheetFromRows converts raw spreadsheet rows into a column-oriented sheet.
// The first row is the header. Cells are trimmed, trailing blank rows and
// trailing unnamed columns are dropped, and columns with a blank header are
// skipped since nothing downstream could reference them. Interior blank
// cells stay: they become missing values for the quality filter to count.
func sheetFromRows(name string, rows [][]string) *frame.Sheet {
	for len(rows) > 0 && blankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return &frame.Sheet{Name: name}
	}

	headers := rows[0]
	width := len(headers)
	for width > 0 && strings.TrimSpace(headers[width-1]) == "" {
		width--
	}

	columns := make([]frame.RawColumn, 0, width)
	for j := 0; j < width; j++ {
		header := strings.TrimSpace(headers[j])
		if header == "" {
			continue
		}
		cells := make([]string, 0, len(rows)-1)
		for i := 1; i < len(rows); i++ {
			cell := ""
			if j < len(rows[i]) {
				cell = strings.TrimSpace(rows[i][j])
			}
			cells = append(cells, cell)
		}
		columns = append(columns, frame.RawColumn{Name: header, Cells: cells})
	}
	return &frame.Sheet{Name: name, Columns: columns}
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
