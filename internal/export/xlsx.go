package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kailas-cloud/pagex/internal/domain/extraction"
)

// SheetName is the worksheet holding the flattened rows.
const SheetName = "pages"

var xlsxHeaders = []string{"Document", "Page", "Key", "Kind", "Field", "Value"}

// XLSX writes the flattened rows to a single worksheet.
type XLSX struct{}

// NewXLSX creates an XLSX writer.
func NewXLSX() *XLSX { return &XLSX{} }

func (x *XLSX) Write(w io.Writer, docs []*extraction.DocumentResult) error {
	rows, err := Flatten(docs)
	if err != nil {
		return fmt.Errorf("flatten: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// Rename the default sheet instead of adding a second one.
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("xlsx header: %w", err)
		}
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{r.Document, r.Page, r.Key, r.Kind, r.Field, r.Value}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 24) // document
	_ = f.SetColWidth(SheetName, "C", "C", 36) // key
	_ = f.SetColWidth(SheetName, "E", "E", 24) // field
	_ = f.SetColWidth(SheetName, "F", "F", 60) // value

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
