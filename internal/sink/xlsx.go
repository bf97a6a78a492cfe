package sink

import (
	"fmt"
	"strings"

	"github.com/nconklindev/pricesheet/internal/types"

	"github.com/xuri/excelize/v2"
)

// XLSX writes records to the first sheet of a workbook and a statistics
// table to a second sheet.
type XLSX struct {
	f       *excelize.File
	sheet   string
	opts    Options
	row     int
	maxRows int
}

func NewXLSX(opts Options) (*XLSX, error) {
	opts = opts.withDefaults()
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), opts.SheetName); err != nil {
		f.Close()
		return nil, err
	}

	x := &XLSX{f: f, sheet: opts.SheetName, opts: opts, row: 2, maxRows: excelize.TotalRows}
	if err := x.setupHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return x, nil
}

func (x *XLSX) setupHeader() error {
	labels := Labels(x.opts.Language, x.opts.Columns)
	if err := x.f.SetSheetRow(x.sheet, "A1", &labels); err != nil {
		return err
	}

	style, err := x.f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	lastCell, err := excelize.CoordinatesToCellName(x.opts.Columns, 1)
	if err != nil {
		return err
	}
	if err := x.f.SetCellStyle(x.sheet, "A1", lastCell, style); err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(x.opts.Columns)
	if err != nil {
		return err
	}
	if err := x.f.SetColWidth(x.sheet, "A", lastCol, x.opts.ColumnWidth); err != nil {
		return err
	}

	if x.opts.Language.RTL() {
		rtl := true
		if err := x.f.SetSheetView(x.sheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
			return err
		}
	}
	return nil
}

// Write appends rec below the previous row. Values are stored as text.
func (x *XLSX) Write(rec types.Record) error {
	if x.row > x.maxRows {
		return fmt.Errorf("%w: xlsx allows %d rows", ErrCapacityExceeded, x.maxRows)
	}
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return err
	}
	values := cells(rec, x.opts.Columns)
	if err := x.f.SetSheetRow(x.sheet, cell, &values); err != nil {
		return err
	}
	x.row++
	return nil
}

// Rows returns the number of data rows written, header excluded
func (x *XLSX) Rows() int {
	return x.row - 2
}

func (x *XLSX) Save(path string, stats types.Stats) error {
	if err := x.writeSummary(stats); err != nil {
		return err
	}
	return x.f.SaveAs(path)
}

// summarySheet names the statistics sheet. Sheet names compare without case,
// so a products sheet already holding the label gets a numbered variant.
func (x *XLSX) summarySheet() string {
	base := textFor(x.opts.Language).summary
	name := base
	for n := 2; strings.EqualFold(name, x.sheet); n++ {
		name = fmt.Sprintf("%s (%d)", base, n)
	}
	return name
}

func (x *XLSX) writeSummary(stats types.Stats) error {
	name := x.summarySheet()
	if _, err := x.f.NewSheet(name); err != nil {
		return err
	}
	for i, line := range statLines(x.opts.Language, stats) {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		values := []string{line.Label, line.Value}
		if err := x.f.SetSheetRow(name, cell, &values); err != nil {
			return err
		}
	}
	if err := x.f.SetColWidth(name, "A", "B", x.opts.ColumnWidth); err != nil {
		return err
	}
	if x.opts.Language.RTL() {
		rtl := true
		if err := x.f.SetSheetView(name, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
			return err
		}
	}
	return nil
}

func (x *XLSX) Close() error {
	return x.f.Close()
}
