// Package sink writes admitted records to spreadsheet and word documents.
// Documents are built in memory and touch the disk only in Save.
package sink

import (
	"errors"
	"fmt"

	"github.com/nconklindev/pricesheet/internal/types"
)

// ErrCapacityExceeded is returned by Write when the target format has no room
// for another row.
var ErrCapacityExceeded = errors.New("sink capacity exceeded")

type Sink interface {
	Write(rec types.Record) error
	Save(path string, stats types.Stats) error
	Close() error
}

type Options struct {
	Columns  int
	Language types.Language
	// SourceName is shown in document metadata.
	SourceName string

	SheetName   string
	ColumnWidth float64
	Font        string
}

func (o Options) withDefaults() Options {
	if o.Columns < 2 {
		o.Columns = 2
	}
	if o.Language == "" {
		o.Language = types.LanguageFa
	}
	if o.SheetName == "" {
		o.SheetName = "Products"
	}
	if o.ColumnWidth <= 0 {
		o.ColumnWidth = 30
	}
	if o.Font == "" {
		o.Font = "B Nazanin"
	}
	return o
}

// New builds the sink for format
func New(format types.Format, opts Options) (Sink, error) {
	switch format {
	case types.FormatXLSX:
		return NewXLSX(opts)
	case types.FormatDOCX:
		return NewDOCX(opts), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %q", format)
	}
}

// cells lays rec out over columns. The category only appears when there is a
// third column and it is non-empty; anything past the category is dropped.
func cells(rec types.Record, columns int) []string {
	out := make([]string, columns)
	out[0] = rec.Name
	out[1] = rec.Price
	if columns >= 3 && rec.Category != "" {
		out[2] = rec.Category
	}
	return out
}
