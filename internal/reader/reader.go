// Package reader turns comma separated product rows into Records, one at a
// time. The first row is always treated as a header and skipped.
package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nconklindev/pricesheet/internal/types"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrDecode wraps any failure to decode the input as UTF-8.
var ErrDecode = errors.New("decode input")

const (
	colName = iota
	colPrice
	colCategory
)

// Reader is a single forward cursor over the data rows of a CSV source.
type Reader struct {
	csv     *csv.Reader
	counter *lineCounter

	header  []string
	started bool

	// lastLine is the physical line the previous row ended on.
	lastLine int
	// pending blank lines to hand out before buffered.
	pending     int
	pendingLine int
	buffered    *row

	emptyLines int
	done       bool
	err        error
}

type row struct {
	fields []string
	line   int
}

// New wraps r and consumes its first row as the header. An empty source is
// not an error: Header returns nil and Next returns io.EOF.
func New(r io.Reader) (*Reader, error) {
	decoded := transform.NewReader(r, transform.Chain(encoding.UTF8Validator, unicode.UTF8BOM.NewDecoder()))
	counter := &lineCounter{r: decoded}

	cr := csv.NewReader(counter)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rd := &Reader{csv: cr, counter: counter}

	first, err := rd.nextRow()
	switch {
	case err == io.EOF:
		rd.started = true
		return rd, nil
	case err != nil:
		return nil, err
	}
	rd.header = first.fields
	rd.started = true
	return rd, nil
}

// Header returns the skipped first row. A blank first line yields nil.
func (r *Reader) Header() []string {
	return r.header
}

// Next returns the next data row. It returns io.EOF once the source is
// exhausted; the reader cannot be rewound.
func (r *Reader) Next() (types.Record, error) {
	rw, err := r.nextRow()
	if err != nil {
		return types.Record{}, err
	}
	if len(rw.fields) == 0 {
		r.emptyLines++
	}
	return toRecord(rw), nil
}

// EmptyLines reports how many data rows so far parsed to zero fields
func (r *Reader) EmptyLines() int {
	return r.emptyLines
}

// Offset reports how many decoded bytes the parser has consumed
func (r *Reader) Offset() int64 {
	return r.csv.InputOffset()
}

// nextRow yields physical rows, blank lines included. encoding/csv drops
// empty lines silently, so they are recovered from the gaps between the
// line numbers of consecutive records and from the total line count at EOF.
func (r *Reader) nextRow() (row, error) {
	if r.pending > 0 {
		r.pending--
		line := r.pendingLine
		r.pendingLine++
		return row{line: line}, nil
	}
	if r.buffered != nil {
		rw := *r.buffered
		r.buffered = nil
		return rw, nil
	}
	if r.err != nil {
		return row{}, r.err
	}
	if r.done {
		return row{}, io.EOF
	}

	fields, err := r.csv.Read()
	if err == io.EOF {
		r.done = true
		if trailing := r.counter.lines() - r.lastLine; trailing > 0 {
			r.pending = trailing
			r.pendingLine = r.lastLine + 1
		}
		return r.nextRow()
	}
	if err != nil {
		if errors.Is(err, encoding.ErrInvalidUTF8) {
			r.err = fmt.Errorf("%w: %w", ErrDecode, err)
		} else {
			r.err = fmt.Errorf("read csv row: %w", err)
		}
		return row{}, r.err
	}

	start, _ := r.csv.FieldPos(0)
	lastField := len(fields) - 1
	endLine, _ := r.csv.FieldPos(lastField)
	endLine += strings.Count(fields[lastField], "\n")

	rw := row{fields: fields, line: start}
	gap := start - r.lastLine - 1
	r.lastLine = endLine
	if gap > 0 {
		r.pending = gap
		r.pendingLine = start - gap
		r.buffered = &rw
		return r.nextRow()
	}
	return rw, nil
}

func toRecord(rw row) types.Record {
	rec := types.Record{Line: rw.line, Fields: len(rw.fields)}
	if len(rw.fields) > colName {
		rec.Name = rw.fields[colName]
	}
	if len(rw.fields) > colPrice {
		rec.Price = rw.fields[colPrice]
	}
	if len(rw.fields) > colCategory {
		rec.Category = rw.fields[colCategory]
	}
	return rec
}

// DetectColumns decides how many output columns to write from the first row
// of the file: the number of non-blank cells, never less than 2. It looks at
// that row only and does not attempt to infer types.
func DetectColumns(first []string) int {
	count := 0
	for _, cell := range first {
		if strings.TrimSpace(cell) != "" {
			count++
		}
	}
	if count < 2 {
		return 2
	}
	return count
}

// lineCounter counts the physical lines of everything read through it.
type lineCounter struct {
	r        io.Reader
	newlines int
	last     byte
	seen     bool
}

func (c *lineCounter) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		for _, b := range p[:n] {
			if b == '\n' {
				c.newlines++
			}
		}
		c.last = p[n-1]
		c.seen = true
	}
	return n, err
}

func (c *lineCounter) lines() int {
	if c.seen && c.last != '\n' {
		return c.newlines + 1
	}
	return c.newlines
}
