package sink

import (
	"fmt"
	"time"

	"github.com/nconklindev/pricesheet/internal/types"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/gomutex/godocx/wml/ctypes"
	"github.com/gomutex/godocx/wml/stypes"
)

const (
	headerFill  = "0070C0"
	zebraFill   = "E7E6E6"
	titleColor  = "003366"
	metaColor   = "646464"
	footColor   = "323232"
	borderColor = "8EAADB"

	// A4 in twentieths of a point
	pageWidth  = 11906
	pageHeight = 16838
	pageMargin = 1440
	textWidth  = pageWidth - 2*pageMargin
)

// DOCX collects records and lays them out as a Word table on Save.
type DOCX struct {
	opts Options
	rows [][]string
	now  func() time.Time
}

func NewDOCX(opts Options) *DOCX {
	return &DOCX{opts: opts.withDefaults(), now: time.Now}
}

func (d *DOCX) Write(rec types.Record) error {
	d.rows = append(d.rows, cells(rec, d.opts.Columns))
	return nil
}

// Rows returns the number of data rows collected
func (d *DOCX) Rows() int {
	return len(d.rows)
}

func (d *DOCX) Close() error {
	d.rows = nil
	return nil
}

func (d *DOCX) Save(path string, stats types.Stats) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("new document: %w", err)
	}
	defer doc.Close()

	t := textFor(d.opts.Language)

	title := d.paragraph(doc.AddEmptyParagraph(), d.align())
	d.addRun(title, t.title, runFormat{size: 18, bold: true, color: titleColor})

	meta := d.paragraph(doc.AddEmptyParagraph(), d.align())
	d.addRun(meta, fmt.Sprintf("%s: %s", t.createdAt, d.now().Format("2006-01-02 15:04:05")), runFormat{size: 10, color: metaColor, breakAfter: true})
	d.addRun(meta, fmt.Sprintf("%s: %s", t.sourceFile, d.opts.SourceName), runFormat{size: 10, color: metaColor})

	d.paragraph(doc.AddEmptyParagraph(), "")
	d.table(doc)
	d.paragraph(doc.AddEmptyParagraph(), "")

	foot := d.paragraph(doc.AddEmptyParagraph(), d.align())
	d.addRun(foot, t.statsTitle+":", runFormat{size: 10, bold: true, color: footColor, breakAfter: true})
	for _, l := range statLines(d.opts.Language, stats) {
		d.addRun(foot, fmt.Sprintf("• %s: %s", l.Label, l.Value), runFormat{size: 10, color: footColor, breakAfter: true})
	}

	if sect := doc.Document.Body.SectPr; sect != nil {
		w, h := uint64(pageWidth), uint64(pageHeight)
		sect.PageSize = &ctypes.PageSize{Width: &w, Height: &h}
		if m := sect.PageMargin; m != nil {
			side := pageMargin
			m.Left, m.Right = &side, &side
		}
	}

	return doc.SaveTo(path)
}

func (d *DOCX) table(doc *docx.RootDoc) {
	tbl := doc.AddTable()
	tbl.Width(5000, stypes.TableWidthPct)

	widths := make([]uint64, d.opts.Columns)
	for i := range widths {
		widths[i] = uint64(textWidth / d.opts.Columns)
	}
	tbl.Grid(widths...)

	props := &tbl.GetCT().TableProp
	if d.opts.Language.RTL() {
		props.BidiVisual = &ctypes.OnOff{}
	}
	props.Borders = &ctypes.TableBorders{
		Top:     border(),
		Left:    border(),
		Bottom:  border(),
		Right:   border(),
		InsideH: border(),
		InsideV: border(),
	}

	header := tbl.AddRow()
	for _, label := range Labels(d.opts.Language, d.opts.Columns) {
		cell := header.AddCell().BackgroundColor(headerFill).VerticalAlign("center")
		p := d.paragraph(cell.AddEmptyPara(), stypes.JustificationCenter)
		d.addRun(p, label, runFormat{size: 12, bold: true, color: "FFFFFF"})
	}

	for i, row := range d.rows {
		tr := tbl.AddRow()
		for _, value := range row {
			cell := tr.AddCell()
			if (i+1)%2 == 0 {
				cell.BackgroundColor(zebraFill)
			}
			p := d.paragraph(cell.AddEmptyPara(), d.align())
			d.addRun(p, value, runFormat{size: 11})
		}
	}
}

func border() *ctypes.Border {
	color, space, size := borderColor, "0", 4
	return &ctypes.Border{Val: stypes.BorderStyleSingle, Color: &color, Space: &space, Size: &size}
}

type runFormat struct {
	size       uint64
	bold       bool
	color      string
	breakAfter bool
}

// paragraph sets the reading direction and, when given, the alignment of p.
func (d *DOCX) paragraph(p *docx.Paragraph, align stypes.Justification) *docx.Paragraph {
	if align != "" {
		p.Justification(align)
	}
	if d.opts.Language.RTL() {
		ct := p.GetCT()
		if ct.Property == nil {
			ct.Property = ctypes.DefaultParaProperty()
		}
		ct.Property.Bidi = &ctypes.OnOff{}
	}
	return p
}

// addRun appends text to p in the document font. Complex script size, weight
// and font are set alongside the Latin ones so Persian text renders the same.
func (d *DOCX) addRun(p *docx.Paragraph, text string, f runFormat) {
	r := p.AddText(text).Font(d.opts.Font).Size(f.size)
	if f.bold {
		r.Bold(true)
	}
	if f.color != "" {
		r.Color(f.color)
	}
	if f.breakAfter {
		r.AddBreak(nil)
	}

	children := p.GetCT().Children
	prop := children[len(children)-1].Run.Property
	prop.Fonts.CS = d.opts.Font
	prop.SizeCs = ctypes.NewFontSizeCS(f.size * 2)
	if f.bold {
		prop.BoldCS = ctypes.OnOffFromBool(true)
	}
	if d.opts.Language.RTL() {
		prop.RightToLeft = &ctypes.OnOff{}
	}
}

// align returns the paragraph alignment that follows the reading direction.
func (d *DOCX) align() stypes.Justification {
	if d.opts.Language.RTL() {
		return stypes.JustificationRight
	}
	return stypes.JustificationLeft
}
