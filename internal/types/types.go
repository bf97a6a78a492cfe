package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Record is one data row of the input. Price and Category are kept as the
// text that was read; they are never parsed as numbers.
type Record struct {
	Name     string
	Price    string
	Category string
	// Line is the physical line the row starts on (1-based).
	Line int
	// Fields is the number of fields the row parsed to. Zero marks a blank line.
	Fields int
}

// IsBlankLine reports whether the row parsed to zero fields
func (r Record) IsBlankLine() bool {
	return r.Fields == 0
}

// Admissible reports whether the record carries a non-empty name
func (r Record) Admissible() bool {
	return strings.TrimSpace(r.Name) != ""
}

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatDOCX Format = "docx"
)

// Ext returns the file extension for the format, including the dot
func (f Format) Ext() string {
	return "." + string(f)
}

// ParseFormat accepts "xlsx", "docx" and their dotted forms
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "docx", "word":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("unsupported output format: %q", s)
	}
}

type Language string

const (
	LanguageFa Language = "fa"
	LanguageEn Language = "en"
)

// RTL reports whether documents in this language read right to left
func (l Language) RTL() bool {
	return l == LanguageFa
}

func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fa", "fa-ir", "persian", "farsi":
		return LanguageFa, nil
	case "en", "en-us", "english":
		return LanguageEn, nil
	default:
		return "", fmt.Errorf("unsupported language: %q", s)
	}
}

// PartialPolicy decides what happens to a row whose name is empty while its
// price is not.
type PartialPolicy int

const (
	PartialAsInvalid PartialPolicy = iota
	PartialAsBlank
)

func (p PartialPolicy) String() string {
	if p == PartialAsBlank {
		return "blank"
	}
	return "invalid"
}

func ParsePartialPolicy(s string) (PartialPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "invalid", "treat_partial_as_invalid":
		return PartialAsInvalid, nil
	case "blank", "treat_partial_as_blank":
		return PartialAsBlank, nil
	default:
		return PartialAsInvalid, fmt.Errorf("unknown partial policy: %q", s)
	}
}

type Stats struct {
	TotalRead int
	Blank     int
	Invalid   int
	Duplicate int
	Admitted  int
	// EmptyLines is the part of Blank made of rows that parsed to zero fields.
	EmptyLines int
	Columns    int
	Duration   time.Duration
}

// Skipped is the number of rows that did not reach the output
func (s Stats) Skipped() int {
	return s.Blank + s.Invalid + s.Duplicate
}

// StatLine is one labelled figure of a statistics report.
type StatLine struct {
	Label string
	Value string
}

// Lines returns the statistics as labelled, human formatted values
func (s Stats) Lines() []StatLine {
	return []StatLine{
		{"Total rows read", humanize.Comma(int64(s.TotalRead))},
		{"Empty rows skipped", humanize.Comma(int64(s.Blank))},
		{"Invalid rows skipped", humanize.Comma(int64(s.Invalid))},
		{"Duplicate products skipped", humanize.Comma(int64(s.Duplicate))},
		{"Unique products written", humanize.Comma(int64(s.Admitted))},
		{"Columns detected", fmt.Sprintf("%d", s.Columns)},
		{"Processing time", fmt.Sprintf("%.2fs", s.Duration.Seconds())},
	}
}

func (s Stats) String() string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	b.WriteString(rule + "\nCONVERSION STATISTICS\n" + rule + "\n")
	for _, l := range s.Lines() {
		fmt.Fprintf(&b, "%-31s%s\n", l.Label+":", l.Value)
	}
	b.WriteString(rule + "\n")
	return b.String()
}

type ConversionResult struct {
	InputFile  string
	OutputFile string
	LogFile    string
	Format     Format
	Stats      Stats
	FinishedAt time.Time
}

// FileData is a preview of an input file: its header and first data rows.
type FileData struct {
	Headers []string
	Rows    [][]string
}
