package converter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nconklindev/pricesheet/internal/reader"
	"github.com/nconklindev/pricesheet/internal/sink"
	"github.com/nconklindev/pricesheet/internal/types"

	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"
)

// memSink keeps admitted records in memory.
type memSink struct {
	records   []types.Record
	failAfter int
	saved     bool
	closed    bool
}

func (m *memSink) Write(rec types.Record) error {
	if m.failAfter > 0 && len(m.records) >= m.failAfter {
		return fmt.Errorf("%w: test limit", sink.ErrCapacityExceeded)
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memSink) Save(path string, stats types.Stats) error {
	m.saved = true
	return os.WriteFile(path, []byte("saved"), 0o644)
}

func (m *memSink) Close() error {
	m.closed = true
	return nil
}

func memOptions(m *memSink) Options {
	return Options{
		NewSink: func(types.Format, sink.Options) (sink.Sink, error) {
			return m, nil
		},
	}
}

func writeCSV(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	// Excel exports carry a byte order mark
	if _, err := f.WriteString("\ufeff"); err != nil {
		t.Fatal(err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatal(err)
	}
}

func TestProcessScenarios(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		admitted  []types.Record
		stats     types.Stats
		partialAs types.PartialPolicy
	}{
		{
			name:  "Case and whitespace duplicate",
			input: "name,price\nApple,10\napple , 10\nBanana,\n",
			admitted: []types.Record{
				{Name: "Apple", Price: "10", Line: 2, Fields: 2},
				{Name: "Banana", Price: "", Line: 4, Fields: 2},
			},
			stats: types.Stats{TotalRead: 3, Duplicate: 1, Admitted: 2, Columns: 2},
		},
		{
			name:  "Blank and invalid",
			input: "name,price\n,\n,5\n",
			stats: types.Stats{TotalRead: 2, Blank: 1, Invalid: 1, Columns: 2},
		},
		{
			name:      "Partial folded into blank",
			input:     "name,price\n,\n,5\n",
			partialAs: types.PartialAsBlank,
			stats:     types.Stats{TotalRead: 2, Blank: 2, Columns: 2},
		},
		{
			name:  "Header only",
			input: "name,price\n",
			stats: types.Stats{Columns: 2},
		},
		{
			name:  "Empty lines are counted as blank",
			input: "name,price,category\nA,1,x\n\n\nB,2\n",
			admitted: []types.Record{
				{Name: "A", Price: "1", Category: "x", Line: 2, Fields: 3},
				{Name: "B", Price: "2", Line: 5, Fields: 2},
			},
			stats: types.Stats{TotalRead: 4, Blank: 2, EmptyLines: 2, Admitted: 2, Columns: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &memSink{}
			opts := memOptions(m)
			opts.PartialPolicy = tt.partialAs

			_, stats, err := Process(strings.NewReader(tt.input), 0, "in.csv", opts)
			if err != nil {
				t.Fatalf("Process failed: %v", err)
			}
			stats.Duration = 0
			if stats != tt.stats {
				t.Errorf("stats = %+v; want %+v", stats, tt.stats)
			}
			if stats.TotalRead != stats.Blank+stats.Invalid+stats.Duplicate+stats.Admitted {
				t.Errorf("counts do not partition total: %+v", stats)
			}
			if len(m.records) != len(tt.admitted) {
				t.Fatalf("admitted %+v; want %+v", m.records, tt.admitted)
			}
			for i := range m.records {
				if m.records[i] != tt.admitted[i] {
					t.Errorf("admitted[%d] = %+v; want %+v", i, m.records[i], tt.admitted[i])
				}
			}
		})
	}
}

func TestProcessDuplicates(t *testing.T) {
	input := "h\nApple,10\napple ,10\n"
	tests := []struct {
		name      string
		keep      bool
		admitted  int
		duplicate int
	}{
		{"Zero value drops duplicates", false, 1, 1},
		{"Keep duplicates", true, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &memSink{}
			opts := Options{
				KeepDuplicates: tt.keep,
				NewSink: func(types.Format, sink.Options) (sink.Sink, error) {
					return m, nil
				},
			}
			_, stats, err := Process(strings.NewReader(input), 0, "in.csv", opts)
			if err != nil {
				t.Fatalf("Process failed: %v", err)
			}
			if stats.Admitted != tt.admitted || stats.Duplicate != tt.duplicate {
				t.Errorf("Process() admitted = %d, duplicate = %d; want %d, %d",
					stats.Admitted, stats.Duplicate, tt.admitted, tt.duplicate)
			}
		})
	}
}

func TestProcessKeepsValuesVerbatim(t *testing.T) {
	m := &memSink{}
	input := "name,price,category\n Apple ,\" 1,250.00 \",  Fruit\n"
	if _, _, err := Process(strings.NewReader(input), 0, "in.csv", memOptions(m)); err != nil {
		t.Fatal(err)
	}
	if len(m.records) != 1 {
		t.Fatalf("admitted %d records; want 1", len(m.records))
	}
	got := m.records[0]
	if got.Name != " Apple " || got.Price != " 1,250.00 " || got.Category != "  Fruit" {
		t.Errorf("record = %+v; want values unchanged", got)
	}
}

func TestProcessReportsProgress(t *testing.T) {
	m := &memSink{}
	progress := make(chan float64, 100)
	opts := memOptions(m)
	opts.Progress = progress

	input := "name,price\nA,1\nB,2\nC,3\n"
	if _, _, err := Process(strings.NewReader(input), int64(len(input)), "in.csv", opts); err != nil {
		t.Fatal(err)
	}
	close(progress)

	var last float64
	count := 0
	for p := range progress {
		if p < last {
			t.Errorf("progress went backwards: %f after %f", p, last)
		}
		if p > 1 {
			t.Errorf("progress %f above 1", p)
		}
		last = p
		count++
	}
	if count == 0 || last != 1 {
		t.Errorf("got %d progress updates ending at %f; want final 1", count, last)
	}
}

func TestProcessLogsRowCount(t *testing.T) {
	var buf bytes.Buffer
	m := &memSink{}
	opts := memOptions(m)
	opts.Logger = log.New(&buf)

	var b strings.Builder
	b.WriteString("name,price\n")
	for i := 0; i < progressLogEvery; i++ {
		fmt.Fprintf(&b, "P%d,%d\n", i, i)
	}
	if _, _, err := Process(strings.NewReader(b.String()), 0, "in.csv", opts); err != nil {
		t.Fatal(err)
	}

	want := fmt.Sprintf("Processed rows count=%d", progressLogEvery)
	if !strings.Contains(buf.String(), want) {
		t.Errorf("log = %q; want %q", buf.String(), want)
	}
}

func TestProcessSinkFailureClosesSink(t *testing.T) {
	m := &memSink{failAfter: 1}
	_, _, err := Process(strings.NewReader("h\nA,1\nB,2\n"), 0, "in.csv", memOptions(m))
	if !errors.Is(err, sink.ErrCapacityExceeded) {
		t.Fatalf("error = %v; want ErrCapacityExceeded", err)
	}
	if !m.closed || m.saved {
		t.Errorf("closed=%v saved=%v; want closed and not saved", m.closed, m.saved)
	}
}

func TestConvertFileXLSX(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "test_sample.csv")

	writeCSV(t, inputFile, [][]string{
		{"نام محصول", "قیمت", "دسته‌بندی"},
		{"آیفون 14", "50000000", "موبایل"},
		{"سامسونگ گلکسی", "30000000", "موبایل"},
		{"  آیفون 14  ", "51000000", "موبایل"},
		{"آیپد پرو", "40000000", "تبلت"},
		{"IPHONE 14", "52000000", "موبایل"},
		{"لپتاپ HP Laptop", "25000000", "کامپیوتر"},
		{"", "", ""},
		{"ماوس Gaming Mouse", "500000", "لوازم جانبی"},
		{"لپتاپ hp laptop", "26000000", "کامپیوتر"},
	})

	res, err := ConvertFile(inputFile, Options{Format: types.FormatXLSX, Language: types.LanguageFa})
	if err != nil {
		t.Fatalf("ConvertFile failed: %v", err)
	}

	wantOut := filepath.Join(tmpDir, "test_sample.xlsx")
	if res.OutputFile != wantOut {
		t.Errorf("OutputFile = %s; want %s", res.OutputFile, wantOut)
	}
	st := res.Stats
	if st.TotalRead != 9 || st.Blank != 1 || st.Invalid != 0 || st.Duplicate != 2 || st.Admitted != 6 || st.Columns != 3 {
		t.Errorf("stats = %+v", st)
	}

	f, err := excelize.OpenFile(res.OutputFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows("Products")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 7 {
		t.Fatalf("Expected 7 rows, got %d", len(rows))
	}
	wantNames := []string{"نام محصول", "آیفون 14", "سامسونگ گلکسی", "آیپد پرو", "IPHONE 14", "لپتاپ HP Laptop", "ماوس Gaming Mouse"}
	for i, name := range wantNames {
		if rows[i][0] != name {
			t.Errorf("row %d name = %q; want %q", i, rows[i][0], name)
		}
	}
	if rows[1][1] != "50000000" {
		t.Errorf("first price = %q; want the first occurrence's price", rows[1][1])
	}
}

func TestConvertFileHeaderOnly(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "empty.csv")
	writeCSV(t, inputFile, [][]string{{"name", "price"}})

	res, err := ConvertFile(inputFile, Options{Format: types.FormatXLSX, Language: types.LanguageEn})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.TotalRead != 0 || res.Stats.Admitted != 0 {
		t.Errorf("stats = %+v; want zero counts", res.Stats)
	}

	f, err := excelize.OpenFile(res.OutputFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, _ := f.GetRows("Products")
	if len(rows) != 1 || rows[0][0] != "Product Name" {
		t.Errorf("rows = %q; want header only", rows)
	}
}

func TestConvertFileLargeKeepsOrder(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "large.csv")

	rows := [][]string{{"name", "price"}}
	for i := 0; i < 1200; i++ {
		rows = append(rows, []string{fmt.Sprintf("Product %04d", i), fmt.Sprint(i * 10)})
	}
	writeCSV(t, inputFile, rows)

	res, err := ConvertFile(inputFile, Options{Format: types.FormatXLSX})
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Admitted != 1200 || res.Stats.Duplicate != 0 || res.Stats.TotalRead != 1200 {
		t.Errorf("stats = %+v", res.Stats)
	}

	f, err := excelize.OpenFile(res.OutputFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, _ := f.GetRows("Products")
	if len(got) != 1201 {
		t.Fatalf("Expected 1201 rows, got %d", len(got))
	}
	for i := 0; i < 1200; i++ {
		if got[i+1][0] != rows[i+1][0] || got[i+1][1] != rows[i+1][1] {
			t.Fatalf("row %d = %q; want %q", i+1, got[i+1], rows[i+1])
		}
	}
}

func TestConvertFileDOCX(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "prices.CSV")
	writeCSV(t, inputFile, [][]string{{"name", "price"}, {"Apple", "10"}})

	res, err := ConvertFile(inputFile, Options{Format: types.FormatDOCX})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Ext(res.OutputFile) != ".docx" {
		t.Errorf("OutputFile = %s; want .docx", res.OutputFile)
	}
	if _, err := os.Stat(res.OutputFile); err != nil {
		t.Error(err)
	}
}

func TestConvertFileDecodeErrorWritesNothing(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "broken.csv")
	if err := os.WriteFile(inputFile, []byte("name,price\nApple,10\nBad\xff,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ConvertFile(inputFile, Options{Format: types.FormatXLSX})
	if !errors.Is(err, reader.ErrDecode) {
		t.Fatalf("error = %v; want ErrDecode", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "broken.xlsx")); !os.IsNotExist(err) {
		t.Errorf("output exists after failed conversion: %v", err)
	}
}

func TestConvertFileCapacityWritesNothing(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "big.csv")
	writeCSV(t, inputFile, [][]string{{"name", "price"}, {"A", "1"}, {"B", "2"}, {"C", "3"}})

	m := &memSink{failAfter: 2}
	_, err := ConvertFile(inputFile, memOptions(m))
	if !errors.Is(err, sink.ErrCapacityExceeded) {
		t.Fatalf("error = %v; want ErrCapacityExceeded", err)
	}
	if m.saved {
		t.Error("sink saved after capacity error")
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "big.xlsx")); !os.IsNotExist(err) {
		t.Errorf("output exists after failed conversion: %v", err)
	}
}

func TestConvertFileCustomOutput(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "in.csv")
	writeCSV(t, inputFile, [][]string{{"name", "price"}, {"A", "1"}})

	out := filepath.Join(tmpDir, "custom.xlsx")
	res, err := ConvertFile(inputFile, Options{OutputFile: out})
	if err != nil {
		t.Fatal(err)
	}
	if res.OutputFile != out || res.Format != types.FormatXLSX {
		t.Errorf("result = %+v", res)
	}
}

func TestPreview(t *testing.T) {
	tmpDir := t.TempDir()
	inputFile := filepath.Join(tmpDir, "preview.csv")

	var b strings.Builder
	b.WriteString("name,price,category\n\n")
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&b, "P%d,%d\n", i, i)
	}
	if err := os.WriteFile(inputFile, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := Preview(inputFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Headers) != 3 {
		t.Errorf("Headers = %q", data.Headers)
	}
	if len(data.Rows) != RowDetectionLimit {
		t.Fatalf("got %d rows; want %d", len(data.Rows), RowDetectionLimit)
	}
	if data.Rows[0][0] != "P0" || data.Rows[0][2] != "" {
		t.Errorf("first row = %q", data.Rows[0])
	}
}
