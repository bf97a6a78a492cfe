package converter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nconklindev/pricesheet/internal/dedupe"
	"github.com/nconklindev/pricesheet/internal/logging"
	"github.com/nconklindev/pricesheet/internal/reader"
	"github.com/nconklindev/pricesheet/internal/sink"
	"github.com/nconklindev/pricesheet/internal/types"

	"github.com/charmbracelet/log"
)

// RowDetectionLimit is how many data rows Preview returns
const RowDetectionLimit = 10

const progressLogEvery = 1000

type Options struct {
	Format        types.Format
	Language      types.Language
	PartialPolicy types.PartialPolicy
	// KeepDuplicates writes rows whose product name was already admitted.
	// The zero value drops them.
	KeepDuplicates bool

	// OutputFile overrides the default of the input path with a new extension.
	OutputFile string

	SheetName   string
	ColumnWidth float64
	Font        string

	Logger   *log.Logger
	Progress chan<- float64
	// NewSink builds the output document. Defaults to sink.New.
	NewSink func(types.Format, sink.Options) (sink.Sink, error)
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return logging.Discard()
	}
	return o.Logger
}

func (o Options) sinkOptions(columns int, source string) sink.Options {
	return sink.Options{
		Columns:     columns,
		Language:    o.Language,
		SourceName:  source,
		SheetName:   o.SheetName,
		ColumnWidth: o.ColumnWidth,
		Font:        o.Font,
	}
}

// ConvertFile validates inputFile, converts it and saves the result. Nothing
// is written when any step fails.
func ConvertFile(inputFile string, opts Options) (*types.ConversionResult, error) {
	logger := opts.logger()

	if err := ValidateInputPath(inputFile); err != nil {
		return nil, err
	}
	if opts.Format == "" {
		opts.Format = types.FormatXLSX
	}
	outputFile := opts.OutputFile
	if outputFile == "" {
		outputFile = OutputPath(inputFile, opts.Format)
	}

	logger.Info("Starting conversion", "input", inputFile, "output", outputFile, "format", opts.Format)

	inFile, err := os.Open(inputFile)
	if err != nil {
		return nil, err
	}
	defer inFile.Close()

	var size int64
	if info, err := inFile.Stat(); err == nil {
		size = info.Size()
	}

	out, stats, err := Process(inFile, size, filepath.Base(inputFile), opts)
	if err != nil {
		logger.Error("Conversion failed", "err", err)
		return nil, err
	}
	defer out.Close()

	logger.Info("Saving output", "path", outputFile)
	if err := out.Save(outputFile, stats); err != nil {
		logger.Error("Saving output failed", "err", err)
		return nil, fmt.Errorf("save %s: %w", outputFile, err)
	}
	logger.Info("Conversion completed successfully",
		"read", stats.TotalRead, "blank", stats.Blank, "invalid", stats.Invalid,
		"duplicate", stats.Duplicate, "written", stats.Admitted, "elapsed", stats.Duration)

	return &types.ConversionResult{
		InputFile:  inputFile,
		OutputFile: outputFile,
		Format:     opts.Format,
		Stats:      stats,
		FinishedAt: time.Now(),
	}, nil
}

// Process reads src, filters its rows and writes the admitted ones to a new
// sink, which is returned unsaved. size is the byte length of src and is only
// used for progress; pass 0 when unknown. On error the sink is already closed.
func Process(src io.Reader, size int64, sourceName string, opts Options) (sink.Sink, types.Stats, error) {
	start := time.Now()
	logger := opts.logger()
	newSink := opts.NewSink
	if newSink == nil {
		newSink = sink.New
	}
	if opts.Format == "" {
		opts.Format = types.FormatXLSX
	}

	rd, err := reader.New(src)
	if err != nil {
		return nil, types.Stats{}, err
	}
	columns := reader.DetectColumns(rd.Header())
	logger.Info("Detected columns", "count", columns)

	out, err := newSink(opts.Format, opts.sinkOptions(columns, sourceName))
	if err != nil {
		return nil, types.Stats{}, err
	}

	filter := dedupe.New(dedupe.WithPolicy(opts.PartialPolicy), dedupe.WithDedupe(!opts.KeepDuplicates))
	if err := run(rd, filter, out, size, opts.Progress, logger); err != nil {
		out.Close()
		return nil, types.Stats{}, err
	}

	c := filter.Counts()
	stats := types.Stats{
		TotalRead:  c.Total,
		Blank:      c.Blank,
		Invalid:    c.Invalid,
		Duplicate:  c.Duplicate,
		Admitted:   c.Admitted,
		EmptyLines: rd.EmptyLines(),
		Columns:    columns,
		Duration:   time.Since(start),
	}
	reportProgress(opts.Progress, 1)
	return out, stats, nil
}

func run(rd *reader.Reader, filter *dedupe.Filter, out sink.Sink, size int64, progress chan<- float64, logger *log.Logger) error {
	for {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch filter.Check(rec) {
		case dedupe.Blank:
			logger.Debug("Skipped empty row", "line", rec.Line)
		case dedupe.Invalid:
			logger.Warn("Skipped invalid row: empty product name", "line", rec.Line)
		case dedupe.Duplicate:
			logger.Debug("Skipped duplicate product", "line", rec.Line, "name", rec.Name)
		case dedupe.Admitted:
			if err := out.Write(rec); err != nil {
				logger.Warn("Output rejected row", "line", rec.Line, "err", err)
				return err
			}
		}

		total := filter.Counts().Total
		if total%progressLogEvery == 0 {
			logger.Info("Processed rows", "count", total)
		}
		if size > 0 {
			reportProgress(progress, float64(rd.Offset())/float64(size))
		}
	}
}

func reportProgress(progressChan chan<- float64, p float64) {
	if progressChan == nil {
		return
	}
	if p > 1 {
		p = 1
	}
	select {
	case progressChan <- p:
	default:
	}
}

// Preview reads the header and the first RowDetectionLimit data rows of a
// CSV file. Blank lines are left out.
func Preview(filePath string) (*types.FileData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rd, err := reader.New(file)
	if err != nil {
		return nil, err
	}

	data := &types.FileData{Headers: rd.Header()}
	for len(data.Rows) < RowDetectionLimit {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if rec.IsBlankLine() {
			continue
		}
		data.Rows = append(data.Rows, []string{rec.Name, rec.Price, rec.Category})
	}
	return data, nil
}
