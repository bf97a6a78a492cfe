// Package job runs one conversion the way both front ends need it: with a
// per-run log file and, when configured, an entry in the run history.
package job

import (
	"path/filepath"

	"github.com/nconklindev/pricesheet/internal/config"
	"github.com/nconklindev/pricesheet/internal/converter"
	"github.com/nconklindev/pricesheet/internal/history"
	"github.com/nconklindev/pricesheet/internal/logging"
	"github.com/nconklindev/pricesheet/internal/types"
)

type Request struct {
	InputFile  string
	OutputFile string
	Progress   chan<- float64
}

// Run validates the input, opens a log next to it (or in cfg.LogDir),
// converts and records the run. The log path is set on the result, and is
// also returned with any error that happens after the log was created.
func Run(cfg config.Config, req Request) (*types.ConversionResult, string, error) {
	if err := converter.ValidateInputPath(req.InputFile); err != nil {
		return nil, "", err
	}

	logDir := cfg.LogDir
	if logDir == "" {
		logDir = filepath.Dir(req.InputFile)
	}
	session, err := logging.Setup(logDir, cfg.Verbose)
	if err != nil {
		return nil, "", err
	}
	defer session.Close()
	session.Info("Log file created", "path", session.Path)

	res, err := converter.ConvertFile(req.InputFile, Options(cfg, req, session))
	if err != nil {
		return nil, session.Path, err
	}
	res.LogFile = session.Path

	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			session.Warn("Could not open run history", "path", cfg.HistoryDB, "err", err)
			return res, session.Path, nil
		}
		defer store.Close()
		if id, err := store.Record(res); err != nil {
			session.Warn("Could not record run", "err", err)
		} else {
			session.Debug("Recorded run", "id", id)
		}
	}
	return res, session.Path, nil
}

// Options maps configuration onto converter options
func Options(cfg config.Config, req Request, session *logging.Session) converter.Options {
	opts := converter.Options{
		Format:         cfg.Format,
		Language:       cfg.Language,
		PartialPolicy:  cfg.PartialPolicy,
		KeepDuplicates: !cfg.Dedupe,
		OutputFile:     req.OutputFile,
		SheetName:      cfg.SheetName,
		ColumnWidth:    cfg.ColumnWidth,
		Font:           cfg.Font,
		Progress:       req.Progress,
	}
	if session != nil {
		opts.Logger = session.Logger
	}
	return opts
}
