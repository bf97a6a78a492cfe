package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/pricesheet/internal/types"
)

var (
	ErrNotAbsolute    = errors.New("input path must be an absolute path")
	ErrWrongExtension = errors.New("input file must have .csv extension")
	ErrNotFound       = errors.New("file not found")
	ErrNotFile        = errors.New("path is not a file")
)

// NormalizeUserPath cleans a path typed or pasted by a user: surrounding
// whitespace and quotes are removed.
func NormalizeUserPath(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.Trim(cleaned, `"`)
	cleaned = strings.Trim(cleaned, `'`)
	return strings.TrimSpace(cleaned)
}

// ValidateInputPath checks that path is an absolute path to an existing
// regular .csv file
func ValidateInputPath(path string) error {
	if !filepath.IsAbs(path) {
		return ErrNotAbsolute
	}
	if strings.ToLower(filepath.Ext(path)) != ".csv" {
		return ErrWrongExtension
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotFile, path)
	}
	return nil
}

// OutputPath is the input path with its extension swapped for the format's
func OutputPath(input string, format types.Format) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + format.Ext()
}
