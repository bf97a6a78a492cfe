package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/nconklindev/pricesheet/internal/types"

	"github.com/joho/godotenv"
)

type Config struct {
	Format        types.Format
	Language      types.Language
	PartialPolicy types.PartialPolicy
	Dedupe        bool

	SheetName   string
	ColumnWidth float64
	Font        string

	// LogDir is where run logs go. Empty means next to the input file.
	LogDir string
	// HistoryDB is the sqlite file runs are recorded in. Empty disables it.
	HistoryDB string
	Verbose   bool
}

// Load reads an optional .env file, then the environment. Unparseable values
// fall back to their defaults; enum values that do not parse are errors.
func Load() (Config, error) {
	_ = godotenv.Load()

	format, err := types.ParseFormat(getEnv("PRICESHEET_FORMAT", "xlsx"))
	if err != nil {
		return Config{}, err
	}
	lang, err := types.ParseLanguage(getEnv("PRICESHEET_LANG", "fa"))
	if err != nil {
		return Config{}, err
	}
	policy, err := types.ParsePartialPolicy(getEnv("PRICESHEET_PARTIAL_POLICY", "invalid"))
	if err != nil {
		return Config{}, err
	}

	return Config{
		Format:        format,
		Language:      lang,
		PartialPolicy: policy,
		Dedupe:        getEnvBool("PRICESHEET_DEDUPE", true),

		SheetName:   getEnv("PRICESHEET_SHEET_NAME", "Products"),
		ColumnWidth: getEnvFloat("PRICESHEET_COLUMN_WIDTH", 30),
		Font:        getEnv("PRICESHEET_FONT", "B Nazanin"),

		LogDir:    getEnv("PRICESHEET_LOG_DIR", ""),
		HistoryDB: getEnv("PRICESHEET_HISTORY_DB", ""),
		Verbose:   getEnvBool("PRICESHEET_VERBOSE", false),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
