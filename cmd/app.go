// Package cmd implements the CLI application to compute UK capital gains.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	cgt "github.com/velikodniy/cgt-tool-sub001"
	"github.com/velikodniy/cgt-tool-sub001/fx"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&reportCmd{}, "reports")
	c.Register(&holdingsCmd{}, "reports")

	c.Register(&parseCmd{}, "ledger")
	c.Register(&fmtCmd{}, "ledger")
	c.Register(&validateCmd{}, "ledger")
	c.Register(&convertCmd{}, "ledger")
}

// Config is the application environment. A .env file in the working
// directory is loaded by main before parsing.
type Config struct {
	LedgerFile     string `env:"CGT_LEDGER_FILE" envDefault:"transactions.cgt"`
	RatesDir       string `env:"CGT_RATES_DIR"`
	ExemptionsFile string `env:"CGT_EXEMPTIONS_FILE"`
	LogLevel       string `env:"CGT_LOG_LEVEL" envDefault:"warn"`
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.
var cfg Config

var logger zerolog.Logger

// Setup parses the environment and prepares the logger. It must run before
// any command executes.
func Setup() error {
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()
	return nil
}

// decodeLedger reads a ledger file in either format. A ".jsonl" extension
// selects the JSONL codec, anything else is parsed as the text format.
// An empty path falls back to the configured default ledger file.
func decodeLedger(path string) ([]cgt.Transaction, error) {
	if path == "" {
		path = cfg.LedgerFile
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	logger.Debug().Str("file", path).Msg("reading ledger")
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return cgt.DecodeTransactions(f)
	}
	return cgt.DecodeDSL(f)
}

// loadRates returns the FX rate cache, the embedded monthly rates overlaid
// with the configured rates directory if one is set.
func loadRates() (*fx.Cache, error) {
	cache, err := fx.Default()
	if err != nil {
		return nil, err
	}
	if cfg.RatesDir != "" {
		logger.Debug().Str("dir", cfg.RatesDir).Msg("loading FX rates")
		if err := cache.LoadDir(cfg.RatesDir); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

// loadExemptions returns the annual exempt amounts, the built-in table
// overlaid with the configured file if one is set.
func loadExemptions() (cgt.Exemptions, error) {
	if cfg.ExemptionsFile == "" {
		return cgt.DefaultExemptions(), nil
	}
	logger.Debug().Str("file", cfg.ExemptionsFile).Msg("loading exemptions")
	return cgt.LoadExemptions(cfg.ExemptionsFile)
}

// printMarkdown renders markdown to the terminal.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// openOutput returns the writer for a command's -o flag, stdout when empty.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
