package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/mvtanalyzer/internal/app"
	"github.com/chrissnell/mvtanalyzer/internal/constants"
	"github.com/chrissnell/mvtanalyzer/internal/log"
	"github.com/chrissnell/mvtanalyzer/internal/mvt"
	"github.com/chrissnell/mvtanalyzer/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to configuration source:\n\t\t\t  YAML: config.yaml\n\t\t\t  SQLite: config.db\n\t\t\t  Use 'config-convert' tool to convert YAML→SQLite")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' for YAML files, 'sqlite' for SQLite databases")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	serve := flag.Bool("serve", false, "Run the REST API server instead of a one-shot analysis")
	input := flag.String("input", "", "CSV file with period and value columns to analyze ('-' for stdin)")
	datasetName := flag.String("dataset", "", "Named dataset to analyze (default: analysis.default-dataset)")
	format := flag.String("format", app.FormatText, "One-shot output format: text, json or msgpack")
	flag.Parse()

	if *showVersion {
		fmt.Printf("mvtanalyzer %s\n", constants.Version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// A one-shot run works without a config file unless one was asked for
	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})

	provider, err := newProvider(*cfgFile, *cfgBackend, explicit || *serve)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	defer provider.Close()

	if *serve {
		application := app.New(provider, log.GetSugaredLogger())
		if err := application.Run(context.Background()); err != nil {
			log.Errorf("Application error: %v", err)
			os.Exit(1)
		}
		return
	}

	cfgData, err := provider.LoadConfig()
	if err != nil {
		log.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %v", err)
		os.Exit(1)
	}

	name, rows, err := app.LoadRows(cfgData, app.Source{Input: *input, Dataset: *datasetName}, os.Stdin)
	if err != nil {
		log.Errorf("Failed to load data: %v", err)
		os.Exit(1)
	}

	if err := app.WriteReport(os.Stdout, cfgData, name, rows, *format); err != nil {
		if errors.Is(err, mvt.ErrInsufficientData) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		log.Errorf("Analysis failed: %v", err)
		os.Exit(1)
	}
}

// newProvider opens the configuration backend. When the YAML file is missing and
// required is false, built-in defaults are used instead.
func newProvider(cfgFile, cfgBackend string, required bool) (config.ConfigProvider, error) {
	filename, _ := filepath.Abs(cfgFile)

	switch cfgBackend {
	case "yaml":
		if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) && !required {
			log.Debugf("no configuration at %s, using defaults", filename)
			return config.NewDefaultProvider(), nil
		}
		return config.NewYAMLProvider(filename), nil
	case "sqlite":
		provider, err := config.NewSQLiteProvider(filename)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml' or 'sqlite'", cfgBackend)
	}
}
