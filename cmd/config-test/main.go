package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"reflect"

	"github.com/chrissnell/mvtanalyzer/internal/dataset"
	"github.com/chrissnell/mvtanalyzer/internal/mvt"
	"github.com/chrissnell/mvtanalyzer/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite configuration file (optional)")
	)
	flag.Parse()

	if *yamlFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> [-sqlite <config.db>]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Test")
	fmt.Println("==================")

	// Load YAML configuration
	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	yamlProvider := config.NewYAMLProvider(*yamlFile)
	yamlConfig, err := yamlProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML config: %v\n", err)
		os.Exit(1)
	}

	failed := checkDatasets(yamlConfig)

	if *sqliteFile != "" {
		fmt.Printf("\nLoading SQLite configuration: %s\n", *sqliteFile)
		sqliteProvider, err := config.NewSQLiteProvider(*sqliteFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating SQLite provider: %v\n", err)
			os.Exit(1)
		}
		defer sqliteProvider.Close()

		sqliteConfig, err := sqliteProvider.LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading SQLite config: %v\n", err)
			os.Exit(1)
		}

		if !compareConfigs(yamlConfig, sqliteConfig) {
			failed = true
		}
	}

	fmt.Println("\nTest completed!")
	if failed {
		os.Exit(1)
	}
}

// checkDatasets runs every configured dataset through the analysis pipeline
func checkDatasets(cfg *config.ConfigData) bool {
	registry := dataset.NewRegistry(cfg.Datasets)
	failed := false

	fmt.Println("\nDatasets:")
	if _, err := registry.Describe(cfg.Analysis.DefaultDataset); err != nil {
		fmt.Printf("✗ Default dataset: %v\n", err)
		failed = true
	}

	for _, name := range registry.Names() {
		rows, err := registry.Rows(name)
		if err != nil {
			fmt.Printf("✗ %s: %v\n", name, err)
			failed = true
			continue
		}

		a, err := mvt.AnalyzeRows(rows)
		if err != nil {
			fmt.Printf("✗ %s: %v\n", name, err)
			failed = true
			continue
		}

		fmt.Printf("✓ %s: %d periods, %d segments, trend %s\n", name, len(a.Samples), len(a.Records), a.OverallTrend)
		for _, w := range a.Warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
	}
	return failed
}

func compareConfigs(yaml, sqlite *config.ConfigData) bool {
	ok := true

	fmt.Println("\nComparison Results:")
	fmt.Println("==================")

	if reflect.DeepEqual(yaml.Server, sqlite.Server) {
		fmt.Println("✓ Server configuration matches")
	} else {
		fmt.Printf("✗ Server configuration differs\n  YAML:   %+v\n  SQLite: %+v\n", yaml.Server, sqlite.Server)
		ok = false
	}

	if compareAnalysis(yaml.Analysis, sqlite.Analysis) {
		fmt.Println("✓ Analysis configuration matches")
	} else {
		fmt.Printf("✗ Analysis configuration differs\n  YAML:   %+v\n  SQLite: %+v\n", yaml.Analysis, sqlite.Analysis)
		ok = false
	}

	fmt.Printf("Datasets - YAML: %d, SQLite: %d\n", len(yaml.Datasets), len(sqlite.Datasets))
	if len(yaml.Datasets) != len(sqlite.Datasets) {
		fmt.Println("✗ Dataset count mismatch")
		return false
	}

	fmt.Println("✓ Dataset count matches")

	// SQLite returns datasets ordered by name
	byName := make(map[string]config.DatasetData, len(sqlite.Datasets))
	for _, ds := range sqlite.Datasets {
		byName[ds.Name] = ds
	}
	for _, yamlDataset := range yaml.Datasets {
		if reflect.DeepEqual(yamlDataset, byName[yamlDataset.Name]) {
			fmt.Printf("✓ Dataset %s matches\n", yamlDataset.Name)
		} else {
			fmt.Printf("✗ Dataset %s differs\n", yamlDataset.Name)
			ok = false
		}
	}
	return ok
}

func compareAnalysis(yaml, sqlite config.AnalysisData) bool {
	tolerance := 0.000001
	return yaml.DefaultDataset == sqlite.DefaultDataset &&
		yaml.TangentPoints == sqlite.TangentPoints &&
		math.Abs(yaml.TangentHalfWidth-sqlite.TangentHalfWidth) < tolerance
}
