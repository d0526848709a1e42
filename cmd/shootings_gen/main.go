package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"assocreport/adapters/excel"
	"assocreport/internal/testkit"
)

func main() {
	out := flag.String("out", "police_shootings.xlsx", "output file path")
	rows := flag.Int("rows", 1000, "number of incident records")
	format := flag.String("format", "", "output format: xlsx or csv (default inferred from -out)")
	seed := flag.Int64("seed", 42, "RNG seed (deterministic)")
	missing := flag.Float64("missing", 0.03, "probability of blanking gender, flee, age_group and race_category")
	flag.Parse()

	if *rows <= 0 {
		fmt.Fprintln(os.Stderr, "rows must be > 0")
		os.Exit(2)
	}

	fmtName := strings.ToLower(strings.TrimSpace(*format))
	if fmtName == "" {
		switch strings.ToLower(filepath.Ext(*out)) {
		case ".csv":
			fmtName = "csv"
		default:
			fmtName = "xlsx"
		}
	}

	cfg := testkit.DefaultShootingsConfig()
	cfg.Rows = *rows
	cfg.Seed = *seed
	cfg.MissingRate = *missing

	ds, err := testkit.GenerateShootings(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error generating dataset:", err)
		os.Exit(1)
	}

	switch fmtName {
	case "csv":
		if err := excel.WriteCSV(*out, ds); err != nil {
			fmt.Fprintln(os.Stderr, "error writing csv:", err)
			os.Exit(1)
		}
	case "xlsx":
		if err := excel.WriteXLSX(*out, ds); err != nil {
			fmt.Fprintln(os.Stderr, "error writing xlsx:", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "unsupported format:", fmtName)
		os.Exit(2)
	}

	fmt.Printf("Synthetic incidents written: %s\n", *out)
	fmt.Printf("Total Columns: %d | Total Rows: %d | Snapshot: %s\n", len(ds.Headers), ds.Len(), ds.Fingerprint().Short())
}
