// cellfreq loads a cell-count table into SQLite, summarizes the relative
// frequency of each immune-cell population per sample, compares responders
// with non-responders, and reports a filtered subset.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/carbocation/cellfreq/cohort"
	"github.com/carbocation/cellfreq/compileinfo"
)

func main() {
	var configPath, input, dbPath, outDir string
	var skipLoad, noPlots bool

	flag.StringVar(&configPath, "config", "", "(Optional) JSON file describing the source, database, output folder, comparison filter and subset filter.")
	flag.StringVar(&input, "input", "", "Cell-count table (CSV or TSV, optionally compressed). May be a Google Storage URL (gs://). Overrides the config.")
	flag.StringVar(&dbPath, "db", "", "SQLite database path. Overrides the config. Default: database.db")
	flag.StringVar(&outDir, "output", "", "Folder where summary.csv, statistical_results.csv, the subset and the plots are written. Overrides the config.")
	flag.BoolVar(&skipLoad, "skip-load", false, "(Optional) Skip loading the input and report on the database as it is.")
	flag.BoolVar(&noPlots, "no-plots", false, "(Optional) Do not draw box plots or the frequency chart.")
	flag.Parse()

	compileinfo.PrintToStdErr()

	cfg := cohort.Default()
	if configPath != "" {
		var err error
		cfg, err = cohort.ParseJSONConfigFromPath(configPath)
		if err != nil {
			log.Fatalln(err)
		}
	}

	if input != "" {
		cfg.Source = input
	}
	if dbPath != "" {
		cfg.Database = dbPath
	}
	if outDir != "" {
		cfg.OutputDir = outDir
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Fatalln(err)
	}

	p := pipeline{
		Config: cfg,
		Plots:  !noPlots,
	}

	if !skipLoad {
		p.Load(context.Background())
	}

	if err := p.Report(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
