// cellfreq-web serves the cell-frequency summary, the responder comparison
// and the subset report as a small dashboard.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/carbocation/cellfreq/cohort"
	"github.com/carbocation/cellfreq/compileinfo"
)

var global *Global

func main() {
	errors := make(chan error, 1)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig,
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGUSR1,
	)

	var configPath, input, dbPath, outDir string
	var port int
	flag.StringVar(&configPath, "config", "", "(Optional) JSON file describing the source, database, output folder, comparison filter and subset filter.")
	flag.StringVar(&input, "input", "", "(Optional) Cell-count table used by POST /reload. Overrides the config.")
	flag.StringVar(&dbPath, "db", "", "SQLite database path. Overrides the config. Default: database.db")
	flag.StringVar(&outDir, "output", "", "Folder where the artifacts are written and served from. Overrides the config.")
	flag.IntVar(&port, "port", 9019, "Port for HTTP server")
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

	if err := cfg.Validate(); err != nil {
		log.Fatalln(err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Fatalln(err)
	}

	global = NewGlobal(cfg, log.New(os.Stderr, log.Prefix(), log.Ldate|log.Ltime))
	global.Version = compileinfo.Get().Short()

	global.log.Println("Launching", global.Site)

	go func() {
		global.log.Println("Starting HTTP server on port", port)

		routing, err := router(global)
		if err != nil {
			errors <- err
			return
		}

		if err := http.ListenAndServe(fmt.Sprintf(`:%d`, port), routing); err != nil {
			errors <- err
			return
		}
	}()

Outer:
	for {
		select {
		case sigl := <-sig:
			if sigl == syscall.SIGUSR1 {
				SigStatus()
				continue
			}

			// By default, exit
			global.log.Printf("\nExit: %s\n", sigl.String())

			break Outer

		case err := <-errors:
			if err == nil {
				global.log.Println("Finished")
				break Outer
			}

			// Return a status code indicating failure
			global.log.Println("Exiting due to error", err)
			os.Exit(1)
		}
	}
}

func SigStatus() {
	global.log.Println("There are", runtime.NumGoroutine(), "goroutines running")
}
