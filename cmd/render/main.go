// Command render draws one selection to a file and exits.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"PriceBox/internal/app"
	"PriceBox/internal/export"
	"PriceBox/internal/loader"
	"PriceBox/internal/model"
	"PriceBox/internal/pipeline"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run returns the process exit code: 0 on success or an empty-result
// warning, 1 on invalid input or any failure.
func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file (default CONFIG_PATH or configs/config.yaml)")
	date := fs.String("date", "", "date YYYY-MM-DD (default: first date in the file)")
	start := fs.String("start", "", "start time HH:MM (default from config)")
	end := fs.String("end", "", "end time HH:MM (default from config)")
	format := fs.String("format", "html", "output format: html, png, json, csv, parquet")
	out := fs.String("out", "", "output file (default <date>_<start>_<end>.<ext> in the current directory)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *cfgPath == "" {
		*cfgPath = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			*cfgPath = v
		}
	}
	cfg, err := app.ProvideConfig(app.ConfigPath(*cfgPath))
	if err != nil {
		log.Printf("[ERROR] load config: %v", err)
		return 1
	}
	saver := export.NewSaver(*format, cfg.Chart.PNGFont)
	if saver == nil {
		log.Printf("[ERROR] unsupported format %q", *format)
		return 1
	}

	m := app.ProvideMetrics()
	ds, err := app.ProvideDataset(app.ProvideSource(cfg), m)
	if err != nil {
		log.Printf("[ERROR] %s (%v)", loader.UserMessage(err), err)
		return 1
	}

	if *date == "" && ds.Len() > 0 {
		*date = ds.MinDate().Format(model.DateLayout)
	}
	if *start == "" {
		*start = cfg.Chart.DefaultStart
	}
	if *end == "" {
		*end = cfg.Chart.DefaultEnd
	}

	started := time.Now()
	sel, err := pipeline.ParseSelection(*date, *start, *end)
	var res *pipeline.Result
	if err == nil {
		res, err = pipeline.Run(ds, sel)
	}
	m.ObserveRun("cli", time.Since(started), res, err)
	if err != nil {
		fmt.Fprintln(stdout, pipeline.UserMessage(err, *date))
		if pipeline.IsWarning(err) {
			log.Printf("[WARN] %v", err)
			return 0
		}
		log.Printf("[ERROR] %v", err)
		return 1
	}

	path := *out
	if path == "" {
		path = export.FileName(sel, saver.Extension())
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("[ERROR] create output dir: %v", err)
			return 1
		}
	}
	if err := saver.Save(export.NewReport(res, cfg.Chart.Options), path); err != nil {
		log.Printf("[ERROR] save %s: %v", path, err)
		return 1
	}
	fmt.Fprintf(stdout, "%s: %d series (%d up, %d down) -> %s\n",
		sel.Date.Format(model.DateLayout), len(res.Series), res.Up(), res.Down(), path)
	return 0
}
