// Command cli analyzes a tabular file and prints the report.
//
//	cli -file data.csv                 # markdown report
//	cli -file data.xlsx -format csv    # flattened CSV export
//	cli -file data.json -format html   # HTML report
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"datalens/adapters/export"
	"datalens/adapters/ingest"
	"datalens/engine"
	"datalens/internal/config"
)

func main() {
	filePath := flag.String("file", "", "CSV/XLSX/JSON file to analyze")
	format := flag.String("format", "markdown", "output format: markdown, html, or csv")
	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ds, err := ingest.NewDataReader(*filePath).Read()
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *filePath, err)
	}

	analyzer := engine.New(engine.Config{
		StatMode:          engine.StatMode(cfg.Engine.StatMode),
		ForecastHorizon:   cfg.Engine.ForecastHorizon,
		ForecastWorkers:   cfg.Engine.ForecastWorkers,
		AccuracyScore:     cfg.Engine.AccuracyScore,
		TimelinessScore:   cfg.Engine.TimelinessScore,
		SummaryConfidence: cfg.Engine.SummaryConfidence,
	})

	result, err := analyzer.Analyze(context.Background(), ds)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	switch *format {
	case "csv":
		if err := export.WriteCSV(os.Stdout, result); err != nil {
			log.Fatalf("Failed to write CSV: %v", err)
		}
	case "html":
		os.Stdout.Write(export.RenderHTML(result))
	default:
		fmt.Print(export.BuildMarkdown(result))
	}
}
