package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/driverec/reconcile-api/internal/config"
	"github.com/driverec/reconcile-api/internal/input"
	"github.com/driverec/reconcile-api/internal/logger"
	"github.com/driverec/reconcile-api/internal/models"
	"github.com/driverec/reconcile-api/internal/report"
	"github.com/driverec/reconcile-api/internal/services"
)

func main() {
	inputPath := flag.String("input", "", "path to the input CSV (filename, company columns)")
	reportDir := flag.String("out", "", "report output directory (defaults to the configured report folder)")
	download := flag.Bool("download", false, "download matched files after reconciliation")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: reconcile -input <file.csv> [-out <dir>] [-download]")
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logger.New(cfg.Log.Level, cfg.Log.Format)

	f, err := os.Open(*inputPath)
	if err != nil {
		logger.Fatalf("Failed to open input file: %v", err)
	}
	records, err := input.ParseCSV(f)
	f.Close()
	if err != nil {
		logger.Fatalf("Failed to parse input file: %v", err)
	}
	if len(records) == 0 {
		logger.Fatal("No records found in input file")
	}

	container, err := services.NewContainer(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize services: %v", err)
	}
	defer container.Close()

	runID := uuid.New().String()
	start := time.Now()
	fmt.Printf("Processing %d records (run %s)\n", len(records), runID)

	results := container.ReconcileService.Reconcile(context.Background(), records,
		func(done, total int) {
			fmt.Printf("\r%d/%d processed", done, total)
		})
	fmt.Println()

	summary := report.Summarize(results)
	run := models.RunSummary{
		ID:        runID,
		CreatedAt: start,
		Total:     summary.Total,
		Found:     summary.Found,
		NotFound:  summary.NotFound,
		Errors:    summary.Errors,
	}
	if err := container.RunStore.SaveRun(context.Background(), run, results); err != nil {
		logger.WithError(err).Warn("Failed to persist run")
	}

	outDir := *reportDir
	if outDir == "" {
		outDir = filepath.Join(cfg.Reconcile.ReportFolder, runID)
	}
	paths, err := report.WriteCSVReports(outDir, report.GroupByCompany(results))
	if err != nil {
		logger.Fatalf("Failed to write reports: %v", err)
	}
	for _, p := range paths {
		fmt.Printf("wrote %s\n", p)
	}

	fmt.Printf("Found: %d  Not found: %d  Errors: %d  (%s)\n",
		summary.Found, summary.NotFound, summary.Errors, time.Since(start).Round(time.Millisecond))

	if *download {
		items := report.DownloadList(results)
		fmt.Printf("Downloading %d files to %s\n", len(items), cfg.Reconcile.DownloadFolder)

		outcomes := container.ReconcileService.DownloadAll(context.Background(), items)
		succeeded := 0
		for _, o := range outcomes {
			if o.Success {
				succeeded++
				continue
			}
			fmt.Printf("failed: %s (%s): %s\n", o.FileName, o.Company, o.Error)
		}
		fmt.Printf("Downloaded %d/%d files\n", succeeded, len(outcomes))
	}

	logger.WithFields(logrus.Fields{
		"run_id":    runID,
		"total":     summary.Total,
		"found":     summary.Found,
		"not_found": summary.NotFound,
		"errors":    summary.Errors,
	}).Info("Run completed")
}
