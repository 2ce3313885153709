package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/platewise/menu-etl/internal/report"
	"github.com/platewise/menu-etl/internal/store"
)

func main() {
	dbPath := flag.String("db", "", "Path to the SQLite database holding extraction runs")
	runID := flag.String("run", "", "Run ID to render")
	outputPath := flag.String("output", "", "Path to write the report (defaults to stdout for markdown)")
	pdf := flag.Bool("pdf", false, "Render a PDF via headless Chromium instead of markdown")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("missing required -db")
	}
	if *runID == "" {
		log.Fatal("missing required -run")
	}
	if *pdf && *outputPath == "" {
		log.Fatal("-pdf requires -output")
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	run, result, err := st.GetRun(*runID)
	if err != nil {
		log.Fatalf("load run: %v", err)
	}

	markdown := report.BuildMarkdown(result)

	if !*pdf {
		if err := writeMarkdown(*outputPath, markdown); err != nil {
			log.Fatalf("write markdown: %v", err)
		}
		return
	}

	title := strings.TrimSpace(run.RestaurantName)
	if title == "" {
		title = "Menu Extraction Report"
	}
	renderer := report.NewChromiumPDFRenderer()
	blob, err := renderer.Render(context.Background(), markdown, title)
	if err != nil {
		log.Fatalf("render pdf: %v", err)
	}
	if err := os.WriteFile(*outputPath, blob, 0o644); err != nil {
		log.Fatalf("write pdf: %v", err)
	}
	log.Printf("wrote %d bytes to %s", len(blob), *outputPath)
}

func writeMarkdown(outputPath, markdown string) error {
	if outputPath == "" {
		_, err := fmt.Print(markdown)
		return err
	}
	return os.WriteFile(outputPath, []byte(markdown), 0o644)
}
