package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/platewise/menu-etl/internal/extractor"
	"github.com/platewise/menu-etl/internal/menuparse"
	"github.com/platewise/menu-etl/internal/store"
)

func main() {
	inputPath := flag.String("input", "", "Path to a menu document (.pdf or .txt) or a directory of .png page images")
	restaurant := flag.String("restaurant", "", "Restaurant name (defaults to a name derived from the input path)")
	outputPath := flag.String("output", "", "Path to write the extraction result JSON (defaults to stdout)")
	dbPath := flag.String("db", "", "Optional SQLite database path; when set the run is persisted")
	maxChars := flag.Int("max-chunk-chars", menuparse.DefaultChunkChars, "Maximum characters per model call")
	batchSize := flag.Int("image-batch", menuparse.DefaultImageBatchSize, "Page images per vision call")
	callTimeout := flag.Duration("call-timeout", 60*time.Second, "Per-model-call timeout")
	flag.Parse()

	_ = godotenv.Load()

	if *inputPath == "" {
		log.Fatal("missing required -input")
	}

	name := strings.TrimSpace(*restaurant)
	if name == "" {
		name = extractor.RestaurantNameFromPath(*inputPath)
	}

	caller, err := menuparse.NewAnthropicCallerFromEnv()
	if err != nil {
		log.Fatalf("configure model caller: %v", err)
	}
	cfg := menuparse.PipelineConfig{
		MaxChunkChars: *maxChars,
		CallTimeout:   *callTimeout,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	info, err := os.Stat(*inputPath)
	if err != nil {
		log.Fatalf("stat input: %v", err)
	}

	var result menuparse.MenuExtractionResult
	if info.IsDir() {
		images, err := loadPageImages(*inputPath)
		if err != nil {
			log.Fatalf("load page images: %v", err)
		}
		log.Printf("parsing %d page images for %q", len(images), name)
		pipeline := menuparse.NewImagePipeline(caller, *batchSize, cfg)
		result, err = pipeline.ParseImages(ctx, images, name)
		if err != nil {
			log.Fatalf("parse images: %v", err)
		}
	} else {
		extracted, err := extractor.ExtractText(ctx, *inputPath)
		if err != nil {
			log.Fatalf("extract text: %v", err)
		}
		text := extractor.NormalizeText(extracted.Text)
		log.Printf("extracted %d chars via %s for %q", len(text), extracted.Method, name)
		pipeline := menuparse.NewPipeline(caller, cfg)
		result, err = pipeline.ParseMenu(ctx, text, name)
		if err != nil {
			log.Fatalf("parse menu: %v", err)
		}
	}

	log.Printf("extracted %d items across %d categories", result.TotalItems, len(result.Metadata.CategoriesFound))

	if *dbPath != "" {
		st, err := store.Open(*dbPath)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer st.Close()
		runID, err := st.SaveResult(result, *inputPath)
		if err != nil {
			log.Fatalf("save run: %v", err)
		}
		log.Printf("saved run %s to %s", runID, *dbPath)
	}

	if err := writeResult(*outputPath, result); err != nil {
		log.Fatalf("write result: %v", err)
	}
}

func loadPageImages(dir string) ([][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no .png page images in %s", dir)
	}
	// Page order follows file name order.
	sort.Strings(names)

	images := make([][]byte, 0, len(names))
	for _, n := range names {
		blob, err := os.ReadFile(filepath.Join(dir, n))
		if err != nil {
			return nil, err
		}
		images = append(images, blob)
	}
	return images, nil
}

func writeResult(outputPath string, result menuparse.MenuExtractionResult) error {
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if outputPath == "" {
		_, err := fmt.Println(string(b))
		return err
	}
	return os.WriteFile(outputPath, b, 0o644)
}
