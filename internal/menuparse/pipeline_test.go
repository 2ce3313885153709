package menuparse

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type queueCaller struct {
	responses []string
	errs      []error
	prompts   []string
}

func (q *queueCaller) GenerateJSON(_ context.Context, prompt string) (string, error) {
	q.prompts = append(q.prompts, prompt)
	if len(q.errs) > 0 {
		err := q.errs[0]
		q.errs = q.errs[1:]
		if err != nil {
			return "", err
		}
	}
	if len(q.responses) == 0 {
		return `{"items":[]}`, nil
	}
	out := q.responses[0]
	q.responses = q.responses[1:]
	return out, nil
}

func testPipeline(caller ModelCaller, cfg PipelineConfig) *Pipeline {
	p := NewPipeline(caller, cfg)
	p.sleep = func(time.Duration) {}
	return p
}

func TestParseMenuSingleChunk(t *testing.T) {
	q := &queueCaller{responses: []string{
		`{"items":[{"item_name":"Tea","category":"Beverages","price":20}],"extraction_metadata":{"total_items_extracted":1,"pricing_patterns_detected":["single_price"]}}`,
	}}
	result, err := testPipeline(q, PipelineConfig{}).ParseMenu(context.Background(), "Tea .... 20", "Chai Point")
	if err != nil {
		t.Fatalf("ParseMenu: %v", err)
	}
	if result.RestaurantName != "Chai Point" {
		t.Fatalf("unexpected restaurant: %q", result.RestaurantName)
	}
	if result.TotalItems != 1 || len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", result.TotalItems)
	}
	if result.Items[0].ItemName != "Tea" || *result.Items[0].Price != 20 {
		t.Fatalf("unexpected item: %+v", result.Items[0])
	}
	if len(result.Metadata.PricingPatternsDetected) != 1 || result.Metadata.PricingPatternsDetected[0] != "single_price" {
		t.Fatalf("metadata not merged: %+v", result.Metadata)
	}
	if len(q.prompts) != 1 || !strings.Contains(q.prompts[0], "Tea .... 20") {
		t.Fatal("chunk text must be embedded in the user prompt")
	}
}

func TestParseMenuSlashPatternEndToEnd(t *testing.T) {
	q := &queueCaller{responses: []string{
		`{"items":[{"item_name":"Choice of Paneer/Chicken/Mutton","category":"Curries","price_display":"180/220/260"}],"extraction_metadata":{"total_items_extracted":1}}`,
	}}
	result, err := testPipeline(q, PipelineConfig{}).ParseMenu(context.Background(), "Choice of Paneer/Chicken/Mutton 180/220/260", "")
	if err != nil {
		t.Fatalf("ParseMenu: %v", err)
	}
	if result.TotalItems != 3 {
		t.Fatalf("expected 3 expanded items, got %d", result.TotalItems)
	}
	wantPrices := []float64{180, 220, 260}
	for i, item := range result.Items {
		if item.Price == nil || *item.Price != wantPrices[i] {
			t.Fatalf("item %d price = %v, want %v", i, item.Price, wantPrices[i])
		}
		if item.Category != "Curries" {
			t.Fatalf("item %d lost its category: %+v", i, item)
		}
	}
	if result.RestaurantName != "Unknown" {
		t.Fatalf("empty restaurant should default to Unknown, got %q", result.RestaurantName)
	}
}

func TestParseMenuRetriesTransportFailures(t *testing.T) {
	q := &queueCaller{
		errs:      []error{errors.New("status code: 529 overloaded"), nil},
		responses: []string{`{"items":[{"item_name":"Tea","price":20}]}`},
	}
	result, err := testPipeline(q, PipelineConfig{}).ParseMenu(context.Background(), "Tea 20", "")
	if err != nil {
		t.Fatalf("ParseMenu: %v", err)
	}
	if result.TotalItems != 1 {
		t.Fatalf("expected recovery on retry, got %d items", result.TotalItems)
	}
	if len(q.prompts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(q.prompts))
	}
}

func TestParseMenuRetriesParseFailures(t *testing.T) {
	q := &queueCaller{responses: []string{
		"I could not find any menu items in this text.",
		`{"items":[{"item_name":"Tea","price":20}]}`,
	}}
	result, err := testPipeline(q, PipelineConfig{}).ParseMenu(context.Background(), "Tea 20", "")
	if err != nil {
		t.Fatalf("ParseMenu: %v", err)
	}
	if result.TotalItems != 1 {
		t.Fatalf("expected recovery on retry, got %d items", result.TotalItems)
	}
}

func TestParseMenuAbandonsChunkAfterRetries(t *testing.T) {
	q := &queueCaller{errs: []error{
		errors.New("status code: 500"),
		errors.New("status code: 500"),
		errors.New("status code: 500"),
	}}
	result, err := testPipeline(q, PipelineConfig{}).ParseMenu(context.Background(), "Tea 20", "")
	if err != nil {
		t.Fatalf("chunk failure must not fail the run: %v", err)
	}
	if result.TotalItems != 0 {
		t.Fatalf("expected empty result, got %d items", result.TotalItems)
	}
	if len(q.prompts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(q.prompts))
	}
}

func TestParseMenuClientErrorDoesNotRetry(t *testing.T) {
	q := &queueCaller{errs: []error{errors.New("status code: 400 invalid request")}}
	result, err := testPipeline(q, PipelineConfig{}).ParseMenu(context.Background(), "Tea 20", "")
	if err != nil {
		t.Fatalf("ParseMenu: %v", err)
	}
	if result.TotalItems != 0 {
		t.Fatalf("expected empty result, got %d", result.TotalItems)
	}
	if len(q.prompts) != 1 {
		t.Fatalf("client errors are not retryable, got %d attempts", len(q.prompts))
	}
}

func TestParseMenuContinuesAfterFailedChunk(t *testing.T) {
	// First paragraph fails all attempts, second succeeds.
	q := &queueCaller{
		responses: []string{
			"garbage", "garbage", "garbage",
			`{"items":[{"item_name":"Biryani","price":250}]}`,
		},
	}
	text := strings.Repeat("a", 900) + "\n\n" + strings.Repeat("b", 900)
	result, err := testPipeline(q, PipelineConfig{MaxChunkChars: 1000}).ParseMenu(context.Background(), text, "")
	if err != nil {
		t.Fatalf("ParseMenu: %v", err)
	}
	if result.TotalItems != 1 || result.Items[0].ItemName != "Biryani" {
		t.Fatalf("second chunk must still contribute: %+v", result.Items)
	}
}

func TestParseMenuDropsInvalidRecords(t *testing.T) {
	q := &queueCaller{responses: []string{
		`{"items":[{"item_name":"Tea","price":20},{"item_name":"No Price Row"},{"category":"Orphan","price":10}]}`,
	}}
	result, err := testPipeline(q, PipelineConfig{}).ParseMenu(context.Background(), "menu", "")
	if err != nil {
		t.Fatalf("ParseMenu: %v", err)
	}
	if result.TotalItems != 1 || result.Items[0].ItemName != "Tea" {
		t.Fatalf("invalid records must be dropped silently: %+v", result.Items)
	}
}

func TestParseMenuMergesMetadataAcrossChunks(t *testing.T) {
	q := &queueCaller{responses: []string{
		`{"items":[{"item_name":"Tea","category":"Beverages","price":20}],"extraction_metadata":{"total_items_extracted":1,"pricing_patterns_detected":["single_price"],"notes":"page 1"}}`,
		`{"items":[{"item_name":"Pizza","category":"Mains","price":300}],"extraction_metadata":{"total_items_extracted":1,"pricing_patterns_detected":["single_price","size_variant"],"notes":"page 2"}}`,
	}}
	text := strings.Repeat("a", 900) + "\n\n" + strings.Repeat("b", 900)
	result, err := testPipeline(q, PipelineConfig{MaxChunkChars: 1000}).ParseMenu(context.Background(), text, "")
	if err != nil {
		t.Fatalf("ParseMenu: %v", err)
	}
	if result.Metadata.TotalItemsExtracted != 2 {
		t.Fatalf("total must reflect validated items, got %d", result.Metadata.TotalItemsExtracted)
	}
	if got := result.Metadata.PricingPatternsDetected; len(got) != 2 {
		t.Fatalf("patterns should merge without duplicates, got %v", got)
	}
	if len(result.Metadata.Notes) != 2 {
		t.Fatalf("notes should accumulate, got %v", result.Metadata.Notes)
	}
	if got := result.Metadata.CategoriesFound; len(got) != 2 || got[0] != "Beverages" || got[1] != "Mains" {
		t.Fatalf("categories from validated items, got %v", got)
	}
}

func TestParseMenuCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testPipeline(&queueCaller{}, PipelineConfig{}).ParseMenu(ctx, "Tea 20", "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
