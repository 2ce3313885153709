package menuparse

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const instrumentationName = "github.com/platewise/menu-etl/internal/menuparse"

// PipelineConfig carries the per-run knobs. Zero values fall back to
// the defaults the prompts were tuned against.
type PipelineConfig struct {
	MaxChunkChars int
	MaxAttempts   int
	CallTimeout   time.Duration
}

// Pipeline runs the chunked text-parsing flow: split, call the model
// per chunk with bounded retries, repair the JSON, normalize, validate
// and aggregate in document order.
type Pipeline struct {
	caller ModelCaller
	cfg    PipelineConfig
	sleep  func(time.Duration)
}

func NewPipeline(caller ModelCaller, cfg PipelineConfig) *Pipeline {
	if cfg.MaxChunkChars <= 0 {
		cfg.MaxChunkChars = DefaultChunkChars
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 60 * time.Second
	}
	return &Pipeline{caller: caller, cfg: cfg, sleep: time.Sleep}
}

// ParseMenu processes one document's extracted text. Chunk-level
// failures are absorbed: a chunk whose model call or JSON repair fails
// after retries contributes zero items, and the run still returns a
// (possibly empty) result. The only error returned is context
// cancellation.
func (p *Pipeline) ParseMenu(ctx context.Context, menuText, restaurantName string) (MenuExtractionResult, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "parse_menu")
	defer span.End()

	chunks := SplitChunks(menuText, p.cfg.MaxChunkChars)
	span.SetAttributes(attribute.Int("menu.chunks", len(chunks)))

	result := MenuExtractionResult{RestaurantName: restaurantName}
	if result.RestaurantName == "" {
		result.RestaurantName = "Unknown"
	}

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		log.Printf("menuparse: chunk %d/%d (%d chars)", i+1, len(chunks), len(chunk))

		doc := p.callChunkWithRetries(ctx, chunk, i+1)
		if doc == nil {
			continue
		}
		for _, raw := range Normalize(rawItemsFromDoc(doc)) {
			item, err := Validate(raw)
			if err != nil {
				log.Printf("menuparse: dropping record: %v", err)
				continue
			}
			result.Items = append(result.Items, item)
		}
		mergeChunkMetadata(&result.Metadata, doc["extraction_metadata"])
	}

	finalizeMetadata(&result)
	span.SetAttributes(attribute.Int("menu.items", result.TotalItems))
	return result, nil
}

// callChunkWithRetries applies the bounded-retry policy. Both
// transport failures and parse failures trigger a retry, except for
// non-retryable client errors. A nil return means the chunk is
// abandoned.
func (p *Pipeline) callChunkWithRetries(ctx context.Context, chunk string, chunkNum int) map[string]any {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "parse_chunk")
	defer span.End()

	prompt := BuildUserPrompt(chunk)
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		raw, err := p.callOnce(ctx, prompt)
		if err != nil {
			if classifyTransportError(err) == failureClient {
				log.Printf("menuparse: chunk %d non-retryable model error: %v", chunkNum, err)
				return nil
			}
			log.Printf("menuparse: chunk %d attempt %d model call failed: %v", chunkNum, attempt, err)
		} else {
			doc, repairErr := RepairJSON(raw)
			if repairErr == nil {
				return doc
			}
			log.Printf("menuparse: chunk %d attempt %d: %v", chunkNum, attempt, repairErr)
		}
		if attempt < p.cfg.MaxAttempts {
			p.sleep(backoffDelay(attempt))
		}
	}
	log.Printf("menuparse: chunk %d abandoned after %d attempts", chunkNum, p.cfg.MaxAttempts)
	return nil
}

func (p *Pipeline) callOnce(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
	defer cancel()
	return p.caller.GenerateJSON(callCtx, prompt)
}

func rawItemsFromDoc(doc map[string]any) []RawItemRecord {
	items, _ := doc["items"].([]any)
	out := make([]RawItemRecord, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, DecodeRawItem(m))
	}
	return out
}

// mergeChunkMetadata folds one chunk's free-form metadata into the
// aggregate. Counts are recomputed from the validated items at the
// end, so only the descriptive fields are merged here.
func mergeChunkMetadata(meta *ExtractionMetadata, v any) {
	m, ok := v.(map[string]any)
	if !ok {
		return
	}
	meta.PricingPatternsDetected = appendUniqueStrings(meta.PricingPatternsDetected, m["pricing_patterns_detected"])
	if s, ok := m["menu_structure_analysis"].(string); ok && s != "" && meta.MenuStructureAnalysis == "" {
		meta.MenuStructureAnalysis = s
	}
	if s, ok := m["notes"].(string); ok && s != "" {
		meta.Notes = append(meta.Notes, s)
	}
}

func finalizeMetadata(result *MenuExtractionResult) {
	result.TotalItems = len(result.Items)
	result.Metadata.TotalItemsExtracted = len(result.Items)
	result.Metadata.CategoriesFound = nil
	result.Metadata.SubcategoriesFound = nil
	for _, item := range result.Items {
		result.Metadata.CategoriesFound = appendUnique(result.Metadata.CategoriesFound, item.Category)
		result.Metadata.SubcategoriesFound = appendUnique(result.Metadata.SubcategoriesFound, item.Subcategory)
	}
}

func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}

func appendUniqueStrings(list []string, v any) []string {
	values, ok := v.([]any)
	if !ok {
		return list
	}
	for _, value := range values {
		if s, ok := value.(string); ok {
			list = appendUnique(list, s)
		}
	}
	return list
}
