package menuparse

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultImageBatchSize is how many page renders go into one vision
// call. Two pages keeps facing-page menus together without blowing the
// context budget.
const DefaultImageBatchSize = 2

// ImagePipeline runs the vision flow over rendered menu pages. Rows on
// a continued page often omit their category header, so a single "last
// seen category" is carried forward strictly in visual order; that is
// the only state crossing record boundaries.
type ImagePipeline struct {
	caller    VisionCaller
	batchSize int
	cfg       PipelineConfig
	sleep     func(time.Duration)
}

func NewImagePipeline(caller VisionCaller, batchSize int, cfg PipelineConfig) *ImagePipeline {
	if batchSize <= 0 {
		batchSize = DefaultImageBatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 60 * time.Second
	}
	return &ImagePipeline{caller: caller, batchSize: batchSize, cfg: cfg, sleep: time.Sleep}
}

// ParseImages processes page renders sequentially in batches. Batch
// failures are absorbed the same way text chunks are.
func (p *ImagePipeline) ParseImages(ctx context.Context, images [][]byte, restaurantName string) (MenuExtractionResult, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "parse_images")
	defer span.End()
	span.SetAttributes(attribute.Int("menu.pages", len(images)))

	result := MenuExtractionResult{RestaurantName: restaurantName}
	if result.RestaurantName == "" {
		result.RestaurantName = "Unknown"
	}

	lastCategory := ""
	for start := 0; start < len(images); start += p.batchSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		end := start + p.batchSize
		if end > len(images) {
			end = len(images)
		}
		log.Printf("menuparse: vision batch %d with %d images", start/p.batchSize+1, end-start)

		doc := p.callBatchWithRetries(ctx, images[start:end])
		if doc == nil {
			continue
		}
		for _, raw := range rawItemsFromDoc(doc) {
			if raw.Category == "" {
				raw.Category = lastCategory
			} else {
				lastCategory = raw.Category
			}
			for _, normalized := range Normalize([]RawItemRecord{raw}) {
				item, err := Validate(normalized)
				if err != nil {
					log.Printf("menuparse: dropping record: %v", err)
					continue
				}
				result.Items = append(result.Items, item)
			}
		}
	}

	finalizeMetadata(&result)
	return result, nil
}

func (p *ImagePipeline) callBatchWithRetries(ctx context.Context, batch [][]byte) map[string]any {
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
		raw, err := p.caller.GenerateJSONFromImages(callCtx, visionUserPrompt, batch)
		cancel()
		if err != nil {
			if classifyTransportError(err) == failureClient {
				log.Printf("menuparse: vision batch non-retryable model error: %v", err)
				return nil
			}
			log.Printf("menuparse: vision batch attempt %d failed: %v", attempt, err)
		} else {
			doc, repairErr := RepairJSON(raw)
			if repairErr == nil {
				return doc
			}
			log.Printf("menuparse: vision batch attempt %d: %v", attempt, repairErr)
		}
		if attempt < p.cfg.MaxAttempts {
			p.sleep(backoffDelay(attempt))
		}
	}
	return nil
}
