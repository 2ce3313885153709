package menuparse

import "strings"

const (
	// DefaultChunkChars is the soft chunk size target for text parsing.
	DefaultChunkChars = 1000

	// DefaultCategory fills in for items whose category never appeared
	// in the menu or in any earlier row of the same document.
	DefaultCategory = "Uncategorized"
)

// RawItemRecord is the untrusted boundary shape: whatever survived JSON
// repair of the model output for one menu row. All fields are optional
// except ItemName, and nothing is validated yet.
type RawItemRecord struct {
	ItemName    string
	Category    string
	Subcategory string
	Description string

	Price          *float64
	HalfPlatePrice *float64
	FullPlatePrice *float64
	SmallPrice     *float64
	MediumPrice    *float64
	LargePrice     *float64

	// PriceDisplay holds the textual price as printed on the menu. It
	// may carry several slash-joined prices before normalization, or a
	// non-numeric marker like "Market Price" after it.
	PriceDisplay string
}

// CanonicalMenuItem is one validated purchasable option with a single
// resolved price. Variant labels, where present, are already part of
// ItemName ("Alfredo Pasta - Cheesy").
type CanonicalMenuItem struct {
	ItemName     string   `json:"item_name"`
	Category     string   `json:"category"`
	Subcategory  string   `json:"subcategory"`
	Description  string   `json:"description,omitempty"`
	Price        *float64 `json:"price"`
	PriceDisplay string   `json:"price_display,omitempty"`
}

// ExtractionMetadata aggregates the free-form metadata the model
// reports per chunk, merged across the whole document.
type ExtractionMetadata struct {
	TotalItemsExtracted     int      `json:"total_items_extracted"`
	CategoriesFound         []string `json:"categories_found,omitempty"`
	SubcategoriesFound      []string `json:"subcategories_found,omitempty"`
	PricingPatternsDetected []string `json:"pricing_patterns_detected,omitempty"`
	MenuStructureAnalysis   string   `json:"menu_structure_analysis,omitempty"`
	Notes                   []string `json:"notes,omitempty"`
}

// MenuExtractionResult is the terminal output of a parse run. Items
// keep document order across chunk boundaries.
type MenuExtractionResult struct {
	RestaurantName string              `json:"restaurant_name"`
	Items          []CanonicalMenuItem `json:"items"`
	TotalItems     int                 `json:"total_items"`
	Metadata       ExtractionMetadata  `json:"extraction_metadata"`
}

// DecodeRawItem converts one decoded JSON object into a RawItemRecord.
// Price fields accept both numbers and printed strings ("$12.99");
// anything unusable is dropped to nil rather than rejected here.
func DecodeRawItem(m map[string]any) RawItemRecord {
	return RawItemRecord{
		ItemName:       stringField(m, "item_name"),
		Category:       stringField(m, "category"),
		Subcategory:    stringField(m, "subcategory"),
		Description:    stringField(m, "description"),
		Price:          ParsePriceValue(m["price"]),
		HalfPlatePrice: ParsePriceValue(m["half_plate_price"]),
		FullPlatePrice: ParsePriceValue(m["full_plate_price"]),
		SmallPrice:     ParsePriceValue(m["small_price"]),
		MediumPrice:    ParsePriceValue(m["medium_price"]),
		LargePrice:     ParsePriceValue(m["large_price"]),
		PriceDisplay:   stringField(m, "price_display"),
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}
