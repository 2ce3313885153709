package menuparse

import (
	"fmt"
	"strings"
)

// ValidationFailure reports a record that cannot become a canonical
// item. It is routine, the model emits partial rows, so callers drop
// the record and move on.
type ValidationFailure struct {
	Field  string
	Reason string
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("invalid menu item: %s %s", e.Field, e.Reason)
}

// Validate promotes a normalized record to a CanonicalMenuItem. It
// fails when item_name is missing or the record carries no price
// information at all. A record whose only price information is a
// non-numeric price_display ("MP", "Market Price") is accepted: such
// items are purchasable even though no number can be attached to them.
func Validate(rec RawItemRecord) (CanonicalMenuItem, error) {
	name := strings.TrimSpace(rec.ItemName)
	if name == "" {
		return CanonicalMenuItem{}, &ValidationFailure{Field: "item_name", Reason: "is required"}
	}
	if !hasAnyPrice(rec) {
		return CanonicalMenuItem{}, &ValidationFailure{Field: "price", Reason: "has no value in any price field"}
	}

	category := strings.TrimSpace(rec.Category)
	if category == "" {
		category = DefaultCategory
	}
	subcategory := strings.TrimSpace(rec.Subcategory)
	if subcategory == "" {
		subcategory = category
	}

	return CanonicalMenuItem{
		ItemName:     name,
		Category:     category,
		Subcategory:  subcategory,
		Description:  strings.TrimSpace(rec.Description),
		Price:        rec.Price,
		PriceDisplay: strings.TrimSpace(rec.PriceDisplay),
	}, nil
}

func hasAnyPrice(rec RawItemRecord) bool {
	for _, p := range []*float64{
		rec.Price,
		rec.HalfPlatePrice,
		rec.FullPlatePrice,
		rec.SmallPrice,
		rec.MediumPrice,
		rec.LargePrice,
	} {
		if p != nil {
			return true
		}
	}
	return strings.TrimSpace(rec.PriceDisplay) != ""
}
