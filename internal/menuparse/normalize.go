package menuparse

import (
	"regexp"
	"strings"
)

var tokenSplitPattern = regexp.MustCompile(`[/,]`)

// Normalize reshapes raw item records into one record per purchasable
// option with a single resolved price. Per record the rules apply in
// order and the first match wins:
//
//  1. Slash split: when item_name and price_display tokenize (on "/"
//     or ",") into the same count of more than one token, the record
//     expands into one record per index pair.
//  2. Single-price fallback: a nil price is parsed from price_display.
//  3. Variant flattening: a still-nil price takes the first non-nil
//     value in the fixed order small, medium, large, half plate, full
//     plate. Variant fields never survive into the output.
//
// Output order follows input order, and Normalize is idempotent on its
// own output.
func Normalize(items []RawItemRecord) []RawItemRecord {
	out := make([]RawItemRecord, 0, len(items))
	for _, it := range items {
		nameTokens := splitTokens(it.ItemName)
		priceTokens := splitTokens(it.PriceDisplay)

		if len(nameTokens) > 1 && len(priceTokens) == len(nameTokens) {
			for i, name := range nameTokens {
				rec := it
				rec.ItemName = name
				rec.PriceDisplay = priceTokens[i]
				rec.Price = ParsePrice(priceTokens[i])
				out = append(out, flattenVariantPrices(rec))
			}
			continue
		}

		if it.Price == nil {
			it.Price = ParsePrice(it.PriceDisplay)
		}
		out = append(out, flattenVariantPrices(it))
	}
	return out
}

// flattenVariantPrices collapses size and plate prices into Price and
// strips the variant fields. The collapse is lossy on purpose: true
// variants were already expanded upstream (rule 1 or the model's own
// row splitting), so multiple populated fields here are accidental.
func flattenVariantPrices(rec RawItemRecord) RawItemRecord {
	if rec.Price == nil {
		for _, p := range []*float64{
			rec.SmallPrice,
			rec.MediumPrice,
			rec.LargePrice,
			rec.HalfPlatePrice,
			rec.FullPlatePrice,
		} {
			if p != nil {
				v := *p
				rec.Price = &v
				break
			}
		}
	}
	rec.SmallPrice = nil
	rec.MediumPrice = nil
	rec.LargePrice = nil
	rec.HalfPlatePrice = nil
	rec.FullPlatePrice = nil
	return rec
}

func splitTokens(s string) []string {
	var out []string
	for _, t := range tokenSplitPattern.Split(s, -1) {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
