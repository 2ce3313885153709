// Package report renders an extraction run for humans: a markdown
// summary with the full item table, and a print-quality PDF of it.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/platewise/menu-etl/internal/menuparse"
)

// BuildMarkdown produces the extraction report for one run.
func BuildMarkdown(result menuparse.MenuExtractionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Menu Extraction Report\n\n")
	fmt.Fprintf(&b, "- Restaurant: %s\n", result.RestaurantName)
	fmt.Fprintf(&b, "- Items extracted: %d\n", result.TotalItems)
	fmt.Fprintf(&b, "- Date: %s\n\n", time.Now().Format(time.RFC3339))

	if len(result.Metadata.PricingPatternsDetected) > 0 {
		fmt.Fprintf(&b, "Pricing patterns detected: %s.\n\n", strings.Join(result.Metadata.PricingPatternsDetected, ", "))
	}
	if result.Metadata.MenuStructureAnalysis != "" {
		fmt.Fprintf(&b, "%s\n\n", result.Metadata.MenuStructureAnalysis)
	}

	fmt.Fprintf(&b, "## Categories\n\n")
	if len(result.Items) == 0 {
		fmt.Fprintf(&b, "No items were extracted from this document.\n\n")
	}
	for _, line := range categoryCounts(result.Items) {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	if len(result.Items) > 0 {
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Items\n\n")
	fmt.Fprintf(&b, "| # | Item | Category | Subcategory | Price | Display |\n")
	fmt.Fprintf(&b, "|---|------|----------|-------------|-------|---------|\n")
	for i, item := range result.Items {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
			i+1,
			escapeCell(item.ItemName),
			escapeCell(item.Category),
			escapeCell(item.Subcategory),
			formatPrice(item.Price),
			escapeCell(item.PriceDisplay),
		)
	}

	if len(result.Metadata.Notes) > 0 {
		fmt.Fprintf(&b, "\n## Notes\n\n")
		for _, note := range result.Metadata.Notes {
			fmt.Fprintf(&b, "- %s\n", note)
		}
	}
	return b.String()
}

// categoryCounts returns "Category: N items" lines in first-seen order.
func categoryCounts(items []menuparse.CanonicalMenuItem) []string {
	var order []string
	counts := map[string]int{}
	for _, item := range items {
		if _, seen := counts[item.Category]; !seen {
			order = append(order, item.Category)
		}
		counts[item.Category]++
	}
	out := make([]string, 0, len(order))
	for _, cat := range order {
		n := counts[cat]
		label := "items"
		if n == 1 {
			label = "item"
		}
		out = append(out, fmt.Sprintf("%s: %d %s", cat, n, label))
	}
	return out
}

func formatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	s := fmt.Sprintf("%.2f", *p)
	s = strings.TrimSuffix(s, ".00")
	return s
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
