package menuparse

import (
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
)

// ParseFailure reports that no recovery strategy could turn the model
// output into JSON. Snippet is a bounded prefix of the raw text.
type ParseFailure struct {
	Snippet string
}

func (e *ParseFailure) Error() string {
	if e.Snippet == "" {
		return "could not parse model output: empty response"
	}
	return fmt.Sprintf("could not parse model output, snippet: %q", e.Snippet)
}

const parseFailureSnippetLen = 500

var (
	noneLiteralPattern  = regexp.MustCompile(`:\s*None\b`)
	trueLiteralPattern  = regexp.MustCompile(`:\s*True\b`)
	falseLiteralPattern = regexp.MustCompile(`:\s*False\b`)
	bareObjectPattern   = regexp.MustCompile(`\{[^{}]*\}`)
)

// RepairJSON turns raw model output into a JSON object, applying an
// ordered cascade of progressively more aggressive recovery
// strategies. A top-level array is wrapped as {"items": [...]}. When
// every strategy fails it returns a *ParseFailure; no other error
// class escapes.
func RepairJSON(raw string) (map[string]any, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, &ParseFailure{}
	}
	text = stripCodeFences(text)

	strategies := []func(string) (map[string]any, bool){
		tryStrictParse,
		tryTrailingGarbageTrim,
		tryLiteralRepair,
		trySpanSalvage,
	}
	for _, strategy := range strategies {
		if doc, ok := strategy(text); ok {
			return doc, nil
		}
	}
	return nil, &ParseFailure{Snippet: truncateForSnippet(raw)}
}

// tryStrictParse is the happy path: the text already is valid JSON.
func tryStrictParse(text string) (map[string]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}
	return normalizeTopLevel(v)
}

// tryTrailingGarbageTrim cuts the text at the rightmost closing brace
// or bracket, discarding commentary the model appended after the
// actual payload.
func tryTrailingGarbageTrim(text string) (map[string]any, bool) {
	last := strings.LastIndex(text, "}")
	if i := strings.LastIndex(text, "]"); i > last {
		last = i
	}
	if last < 0 {
		return nil, false
	}
	return tryStrictParse(text[:last+1])
}

// tryLiteralRepair replaces unquoted Python-style literals, then (as a
// second attempt) escapes raw control characters that break strict JSON
// string parsing. Escaping runs last because it only helps when the
// stray control characters sit inside string values.
func tryLiteralRepair(text string) (map[string]any, bool) {
	repaired := noneLiteralPattern.ReplaceAllString(text, ": null")
	repaired = trueLiteralPattern.ReplaceAllString(repaired, ": true")
	repaired = falseLiteralPattern.ReplaceAllString(repaired, ": false")
	if doc, ok := tryStrictParse(repaired); ok {
		return doc, true
	}
	escaped := strings.ReplaceAll(repaired, "\r", " ")
	escaped = strings.ReplaceAll(escaped, "\t", " ")
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	return tryStrictParse(escaped)
}

// trySpanSalvage is the final fallback: parse every non-nested {...}
// span independently and keep the ones that decode. Spans that fail,
// and any nesting structure, are silently lost.
func trySpanSalvage(text string) (map[string]any, bool) {
	var salvaged []any
	for _, span := range bareObjectPattern.FindAllString(text, -1) {
		var obj map[string]any
		if err := json.Unmarshal([]byte(span), &obj); err == nil {
			salvaged = append(salvaged, obj)
		}
	}
	if len(salvaged) == 0 {
		return nil, false
	}
	log.Printf("menuparse: salvaged %d items from malformed model output", len(salvaged))
	return map[string]any{"items": salvaged}, true
}

func normalizeTopLevel(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case []any:
		return map[string]any{"items": t}, true
	default:
		return nil, false
	}
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if parts := strings.SplitN(s, "\n", 2); len(parts) == 2 {
		s = parts[1]
	} else {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	return s
}

func truncateForSnippet(raw string) string {
	if len(raw) <= parseFailureSnippetLen {
		return raw
	}
	return raw[:parseFailureSnippetLen]
}
