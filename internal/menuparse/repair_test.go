package menuparse

import (
	"errors"
	"strings"
	"testing"
)

func TestRepairJSONValidObject(t *testing.T) {
	doc, err := RepairJSON(`{"items":[{"item_name":"Tea","price":20}],"extraction_metadata":{"total_items_extracted":1}}`)
	if err != nil {
		t.Fatalf("RepairJSON: %v", err)
	}
	items, ok := doc["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("expected 1 item, got %v", doc["items"])
	}
	if _, ok := doc["extraction_metadata"]; !ok {
		t.Fatal("metadata lost during repair")
	}
}

func TestRepairJSONTopLevelArray(t *testing.T) {
	doc, err := RepairJSON(`[{"item_name":"Tea","price":20}]`)
	if err != nil {
		t.Fatalf("RepairJSON: %v", err)
	}
	items, ok := doc["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("array should be wrapped as items, got %v", doc)
	}
}

func TestRepairJSONCodeFence(t *testing.T) {
	for _, raw := range []string{
		"```json\n{\"items\":[]}\n```",
		"```\n{\"items\":[]}\n```",
	} {
		doc, err := RepairJSON(raw)
		if err != nil {
			t.Fatalf("RepairJSON(%q): %v", raw, err)
		}
		if _, ok := doc["items"]; !ok {
			t.Fatalf("missing items in %v", doc)
		}
	}
}

func TestRepairJSONTrailingGarbage(t *testing.T) {
	doc, err := RepairJSON(`{"items":[]} -- done`)
	if err != nil {
		t.Fatalf("RepairJSON: %v", err)
	}
	items, ok := doc["items"].([]any)
	if !ok || len(items) != 0 {
		t.Fatalf("expected empty items array, got %v", doc["items"])
	}
}

func TestRepairJSONPythonLiterals(t *testing.T) {
	doc, err := RepairJSON(`{"items":[{"item_name":"Tea","description": None,"available": True}]}`)
	if err != nil {
		t.Fatalf("RepairJSON: %v", err)
	}
	items := doc["items"].([]any)
	item := items[0].(map[string]any)
	if item["description"] != nil {
		t.Fatalf("None should become null, got %v", item["description"])
	}
	if item["available"] != true {
		t.Fatalf("True should become true, got %v", item["available"])
	}
}

func TestRepairJSONSalvagesPartialObjects(t *testing.T) {
	raw := `{"items":[{"item_name":"Tea","price":20},{"item_name":"Coffee","price":30},{"item_name":"Broken","price":`
	doc, err := RepairJSON(raw)
	if err != nil {
		t.Fatalf("RepairJSON: %v", err)
	}
	items, ok := doc["items"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("expected 2 salvaged items, got %v", doc["items"])
	}
	first := items[0].(map[string]any)
	if first["item_name"] != "Tea" {
		t.Fatalf("unexpected first item: %v", first)
	}
}

func TestRepairJSONEmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t"} {
		_, err := RepairJSON(raw)
		var pf *ParseFailure
		if !errors.As(err, &pf) {
			t.Fatalf("RepairJSON(%q): expected ParseFailure, got %v", raw, err)
		}
	}
}

func TestRepairJSONUnrecoverableCarriesBoundedSnippet(t *testing.T) {
	raw := strings.Repeat("not json at all ", 100)
	_, err := RepairJSON(raw)
	var pf *ParseFailure
	if !errors.As(err, &pf) {
		t.Fatalf("expected ParseFailure, got %v", err)
	}
	if len(pf.Snippet) > 500 {
		t.Fatalf("snippet too long: %d chars", len(pf.Snippet))
	}
	if !strings.HasPrefix(raw, pf.Snippet) {
		t.Fatal("snippet should be a prefix of the raw text")
	}
}

func TestRepairJSONIdempotentOnValidJSON(t *testing.T) {
	raw := `{"items":[{"item_name":"Tea","price":20}]}`
	first, err := RepairJSON(raw)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	second, err := RepairJSON(raw)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(first["items"].([]any)) != len(second["items"].([]any)) {
		t.Fatal("repair must be stable on valid input")
	}
}
