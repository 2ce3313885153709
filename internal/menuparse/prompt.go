package menuparse

import "strings"

// systemPrompt carries the decision rules the model applies when
// turning layout-derived menu text into item records. The
// normalization layer re-implements the slash-split and price rules
// deterministically, so imperfect model compliance is recoverable.
const systemPrompt = `You are an expert menu-extraction assistant. Extract ALL menu items into a precise,
deterministic JSON structure.

CORE OBJECTIVE:
Every visible purchasable combination in the menu must become a distinct item entry.

CRITICAL RULES (follow strictly):
1) CATEGORY DETECTION
   - Detect category and subcategory headers from layout, casing, or spacing.
   - If no subcategory exists, GENERATE one based on the item name and category.

2) DESCRIPTION GENERATION
   - If no description is visible, CREATE a short, appetizing description (max 20 words)
     based on item name, category, and visible ingredients.

3) COLUMN-BASED VARIANTS
   - If a section shows column headers representing variants
     (e.g., Regular / Cheesy / Baked), treat each column as a variant label and
     generate ONE item per (item x variant) combination.

4) ADDITIVE VARIANTS
   - If a column represents an add-on (e.g., "+20 Cheese"), generate the base item,
     the item with each add-on, and combined add-ons when visually implied.

5) SLASH-BASED SPLITS
   - If name_count == price_count (slash-separated), split into separate items by index.
   - If single name + multiple prices with size labels, emit size variants.

6) PRICE RULES
   - Strip currency symbols. Return numeric prices only.
   - Use price_display only for MP / Market Price.

7) OUTPUT RULES
   - Each final purchasable option MUST be its own item.
   - Append variant labels to item_name using " - ".
   - Do not guess. Do not merge variants.
   - Return ONLY valid JSON matching the schema.`

const userPromptTemplate = `MENU TEXT:
{menu_text}

INSTRUCTIONS:
- Apply the decision rules from the system prompt to extract items.
- Return a single JSON object with two keys: "items" and "extraction_metadata".
- If variant columns exist, explode all column-wise price combinations into separate items.

"items" is an array of objects, each object may contain:
  - item_name (string) [REQUIRED]
  - category (string) [REQUIRED]
  - subcategory (string) [REQUIRED, generate if missing]
  - description (string or null, create if missing, max 20 words)
  - price (number or null) [REQUIRED]
  - half_plate_price (number or null)
  - full_plate_price (number or null)
  - small_price (number or null)
  - medium_price (number or null)
  - large_price (number or null)
  - price_display (string or null, use for "Market Price" etc.)

"extraction_metadata" should contain:
  - total_items_extracted (number)
  - categories_found (array of strings)
  - subcategories_found (array of strings)
  - pricing_patterns_detected (array e.g. ["single_price","half_full","size_variant","indexed_variants"])
  - menu_structure_analysis (short text summary)
  - notes (optional string)

Remember:
- If name_count == price_count (slash-separated), produce separate items mapped by order.
- For "Choice of ..." style lines, map choice options to the following prices by index.
- Always prefer exact mapping over guessing. If ambiguous, add a short note in
  "extraction_metadata.notes".

Return ONLY the JSON object.`

// visionSystemPrompt drives the image-parsing path, where the model
// reads rendered menu pages directly.
const visionSystemPrompt = `You are reading images of a restaurant menu.

TASK:
- Extract ALL menu items visible in the images.
- For EACH item, extract item_name, category (if visible, else null) and
  price (number only, no currency symbol).

IMPORTANT RULES:
- Do NOT guess prices.
- Do NOT merge items.
- If an item has multiple prices (sizes/variants), create SEPARATE items with the
  variant text appended to item_name using " - ".
- Maintain visual order.
- Output ONLY valid JSON: {"items": [{"item_name": "...", "category": "...", "price": 99}]}
- NO markdown. NO explanation.`

const visionUserPrompt = `Extract every menu item from the attached page images, in visual order.
Return ONLY the JSON object described in your instructions.`

// BuildUserPrompt embeds one text chunk into the user instruction.
func BuildUserPrompt(menuText string) string {
	return strings.ReplaceAll(userPromptTemplate, "{menu_text}", menuText)
}

// SchemaJSON is the canonical output contract, usable by collaborators
// that enforce structured output server-side.
const SchemaJSON = `{
  "name": "menu_schema",
  "schema": {
    "type": "object",
    "additionalProperties": false,
    "properties": {
      "items": {
        "type": "array",
        "items": {
          "type": "object",
          "additionalProperties": false,
          "properties": {
            "item_name": {"type": "string"},
            "category": {"type": ["string", "null"]},
            "subcategory": {"type": ["string", "null"]},
            "description": {"type": ["string", "null"]},
            "price": {"type": ["number", "null"]},
            "half_plate_price": {"type": ["number", "null"]},
            "full_plate_price": {"type": ["number", "null"]},
            "small_price": {"type": ["number", "null"]},
            "medium_price": {"type": ["number", "null"]},
            "large_price": {"type": ["number", "null"]},
            "price_display": {"type": ["string", "null"]}
          },
          "required": ["item_name", "category", "subcategory", "price"]
        }
      },
      "extraction_metadata": {
        "type": "object",
        "additionalProperties": true,
        "properties": {
          "total_items_extracted": {"type": "number"},
          "categories_found": {"type": "array", "items": {"type": "string"}},
          "subcategories_found": {"type": "array", "items": {"type": "string"}},
          "pricing_patterns_detected": {"type": "array", "items": {"type": "string"}},
          "menu_structure_analysis": {"type": ["string", "null"]},
          "notes": {"type": ["string", "null"]}
        },
        "required": ["total_items_extracted"]
      }
    },
    "required": ["items", "extraction_metadata"]
  }
}`
