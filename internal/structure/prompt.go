package structure

import "fmt"

// cardSchema is the strict response format sent with every structuring
// request. The model is told to emit exactly these four fields.
var cardSchema = map[string]any{
	"type":   "json_schema",
	"name":   "memory_card",
	"strict": true,
	"schema": map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"title", "category", "action_items", "mood"},
		"properties": map[string]any{
			"title":        map[string]any{"type": "string"},
			"category":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"action_items": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"mood":         map[string]any{"type": "string"},
		},
	},
}

// buildPrompt embeds the transcript verbatim into the fixed instruction
// template. Adherence to the rules is not guaranteed here; the validator
// downstream enforces shape.
func buildPrompt(transcript string) string {
	return fmt.Sprintf(`Return ONLY a JSON object matching the schema.

Rules:
- title: short and human (max ~8 words)
- category: 1-4 short tags (Personal/Work/Health/Idea/Chore/School/etc.)
- action_items: only concrete next steps; can be []
- mood: one word or short phrase

Transcript:
"""%s"""`, transcript)
}
