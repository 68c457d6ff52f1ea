// Package validate sanitizes candidate memory cards coming back from the
// language model. The model's output is untrusted: any single field that
// fails its rule rejects the whole candidate, so the store never holds a
// card with a missing title or non-array action items.
package validate

import (
	"strconv"
	"strings"

	"github.com/echonote/echonote/internal/model"
)

// SanitizeCandidate checks an untyped JSON value against the memory card
// contract and returns the cleaned card. ok is false when the value is not
// a JSON object, when title or mood is missing or blank, or when category
// or action_items is present with a non-array type. A present-but-empty
// array is fine. Sanitizing an already-clean card is a no-op.
func SanitizeCandidate(v any) (model.CandidateCard, bool) {
	obj, isObj := v.(map[string]any)
	if !isObj {
		return model.CandidateCard{}, false
	}

	title := trimString(obj["title"])
	mood := trimString(obj["mood"])

	category, catOK := stringSlice(obj["category"])
	actionItems, aiOK := stringSlice(obj["action_items"])

	if title == "" || mood == "" || !catOK || !aiOK {
		return model.CandidateCard{}, false
	}

	return model.CandidateCard{
		Title:       title,
		Category:    category,
		ActionItems: actionItems,
		Mood:        mood,
	}, true
}

// trimString returns the trimmed value when v is a string, "" otherwise.
func trimString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// stringSlice coerces an array value into trimmed strings, dropping
// elements that are blank after trimming. ok is false when v is not an
// array at all; a missing field is a missing array, not an empty one.
func stringSlice(v any) ([]string, bool) {
	arr, isArr := v.([]any)
	if !isArr {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		s := coerceString(el)
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out, true
}

// coerceString renders JSON scalars to text. Nested objects and arrays do
// not coerce; they come back empty and are dropped by the caller.
func coerceString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
