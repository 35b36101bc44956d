package describe

import (
	"encoding/json"
	"strings"
)

// rawObject mirrors the JSON schema the prompt requests. Fields the backend
// omits decode to zero values.
type rawObject struct {
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	IsBook           bool      `json:"is_book"`
	NeedsCloserLook  bool      `json:"needs_closer_look"`
	CloserLookReason string    `json:"closer_look_reason"`
	Confidence       float64   `json:"confidence"`
	BBox2D           []float64 `json:"bbox_2d"`
	VoiceContext     string    `json:"voice_context"`
	EstimatedValue   *float64  `json:"estimated_value_usd"`
	Condition        string    `json:"condition"`
}

// parseObjects decodes the backend's free-form reply into objects. Models
// wrap JSON in Markdown fences, emit Python literals, or pad the array with
// prose, so parsing is multi-attempt:
//
//  1. strip a surrounding code fence,
//  2. normalize True/False/None to JSON literals,
//  3. try a full-document parse (array or single object),
//  4. fall back to the substring between the first '[' and the last ']'.
//
// Anything still unparseable yields an empty list; the caller logs it.
func parseObjects(text string) []rawObject {
	text = strings.TrimSpace(text)
	text = stripCodeFence(text)
	fixed := normalizePythonLiterals(text)

	for _, attempt := range []string{fixed, text} {
		if objs, ok := tryParse(attempt); ok {
			return objs
		}
	}

	for _, attempt := range []string{fixed, text} {
		start := strings.Index(attempt, "[")
		end := strings.LastIndex(attempt, "]")
		if start == -1 || end <= start {
			continue
		}
		if objs, ok := tryParse(attempt[start : end+1]); ok {
			return objs
		}
	}

	return nil
}

// tryParse accepts either a JSON array of objects or a single object.
func tryParse(text string) ([]rawObject, bool) {
	var list []rawObject
	if err := json.Unmarshal([]byte(text), &list); err == nil {
		return list, true
	}
	var single rawObject
	if err := json.Unmarshal([]byte(text), &single); err == nil && single.Name != "" {
		return []rawObject{single}, true
	}
	return nil, false
}

// stripCodeFence removes a leading ``` or ```json fence and its closer.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if idx := strings.Index(text, "\n"); idx != -1 {
		text = text[idx+1:]
	}
	if idx := strings.LastIndex(text, "```"); idx != -1 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// normalizePythonLiterals rewrites Python-style booleans and None that some
// models emit inside otherwise valid JSON.
func normalizePythonLiterals(text string) string {
	r := strings.NewReplacer(
		": True", ": true",
		": False", ": false",
		": None", ": null",
	)
	return r.Replace(text)
}
