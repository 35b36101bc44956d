package describe

import "fmt"

// basePrompt asks the backend for a strict JSON array of objects. The
// bbox_2d coordinates are requested in source pixels; normalization against
// the frame dimensions happens on our side.
const basePrompt = `Analyze this image of a room in a home. Identify every distinct object you can see.

For EACH object, return a JSON object with these fields:
- "name": short descriptive name (include brand/model/color if visible)
- "description": 1-2 sentences about color, material, size, condition
- "category": one of [electronics, furniture, kitchenware, books, clothing, tools, decor, appliances, sports, toys, musical_instruments, other]
- "is_book": true only if it's a book, magazine, or printed material
- "needs_closer_look": true if you cannot fully identify this item and a closer photo would help (partially hidden, text too small, barcode visible but unreadable)
- "closer_look_reason": if needs_closer_look is true, explain why
- "confidence": float 0.0-1.0 of identification confidence
- "estimated_value_usd": rough replacement value estimate (null if uncertain)
- "condition": one of [new, good, fair, poor] based on visible appearance
- "bbox_2d": [x1, y1, x2, y2] pixel coordinates of the bounding box

Return ONLY a JSON array, no other text. Be thorough - include everything from large furniture to small items on shelves. Prefer being specific ("IKEA KALLAX shelf unit, white, 4x4") over generic ("bookshelf"). Example:
[{"name": "Black floor lamp", "description": "Tall adjustable metal floor lamp with matte black finish and fabric shade.", "category": "decor", "is_book": false, "needs_closer_look": false, "confidence": 0.9, "bbox_2d": [120, 50, 340, 580]}]`

// voicePreamble is prepended when the frame has aligned narration. The
// extra voice_context field lets the backend echo which part of the
// narration pertains to each object.
const voicePreamble = `The person recording this walkthrough narrated the following at this moment:
"%s"

Use their narration as additional context:
- If they mention a brand, model, or origin, incorporate that into the object name and description
- If they describe an object's purpose or history, include it in the description
- When narration confirms what you see visually, increase your confidence score
- For each object, include a "voice_context" field with the part of the narration that relates to it (null if none)

`

// buildPrompt returns the instruction text, with the narration preamble
// when a snippet is present.
func buildPrompt(voiceContext string) string {
	if voiceContext == "" {
		return basePrompt
	}
	return fmt.Sprintf(voicePreamble, voiceContext) + basePrompt
}
