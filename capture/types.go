// Package capture - Shared data model for one room-walkthrough capture run.
//
// Every type here is created by exactly one pipeline stage and never mutated
// after it is handed to the next stage. All confidences are in [0,1] and all
// bounding boxes are normalized to the frame's own width/height.
package capture

import (
	"fmt"

	"github.com/roomscan-ai/roomscan/images"
)

// RawFrame is a single still extracted from a capture, persisted to disk so
// later stages can reference it by path.
type RawFrame struct {
	// Index is dense and zero-based within one capture.
	Index int `json:"index"`
	// Path is the on-disk location of the encoded frame.
	Path string `json:"path"`
	// Timestamp is seconds from capture start.
	Timestamp float64 `json:"timestamp"`
}

// Word is a single transcribed word with timing.
type Word struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

// Segment is one transcribed utterance with word-level timestamps.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

// Transcript is the full speech-to-text result for one capture.
type Transcript struct {
	Segments []Segment `json:"segments"`
	FullText string    `json:"full_text"`
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
}

// FrameVoiceContext is the narration snippet temporally aligned to one frame.
type FrameVoiceContext struct {
	FrameIndex     int     `json:"frame_index"`
	FrameTimestamp float64 `json:"frame_timestamp"`
	Snippet        string  `json:"snippet"`
	Words          []Word  `json:"words"`
}

// RoomMention is a room name spotted in the narration. Mentions are only
// textually deduplicated by (lowercased name, timestamp rounded to 0.1s);
// reconciling them against a room registry is the caller's job.
type RoomMention struct {
	RoomName   string  `json:"room_name"`
	Timestamp  float64 `json:"timestamp"`
	RawText    string  `json:"raw_text"`
	Confidence float64 `json:"confidence"`
}

// RawDetection is one spatial-detector hit: a fixed-vocabulary class with a
// normalized box.
type RawDetection struct {
	ClassName  string      `json:"class_name"`
	Confidence float64     `json:"confidence"`
	Box        images.Rect `json:"bbox"`
	Category   string      `json:"category"`
}

// SemanticObject is one object reported by the semantic describer backend.
// The box is optional because the backend is free to omit it.
type SemanticObject struct {
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	Category         string       `json:"category"`
	IsBook           bool         `json:"is_book"`
	NeedsCloserLook  bool         `json:"needs_closer_look"`
	CloserLookReason string       `json:"closer_look_reason,omitempty"`
	Confidence       float64      `json:"confidence"`
	Box              *images.Rect `json:"bbox,omitempty"`
	VoiceContext     string       `json:"voice_context,omitempty"`
	EstimatedValue   *float64     `json:"estimated_value_usd,omitempty"`
	Condition        string       `json:"condition,omitempty"`
}

// DetectedObject is the fused unit returned to the caller, both pre- and
// post- cross-frame deduplication. Name is always non-empty.
type DetectedObject struct {
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	Category         string       `json:"category"`
	IsBook           bool         `json:"is_book"`
	NeedsCloserLook  bool         `json:"needs_closer_look"`
	CloserLookReason string       `json:"closer_look_reason,omitempty"`
	Confidence       float64      `json:"confidence"`
	BoundingBox      *images.Rect `json:"bounding_box,omitempty"`
	VoiceContext     string       `json:"voice_context,omitempty"`
	EstimatedValue   *float64     `json:"estimated_value_usd,omitempty"`
	Condition        string       `json:"condition,omitempty"`
}

// FrameAnalysis holds everything the per-frame stage produced for one
// quality frame.
type FrameAnalysis struct {
	FrameIndex     int              `json:"frame_index"`
	FramePath      string           `json:"frame_path"`
	FrameTimestamp float64          `json:"frame_timestamp"`
	Objects        []DetectedObject `json:"objects"`
	VoiceContext   string           `json:"voice_context,omitempty"`
}

// ModeSwitchPrompt suggests switching to close-up capture when one or more
// objects could not be fully identified from the walkthrough footage.
type ModeSwitchPrompt struct {
	Reason          string   `json:"reason"`
	Items           []string `json:"items"`
	SuggestedAction string   `json:"suggested_action"`
}

// NewModeSwitchPrompt builds the prompt from the flagged objects, or returns
// nil when nothing needs a closer look.
func NewModeSwitchPrompt(objects []DetectedObject) *ModeSwitchPrompt {
	var items []string
	for _, obj := range objects {
		if obj.NeedsCloserLook {
			items = append(items, obj.Name+": "+obj.CloserLookReason)
		}
	}
	if len(items) == 0 {
		return nil
	}
	return &ModeSwitchPrompt{
		Reason:          fmt.Sprintf("Found %d items that need closer inspection", len(items)),
		Items:           items,
		SuggestedAction: "Switch to image mode for better detail",
	}
}
