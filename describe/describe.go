// Package describe - Semantic object description via a vision-capable
// language backend. The backend is swappable (local multimodal endpoint or
// hosted API) behind one capability interface; pipeline logic never branches
// on which is configured.
package describe

import (
	"context"
	"time"

	"github.com/roomscan-ai/roomscan/capture"
	"github.com/roomscan-ai/roomscan/images"
)

// DefaultTimeout is deliberately generous: the model call is the dominant
// latency of the whole pipeline and a slow answer is still a useful answer.
const DefaultTimeout = 5 * time.Minute

// Describer is the capability interface for semantic vision backends.
type Describer interface {
	// Describe returns the objects the backend can identify in the frame at
	// framePath. voiceContext, when non-empty, is the narration snippet
	// aligned to this frame and is embedded in the request.
	Describe(ctx context.Context, framePath, voiceContext string) ([]capture.SemanticObject, error)
	// Name identifies the backend for logs.
	Name() string
}

// toSemanticObjects converts parsed wire objects into the capture model,
// normalizing pixel-space boxes against the frame's known dimensions and
// clamping to [0,1]. Objects without a usable box keep none.
func toSemanticObjects(raw []rawObject, width, height int, voiceContext string) []capture.SemanticObject {
	objects := make([]capture.SemanticObject, 0, len(raw))
	for _, r := range raw {
		obj := capture.SemanticObject{
			Name:             r.Name,
			Description:      r.Description,
			Category:         r.Category,
			IsBook:           r.IsBook,
			NeedsCloserLook:  r.NeedsCloserLook,
			CloserLookReason: r.CloserLookReason,
			Confidence:       images.Clamp01(r.Confidence),
			EstimatedValue:   r.EstimatedValue,
			Condition:        r.Condition,
		}
		if r.VoiceContext != "" {
			obj.VoiceContext = r.VoiceContext
		} else {
			obj.VoiceContext = voiceContext
		}
		if len(r.BBox2D) == 4 && width > 0 && height > 0 {
			box := images.NewRect(r.BBox2D[0], r.BBox2D[1], r.BBox2D[2], r.BBox2D[3], width, height)
			obj.Box = &box
		}
		objects = append(objects, obj)
	}
	return objects
}
