// Package fuse - Per-frame fusion of spatial detections with semantic
// descriptions. The spatial detector contributes trustworthy boxes over a
// fixed vocabulary; the semantic describer contributes rich open-vocabulary
// names and attributes. Fusion pairs them so each reported object carries
// the best of both.
package fuse

import (
	"math"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/roomscan-ai/roomscan/capture"
	"github.com/roomscan-ai/roomscan/images"
)

const (
	// iouWeight and nameWeight blend spatial overlap with name similarity
	// into one match score. Overlap dominates: two boxes on the same spot
	// are the same object even when the names diverge.
	iouWeight  = 0.7
	nameWeight = 0.3

	// matchThreshold is the minimum blended score for a spatial detection
	// to claim a semantic object.
	matchThreshold = 0.3

	// unmatchedSemanticConfidence is assigned to semantic objects no
	// spatial detection corroborated.
	unmatchedSemanticConfidence = 0.6
)

// Merge combines one frame's spatial detections and semantic objects into a
// single object list. Each spatial detection greedily claims the
// highest-scoring unclaimed semantic object; claimed pairs merge the
// semantic identity with the spatial box, unmatched detections fall back to
// their class name, and unclaimed semantic objects pass through at reduced
// confidence. frameVoiceContext fills objects whose description carried no
// snippet of its own.
func Merge(spatial []capture.RawDetection, semantic []capture.SemanticObject, frameVoiceContext string) []capture.DetectedObject {
	merged := make([]capture.DetectedObject, 0, len(spatial)+len(semantic))
	claimed := make([]bool, len(semantic))

	for _, det := range spatial {
		best := -1
		bestScore := 0.0
		for i, sem := range semantic {
			if claimed[i] {
				continue
			}
			score := matchScore(det, sem)
			if score > matchThreshold && score > bestScore {
				best = i
				bestScore = score
			}
		}

		if best >= 0 {
			claimed[best] = true
			merged = append(merged, fusePair(det, semantic[best], bestScore, frameVoiceContext))
			continue
		}

		box := det.Box
		merged = append(merged, capture.DetectedObject{
			Name:         titleCase(det.ClassName),
			Description:  "Detected " + det.ClassName,
			Category:     det.Category,
			IsBook:       det.ClassName == "book",
			Confidence:   round2(det.Confidence),
			BoundingBox:  &box,
			VoiceContext: frameVoiceContext,
		})
	}

	for i, sem := range semantic {
		if claimed[i] {
			continue
		}
		obj := fromSemantic(sem, frameVoiceContext)
		obj.Confidence = unmatchedSemanticConfidence
		merged = append(merged, obj)
	}

	return merged
}

// matchScore blends box IoU and fuzzy name similarity into [0,1]. A missing
// semantic box contributes zero overlap, leaving the name term to decide.
func matchScore(det capture.RawDetection, sem capture.SemanticObject) float64 {
	iou := 0.0
	if sem.Box != nil {
		iou = images.CalculateIoU(det.Box, *sem.Box)
	}
	sim := float64(fuzzy.PartialRatio(
		strings.ToLower(det.ClassName),
		strings.ToLower(sem.Name),
	)) / 100.0
	return iouWeight*iou + nameWeight*sim
}

// fusePair keeps the semantic identity and the spatial box. Confidence
// averages the spatial confidence with the match score so a strong match
// raises the pair above either source alone.
func fusePair(det capture.RawDetection, sem capture.SemanticObject, score float64, frameVoiceContext string) capture.DetectedObject {
	obj := fromSemantic(sem, frameVoiceContext)
	box := det.Box
	obj.BoundingBox = &box
	obj.Confidence = round2(math.Min(1.0, (det.Confidence+score)/2.0))
	if obj.Category == "" {
		obj.Category = det.Category
	}
	return obj
}

func fromSemantic(sem capture.SemanticObject, frameVoiceContext string) capture.DetectedObject {
	voice := sem.VoiceContext
	if voice == "" {
		voice = frameVoiceContext
	}
	return capture.DetectedObject{
		Name:             sem.Name,
		Description:      sem.Description,
		Category:         sem.Category,
		IsBook:           sem.IsBook,
		NeedsCloserLook:  sem.NeedsCloserLook,
		CloserLookReason: sem.CloserLookReason,
		Confidence:       round2(sem.Confidence),
		BoundingBox:      sem.Box,
		VoiceContext:     voice,
		EstimatedValue:   sem.EstimatedValue,
		Condition:        sem.Condition,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// titleCase capitalizes each word of a detector class name ("table lamp" ->
// "Table Lamp") for objects only the spatial detector saw.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
