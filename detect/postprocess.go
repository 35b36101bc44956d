package detect

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/roomscan-ai/roomscan/images"
)

// result is one decoded candidate before category mapping.
type result struct {
	// Box is normalized to [0,1] in model input space.
	Box images.Rect
	// Score is the arg-max class score.
	Score float32
	// Class is the vocabulary index.
	Class int
}

// decodeOutput converts the raw (1, 4+N, 8400) tensor into candidates above
// the confidence threshold. The tensor layout is channel-major: field c of
// candidate i lives at data[c*numCandidates + i]. Geometry arrives as
// (cx, cy, w, h) in model input pixels and is converted to normalized,
// clamped corners.
func decodeOutput(data []float32, vocabSize int, confThreshold float32) []result {
	fields := boxFields + vocabSize
	if len(data) < fields*numCandidates {
		return nil
	}

	results := make([]result, 0, 64)
	for i := 0; i < numCandidates; i++ {
		classID := 0
		maxScore := float32(0)
		for c := 0; c < vocabSize; c++ {
			score := data[(boxFields+c)*numCandidates+i]
			if score > maxScore {
				maxScore = score
				classID = c
			}
		}
		if maxScore < confThreshold {
			continue
		}

		cx := data[0*numCandidates+i]
		cy := data[1*numCandidates+i]
		w := data[2*numCandidates+i]
		h := data[3*numCandidates+i]

		results = append(results, result{
			Box: images.Rect{
				X1: normCoord(cx - w/2),
				Y1: normCoord(cy - h/2),
				X2: normCoord(cx + w/2),
				Y2: normCoord(cy + h/2),
			},
			Score: maxScore,
			Class: classID,
		})
	}
	return results
}

// normCoord scales a model-input-space pixel coordinate to [0,1] and clamps.
func normCoord(v float32) float64 {
	return float64(math32.Min(1, math32.Max(0, v/InputSize)))
}

// applyGreedyNMS performs class-agnostic greedy Non-Maximum Suppression:
// candidates are visited in descending score order, each survivor suppresses
// every remaining candidate whose IoU with it exceeds the threshold.
func applyGreedyNMS(results []result, iouThreshold float64) []result {
	n := len(results)
	if n == 0 {
		return nil
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	filtered := make([]result, 0, n)
	used := make([]bool, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}
		anchor := results[i]
		filtered = append(filtered, anchor)
		used[i] = true

		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}
			if images.CalculateIoU(anchor.Box, results[j].Box) > iouThreshold {
				used[j] = true
			}
		}
	}

	return filtered
}
