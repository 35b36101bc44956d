// Package dedupe - Cross-frame deduplication. A walkthrough sees the same
// object from many angles, so per-frame results are clustered by fuzzy
// name/description similarity and each cluster keeps its single most
// confident sighting.
package dedupe

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/roomscan-ai/roomscan/capture"
)

const (
	// nameMatchThreshold alone is enough to merge two sightings.
	nameMatchThreshold = 80
	// Weaker name agreement still merges when the descriptions agree.
	nameHintThreshold  = 60
	descMatchThreshold = 70
)

// cluster is one physical object. Similarity is always measured against the
// first sighting, which anchors the cluster; the reported object is the
// highest-confidence member.
type cluster struct {
	first capture.DetectedObject
	best  capture.DetectedObject
}

// Collapse flattens per-frame analyses in frame order and merges sightings
// of the same physical object. Clustering is greedy: each object joins the
// first cluster whose anchor it matches, otherwise it starts its own.
// Output order follows first sighting.
func Collapse(frames []capture.FrameAnalysis) []capture.DetectedObject {
	var clusters []cluster
	for _, frame := range frames {
		for _, obj := range frame.Objects {
			idx := matchingCluster(clusters, obj)
			if idx == -1 {
				clusters = append(clusters, cluster{first: obj, best: obj})
				continue
			}
			if obj.Confidence > clusters[idx].best.Confidence {
				clusters[idx].best = obj
			}
		}
	}

	unique := make([]capture.DetectedObject, 0, len(clusters))
	for _, c := range clusters {
		unique = append(unique, c.best)
	}
	return unique
}

// matchingCluster returns the index of the first cluster whose anchor obj is
// the same object as, or -1.
func matchingCluster(clusters []cluster, obj capture.DetectedObject) int {
	for i, c := range clusters {
		if sameObject(c.first, obj) {
			return i
		}
	}
	return -1
}

// sameObject decides whether two sightings refer to one physical object.
// Strong name similarity is sufficient; moderate name similarity needs the
// descriptions to corroborate.
func sameObject(a, b capture.DetectedObject) bool {
	nameSim := fuzzy.Ratio(strings.ToLower(a.Name), strings.ToLower(b.Name))
	if nameSim > nameMatchThreshold {
		return true
	}
	if nameSim > nameHintThreshold {
		descSim := fuzzy.Ratio(strings.ToLower(a.Description), strings.ToLower(b.Description))
		return descSim > descMatchThreshold
	}
	return false
}
