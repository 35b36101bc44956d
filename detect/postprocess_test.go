package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomscan-ai/roomscan/images"
)

// makeOutput builds a zeroed raw output tensor for vocabSize classes and
// writes the given candidates into it.
type candidate struct {
	index      int
	cx, cy     float32
	w, h       float32
	classID    int
	classScore float32
}

func makeOutput(vocabSize int, candidates ...candidate) []float32 {
	data := make([]float32, (boxFields+vocabSize)*numCandidates)
	for _, c := range candidates {
		data[0*numCandidates+c.index] = c.cx
		data[1*numCandidates+c.index] = c.cy
		data[2*numCandidates+c.index] = c.w
		data[3*numCandidates+c.index] = c.h
		data[(boxFields+c.classID)*numCandidates+c.index] = c.classScore
	}
	return data
}

// TestDecodeOutput verifies box decoding (center/size -> normalized
// corners), arg-max class selection, and the confidence gate.
func TestDecodeOutput(t *testing.T) {
	const vocabSize = 3
	data := makeOutput(vocabSize,
		candidate{index: 0, cx: 320, cy: 320, w: 320, h: 320, classID: 1, classScore: 0.8},
		candidate{index: 1, cx: 64, cy: 64, w: 64, h: 64, classID: 2, classScore: 0.1}, // below threshold
	)

	results := decodeOutput(data, vocabSize, 0.3)
	require.Len(t, results, 1, "only the confident candidate survives")

	r := results[0]
	assert.Equal(t, 1, r.Class)
	assert.InDelta(t, 0.8, float64(r.Score), 1e-6)
	assert.InDelta(t, 0.25, r.Box.X1, 1e-6)
	assert.InDelta(t, 0.25, r.Box.Y1, 1e-6)
	assert.InDelta(t, 0.75, r.Box.X2, 1e-6)
	assert.InDelta(t, 0.75, r.Box.Y2, 1e-6)
}

// TestDecodeOutputClampsBoxes verifies boxes spilling past the frame edge
// are clamped to [0,1].
func TestDecodeOutputClampsBoxes(t *testing.T) {
	data := makeOutput(1,
		candidate{index: 5, cx: 620, cy: 10, w: 100, h: 100, classID: 0, classScore: 0.9},
	)

	results := decodeOutput(data, 1, 0.3)
	require.Len(t, results, 1)
	box := results[0].Box
	assert.Equal(t, 1.0, box.X2, "right edge clamps to 1")
	assert.Equal(t, 0.0, box.Y1, "top edge clamps to 0")
	assert.GreaterOrEqual(t, box.X1, 0.0)
	assert.LessOrEqual(t, box.Y2, 1.0)
}

// TestDecodeOutputArgMax verifies the best class wins per candidate.
func TestDecodeOutputArgMax(t *testing.T) {
	const vocabSize = 4
	data := make([]float32, (boxFields+vocabSize)*numCandidates)
	// Geometry for candidate 7.
	data[0*numCandidates+7] = 320
	data[1*numCandidates+7] = 320
	data[2*numCandidates+7] = 100
	data[3*numCandidates+7] = 100
	// Competing class scores.
	data[(boxFields+0)*numCandidates+7] = 0.4
	data[(boxFields+2)*numCandidates+7] = 0.7
	data[(boxFields+3)*numCandidates+7] = 0.5

	results := decodeOutput(data, vocabSize, 0.3)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Class)
	assert.InDelta(t, 0.7, float64(results[0].Score), 1e-6)
}

func TestDecodeOutputShortTensor(t *testing.T) {
	assert.Nil(t, decodeOutput(make([]float32, 10), 3, 0.3))
}

// TestApplyGreedyNMS verifies overlap suppression is class-agnostic and
// keeps the higher-scoring box.
func TestApplyGreedyNMS(t *testing.T) {
	overlapping := []result{
		{Box: images.Rect{X1: 0.1, Y1: 0.1, X2: 0.5, Y2: 0.5}, Score: 0.6, Class: 0},
		{Box: images.Rect{X1: 0.12, Y1: 0.11, X2: 0.51, Y2: 0.52}, Score: 0.9, Class: 1},
		{Box: images.Rect{X1: 0.7, Y1: 0.7, X2: 0.9, Y2: 0.9}, Score: 0.5, Class: 0},
	}

	survivors := applyGreedyNMS(overlapping, 0.45)
	require.Len(t, survivors, 2)
	assert.InDelta(t, 0.9, float64(survivors[0].Score), 1e-6,
		"the higher-scoring box of the overlapping pair survives, regardless of class")
	assert.InDelta(t, 0.5, float64(survivors[1].Score), 1e-6)
}

func TestApplyGreedyNMSEmpty(t *testing.T) {
	assert.Nil(t, applyGreedyNMS(nil, 0.45))
}

// TestCategoryFor verifies the keyword table and the "other" fallback.
func TestCategoryFor(t *testing.T) {
	assert.Equal(t, "furniture", CategoryFor("chair"))
	assert.Equal(t, "furniture", CategoryFor("Coffee Table"))
	assert.Equal(t, "decor", CategoryFor("floor lamp"))
	assert.Equal(t, "appliances", CategoryFor("washing machine"))
	assert.Equal(t, "books", CategoryFor("book"))
	assert.Equal(t, "other", CategoryFor("flux capacitor"))
}
