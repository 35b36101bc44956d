package describe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObjectsPlainArray(t *testing.T) {
	text := `[{"name": "table lamp", "description": "brass lamp", "category": "lighting", "confidence": 0.9}]`

	objs := parseObjects(text)

	require.Len(t, objs, 1)
	assert.Equal(t, "table lamp", objs[0].Name)
	assert.Equal(t, "lighting", objs[0].Category)
	assert.InDelta(t, 0.9, objs[0].Confidence, 1e-9)
}

func TestParseObjectsStripsCodeFence(t *testing.T) {
	text := "```json\n[{\"name\": \"sofa\", \"confidence\": 0.8}]\n```"

	objs := parseObjects(text)

	require.Len(t, objs, 1)
	assert.Equal(t, "sofa", objs[0].Name)
}

func TestParseObjectsNormalizesPythonLiterals(t *testing.T) {
	text := `[{"name": "first edition book", "is_book": True, "needs_closer_look": True, "closer_look_reason": "check spine", "estimated_value_usd": None, "confidence": 0.7}]`

	objs := parseObjects(text)

	require.Len(t, objs, 1)
	assert.True(t, objs[0].IsBook)
	assert.True(t, objs[0].NeedsCloserLook)
	assert.Nil(t, objs[0].EstimatedValue)
}

func TestParseObjectsSubstringFallback(t *testing.T) {
	text := `Sure! Here are the objects I can see in the image:
[{"name": "armchair", "confidence": 0.85}, {"name": "side table", "confidence": 0.6}]
Let me know if you need more detail.`

	objs := parseObjects(text)

	require.Len(t, objs, 2)
	assert.Equal(t, "armchair", objs[0].Name)
	assert.Equal(t, "side table", objs[1].Name)
}

func TestParseObjectsSingleObject(t *testing.T) {
	text := `{"name": "grandfather clock", "category": "furniture", "confidence": 0.95}`

	objs := parseObjects(text)

	require.Len(t, objs, 1)
	assert.Equal(t, "grandfather clock", objs[0].Name)
}

func TestParseObjectsGarbageYieldsEmpty(t *testing.T) {
	for _, text := range []string{
		"",
		"I cannot identify any objects in this image.",
		"[not json at all",
		"{}",
	} {
		assert.Empty(t, parseObjects(text), "input: %q", text)
	}
}

func TestToSemanticObjectsNormalizesPixelBoxes(t *testing.T) {
	value := 120.0
	raw := []rawObject{{
		Name:           "painting",
		Description:    "oil landscape in gilt frame",
		Category:       "art",
		Confidence:     1.4,
		BBox2D:         []float64{160, 120, 480, 360},
		EstimatedValue: &value,
		Condition:      "good",
	}}

	objs := toSemanticObjects(raw, 640, 480, "narrator mentioned a painting")

	require.Len(t, objs, 1)
	obj := objs[0]
	assert.Equal(t, 1.0, obj.Confidence, "confidence clamps to 1.0")
	require.NotNil(t, obj.Box)
	assert.InDelta(t, 0.25, obj.Box.X1, 1e-9)
	assert.InDelta(t, 0.25, obj.Box.Y1, 1e-9)
	assert.InDelta(t, 0.75, obj.Box.X2, 1e-9)
	assert.InDelta(t, 0.75, obj.Box.Y2, 1e-9)
	assert.Equal(t, "narrator mentioned a painting", obj.VoiceContext,
		"frame snippet fills in when the object carries none")
	require.NotNil(t, obj.EstimatedValue)
	assert.Equal(t, 120.0, *obj.EstimatedValue)
}

func TestToSemanticObjectsKeepsPerObjectVoiceContext(t *testing.T) {
	raw := []rawObject{{Name: "lamp", VoiceContext: "the IKEA lamp from 2019", Confidence: 0.5}}

	objs := toSemanticObjects(raw, 640, 480, "frame snippet")

	require.Len(t, objs, 1)
	assert.Equal(t, "the IKEA lamp from 2019", objs[0].VoiceContext)
	assert.Nil(t, objs[0].Box, "no bbox_2d means no box")
}
