package transcribe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomscan-ai/roomscan/capture"
)

func transcriptOf(segments ...capture.Segment) *capture.Transcript {
	var texts []string
	for _, s := range segments {
		texts = append(texts, s.Text)
	}
	return &capture.Transcript{Segments: segments, FullText: strings.Join(texts, " ")}
}

// TestDetectRoomMentionsTriggerWins covers the canonical scenario: the
// segment "this is the kitchen, pretty small" yields exactly one mention at
// confidence 0.9, with no second 0.7 mention for the same instant.
func TestDetectRoomMentionsTriggerWins(t *testing.T) {
	mentions := DetectRoomMentions(transcriptOf(capture.Segment{
		Text:  "this is the kitchen, pretty small",
		Start: 4.2,
		End:   6.0,
	}))

	require.Len(t, mentions, 1)
	assert.Equal(t, "kitchen", mentions[0].RoomName)
	assert.Equal(t, 0.9, mentions[0].Confidence)
	assert.Equal(t, 4.2, mentions[0].Timestamp)
	assert.Equal(t, "this is the kitchen, pretty small", mentions[0].RawText)
}

// TestDetectRoomMentionsKnownToken verifies the lower-confidence pass.
func TestDetectRoomMentionsKnownToken(t *testing.T) {
	mentions := DetectRoomMentions(transcriptOf(capture.Segment{
		Text:  "lots of boxes stacked in the garage corner",
		Start: 12.0,
	}))

	require.Len(t, mentions, 1)
	assert.Equal(t, "garage", mentions[0].RoomName)
	assert.Equal(t, 0.7, mentions[0].Confidence)
}

// TestDetectRoomMentionsDedup verifies that two identical trigger-phrase
// matches at the same segment start never produce two entries.
func TestDetectRoomMentionsDedup(t *testing.T) {
	mentions := DetectRoomMentions(transcriptOf(capture.Segment{
		Text:  "this is the bedroom. this is the bedroom.",
		Start: 30.0,
	}))

	require.Len(t, mentions, 1)
	assert.Equal(t, "bedroom", mentions[0].RoomName)
	assert.Equal(t, 0.9, mentions[0].Confidence)
}

// TestDetectRoomMentionsLongPhraseRejected verifies that captured phrases
// over 40 characters do not become room mentions.
func TestDetectRoomMentionsLongPhraseRejected(t *testing.T) {
	mentions := DetectRoomMentions(transcriptOf(capture.Segment{
		Text:  "this is the absolutely enormous collection of vintage furniture we inherited",
		Start: 2.0,
	}))
	assert.Empty(t, mentions)
}

// TestDetectRoomMentionsDistinctTimestamps verifies the same room at
// different instants yields separate mentions.
func TestDetectRoomMentionsDistinctTimestamps(t *testing.T) {
	mentions := DetectRoomMentions(transcriptOf(
		capture.Segment{Text: "entering the kitchen now", Start: 1.0},
		capture.Segment{Text: "back in the kitchen again", Start: 45.0},
	))

	require.Len(t, mentions, 2)
	assert.Equal(t, 0.9, mentions[0].Confidence, "trigger phrase match")
	assert.Equal(t, 0.7, mentions[1].Confidence, "bare token match")
}

// TestDetectRoomMentionsTriggerVariants exercises the trigger phrase list.
func TestDetectRoomMentionsTriggerVariants(t *testing.T) {
	cases := []struct {
		text string
		room string
	}{
		{"entering the basement", "basement"},
		{"now in the dining room", "dining room"},
		{"here's the office", "office"},
		{"moving to the attic", "attic"},
		{"we're in the nursery", "nursery"},
	}
	for _, tc := range cases {
		mentions := DetectRoomMentions(transcriptOf(capture.Segment{Text: tc.text, Start: 1.0}))
		require.NotEmpty(t, mentions, "expected mention for %q", tc.text)
		assert.Equal(t, tc.room, mentions[0].RoomName, "text %q", tc.text)
		assert.Equal(t, 0.9, mentions[0].Confidence)
	}
}

func TestDetectRoomMentionsNilTranscript(t *testing.T) {
	assert.Empty(t, DetectRoomMentions(nil))
}
