package transcribe

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/roomscan-ai/roomscan/capture"
)

const (
	// triggerConfidence applies to trigger-phrase matches ("this is the ...").
	triggerConfidence = 0.9
	// knownRoomConfidence applies to bare known-room tokens anywhere in text.
	knownRoomConfidence = 0.7
	// maxRoomPhraseLen rejects captured phrases unlikely to be room names.
	maxRoomPhraseLen = 40
)

// triggerPhrases matches high-confidence room announcements and captures
// the room phrase that follows, up to punctuation or end of text.
var triggerPhrases = regexp.MustCompile(
	`(?i)\b(?:this is(?: the)?|entering(?: the)?|now in(?: the)?|here'?s(?: the)?|` +
		`moving (?:to|into)(?: the)?|we'?re in(?: the)?)\s+(.+?)(?:[.,]|$)`,
)

// knownRooms are room names worth flagging even without a trigger phrase.
var knownRooms = []string{
	"kitchen", "living room", "bedroom", "bathroom", "garage", "basement",
	"attic", "dining room", "office", "study", "laundry room", "pantry",
	"closet", "hallway", "entryway", "nursery", "guest room",
	"master bedroom", "den", "porch", "patio", "sunroom",
}

var knownRoomsPattern = regexp.MustCompile(
	`(?i)\b(` + strings.Join(quoteAll(knownRooms), "|") + `)\b`,
)

func quoteAll(names []string) []string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return quoted
}

// DetectRoomMentions scans each segment's text for room names. Trigger
// phrases score 0.9; bare known-room tokens score 0.7. Mentions are
// deduplicated by (lowercased room name, timestamp rounded to one decimal)
// so the same phrase matched by both passes is emitted once per instant.
func DetectRoomMentions(t *capture.Transcript) []capture.RoomMention {
	if t == nil {
		return nil
	}

	var mentions []capture.RoomMention
	seen := make(map[string]struct{})

	for _, seg := range t.Segments {
		text := seg.Text

		for _, match := range triggerPhrases.FindAllStringSubmatch(text, -1) {
			roomName := strings.ToLower(strings.TrimSpace(match[1]))
			if roomName == "" || len(roomName) > maxRoomPhraseLen {
				continue
			}
			if !markSeen(seen, roomName, seg.Start) {
				continue
			}
			mentions = append(mentions, capture.RoomMention{
				RoomName:   roomName,
				Timestamp:  seg.Start,
				RawText:    strings.TrimSpace(text),
				Confidence: triggerConfidence,
			})
		}

		for _, match := range knownRoomsPattern.FindAllStringSubmatch(text, -1) {
			roomName := strings.ToLower(match[1])
			if !markSeen(seen, roomName, seg.Start) {
				continue
			}
			mentions = append(mentions, capture.RoomMention{
				RoomName:   roomName,
				Timestamp:  seg.Start,
				RawText:    strings.TrimSpace(text),
				Confidence: knownRoomConfidence,
			})
		}
	}

	return mentions
}

// markSeen records the (name, rounded timestamp) key, returning false when
// it was already present.
func markSeen(seen map[string]struct{}, roomName string, timestamp float64) bool {
	key := fmt.Sprintf("%s@%.1f", roomName, math.Round(timestamp*10)/10)
	if _, dup := seen[key]; dup {
		return false
	}
	seen[key] = struct{}{}
	return true
}
