package transcribe

import (
	"strings"

	"github.com/roomscan-ai/roomscan/capture"
)

// DefaultWindow is the width in seconds of the correlation window centered
// on a frame's timestamp.
const DefaultWindow = 3.0

// CorrelateFrame collects the words whose [start,end] interval intersects
// [t - window/2, t + window/2] for the frame at timestamp t, in transcript
// order, and joins them into a snippet. The returned context may be empty.
func CorrelateFrame(t *capture.Transcript, frameIndex int, frameTimestamp, window float64) capture.FrameVoiceContext {
	if window <= 0 {
		window = DefaultWindow
	}
	half := window / 2.0
	tStart := frameTimestamp - half
	tEnd := frameTimestamp + half

	ctx := capture.FrameVoiceContext{
		FrameIndex:     frameIndex,
		FrameTimestamp: frameTimestamp,
	}
	if t == nil {
		return ctx
	}

	var words []string
	for _, seg := range t.Segments {
		for _, w := range seg.Words {
			if w.End >= tStart && w.Start <= tEnd {
				ctx.Words = append(ctx.Words, w)
				words = append(words, w.Word)
			}
		}
	}
	ctx.Snippet = strings.Join(words, " ")
	return ctx
}

// CorrelateFrames is the batch form of CorrelateFrame over all quality
// frames of a capture.
func CorrelateFrames(t *capture.Transcript, frames []capture.RawFrame, window float64) []capture.FrameVoiceContext {
	contexts := make([]capture.FrameVoiceContext, 0, len(frames))
	for i, frame := range frames {
		contexts = append(contexts, CorrelateFrame(t, i, frame.Timestamp, window))
	}
	return contexts
}
