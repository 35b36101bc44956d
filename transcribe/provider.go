// Package transcribe - Speech-to-text for walkthrough narration, plus the
// transcript post-processing the pipeline needs: aligning spoken words to
// frame timestamps and spotting room-name mentions.
package transcribe

import (
	"context"

	"github.com/roomscan-ai/roomscan/capture"
)

// Provider is the capability interface for speech-to-text backends. The
// backend is selected by configuration at process start; pipeline logic never
// branches on which one is in use.
type Provider interface {
	// Transcribe converts the audio file at audioPath into a transcript with
	// word-level timestamps.
	Transcribe(ctx context.Context, audioPath string) (*capture.Transcript, error)
	// Name identifies the backend for logs.
	Name() string
}
