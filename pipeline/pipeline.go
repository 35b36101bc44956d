// Package pipeline - Orchestration of one capture run: frame extraction and
// transcription in parallel, quality filtering, per-frame perception on a
// bounded worker pool, fusion, and cross-frame deduplication. Stages are
// injected behind small interfaces so any of them can be swapped or stubbed.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roomscan-ai/roomscan/capture"
	"github.com/roomscan-ai/roomscan/dedupe"
	"github.com/roomscan-ai/roomscan/fuse"
	"github.com/roomscan-ai/roomscan/transcribe"
)

// DefaultWorkers bounds concurrent per-frame analysis. Detection and
// description both hold expensive backends, so this stays small.
const DefaultWorkers = 4

// Progress fractions for the fixed stages. Per-frame work fills the span
// between perFrameStart and perFrameEnd.
const (
	progressExtract      = 0.0
	progressTranscribing = 0.05
	progressTranscribed  = 0.12
	progressFiltered     = 0.15
	perFrameStart        = 0.3
	perFrameEnd          = 0.8
	progressDedupe       = 0.85
	progressDone         = 1.0
)

// FrameSource produces frames from a capture.
type FrameSource interface {
	ExtractFrames(ctx context.Context, videoPath, sessionID string) []capture.RawFrame
	AcceptStills(paths []string, timestamps []float64, sessionID string) ([]capture.RawFrame, error)
}

// FrameFilter drops frames not worth analyzing.
type FrameFilter interface {
	Apply(frames []capture.RawFrame) []capture.RawFrame
}

// AudioExtractor pulls the narration track out of a video, returning "" when
// there is none.
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath string) string
}

// SpatialDetector locates fixed-vocabulary objects in a frame.
type SpatialDetector interface {
	Detect(ctx context.Context, framePath string) ([]capture.RawDetection, error)
}

// Describer identifies and describes objects in a frame.
type Describer interface {
	Describe(ctx context.Context, framePath, voiceContext string) ([]capture.SemanticObject, error)
	Name() string
}

// Result is everything one capture run produced. A capture that yields no
// usable frames still produces a Result with empty Objects and Frames.
type Result struct {
	SessionID    string                    `json:"session_id"`
	Objects      []capture.DetectedObject  `json:"objects"`
	ModeSwitch   *capture.ModeSwitchPrompt `json:"mode_switch,omitempty"`
	Frames       []capture.FrameAnalysis   `json:"frames"`
	Transcript   *capture.Transcript       `json:"transcript,omitempty"`
	RoomMentions []capture.RoomMention     `json:"room_mentions,omitempty"`
}

// Pipeline wires the stages together. Detector, Describer, Audio, and
// Transcriber may each be nil: the run degrades to whatever perception is
// configured instead of failing.
type Pipeline struct {
	Source      FrameSource
	Filter      FrameFilter
	Audio       AudioExtractor
	Transcriber transcribe.Provider
	Detector    SpatialDetector
	Describer   Describer

	Hub         *Hub
	Workers     int
	VoiceWindow float64

	log *slog.Logger
}

// New builds a pipeline with defaulted workers, voice window, and hub.
func New(source FrameSource, filter FrameFilter, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		Source:      source,
		Filter:      filter,
		Hub:         NewHub(),
		Workers:     DefaultWorkers,
		VoiceWindow: transcribe.DefaultWindow,
		log:         log,
	}
}

// ProcessVideo runs the full pipeline over a walkthrough video. Frame
// extraction and transcription run concurrently; per-frame analysis runs on
// the worker pool. A capture that yields zero usable frames completes with
// an empty Result, not an error. Cancellation is honored between frames,
// returning ctx.Err() with no partial result.
func (p *Pipeline) ProcessVideo(ctx context.Context, videoPath, sessionID string) (*Result, error) {
	defer p.Hub.Close(sessionID)
	p.publish(sessionID, "extracting_frames", progressExtract, "Extracting frames", nil)

	var (
		frames     []capture.RawFrame
		transcript *capture.Transcript
		wg         sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		frames = p.Source.ExtractFrames(ctx, videoPath, sessionID)
	}()
	go func() {
		defer wg.Done()
		p.publish(sessionID, "transcribing", progressTranscribing, "Transcribing narration", nil)
		transcript = p.safeTranscribe(ctx, videoPath)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msg := "No narration found"
	if transcript != nil {
		msg = "Transcription complete"
	}
	p.publish(sessionID, "transcribing", progressTranscribed, msg, nil)

	return p.analyze(ctx, frames, transcript, sessionID)
}

// ProcessStills runs the pipeline over still photos instead of a video.
// There is no narration track, so voice context stays empty.
func (p *Pipeline) ProcessStills(ctx context.Context, paths []string, timestamps []float64, sessionID string) (*Result, error) {
	defer p.Hub.Close(sessionID)
	p.publish(sessionID, "extracting_frames", progressExtract, "Accepting stills", nil)

	frames, err := p.Source.AcceptStills(paths, timestamps, sessionID)
	if err != nil {
		return nil, err
	}
	return p.analyze(ctx, frames, nil, sessionID)
}

// analyze is the shared back half: filter, per-frame perception, fusion,
// cross-frame deduplication. Zero quality frames is not a failure: the loop
// is simply empty and the run finishes with no detections.
func (p *Pipeline) analyze(ctx context.Context, frames []capture.RawFrame, transcript *capture.Transcript, sessionID string) (*Result, error) {
	quality := frames
	if p.Filter != nil {
		quality = p.Filter.Apply(frames)
	}
	p.publish(sessionID, "filtering", progressFiltered,
		fmt.Sprintf("Selected %d quality frames", len(quality)),
		map[string]any{"frames": len(quality)})

	voices := transcribe.CorrelateFrames(transcript, quality, p.VoiceWindow)

	analyses, err := p.analyzeFrames(ctx, quality, voices, sessionID)
	if err != nil {
		return nil, err
	}

	p.publish(sessionID, "deduplicating", progressDedupe, "Merging duplicate objects", nil)
	objects := dedupe.Collapse(analyses)

	result := &Result{
		SessionID:    sessionID,
		Objects:      objects,
		ModeSwitch:   capture.NewModeSwitchPrompt(objects),
		Frames:       analyses,
		Transcript:   transcript,
		RoomMentions: transcribe.DetectRoomMentions(transcript),
	}
	p.publish(sessionID, "done", progressDone,
		fmt.Sprintf("Analysis complete: %d objects", len(objects)),
		map[string]any{"objects": len(objects)})
	return result, nil
}

// analyzeFrames runs detection, description, and fusion for every quality
// frame on a bounded pool. Results land at their frame's slot so output
// order matches input order regardless of completion order. Analyses are
// indexed by position in the quality list, matching the voice contexts.
func (p *Pipeline) analyzeFrames(ctx context.Context, quality []capture.RawFrame, voices []capture.FrameVoiceContext, sessionID string) ([]capture.FrameAnalysis, error) {
	workers := p.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(quality) {
		workers = len(quality)
	}

	analyses := make([]capture.FrameAnalysis, len(quality))
	jobs := make(chan int)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				analyses[i] = p.analyzeFrame(ctx, i, quality[i], voices[i].Snippet)

				mu.Lock()
				done++
				frac := perFrameStart + (perFrameEnd-perFrameStart)*float64(done)/float64(len(quality))
				p.publish(sessionID, "analyzing", frac,
					fmt.Sprintf("Analyzed frame %d/%d", done, len(quality)),
					map[string]any{"frame": i})
				mu.Unlock()
			}
		}()
	}

feed:
	for i := range quality {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return analyses, nil
}

// analyzeFrame runs both perception backends over one frame and fuses their
// outputs. index is the frame's dense position in the quality list. Backend
// failures degrade to an empty contribution; a frame is never fatal to the
// run.
func (p *Pipeline) analyzeFrame(ctx context.Context, index int, frame capture.RawFrame, voiceContext string) capture.FrameAnalysis {
	var spatial []capture.RawDetection
	if p.Detector != nil {
		var err error
		spatial, err = p.Detector.Detect(ctx, frame.Path)
		if err != nil {
			p.log.Warn("spatial detection failed", "frame", index, "error", err)
			spatial = nil
		}
	}

	var semantic []capture.SemanticObject
	if p.Describer != nil {
		var err error
		semantic, err = p.Describer.Describe(ctx, frame.Path, voiceContext)
		if err != nil {
			p.log.Warn("semantic description failed", "backend", p.Describer.Name(),
				"frame", index, "error", err)
			semantic = nil
		}
	}

	return capture.FrameAnalysis{
		FrameIndex:     index,
		FramePath:      frame.Path,
		FrameTimestamp: frame.Timestamp,
		Objects:        fuse.Merge(spatial, semantic, voiceContext),
		VoiceContext:   voiceContext,
	}
}

// safeTranscribe extracts audio and transcribes it, absorbing every failure
// into "no narration". Silent or audio-less captures are normal.
func (p *Pipeline) safeTranscribe(ctx context.Context, videoPath string) *capture.Transcript {
	if p.Audio == nil || p.Transcriber == nil {
		return nil
	}
	audioPath := p.Audio.Extract(ctx, videoPath)
	if audioPath == "" {
		return nil
	}
	t, err := p.Transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		p.log.Warn("transcription failed", "provider", p.Transcriber.Name(), "error", err)
		return nil
	}
	return t
}

func (p *Pipeline) publish(sessionID, stage string, progress float64, message string, data map[string]any) {
	if p.Hub == nil {
		return
	}
	p.Hub.Publish(sessionID, Event{Stage: stage, Progress: progress, Message: message, Data: data})
}
