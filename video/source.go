// Package video - Frame extraction from walkthrough captures.
package video

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/roomscan-ai/roomscan/capture"
)

// DefaultTargetFPS is the default output rate in frames per second of video.
const DefaultTargetFPS = 1.5

// fallbackNativeFPS is used when the container reports no frame rate.
const fallbackNativeFPS = 30.0

// Source extracts a uniformly time-spaced sequence of still frames from a
// video container and persists each kept frame to a session-scoped directory
// so later stages can reference it by path.
type Source struct {
	// FramesDir is the root under which per-session frame directories live.
	FramesDir string
	// TargetFPS is the desired output extraction rate.
	TargetFPS float64

	log *slog.Logger
}

// NewSource creates a frame source rooted at framesDir.
func NewSource(framesDir string, targetFPS float64, log *slog.Logger) *Source {
	if targetFPS <= 0 {
		targetFPS = DefaultTargetFPS
	}
	if log == nil {
		log = slog.Default()
	}
	return &Source{FramesDir: framesDir, TargetFPS: targetFPS, log: log}
}

// ExtractFrames decodes the video and keeps every interval-th native frame,
// where interval = max(1, round(nativeFPS/TargetFPS)). Each kept frame is
// written to <FramesDir>/<sessionID>/frame_NNNN.jpg and stamped with
// timestamp = nativeFrameIndex / nativeFPS.
//
// An unopenable video returns an empty sequence rather than an error: the
// caller observes zero frames and the capture completes with no detections.
// Context cancellation stops extraction early with the frames kept so far.
func (s *Source) ExtractFrames(ctx context.Context, videoPath, sessionID string) []capture.RawFrame {
	sessionDir := filepath.Join(s.FramesDir, sessionID)
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		s.log.Error("cannot create session frame directory", "dir", sessionDir, "error", err)
		return nil
	}

	cap, err := gocv.VideoCaptureFile(videoPath)
	if err != nil {
		s.log.Error("cannot open video, capture yields zero frames", "video", videoPath, "error", err)
		return nil
	}
	defer cap.Close()

	fps := cap.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		fps = fallbackNativeFPS
	}
	interval := extractionInterval(fps, s.TargetFPS)

	img := gocv.NewMat()
	defer img.Close()

	var frames []capture.RawFrame
	frameIdx := 0
	savedIdx := 0
	for {
		select {
		case <-ctx.Done():
			s.log.Warn("frame extraction cancelled", "kept", len(frames))
			return frames
		default:
		}

		if ok := cap.Read(&img); !ok {
			break
		}
		if img.Empty() {
			frameIdx++
			continue
		}

		if frameIdx%interval == 0 {
			framePath := filepath.Join(sessionDir, fmt.Sprintf("frame_%04d.jpg", savedIdx))
			if ok := gocv.IMWrite(framePath, img); !ok {
				s.log.Warn("failed to persist frame", "path", framePath)
				frameIdx++
				continue
			}
			frames = append(frames, capture.RawFrame{
				Index:     savedIdx,
				Path:      framePath,
				Timestamp: float64(frameIdx) / fps,
			})
			savedIdx++
		}
		frameIdx++
	}

	s.log.Info("frame extraction complete",
		"video", videoPath, "native_fps", fps, "interval", interval, "kept", len(frames))
	return frames
}

// AcceptStills ingests a pre-captured image burst as-is with caller-supplied
// timestamps. Each still is copied into the session directory so the
// lifetime of pipeline artifacts does not depend on the caller's files.
//
// Arguments:
//   - paths: Image files in temporal order.
//   - timestamps: Seconds from capture start, one per path.
//
// Returns:
//   - []capture.RawFrame: Dense zero-indexed frames.
//   - error: Only for mismatched inputs; unreadable stills are skipped.
func (s *Source) AcceptStills(paths []string, timestamps []float64, sessionID string) ([]capture.RawFrame, error) {
	if len(paths) != len(timestamps) {
		return nil, errors.Errorf("got %d stills but %d timestamps", len(paths), len(timestamps))
	}

	sessionDir := filepath.Join(s.FramesDir, sessionID)
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating session frame directory %s", sessionDir)
	}

	var frames []capture.RawFrame
	for i, src := range paths {
		data, err := os.ReadFile(src)
		if err != nil {
			s.log.Warn("skipping unreadable still", "path", src, "error", err)
			continue
		}
		dst := filepath.Join(sessionDir, fmt.Sprintf("frame_%04d%s", len(frames), stillExt(src)))
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			s.log.Warn("skipping unpersistable still", "path", dst, "error", err)
			continue
		}
		frames = append(frames, capture.RawFrame{
			Index:     len(frames),
			Path:      dst,
			Timestamp: timestamps[i],
		})
	}
	return frames, nil
}

// extractionInterval is the native-frame stride that downsamples nativeFPS
// to approximately targetFPS, never below one.
func extractionInterval(nativeFPS, targetFPS float64) int {
	interval := int(math.Round(nativeFPS / targetFPS))
	if interval < 1 {
		interval = 1
	}
	return interval
}

func stillExt(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return ext
	}
	return ".jpg"
}
