// Package quality - Blur and near-duplicate rejection for extracted frames.
package quality

import (
	"log/slog"

	"github.com/corona10/goimagehash"

	"github.com/roomscan-ai/roomscan/capture"
	"github.com/roomscan-ai/roomscan/images"
)

const (
	// DefaultBlurThreshold is the minimum variance-of-Laplacian a frame must
	// reach to be considered in focus.
	DefaultBlurThreshold = 100.0
	// DefaultDuplicateDistance is the Hamming distance below which a frame's
	// 64-bit perceptual hash marks it as a near-duplicate.
	DefaultDuplicateDistance = 10
)

// Config holds the filter thresholds.
type Config struct {
	// BlurThreshold rejects frames whose focus measure falls below it.
	BlurThreshold float64
	// DuplicateDistance rejects frames within this Hamming distance of any
	// previously accepted frame in the same run.
	DuplicateDistance int
}

// Filter rejects blurry and near-duplicate frames while preserving the
// temporal order and the original timestamps of the survivors.
type Filter struct {
	cfg Config
	log *slog.Logger
}

// NewFilter creates a Filter, substituting defaults for zero-valued config.
func NewFilter(cfg Config, log *slog.Logger) *Filter {
	if cfg.BlurThreshold <= 0 {
		cfg.BlurThreshold = DefaultBlurThreshold
	}
	if cfg.DuplicateDistance <= 0 {
		cfg.DuplicateDistance = DefaultDuplicateDistance
	}
	if log == nil {
		log = slog.Default()
	}
	return &Filter{cfg: cfg, log: log}
}

// Apply filters the frames in arrival order. A frame is kept only if it is
// readable, sharp enough, and at least DuplicateDistance away from every
// previously accepted hash. The accepted-hash set is scoped to this one call
// and discarded with it; later frames are compared against all prior
// accepted hashes, not a sliding window.
//
// The output is always a subsequence of the input: order and timestamps are
// retained, frames are never renumbered.
func (f *Filter) Apply(frames []capture.RawFrame) []capture.RawFrame {
	kept := make([]capture.RawFrame, 0, len(frames))
	seen := make([]*goimagehash.ImageHash, 0, len(frames))

	for _, frame := range frames {
		focus := images.FocusMeasureFile(frame.Path)
		if focus < f.cfg.BlurThreshold {
			f.log.Debug("dropping blurry frame",
				"frame", frame.Index, "focus", focus, "threshold", f.cfg.BlurThreshold)
			continue
		}

		hash, err := images.PerceptualHash(frame.Path)
		if err != nil {
			f.log.Warn("dropping unhashable frame", "frame", frame.Index, "error", err)
			continue
		}

		if f.isDuplicate(hash, seen) {
			f.log.Debug("dropping near-duplicate frame", "frame", frame.Index)
			continue
		}

		seen = append(seen, hash)
		kept = append(kept, frame)
	}

	f.log.Info("quality filter complete", "input", len(frames), "kept", len(kept))
	return kept
}

func (f *Filter) isDuplicate(hash *goimagehash.ImageHash, seen []*goimagehash.ImageHash) bool {
	for _, prior := range seen {
		if images.HashDistance(hash, prior) < f.cfg.DuplicateDistance {
			return true
		}
	}
	return false
}
