package detect

import (
	"context"
	"log/slog"

	"github.com/roomscan-ai/roomscan/capture"
)

const (
	// DefaultConfidenceThreshold discards weak candidate boxes.
	DefaultConfidenceThreshold = 0.3
	// DefaultNMSThreshold is the overlap above which a lower-scoring box is
	// suppressed.
	DefaultNMSThreshold = 0.45
)

// Config holds the detector thresholds.
type Config struct {
	ConfidenceThreshold float32
	NMSThreshold        float64
}

// Detector runs the open-vocabulary spatial detector against single frames.
// It borrows the process-owned Session rather than constructing one, so all
// frames of all captures in the process share one loaded model.
type Detector struct {
	session *Session
	cfg     Config
	log     *slog.Logger
}

// NewDetector wires a detector to an existing session.
func NewDetector(session *Session, cfg Config, log *slog.Logger) *Detector {
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if cfg.NMSThreshold <= 0 {
		cfg.NMSThreshold = DefaultNMSThreshold
	}
	if log == nil {
		log = slog.Default()
	}
	return &Detector{session: session, cfg: cfg, log: log}
}

// Detect runs one forward pass over the frame at framePath and returns the
// surviving detections with normalized clamped boxes and coarse categories.
func (d *Detector) Detect(ctx context.Context, framePath string) ([]capture.RawDetection, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img, err := loadImage(framePath)
	if err != nil {
		return nil, err
	}

	output, err := d.session.run(func(dst []float32) error {
		return prepareInput(img, dst)
	})
	if err != nil {
		return nil, err
	}

	vocab := d.session.Vocabulary()
	candidates := decodeOutput(output, len(vocab), d.cfg.ConfidenceThreshold)
	survivors := applyGreedyNMS(candidates, d.cfg.NMSThreshold)

	detections := make([]capture.RawDetection, 0, len(survivors))
	for _, r := range survivors {
		className := "unknown"
		if r.Class >= 0 && r.Class < len(vocab) {
			className = vocab[r.Class]
		}
		detections = append(detections, capture.RawDetection{
			ClassName:  className,
			Confidence: float64(r.Score),
			Box:        r.Box,
			Category:   CategoryFor(className),
		})
	}

	d.log.Info("spatial detection complete", "frame", framePath, "objects", len(detections))
	return detections, nil
}
