// Package audio - Audio track probing and demuxing for narration transcription.
package audio

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	probeTimeout   = 30 * time.Second
	extractTimeout = 2 * time.Minute
)

// Extractor demuxes a capture's audio track to mono 16 kHz PCM WAV using
// ffprobe/ffmpeg subprocesses. Every failure mode here degrades to "no
// audio": a capture without working narration still completes.
type Extractor struct {
	// AudioDir receives extracted WAV files.
	AudioDir string

	log *slog.Logger
}

// NewExtractor creates an Extractor writing into audioDir.
func NewExtractor(audioDir string, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{AudioDir: audioDir, log: log}
}

// Extract probes the video for an audio stream and, when one exists, demuxes
// it to <AudioDir>/<video stem>.wav as mono 16 kHz signed 16-bit PCM.
//
// Returns:
//   - string: Path of the extracted WAV, or "" when the video has no audio
//     track or the ffmpeg tooling is unavailable. Never an error that should
//     abort the capture.
func (e *Extractor) Extract(ctx context.Context, videoPath string) string {
	if !e.hasAudioStream(ctx, videoPath) {
		return ""
	}

	if err := os.MkdirAll(e.AudioDir, 0o755); err != nil {
		e.log.Warn("cannot create audio directory, skipping narration", "dir", e.AudioDir, "error", err)
		return ""
	}

	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	audioPath := filepath.Join(e.AudioDir, stem+".wav")

	extractCtx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	cmd := exec.CommandContext(extractCtx,
		"ffmpeg",
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		audioPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		e.log.Warn("ffmpeg audio extraction failed, skipping narration",
			"video", videoPath, "error", err, "stderr", truncate(stderr.String(), 500))
		return ""
	}

	info, err := os.Stat(audioPath)
	if err != nil || info.Size() == 0 {
		e.log.Warn("ffmpeg produced no audio output", "path", audioPath)
		return ""
	}
	return audioPath
}

// hasAudioStream runs ffprobe to check for at least one audio stream.
func (e *Extractor) hasAudioStream(ctx context.Context, videoPath string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx,
		"ffprobe",
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=codec_type",
		"-of", "csv=p=0",
		videoPath,
	)
	out, err := cmd.Output()
	if err != nil {
		e.log.Warn("ffprobe failed or not found, skipping audio extraction", "error", err)
		return false
	}
	if len(bytes.TrimSpace(out)) == 0 {
		e.log.Info("no audio track found", "video", filepath.Base(videoPath))
		return false
	}
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
