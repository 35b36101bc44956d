// Command roomscan analyzes a room-walkthrough video (or a burst of still
// photos) and prints the detected objects as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"

	"github.com/roomscan-ai/roomscan/audio"
	"github.com/roomscan-ai/roomscan/config"
	"github.com/roomscan-ai/roomscan/describe"
	"github.com/roomscan-ai/roomscan/detect"
	"github.com/roomscan-ai/roomscan/pipeline"
	"github.com/roomscan-ai/roomscan/quality"
	"github.com/roomscan-ai/roomscan/transcribe"
	"github.com/roomscan-ai/roomscan/video"
)

func main() {
	var (
		videoPath  = flag.String("video", "", "walkthrough video to analyze")
		stills     = flag.String("stills", "", "comma-separated still photos to analyze instead of a video")
		timestamps = flag.String("timestamps", "", "comma-separated capture seconds for -stills (defaults to 0,1,2,...)")
		sessionID  = flag.String("session", "", "session id (defaults to a new uuid)")
		output     = flag.String("output", "", "write the result JSON here instead of stdout")
		verbose    = flag.Bool("verbose", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(log)

	if err := run(log, *videoPath, *stills, *timestamps, *sessionID, *output); err != nil {
		log.Error("roomscan failed", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger, videoPath, stills, timestamps, sessionID, output string) error {
	if (videoPath == "") == (stills == "") {
		return fmt.Errorf("exactly one of -video or -stills is required")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	p, cleanup, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := p.Hub.Subscribe(sessionID)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range events {
			log.Info("progress", "stage", ev.Stage,
				"pct", fmt.Sprintf("%.0f%%", ev.Progress*100), "message", ev.Message)
		}
	}()

	var result *pipeline.Result
	if videoPath != "" {
		log.Info("analyzing video", "path", videoPath, "session", sessionID)
		result, err = p.ProcessVideo(ctx, videoPath, sessionID)
	} else {
		paths := strings.Split(stills, ",")
		ts, tsErr := parseTimestamps(timestamps, len(paths))
		if tsErr != nil {
			return tsErr
		}
		log.Info("analyzing stills", "count", len(paths), "session", sessionID)
		result, err = p.ProcessStills(ctx, paths, ts, sessionID)
	}
	wg.Wait()
	if err != nil {
		return err
	}

	log.Info("analysis complete", "objects", len(result.Objects),
		"frames", len(result.Frames), "rooms", len(result.RoomMentions))

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if output != "" {
		return os.WriteFile(output, data, 0o644)
	}
	_, err = fmt.Println(string(data))
	return err
}

// buildPipeline assembles stages from config. Backends that are switched off
// or unconfigured are left nil; the pipeline degrades around them.
func buildPipeline(cfg *config.Config, log *slog.Logger) (*pipeline.Pipeline, func(), error) {
	source := video.NewSource(cfg.FramesDir, cfg.TargetFPS, log)
	filter := quality.NewFilter(quality.Config{
		BlurThreshold:     cfg.BlurThreshold,
		DuplicateDistance: cfg.DuplicateDistance,
	}, log)

	p := pipeline.New(source, filter, log)
	p.Workers = cfg.Workers
	p.VoiceWindow = cfg.VoiceWindow
	p.Audio = audio.NewExtractor(cfg.AudioDir, log)

	cleanup := func() {}
	if cfg.DetectorModelPath != "" {
		session, err := detect.NewSession(detect.SessionConfig{
			ModelPath:         cfg.DetectorModelPath,
			SharedLibraryPath: cfg.ORTLibraryPath,
		})
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() {
			if cerr := session.Close(); cerr != nil {
				log.Warn("closing detector session", "error", cerr)
			}
		}
		p.Detector = detect.NewDetector(session, detect.Config{
			ConfidenceThreshold: cfg.ConfidenceThreshold,
			NMSThreshold:        cfg.NMSThreshold,
		}, log)
	} else {
		log.Warn("no detector model configured, spatial detection disabled")
	}

	switch cfg.Describer {
	case config.DescriberOllama:
		p.Describer = describe.NewOllama(cfg.OllamaURL, cfg.OllamaModel, cfg.DescriberTimeout, log)
	case config.DescriberOpenAI:
		p.Describer = describe.NewOpenAICompatible(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey,
			cfg.VisionModel, cfg.DescriberTimeout, log)
	case config.BackendOff:
		log.Warn("semantic description disabled")
	default:
		return nil, nil, fmt.Errorf("unknown describer backend %q", cfg.Describer)
	}

	switch cfg.Transcriber {
	case config.TranscriberWhisperServer:
		p.Transcriber = transcribe.NewWhisperServer(cfg.WhisperURL, cfg.WhisperModel)
	case config.TranscriberHosted:
		p.Transcriber = transcribe.NewHostedAPI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, "")
	case config.BackendOff:
		log.Warn("transcription disabled")
	default:
		return nil, nil, fmt.Errorf("unknown transcriber backend %q", cfg.Transcriber)
	}

	return p, cleanup, nil
}

// parseTimestamps reads the -timestamps list, defaulting to one frame per
// second when omitted.
func parseTimestamps(s string, n int) ([]float64, error) {
	ts := make([]float64, n)
	if s == "" {
		for i := range ts {
			ts[i] = float64(i)
		}
		return ts, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("got %d timestamps for %d stills", len(parts), n)
	}
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("timestamp %q: %w", part, err)
		}
		ts[i] = v
	}
	return ts, nil
}
