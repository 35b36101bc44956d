// Package config - Process configuration from the environment. A .env file
// in the working directory is loaded first when present, then real
// environment variables override it. All knobs share the ROOMSCAN_ prefix.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/roomscan-ai/roomscan/detect"
	"github.com/roomscan-ai/roomscan/pipeline"
	"github.com/roomscan-ai/roomscan/quality"
	"github.com/roomscan-ai/roomscan/transcribe"
	"github.com/roomscan-ai/roomscan/video"
)

// Backend selectors. "off" disables a stage entirely.
const (
	DescriberOllama = "ollama"
	DescriberOpenAI = "openai"
	BackendOff      = "off"

	TranscriberWhisperServer = "whisper-server"
	TranscriberHosted        = "hosted"
)

// Config is everything the process needs to assemble a pipeline.
type Config struct {
	FramesDir string
	AudioDir  string

	TargetFPS         float64
	BlurThreshold     float64
	DuplicateDistance int

	DetectorModelPath   string
	ORTLibraryPath      string
	ConfidenceThreshold float32
	NMSThreshold        float64

	Describer        string
	OllamaURL        string
	OllamaModel      string
	OpenAIBaseURL    string
	OpenAIAPIKey     string
	VisionModel      string
	DescriberTimeout time.Duration

	Transcriber  string
	WhisperURL   string
	WhisperModel string

	Workers     int
	VoiceWindow float64
}

// Load reads configuration from .env and the environment. Missing values
// fall back to stage defaults; malformed numbers are errors.
func Load() (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := &Config{
		FramesDir: envString("ROOMSCAN_FRAMES_DIR", "data/frames"),
		AudioDir:  envString("ROOMSCAN_AUDIO_DIR", "data/audio"),

		DetectorModelPath: envString("ROOMSCAN_DETECTOR_MODEL", ""),
		ORTLibraryPath:    envString("ROOMSCAN_ORT_LIBRARY", ""),

		Describer:     envString("ROOMSCAN_DESCRIBER", DescriberOllama),
		OllamaURL:     envString("ROOMSCAN_OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:   envString("ROOMSCAN_OLLAMA_MODEL", "qwen2.5vl:7b"),
		OpenAIBaseURL: envString("ROOMSCAN_OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:  envString("ROOMSCAN_OPENAI_API_KEY", ""),
		VisionModel:   envString("ROOMSCAN_VISION_MODEL", "gpt-4o"),

		Transcriber:  envString("ROOMSCAN_TRANSCRIBER", TranscriberWhisperServer),
		WhisperURL:   envString("ROOMSCAN_WHISPER_URL", "http://localhost:8178"),
		WhisperModel: envString("ROOMSCAN_WHISPER_MODEL", "small"),
	}

	var err error
	if cfg.TargetFPS, err = envFloat("ROOMSCAN_TARGET_FPS", video.DefaultTargetFPS); err != nil {
		return nil, err
	}
	if cfg.BlurThreshold, err = envFloat("ROOMSCAN_BLUR_THRESHOLD", quality.DefaultBlurThreshold); err != nil {
		return nil, err
	}
	if cfg.DuplicateDistance, err = envInt("ROOMSCAN_DUPLICATE_DISTANCE", quality.DefaultDuplicateDistance); err != nil {
		return nil, err
	}
	conf, err := envFloat("ROOMSCAN_CONFIDENCE_THRESHOLD", float64(detect.DefaultConfidenceThreshold))
	if err != nil {
		return nil, err
	}
	cfg.ConfidenceThreshold = float32(conf)
	if cfg.NMSThreshold, err = envFloat("ROOMSCAN_NMS_THRESHOLD", detect.DefaultNMSThreshold); err != nil {
		return nil, err
	}
	if cfg.Workers, err = envInt("ROOMSCAN_WORKERS", pipeline.DefaultWorkers); err != nil {
		return nil, err
	}
	if cfg.VoiceWindow, err = envFloat("ROOMSCAN_VOICE_WINDOW", transcribe.DefaultWindow); err != nil {
		return nil, err
	}
	if cfg.DescriberTimeout, err = envDuration("ROOMSCAN_DESCRIBER_TIMEOUT", 0); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) (float64, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s", key)
	}
	return f, nil
}

func envInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s", key)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s", key)
	}
	return d, nil
}
