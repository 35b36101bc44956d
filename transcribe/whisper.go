package transcribe

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/roomscan-ai/roomscan/capture"
)

// defaultTranscribeTimeout is generous: whisper on CPU chews through long
// narrations slowly and the pipeline tolerates the wait, not the failure.
const defaultTranscribeTimeout = 10 * time.Minute

// verboseResponse mirrors the verbose_json schema shared by whisper servers
// and OpenAI-compatible transcription endpoints.
type verboseResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Words []struct {
			Word        string  `json:"word"`
			Start       float64 `json:"start"`
			End         float64 `json:"end"`
			Probability float64 `json:"probability"`
		} `json:"words"`
	} `json:"segments"`
	Words []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
}

// WhisperServer transcribes against a locally hosted whisper HTTP server
// (whisper.cpp server or a faster-whisper wrapper exposing /inference).
type WhisperServer struct {
	client  *resty.Client
	baseURL string
	model   string
}

// NewWhisperServer creates a local whisper backend.
//
// Arguments:
//   - baseURL: Server root, e.g. "http://127.0.0.1:8080".
//   - model: Model identifier forwarded to the server ("small" by default).
func NewWhisperServer(baseURL, model string) *WhisperServer {
	if model == "" {
		model = "small"
	}
	return &WhisperServer{
		client:  resty.New().SetTimeout(defaultTranscribeTimeout),
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
}

// Name implements Provider.
func (w *WhisperServer) Name() string { return "whisper-server" }

// Transcribe implements Provider. Word timestamps and voice-activity
// filtering are requested so silence does not produce phantom segments.
func (w *WhisperServer) Transcribe(ctx context.Context, audioPath string) (*capture.Transcript, error) {
	var out verboseResponse
	resp, err := w.client.R().
		SetContext(ctx).
		SetFile("file", audioPath).
		SetFormData(map[string]string{
			"model":           w.model,
			"response_format": "verbose_json",
			"word_timestamps": "true",
			"vad_filter":      "true",
		}).
		SetResult(&out).
		Post(w.baseURL + "/inference")
	if err != nil {
		return nil, errors.Wrap(err, "whisper server request")
	}
	if resp.IsError() {
		return nil, errors.Errorf("whisper server returned %s: %s", resp.Status(), truncateBody(resp.String()))
	}
	return buildTranscript(&out), nil
}

// buildTranscript converts the wire schema into the capture data model,
// trimming whitespace the decoder leaves on words and joining segment text
// into the full transcript.
func buildTranscript(resp *verboseResponse) *capture.Transcript {
	t := &capture.Transcript{
		Language: resp.Language,
		Duration: resp.Duration,
	}

	var texts []string
	for _, seg := range resp.Segments {
		s := capture.Segment{
			Text:  strings.TrimSpace(seg.Text),
			Start: seg.Start,
			End:   seg.End,
		}
		for _, w := range seg.Words {
			s.Words = append(s.Words, capture.Word{
				Word:        strings.TrimSpace(w.Word),
				Start:       w.Start,
				End:         w.End,
				Probability: w.Probability,
			})
		}
		t.Segments = append(t.Segments, s)
		texts = append(texts, s.Text)
	}

	// Some endpoints return a flat word list instead of per-segment words.
	// Assign each word to the segment whose span contains its start.
	if wordless(t.Segments) && len(resp.Words) > 0 {
		for _, w := range resp.Words {
			for i := range t.Segments {
				if w.Start >= t.Segments[i].Start && w.Start <= t.Segments[i].End {
					t.Segments[i].Words = append(t.Segments[i].Words, capture.Word{
						Word:  strings.TrimSpace(w.Word),
						Start: w.Start,
						End:   w.End,
					})
					break
				}
			}
		}
	}

	t.FullText = strings.Join(texts, " ")
	return t
}

func wordless(segments []capture.Segment) bool {
	for _, s := range segments {
		if len(s.Words) > 0 {
			return false
		}
	}
	return true
}

func truncateBody(s string) string {
	if len(s) > 500 {
		return s[:500]
	}
	return s
}
