package transcribe

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/roomscan-ai/roomscan/capture"
)

// HostedAPI transcribes against an OpenAI-compatible
// /v1/audio/transcriptions endpoint so a hosted service can stand in for
// the local server without changing pipeline logic.
type HostedAPI struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	model   string
}

// NewHostedAPI creates a hosted transcription backend.
//
// Arguments:
//   - baseURL: API root including version prefix, e.g. "https://api.example.com/v1".
//   - apiKey: Bearer token, may be empty for unauthenticated gateways.
//   - model: Model name, e.g. "whisper-1".
func NewHostedAPI(baseURL, apiKey, model string) *HostedAPI {
	if model == "" {
		model = "whisper-1"
	}
	return &HostedAPI{
		client:  resty.New().SetTimeout(defaultTranscribeTimeout),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

// Name implements Provider.
func (h *HostedAPI) Name() string { return "hosted-api" }

// Transcribe implements Provider.
func (h *HostedAPI) Transcribe(ctx context.Context, audioPath string) (*capture.Transcript, error) {
	req := h.client.R().
		SetContext(ctx).
		SetFile("file", audioPath).
		SetFormDataFromValues(url.Values{
			"model":                     {h.model},
			"response_format":           {"verbose_json"},
			"timestamp_granularities[]": {"word", "segment"},
		})
	if h.apiKey != "" {
		req.SetAuthToken(h.apiKey)
	}

	var out verboseResponse
	resp, err := req.SetResult(&out).Post(h.baseURL + "/audio/transcriptions")
	if err != nil {
		return nil, errors.Wrap(err, "hosted transcription request")
	}
	if resp.IsError() {
		return nil, errors.Errorf("hosted transcription returned %s: %s", resp.Status(), truncateBody(resp.String()))
	}
	return buildTranscript(&out), nil
}
