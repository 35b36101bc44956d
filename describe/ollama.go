package describe

import (
	"context"
	"encoding/base64"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/roomscan-ai/roomscan/capture"
	"github.com/roomscan-ai/roomscan/images"
)

// Ollama describes frames through a local Ollama /api/generate endpoint
// running a multimodal model such as qwen2.5-vl.
type Ollama struct {
	client  *resty.Client
	baseURL string
	model   string
	log     *slog.Logger
}

// NewOllama creates the local backend.
func NewOllama(baseURL, model string, timeout time.Duration, log *slog.Logger) *Ollama {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Ollama{
		client:  resty.New().SetTimeout(timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		log:     log,
	}
}

// Name implements Describer.
func (o *Ollama) Name() string { return "ollama" }

type ollamaRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// Describe implements Describer.
func (o *Ollama) Describe(ctx context.Context, framePath, voiceContext string) ([]capture.SemanticObject, error) {
	data, err := os.ReadFile(framePath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading frame %s", framePath)
	}
	width, height, err := images.DecodeDimensions(framePath)
	if err != nil {
		return nil, err
	}

	var out ollamaResponse
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(ollamaRequest{
			Model:  o.model,
			Prompt: buildPrompt(voiceContext),
			Images: []string{base64.StdEncoding.EncodeToString(data)},
			Stream: false,
		}).
		SetResult(&out).
		Post(o.baseURL + "/api/generate")
	if err != nil {
		return nil, errors.Wrap(err, "ollama describe request")
	}
	if resp.IsError() {
		return nil, errors.Errorf("ollama returned %s", resp.Status())
	}

	raw := parseObjects(out.Response)
	if len(raw) == 0 && strings.TrimSpace(out.Response) != "" {
		o.log.Warn("unparseable describer response", "backend", o.Name(),
			"frame", framePath, "response", truncateForLog(out.Response))
	}
	return toSemanticObjects(raw, width, height, voiceContext), nil
}

func truncateForLog(s string) string {
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
