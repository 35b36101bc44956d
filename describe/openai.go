package describe

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/roomscan-ai/roomscan/capture"
	"github.com/roomscan-ai/roomscan/images"
)

// OpenAICompatible describes frames through an OpenAI-style
// /chat/completions endpoint (a hosted API or a local vLLM deployment).
type OpenAICompatible struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	model   string
	log     *slog.Logger
}

// NewOpenAICompatible creates the hosted backend. baseURL includes the
// version prefix, e.g. "https://api.example.com/v1".
func NewOpenAICompatible(baseURL, apiKey, model string, timeout time.Duration, log *slog.Logger) *OpenAICompatible {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &OpenAICompatible{
		client:  resty.New().SetTimeout(timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		log:     log,
	}
}

// Name implements Describer.
func (o *OpenAICompatible) Name() string { return "openai-compatible" }

type chatContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Describe implements Describer.
func (o *OpenAICompatible) Describe(ctx context.Context, framePath, voiceContext string) ([]capture.SemanticObject, error) {
	data, err := os.ReadFile(framePath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading frame %s", framePath)
	}
	width, height, err := images.DecodeDimensions(framePath)
	if err != nil {
		return nil, err
	}

	dataURI := fmt.Sprintf("data:%s;base64,%s", mediaType(framePath), base64.StdEncoding.EncodeToString(data))
	req := chatRequest{
		Model: o.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatContent{
				{Type: "image_url", ImageURL: &struct {
					URL string `json:"url"`
				}{URL: dataURI}},
				{Type: "text", Text: buildPrompt(voiceContext)},
			},
		}},
		MaxTokens:   4096,
		Temperature: 0.1,
	}

	r := o.client.R().SetContext(ctx).SetBody(req)
	if o.apiKey != "" {
		r.SetAuthToken(o.apiKey)
	}

	var out chatResponse
	resp, err := r.SetResult(&out).Post(o.baseURL + "/chat/completions")
	if err != nil {
		return nil, errors.Wrap(err, "chat completions request")
	}
	if resp.IsError() {
		return nil, errors.Errorf("chat completions returned %s", resp.Status())
	}
	if len(out.Choices) == 0 {
		return nil, errors.New("chat completions returned no choices")
	}

	content := out.Choices[0].Message.Content
	raw := parseObjects(content)
	if len(raw) == 0 && strings.TrimSpace(content) != "" {
		o.log.Warn("unparseable describer response", "backend", o.Name(),
			"frame", framePath, "response", truncateForLog(content))
	}
	return toSemanticObjects(raw, width, height, voiceContext), nil
}

// mediaType maps a frame's extension to its MIME type, defaulting to JPEG.
func mediaType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
