// Package ollama implements generator.Generator against a local Ollama
// text-generation API in JSON mode.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"

	"github.com/dayboard/dayboard/internal/model"
)

const defaultBaseURL = "http://localhost:11434"

type Generator struct {
	client     *resty.Client
	model      string
	maxRetries uint64
}

// New creates a Generator against baseURL (empty means localhost). timeout
// bounds each HTTP call; the orchestrator additionally bounds the whole
// generation attempt.
func New(baseURL, modelName string, timeout time.Duration) *Generator {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Generator{client: c, model: modelName, maxRetries: 1}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Format string `json:"format"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Generate asks the model for one day's artifact of the given type. The
// response must be valid JSON; anything else is a generation failure and is
// never passed on as content.
func (g *Generator) Generate(ctx context.Context, contentType model.ContentType, date model.Date) (json.RawMessage, error) {
	req := generateRequest{
		Model:  g.model,
		Prompt: promptFor(contentType, date),
		Format: "json",
		Stream: false,
	}

	var payload json.RawMessage
	backoff := retry.WithMaxRetries(g.maxRetries, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := g.client.R().SetContext(ctx).SetBody(&req).Post("/api/generate")
		if err != nil {
			return retry.RetryableError(fmt.Errorf("generate request: %w", err))
		}
		if resp.StatusCode() != http.StatusOK {
			return retry.RetryableError(fmt.Errorf("generate status %d: %s", resp.StatusCode(), resp.String()))
		}
		var gr generateResponse
		if err := json.Unmarshal(resp.Body(), &gr); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if gr.Error != "" {
			return retry.RetryableError(fmt.Errorf("generate error: %s", gr.Error))
		}
		if !json.Valid([]byte(gr.Response)) {
			// Model emitted non-JSON despite format=json; retrying once is
			// cheaper than surfacing a failure for a transient glitch.
			return retry.RetryableError(fmt.Errorf("model returned invalid JSON"))
		}
		payload = json.RawMessage(gr.Response)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// HealthPing probes the model server's tag listing, the cheapest endpoint
// that exercises the full HTTP path.
func (g *Generator) HealthPing(ctx context.Context) error {
	resp, err := g.client.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return fmt.Errorf("ollama ping: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("ollama ping status %d", resp.StatusCode())
	}
	return nil
}

// promptFor builds the per-type prompt. Exact prompt wording is deliberately
// plain here; the core contract only cares that output is structured JSON.
func promptFor(contentType model.ContentType, date model.Date) string {
	return fmt.Sprintf(
		"You are a daily dashboard assistant. Produce the %s module content for %s as a single JSON object.",
		contentType, date)
}
