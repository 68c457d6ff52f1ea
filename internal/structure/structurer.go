// Package structure wraps the language-model call that turns a transcript
// into a candidate memory card. The adapter is transport only: it parses
// the response into an untyped JSON object and leaves shape enforcement to
// the validate package.
package structure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/echonote/echonote/internal/openai"
)

// Structurer extracts a candidate card from a transcript.
type Structurer interface {
	Structure(ctx context.Context, transcript string) (map[string]any, error)
}

// LLM calls the OpenAI responses endpoint with a fixed prompt and strict
// JSON schema. One request per invocation, no retry.
type LLM struct {
	client *openai.Client
	model  string
}

func NewLLM(client *openai.Client, model string) *LLM {
	if model == "" {
		model = "gpt-4.1-nano"
	}
	return &LLM{client: client, model: model}
}

type responsesRequest struct {
	Model string         `json:"model"`
	Input string         `json:"input"`
	Text  map[string]any `json:"text"`
}

// responsesBody mirrors the slice of the responses API we consume: message
// items whose content carries output_text parts.
type responsesBody struct {
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

func (l *LLM) Structure(ctx context.Context, transcript string) (map[string]any, error) {
	req := responsesRequest{
		Model: l.model,
		Input: buildPrompt(transcript),
		Text:  map[string]any{"format": cardSchema},
	}

	resp, err := l.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(&req).
		Post("/v1/responses")
	if err != nil {
		return nil, fmt.Errorf("structuring request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("structuring status %d: %s", resp.StatusCode(), resp.String())
	}

	var body responsesBody
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decode structuring response: %w", err)
	}

	raw := strings.TrimSpace(outputText(body))
	if raw == "" {
		return nil, fmt.Errorf("model returned empty output")
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("model returned non-JSON output: %w", err)
	}
	return obj, nil
}

// outputText concatenates the output_text parts of all message items.
func outputText(body responsesBody) string {
	var b strings.Builder
	for _, item := range body.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "output_text" {
				b.WriteString(part.Text)
			}
		}
	}
	return b.String()
}
