// Package transcribe wraps the speech-to-text call. The adapter forwards
// audio bytes as-is; size filtering happens upstream in the pipeline.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/echonote/echonote/internal/openai"
)

// ErrEmptyTranscript is returned when the engine answers successfully but
// produces no text. Callers treat it as a user-retryable condition rather
// than an engine failure.
var ErrEmptyTranscript = errors.New("transcription returned empty text")

// Transcriber converts raw audio into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Whisper calls the OpenAI audio transcription endpoint. One request per
// invocation, no retry.
type Whisper struct {
	client *openai.Client
	model  string
}

func NewWhisper(client *openai.Client, model string) *Whisper {
	if model == "" {
		model = "whisper-1"
	}
	return &Whisper{client: client, model: model}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe posts the audio as multipart form data and returns the
// trimmed transcript. An empty transcript is an error; callers decide how
// to surface it.
func (w *Whisper) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	resp, err := w.client.R().
		SetContext(ctx).
		SetFileReader("file", fileNameFor(mimeType), bytes.NewReader(audio)).
		SetFormData(map[string]string{"model": w.model}).
		Post("/v1/audio/transcriptions")
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("transcription status %d: %s", resp.StatusCode(), resp.String())
	}

	var tr transcriptionResponse
	if err := json.Unmarshal(resp.Body(), &tr); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}

	text := strings.TrimSpace(tr.Text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

// fileNameFor gives the upload a plausible extension; the API keys format
// detection off the filename.
func fileNameFor(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "wav"):
		return "audio.wav"
	case strings.Contains(mimeType, "mp4"):
		return "audio.mp4"
	case strings.Contains(mimeType, "mpeg"), strings.Contains(mimeType, "mp3"):
		return "audio.mp3"
	case strings.Contains(mimeType, "ogg"):
		return "audio.ogg"
	default:
		return "audio.webm"
	}
}
