// Package stt adapts the frame aggregator's audio windows to an
// external speech-to-text HTTP endpoint.
package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/livekit-captions/caption-agent/internal/audio"
	"github.com/livekit-captions/caption-agent/internal/frame"
)

// Client submits a WAV-encoded audio window to speech recognition and
// returns the trimmed transcript text. Implementations do not retry;
// the caller logs and drops the window on error.
type Client interface {
	Transcribe(ctx context.Context, window *frame.Window, language string) (string, error)
}

// HTTPTranscriber posts the window as a multipart/form-data upload to
// an OpenAI-style transcription endpoint.
type HTTPTranscriber struct {
	url    string
	model  string
	apiKey string
	client *http.Client
}

// NewHTTPTranscriber creates a transcriber bound to an endpoint and model.
func NewHTTPTranscriber(url, model, apiKey string) *HTTPTranscriber {
	return &HTTPTranscriber{
		url:    url,
		model:  model,
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe encodes the window as WAV and posts it for recognition.
func (c *HTTPTranscriber) Transcribe(ctx context.Context, window *frame.Window, language string) (string, error) {
	wav := audio.EncodeWAV(window.PCM, window.SampleRate, window.Channels)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fileWriter, err := writer.CreateFormFile("file", "window.wav")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := fileWriter.Write(wav); err != nil {
		return "", fmt.Errorf("write wav payload: %w", err)
	}
	if err := writer.WriteField("model", c.model); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			return "", fmt.Errorf("write language field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("stt request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("stt endpoint returned status %d", resp.StatusCode)
	}

	var parsed transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode stt response: %w", err)
	}

	return strings.TrimSpace(parsed.Text), nil
}
