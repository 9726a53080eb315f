// Package speech holds the narration synthesis client. The contract is
// narrow: bounded text plus a voice identifier in, encoded audio bytes out.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"server/internal/domain"
)

// Synthesizer converts text to narration audio.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

const (
	providerName   = "speechgen"
	defaultTimeout = 90 * time.Second
	maxAudioBytes  = 32 << 20
)

// Options configures the HTTP synthesis client.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Client calls a speech-synthesis HTTP API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// NewClient builds a synthesis client. The API key is required.
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("speech api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("speech base url is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{apiKey: opts.APIKey, baseURL: baseURL, client: client}, nil
}

// Name identifies the provider in errors and payload tags.
func (c *Client) Name() string { return providerName }

// Synthesize posts the text and returns the audio bytes. Any transport or
// status failure surfaces as *domain.GenerationError; there is no local
// fallback for narration.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &domain.GenerationError{Provider: providerName, Stage: "request", Err: errors.New("empty narration text")}
	}
	body, err := json.Marshal(synthesizeRequest{Text: text, Voice: voice})
	if err != nil {
		return nil, &domain.GenerationError{Provider: providerName, Stage: "encode", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, &domain.GenerationError{Provider: providerName, Stage: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.GenerationError{Provider: providerName, Stage: "transport", Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, &domain.GenerationError{
			Provider: providerName,
			Stage:    "status",
			Err:      fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, &domain.GenerationError{Provider: providerName, Stage: "read", Err: err}
	}
	if len(audio) == 0 {
		return nil, &domain.GenerationError{Provider: providerName, Stage: "read", Err: errors.New("empty audio response")}
	}
	return audio, nil
}

var _ Synthesizer = (*Client)(nil)
