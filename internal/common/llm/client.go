// internal/common/llm/client.go

// Package llm wraps the Gemini text-generation API behind the two calls the
// insight pipeline needs: schema-constrained JSON and free text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	commonhttp "crm-insights/internal/common/http"
	"crm-insights/internal/common/logger"

	"google.golang.org/genai"
)

var (
	ErrNotConfigured = errors.New("LLM_NOT_CONFIGURED")
	ErrEmptyResponse = errors.New("LLM_EMPTY_RESPONSE")
)

// Generator is the text-generation collaborator.
type Generator interface {
	// GenerateStructured returns JSON constrained to schema.
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema) ([]byte, error)
	// GenerateText returns free text produced under a system instruction.
	GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error)
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
}

// Client is the Gemini-backed Generator.
type Client struct {
	client      *genai.Client
	model       string
	temperature *float32
	logger      logger.Logger
}

// NewClient builds a Gemini API client. It fails with ErrNotConfigured when
// no API key is present.
func NewClient(ctx context.Context, cfg Config, log logger.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	httpClient := commonhttp.NewClient(cfg.Timeout)
	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient.HTTPClient(),
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	c := &Client{
		client: client,
		model:  cfg.Model,
		logger: log.With(map[string]interface{}{"component": "llm", "model": cfg.Model}),
	}
	if cfg.Temperature > 0 {
		t := float32(cfg.Temperature)
		c.temperature = &t
	}
	return c, nil
}

func (c *Client) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema) ([]byte, error) {
	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
		Temperature:      c.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate structured content: %w", err)
	}

	text := responseText(resp)
	c.logger.Debug("Structured generation finished", map[string]interface{}{
		"durationMs": time.Since(start).Milliseconds(),
		"bytes":      len(text),
	})
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}
	return []byte(text), nil
}

func (c *Client) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{Temperature: c.temperature}
	if systemInstruction != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}}
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate text: %w", err)
	}

	text := responseText(resp)
	c.logger.Debug("Text generation finished", map[string]interface{}{
		"durationMs": time.Since(start).Milliseconds(),
		"bytes":      len(text),
	})
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// responseText joins the non-thought text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
