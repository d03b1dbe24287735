// Package openai asks a chat completion model about words.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jacobpatterson1549/swipe-words/game/word"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"golang.org/x/time/rate"
)

type (
	// Oracle is a word.Oracle that answers with a chat completion constrained to a json schema.
	Oracle struct {
		client  *openai.Client
		limiter *rate.Limiter
		Config
	}

	// Config contains the properties to create an Oracle.
	Config struct {
		// APIKey authenticates requests.
		APIKey string
		// BaseURL overrides the address of the api, such as for a compatible local model.
		BaseURL string
		// Model is the name of the model to ask.
		Model string
		// Timeout limits how long each question can take.
		Timeout time.Duration
		// RequestsPerSecond limits how often the model is asked.
		RequestsPerSecond float64
		// Burst is the number of requests that can be made at once.
		Burst int
	}
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

const systemPrompt = "You judge whether words are real English words for a word game."

var _ word.Oracle = (*Oracle)(nil)

// NewOracle creates an Oracle.
func (cfg Config) NewOracle() (*Oracle, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating openai oracle: validation: %w", err)
	}
	if len(cfg.Model) == 0 {
		cfg.Model = DefaultModel
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if len(cfg.BaseURL) != 0 {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	o := Oracle{
		client:  openai.NewClientWithConfig(clientCfg),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		Config:  cfg,
	}
	return &o, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate() error {
	switch {
	case len(cfg.APIKey) == 0:
		return fmt.Errorf("api key required")
	case cfg.Timeout <= 0:
		return fmt.Errorf("positive timeout required")
	case cfg.RequestsPerSecond <= 0:
		return fmt.Errorf("positive request rate required")
	case cfg.Burst <= 0:
		return fmt.Errorf("positive burst required")
	}
	return nil
}

// Invoke asks the model the prompt, requiring the answer to match the schema.
func (o *Oracle) Invoke(ctx context.Context, prompt string, schema jsonschema.Definition) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting to ask model: %w", err)
	}
	req := openai.ChatCompletionRequest{
		Model: o.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "judgement",
				Schema: &schema,
				Strict: true,
			},
		},
	}
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("asking model: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if !json.Valid([]byte(content)) {
		return nil, fmt.Errorf("model answered with invalid json: %q", content)
	}
	return json.RawMessage(content), nil
}
