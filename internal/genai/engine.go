// Package genai turns a (text, instruction) pair into a generated summary via
// an OpenAI-compatible chat completion endpoint.
package genai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/meetbrief/meetbrief/internal/model"
)

const systemPrompt = "You are a professional summarizer. Create clear, structured summaries " +
	"based on the user's specific requirements and follow the instruction exactly."

// Config holds generation provider settings.
type Config struct {
	APIKey      string
	BaseURL     string // empty uses the provider default
	Model       string
	Temperature float32
	Timeout     time.Duration // per-call bound; zero means 60s
}

// chatCompleter is the slice of the OpenAI client the engine needs; tests
// inject fakes through it.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Engine issues exactly one completion call per Generate invocation.
// It does not retry, stream, or cache.
type Engine struct {
	client      chatCompleter
	model       string
	temperature float32
	timeout     time.Duration
	log         zerolog.Logger
}

// NewEngine creates a generation engine backed by the configured provider.
func NewEngine(cfg Config, log zerolog.Logger) *Engine {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return newEngine(openai.NewClientWithConfig(clientConfig), cfg, log)
}

func newEngine(client chatCompleter, cfg Config, log zerolog.Logger) *Engine {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Engine{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     timeout,
		log:         log,
	}
}

// Generate produces a summary for originalText under the given instruction.
// Empty inputs fail with model.ErrValidation before any provider call; every
// provider-side failure (transport, API error, empty completion) surfaces as
// model.ErrProvider. The full input is sent in one call, untruncated.
func (e *Engine) Generate(ctx context.Context, originalText, instruction string) (string, error) {
	if strings.TrimSpace(originalText) == "" {
		return "", fmt.Errorf("%w: original text is required", model.ErrValidation)
	}
	if strings.TrimSpace(instruction) == "" {
		return "", fmt.Errorf("%w: instruction is required", model.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	userPrompt := fmt.Sprintf("Original text: %s\n\nCustom instruction: %s\n\n"+
		"Please provide a well-structured summary based on the custom instruction.",
		originalText, instruction)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: e.temperature,
	})
	if err != nil {
		e.log.Error().Stack().Err(err).Str("model", e.model).Msg("completion call failed")
		return "", fmt.Errorf("%w: completion call failed", model.ErrProvider)
	}

	if len(resp.Choices) == 0 {
		e.log.Error().Str("model", e.model).Msg("provider returned no choices")
		return "", fmt.Errorf("%w: empty completion", model.ErrProvider)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		e.log.Error().Str("model", e.model).Msg("provider returned empty content")
		return "", fmt.Errorf("%w: empty completion", model.ErrProvider)
	}
	return content, nil
}
