// Package ai adapts OpenAI endpoints to the narrow adapter contracts of the
// call server: describe an image, transcribe audio, complete a prompt and
// synthesize speech.
package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dkeye/callroom/internal/core"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

const DefaultDescribePrompt = "Analyze this image and provide a brief description."

// Config holds the configuration for the OpenAI adapters.
type Config struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	VisionModel    string
	STTModel       string
	TTSModel       string
	TTSVoice       string
	DescribePrompt string
	MaxTokens      int
}

// Client implements core.Describer, core.Transcriber and core.Synthesizer.
// Completions go through For, which binds an Agent.
type Client struct {
	client *openai.Client
	cfg    Config
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if cfg.DescribePrompt == "" {
		cfg.DescribePrompt = DefaultDescribePrompt
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &Client{client: openai.NewClientWithConfig(oc), cfg: cfg}, nil
}

func (c *Client) Describe(ctx context.Context, frame string) (string, error) {
	url, err := imageURL(frame)
	if err != nil {
		return "", core.NewAdapterError("describe", core.KindInvalidInput, err)
	}
	req := openai.ChatCompletionRequest{
		Model:     c.cfg.VisionModel,
		MaxTokens: c.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: c.cfg.DescribePrompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: url}},
			},
		}},
	}
	return c.chat(ctx, "describe", req)
}

func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", core.NewAdapterError("transcribe", core.KindInvalidInput, errors.New("empty audio"))
	}
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.cfg.STTModel,
		Reader:   bytes.NewReader(audio),
		FilePath: "audio.webm",
	})
	if err != nil {
		return "", classify("transcribe", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", core.NewAdapterError("transcribe", core.KindEmpty, errors.New("no speech recognized"))
	}
	return text, nil
}

func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, core.NewAdapterError("synthesize", core.KindInvalidInput, errors.New("empty text"))
	}
	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.cfg.TTSModel),
		Voice:          openai.SpeechVoice(c.cfg.TTSVoice),
		Input:          text,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, classify("synthesize", err)
	}
	defer resp.Close()
	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, classify("synthesize", err)
	}
	if len(audio) == 0 {
		return nil, core.NewAdapterError("synthesize", core.KindEmpty, errors.New("no audio returned"))
	}
	return audio, nil
}

// Ask runs a single-turn completion under agent.
func (c *Client) Ask(ctx context.Context, agent Agent, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", core.NewAdapterError("complete", core.KindInvalidInput, errors.New("empty prompt"))
	}
	req := openai.ChatCompletionRequest{
		Model: c.cfg.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: agent.SystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	return c.chat(ctx, "complete", req)
}

// For binds agent, giving a core.Completer.
func (c *Client) For(agent Agent) core.Completer {
	return agentCompleter{client: c, agent: agent}
}

type agentCompleter struct {
	client *Client
	agent  Agent
}

func (a agentCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return a.client.Ask(ctx, a.agent, prompt)
}

func (c *Client) chat(ctx context.Context, op string, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(op, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", core.NewAdapterError(op, core.KindEmpty, errors.New("empty completion"))
	}
	log.Debug().Str("module", "adapters.ai").Str("op", op).Str("model", req.Model).Int("tokens", resp.Usage.TotalTokens).Msg("completion done")
	return resp.Choices[0].Message.Content, nil
}

// classify maps go-openai errors onto the adapter error taxonomy.
func classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewAdapterError(op, core.KindTimeout, err)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return core.NewAdapterError(op, core.KindProvider, fmt.Errorf("provider error %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return core.NewAdapterError(op, core.KindProvider, fmt.Errorf("provider status %d: %w", reqErr.HTTPStatusCode, reqErr.Err))
	}
	return core.NewAdapterError(op, core.KindTransport, err)
}
