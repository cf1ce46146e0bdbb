// Package generator calls an OpenAI-compatible chat API to produce
// flashcards from a content fragment. The core never depends on how cards
// were produced; it only consumes the returned fronts and backs.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-playground/validator/v10"
	"resty.dev/v3"
)

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
	validate         *validator.Validate
}

func NewClient(baseURL, apiKey, model string, retryAttempts uint) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient:       client,
		model:            model,
		maxRetryAttempts: retryAttempts,
		validate:         validator.New(),
	}
}

func (c *Client) Close() error {
	return c.httpClient.Close()
}

// GenerateRequest describes the content fragment to turn into flashcards.
type GenerateRequest struct {
	TopicName string
	Content   string
	Count     int
}

// GeneratedCard is one flashcard produced by the model.
type GeneratedCard struct {
	Front string `json:"front" validate:"required"`
	Back  string `json:"back" validate:"required"`
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
}

type choice struct {
	Index        int           `json:"index"`
	Message      choiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type choiceMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const systemPrompt = `You are a flashcard author. Given a topic and a piece of content, produce concise question/answer flashcards.

STRICT OUTPUT: Return ONLY a JSON array, no text outside it. Each element is {"front": "<question>", "back": "<answer>"}. Fronts must be answerable from the content alone.`

// Generate produces flashcards for one content fragment, retrying transient
// failures with backoff.
func (c *Client) Generate(ctx context.Context, params GenerateRequest) ([]GeneratedCard, error) {
	var result []GeneratedCard
	if err := retry.Do(
		func() error {
			cards, err := c.generate(ctx, params)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = cards
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) generate(ctx context.Context, params GenerateRequest) ([]GeneratedCard, error) {
	userPrompt := fmt.Sprintf("Topic: %s\nCards wanted: %d\n\nContent:\n%s", params.TopicName, params.Count, params.Content)

	requestBody := chatCompletionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.4,
	}

	var response chatCompletionResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&response).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("post chat completion (topic: %s): %w", params.TopicName, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("response error %d (topic: %s): %s", resp.StatusCode(), params.TopicName, resp.String())
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("empty choices (topic: %s)", params.TopicName)
	}

	cards, err := parseCards(response.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("parse cards (topic: %s): %w", params.TopicName, err)
	}

	for i, card := range cards {
		if err := c.validate.Struct(card); err != nil {
			return nil, fmt.Errorf("validate card %d (topic: %s): %w", i, params.TopicName, err)
		}
	}

	return cards, nil
}

// parseCards tolerates the model wrapping its JSON in a code fence.
func parseCards(content string) ([]GeneratedCard, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var cards []GeneratedCard
	if err := json.Unmarshal([]byte(trimmed), &cards); err != nil {
		return nil, fmt.Errorf("json.Unmarshal > %w", err)
	}
	return cards, nil
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	if strings.Contains(errStr, "json.Unmarshal") || strings.Contains(errStr, "unexpected end of JSON input") {
		return true
	}
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}
	if strings.Contains(errStr, "response error 5") {
		return true
	}
	if strings.Contains(errStr, "response error 429") {
		return true
	}

	return false
}
