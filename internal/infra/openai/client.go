package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel = "moonshot-v1-128k"
	MoonshotURL  = "https://api.moonshot.cn/v1"
)

// Message is one chat turn
type Message struct {
	Role    string
	Content string
}

// Roles
const (
	RoleSystem    = goopenai.ChatMessageRoleSystem
	RoleUser      = goopenai.ChatMessageRoleUser
	RoleAssistant = goopenai.ChatMessageRoleAssistant
)

// Client is a chat completion client for OpenAI-compatible APIs
type Client struct {
	client *goopenai.Client
	model  string
}

// NewClient creates a new client. An empty baseURL uses the OpenAI default.
func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	if model == "" {
		model = DefaultModel
	}

	config := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout > 0 {
		config.HTTPClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		client: goopenai.NewClientWithConfig(config),
		model:  model,
	}
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// Complete sends the conversation and returns the assistant reply
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.3,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, goopenai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
