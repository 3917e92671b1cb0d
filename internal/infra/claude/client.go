package claude

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL  = "https://claude.ai"
	DefaultModel    = "claude-2"
	DefaultTimezone = "Asia/Shanghai"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/115.0"
)

// Config contains Claude web client configuration
type Config struct {
	Cookie   string
	BaseURL  string
	Model    string
	Timezone string
	Timeout  time.Duration
}

// Attachment is a text file attached to a message
type Attachment struct {
	FileName         string `json:"file_name"`
	FileType         string `json:"file_type"`
	FileSize         int    `json:"file_size"`
	ExtractedContent string `json:"extracted_content"`
}

// NewTextAttachment builds an attachment from a file path and its content
func NewTextAttachment(path, content string) Attachment {
	return Attachment{
		FileName:         filepath.Base(path),
		FileType:         "text/plain",
		FileSize:         len(content),
		ExtractedContent: content,
	}
}

// APIError is returned for non-2xx responses
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("claude: status %d: %s", e.StatusCode, e.Body)
}

// Client is a cookie-authenticated client for the Claude web API
type Client struct {
	config     Config
	httpClient *http.Client

	orgMu sync.Mutex
	orgID string
}

// NewClient creates a new Claude client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// OrganizationID returns the account's organization, cached after the first
// successful lookup
func (c *Client) OrganizationID(ctx context.Context) (string, error) {
	c.orgMu.Lock()
	defer c.orgMu.Unlock()

	if c.orgID != "" {
		return c.orgID, nil
	}

	var orgs []struct {
		UUID string `json:"uuid"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/organizations", nil, &orgs); err != nil {
		return "", fmt.Errorf("get organizations: %w", err)
	}
	if len(orgs) == 0 || orgs[0].UUID == "" {
		return "", fmt.Errorf("get organizations: no organization for this cookie")
	}
	c.orgID = orgs[0].UUID
	return c.orgID, nil
}

// CreateConversation starts a new chat and returns its uuid
func (c *Client) CreateConversation(ctx context.Context) (string, error) {
	orgID, err := c.OrganizationID(ctx)
	if err != nil {
		return "", err
	}

	body := map[string]string{
		"uuid": uuid.NewString(),
		"name": "",
	}
	var result struct {
		UUID string `json:"uuid"`
	}
	path := fmt.Sprintf("/api/organizations/%s/chat_conversations", orgID)
	if err := c.doJSON(ctx, http.MethodPost, path, body, &result); err != nil {
		return "", fmt.Errorf("create conversation: %w", err)
	}
	if result.UUID == "" {
		return "", fmt.Errorf("create conversation: empty uuid in response")
	}
	return result.UUID, nil
}

// SendMessage appends a prompt to the conversation and returns the completion
func (c *Client) SendMessage(ctx context.Context, conversationID, prompt string, attachments []Attachment) (string, error) {
	orgID, err := c.OrganizationID(ctx)
	if err != nil {
		return "", err
	}
	if attachments == nil {
		attachments = []Attachment{}
	}

	payload := map[string]interface{}{
		"completion": map[string]string{
			"prompt":   prompt,
			"timezone": c.config.Timezone,
			"model":    c.config.Model,
		},
		"organization_uuid": orgID,
		"conversation_uuid": conversationID,
		"text":              prompt,
		"attachments":       attachments,
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/append_message", payload, "text/event-stream")
	if err != nil {
		return "", fmt.Errorf("append message: %w", err)
	}
	defer resp.Body.Close()

	completion, err := parseCompletion(resp.Body)
	if err != nil {
		return "", fmt.Errorf("append message: %w", err)
	}
	return completion, nil
}

// DeleteConversation removes a conversation
func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	orgID, err := c.OrganizationID(ctx)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/api/organizations/%s/chat_conversations/%s", orgID, conversationID)
	resp, err := c.do(ctx, http.MethodDelete, path, conversationID, "")
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	resp.Body.Close()
	return nil
}

// parseCompletion reads the event stream; the last data line holds the answer
func parseCompletion(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)

	last := ""
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "data:") {
			last = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}
	if last == "" {
		return "", fmt.Errorf("no data in response stream")
	}

	var event struct {
		Completion string `json:"completion"`
		Error      *struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(last), &event); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if event.Error != nil {
		return "", fmt.Errorf("completion error: %s: %s", event.Error.Type, event.Error.Message)
	}
	return strings.ReplaceAll(event.Completion, "\n\n", "\n"), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.do(ctx, method, path, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, accept string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Cookie", c.config.Cookie)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", c.config.BaseURL+"/chats")
	req.Header.Set("Origin", c.config.BaseURL)
	req.Header.Set("Content-Type", "application/json")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return resp, nil
}
