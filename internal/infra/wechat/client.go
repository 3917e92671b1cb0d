package wechat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8888"

	chatlogPath = "/api/chatlog"
	sendPath    = "/api/sendMessage"
	searchPath  = "/api/searchContact"
)

// Entry is one item returned by the bridge's list endpoints
type Entry struct {
	UserID   string `json:"userId,omitempty"`
	Title    string `json:"title"`
	SubTitle string `json:"subTitle"`
}

// APIError is returned for non-2xx responses or failed sends
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wechat bridge: status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the local WeChat HTTP bridge
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new bridge client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetChatLog returns today's log of a chat. The bridge puts a chat header in
// front of the messages; it is not included in the result.
func (c *Client) GetChatLog(ctx context.Context, userID string, count int) ([]Entry, error) {
	params := url.Values{}
	params.Set("userId", userID)
	params.Set("count", strconv.Itoa(count))

	var entries []Entry
	if err := c.getJSON(ctx, chatlogPath, params, &entries); err != nil {
		return nil, fmt.Errorf("get chat log: %w", err)
	}
	if len(entries) == 0 {
		return entries, nil
	}
	return entries[1:], nil
}

// SearchContacts looks up chats whose name matches keyword
func (c *Client) SearchContacts(ctx context.Context, keyword string) ([]Entry, error) {
	params := url.Values{}
	params.Set("keyword", keyword)

	var entries []Entry
	if err := c.getJSON(ctx, searchPath, params, &entries); err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	return entries, nil
}

// SendText sends a text message to each of the given chats
func (c *Client) SendText(ctx context.Context, ids []string, text string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"ids":  ids,
		"text": text,
	})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendPath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var result struct {
		Success bool   `json:"success"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decode send result: %w", err)
	}
	if !result.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: result.Msg}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
