package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
)

// Client sends messages to Feishu chats with an app's bot identity
type Client struct {
	larkCli *lark.Client
}

// Option configures the client
type Option func(*options)

type options struct {
	baseURL string
}

// WithBaseURL points the client at a different open platform host
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// NewClient creates a new Feishu client
func NewClient(appID, appSecret string, opts ...Option) *Client {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var larkOpts []lark.ClientOptionFunc
	if o.baseURL != "" {
		larkOpts = append(larkOpts, lark.WithOpenBaseUrl(strings.TrimRight(o.baseURL, "/")))
	}

	return &Client{
		larkCli: lark.NewClient(appID, appSecret, larkOpts...),
	}
}

// SendText sends a text message to a chat
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	content := map[string]string{"text": text}
	contentJSON, _ := json.Marshal(content)

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType(larkim.MsgTypeText).
			Content(string(contentJSON)).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("send message failed: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("send message error: %s", resp.Msg)
	}

	log.Printf("[Feishu] Message sent to %s", chatID)
	return nil
}
