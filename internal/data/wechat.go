package data

import (
	"context"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/domain"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/repo"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/infra/wechat"
)

// wechatRepo implements the chat log and relay repositories over the bridge
type wechatRepo struct {
	client *wechat.Client
}

// NewChatlogRepo creates a chat log repository backed by the WeChat bridge
func NewChatlogRepo(client *wechat.Client) repo.ChatlogRepo {
	return &wechatRepo{client: client}
}

// NewWechatRelayRepo creates a relay repository that sends through the bridge
func NewWechatRelayRepo(client *wechat.Client) repo.RelayRepo {
	return &wechatRepo{client: client}
}

// FetchToday gets today's chat log of a target
func (r *wechatRepo) FetchToday(ctx context.Context, targetID string, limit int) ([]domain.RawMessage, error) {
	entries, err := r.client.GetChatLog(ctx, targetID, limit)
	if err != nil {
		return nil, err
	}

	result := make([]domain.RawMessage, 0, len(entries))
	for _, e := range entries {
		result = append(result, domain.RawMessage{
			Title:    e.Title,
			SubTitle: e.SubTitle,
		})
	}
	return result, nil
}

// SearchContacts looks up chats by keyword
func (r *wechatRepo) SearchContacts(ctx context.Context, keyword string) ([]domain.Contact, error) {
	entries, err := r.client.SearchContacts(ctx, keyword)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Contact, 0, len(entries))
	for _, e := range entries {
		result = append(result, domain.Contact{
			UserID:   e.UserID,
			Title:    e.Title,
			SubTitle: e.SubTitle,
		})
	}
	return result, nil
}

// SendText sends one message to all targets in a single bridge call
func (r *wechatRepo) SendText(ctx context.Context, targetIDs []string, text string) error {
	return r.client.SendText(ctx, targetIDs, text)
}
