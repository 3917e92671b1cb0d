package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/repo"
)

// chatSender is the subset of the Feishu client the relay needs
type chatSender interface {
	SendText(ctx context.Context, chatID, text string) error
}

// feishuRelayRepo relays text to Feishu group chats
type feishuRelayRepo struct {
	client chatSender
}

// NewFeishuRelayRepo creates a relay repository backed by a Feishu bot
func NewFeishuRelayRepo(client chatSender) repo.RelayRepo {
	return &feishuRelayRepo{client: client}
}

// SendText sends the text to every chat; one failing chat does not stop the rest
func (r *feishuRelayRepo) SendText(ctx context.Context, targetIDs []string, text string) error {
	var errs []error
	for _, chatID := range targetIDs {
		if err := r.client.SendText(ctx, chatID, text); err != nil {
			errs = append(errs, fmt.Errorf("chat %s: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}
