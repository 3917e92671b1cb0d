package repo

import (
	"context"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/domain"
)

// ChatlogRepo is the chat log source interface
// Fetches in real-time from the messaging bridge
type ChatlogRepo interface {
	// FetchToday gets today's raw messages of a chat
	FetchToday(ctx context.Context, targetID string, limit int) ([]domain.RawMessage, error)

	// SearchContacts looks up chats by keyword (used to find target IDs)
	SearchContacts(ctx context.Context, keyword string) ([]domain.Contact, error)
}
